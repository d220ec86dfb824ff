package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"Task_Mania/internal/service"
)

type EmailHandler struct {
	svc *service.EmailService
}

func NewEmailHandler(svc *service.EmailService) *EmailHandler {
	return &EmailHandler{svc: svc}
}

// SendCode handles POST /api/email/:scope/code with scope register or reset.
func (h *EmailHandler) SendCode(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid email")
		return
	}
	if err := h.svc.SendCode(c.Request.Context(), c.Param("scope"), req.Email); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "code sent"})
}
