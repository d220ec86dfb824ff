package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"Task_Mania/internal/middleware"
	"Task_Mania/internal/service"
)

type CommentHandler struct {
	svc *service.CommentService
}

func NewCommentHandler(svc *service.CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

type commentReq struct {
	Content string `json:"content" binding:"required"`
}

func (h *CommentHandler) Create(c *gin.Context) {
	var req commentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "content is required")
		return
	}
	comment, err := h.svc.Create(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *CommentHandler) ListByPost(c *gin.Context) {
	page, size := paging(c)
	list, err := h.svc.ListByPost(c.Request.Context(), c.Param("id"), page, size)
	respondList(c, list, err)
}

func (h *CommentHandler) Count(c *gin.Context) {
	n, err := h.svc.CountByPost(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *CommentHandler) Update(c *gin.Context) {
	var req commentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "content is required")
		return
	}
	comment, err := h.svc.Update(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.Content)
	respond(c, comment, err)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}
