package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"Task_Mania/internal/middleware"
	"Task_Mania/internal/service"
)

type PostLikeHandler struct {
	svc *service.PostLikeService
}

func NewPostLikeHandler(svc *service.PostLikeService) *PostLikeHandler {
	return &PostLikeHandler{svc: svc}
}

func (h *PostLikeHandler) Like(c *gin.Context) {
	changed, err := h.svc.Like(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

func (h *PostLikeHandler) Unlike(c *gin.Context) {
	changed, err := h.svc.Unlike(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

func (h *PostLikeHandler) IsLiked(c *gin.Context) {
	liked, err := h.svc.IsLiked(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

func (h *PostLikeHandler) Count(c *gin.Context) {
	n, err := h.svc.GetCountWithLock(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}
