package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"Task_Mania/internal/middleware"
	"Task_Mania/internal/service"
)

type FollowHandler struct {
	svc *service.FollowService
}

func NewFollowHandler(svc *service.FollowService) *FollowHandler {
	return &FollowHandler{svc: svc}
}

type followReq struct {
	FolloweeID string `json:"followee_id" binding:"required"`
	Action     string `json:"action" binding:"required,oneof=follow unfollow"`
}

func (h *FollowHandler) Follow(c *gin.Context) {
	var req followReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	uid := middleware.UserID(c)
	var (
		changed bool
		err     error
	)
	if req.Action == "follow" {
		changed, err = h.svc.Follow(c.Request.Context(), uid, req.FolloweeID)
	} else {
		changed, err = h.svc.Unfollow(c.Request.Context(), uid, req.FolloweeID)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

// targetUser defaults to the caller when user_id is not given.
func targetUser(c *gin.Context) string {
	if id := c.Query("user_id"); id != "" {
		return id
	}
	return middleware.UserID(c)
}

func (h *FollowHandler) ListFollowings(c *gin.Context) {
	cursor, _ := strconv.ParseUint(c.Query("cursor"), 10, 64)
	limit, _ := strconv.Atoi(c.Query("limit"))
	rows, next, err := h.svc.ListFollowings(c.Request.Context(), targetUser(c), cursor, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": rows, "next_cursor": next})
}

func (h *FollowHandler) ListFollowers(c *gin.Context) {
	cursor, _ := strconv.ParseUint(c.Query("cursor"), 10, 64)
	limit, _ := strconv.Atoi(c.Query("limit"))
	rows, next, err := h.svc.ListFollowers(c.Request.Context(), targetUser(c), cursor, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": rows, "next_cursor": next})
}

func (h *FollowHandler) Relation(c *gin.Context) {
	from := c.Query("from")
	if from == "" {
		from = middleware.UserID(c)
	}
	ok, err := h.svc.IsFollowing(c.Request.Context(), from, c.Query("to"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"following": ok})
}
