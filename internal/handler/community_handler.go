package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"Task_Mania/internal/middleware"
	"Task_Mania/internal/model"
	"Task_Mania/internal/service"
)

type CommunityHandler struct {
	svc *service.CommunityService
}

func NewCommunityHandler(svc *service.CommunityService) *CommunityHandler {
	return &CommunityHandler{svc: svc}
}

// communityReq is the body of create and update. Ownership and membership
// fields are not accepted from clients.
type communityReq struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Category    string `json:"category"`
	IsPrivate   bool   `json:"isPrivate"`
}

func (h *CommunityHandler) GetAll(c *gin.Context) {
	list, err := h.svc.GetAll(c.Request.Context())
	respondList(c, list, err)
}

func (h *CommunityHandler) GetPublic(c *gin.Context) {
	list, err := h.svc.GetPublic(c.Request.Context())
	respondList(c, list, err)
}

func (h *CommunityHandler) GetByID(c *gin.Context) {
	community, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	respond(c, community, err)
}

func (h *CommunityHandler) GetByCreator(c *gin.Context) {
	list, err := h.svc.GetByCreator(c.Request.Context(), c.Param("creatorId"))
	respondList(c, list, err)
}

func (h *CommunityHandler) GetByMember(c *gin.Context) {
	list, err := h.svc.GetByMember(c.Request.Context(), c.Param("memberId"))
	respondList(c, list, err)
}

func (h *CommunityHandler) GetByAdmin(c *gin.Context) {
	list, err := h.svc.GetByAdmin(c.Request.Context(), c.Param("adminId"))
	respondList(c, list, err)
}

func (h *CommunityHandler) GetByCategory(c *gin.Context) {
	list, err := h.svc.GetByCategory(c.Request.Context(), c.Param("category"))
	respondList(c, list, err)
}

func (h *CommunityHandler) Create(c *gin.Context) {
	var req communityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	community, err := h.svc.Create(c.Request.Context(), &model.Community{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		IsPrivate:   req.IsPrivate,
	}, middleware.UserID(c))
	respond(c, community, err)
}

func (h *CommunityHandler) Update(c *gin.Context) {
	var req communityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	community, err := h.svc.Update(c.Request.Context(), c.Param("id"), model.CommunityPatch{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		IsPrivate:   req.IsPrivate,
	}, middleware.UserID(c))
	respond(c, community, err)
}

func (h *CommunityHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

// selfOnly rejects join and leave on behalf of another user.
func selfOnly(c *gin.Context) (string, bool) {
	uid := c.Param("uid")
	if uid != middleware.UserID(c) {
		writeError(c, fmt.Errorf("cannot act on behalf of user %s: %w", uid, model.ErrUnauthorized))
		return "", false
	}
	return uid, true
}

func (h *CommunityHandler) Join(c *gin.Context) {
	uid, ok := selfOnly(c)
	if !ok {
		return
	}
	community, err := h.svc.Join(c.Request.Context(), c.Param("id"), uid)
	respond(c, community, err)
}

func (h *CommunityHandler) Leave(c *gin.Context) {
	uid, ok := selfOnly(c)
	if !ok {
		return
	}
	community, err := h.svc.Leave(c.Request.Context(), c.Param("id"), uid)
	respond(c, community, err)
}

func (h *CommunityHandler) AddAdmin(c *gin.Context) {
	community, err := h.svc.AddAdmin(c.Request.Context(), c.Param("id"), c.Param("uid"), middleware.UserID(c))
	respond(c, community, err)
}

func (h *CommunityHandler) RemoveAdmin(c *gin.Context) {
	community, err := h.svc.RemoveAdmin(c.Request.Context(), c.Param("id"), c.Param("uid"), middleware.UserID(c))
	respond(c, community, err)
}

func (h *CommunityHandler) IsMember(c *gin.Context) {
	ok, err := h.svc.IsMember(c.Request.Context(), c.Param("id"), c.Param("uid"))
	respond(c, ok, err)
}

func (h *CommunityHandler) IsAdmin(c *gin.Context) {
	ok, err := h.svc.IsAdmin(c.Request.Context(), c.Param("id"), c.Param("uid"))
	respond(c, ok, err)
}

func (h *CommunityHandler) IsCreator(c *gin.Context) {
	ok, err := h.svc.IsCreator(c.Request.Context(), c.Param("id"), c.Param("uid"))
	respond(c, ok, err)
}

func respond(c *gin.Context, body any, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, body)
}

func respondList[T any](c *gin.Context, list []T, err error) {
	if list == nil {
		list = []T{}
	}
	respond(c, list, err)
}
