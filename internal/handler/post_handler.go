package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"Task_Mania/internal/middleware"
	"Task_Mania/internal/model"
	"Task_Mania/internal/service"
)

type PostHandler struct {
	svc *service.PostService
}

func NewPostHandler(svc *service.PostService) *PostHandler {
	return &PostHandler{svc: svc}
}

type postReq struct {
	CommunityID   string   `json:"communityId"`
	Title         string   `json:"title" binding:"required"`
	Description   string   `json:"description" binding:"required"`
	MediaURLs     []string `json:"mediaUrls"`
	MediaType     string   `json:"mediaType"`
	SkillCategory string   `json:"skillCategory" binding:"required"`
}

// paging reads page (zero based) and size from the query; bad values fall
// back to the defaults.
func paging(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))
	return page, size
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	var req postReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	view, err := h.svc.CreatePost(c.Request.Context(), &model.Post{
		CommunityID:   req.CommunityID,
		Title:         req.Title,
		Description:   req.Description,
		MediaURLs:     req.MediaURLs,
		MediaType:     req.MediaType,
		SkillCategory: req.SkillCategory,
	}, middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *PostHandler) GetPost(c *gin.Context) {
	view, err := h.svc.GetPost(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	respond(c, view, err)
}

func (h *PostHandler) ListByUser(c *gin.Context) {
	page, size := paging(c)
	list, err := h.svc.ListByUser(c.Request.Context(), c.Param("userId"), middleware.UserID(c), page, size)
	respondList(c, list, err)
}

func (h *PostHandler) ListBySkillCategory(c *gin.Context) {
	page, size := paging(c)
	list, err := h.svc.ListBySkillCategory(c.Request.Context(), c.Param("category"), middleware.UserID(c), page, size)
	respondList(c, list, err)
}

func (h *PostHandler) ListByCommunity(c *gin.Context) {
	page, size := paging(c)
	list, err := h.svc.ListByCommunity(c.Request.Context(), c.Param("communityId"), middleware.UserID(c), page, size)
	respondList(c, list, err)
}

func (h *PostHandler) Feed(c *gin.Context) {
	page, size := paging(c)
	list, err := h.svc.Feed(c.Request.Context(), middleware.UserID(c), page, size)
	respondList(c, list, err)
}

func (h *PostHandler) UpdatePost(c *gin.Context) {
	var req postReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid params")
		return
	}
	view, err := h.svc.UpdatePost(c.Request.Context(), c.Param("id"), model.PostPatch{
		Title:         req.Title,
		Description:   req.Description,
		MediaURLs:     req.MediaURLs,
		MediaType:     req.MediaType,
		SkillCategory: req.SkillCategory,
	}, middleware.UserID(c))
	respond(c, view, err)
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	if err := h.svc.DeletePost(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "delete post successfully"})
}
