package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"Task_Mania/internal/service"
)

type OAuthHandler struct {
	svc        *service.OAuthService
	successURL string
}

func NewOAuthHandler(svc *service.OAuthService, successURL string) *OAuthHandler {
	return &OAuthHandler{svc: svc, successURL: successURL}
}

func (h *OAuthHandler) enabled(c *gin.Context) bool {
	if !h.svc.Enabled() {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"code": "NotFound", "msg": "google login is not configured"})
		return false
	}
	return true
}

func (h *OAuthHandler) GoogleLogin(c *gin.Context) {
	if !h.enabled(c) {
		return
	}
	authURL, err := h.svc.AuthURL(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.Redirect(http.StatusFound, authURL)
}

// Callback finishes the flow. Without a configured success URL the tokens are
// returned as JSON.
func (h *OAuthHandler) Callback(c *gin.Context) {
	if !h.enabled(c) {
		return
	}
	if e := c.Query("error"); e != "" {
		badRequest(c, "google login failed: "+e)
		return
	}
	pair, user, err := h.svc.Callback(c.Request.Context(), c.Query("state"), c.Query("code"))
	if err != nil {
		writeError(c, err)
		return
	}
	if h.successURL == "" {
		body := tokenBody(pair)
		body["user"] = user
		c.JSON(http.StatusOK, body)
		return
	}
	target, err := url.Parse(h.successURL)
	if err != nil {
		writeError(c, err)
		return
	}
	q := target.Query()
	q.Set("accessToken", pair.AccessToken)
	q.Set("refreshToken", pair.RefreshToken)
	target.RawQuery = q.Encode()
	c.Redirect(http.StatusFound, target.String())
}
