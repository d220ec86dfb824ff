package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Task_Mania/internal/pkg"
	"Task_Mania/internal/repository/redis"
)

type stubSessions map[string]string

func (s stubSessions) GetUserToken(_ context.Context, id string) (string, error) {
	tok, ok := s[id]
	if !ok {
		return "", redis.ErrTokenNotFound
	}
	return tok, nil
}

func (s stubSessions) ExtendUserToken(context.Context, string) error { return nil }

func newAuthEngine(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/who", mw, func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})
	return r
}

func call(r *gin.Engine, header string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	pkg.ConfigureJWT("a-secret", "r-secret", time.Minute, time.Hour)
	pair, err := pkg.GeneratePair("u1", 0)
	require.NoError(t, err)
	stale, err := pkg.GeneratePair("u1", 0)
	require.NoError(t, err)

	r := newAuthEngine(AuthMiddleware(stubSessions{"u1": pair.AccessToken}))

	w := call(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = call(r, "Token "+pair.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = call(r, "Bearer "+pair.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = call(r, "Bearer "+stale.AccessToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(r, "Bearer "+pair.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestOptionalAuth(t *testing.T) {
	pkg.ConfigureJWT("a-secret", "r-secret", time.Minute, time.Hour)
	pair, err := pkg.GeneratePair("u2", 0)
	require.NoError(t, err)
	r := newAuthEngine(OptionalAuth(stubSessions{"u2": pair.AccessToken}))

	w := call(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = call(r, "Bearer garbage")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())

	w = call(r, "Bearer "+pair.AccessToken)
	assert.Equal(t, "u2", w.Body.String())
}
