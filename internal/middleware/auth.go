package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"Task_Mania/internal/pkg"
	"Task_Mania/internal/pkg/log"
	"Task_Mania/internal/repository/redis"
)

const ContextUserIDKey = "user_id"

// SessionStore is the subset of redis.TokenRepository the middleware needs.
type SessionStore interface {
	GetUserToken(ctx context.Context, userID string) (string, error)
	ExtendUserToken(ctx context.Context, userID string) error
}

var (
	errMissingHeader = errors.New("missing authorization header")
	errBadFormat     = errors.New("invalid authorization format")
	errBadToken      = errors.New("invalid or expired token")
	errSessionGone   = errors.New("account has been logged in elsewhere")
)

// authenticate returns the user id behind the bearer token. The token must be
// valid and equal to the session stored for that user.
func authenticate(c *gin.Context, sessions SessionStore) (string, int, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", http.StatusUnauthorized, errMissingHeader
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", http.StatusUnauthorized, errBadFormat
	}
	tokenStr := parts[1]

	claims, err := pkg.ParseAccess(tokenStr)
	if err != nil {
		return "", http.StatusUnauthorized, errBadToken
	}
	ctx := c.Request.Context()
	stored, err := sessions.GetUserToken(ctx, claims.UserID)
	if errors.Is(err, redis.ErrTokenNotFound) || (err == nil && stored != tokenStr) {
		return "", http.StatusUnauthorized, errSessionGone
	}
	if err != nil {
		log.Errorf(ctx)("session lookup: %v", err)
		return "", http.StatusInternalServerError, errors.New("session store unavailable")
	}
	if err = sessions.ExtendUserToken(ctx, claims.UserID); err != nil {
		log.Warnf(ctx)("extend session of %s: %v", claims.UserID, err)
	}
	return claims.UserID, http.StatusOK, nil
}

func setUser(c *gin.Context, userID string) {
	c.Set(ContextUserIDKey, userID)
	c.Request = c.Request.WithContext(log.WithFields(c.Request.Context(), logrus.Fields{"user_id": userID}))
}

func AuthMiddleware(sessions SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, status, err := authenticate(c, sessions)
		if err != nil {
			c.AbortWithStatusJSON(status, gin.H{"code": "Unauthenticated", "msg": err.Error()})
			return
		}
		setUser(c, userID)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is sent and lets
// anonymous requests through otherwise.
func OptionalAuth(sessions SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			if userID, _, err := authenticate(c, sessions); err == nil {
				setUser(c, userID)
			}
		}
		c.Next()
	}
}

// UserID returns the authenticated caller, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}
