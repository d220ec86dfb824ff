package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"Task_Mania/internal/model"
	"Task_Mania/internal/pkg/log"
	"Task_Mania/internal/service"
)

// errorKind maps a domain error to its HTTP status and public code.
func errorKind(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, "NotFound"
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusForbidden, "Unauthorized"
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, model.ErrInvalidState):
		return http.StatusConflict, "InvalidState"
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict, "Conflict"
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest, "InvalidInput"
	case errors.Is(err, service.ErrBadCredentials):
		return http.StatusUnauthorized, "Unauthenticated"
	case model.IsStoreError(err):
		return http.StatusInternalServerError, "StoreFailure"
	default:
		return http.StatusInternalServerError, "Internal"
	}
}

// writeError never echoes messages of 5xx errors; those are logged instead.
func writeError(c *gin.Context, err error) {
	status, code := errorKind(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		log.GetLogger(c.Request.Context()).WithError(err).Error(code)
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"code": code, "msg": msg})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"code": "InvalidInput", "msg": msg})
}
