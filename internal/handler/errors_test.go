package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Task_Mania/internal/model"
	"Task_Mania/internal/service"
)

func TestErrorKind(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("community x: %w", model.ErrNotFound), http.StatusNotFound, "NotFound"},
		{fmt.Errorf("update: %w", model.ErrUnauthorized), http.StatusForbidden, "Unauthorized"},
		{model.ErrForbidden, http.StatusForbidden, "Forbidden"},
		{model.ErrInvalidState, http.StatusConflict, "InvalidState"},
		{model.ErrConflict, http.StatusConflict, "Conflict"},
		{model.ErrInvalidInput, http.StatusBadRequest, "InvalidInput"},
		{service.ErrBadCredentials, http.StatusUnauthorized, "Unauthenticated"},
		{model.NewStoreError("find", errors.New("socket closed")), http.StatusInternalServerError, "StoreFailure"},
		{errors.New("boom"), http.StatusInternalServerError, "Internal"},
	}
	for _, tc := range cases {
		status, code := errorKind(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}

func TestWriteErrorHidesInternalMessages(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, tc := range []struct {
		err  error
		want string
	}{
		{model.NewStoreError("find", errors.New("socket closed")), "internal server error"},
		{fmt.Errorf("community 42: %w", model.ErrNotFound), "community 42: not found"},
	} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		writeError(c, tc.err)

		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.want, body["msg"])
		assert.True(t, c.IsAborted())
	}
}

func TestRespondListNeverNull(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondList[model.Community](c, nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}
