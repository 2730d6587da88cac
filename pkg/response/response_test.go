package response

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/devconnector/pkg/apperror"
	"anoa.com/devconnector/pkg/logger"
	"anoa.com/devconnector/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestError_HidesInternalDetails(t *testing.T) {
	c, w := newContext()
	Error(c, logger.NewNop(), errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"msg":"Server Error"}`, w.Body.String())
}

func TestError_PublicMessage(t *testing.T) {
	c, w := newContext()
	Error(c, nil, apperror.BadRequestNotFound("Profile not found"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"msg":"Profile not found"}`, w.Body.String())
}

func TestError_FieldErrors(t *testing.T) {
	c, w := newContext()
	Error(c, nil, fmt.Errorf("upsert: %w", validator.Errors{{Msg: "Status is required", Param: "status", Location: "body"}}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"errors":[{"msg":"Status is required","param":"status","location":"body"}]}`, w.Body.String())
}

func TestGetUserID(t *testing.T) {
	c, _ := newContext()
	_, err := GetUserID(c)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	id := uuid.New()
	c.Set(UserIDKey, id.String())
	got, err := GetUserID(c)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	c.Set(UserIDKey, 42)
	_, err = GetUserID(c)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestRetryAfter(t *testing.T) {
	c, w := newContext()
	RetryAfter(c, 4.6)
	assert.Equal(t, "5", w.Header().Get("Retry-After"))
}
