package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"anoa.com/devconnector/internal/entity"
	"anoa.com/devconnector/internal/modules/user/dto"
	"anoa.com/devconnector/pkg/apperror"
	"anoa.com/devconnector/pkg/logger"
	"anoa.com/devconnector/pkg/response"
	"anoa.com/devconnector/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) Register(ctx context.Context, input dto.RegisterInput) (*dto.TokenResponse, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TokenResponse), args.Error(1)
}

func (m *mockUserService) Login(ctx context.Context, input dto.LoginInput) (*dto.TokenResponse, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TokenResponse), args.Error(1)
}

func (m *mockUserService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *mockUserService) UpdateAvatar(ctx context.Context, userID uuid.UUID, avatar dto.AvatarFile) (*entity.User, error) {
	args := m.Called(ctx, userID, avatar)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func init() {
	gin.SetMode(gin.TestMode)
	if err := validator.Register(); err != nil {
		panic(err)
	}
}

func newRouter(h *UserHandler, userID uuid.UUID) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != uuid.Nil {
			c.Set(response.UserIDKey, userID)
		}
		c.Next()
	})
	r.POST("/api/users", h.Register)
	r.POST("/api/auth", h.Login)
	r.GET("/api/auth", h.Me)
	r.PUT("/api/users/avatar", h.UpdateAvatar)
	return r
}

func decodeErrors(t *testing.T, w *httptest.ResponseRecorder) []validator.FieldError {
	t.Helper()
	var body struct {
		Errors []validator.FieldError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Errors
}

func TestRegister_Validation(t *testing.T) {
	svc := new(mockUserService)
	r := newRouter(NewUserHandler(svc, logger.NewNop()), uuid.Nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/users",
		bytes.NewBufferString(`{"name":"","email":"nope","password":"123"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var msgs []string
	for _, e := range decodeErrors(t, w) {
		msgs = append(msgs, e.Msg)
	}
	assert.ElementsMatch(t, []string{
		"Name is required",
		"Please include a valid email",
		"Please enter a password with 6 or more characters",
	}, msgs)
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestRegister_Duplicate(t *testing.T) {
	svc := new(mockUserService)
	svc.On("Register", mock.Anything, dto.RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret1"}).
		Return(nil, apperror.New(http.StatusBadRequest, "User already exists", apperror.ErrConflict))
	r := newRouter(NewUserHandler(svc, logger.NewNop()), uuid.Nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/users",
		bytes.NewBufferString(`{"name":"Ada","email":"ada@example.com","password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	errs := decodeErrors(t, w)
	require.Len(t, errs, 1)
	assert.Equal(t, "User already exists", errs[0].Msg)
}

func TestLogin_OK(t *testing.T) {
	svc := new(mockUserService)
	svc.On("Login", mock.Anything, dto.LoginInput{Email: "ada@example.com", Password: "secret1"}).
		Return(&dto.TokenResponse{Token: "tok"}, nil)
	r := newRouter(NewUserHandler(svc, logger.NewNop()), uuid.Nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth",
		bytes.NewBufferString(`{"email":"ada@example.com","password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"token":"tok","expires_at":0}`, w.Body.String())
}

func TestMe(t *testing.T) {
	userID := uuid.New()
	svc := new(mockUserService)
	svc.On("GetCurrentUser", mock.Anything, userID).
		Return(&entity.User{ID: userID, Name: "Ada", Email: "ada@example.com", PasswordHash: "hash"}, nil)
	r := newRouter(NewUserHandler(svc, logger.NewNop()), userID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Ada"`)
	assert.NotContains(t, w.Body.String(), "hash")
}

func TestUpdateAvatar_RejectsNonImage(t *testing.T) {
	svc := new(mockUserService)
	r := newRouter(NewUserHandler(svc, logger.NewNop()), uuid.New())

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("avatar", "notes.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte("hello"))
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/users/avatar", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "UpdateAvatar", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateAvatar_Unavailable(t *testing.T) {
	userID := uuid.New()
	svc := new(mockUserService)
	svc.On("UpdateAvatar", mock.Anything, userID, mock.AnythingOfType("dto.AvatarFile")).
		Return(nil, apperror.New(http.StatusServiceUnavailable, "Image upload is not available", apperror.ErrUnavailable))
	r := newRouter(NewUserHandler(svc, logger.NewNop()), userID)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("avatar", "me.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png"))
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/users/avatar", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"msg":"Image upload is not available"}`, w.Body.String())
}
