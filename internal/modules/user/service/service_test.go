package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"anoa.com/devconnector/internal/modules/user/dto"
	"anoa.com/devconnector/internal/modules/user/repository"
	"anoa.com/devconnector/internal/testhelpers"
	"anoa.com/devconnector/pkg/apperror"
	"anoa.com/devconnector/pkg/logger"
	"anoa.com/devconnector/pkg/storage"
	"anoa.com/devconnector/pkg/token"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockImageStorage struct {
	mock.Mock
}

func (m *mockImageStorage) UploadImage(ctx context.Context, r io.Reader, folder, fileName string) (string, error) {
	args := m.Called(ctx, r, folder, fileName)
	return args.String(0), args.Error(1)
}

func (m *mockImageStorage) DeleteImage(ctx context.Context, fileURL string) error {
	return m.Called(ctx, fileURL).Error(0)
}

const testSecret = "test-secret"

func newService(t *testing.T, imageStorage storage.ImageStorage) (UserService, repository.UserRepository) {
	repo := repository.NewUserRepository(testhelpers.NewTestDB(t))
	return NewUserService(repo, imageStorage, "avatars", testSecret, time.Hour, logger.NewNop()), repo
}

func TestRegister(t *testing.T) {
	svc, repo := newService(t, nil)
	ctx := context.Background()

	res, err := svc.Register(ctx, dto.RegisterInput{Name: " Ada ", Email: "Ada@Example.com", Password: "secret1"})
	require.NoError(t, err)

	userID, err := token.Parse(testSecret, res.Token)
	require.NoError(t, err)

	user, err := repo.FindByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.Equal(t, GravatarURL("ada@example.com"), user.Avatar)

	_, err = svc.Register(ctx, dto.RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret2"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))
	assert.Equal(t, "User already exists", apperror.PublicMessage(err))
}

func TestLogin(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, dto.RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)

	res, err := svc.Login(ctx, dto.LoginInput{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	for _, input := range []dto.LoginInput{
		{Email: "ada@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "secret1"},
	} {
		_, err := svc.Login(ctx, input)
		require.Error(t, err)
		assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))
		assert.Equal(t, "Invalid Credentials", apperror.PublicMessage(err))
	}
}

func TestGetCurrentUser_Missing(t *testing.T) {
	svc, _ := newService(t, nil)

	_, err := svc.GetCurrentUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, apperror.MapErrorToStatus(err))
}

func TestUpdateAvatar(t *testing.T) {
	ctx := context.Background()
	oldURL := "https://res.cloudinary.com/demo/image/upload/v1/avatars/old.webp"
	newURL := "https://res.cloudinary.com/demo/image/upload/v2/avatars/new.webp"

	imgs := new(mockImageStorage)
	svc, repo := newService(t, imgs)

	res, err := svc.Register(ctx, dto.RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	userID, err := token.Parse(testSecret, res.Token)
	require.NoError(t, err)

	file := bytes.NewBufferString("png")

	// first upload replaces the gravatar default, nothing to delete
	imgs.On("UploadImage", ctx, file, "avatars", "me.png").Return(oldURL, nil).Once()
	user, err := svc.UpdateAvatar(ctx, userID, dto.AvatarFile{Reader: file, FileName: "me.png"})
	require.NoError(t, err)
	assert.Equal(t, oldURL, user.Avatar)

	imgs.On("UploadImage", ctx, file, "avatars", "me.png").Return(newURL, nil).Once()
	imgs.On("DeleteImage", ctx, oldURL).Return(errors.New("cdn down")).Once()
	user, err = svc.UpdateAvatar(ctx, userID, dto.AvatarFile{Reader: file, FileName: "me.png"})
	require.NoError(t, err)
	assert.Equal(t, newURL, user.Avatar)

	stored, err := repo.FindByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, newURL, stored.Avatar)
	imgs.AssertExpectations(t)
}

func TestUpdateAvatar_StorageDisabled(t *testing.T) {
	svc, _ := newService(t, nil)

	_, err := svc.UpdateAvatar(context.Background(), uuid.New(), dto.AvatarFile{})
	assert.ErrorIs(t, err, apperror.ErrUnavailable)
	assert.Equal(t, http.StatusServiceUnavailable, apperror.MapErrorToStatus(err))
}

func TestGravatarURL(t *testing.T) {
	assert.Equal(t,
		"https://www.gravatar.com/avatar/0bc83cb571cd1c50ba6f3e8a78ef1346?s=200&r=pg&d=mm",
		GravatarURL(" MyEmailAddress@example.com "),
	)
}
