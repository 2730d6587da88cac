package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"anoa.com/devconnector/internal/entity"
	"anoa.com/devconnector/internal/modules/user/dto"
	"anoa.com/devconnector/internal/modules/user/repository"
	"anoa.com/devconnector/pkg/apperror"
	"anoa.com/devconnector/pkg/logger"
	"anoa.com/devconnector/pkg/storage"
	"anoa.com/devconnector/pkg/token"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	errUserExists         = apperror.New(http.StatusBadRequest, "User already exists", apperror.ErrConflict)
	errInvalidCredentials = apperror.New(http.StatusBadRequest, "Invalid Credentials", apperror.ErrUnauthorized)
	errStorageUnavailable = apperror.New(http.StatusServiceUnavailable, "Image upload is not available", apperror.ErrUnavailable)
)

type UserService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.TokenResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	UpdateAvatar(ctx context.Context, userID uuid.UUID, avatar dto.AvatarFile) (*entity.User, error)
}

type userService struct {
	repo         repository.UserRepository
	imageStorage storage.ImageStorage
	uploadFolder string
	secret       string
	tokenTTL     time.Duration
	log          logger.Logger
}

// NewUserService wires the user flows. imageStorage may be nil, which
// disables avatar uploads.
func NewUserService(
	repo repository.UserRepository,
	imageStorage storage.ImageStorage,
	uploadFolder, secret string,
	tokenTTL time.Duration,
	log logger.Logger,
) UserService {
	return &userService{
		repo:         repo,
		imageStorage: imageStorage,
		uploadFolder: uploadFolder,
		secret:       secret,
		tokenTTL:     tokenTTL,
		log:          log,
	}
}

func (s *userService) Register(ctx context.Context, input dto.RegisterInput) (*dto.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, errUserExists
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: string(hash),
		Avatar:       GravatarURL(email),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, errUserExists
		}
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()))
	return s.issueToken(user.ID)
}

func (s *userService) Login(ctx context.Context, input dto.LoginInput) (*dto.TokenResponse, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	return s.issueToken(user.ID)
}

func (s *userService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.New(http.StatusNotFound, "User not found", err)
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateAvatar(ctx context.Context, userID uuid.UUID, avatar dto.AvatarFile) (*entity.User, error) {
	if s.imageStorage == nil {
		return nil, errStorageUnavailable
	}

	user, err := s.GetCurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.imageStorage.UploadImage(ctx, avatar.Reader, s.uploadFolder, avatar.FileName)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateAvatar(ctx, userID, url); err != nil {
		return nil, err
	}

	// the previous upload is garbage once the new URL is stored
	if storage.ExtractPublicID(user.Avatar) != "" {
		if err := s.imageStorage.DeleteImage(ctx, user.Avatar); err != nil {
			s.log.Warn("failed to delete previous avatar",
				zap.String("user_id", userID.String()), zap.Error(err))
		}
	}

	user.Avatar = url
	return user, nil
}

func (s *userService) issueToken(userID uuid.UUID) (*dto.TokenResponse, error) {
	signed, expiresAt, err := token.Generate(s.secret, userID, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &dto.TokenResponse{Token: signed, ExpiresAt: expiresAt}, nil
}

// GravatarURL is the default avatar for an email: 200px, pg rated, mystery-man fallback.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=200&r=pg&d=mm"
}
