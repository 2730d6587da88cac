package post

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"anoa.com/devconnector/internal/entity"
	postDto "anoa.com/devconnector/internal/modules/post/dto"
	postRepo "anoa.com/devconnector/internal/modules/post/repository"
	userRepo "anoa.com/devconnector/internal/modules/user/repository"
	"anoa.com/devconnector/pkg/apperror"
	"anoa.com/devconnector/pkg/event"
	"anoa.com/devconnector/pkg/logger"
	"anoa.com/devconnector/pkg/ratelimit"
	"anoa.com/devconnector/pkg/sanitize"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const createAction = "post"

var (
	ErrPostNotFound  = apperror.New(http.StatusNotFound, "Post not found", apperror.ErrNotFound)
	ErrNotAuthorized = apperror.New(http.StatusUnauthorized, "User not authorized", apperror.ErrForbidden)
	errEmptyText     = apperror.New(http.StatusBadRequest, "Text is required", apperror.ErrInvalidInput)
)

type PostService interface {
	CreatePost(ctx context.Context, userID uuid.UUID, req postDto.CreatePostRequest) (*postDto.PostResponse, error)
	ListPosts(ctx context.Context) ([]postDto.PostResponse, error)
	GetPostByID(ctx context.Context, postID uuid.UUID) (*postDto.PostResponse, error)
	GetPostsByUserID(ctx context.Context, userID uuid.UUID) ([]postDto.PostResponse, error)
	DeletePost(ctx context.Context, userID, postID uuid.UUID) error
}

type postService struct {
	posts      postRepo.PostRepository
	users      userRepo.UserRepository
	limiter    ratelimit.Limiter
	postWindow time.Duration
	publisher  event.Publisher
	sanitizer  *sanitize.Policy
	log        logger.Logger
}

func NewPostService(
	posts postRepo.PostRepository,
	users userRepo.UserRepository,
	limiter ratelimit.Limiter,
	postWindow time.Duration,
	publisher event.Publisher,
	log logger.Logger,
) PostService {
	if limiter == nil {
		limiter = ratelimit.NewRedisLimiter(nil)
	}
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &postService{
		posts:      posts,
		users:      users,
		limiter:    limiter,
		postWindow: postWindow,
		publisher:  publisher,
		sanitizer:  sanitize.New(),
		log:        log,
	}
}

func (s *postService) CreatePost(ctx context.Context, userID uuid.UUID, req postDto.CreatePostRequest) (*postDto.PostResponse, error) {
	text := s.sanitizer.Text(req.Text)
	if text == "" {
		return nil, errEmptyText
	}

	allowed, ttl, err := s.limiter.Allow(ctx, userID, createAction, s.postWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to check rate limit: %w", err)
	}
	if !allowed {
		return nil, &ratelimit.Error{
			Message:    fmt.Sprintf("You can only post once every %.0f seconds. Please wait %.0f seconds", s.postWindow.Seconds(), ttl.Seconds()),
			RetryAfter: ttl,
		}
	}

	created := false
	defer func() {
		if !created {
			if err := s.limiter.Reset(ctx, userID, createAction); err != nil {
				s.log.Warn("failed to reset post rate limit", zap.String("user_id", userID.String()), zap.Error(err))
			}
		}
	}()

	author, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.New(http.StatusNotFound, "User not found", err)
		}
		return nil, err
	}

	p := &entity.Post{
		UserID: userID,
		Text:   text,
		Name:   author.Name,
		Avatar: author.Avatar,
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, err
	}
	created = true

	s.publish(ctx, event.TypePostCreated, userID, p.ID)
	res := postDto.NewPostResponse(p)
	return &res, nil
}

func (s *postService) ListPosts(ctx context.Context) ([]postDto.PostResponse, error) {
	posts, err := s.posts.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return postDto.NewPostListResponse(posts), nil
}

func (s *postService) GetPostByID(ctx context.Context, postID uuid.UUID) (*postDto.PostResponse, error) {
	p, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	res := postDto.NewPostResponse(p)
	return &res, nil
}

func (s *postService) GetPostsByUserID(ctx context.Context, userID uuid.UUID) ([]postDto.PostResponse, error) {
	posts, err := s.posts.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return postDto.NewPostListResponse(posts), nil
}

// DeletePost only lets the author remove a post.
func (s *postService) DeletePost(ctx context.Context, userID, postID uuid.UUID) error {
	p, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	if p.UserID != userID {
		return ErrNotAuthorized
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	s.publish(ctx, event.TypePostDeleted, userID, postID)
	return nil
}

func (s *postService) publish(ctx context.Context, eventType string, userID, postID uuid.UUID) {
	err := s.publisher.Publish(ctx, event.TopicPostEvents, event.Event{
		Type:       eventType,
		UserID:     userID,
		ResourceID: postID,
	})
	if err != nil {
		s.log.Warn("failed to publish event", zap.String("type", eventType), zap.Error(err))
	}
}
