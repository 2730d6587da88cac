package post

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"anoa.com/devconnector/internal/entity"
	postDto "anoa.com/devconnector/internal/modules/post/dto"
	postRepo "anoa.com/devconnector/internal/modules/post/repository"
	userRepo "anoa.com/devconnector/internal/modules/user/repository"
	"anoa.com/devconnector/internal/testhelpers"
	"anoa.com/devconnector/pkg/apperror"
	"anoa.com/devconnector/pkg/logger"
	"anoa.com/devconnector/pkg/ratelimit"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLimiter struct {
	mock.Mock
}

func (m *mockLimiter) Allow(ctx context.Context, userID uuid.UUID, action string, window time.Duration) (bool, time.Duration, error) {
	args := m.Called(ctx, userID, action, window)
	return args.Bool(0), args.Get(1).(time.Duration), args.Error(2)
}

func (m *mockLimiter) Reset(ctx context.Context, userID uuid.UUID, action string) error {
	return m.Called(ctx, userID, action).Error(0)
}

type fixture struct {
	ctx     context.Context
	svc     PostService
	posts   postRepo.PostRepository
	limiter *mockLimiter
	author  *entity.User
}

func newFixture(t *testing.T) *fixture {
	db := testhelpers.NewTestDB(t)
	users := userRepo.NewUserRepository(db)
	posts := postRepo.NewPostRepository(db)
	limiter := new(mockLimiter)

	author := &entity.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "x", Avatar: "//ada"}
	require.NoError(t, users.Create(context.Background(), author))

	return &fixture{
		ctx:     context.Background(),
		svc:     NewPostService(posts, users, limiter, 5*time.Second, nil, logger.NewNop()),
		posts:   posts,
		limiter: limiter,
		author:  author,
	}
}

func TestCreatePost_CopiesAuthor(t *testing.T) {
	f := newFixture(t)
	f.limiter.On("Allow", f.ctx, f.author.ID, "post", 5*time.Second).Return(true, time.Duration(0), nil)

	res, err := f.svc.CreatePost(f.ctx, f.author.ID, postDto.CreatePostRequest{Text: "<p>Hello</p> world"})
	require.NoError(t, err)

	assert.Equal(t, "Hello world", res.Text)
	assert.Equal(t, "Ada", res.Name)
	assert.Equal(t, "//ada", res.Avatar)
	assert.Equal(t, f.author.ID, res.User)
	f.limiter.AssertNotCalled(t, "Reset", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreatePost_RateLimited(t *testing.T) {
	f := newFixture(t)
	f.limiter.On("Allow", f.ctx, f.author.ID, "post", 5*time.Second).Return(false, 3*time.Second, nil)

	_, err := f.svc.CreatePost(f.ctx, f.author.ID, postDto.CreatePostRequest{Text: "again"})

	var rlErr *ratelimit.Error
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, 3*time.Second, rlErr.RetryAfter)
	assert.Equal(t, http.StatusTooManyRequests, apperror.MapErrorToStatus(err))

	posts, err := f.posts.FindAll(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestCreatePost_FailureReleasesSlot(t *testing.T) {
	f := newFixture(t)
	stranger := uuid.New()
	f.limiter.On("Allow", f.ctx, stranger, "post", 5*time.Second).Return(true, time.Duration(0), nil)
	f.limiter.On("Reset", f.ctx, stranger, "post").Return(errors.New("redis gone"))

	_, err := f.svc.CreatePost(f.ctx, stranger, postDto.CreatePostRequest{Text: "hi"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	f.limiter.AssertExpectations(t)
}

func TestCreatePost_EmptyAfterSanitizing(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreatePost(f.ctx, f.author.ID, postDto.CreatePostRequest{Text: "<script>x</script>"})
	assert.Equal(t, http.StatusBadRequest, apperror.MapErrorToStatus(err))
	f.limiter.AssertNotCalled(t, "Allow", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDeletePost_OwnerOnly(t *testing.T) {
	f := newFixture(t)
	p := &entity.Post{UserID: f.author.ID, Text: "mine"}
	require.NoError(t, f.posts.Create(f.ctx, p))

	err := f.svc.DeletePost(f.ctx, uuid.New(), p.ID)
	assert.Equal(t, http.StatusUnauthorized, apperror.MapErrorToStatus(err))
	assert.Equal(t, "User not authorized", apperror.PublicMessage(err))

	require.NoError(t, f.svc.DeletePost(f.ctx, f.author.ID, p.ID))

	err = f.svc.DeletePost(f.ctx, f.author.ID, p.ID)
	assert.Equal(t, http.StatusNotFound, apperror.MapErrorToStatus(err))
	assert.Equal(t, "Post not found", apperror.PublicMessage(err))
}

func TestListAndGet(t *testing.T) {
	f := newFixture(t)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	older := &entity.Post{UserID: f.author.ID, Text: "older", CreatedAt: base}
	newer := &entity.Post{UserID: f.author.ID, Text: "newer", CreatedAt: base.Add(time.Minute)}
	require.NoError(t, f.posts.Create(f.ctx, older))
	require.NoError(t, f.posts.Create(f.ctx, newer))

	all, err := f.svc.ListPosts(f.ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "newer", all[0].Text)

	mine, err := f.svc.GetPostsByUserID(f.ctx, f.author.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	none, err := f.svc.GetPostsByUserID(f.ctx, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	got, err := f.svc.GetPostByID(f.ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "older", got.Text)

	_, err = f.svc.GetPostByID(f.ctx, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
