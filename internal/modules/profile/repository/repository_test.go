package repository

import (
	"context"
	"testing"
	"time"

	"anoa.com/devconnector/internal/entity"
	userRepo "anoa.com/devconnector/internal/modules/user/repository"
	"anoa.com/devconnector/internal/testhelpers"
	"anoa.com/devconnector/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseProfileRepository(t *testing.T, repo ProfileRepository, users userRepo.UserRepository) {
	ctx := context.Background()

	alice := &entity.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "x", Avatar: "a.png"}
	bob := &entity.User{Name: "Bob", Email: "bob@example.com", PasswordHash: "x"}
	require.NoError(t, users.Create(ctx, alice))
	require.NoError(t, users.Create(ctx, bob))

	_, err := repo.FindByUserID(ctx, alice.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	from := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	profile := &entity.Profile{
		UserID: alice.ID,
		Status: "Developer",
		Skills: []string{" Go", " SQL"},
		Social: entity.Social{Twitter: "https://twitter.com/alice"},
		Experience: []entity.Experience{
			{ID: uuid.New(), Title: "Engineer", Company: "Acme", From: from},
		},
	}
	require.NoError(t, repo.Create(ctx, profile))
	require.NotEqual(t, uuid.Nil, profile.ID)

	err = repo.Create(ctx, &entity.Profile{UserID: alice.ID, Status: "Twice"})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	got, err := repo.FindByUserID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, got.ID)
	assert.Equal(t, []string{" Go", " SQL"}, got.Skills)
	assert.Equal(t, "https://twitter.com/alice", got.Social.Twitter)
	require.Len(t, got.Experience, 1)
	assert.True(t, from.Equal(got.Experience[0].From))
	require.NotNil(t, got.User)
	assert.Equal(t, "Alice", got.User.Name)
	assert.Equal(t, "a.png", got.User.Avatar)

	got.Status = "Lead"
	got.RemoveExperience(got.Experience[0].ID)
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.FindByUserID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lead", got.Status)
	assert.Empty(t, got.Experience)

	require.NoError(t, repo.Create(ctx, &entity.Profile{UserID: bob.ID, Status: "Student"}))

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	some, err := repo.FindByUserIDs(ctx, []uuid.UUID{bob.ID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, bob.ID, some[0].UserID)

	require.NoError(t, repo.DeleteByUserID(ctx, alice.ID))
	require.NoError(t, repo.DeleteByUserID(ctx, alice.ID))
	_, err = repo.FindByUserID(ctx, alice.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestProfileRepository_Gorm(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	exerciseProfileRepository(t, NewProfileRepository(db), userRepo.NewUserRepository(db))
}

func TestProfileRepository_Mongo(t *testing.T) {
	db := testhelpers.NewTestMongo(t)
	ctx := context.Background()
	require.NoError(t, EnsureMongoIndexes(ctx, db))
	require.NoError(t, userRepo.EnsureMongoIndexes(ctx, db))
	exerciseProfileRepository(t, NewMongoProfileRepository(db), userRepo.NewMongoUserRepository(db))
}
