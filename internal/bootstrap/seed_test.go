package bootstrap

import (
	"context"
	"testing"

	"anoa.com/devconnector/internal/testhelpers"
	"anoa.com/devconnector/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDemo_Idempotent(t *testing.T) {
	repos := NewGormRepositories(testhelpers.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, SeedDemo(ctx, repos, logger.NewNop()))
	require.NoError(t, SeedDemo(ctx, repos, logger.NewNop()))

	user, err := repos.Users.FindByEmail(ctx, DemoEmail)
	require.NoError(t, err)

	profile, err := repos.Profiles.FindByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Developer", profile.Status)
	assert.Len(t, profile.Experience, 2)
	require.NotNil(t, profile.User)
	assert.Equal(t, "Demo Developer", profile.User.Name)

	all, err := repos.Profiles.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
