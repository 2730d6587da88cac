package bootstrap

import (
	"context"
	"fmt"

	"anoa.com/devconnector/internal/entity"
	postRepo "anoa.com/devconnector/internal/modules/post/repository"
	profileRepo "anoa.com/devconnector/internal/modules/profile/repository"
	userRepo "anoa.com/devconnector/internal/modules/user/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(entity.Models()...)
}

// MigrateMongo creates the indexes the mongo repositories rely on.
func MigrateMongo(ctx context.Context, db *mongo.Database) error {
	steps := []struct {
		name string
		fn   func(context.Context, *mongo.Database) error
	}{
		{"users", userRepo.EnsureMongoIndexes},
		{"profiles", profileRepo.EnsureMongoIndexes},
		{"posts", postRepo.EnsureMongoIndexes},
	}
	for _, step := range steps {
		if err := step.fn(ctx, db); err != nil {
			return fmt.Errorf("create %s indexes: %w", step.name, err)
		}
	}
	return nil
}
