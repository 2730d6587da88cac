package bootstrap

import (
	postRepo "anoa.com/devconnector/internal/modules/post/repository"
	profileRepo "anoa.com/devconnector/internal/modules/profile/repository"
	userRepo "anoa.com/devconnector/internal/modules/user/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// Repositories is the storage backend selected by STORE_DRIVER.
type Repositories struct {
	Users    userRepo.UserRepository
	Profiles profileRepo.ProfileRepository
	Posts    postRepo.PostRepository
}

func NewGormRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:    userRepo.NewUserRepository(db),
		Profiles: profileRepo.NewProfileRepository(db),
		Posts:    postRepo.NewPostRepository(db),
	}
}

func NewMongoRepositories(db *mongo.Database) Repositories {
	return Repositories{
		Users:    userRepo.NewMongoUserRepository(db),
		Profiles: profileRepo.NewMongoProfileRepository(db),
		Posts:    postRepo.NewMongoPostRepository(db),
	}
}
