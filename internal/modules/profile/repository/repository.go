package repository

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/devconnector/internal/entity"
	"anoa.com/devconnector/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository loads profiles together with their owner's name and avatar.
type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Profile, error)
	FindByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]*entity.Profile, error)
	FindAll(ctx context.Context) ([]*entity.Profile, error)
	// Create fails with apperror.ErrConflict when the owner already has a profile.
	Create(ctx context.Context, profile *entity.Profile) error
	Update(ctx context.Context, profile *entity.Profile) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) withOwner(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("User", func(db *gorm.DB) *gorm.DB {
		return db.Select("id", "name", "avatar")
	})
}

func (r *profileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	var profile entity.Profile
	if err := r.withOwner(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &profile, nil
}

func (r *profileRepository) FindByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]*entity.Profile, error) {
	var profiles []*entity.Profile
	if len(userIDs) == 0 {
		return profiles, nil
	}
	if err := r.withOwner(ctx).Where("user_id IN ?", userIDs).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("find profiles: %w", err)
	}
	return profiles, nil
}

func (r *profileRepository) FindAll(ctx context.Context) ([]*entity.Profile, error) {
	var profiles []*entity.Profile
	if err := r.withOwner(ctx).Order("created_at ASC").Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *entity.Profile) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.ErrConflict
		}
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

func (r *profileRepository) Update(ctx context.Context, profile *entity.Profile) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(profile).Error; err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

func (r *profileRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&entity.Profile{}).Error; err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	return nil
}
