package profile

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"anoa.com/devconnector/internal/entity"
	postRepo "anoa.com/devconnector/internal/modules/post/repository"
	profileDto "anoa.com/devconnector/internal/modules/profile/dto"
	profileRepo "anoa.com/devconnector/internal/modules/profile/repository"
	userRepo "anoa.com/devconnector/internal/modules/user/repository"
	"anoa.com/devconnector/pkg/apperror"
	"anoa.com/devconnector/pkg/event"
	"anoa.com/devconnector/pkg/logger"
	"anoa.com/devconnector/pkg/sanitize"
	"anoa.com/devconnector/pkg/search"
	"anoa.com/devconnector/pkg/validator"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const searchLimit = 20

var (
	ErrNoProfile           = apperror.BadRequestNotFound("There is no profile for this user")
	ErrProfileNotFound     = apperror.BadRequestNotFound("Profile not found")
	ErrExperienceNotFound  = apperror.BadRequestNotFound("Experience not found")
	ErrEducationNotFound   = apperror.BadRequestNotFound("Education not found")
	ErrSearchUnavailable   = apperror.New(http.StatusServiceUnavailable, "Search is not available", apperror.ErrUnavailable)
	ErrSearchQueryRequired = apperror.New(http.StatusBadRequest, "Search query is required", apperror.ErrBadRequest)
	errStatusRequired      = validator.Errors{{Msg: "Status is required", Param: "status", Location: "body"}}
	errInvalidDateRange    = apperror.New(http.StatusBadRequest, "From date is required and needs to be from the past", apperror.ErrInvalidInput)
)

type ProfileService interface {
	GetCurrentProfile(ctx context.Context, userID uuid.UUID) (*profileDto.ProfileResponse, error)
	UpsertProfile(ctx context.Context, userID uuid.UUID, input profileDto.ProfileInput) (*profileDto.ProfileResponse, error)
	ListProfiles(ctx context.Context) ([]profileDto.ProfileResponse, error)
	GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*profileDto.ProfileResponse, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID) error
	AddExperience(ctx context.Context, userID uuid.UUID, input profileDto.ExperienceInput) (*profileDto.ProfileResponse, error)
	RemoveExperience(ctx context.Context, userID uuid.UUID, expID string) (*profileDto.ProfileResponse, error)
	AddEducation(ctx context.Context, userID uuid.UUID, input profileDto.EducationInput) (*profileDto.ProfileResponse, error)
	RemoveEducation(ctx context.Context, userID uuid.UUID, eduID string) (*profileDto.ProfileResponse, error)
	SearchProfiles(ctx context.Context, query string) ([]profileDto.ProfileResponse, error)
	Reindex(ctx context.Context) (int, error)
}

type profileService struct {
	profiles  profileRepo.ProfileRepository
	users     userRepo.UserRepository
	posts     postRepo.PostRepository
	index     search.ProfileIndex
	publisher event.Publisher
	sanitizer *sanitize.Policy
	log       logger.Logger
}

// NewProfileService wires the profile flows. index may be nil, which disables
// search and indexing.
func NewProfileService(
	profiles profileRepo.ProfileRepository,
	users userRepo.UserRepository,
	posts postRepo.PostRepository,
	index search.ProfileIndex,
	publisher event.Publisher,
	log logger.Logger,
) ProfileService {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	return &profileService{
		profiles:  profiles,
		users:     users,
		posts:     posts,
		index:     index,
		publisher: publisher,
		sanitizer: sanitize.New(),
		log:       log,
	}
}

func (s *profileService) GetCurrentProfile(ctx context.Context, userID uuid.UUID) (*profileDto.ProfileResponse, error) {
	p, err := s.ownProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return respond(p), nil
}

func (s *profileService) UpsertProfile(ctx context.Context, userID uuid.UUID, input profileDto.ProfileInput) (*profileDto.ProfileResponse, error) {
	// markup-only or blank status passes binding but is empty once cleaned
	if s.sanitizer.Text(input.Status) == "" {
		return nil, errStatusRequired
	}

	p, err := s.profiles.FindByUserID(ctx, userID)
	switch {
	case err == nil:
		s.applyInput(p, input)
		if err := s.profiles.Update(ctx, p); err != nil {
			return nil, err
		}
	case errors.Is(err, apperror.ErrNotFound):
		p = &entity.Profile{UserID: userID}
		s.applyInput(p, input)
		if err := s.profiles.Create(ctx, p); err != nil {
			if !errors.Is(err, apperror.ErrConflict) {
				return nil, err
			}
			// a concurrent request created it first, fold this one in as an update
			existing, err := s.profiles.FindByUserID(ctx, userID)
			if err != nil {
				return nil, err
			}
			s.applyInput(existing, input)
			if err := s.profiles.Update(ctx, existing); err != nil {
				return nil, err
			}
		}
	default:
		return nil, err
	}

	saved, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.indexProfile(saved)
	s.publish(ctx, event.TopicProfileEvents, event.TypeProfileUpserted, userID, saved.ID)
	return respond(saved), nil
}

func (s *profileService) ListProfiles(ctx context.Context) ([]profileDto.ProfileResponse, error) {
	profiles, err := s.profiles.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return profileDto.NewProfileListResponse(profiles), nil
}

func (s *profileService) GetProfileByUserID(ctx context.Context, userID uuid.UUID) (*profileDto.ProfileResponse, error) {
	p, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return respond(p), nil
}

// DeleteAccount removes posts, then the profile, then the user. The steps are
// not atomic: a failure part way leaves the earlier deletions in place.
func (s *profileService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	removed, err := s.posts.DeleteByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete posts: %w", err)
	}
	if err := s.profiles.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.log.Info("account deleted",
		zap.String("user_id", userID.String()),
		zap.Int64("posts_removed", removed),
	)

	if s.index != nil {
		if err := s.index.DeleteProfile(userID.String()); err != nil {
			s.log.Warn("failed to remove profile from search index",
				zap.String("user_id", userID.String()), zap.Error(err))
		}
	}
	s.publish(ctx, event.TopicProfileEvents, event.TypeAccountDeleted, userID, userID)
	return nil
}

func (s *profileService) AddExperience(ctx context.Context, userID uuid.UUID, input profileDto.ExperienceInput) (*profileDto.ProfileResponse, error) {
	from, to, err := parseRange(input.From, input.To)
	if err != nil {
		return nil, err
	}

	p, err := s.ownProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	p.PrependExperience(entity.Experience{
		ID:          uuid.New(),
		Title:       s.sanitizer.Text(input.Title),
		Company:     s.sanitizer.Text(input.Company),
		Location:    s.sanitizer.Text(input.Location),
		From:        from,
		To:          to,
		Current:     input.Current,
		Description: s.sanitizer.Text(input.Description),
	})

	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, err
	}
	return respond(p), nil
}

func (s *profileService) RemoveExperience(ctx context.Context, userID uuid.UUID, expID string) (*profileDto.ProfileResponse, error) {
	p, err := s.ownProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(expID)
	if err != nil || !p.RemoveExperience(id) {
		return nil, ErrExperienceNotFound
	}

	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, err
	}
	return respond(p), nil
}

func (s *profileService) AddEducation(ctx context.Context, userID uuid.UUID, input profileDto.EducationInput) (*profileDto.ProfileResponse, error) {
	from, to, err := parseRange(input.From, input.To)
	if err != nil {
		return nil, err
	}

	p, err := s.ownProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	p.PrependEducation(entity.Education{
		ID:           uuid.New(),
		School:       s.sanitizer.Text(input.School),
		Degree:       s.sanitizer.Text(input.Degree),
		FieldOfStudy: s.sanitizer.Text(input.FieldOfStudy),
		From:         from,
		To:           to,
		Current:      input.Current,
		Description:  s.sanitizer.Text(input.Description),
	})

	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, err
	}
	return respond(p), nil
}

func (s *profileService) RemoveEducation(ctx context.Context, userID uuid.UUID, eduID string) (*profileDto.ProfileResponse, error) {
	p, err := s.ownProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(eduID)
	if err != nil || !p.RemoveEducation(id) {
		return nil, ErrEducationNotFound
	}

	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, err
	}
	return respond(p), nil
}

func (s *profileService) SearchProfiles(ctx context.Context, query string) ([]profileDto.ProfileResponse, error) {
	if s.index == nil {
		return nil, ErrSearchUnavailable
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrSearchQueryRequired
	}

	hits, err := s.index.SearchProfiles(query, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search profiles: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(hits))
	for _, hit := range hits {
		if id, err := uuid.Parse(hit); err == nil {
			ids = append(ids, id)
		}
	}

	profiles, err := s.profiles.FindByUserIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	// keep relevance order, dropping hits whose profile no longer exists
	byOwner := make(map[uuid.UUID]*entity.Profile, len(profiles))
	for _, p := range profiles {
		byOwner[p.UserID] = p
	}
	ordered := make([]*entity.Profile, 0, len(profiles))
	for _, id := range ids {
		if p, ok := byOwner[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return profileDto.NewProfileListResponse(ordered), nil
}

// Reindex pushes every stored profile to the search index.
func (s *profileService) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, ErrSearchUnavailable
	}
	profiles, err := s.profiles.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	for _, p := range profiles {
		if err := s.index.IndexProfile(toDocument(p)); err != nil {
			return 0, fmt.Errorf("index profile %s: %w", p.UserID, err)
		}
	}
	return len(profiles), nil
}

func (s *profileService) ownProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	p, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, ErrNoProfile
		}
		return nil, err
	}
	return p, nil
}

// applyInput copies every non-empty field of the input onto the profile.
func (s *profileService) applyInput(p *entity.Profile, in profileDto.ProfileInput) {
	setIfPresent(&p.Company, s.sanitizer.Text(in.Company))
	setIfPresent(&p.Website, strings.TrimSpace(in.Website))
	setIfPresent(&p.Location, s.sanitizer.Text(in.Location))
	setIfPresent(&p.Bio, s.sanitizer.Text(in.Bio))
	setIfPresent(&p.Status, s.sanitizer.Text(in.Status))
	setIfPresent(&p.GithubUsername, s.sanitizer.Text(in.GithubUsername))
	if len(in.Skills) > 0 {
		p.Skills = []string(in.Skills)
	}

	setIfPresent(&p.Social.Youtube, strings.TrimSpace(in.Youtube))
	setIfPresent(&p.Social.Twitter, strings.TrimSpace(in.Twitter))
	setIfPresent(&p.Social.Facebook, strings.TrimSpace(in.Facebook))
	setIfPresent(&p.Social.Linkedin, strings.TrimSpace(in.Linkedin))
	setIfPresent(&p.Social.Instagram, strings.TrimSpace(in.Instagram))
}

func setIfPresent(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func parseRange(fromRaw, toRaw string) (time.Time, *time.Time, error) {
	from, err := validator.ParseDate(fromRaw)
	if err != nil {
		return time.Time{}, nil, errInvalidDateRange
	}
	if strings.TrimSpace(toRaw) == "" {
		return from, nil, nil
	}
	to, err := validator.ParseDate(toRaw)
	if err != nil || !from.Before(to) {
		return time.Time{}, nil, errInvalidDateRange
	}
	return from, &to, nil
}

func (s *profileService) indexProfile(p *entity.Profile) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexProfile(toDocument(p)); err != nil {
		s.log.Warn("failed to index profile",
			zap.String("user_id", p.UserID.String()), zap.Error(err))
	}
}

func (s *profileService) publish(ctx context.Context, topic, eventType string, userID, resourceID uuid.UUID) {
	err := s.publisher.Publish(ctx, topic, event.Event{
		Type:       eventType,
		UserID:     userID,
		ResourceID: resourceID,
	})
	if err != nil {
		s.log.Warn("failed to publish event",
			zap.String("type", eventType), zap.String("user_id", userID.String()), zap.Error(err))
	}
}

func toDocument(p *entity.Profile) search.ProfileDocument {
	doc := search.ProfileDocument{
		ID:       p.UserID.String(),
		Status:   p.Status,
		Company:  p.Company,
		Location: p.Location,
		Skills:   p.Skills,
		Bio:      p.Bio,
	}
	if p.User != nil {
		doc.Name = p.User.Name
	}
	return doc
}

func respond(p *entity.Profile) *profileDto.ProfileResponse {
	res := profileDto.NewProfileResponse(p)
	return &res
}
