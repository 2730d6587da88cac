package bootstrap

import (
	"context"
	"errors"
	"time"

	"anoa.com/devconnector/internal/entity"
	userService "anoa.com/devconnector/internal/modules/user/service"
	"anoa.com/devconnector/pkg/apperror"
	"anoa.com/devconnector/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	DemoEmail    = "demo@devconnector.dev"
	demoPassword = "demo123"
)

// SeedDemo creates a demo account with a filled-in profile. It is a no-op
// when the account already exists.
func SeedDemo(ctx context.Context, repos Repositories, log logger.Logger) error {
	if _, err := repos.Users.FindByEmail(ctx, DemoEmail); err == nil {
		log.Info("demo user already exists, skipping seed")
		return nil
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &entity.User{
		Name:         "Demo Developer",
		Email:        DemoEmail,
		PasswordHash: string(hash),
		Avatar:       userService.GravatarURL(DemoEmail),
	}
	if err := repos.Users.Create(ctx, user); err != nil {
		return err
	}

	from := time.Date(2019, time.March, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2021, time.June, 30, 0, 0, 0, 0, time.UTC)
	profile := &entity.Profile{
		UserID:         user.ID,
		Company:        "DevConnector",
		Website:        "https://devconnector.dev",
		Location:       "Remote",
		Status:         "Developer",
		Skills:         []string{" Go", " PostgreSQL", " MongoDB"},
		Bio:            "Seeded account for local development.",
		GithubUsername: "devconnector",
		Social:         entity.Social{Twitter: "https://twitter.com/devconnector"},
		Experience: []entity.Experience{
			{ID: uuid.New(), Title: "Backend Engineer", Company: "Acme", From: to.AddDate(0, 1, 0), Current: true},
			{ID: uuid.New(), Title: "Junior Developer", Company: "Initech", From: from, To: &to},
		},
		Education: []entity.Education{
			{ID: uuid.New(), School: "Open University", Degree: "BSc", FieldOfStudy: "Computer Science", From: from.AddDate(-4, 0, 0), To: &from},
		},
	}
	if err := repos.Profiles.Create(ctx, profile); err != nil {
		return err
	}

	log.Info("demo user seeded", zap.String("email", DemoEmail), zap.String("password", demoPassword))
	return nil
}
