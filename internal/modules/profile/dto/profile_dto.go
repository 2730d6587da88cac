package dto

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"anoa.com/devconnector/internal/entity"
	"github.com/google/uuid"
)

// SkillList accepts either a JSON array of skills or a comma separated string.
// String input is split on "," and every element is trimmed and then prefixed
// with a single space, so "a, b" becomes [" a", " b"]. Clients depend on that.
// Empty input decodes to nil so "required" rejects it.
type SkillList []string

func (s *SkillList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}

	switch data[0] {
	case '"':
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if strings.TrimSpace(raw) == "" {
			*s = nil
			return nil
		}
		parts := strings.Split(raw, ",")
		out := make(SkillList, 0, len(parts))
		for _, part := range parts {
			out = append(out, " "+strings.TrimSpace(part))
		}
		*s = out
		return nil
	case '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		if len(list) == 0 {
			*s = nil
			return nil
		}
		*s = list
		return nil
	default:
		return &json.UnmarshalTypeError{
			Value: "non-string",
			Type:  reflect.TypeOf(SkillList(nil)),
			Field: "skills",
		}
	}
}

// ProfileInput is a partial update: empty fields leave the stored value alone.
type ProfileInput struct {
	Company        string    `json:"company"`
	Website        string    `json:"website"`
	Location       string    `json:"location"`
	Bio            string    `json:"bio"`
	Status         string    `json:"status" binding:"required"`
	Skills         SkillList `json:"skills" binding:"required,min=1"`
	GithubUsername string    `json:"githubusername"`
	Youtube        string    `json:"youtube"`
	Twitter        string    `json:"twitter"`
	Facebook       string    `json:"facebook"`
	Linkedin       string    `json:"linkedin"`
	Instagram      string    `json:"instagram"`
}

type ExperienceInput struct {
	Title       string `json:"title" binding:"required"`
	Company     string `json:"company" binding:"required"`
	Location    string `json:"location"`
	From        string `json:"from" binding:"required,date,datebefore=To"`
	To          string `json:"to" binding:"omitempty,date"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

type EducationInput struct {
	School       string `json:"school" binding:"required"`
	Degree       string `json:"degree" binding:"required"`
	FieldOfStudy string `json:"fieldofstudy" binding:"required"`
	From         string `json:"from" binding:"required,date,datebefore=To"`
	To           string `json:"to" binding:"omitempty,date"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

type OwnerResponse struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Avatar string    `json:"avatar"`
}

type ProfileResponse struct {
	ID             uuid.UUID           `json:"id"`
	User           OwnerResponse       `json:"user"`
	Company        string              `json:"company,omitempty"`
	Website        string              `json:"website,omitempty"`
	Location       string              `json:"location,omitempty"`
	Status         string              `json:"status"`
	Skills         []string            `json:"skills"`
	Bio            string              `json:"bio,omitempty"`
	GithubUsername string              `json:"githubusername,omitempty"`
	Social         entity.Social       `json:"social"`
	Experience     []entity.Experience `json:"experience"`
	Education      []entity.Education  `json:"education"`
	CreatedAt      time.Time           `json:"date"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

func NewProfileResponse(p *entity.Profile) ProfileResponse {
	owner := OwnerResponse{ID: p.UserID}
	if p.User != nil {
		owner.Name = p.User.Name
		owner.Avatar = p.User.Avatar
	}

	res := ProfileResponse{
		ID:             p.ID,
		User:           owner,
		Company:        p.Company,
		Website:        p.Website,
		Location:       p.Location,
		Status:         p.Status,
		Skills:         p.Skills,
		Bio:            p.Bio,
		GithubUsername: p.GithubUsername,
		Social:         p.Social,
		Experience:     p.Experience,
		Education:      p.Education,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if res.Skills == nil {
		res.Skills = []string{}
	}
	if res.Experience == nil {
		res.Experience = []entity.Experience{}
	}
	if res.Education == nil {
		res.Education = []entity.Education{}
	}
	return res
}

func NewProfileListResponse(profiles []*entity.Profile) []ProfileResponse {
	out := make([]ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, NewProfileResponse(p))
	}
	return out
}
