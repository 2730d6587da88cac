package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Social struct {
	Youtube   string `gorm:"size:255" json:"youtube,omitempty"`
	Twitter   string `gorm:"size:255" json:"twitter,omitempty"`
	Facebook  string `gorm:"size:255" json:"facebook,omitempty"`
	Linkedin  string `gorm:"size:255" json:"linkedin,omitempty"`
	Instagram string `gorm:"size:255" json:"instagram,omitempty"`
}

// Experience and Education entries live inside the profile row, newest first.
type Experience struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location,omitempty"`
	From        time.Time  `json:"from"`
	To          *time.Time `json:"to"`
	Current     bool       `json:"current"`
	Description string     `json:"description,omitempty"`
}

type Education struct {
	ID           uuid.UUID  `json:"id"`
	School       string     `json:"school"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"fieldofstudy"`
	From         time.Time  `json:"from"`
	To           *time.Time `json:"to"`
	Current      bool       `json:"current"`
	Description  string     `json:"description,omitempty"`
}

type Profile struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID    `gorm:"type:uuid;uniqueIndex;not null" json:"-"`
	User           *User        `gorm:"foreignKey:UserID" json:"-"`
	Company        string       `gorm:"size:255" json:"company,omitempty"`
	Website        string       `gorm:"size:255" json:"website,omitempty"`
	Location       string       `gorm:"size:255" json:"location,omitempty"`
	Status         string       `gorm:"size:255;not null" json:"status"`
	Skills         []string     `gorm:"serializer:json;type:jsonb" json:"skills"`
	Bio            string       `gorm:"type:text" json:"bio,omitempty"`
	GithubUsername string       `gorm:"size:255" json:"githubusername,omitempty"`
	Social         Social       `gorm:"embedded;embeddedPrefix:social_" json:"social"`
	Experience     []Experience `gorm:"serializer:json;type:jsonb" json:"experience"`
	Education      []Education  `gorm:"serializer:json;type:jsonb" json:"education"`
	CreatedAt      time.Time    `gorm:"autoCreateTime" json:"date"`
	UpdatedAt      time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// RemoveExperience drops the entry with the given id and reports whether it existed.
func (p *Profile) RemoveExperience(id uuid.UUID) bool {
	for i, exp := range p.Experience {
		if exp.ID == id {
			p.Experience = append(p.Experience[:i:i], p.Experience[i+1:]...)
			return true
		}
	}
	return false
}

func (p *Profile) RemoveEducation(id uuid.UUID) bool {
	for i, edu := range p.Education {
		if edu.ID == id {
			p.Education = append(p.Education[:i:i], p.Education[i+1:]...)
			return true
		}
	}
	return false
}

func (p *Profile) PrependExperience(exp Experience) {
	p.Experience = append([]Experience{exp}, p.Experience...)
}

func (p *Profile) PrependEducation(edu Education) {
	p.Education = append([]Education{edu}, p.Education...)
}
