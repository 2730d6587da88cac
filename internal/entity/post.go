package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post keeps a copy of the author's name and avatar taken at creation time.
type Post struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Name      string    `gorm:"size:100" json:"name"`
	Avatar    string    `gorm:"type:text" json:"avatar"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"date"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
