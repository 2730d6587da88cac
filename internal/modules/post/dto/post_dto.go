package dto

import (
	"time"

	"anoa.com/devconnector/internal/entity"
	"github.com/google/uuid"
)

type CreatePostRequest struct {
	Text string `json:"text" binding:"required,max=5000"`
}

type PostResponse struct {
	ID        uuid.UUID `json:"id"`
	User      uuid.UUID `json:"user"`
	Text      string    `json:"text"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"date"`
}

func NewPostResponse(p *entity.Post) PostResponse {
	return PostResponse{
		ID:        p.ID,
		User:      p.UserID,
		Text:      p.Text,
		Name:      p.Name,
		Avatar:    p.Avatar,
		CreatedAt: p.CreatedAt,
	}
}

func NewPostListResponse(posts []*entity.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, NewPostResponse(p))
	}
	return out
}
