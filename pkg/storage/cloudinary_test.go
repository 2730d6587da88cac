package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPublicID(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"versioned", "https://res.cloudinary.com/demo/image/upload/v1712345/avatars/me.webp", "avatars/me"},
		{"no version", "https://res.cloudinary.com/demo/image/upload/avatars/me.jpg", "avatars/me"},
		{"folder starting with v", "https://res.cloudinary.com/demo/image/upload/videos/clip.png", "videos/clip"},
		{"gravatar", "https://www.gravatar.com/avatar/abc?s=200&r=pg&d=mm", ""},
		{"upload is last", "https://res.cloudinary.com/demo/image/upload", ""},
		{"only version", "https://res.cloudinary.com/demo/image/upload/v1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPublicID(tt.url))
		})
	}
}

func TestNewCloudinaryStorage_NotConfigured(t *testing.T) {
	s, err := NewCloudinaryStorage("")
	require.ErrorIs(t, err, ErrNotConfigured)
	assert.Nil(t, s)
}
