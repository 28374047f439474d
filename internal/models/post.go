package models

import (
	"time"

	"github.com/google/uuid"
)

// MediaType of a post attachment. Empty means the post is text only.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

func (m MediaType) Valid() bool {
	switch m {
	case MediaImage, MediaVideo, MediaAudio:
		return true
	}
	return false
}

// Media is a descriptor of an already uploaded attachment
// The backend stores the reference only, not the bytes
type Media struct {
	Type MediaType
	URL  string
	Name string
}

type Post struct {
	ID        uuid.UUID
	AuthorID  uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	Content   string
	Media     *Media
	Likes     int32

	// Hashtags extracted from content, lowercased, without '#'
	Tags []string
}
