package models

import (
	"time"

	"github.com/google/uuid"
)

// Album groups photos taken on a trip.
type Album struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	CoverImage  *string   `json:"cover_image,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AlbumPhoto is a single photo within an album, ordered by its display
// position.
type AlbumPhoto struct {
	ID        uuid.UUID  `json:"id"`
	AlbumID   uuid.UUID  `json:"album_id"`
	ImageURL  string     `json:"image_url"`
	Caption   *string    `json:"caption,omitempty"`
	DateTaken *time.Time `json:"date_taken,omitempty"`
	Position  *int       `json:"position,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
