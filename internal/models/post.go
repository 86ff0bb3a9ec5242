// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Post represents a publishable unit of travel content. A post is either a
// plain article or a multi-day itinerary; the distinction is derived from
// the existence of itinerary steps, not stored on the row.
type Post struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Excerpt       *string   `json:"excerpt,omitempty"`
	Content       string    `json:"content"`
	Location      *string   `json:"location,omitempty"`
	Country       *string   `json:"country,omitempty"`
	ReadingTime   int       `json:"reading_time"`
	Published     bool      `json:"published"`
	ImageURL      *string   `json:"image_url,omitempty"`
	GalleryImages []string  `json:"gallery_images,omitempty"`
	YoutubeVideos []string  `json:"youtube_videos,omitempty"`
	PracticalInfo *string   `json:"practical_info,omitempty"`
	BudgetInfo    *string   `json:"budget_info,omitempty"`
	TransportInfo *string   `json:"transport_info,omitempty"`
	CreatedAt     time.Time `json:"created_at"`

	// HasItinerary is computed from itinerary_steps at query time and is
	// not a stored column. A post with at least one step is an itinerary.
	HasItinerary bool `json:"has_itinerary"`
}

// ItineraryStep is one day's entry within a multi-day itinerary post.
// Steps are displayed sorted by day number.
type ItineraryStep struct {
	ID          uuid.UUID `json:"id"`
	PostID      uuid.UUID `json:"post_id"`
	DayNumber   int       `json:"day_number"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Activities  []string  `json:"activities"`
	Images      []string  `json:"images"`
	Location    *string   `json:"location,omitempty"`
	Budget      *float64  `json:"budget,omitempty"`
	Tips        *string   `json:"tips,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
