package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ReactionType is a typed endorsement a user attaches to a comment.
// A user holds at most one reaction of each type per comment.
type ReactionType string

const (
	ReactionLike  ReactionType = "like"
	ReactionHeart ReactionType = "heart"
)

// Valid reports whether the reaction type is one of the supported kinds.
func (t ReactionType) Valid() bool {
	return t == ReactionLike || t == ReactionHeart
}

// CommentAuthor carries the public profile fields shown next to a comment.
type CommentAuthor struct {
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// CommentReactions aggregates reaction counts for a comment, plus the
// requesting user's own reaction state.
type CommentReactions struct {
	Likes       int  `json:"likes"`
	Hearts      int  `json:"hearts"`
	UserLiked   bool `json:"user_liked"`
	UserHearted bool `json:"user_hearted"`
}

// Comment is a visitor comment attached to a post. Comments render
// oldest-first and are mutable only by their owning user.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	UserID    uuid.UUID `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Author    CommentAuthor    `json:"author"`
	Reactions CommentReactions `json:"reactions"`
}

// Edited reports whether the comment was modified after creation.
func (c *Comment) Edited() bool {
	return !c.UpdatedAt.Equal(c.CreatedAt)
}

// MarshalJSON includes the derived edited flag in the serialized comment.
func (c Comment) MarshalJSON() ([]byte, error) {
	type alias Comment
	return json.Marshal(struct {
		alias
		Edited bool `json:"edited"`
	}{alias(c), c.Edited()})
}

// CommentReaction is uniquely identified by (comment, user, reaction type).
type CommentReaction struct {
	ID           uuid.UUID    `json:"id"`
	CommentID    uuid.UUID    `json:"comment_id"`
	UserID       uuid.UUID    `json:"user_id"`
	ReactionType ReactionType `json:"reaction_type"`
	CreatedAt    time.Time    `json:"created_at"`
}

// CommentReply is a short answer under a comment. Replies have no
// reactions and cannot be edited.
type CommentReply struct {
	ID        uuid.UUID     `json:"id"`
	CommentID uuid.UUID     `json:"comment_id"`
	UserID    uuid.UUID     `json:"user_id"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
	Author    CommentAuthor `json:"author"`
}

// PhotoComment is structurally analogous to Comment but keyed by an album
// photo. The public UI offers no edit, delete, or reactions for these.
type PhotoComment struct {
	ID        uuid.UUID     `json:"id"`
	PhotoID   uuid.UUID     `json:"photo_id"`
	UserID    uuid.UUID     `json:"user_id"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Author    CommentAuthor `json:"author"`
}
