package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"carnet/internal/models"
)

// CommentStore handles comments, their reactions, and replies.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore creates a new CommentStore with the given database connection.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

// ListByPost returns the comments of a post oldest-first, each annotated
// with its author profile, aggregate reaction counts, and the viewer's own
// reaction flags. viewerID may be uuid.Nil for anonymous visitors.
func (s *CommentStore) ListByPost(postID, viewerID uuid.UUID) ([]models.Comment, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.post_id, c.user_id, c.content, c.created_at, c.updated_at,
		       COALESCE(p.username, 'voyageur'), p.avatar_url
		FROM comments c
		LEFT JOIN profiles p ON p.user_id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(
			&c.ID, &c.PostID, &c.UserID, &c.Content, &c.CreatedAt, &c.UpdatedAt,
			&c.Author.Username, &c.Author.AvatarURL,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		index[c.ID] = len(comments)
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return comments, nil
	}

	// Fetch every reaction for the post's comments in one query and fold
	// counts and viewer flags in memory.
	reactions, err := s.db.Query(`
		SELECT r.comment_id, r.user_id, r.reaction_type
		FROM comment_reactions r
		JOIN comments c ON c.id = r.comment_id
		WHERE c.post_id = $1
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comment reactions: %w", err)
	}
	defer reactions.Close()

	for reactions.Next() {
		var commentID, userID uuid.UUID
		var rtype models.ReactionType
		if err := reactions.Scan(&commentID, &userID, &rtype); err != nil {
			return nil, fmt.Errorf("scan reaction: %w", err)
		}
		i, ok := index[commentID]
		if !ok {
			continue
		}
		mine := viewerID != uuid.Nil && userID == viewerID
		switch rtype {
		case models.ReactionLike:
			comments[i].Reactions.Likes++
			if mine {
				comments[i].Reactions.UserLiked = true
			}
		case models.ReactionHeart:
			comments[i].Reactions.Hearts++
			if mine {
				comments[i].Reactions.UserHearted = true
			}
		}
	}
	return comments, reactions.Err()
}

// FindByID retrieves a single comment. Returns nil if not found.
func (s *CommentStore) FindByID(id uuid.UUID) (*models.Comment, error) {
	c := &models.Comment{}
	err := s.db.QueryRow(`
		SELECT c.id, c.post_id, c.user_id, c.content, c.created_at, c.updated_at,
		       COALESCE(p.username, 'voyageur'), p.avatar_url
		FROM comments c
		LEFT JOIN profiles p ON p.user_id = c.user_id
		WHERE c.id = $1
	`, id).Scan(
		&c.ID, &c.PostID, &c.UserID, &c.Content, &c.CreatedAt, &c.UpdatedAt,
		&c.Author.Username, &c.Author.AvatarURL,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return c, nil
}

// Add inserts a new comment. Content is trimmed; blank content is rejected
// before touching the database.
func (s *CommentStore) Add(postID, userID uuid.UUID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("add comment: empty content")
	}

	var id uuid.UUID
	err := s.db.QueryRow(`
		INSERT INTO comments (post_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id
	`, postID, userID, content).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	return s.FindByID(id)
}

// Update rewrites a comment's content. The WHERE clause carries the owner
// predicate, so a non-owning user can never touch the row regardless of
// what the handler checked. Returns false when nothing matched.
func (s *CommentStore) Update(id, userID uuid.UUID, content string) (bool, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return false, fmt.Errorf("update comment: empty content")
	}

	res, err := s.db.Exec(`
		UPDATE comments SET content = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
	`, content, id, userID)
	if err != nil {
		return false, fmt.Errorf("update comment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update comment rows: %w", err)
	}
	return n > 0, nil
}

// Delete removes a comment owned by userID. Reactions and replies cascade.
// Returns false when the comment doesn't exist or belongs to someone else.
func (s *CommentStore) Delete(id, userID uuid.UUID) (bool, error) {
	res, err := s.db.Exec(`
		DELETE FROM comments WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete comment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete comment rows: %w", err)
	}
	return n > 0, nil
}

// ToggleReaction flips the (comment, user, type) reaction inside one
// transaction: remove it if present, otherwise insert it. The unique
// constraint plus ON CONFLICT DO NOTHING absorbs concurrent toggles from
// rapid double-clicks. Returns true when the reaction is active afterwards.
func (s *CommentStore) ToggleReaction(commentID, userID uuid.UUID, rtype models.ReactionType) (bool, error) {
	if !rtype.Valid() {
		return false, fmt.Errorf("toggle reaction: unknown type %q", rtype)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("toggle reaction begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		DELETE FROM comment_reactions
		WHERE comment_id = $1 AND user_id = $2 AND reaction_type = $3
	`, commentID, userID, rtype)
	if err != nil {
		return false, fmt.Errorf("toggle reaction delete: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("toggle reaction rows: %w", err)
	}

	active := false
	if deleted == 0 {
		_, err = tx.Exec(`
			INSERT INTO comment_reactions (comment_id, user_id, reaction_type)
			VALUES ($1, $2, $3)
			ON CONFLICT ON CONSTRAINT uq_reaction DO NOTHING
		`, commentID, userID, rtype)
		if err != nil {
			return false, fmt.Errorf("toggle reaction insert: %w", err)
		}
		active = true
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("toggle reaction commit: %w", err)
	}
	return active, nil
}

// ListReplies returns the replies under a comment, oldest-first.
func (s *CommentStore) ListReplies(commentID uuid.UUID) ([]models.CommentReply, error) {
	rows, err := s.db.Query(`
		SELECT r.id, r.comment_id, r.user_id, r.content, r.created_at,
		       COALESCE(p.username, 'voyageur'), p.avatar_url
		FROM comment_replies r
		LEFT JOIN profiles p ON p.user_id = r.user_id
		WHERE r.comment_id = $1
		ORDER BY r.created_at ASC
	`, commentID)
	if err != nil {
		return nil, fmt.Errorf("list replies: %w", err)
	}
	defer rows.Close()

	var replies []models.CommentReply
	for rows.Next() {
		var rep models.CommentReply
		if err := rows.Scan(
			&rep.ID, &rep.CommentID, &rep.UserID, &rep.Content, &rep.CreatedAt,
			&rep.Author.Username, &rep.Author.AvatarURL,
		); err != nil {
			return nil, fmt.Errorf("scan reply: %w", err)
		}
		replies = append(replies, rep)
	}
	return replies, rows.Err()
}

// AddReply inserts a reply under a comment.
func (s *CommentStore) AddReply(commentID, userID uuid.UUID, content string) (*models.CommentReply, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("add reply: empty content")
	}

	rep := &models.CommentReply{}
	err := s.db.QueryRow(`
		INSERT INTO comment_replies (comment_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, comment_id, user_id, content, created_at
	`, commentID, userID, content).Scan(
		&rep.ID, &rep.CommentID, &rep.UserID, &rep.Content, &rep.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("add reply: %w", err)
	}
	return rep, nil
}
