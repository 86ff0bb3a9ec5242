package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"carnet/internal/models"
)

// postColumns is the SELECT list shared by all post queries. has_itinerary
// is derived from the existence of itinerary steps so that slug resolution
// needs a single round trip.
const postColumns = `
	id, title, slug, excerpt, content, location, country,
	COALESCE(reading_time, 5), COALESCE(published, FALSE), image_url,
	gallery_images, youtube_videos, practical_info, budget_info, transport_info,
	COALESCE(created_at, NOW()),
	EXISTS (SELECT 1 FROM itinerary_steps s WHERE s.post_id = p.id) AS has_itinerary`

// PostStore handles all post-related database operations.
type PostStore struct {
	db *sql.DB
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db}
}

// scanPost reads one post row in postColumns order.
func scanPost(row interface{ Scan(...any) error }) (*models.Post, error) {
	p := &models.Post{}
	var gallery, videos []byte
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Excerpt, &p.Content, &p.Location, &p.Country,
		&p.ReadingTime, &p.Published, &p.ImageURL,
		&gallery, &videos, &p.PracticalInfo, &p.BudgetInfo, &p.TransportInfo,
		&p.CreatedAt, &p.HasItinerary,
	)
	if err != nil {
		return nil, err
	}
	if p.GalleryImages, err = scanStrings(gallery); err != nil {
		return nil, err
	}
	if p.YoutubeVideos, err = scanStrings(videos); err != nil {
		return nil, err
	}
	return p, nil
}

// ListPublished returns all published posts, newest first.
func (s *PostStore) ListPublished() ([]models.Post, error) {
	return s.list(`SELECT ` + postColumns + `
		FROM posts p
		WHERE COALESCE(published, FALSE)
		ORDER BY created_at DESC NULLS LAST`)
}

// List returns every post including drafts, newest first. Admin only.
func (s *PostStore) List() ([]models.Post, error) {
	return s.list(`SELECT ` + postColumns + `
		FROM posts p
		ORDER BY created_at DESC NULLS LAST`)
}

func (s *PostStore) list(query string) ([]models.Post, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

// FindBySlug retrieves a published post by its slug. Returns nil if no
// published post carries the slug. Drafts are invisible here.
func (s *PostStore) FindBySlug(slug string) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRow(`SELECT `+postColumns+`
		FROM posts p
		WHERE slug = $1 AND COALESCE(published, FALSE)`, slug))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

// FindByID retrieves a post by its UUID regardless of published state.
// Returns nil if not found.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRow(`SELECT `+postColumns+`
		FROM posts p
		WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// Create inserts a new post and returns it with the generated ID.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	gallery, err := jsonStrings(p.GalleryImages)
	if err != nil {
		return nil, err
	}
	videos, err := jsonStrings(p.YoutubeVideos)
	if err != nil {
		return nil, err
	}

	var id uuid.UUID
	err = s.db.QueryRow(`
		INSERT INTO posts (title, slug, excerpt, content, location, country,
		                   reading_time, published, image_url, gallery_images,
		                   youtube_videos, practical_info, budget_info, transport_info)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`, p.Title, p.Slug, p.Excerpt, p.Content, p.Location, p.Country,
		p.ReadingTime, p.Published, p.ImageURL, gallery,
		videos, p.PracticalInfo, p.BudgetInfo, p.TransportInfo,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return s.FindByID(id)
}

// Update modifies an existing post.
func (s *PostStore) Update(p *models.Post) error {
	gallery, err := jsonStrings(p.GalleryImages)
	if err != nil {
		return err
	}
	videos, err := jsonStrings(p.YoutubeVideos)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		UPDATE posts SET
			title = $1, slug = $2, excerpt = $3, content = $4, location = $5,
			country = $6, reading_time = $7, published = $8, image_url = $9,
			gallery_images = $10, youtube_videos = $11, practical_info = $12,
			budget_info = $13, transport_info = $14
		WHERE id = $15
	`, p.Title, p.Slug, p.Excerpt, p.Content, p.Location,
		p.Country, p.ReadingTime, p.Published, p.ImageURL,
		gallery, videos, p.PracticalInfo,
		p.BudgetInfo, p.TransportInfo, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes a post by ID. Itinerary steps, comments, reactions, and
// replies go with it through the cascading foreign keys.
func (s *PostStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// SlugTaken reports whether another post already uses the slug.
// exclude skips one post ID, for updates.
func (s *PostStore) SlugTaken(slug string, exclude uuid.UUID) (bool, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM posts WHERE slug = $1 AND id <> $2
	`, slug, exclude).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("slug taken: %w", err)
	}
	return count > 0, nil
}
