package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"carnet/internal/models"
)

// AlbumStore handles photo albums, their photos, and photo comments.
type AlbumStore struct {
	db *sql.DB
}

// NewAlbumStore creates a new AlbumStore with the given database connection.
func NewAlbumStore(db *sql.DB) *AlbumStore {
	return &AlbumStore{db: db}
}

// List returns all albums, newest first.
func (s *AlbumStore) List() ([]models.Album, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, title, description, cover_image, created_at, updated_at
		FROM albums
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list albums: %w", err)
	}
	defer rows.Close()

	var albums []models.Album
	for rows.Next() {
		var a models.Album
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.Title, &a.Description, &a.CoverImage,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan album: %w", err)
		}
		albums = append(albums, a)
	}
	return albums, rows.Err()
}

// FindByID retrieves an album by its UUID. Returns nil if not found.
func (s *AlbumStore) FindByID(id uuid.UUID) (*models.Album, error) {
	a := &models.Album{}
	err := s.db.QueryRow(`
		SELECT id, user_id, title, description, cover_image, created_at, updated_at
		FROM albums WHERE id = $1
	`, id).Scan(
		&a.ID, &a.UserID, &a.Title, &a.Description, &a.CoverImage,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find album: %w", err)
	}
	return a, nil
}

// Create inserts a new album.
func (s *AlbumStore) Create(a *models.Album) (*models.Album, error) {
	result := &models.Album{}
	err := s.db.QueryRow(`
		INSERT INTO albums (user_id, title, description, cover_image)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, title, description, cover_image, created_at, updated_at
	`, a.UserID, a.Title, a.Description, a.CoverImage).Scan(
		&result.ID, &result.UserID, &result.Title, &result.Description,
		&result.CoverImage, &result.CreatedAt, &result.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create album: %w", err)
	}
	return result, nil
}

// Update modifies an album's title, description, and cover image.
func (s *AlbumStore) Update(a *models.Album) error {
	_, err := s.db.Exec(`
		UPDATE albums SET title = $1, description = $2, cover_image = $3, updated_at = NOW()
		WHERE id = $4
	`, a.Title, a.Description, a.CoverImage, a.ID)
	if err != nil {
		return fmt.Errorf("update album: %w", err)
	}
	return nil
}

// Delete removes an album; its photos and their comments cascade.
func (s *AlbumStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM albums WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete album: %w", err)
	}
	return nil
}

// Photos returns an album's photos ordered by display position, with
// unpositioned photos last, ties broken by date taken.
func (s *AlbumStore) Photos(albumID uuid.UUID) ([]models.AlbumPhoto, error) {
	rows, err := s.db.Query(`
		SELECT id, album_id, image_url, caption, date_taken, position, created_at
		FROM album_photos
		WHERE album_id = $1
		ORDER BY position ASC NULLS LAST, date_taken ASC NULLS LAST, created_at ASC
	`, albumID)
	if err != nil {
		return nil, fmt.Errorf("list album photos: %w", err)
	}
	defer rows.Close()

	var photos []models.AlbumPhoto
	for rows.Next() {
		var p models.AlbumPhoto
		if err := rows.Scan(
			&p.ID, &p.AlbumID, &p.ImageURL, &p.Caption, &p.DateTaken,
			&p.Position, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan album photo: %w", err)
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

// FindPhoto retrieves a single photo. Returns nil if not found.
func (s *AlbumStore) FindPhoto(id uuid.UUID) (*models.AlbumPhoto, error) {
	p := &models.AlbumPhoto{}
	err := s.db.QueryRow(`
		SELECT id, album_id, image_url, caption, date_taken, position, created_at
		FROM album_photos WHERE id = $1
	`, id).Scan(
		&p.ID, &p.AlbumID, &p.ImageURL, &p.Caption, &p.DateTaken,
		&p.Position, &p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find album photo: %w", err)
	}
	return p, nil
}

// AddPhoto appends a photo to an album. When no position is given the
// photo lands after the existing ones.
func (s *AlbumStore) AddPhoto(p *models.AlbumPhoto) (*models.AlbumPhoto, error) {
	result := &models.AlbumPhoto{}
	err := s.db.QueryRow(`
		INSERT INTO album_photos (album_id, image_url, caption, date_taken, position)
		VALUES ($1, $2, $3, $4,
		        COALESCE($5, (SELECT COALESCE(MAX(position), 0) + 1 FROM album_photos WHERE album_id = $1)))
		RETURNING id, album_id, image_url, caption, date_taken, position, created_at
	`, p.AlbumID, p.ImageURL, p.Caption, p.DateTaken, p.Position).Scan(
		&result.ID, &result.AlbumID, &result.ImageURL, &result.Caption,
		&result.DateTaken, &result.Position, &result.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("add album photo: %w", err)
	}
	return result, nil
}

// UpdatePhoto modifies a photo's image, caption, date taken and position.
func (s *AlbumStore) UpdatePhoto(p *models.AlbumPhoto) error {
	_, err := s.db.Exec(`
		UPDATE album_photos SET image_url = $1, caption = $2, date_taken = $3, position = $4
		WHERE id = $5
	`, p.ImageURL, p.Caption, p.DateTaken, p.Position, p.ID)
	if err != nil {
		return fmt.Errorf("update album photo: %w", err)
	}
	return nil
}

// DeletePhoto removes a photo; its comments cascade.
func (s *AlbumStore) DeletePhoto(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM album_photos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete album photo: %w", err)
	}
	return nil
}

// ReorderPhotos rewrites the display positions of an album's photos from
// the given ID order, 1..N, in one transaction. IDs not in the album are
// ignored by the WHERE clause.
func (s *AlbumStore) ReorderPhotos(albumID uuid.UUID, photoIDs []uuid.UUID) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("reorder photos begin: %w", err)
	}
	defer tx.Rollback()

	for i, id := range photoIDs {
		if _, err := tx.Exec(`
			UPDATE album_photos SET position = $1
			WHERE id = $2 AND album_id = $3
		`, i+1, id, albumID); err != nil {
			return fmt.Errorf("reorder photos update: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("reorder photos commit: %w", err)
	}
	return nil
}

// PhotoComments returns the comments on a photo, oldest-first.
func (s *AlbumStore) PhotoComments(photoID uuid.UUID) ([]models.PhotoComment, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.photo_id, c.user_id, c.content, c.created_at, c.updated_at,
		       COALESCE(p.username, 'voyageur'), p.avatar_url
		FROM photo_comments c
		LEFT JOIN profiles p ON p.user_id = c.user_id
		WHERE c.photo_id = $1
		ORDER BY c.created_at ASC
	`, photoID)
	if err != nil {
		return nil, fmt.Errorf("list photo comments: %w", err)
	}
	defer rows.Close()

	var comments []models.PhotoComment
	for rows.Next() {
		var c models.PhotoComment
		if err := rows.Scan(
			&c.ID, &c.PhotoID, &c.UserID, &c.Content, &c.CreatedAt, &c.UpdatedAt,
			&c.Author.Username, &c.Author.AvatarURL,
		); err != nil {
			return nil, fmt.Errorf("scan photo comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// AddPhotoComment inserts a comment on a photo.
func (s *AlbumStore) AddPhotoComment(photoID, userID uuid.UUID, content string) (*models.PhotoComment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("add photo comment: empty content")
	}

	c := &models.PhotoComment{}
	err := s.db.QueryRow(`
		INSERT INTO photo_comments (photo_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, photo_id, user_id, content, created_at, updated_at
	`, photoID, userID, content).Scan(
		&c.ID, &c.PhotoID, &c.UserID, &c.Content, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("add photo comment: %w", err)
	}
	return c, nil
}
