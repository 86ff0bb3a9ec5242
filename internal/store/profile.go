package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"carnet/internal/models"
)

// ProfileStore handles the public identity attached to each account.
type ProfileStore struct {
	db *sql.DB
}

// NewProfileStore creates a new ProfileStore with the given database connection.
func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// FindByUserID retrieves the profile attached to a user. Returns nil if not found.
func (s *ProfileStore) FindByUserID(userID uuid.UUID) (*models.Profile, error) {
	p := &models.Profile{}
	err := s.db.QueryRow(`
		SELECT id, user_id, username, full_name, avatar_url,
		       COALESCE(role, 'user'), created_at, updated_at
		FROM profiles WHERE user_id = $1
	`, userID).Scan(
		&p.ID, &p.UserID, &p.Username, &p.FullName, &p.AvatarURL,
		&p.Role, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find profile by user id: %w", err)
	}
	return p, nil
}

// FindByUsername retrieves a profile by its username. Returns nil if not found.
func (s *ProfileStore) FindByUsername(username string) (*models.Profile, error) {
	p := &models.Profile{}
	err := s.db.QueryRow(`
		SELECT id, user_id, username, full_name, avatar_url,
		       COALESCE(role, 'user'), created_at, updated_at
		FROM profiles WHERE username = $1
	`, username).Scan(
		&p.ID, &p.UserID, &p.Username, &p.FullName, &p.AvatarURL,
		&p.Role, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find profile by username: %w", err)
	}
	return p, nil
}

// Update rewrites the user-editable profile fields.
func (s *ProfileStore) Update(userID uuid.UUID, username, fullName, avatarURL *string) error {
	_, err := s.db.Exec(`
		UPDATE profiles SET username = $1, full_name = $2, avatar_url = $3, updated_at = NOW()
		WHERE user_id = $4
	`, username, fullName, avatarURL, userID)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// SetRole changes a profile's role flag.
func (s *ProfileStore) SetRole(userID uuid.UUID, role models.Role) error {
	_, err := s.db.Exec(`
		UPDATE profiles SET role = $1, updated_at = NOW() WHERE user_id = $2
	`, role, userID)
	if err != nil {
		return fmt.Errorf("set profile role: %w", err)
	}
	return nil
}
