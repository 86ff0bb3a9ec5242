package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"carnet/internal/models"
)

// ContactStore handles contact-form submissions.
type ContactStore struct {
	db *sql.DB
}

// NewContactStore creates a new ContactStore with the given database connection.
func NewContactStore(db *sql.DB) *ContactStore {
	return &ContactStore{db: db}
}

// Create inserts a contact submission. sent_at starts NULL; it is only set
// once the notification email actually went out.
func (s *ContactStore) Create(c *models.Contact) (*models.Contact, error) {
	result := &models.Contact{}
	err := s.db.QueryRow(`
		INSERT INTO contacts (name, email, message, accepted_terms)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, message, accepted_terms, sent_at
	`, c.Name, c.Email, c.Message, c.AcceptedTerms).Scan(
		&result.ID, &result.Name, &result.Email, &result.Message,
		&result.AcceptedTerms, &result.SentAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return result, nil
}

// MarkSent records the moment the notification email was delivered.
func (s *ContactStore) MarkSent(id uuid.UUID) error {
	_, err := s.db.Exec(`UPDATE contacts SET sent_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark contact sent: %w", err)
	}
	return nil
}

// List returns all submissions. Admin only. The table carries no creation
// timestamp, so delivered submissions sort by send time, the rest last.
func (s *ContactStore) List() ([]models.Contact, error) {
	rows, err := s.db.Query(`
		SELECT id, name, email, message, accepted_terms, sent_at
		FROM contacts
		ORDER BY sent_at DESC NULLS LAST
	`)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []models.Contact
	for rows.Next() {
		var c models.Contact
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Email, &c.Message, &c.AcceptedTerms, &c.SentAt,
		); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}
