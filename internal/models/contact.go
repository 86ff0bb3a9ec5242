package models

import (
	"time"

	"github.com/google/uuid"
)

// Contact is a contact-form submission. The database row is the source of
// truth; SentAt records when the notification email went out and stays
// NULL if delivery failed.
type Contact struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Message       string     `json:"message"`
	AcceptedTerms bool       `json:"accepted_terms"`
	SentAt        *time.Time `json:"sent_at,omitempty"`
}
