package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"carnet/internal/models"
)

// ItineraryStore handles the day-by-day steps owned by itinerary posts.
type ItineraryStore struct {
	db *sql.DB
}

// NewItineraryStore creates a new ItineraryStore with the given database connection.
func NewItineraryStore(db *sql.DB) *ItineraryStore {
	return &ItineraryStore{db: db}
}

// ListByPost returns the steps of a post ordered ascending by day number.
func (s *ItineraryStore) ListByPost(postID uuid.UUID) ([]models.ItineraryStep, error) {
	rows, err := s.db.Query(`
		SELECT id, post_id, day_number, title, description, activities,
		       images, location, budget, tips, created_at, updated_at
		FROM itinerary_steps
		WHERE post_id = $1
		ORDER BY day_number ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list itinerary steps: %w", err)
	}
	defer rows.Close()

	var steps []models.ItineraryStep
	for rows.Next() {
		var st models.ItineraryStep
		var activities, images []byte
		if err := rows.Scan(
			&st.ID, &st.PostID, &st.DayNumber, &st.Title, &st.Description,
			&activities, &images, &st.Location, &st.Budget, &st.Tips,
			&st.CreatedAt, &st.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan itinerary step: %w", err)
		}
		if st.Activities, err = scanStrings(activities); err != nil {
			return nil, err
		}
		if st.Images, err = scanStrings(images); err != nil {
			return nil, err
		}
		steps = append(steps, st)
	}
	return steps, rows.Err()
}

// HasSteps reports whether the post owns at least one itinerary step.
func (s *ItineraryStore) HasSteps(postID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS (SELECT 1 FROM itinerary_steps WHERE post_id = $1)
	`, postID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("has itinerary steps: %w", err)
	}
	return exists, nil
}

// Replace swaps the full set of steps for a post in a single transaction:
// all existing rows are deleted, day numbers are reassigned 1..N from slice
// order, blank activities are dropped, and the new set is inserted. A crash
// mid-save can never leave the post with a partial step list.
func (s *ItineraryStore) Replace(postID uuid.UUID, steps []models.ItineraryStep) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("replace steps begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM itinerary_steps WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("replace steps delete: %w", err)
	}

	for i, st := range steps {
		activities, err := jsonStrings(cleanActivities(st.Activities))
		if err != nil {
			return err
		}
		images, err := jsonStrings(st.Images)
		if err != nil {
			return err
		}

		// Day number comes from list position, not from the caller.
		_, err = tx.Exec(`
			INSERT INTO itinerary_steps (post_id, day_number, title, description,
			                             activities, images, location, budget, tips)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, postID, i+1, st.Title, st.Description,
			activities, images, st.Location, st.Budget, st.Tips)
		if err != nil {
			return fmt.Errorf("replace steps insert day %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace steps commit: %w", err)
	}
	return nil
}

// cleanActivities drops blank entries while preserving order.
func cleanActivities(activities []string) []string {
	if activities == nil {
		return nil
	}
	cleaned := make([]string, 0, len(activities))
	for _, a := range activities {
		if strings.TrimSpace(a) != "" {
			cleaned = append(cleaned, a)
		}
	}
	return cleaned
}
