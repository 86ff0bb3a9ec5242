package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data.
// It creates a default admin account with its profile if no users exist.
// The admin will be prompted to set up 2FA on first login.
func Seed(db *sql.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	// Hash the default admin password.
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	var userID string
	err = tx.QueryRow(`
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id
	`, "admin@carnet.local", string(hash)).Scan(&userID)
	if err != nil {
		return fmt.Errorf("seed insert admin user: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO profiles (user_id, username, full_name, role)
		VALUES ($1, $2, $3, $4)
	`, userID, "admin", "Administrateur", "admin")
	if err != nil {
		return fmt.Errorf("seed insert admin profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with default admin account",
		"email", "admin@carnet.local",
		"password", "admin",
	)

	return nil
}
