// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"carnet/internal/database"
	"carnet/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "carnet")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "carnet")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser inserts a user + profile and registers cleanup.
func createTestUser(t *testing.T, db *sql.DB, email, username string) *models.User {
	t.Helper()

	users := NewUserStore(db)
	user, err := users.Create(email, "testpassword123", username)
	if err != nil {
		t.Fatalf("create test user: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE id = $1", user.ID) })
	return user
}

// createTestPost inserts a post and registers cleanup.
func createTestPost(t *testing.T, db *sql.DB, slug string, published bool) *models.Post {
	t.Helper()

	posts := NewPostStore(db)
	post, err := posts.Create(&models.Post{
		Title:       "Test " + slug,
		Slug:        slug,
		Content:     "Du contenu de test.",
		ReadingTime: 5,
		Published:   published,
	})
	if err != nil {
		t.Fatalf("create test post: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM posts WHERE id = $1", post.ID) })
	return post
}

// createTestAlbum inserts an album owned by userID and registers cleanup.
func createTestAlbum(t *testing.T, db *sql.DB, owner *models.User, title string) *models.Album {
	t.Helper()

	albums := NewAlbumStore(db)
	album, err := albums.Create(&models.Album{UserID: owner.ID, Title: title})
	if err != nil {
		t.Fatalf("create test album: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM albums WHERE id = $1", album.ID) })
	return album
}

func strptr(s string) *string { return &s }
