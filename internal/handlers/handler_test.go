// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL or Valkey are
// unavailable.
package handlers

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"carnet/internal/cache"
	"carnet/internal/database"
	"carnet/internal/mailer"
	"carnet/internal/middleware"
	"carnet/internal/models"
	"carnet/internal/session"
	"carnet/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "carnet")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "carnet")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"session:*", "resp:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB       *sql.DB
	Valkey   *redis.Client
	Sessions *session.Store
	Cache    *cache.ResponseCache

	Posts      *store.PostStore
	Steps      *store.ItineraryStore
	CommentsDB *store.CommentStore
	Albums     *store.AlbumStore
	Users      *store.UserStore
	Profiles   *store.ProfileStore
	Contacts   *store.ContactStore

	Public   *Public
	Comments *Comments
	Auth     *Auth
	Admin    *Admin
}

// newTestEnv creates a complete test environment. Object storage and the
// mailer are left unconfigured; tests that need them build their own.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	sessions := session.NewStore(vk, false)
	rc := cache.NewResponseCache(vk, time.Minute)

	posts := store.NewPostStore(db)
	steps := store.NewItineraryStore(db)
	comments := store.NewCommentStore(db)
	albums := store.NewAlbumStore(db)
	users := store.NewUserStore(db)
	profiles := store.NewProfileStore(db)
	contacts := store.NewContactStore(db)

	return &testEnv{
		DB:         db,
		Valkey:     vk,
		Sessions:   sessions,
		Cache:      rc,
		Posts:      posts,
		Steps:      steps,
		CommentsDB: comments,
		Albums:     albums,
		Users:      users,
		Profiles:   profiles,
		Contacts:   contacts,
		Public:     NewPublic(log, posts, steps, albums, rc, nil),
		Comments:   NewComments(log, comments, posts, albums),
		Auth:       NewAuth(log, users, profiles, sessions),
		Admin:      NewAdmin(log, posts, steps, albums, contacts, rc),
	}
}

// newContact builds a Contact handler with the given mailer (may be nil).
func (env *testEnv) newContact(mail *mailer.Client) *Contact {
	return NewContact(slog.New(slog.NewTextHandler(io.Discard, nil)), env.Contacts, mail)
}

// createUser inserts a user + profile and registers cleanup.
func (env *testEnv) createUser(t *testing.T, email, username string) *models.User {
	t.Helper()

	user, err := env.Users.Create(email, "testpassword123", username)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { env.DB.Exec("DELETE FROM users WHERE id = $1", user.ID) })
	return user
}

// createPost inserts a post and registers cleanup.
func (env *testEnv) createPost(t *testing.T, slug string, published bool) *models.Post {
	t.Helper()

	post, err := env.Posts.Create(&models.Post{
		Title:       "Test " + slug,
		Slug:        slug,
		Content:     "# Bonjour\n\nDu **contenu**.",
		ReadingTime: 5,
		Published:   published,
	})
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	t.Cleanup(func() { env.DB.Exec("DELETE FROM posts WHERE id = $1", post.ID) })
	return post
}

// withSession returns the request with session data injected the way
// LoadSession would.
func withSession(r *http.Request, data *session.Data) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.SessionKey, data)
	return r.WithContext(ctx)
}

// userSession builds session data for a plain signed-in user.
func userSession(user *models.User, username string) *session.Data {
	return &session.Data{
		UserID:    user.ID,
		Email:     user.Email,
		Username:  username,
		Role:      "user",
		TwoFADone: true,
	}
}

// withURLParam attaches a chi route parameter to the request context.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
