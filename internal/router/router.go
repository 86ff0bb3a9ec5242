// Package router sets up the HTTP routes and middleware chains for the
// blog API. Routes are organized into public, authenticated and admin
// groups with their own middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"carnet/internal/handlers"
	"carnet/internal/middleware"
	"carnet/internal/session"
)

// Handlers bundles the handler groups the router wires up.
type Handlers struct {
	Public   *handlers.Public
	Comments *handlers.Comments
	Auth     *handlers.Auth
	Contact  *handlers.Contact
	Admin    *handlers.Admin
	Media    *handlers.Media
}

// New creates the configured chi router. authLimiter throttles the
// signup/login/contact endpoints; it is owned by the caller.
func New(sessionStore *session.Store, authLimiter *middleware.RateLimiter, h Handlers) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check — no auth, no CSRF.
	r.Get("/health", healthHandler)

	// Public read endpoints.
	r.Get("/blog", h.Public.ListPosts)
	r.Get("/blog/itinerary/{slug}", h.Public.GetItinerary)
	r.Get("/blog/{slug}", h.Public.GetArticle)
	r.Get("/albums", h.Public.ListAlbums)
	r.Get("/albums/{id}", h.Public.GetAlbum)
	r.Get("/posts/{postID}/comments", h.Comments.ListByPost)
	r.Get("/comments/{id}/replies", h.Comments.ListReplies)
	r.Get("/photos/{photoID}/comments", h.Comments.ListPhotoComments)

	// Contact form — rate limited, CSRF protected.
	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRF)
		r.With(authLimiter.Middleware).Post("/contact", h.Contact.Submit)
	})

	// Auth and visitor writes.
	r.Route("/auth", func(r chi.Router) {
		r.Use(middleware.CSRF)

		r.Get("/csrf", h.Auth.CSRFToken)
		r.With(authLimiter.Middleware).Post("/signup", h.Auth.Signup)
		r.With(authLimiter.Middleware).Post("/login", h.Auth.Login)
		r.Post("/logout", h.Auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/me", h.Auth.Me)
			r.Put("/profile", h.Auth.UpdateProfile)
			r.Post("/2fa/setup", h.Auth.TwoFASetup)
			r.Post("/2fa/verify", h.Auth.TwoFAVerify)
		})
	})

	// Authenticated visitor interactions.
	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRF)
		r.Use(middleware.RequireAuth)

		r.Post("/posts/{postID}/comments", h.Comments.Add)
		r.Put("/comments/{id}", h.Comments.Update)
		r.Delete("/comments/{id}", h.Comments.Delete)
		r.Post("/comments/{id}/reactions", h.Comments.ToggleReaction)
		r.Post("/comments/{id}/replies", h.Comments.AddReply)
		r.Post("/photos/{photoID}/comments", h.Comments.AddPhotoComment)
	})

	// Admin back-office — authenticated, admin role, 2FA verified.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.CSRF)
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireAdmin)

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", h.Admin.ListPosts)
			r.Post("/", h.Admin.CreatePost)
			r.Get("/{id}", h.Admin.GetPost)
			r.Put("/{id}", h.Admin.UpdatePost)
			r.Delete("/{id}", h.Admin.DeletePost)
			r.Get("/{id}/itinerary", h.Admin.GetItinerary)
			r.Put("/{id}/itinerary", h.Admin.PutItinerary)
		})

		r.Route("/albums", func(r chi.Router) {
			r.Post("/", h.Admin.CreateAlbum)
			r.Put("/{id}", h.Admin.UpdateAlbum)
			r.Delete("/{id}", h.Admin.DeleteAlbum)
			r.Post("/{id}/photos", h.Admin.AddPhoto)
			r.Put("/{id}/photos/order", h.Admin.ReorderPhotos)
		})
		r.Put("/photos/{photoID}", h.Admin.UpdatePhoto)
		r.Delete("/photos/{photoID}", h.Admin.DeletePhoto)

		r.Get("/contacts", h.Admin.ListContacts)

		r.Post("/media", h.Media.Upload)
		r.Delete("/media", h.Media.Delete)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
