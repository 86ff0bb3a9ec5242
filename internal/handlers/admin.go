package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"carnet/internal/cache"
	"carnet/internal/middleware"
	"carnet/internal/models"
	"carnet/internal/slug"
	"carnet/internal/store"
)

// Admin serves the back-office: posts (including drafts), itineraries,
// albums, photos and the contact inbox. All routes are mounted behind
// RequireAuth + RequireAdmin. Every mutation invalidates the public
// response cache.
type Admin struct {
	log      *slog.Logger
	posts    *store.PostStore
	steps    *store.ItineraryStore
	albums   *store.AlbumStore
	contacts *store.ContactStore
	cache    *cache.ResponseCache
}

func NewAdmin(log *slog.Logger, posts *store.PostStore, steps *store.ItineraryStore, albums *store.AlbumStore, contacts *store.ContactStore, rc *cache.ResponseCache) *Admin {
	return &Admin{log: log, posts: posts, steps: steps, albums: albums, contacts: contacts, cache: rc}
}

type postRequest struct {
	Title         string   `json:"title"`
	Slug          string   `json:"slug"`
	Excerpt       *string  `json:"excerpt"`
	Content       string   `json:"content"`
	Location      *string  `json:"location"`
	Country       *string  `json:"country"`
	ReadingTime   int      `json:"reading_time"`
	Published     bool     `json:"published"`
	ImageURL      *string  `json:"image_url"`
	GalleryImages []string `json:"gallery_images"`
	YoutubeVideos []string `json:"youtube_videos"`
	PracticalInfo *string  `json:"practical_info"`
	BudgetInfo    *string  `json:"budget_info"`
	TransportInfo *string  `json:"transport_info"`
}

// validate normalises the request in place and returns a user-facing
// message for the first problem found. exclude is the post being edited
// (uuid.Nil on create) so its own slug does not count as taken.
func (h *Admin) validatePost(req *postRequest, exclude uuid.UUID) (string, error) {
	req.Title = strings.TrimSpace(req.Title)
	if len(req.Title) < minTitleLen {
		return "Le titre doit contenir au moins 3 caractères", nil
	}
	if len(req.Title) > maxTitleLen {
		return "Le titre est trop long", nil
	}

	req.Slug = strings.TrimSpace(req.Slug)
	if req.Slug == "" {
		req.Slug = slug.Generate(req.Title)
	}
	if len(req.Slug) < 3 || !slug.Valid(req.Slug) {
		return "Le slug doit contenir au moins 3 caractères (minuscules, chiffres et tirets)", nil
	}

	taken, err := h.posts.SlugTaken(req.Slug, exclude)
	if err != nil {
		return "", err
	}
	if taken {
		return "Ce slug est déjà utilisé par un autre article", nil
	}

	req.ReadingTime = clampReadingTime(req.ReadingTime)
	return "", nil
}

func (req *postRequest) apply(p *models.Post) {
	p.Title = req.Title
	p.Slug = req.Slug
	p.Excerpt = req.Excerpt
	p.Content = req.Content
	p.Location = req.Location
	p.Country = req.Country
	p.ReadingTime = req.ReadingTime
	p.Published = req.Published
	p.ImageURL = req.ImageURL
	p.GalleryImages = req.GalleryImages
	p.YoutubeVideos = req.YoutubeVideos
	p.PracticalInfo = req.PracticalInfo
	p.BudgetInfo = req.BudgetInfo
	p.TransportInfo = req.TransportInfo
}

// ListPosts handles GET /admin/posts: all posts, drafts included.
func (h *Admin) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List()
	if err != nil {
		h.log.Error("admin list posts", "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, posts)
}

// GetPost handles GET /admin/posts/{id}.
func (h *Admin) GetPost(w http.ResponseWriter, r *http.Request) {
	post := h.findPost(w, r)
	if post == nil {
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// CreatePost handles POST /admin/posts.
func (h *Admin) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Corps de requête invalide", http.StatusBadRequest)
		return
	}

	msg, err := h.validatePost(&req, uuid.Nil)
	if err != nil {
		h.log.Error("validate post", "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	if msg != "" {
		respondError(w, msg, http.StatusBadRequest)
		return
	}

	var post models.Post
	req.apply(&post)
	created, err := h.posts.Create(&post)
	if err != nil {
		h.log.Error("create post", "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	h.invalidatePost(r.Context(), created.Slug)
	respondJSON(w, http.StatusCreated, created)
}

// UpdatePost handles PUT /admin/posts/{id}.
func (h *Admin) UpdatePost(w http.ResponseWriter, r *http.Request) {
	post := h.findPost(w, r)
	if post == nil {
		return
	}

	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Corps de requête invalide", http.StatusBadRequest)
		return
	}

	msg, err := h.validatePost(&req, post.ID)
	if err != nil {
		h.log.Error("validate post", "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	if msg != "" {
		respondError(w, msg, http.StatusBadRequest)
		return
	}

	oldSlug := post.Slug
	req.apply(post)
	if err := h.posts.Update(post); err != nil {
		h.log.Error("update post", "id", post.ID, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	h.invalidatePost(r.Context(), oldSlug)
	if post.Slug != oldSlug {
		h.invalidatePost(r.Context(), post.Slug)
	}
	respondJSON(w, http.StatusOK, post)
}

// DeletePost handles DELETE /admin/posts/{id}. Steps and comments go
// with it via the cascading foreign keys.
func (h *Admin) DeletePost(w http.ResponseWriter, r *http.Request) {
	post := h.findPost(w, r)
	if post == nil {
		return
	}

	if err := h.posts.Delete(post.ID); err != nil {
		h.log.Error("delete post", "id", post.ID, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	// A delete cascades into comments and steps, so drop everything
	// cached rather than chasing individual keys.
	h.cache.InvalidateAll(r.Context())
	respondMessage(w, http.StatusOK, "Article supprimé")
}

type stepRequest struct {
	// DayNumber is accepted but ignored; position in the list wins.
	DayNumber   int      `json:"day_number"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Activities  []string `json:"activities"`
	Images      []string `json:"images"`
	Location    *string  `json:"location"`
	Budget      *float64 `json:"budget"`
	Tips        *string  `json:"tips"`
}

// GetItinerary handles GET /admin/posts/{id}/itinerary: the raw steps
// for editing, day numbers included.
func (h *Admin) GetItinerary(w http.ResponseWriter, r *http.Request) {
	post := h.findPost(w, r)
	if post == nil {
		return
	}

	steps, err := h.steps.ListByPost(post.ID)
	if err != nil {
		h.log.Error("admin list steps", "post_id", post.ID, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, steps)
}

// PutItinerary handles PUT /admin/posts/{id}/itinerary. The request body
// is the full ordered list of steps; day numbers are reassigned from
// slice position. An empty list turns the post back into a plain article.
func (h *Admin) PutItinerary(w http.ResponseWriter, r *http.Request) {
	post := h.findPost(w, r)
	if post == nil {
		return
	}

	var reqs []stepRequest
	if err := decodeJSON(r, &reqs); err != nil {
		respondError(w, "Corps de requête invalide", http.StatusBadRequest)
		return
	}

	steps := make([]models.ItineraryStep, 0, len(reqs))
	for i, sr := range reqs {
		sr.Title = strings.TrimSpace(sr.Title)
		if sr.Title == "" {
			respondError(w, "Chaque étape doit avoir un titre", http.StatusBadRequest)
			return
		}
		steps = append(steps, models.ItineraryStep{
			PostID:      post.ID,
			DayNumber:   i + 1,
			Title:       sr.Title,
			Description: sr.Description,
			Activities:  sr.Activities,
			Images:      sr.Images,
			Location:    sr.Location,
			Budget:      sr.Budget,
			Tips:        sr.Tips,
		})
	}

	if err := h.steps.Replace(post.ID, steps); err != nil {
		h.log.Error("replace itinerary", "post_id", post.ID, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	// Step existence drives the article/itinerary redirect, so the
	// article payload is stale too.
	h.invalidatePost(r.Context(), post.Slug)

	saved, err := h.steps.ListByPost(post.ID)
	if err != nil {
		h.log.Error("reload itinerary", "post_id", post.ID, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

// ListContacts handles GET /admin/contacts.
func (h *Admin) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contacts.List()
	if err != nil {
		h.log.Error("list contacts", "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, contacts)
}

type albumRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	CoverImage  *string `json:"cover_image"`
}

// CreateAlbum handles POST /admin/albums.
func (h *Admin) CreateAlbum(w http.ResponseWriter, r *http.Request) {
	var req albumRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Corps de requête invalide", http.StatusBadRequest)
		return
	}
	if msg := requireText(req.Title, "titre", maxTitleLen); msg != "" {
		respondError(w, msg, http.StatusBadRequest)
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	album, err := h.albums.Create(&models.Album{
		UserID:      sess.UserID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		CoverImage:  req.CoverImage,
	})
	if err != nil {
		h.log.Error("create album", "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, album)
}

// UpdateAlbum handles PUT /admin/albums/{id}.
func (h *Admin) UpdateAlbum(w http.ResponseWriter, r *http.Request) {
	album := h.findAlbum(w, r)
	if album == nil {
		return
	}

	var req albumRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Corps de requête invalide", http.StatusBadRequest)
		return
	}
	if msg := requireText(req.Title, "titre", maxTitleLen); msg != "" {
		respondError(w, msg, http.StatusBadRequest)
		return
	}

	album.Title = strings.TrimSpace(req.Title)
	album.Description = req.Description
	album.CoverImage = req.CoverImage
	if err := h.albums.Update(album); err != nil {
		h.log.Error("update album", "id", album.ID, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, album)
}

// DeleteAlbum handles DELETE /admin/albums/{id}.
func (h *Admin) DeleteAlbum(w http.ResponseWriter, r *http.Request) {
	album := h.findAlbum(w, r)
	if album == nil {
		return
	}

	if err := h.albums.Delete(album.ID); err != nil {
		h.log.Error("delete album", "id", album.ID, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	respondMessage(w, http.StatusOK, "Album supprimé")
}

type photoRequest struct {
	ImageURL  string  `json:"image_url"`
	Caption   *string `json:"caption"`
	DateTaken *string `json:"date_taken"`
	Position  *int    `json:"position"`
}

// AddPhoto handles POST /admin/albums/{id}/photos.
func (h *Admin) AddPhoto(w http.ResponseWriter, r *http.Request) {
	album := h.findAlbum(w, r)
	if album == nil {
		return
	}

	var req photoRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Corps de requête invalide", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.ImageURL) == "" {
		respondError(w, "L'image est requise", http.StatusBadRequest)
		return
	}
	taken, ok := parseDate(req.DateTaken)
	if !ok {
		respondError(w, "Date invalide (format attendu AAAA-MM-JJ)", http.StatusBadRequest)
		return
	}

	photo, err := h.albums.AddPhoto(&models.AlbumPhoto{
		AlbumID:   album.ID,
		ImageURL:  strings.TrimSpace(req.ImageURL),
		Caption:   req.Caption,
		DateTaken: taken,
		Position:  req.Position,
	})
	if err != nil {
		h.log.Error("add photo", "album_id", album.ID, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, photo)
}

// UpdatePhoto handles PUT /admin/photos/{photoID}.
func (h *Admin) UpdatePhoto(w http.ResponseWriter, r *http.Request) {
	photoID, err := uuid.Parse(chi.URLParam(r, "photoID"))
	if err != nil {
		respondError(w, "Photo introuvable", http.StatusNotFound)
		return
	}
	photo, err := h.albums.FindPhoto(photoID)
	if err != nil {
		h.log.Error("find photo", "id", photoID, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	if photo == nil {
		respondError(w, "Photo introuvable", http.StatusNotFound)
		return
	}

	var req photoRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Corps de requête invalide", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.ImageURL) == "" {
		respondError(w, "L'image est requise", http.StatusBadRequest)
		return
	}
	taken, ok := parseDate(req.DateTaken)
	if !ok {
		respondError(w, "Date invalide (format attendu AAAA-MM-JJ)", http.StatusBadRequest)
		return
	}

	photo.ImageURL = strings.TrimSpace(req.ImageURL)
	photo.Caption = req.Caption
	photo.DateTaken = taken
	photo.Position = req.Position
	if err := h.albums.UpdatePhoto(photo); err != nil {
		h.log.Error("update photo", "id", photoID, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, photo)
}

// DeletePhoto handles DELETE /admin/photos/{photoID}.
func (h *Admin) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	photoID, err := uuid.Parse(chi.URLParam(r, "photoID"))
	if err != nil {
		respondError(w, "Photo introuvable", http.StatusNotFound)
		return
	}

	if err := h.albums.DeletePhoto(photoID); err != nil {
		h.log.Error("delete photo", "id", photoID, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	respondMessage(w, http.StatusOK, "Photo supprimée")
}

type reorderRequest struct {
	PhotoIDs []uuid.UUID `json:"photo_ids"`
}

// ReorderPhotos handles PUT /admin/albums/{id}/photos/order. Positions
// are reassigned from the order of the submitted IDs.
func (h *Admin) ReorderPhotos(w http.ResponseWriter, r *http.Request) {
	album := h.findAlbum(w, r)
	if album == nil {
		return
	}

	var req reorderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Corps de requête invalide", http.StatusBadRequest)
		return
	}
	if len(req.PhotoIDs) == 0 {
		respondError(w, "La liste de photos est vide", http.StatusBadRequest)
		return
	}

	if err := h.albums.ReorderPhotos(album.ID, req.PhotoIDs); err != nil {
		h.log.Error("reorder photos", "album_id", album.ID, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	respondMessage(w, http.StatusOK, "Ordre mis à jour")
}

// findPost resolves {id} to a post or writes the error response and
// returns nil.
func (h *Admin) findPost(w http.ResponseWriter, r *http.Request) *models.Post {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "Article introuvable", http.StatusNotFound)
		return nil
	}
	post, err := h.posts.FindByID(id)
	if err != nil {
		h.log.Error("find post", "id", id, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return nil
	}
	if post == nil {
		respondError(w, "Article introuvable", http.StatusNotFound)
		return nil
	}
	return post
}

func (h *Admin) findAlbum(w http.ResponseWriter, r *http.Request) *models.Album {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "Album introuvable", http.StatusNotFound)
		return nil
	}
	album, err := h.albums.FindByID(id)
	if err != nil {
		h.log.Error("find album", "id", id, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return nil
	}
	if album == nil {
		respondError(w, "Album introuvable", http.StatusNotFound)
		return nil
	}
	return album
}

// invalidatePost drops every cached payload a post mutation can affect.
func (h *Admin) invalidatePost(ctx context.Context, slug string) {
	h.cache.Invalidate(ctx, cache.PostListKey())
	h.cache.Invalidate(ctx, cache.PostKey(slug))
	h.cache.Invalidate(ctx, cache.ItineraryKey(slug))
}
