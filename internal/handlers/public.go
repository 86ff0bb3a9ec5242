package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"carnet/internal/cache"
	"carnet/internal/markdown"
	"carnet/internal/models"
	"carnet/internal/storage"
	"carnet/internal/store"
)

// Public serves the visitor-facing read endpoints: the blog list, single
// articles, itineraries and photo albums. Responses for anonymous-safe
// payloads are cached in Valkey and invalidated by the admin handlers.
type Public struct {
	log     *slog.Logger
	posts   *store.PostStore
	steps   *store.ItineraryStore
	albums  *store.AlbumStore
	cache   *cache.ResponseCache
	storage *storage.Client
}

func NewPublic(log *slog.Logger, posts *store.PostStore, steps *store.ItineraryStore, albums *store.AlbumStore, rc *cache.ResponseCache, st *storage.Client) *Public {
	return &Public{log: log, posts: posts, steps: steps, albums: albums, cache: rc, storage: st}
}

// postView is a post enriched with rendered HTML for its markdown fields.
// The raw markdown stays in the embedded Post so the admin UI can re-edit it.
type postView struct {
	models.Post
	ContentHTML       string `json:"content_html"`
	PracticalInfoHTML string `json:"practical_info_html,omitempty"`
	BudgetInfoHTML    string `json:"budget_info_html,omitempty"`
	TransportInfoHTML string `json:"transport_info_html,omitempty"`
}

type stepView struct {
	models.ItineraryStep
	DescriptionHTML string `json:"description_html,omitempty"`
	TipsHTML        string `json:"tips_html,omitempty"`
}

type itineraryView struct {
	Post  postView   `json:"post"`
	Steps []stepView `json:"steps"`
}

type albumView struct {
	models.Album
	Photos []models.AlbumPhoto `json:"photos"`
}

// ListPosts handles GET /blog: published posts, newest first.
func (h *Public) ListPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if payload, ok := h.cache.Get(ctx, cache.PostListKey()); ok {
		writeCached(w, payload)
		return
	}

	posts, err := h.posts.ListPublished()
	if err != nil {
		h.log.Error("list posts", "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	for i := range posts {
		h.resolvePostImages(&posts[i])
	}

	payload, err := json.Marshal(posts)
	if err != nil {
		h.log.Error("marshal post list", "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	h.cache.Set(ctx, cache.PostListKey(), payload)
	writeCached(w, payload)
}

// GetArticle handles GET /blog/{slug}. A slug that belongs to an
// itinerary (the post has at least one step) redirects to the itinerary
// route instead of rendering as a plain article.
func (h *Public) GetArticle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	if payload, ok := h.cache.Get(ctx, cache.PostKey(slug)); ok {
		writeCached(w, payload)
		return
	}

	post, err := h.posts.FindBySlug(slug)
	if err != nil {
		h.log.Error("find post", "slug", slug, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	if post == nil {
		respondError(w, "Article introuvable", http.StatusNotFound)
		return
	}
	if post.HasItinerary {
		http.Redirect(w, r, "/blog/itinerary/"+slug, http.StatusFound)
		return
	}

	view := h.buildPostView(post)
	payload, err := json.Marshal(view)
	if err != nil {
		h.log.Error("marshal post", "slug", slug, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	h.cache.Set(ctx, cache.PostKey(slug), payload)
	writeCached(w, payload)
}

// GetItinerary handles GET /blog/itinerary/{slug}: the post plus its
// steps ordered by day number. A published post with no steps is not an
// itinerary and 404s here, mirroring the redirect in GetArticle.
func (h *Public) GetItinerary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := chi.URLParam(r, "slug")

	if payload, ok := h.cache.Get(ctx, cache.ItineraryKey(slug)); ok {
		writeCached(w, payload)
		return
	}

	post, err := h.posts.FindBySlug(slug)
	if err != nil {
		h.log.Error("find itinerary post", "slug", slug, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	if post == nil || !post.HasItinerary {
		respondError(w, "Itinéraire introuvable", http.StatusNotFound)
		return
	}

	steps, err := h.steps.ListByPost(post.ID)
	if err != nil {
		h.log.Error("list itinerary steps", "post_id", post.ID, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	view := itineraryView{Post: h.buildPostView(post), Steps: make([]stepView, 0, len(steps))}
	for i := range steps {
		step := steps[i]
		for j, img := range step.Images {
			step.Images[j] = h.resolveRef(img)
		}
		sv := stepView{ItineraryStep: step}
		if step.Description != nil {
			sv.DescriptionHTML = h.renderHTML(*step.Description)
		}
		if step.Tips != nil {
			sv.TipsHTML = h.renderHTML(*step.Tips)
		}
		view.Steps = append(view.Steps, sv)
	}

	payload, err := json.Marshal(view)
	if err != nil {
		h.log.Error("marshal itinerary", "slug", slug, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	h.cache.Set(ctx, cache.ItineraryKey(slug), payload)
	writeCached(w, payload)
}

// ListAlbums handles GET /albums.
func (h *Public) ListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := h.albums.List()
	if err != nil {
		h.log.Error("list albums", "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	for i := range albums {
		if albums[i].CoverImage != nil {
			resolved := h.resolveRef(*albums[i].CoverImage)
			albums[i].CoverImage = &resolved
		}
	}
	respondJSON(w, http.StatusOK, albums)
}

// GetAlbum handles GET /albums/{id}: the album with its ordered photos.
func (h *Public) GetAlbum(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "Album introuvable", http.StatusNotFound)
		return
	}

	album, err := h.albums.FindByID(id)
	if err != nil {
		h.log.Error("find album", "id", id, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	if album == nil {
		respondError(w, "Album introuvable", http.StatusNotFound)
		return
	}

	photos, err := h.albums.Photos(id)
	if err != nil {
		h.log.Error("list album photos", "album_id", id, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	for i := range photos {
		photos[i].ImageURL = h.resolveRef(photos[i].ImageURL)
	}
	if album.CoverImage != nil {
		resolved := h.resolveRef(*album.CoverImage)
		album.CoverImage = &resolved
	}

	respondJSON(w, http.StatusOK, albumView{Album: *album, Photos: photos})
}

// buildPostView renders the post's markdown fields and resolves image
// references to absolute URLs.
func (h *Public) buildPostView(post *models.Post) postView {
	p := *post
	h.resolvePostImages(&p)

	view := postView{Post: p, ContentHTML: h.renderHTML(p.Content)}
	if p.PracticalInfo != nil {
		view.PracticalInfoHTML = h.renderHTML(*p.PracticalInfo)
	}
	if p.BudgetInfo != nil {
		view.BudgetInfoHTML = h.renderHTML(*p.BudgetInfo)
	}
	if p.TransportInfo != nil {
		view.TransportInfoHTML = h.renderHTML(*p.TransportInfo)
	}
	return view
}

func (h *Public) resolvePostImages(p *models.Post) {
	if p.ImageURL != nil {
		resolved := h.resolveRef(*p.ImageURL)
		p.ImageURL = &resolved
	}
	for i, img := range p.GalleryImages {
		p.GalleryImages[i] = h.resolveRef(img)
	}
}

// resolveRef maps a stored image reference to a public URL. Without
// configured object storage references pass through untouched.
func (h *Public) resolveRef(ref string) string {
	if h.storage == nil {
		return ref
	}
	return h.storage.ResolveURL(ref)
}

func (h *Public) renderHTML(source string) string {
	out, err := markdown.ToHTML(source)
	if err != nil {
		h.log.Error("render markdown", "error", err)
		return ""
	}
	return out
}

// writeCached writes a pre-marshalled JSON payload.
func writeCached(w http.ResponseWriter, payload []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(payload)
}
