package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"carnet/internal/middleware"
	"carnet/internal/models"
	"carnet/internal/store"
)

// Comments serves comment threads on posts and photos: listing, posting,
// editing, reactions and replies. Listing is open; everything that writes
// requires an authenticated session.
type Comments struct {
	log      *slog.Logger
	comments *store.CommentStore
	posts    *store.PostStore
	albums   *store.AlbumStore
}

func NewComments(log *slog.Logger, comments *store.CommentStore, posts *store.PostStore, albums *store.AlbumStore) *Comments {
	return &Comments{log: log, comments: comments, posts: posts, albums: albums}
}

type commentRequest struct {
	Content string `json:"content"`
}

type reactionRequest struct {
	Type string `json:"type"`
}

// ListByPost handles GET /posts/{postID}/comments. The viewer's own
// reaction flags are filled in when a session is present.
func (h *Comments) ListByPost(w http.ResponseWriter, r *http.Request) {
	postID, err := uuid.Parse(chi.URLParam(r, "postID"))
	if err != nil {
		respondError(w, "Article introuvable", http.StatusNotFound)
		return
	}

	var viewerID uuid.UUID
	if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
		viewerID = sess.UserID
	}

	comments, err := h.comments.ListByPost(postID, viewerID)
	if err != nil {
		h.log.Error("list comments", "post_id", postID, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, comments)
}

// Add handles POST /posts/{postID}/comments.
func (h *Comments) Add(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	postID, err := uuid.Parse(chi.URLParam(r, "postID"))
	if err != nil {
		respondError(w, "Article introuvable", http.StatusNotFound)
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Corps de requête invalide", http.StatusBadRequest)
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondError(w, "Le commentaire ne peut pas être vide", http.StatusBadRequest)
		return
	}
	if len(content) > maxCommentLen {
		respondError(w, "Le commentaire est trop long", http.StatusBadRequest)
		return
	}

	post, err := h.posts.FindByID(postID)
	if err != nil {
		h.log.Error("find post for comment", "post_id", postID, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	if post == nil || !post.Published {
		respondError(w, "Article introuvable", http.StatusNotFound)
		return
	}

	comment, err := h.comments.Add(postID, sess.UserID, content)
	if err != nil {
		h.log.Error("add comment", "post_id", postID, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, comment)
}

// Update handles PUT /comments/{id}. Ownership is enforced in the store
// query; an update that matches no row means someone else's comment.
func (h *Comments) Update(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "Commentaire introuvable", http.StatusNotFound)
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Corps de requête invalide", http.StatusBadRequest)
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondError(w, "Le commentaire ne peut pas être vide", http.StatusBadRequest)
		return
	}
	if len(content) > maxCommentLen {
		respondError(w, "Le commentaire est trop long", http.StatusBadRequest)
		return
	}

	ok, err := h.comments.Update(id, sess.UserID, content)
	if err != nil {
		h.log.Error("update comment", "id", id, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	if !ok {
		respondError(w, "Vous ne pouvez modifier que vos propres commentaires", http.StatusForbidden)
		return
	}
	respondMessage(w, http.StatusOK, "Commentaire mis à jour")
}

// Delete handles DELETE /comments/{id}.
func (h *Comments) Delete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "Commentaire introuvable", http.StatusNotFound)
		return
	}

	ok, err := h.comments.Delete(id, sess.UserID)
	if err != nil {
		h.log.Error("delete comment", "id", id, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	if !ok {
		respondError(w, "Vous ne pouvez supprimer que vos propres commentaires", http.StatusForbidden)
		return
	}
	respondMessage(w, http.StatusOK, "Commentaire supprimé")
}

// ToggleReaction handles POST /comments/{id}/reactions. The same call
// adds the reaction when absent and removes it when present; the
// response reports the resulting state.
func (h *Comments) ToggleReaction(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "Commentaire introuvable", http.StatusNotFound)
		return
	}

	var req reactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Corps de requête invalide", http.StatusBadRequest)
		return
	}
	rtype := models.ReactionType(req.Type)
	if !rtype.Valid() {
		respondError(w, "Type de réaction invalide", http.StatusBadRequest)
		return
	}

	comment, err := h.comments.FindByID(id)
	if err != nil {
		h.log.Error("find comment for reaction", "id", id, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	if comment == nil {
		respondError(w, "Commentaire introuvable", http.StatusNotFound)
		return
	}

	active, err := h.comments.ToggleReaction(id, sess.UserID, rtype)
	if err != nil {
		h.log.Error("toggle reaction", "comment_id", id, "type", rtype, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"type": rtype, "active": active})
}

// ListReplies handles GET /comments/{id}/replies.
func (h *Comments) ListReplies(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "Commentaire introuvable", http.StatusNotFound)
		return
	}

	replies, err := h.comments.ListReplies(id)
	if err != nil {
		h.log.Error("list replies", "comment_id", id, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, replies)
}

// AddReply handles POST /comments/{id}/replies.
func (h *Comments) AddReply(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "Commentaire introuvable", http.StatusNotFound)
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Corps de requête invalide", http.StatusBadRequest)
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondError(w, "La réponse ne peut pas être vide", http.StatusBadRequest)
		return
	}
	if len(content) > maxCommentLen {
		respondError(w, "La réponse est trop longue", http.StatusBadRequest)
		return
	}

	comment, err := h.comments.FindByID(id)
	if err != nil {
		h.log.Error("find comment for reply", "id", id, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	if comment == nil {
		respondError(w, "Commentaire introuvable", http.StatusNotFound)
		return
	}

	reply, err := h.comments.AddReply(id, sess.UserID, content)
	if err != nil {
		h.log.Error("add reply", "comment_id", id, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, reply)
}

// ListPhotoComments handles GET /photos/{photoID}/comments.
func (h *Comments) ListPhotoComments(w http.ResponseWriter, r *http.Request) {
	photoID, err := uuid.Parse(chi.URLParam(r, "photoID"))
	if err != nil {
		respondError(w, "Photo introuvable", http.StatusNotFound)
		return
	}

	comments, err := h.albums.PhotoComments(photoID)
	if err != nil {
		h.log.Error("list photo comments", "photo_id", photoID, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, comments)
}

// AddPhotoComment handles POST /photos/{photoID}/comments.
func (h *Comments) AddPhotoComment(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	photoID, err := uuid.Parse(chi.URLParam(r, "photoID"))
	if err != nil {
		respondError(w, "Photo introuvable", http.StatusNotFound)
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Corps de requête invalide", http.StatusBadRequest)
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondError(w, "Le commentaire ne peut pas être vide", http.StatusBadRequest)
		return
	}
	if len(content) > maxCommentLen {
		respondError(w, "Le commentaire est trop long", http.StatusBadRequest)
		return
	}

	photo, err := h.albums.FindPhoto(photoID)
	if err != nil {
		h.log.Error("find photo for comment", "photo_id", photoID, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	if photo == nil {
		respondError(w, "Photo introuvable", http.StatusNotFound)
		return
	}

	comment, err := h.albums.AddPhotoComment(photoID, sess.UserID, content)
	if err != nil {
		h.log.Error("add photo comment", "photo_id", photoID, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, comment)
}
