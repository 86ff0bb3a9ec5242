package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"carnet/internal/mailer"
	"carnet/internal/models"
	"carnet/internal/store"
)

// Contact handles the public contact form. The submission is stored
// first; the notification email is best-effort and never fails the
// request.
type Contact struct {
	log      *slog.Logger
	contacts *store.ContactStore
	mail     *mailer.Client
}

func NewContact(log *slog.Logger, contacts *store.ContactStore, mail *mailer.Client) *Contact {
	return &Contact{log: log, contacts: contacts, mail: mail}
}

type contactRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Message       string `json:"message"`
	AcceptedTerms bool   `json:"accepted_terms"`
}

// Submit handles POST /contact.
func (h *Contact) Submit(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Corps de requête invalide", http.StatusBadRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if msg := firstError(
		requireText(req.Name, "nom", maxTitleLen),
		requireText(req.Message, "message", maxMessageLen),
	); msg != "" {
		respondError(w, msg, http.StatusBadRequest)
		return
	}
	if !validEmail(req.Email) {
		respondError(w, "Adresse email invalide", http.StatusBadRequest)
		return
	}
	if !req.AcceptedTerms {
		respondError(w, "Vous devez accepter les conditions d'utilisation", http.StatusBadRequest)
		return
	}

	contact, err := h.contacts.Create(&models.Contact{
		Name:          req.Name,
		Email:         req.Email,
		Message:       strings.TrimSpace(req.Message),
		AcceptedTerms: true,
	})
	if err != nil {
		h.log.Error("store contact", "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	// The row is the source of truth; a mail failure only leaves
	// sent_at NULL.
	if h.mail != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := h.mail.SendContact(ctx, contact.Name, contact.Email, contact.Message); err != nil {
			h.log.Error("contact notification", "contact_id", contact.ID, "error", err)
		} else if err := h.contacts.MarkSent(contact.ID); err != nil {
			h.log.Error("mark contact sent", "contact_id", contact.ID, "error", err)
		}
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"id":      contact.ID.String(),
		"message": "Message envoyé, merci !",
	})
}
