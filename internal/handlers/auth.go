package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"carnet/internal/middleware"
	"carnet/internal/models"
	"carnet/internal/session"
	"carnet/internal/store"
)

// totpIssuer is the label shown in authenticator apps.
const totpIssuer = "Carnet de Voyage"

// Auth handles signup, login/logout, the current-user endpoint, profile
// updates and the admin TOTP enrollment flow.
type Auth struct {
	log      *slog.Logger
	users    *store.UserStore
	profiles *store.ProfileStore
	sessions *session.Store
}

func NewAuth(log *slog.Logger, users *store.UserStore, profiles *store.ProfileStore, sessions *session.Store) *Auth {
	return &Auth{log: log, users: users, profiles: profiles, sessions: sessions}
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// identity is what the client learns about the signed-in account.
type identity struct {
	UserID        string          `json:"user_id"`
	Email         string          `json:"email"`
	Profile       *models.Profile `json:"profile,omitempty"`
	Role          string          `json:"role"`
	TwoFARequired bool            `json:"two_fa_required,omitempty"`
}

// Signup handles POST /auth/signup. A fresh account gets the "user" role
// and an open session right away.
func (h *Auth) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Corps de requête invalide", http.StatusBadRequest)
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	switch {
	case !validEmail(req.Email):
		respondError(w, "Adresse email invalide", http.StatusBadRequest)
		return
	case len(req.Password) < 8:
		respondError(w, "Le mot de passe doit contenir au moins 8 caractères", http.StatusBadRequest)
		return
	case len(req.Username) < 3:
		respondError(w, "Le nom d'utilisateur doit contenir au moins 3 caractères", http.StatusBadRequest)
		return
	}

	existing, err := h.users.FindByEmail(req.Email)
	if err != nil {
		h.log.Error("signup lookup", "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		respondError(w, "Un compte existe déjà avec cet email", http.StatusConflict)
		return
	}

	taken, err := h.profiles.FindByUsername(req.Username)
	if err != nil {
		h.log.Error("signup username lookup", "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	if taken != nil {
		respondError(w, "Ce nom d'utilisateur est déjà pris", http.StatusConflict)
		return
	}

	user, err := h.users.Create(req.Email, req.Password, req.Username)
	if err != nil {
		h.log.Error("signup create", "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	data := &session.Data{
		UserID:    user.ID,
		Email:     user.Email,
		Username:  req.Username,
		Role:      string(models.RoleUser),
		TwoFADone: true, // plain accounts have no second factor
	}
	if _, err := h.sessions.Create(r.Context(), w, data); err != nil {
		h.log.Error("signup session", "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, identity{
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   data.Role,
	})
}

// Login handles POST /auth/login. Admin accounts get a session that is
// not yet 2FA-verified; the back-office stays closed until verification.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Corps de requête invalide", http.StatusBadRequest)
		return
	}

	user, err := h.users.FindByEmail(strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		h.log.Error("login lookup", "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	if user == nil || !h.users.CheckPassword(user, req.Password) {
		respondError(w, "Email ou mot de passe incorrect", http.StatusUnauthorized)
		return
	}

	profile, err := h.profiles.FindByUserID(user.ID)
	if err != nil {
		h.log.Error("login profile", "user_id", user.ID, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	role := string(models.RoleUser)
	username := ""
	if profile != nil {
		role = string(profile.Role)
		if profile.Username != nil {
			username = *profile.Username
		}
	}

	data := &session.Data{
		UserID:    user.ID,
		Email:     user.Email,
		Username:  username,
		Role:      role,
		TwoFADone: role != string(models.RoleAdmin),
	}
	if _, err := h.sessions.Create(r.Context(), w, data); err != nil {
		h.log.Error("login session", "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, identity{
		UserID:        user.ID.String(),
		Email:         user.Email,
		Profile:       profile,
		Role:          role,
		TwoFARequired: !data.TwoFADone,
	})
}

// Logout handles POST /auth/logout.
func (h *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		h.log.Error("logout", "error", err)
	}
	respondMessage(w, http.StatusOK, "Déconnecté")
}

// Me handles GET /auth/me: the session identity plus the stored profile.
func (h *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	profile, err := h.profiles.FindByUserID(sess.UserID)
	if err != nil {
		h.log.Error("me profile", "user_id", sess.UserID, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, identity{
		UserID:        sess.UserID.String(),
		Email:         sess.Email,
		Profile:       profile,
		Role:          sess.Role,
		TwoFARequired: sess.IsAdmin() && !sess.TwoFADone,
	})
}

type profileRequest struct {
	Username  *string `json:"username"`
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
}

// UpdateProfile handles PUT /auth/profile.
func (h *Auth) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req profileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Corps de requête invalide", http.StatusBadRequest)
		return
	}
	if req.Username != nil && len(strings.TrimSpace(*req.Username)) < 3 {
		respondError(w, "Le nom d'utilisateur doit contenir au moins 3 caractères", http.StatusBadRequest)
		return
	}
	if req.Username != nil && *req.Username != sess.Username {
		taken, err := h.profiles.FindByUsername(*req.Username)
		if err != nil {
			h.log.Error("profile username lookup", "error", err)
			respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
			return
		}
		if taken != nil && taken.UserID != sess.UserID {
			respondError(w, "Ce nom d'utilisateur est déjà pris", http.StatusConflict)
			return
		}
	}

	if err := h.profiles.Update(sess.UserID, req.Username, req.FullName, req.AvatarURL); err != nil {
		h.log.Error("update profile", "user_id", sess.UserID, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	if req.Username != nil && *req.Username != sess.Username {
		sess.Username = *req.Username
		if err := h.sessions.Update(r.Context(), r, sess); err != nil {
			h.log.Error("refresh session username", "error", err)
		}
	}

	profile, err := h.profiles.FindByUserID(sess.UserID)
	if err != nil {
		h.log.Error("reload profile", "user_id", sess.UserID, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// CSRFToken handles GET /auth/csrf so browser clients can read the token
// to echo in the X-CSRF-Token header.
func (h *Auth) CSRFToken(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"csrf_token": middleware.GetCSRFToken(r)})
}

// TwoFASetup handles POST /auth/2fa/setup. Only admin accounts enroll a
// second factor; the response carries the shared secret and a QR code
// PNG for authenticator apps.
func (h *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if !sess.IsAdmin() {
		respondError(w, "Accès réservé aux administrateurs", http.StatusForbidden)
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: sess.Email,
	})
	if err != nil {
		h.log.Error("totp generate", "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	// Re-running setup revokes any previously enrolled factor; the
	// back-office stays closed until the new secret is verified.
	if err := h.users.ResetTOTP(sess.UserID); err != nil {
		h.log.Error("reset totp", "user_id", sess.UserID, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	if err := h.users.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		h.log.Error("save totp secret", "user_id", sess.UserID, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		h.log.Error("qr code", "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"secret":  key.Secret(),
		"qr_code": base64.StdEncoding.EncodeToString(qrPNG),
		"url":     key.URL(),
	})
}

type twoFAVerifyRequest struct {
	Code string `json:"code"`
}

// TwoFAVerify handles POST /auth/2fa/verify. A valid code finishes
// first-time enrollment and marks the current session as verified.
func (h *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if !sess.IsAdmin() {
		respondError(w, "Accès réservé aux administrateurs", http.StatusForbidden)
		return
	}

	var req twoFAVerifyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Corps de requête invalide", http.StatusBadRequest)
		return
	}

	user, err := h.users.FindByID(sess.UserID)
	if err != nil {
		h.log.Error("2fa verify lookup", "user_id", sess.UserID, "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	if user == nil || user.TOTPSecret == nil {
		respondError(w, "La vérification en deux étapes n'est pas configurée", http.StatusBadRequest)
		return
	}

	if !totp.Validate(strings.TrimSpace(req.Code), *user.TOTPSecret) {
		respondError(w, "Code invalide, réessayez", http.StatusUnauthorized)
		return
	}

	if !user.TOTPEnabled {
		if err := h.users.EnableTOTP(user.ID); err != nil {
			h.log.Error("enable totp", "user_id", user.ID, "error", err)
			respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
			return
		}
	}

	sess.TwoFADone = true
	if err := h.sessions.Update(r.Context(), r, sess); err != nil {
		h.log.Error("mark session verified", "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	respondMessage(w, http.StatusOK, "Vérification réussie")
}
