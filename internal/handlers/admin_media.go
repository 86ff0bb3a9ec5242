package handlers

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	_ "image/png" // register PNG decoder
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder

	"carnet/internal/storage"
)

const (
	// maxUploadSize is the maximum allowed upload size (20 MB).
	maxUploadSize = 20 << 20

	// thumbMaxWidth is the maximum thumbnail width in pixels.
	thumbMaxWidth = 400

	// thumbQuality is the JPEG quality for generated thumbnails.
	thumbQuality = 80

	// maxImagePixels caps decoded size to prevent memory bombs.
	maxImagePixels = 100_000_000
)

// allowedImageTypes are the MIME types accepted for upload. The blog
// only serves photos, so everything else is rejected.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// thumbableTypes support thumbnail generation. GIF is excluded to
// preserve animation.
var thumbableTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Media serves admin image uploads to the S3 bucket.
type Media struct {
	log     *slog.Logger
	storage *storage.Client
}

func NewMedia(log *slog.Logger, st *storage.Client) *Media {
	return &Media{log: log, storage: st}
}

// Upload handles POST /admin/media: multipart upload of one image. The
// original and a JPEG thumbnail land in the bucket; the response carries
// both URLs for use in post bodies, galleries and albums.
func (h *Media) Upload(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		respondError(w, "Le stockage d'images n'est pas configuré", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, "Fichier trop volumineux (20 Mo maximum)", http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, "Aucun fichier fourni", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		respondError(w, "Fichier trop volumineux (20 Mo maximum)", http.StatusRequestEntityTooLarge)
		return
	}

	// Sniff the real content type rather than trusting the filename.
	sniffBuf := make([]byte, 512)
	n, err := file.Read(sniffBuf)
	if err != nil && err != io.EOF {
		h.log.Error("read upload", "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	contentType := http.DetectContentType(sniffBuf[:n])
	if !allowedImageTypes[contentType] {
		respondError(w, "Seules les images JPEG, PNG, GIF et WebP sont acceptées", http.StatusBadRequest)
		return
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		h.log.Error("seek upload", "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}
	fileBytes, err := io.ReadAll(file)
	if err != nil {
		h.log.Error("read upload", "error", err)
		respondError(w, "Erreur interne du serveur", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = extensionFromType(contentType)
	}
	fileID := uuid.New().String()
	key := fmt.Sprintf("media/%d/%02d/%s%s", now.Year(), now.Month(), fileID, ext)

	ctx := r.Context()
	if err := h.storage.Upload(ctx, key, contentType, bytes.NewReader(fileBytes), int64(len(fileBytes))); err != nil {
		h.log.Error("upload image", "key", key, "error", err)
		respondError(w, "Échec de l'envoi du fichier", http.StatusInternalServerError)
		return
	}

	var thumbURL string
	if thumbableTypes[contentType] {
		thumbData, err := generateThumbnail(bytes.NewReader(fileBytes), thumbMaxWidth)
		switch {
		case err != nil:
			h.log.Warn("thumbnail generation", "key", key, "error", err)
		case thumbData != nil:
			thumbKey := fmt.Sprintf("media/%d/%02d/%s_thumb.jpg", now.Year(), now.Month(), fileID)
			if err := h.storage.Upload(ctx, thumbKey, "image/jpeg", bytes.NewReader(thumbData), int64(len(thumbData))); err != nil {
				h.log.Warn("thumbnail upload", "key", thumbKey, "error", err)
			} else {
				thumbURL = h.storage.FileURL(thumbKey)
			}
		}
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"url":       h.storage.FileURL(key),
		"thumb_url": thumbURL,
		"filename":  header.Filename,
		"type":      contentType,
		"size":      len(fileBytes),
	})
}

type mediaDeleteRequest struct {
	URL string `json:"url"`
}

// Delete handles DELETE /admin/media: removes an uploaded object (and
// its thumbnail when present) given its public URL.
func (h *Media) Delete(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		respondError(w, "Le stockage d'images n'est pas configuré", http.StatusServiceUnavailable)
		return
	}

	var req mediaDeleteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "Corps de requête invalide", http.StatusBadRequest)
		return
	}

	key, ok := h.storage.ExtractKey(req.URL)
	if !ok {
		respondError(w, "URL d'image invalide", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if err := h.storage.Delete(ctx, key); err != nil {
		h.log.Error("delete image", "key", key, "error", err)
		respondError(w, "Échec de la suppression", http.StatusInternalServerError)
		return
	}

	// Best-effort cleanup of the derived thumbnail.
	if ext := filepath.Ext(key); ext != "" {
		thumbKey := strings.TrimSuffix(key, ext) + "_thumb.jpg"
		if err := h.storage.Delete(ctx, thumbKey); err != nil {
			h.log.Warn("delete thumbnail", "key", thumbKey, "error", err)
		}
	}

	respondMessage(w, http.StatusOK, "Image supprimée")
}

// generateThumbnail produces a JPEG thumbnail scaled to maxWidth. A nil
// result with nil error means the source is already small enough.
func generateThumbnail(src io.ReadSeeker, maxWidth int) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(src)
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("image too large: %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Width <= maxWidth {
		return nil, nil
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek: %w", err)
	}
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	ratio := float64(maxWidth) / float64(bounds.Dx())
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, int(float64(bounds.Dy())*ratio)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func extensionFromType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
