package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"carnet/internal/models"
	"carnet/internal/session"
)

func adminSession(user *models.User) *session.Data {
	return &session.Data{
		UserID:    user.ID,
		Email:     user.Email,
		Username:  "admin",
		Role:      "admin",
		TwoFADone: true,
	}
}

func TestCreatePostGeneratesSlug(t *testing.T) {
	env := newTestEnv(t)

	body := strings.NewReader(`{"title":"Été à Majorque","content":"..."}`)
	req := httptest.NewRequest(http.MethodPost, "/admin/posts", body)
	rr := httptest.NewRecorder()
	env.Admin.CreatePost(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	var post models.Post
	if err := json.Unmarshal(rr.Body.Bytes(), &post); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	t.Cleanup(func() { env.DB.Exec("DELETE FROM posts WHERE id = $1", post.ID) })

	if post.Slug != "ete-a-majorque" {
		t.Errorf("slug = %q, want accent-folded slug", post.Slug)
	}
	// Missing reading time falls back to the default.
	if post.ReadingTime != 5 {
		t.Errorf("reading_time = %d, want 5", post.ReadingTime)
	}
}

func TestCreatePostValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name    string
		payload string
	}{
		{"short title", `{"title":"ab","content":"..."}`},
		{"bad slug", `{"title":"Un titre correct","slug":"Pas Un Slug!","content":"..."}`},
		{"short slug", `{"title":"Un titre correct","slug":"ab","content":"..."}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/admin/posts", strings.NewReader(tt.payload))
			rr := httptest.NewRecorder()
			env.Admin.CreatePost(rr, req)
			if rr.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestCreatePostDuplicateSlug(t *testing.T) {
	env := newTestEnv(t)
	existing := env.createPost(t, "test-admin-dup", true)

	payload := `{"title":"Un doublon","slug":"` + existing.Slug + `","content":"..."}`
	req := httptest.NewRequest(http.MethodPost, "/admin/posts", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	env.Admin.CreatePost(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "déjà utilisé") {
		t.Errorf("body = %q", rr.Body.String())
	}
}

func TestCreatePostClampsReadingTime(t *testing.T) {
	env := newTestEnv(t)

	payload := `{"title":"Lecture interminable","slug":"test-admin-clamp","content":"...","reading_time":400}`
	req := httptest.NewRequest(http.MethodPost, "/admin/posts", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	env.Admin.CreatePost(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	var post models.Post
	json.Unmarshal(rr.Body.Bytes(), &post)
	t.Cleanup(func() { env.DB.Exec("DELETE FROM posts WHERE id = $1", post.ID) })

	if post.ReadingTime != 5 {
		t.Errorf("reading_time = %d, want clamped default 5", post.ReadingTime)
	}
}

func TestPutItineraryRenumbersAndInvalidates(t *testing.T) {
	env := newTestEnv(t)
	post := env.createPost(t, "test-admin-itin", true)

	// Warm the article cache so we can observe invalidation.
	artReq := httptest.NewRequest(http.MethodGet, "/blog/"+post.Slug, nil)
	artReq = withURLParam(artReq, "slug", post.Slug)
	artRR := httptest.NewRecorder()
	env.Public.GetArticle(artRR, artReq)
	if artRR.Code != http.StatusOK {
		t.Fatalf("warmup status = %d", artRR.Code)
	}

	payload := `[{"title":"Kyoto","day_number":99},{"title":"Nara"}]`
	req := httptest.NewRequest(http.MethodPut, "/admin/posts/"+post.ID.String()+"/itinerary", strings.NewReader(payload))
	req = withURLParam(req, "id", post.ID.String())
	rr := httptest.NewRecorder()
	env.Admin.PutItinerary(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	var steps []models.ItineraryStep
	if err := json.Unmarshal(rr.Body.Bytes(), &steps); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(steps) != 2 || steps[0].DayNumber != 1 || steps[1].DayNumber != 2 {
		t.Errorf("steps not renumbered from position: %+v", steps)
	}

	// The stale article payload must be gone: the slug now redirects.
	artReq = httptest.NewRequest(http.MethodGet, "/blog/"+post.Slug, nil)
	artReq = withURLParam(artReq, "slug", post.Slug)
	artRR = httptest.NewRecorder()
	env.Public.GetArticle(artRR, artReq)
	if artRR.Code != http.StatusFound {
		t.Errorf("post-save status = %d, want 302 redirect", artRR.Code)
	}
}

func TestPutItineraryRequiresStepTitles(t *testing.T) {
	env := newTestEnv(t)
	post := env.createPost(t, "test-admin-itin-title", true)

	payload := `[{"title":"  "}]`
	req := httptest.NewRequest(http.MethodPut, "/admin/posts/"+post.ID.String()+"/itinerary", strings.NewReader(payload))
	req = withURLParam(req, "id", post.ID.String())
	rr := httptest.NewRecorder()
	env.Admin.PutItinerary(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestCreateAlbumAndAddPhoto(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin-album@test.local", "albumadmin")

	body := strings.NewReader(`{"title":"Japon 2026"}`)
	req := httptest.NewRequest(http.MethodPost, "/admin/albums", body)
	req = withSession(req, adminSession(admin))
	rr := httptest.NewRecorder()
	env.Admin.CreateAlbum(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}
	var album models.Album
	json.Unmarshal(rr.Body.Bytes(), &album)
	t.Cleanup(func() { env.DB.Exec("DELETE FROM albums WHERE id = $1", album.ID) })

	photoBody := strings.NewReader(`{"image_url":"media/t.jpg","date_taken":"2026-04-12"}`)
	photoReq := httptest.NewRequest(http.MethodPost, "/admin/albums/"+album.ID.String()+"/photos", photoBody)
	photoReq = withURLParam(photoReq, "id", album.ID.String())
	photoRR := httptest.NewRecorder()
	env.Admin.AddPhoto(photoRR, photoReq)

	if photoRR.Code != http.StatusCreated {
		t.Fatalf("photo status = %d: %s", photoRR.Code, photoRR.Body.String())
	}
	var photo models.AlbumPhoto
	json.Unmarshal(photoRR.Body.Bytes(), &photo)
	if photo.DateTaken == nil || photo.DateTaken.Format("2006-01-02") != "2026-04-12" {
		t.Errorf("date_taken = %v", photo.DateTaken)
	}
}

func TestAddPhotoRejectsBadDate(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin-baddate@test.local", "dateadmin")

	body := strings.NewReader(`{"title":"Dates"}`)
	req := httptest.NewRequest(http.MethodPost, "/admin/albums", body)
	req = withSession(req, adminSession(admin))
	rr := httptest.NewRecorder()
	env.Admin.CreateAlbum(rr, req)
	var album models.Album
	json.Unmarshal(rr.Body.Bytes(), &album)
	t.Cleanup(func() { env.DB.Exec("DELETE FROM albums WHERE id = $1", album.ID) })

	photoBody := strings.NewReader(`{"image_url":"media/t.jpg","date_taken":"12/04/2026"}`)
	photoReq := httptest.NewRequest(http.MethodPost, "/admin/albums/"+album.ID.String()+"/photos", photoBody)
	photoReq = withURLParam(photoReq, "id", album.ID.String())
	photoRR := httptest.NewRecorder()
	env.Admin.AddPhoto(photoRR, photoReq)

	if photoRR.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", photoRR.Code)
	}
}

func TestUpdatePhotoPersistsChanges(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin-photoedit@test.local", "photoadmin")

	body := strings.NewReader(`{"title":"Retouches"}`)
	req := httptest.NewRequest(http.MethodPost, "/admin/albums", body)
	req = withSession(req, adminSession(admin))
	rr := httptest.NewRecorder()
	env.Admin.CreateAlbum(rr, req)
	var album models.Album
	json.Unmarshal(rr.Body.Bytes(), &album)
	t.Cleanup(func() { env.DB.Exec("DELETE FROM albums WHERE id = $1", album.ID) })

	photoBody := strings.NewReader(`{"image_url":"media/before.jpg"}`)
	photoReq := httptest.NewRequest(http.MethodPost, "/admin/albums/"+album.ID.String()+"/photos", photoBody)
	photoReq = withURLParam(photoReq, "id", album.ID.String())
	photoRR := httptest.NewRecorder()
	env.Admin.AddPhoto(photoRR, photoReq)
	var photo models.AlbumPhoto
	json.Unmarshal(photoRR.Body.Bytes(), &photo)

	updateBody := strings.NewReader(`{"image_url":"media/after.jpg","caption":"Coucher de soleil","position":3}`)
	updateReq := httptest.NewRequest(http.MethodPut, "/admin/photos/"+photo.ID.String(), updateBody)
	updateReq = withURLParam(updateReq, "photoID", photo.ID.String())
	updateRR := httptest.NewRecorder()
	env.Admin.UpdatePhoto(updateRR, updateReq)

	if updateRR.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", updateRR.Code, updateRR.Body.String())
	}

	// The change must survive a reload, not just the echoed response.
	got, err := env.Albums.FindPhoto(photo.ID)
	if err != nil {
		t.Fatalf("FindPhoto: %v", err)
	}
	if got.ImageURL != "media/after.jpg" {
		t.Errorf("image_url = %q, want %q", got.ImageURL, "media/after.jpg")
	}
	if got.Caption == nil || *got.Caption != "Coucher de soleil" {
		t.Errorf("caption = %v", got.Caption)
	}
	if got.Position == nil || *got.Position != 3 {
		t.Errorf("position = %v, want 3", got.Position)
	}
}

func TestDeletePostClearsCache(t *testing.T) {
	env := newTestEnv(t)
	post := env.createPost(t, "test-admin-delete-cache", true)

	// Warm both the article and the list cache.
	artReq := httptest.NewRequest(http.MethodGet, "/blog/"+post.Slug, nil)
	artReq = withURLParam(artReq, "slug", post.Slug)
	artRR := httptest.NewRecorder()
	env.Public.GetArticle(artRR, artReq)
	if artRR.Code != http.StatusOK {
		t.Fatalf("warmup status = %d", artRR.Code)
	}
	listRR := httptest.NewRecorder()
	env.Public.ListPosts(listRR, httptest.NewRequest(http.MethodGet, "/blog", nil))
	if listRR.Code != http.StatusOK {
		t.Fatalf("list warmup status = %d", listRR.Code)
	}

	req := httptest.NewRequest(http.MethodDelete, "/admin/posts/"+post.ID.String(), nil)
	req = withURLParam(req, "id", post.ID.String())
	rr := httptest.NewRecorder()
	env.Admin.DeletePost(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status = %d: %s", rr.Code, rr.Body.String())
	}

	// Without invalidation the cached payloads would still serve.
	artReq = httptest.NewRequest(http.MethodGet, "/blog/"+post.Slug, nil)
	artReq = withURLParam(artReq, "slug", post.Slug)
	artRR = httptest.NewRecorder()
	env.Public.GetArticle(artRR, artReq)
	if artRR.Code != http.StatusNotFound {
		t.Errorf("post-delete article status = %d, want 404", artRR.Code)
	}

	listRR = httptest.NewRecorder()
	env.Public.ListPosts(listRR, httptest.NewRequest(http.MethodGet, "/blog", nil))
	if strings.Contains(listRR.Body.String(), post.Slug) {
		t.Error("deleted post still present in the cached list")
	}
}
