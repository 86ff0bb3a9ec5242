package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"carnet/internal/models"
)

func TestAddCommentRejectsWhitespace(t *testing.T) {
	env := newTestEnv(t)
	post := env.createPost(t, "test-hc-whitespace", true)
	user := env.createUser(t, "hc-whitespace@test.local", "wsuser")

	body := strings.NewReader(`{"content":"   \n  "}`)
	req := httptest.NewRequest(http.MethodPost, "/posts/"+post.ID.String()+"/comments", body)
	req = withURLParam(req, "postID", post.ID.String())
	req = withSession(req, userSession(user, "wsuser"))
	rr := httptest.NewRecorder()
	env.Comments.Add(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "vide") {
		t.Errorf("body = %q", rr.Body.String())
	}
}

func TestAddCommentOnDraftRejected(t *testing.T) {
	env := newTestEnv(t)
	draft := env.createPost(t, "test-hc-draft", false)
	user := env.createUser(t, "hc-draft@test.local", "draftuser")

	body := strings.NewReader(`{"content":"Premier !"}`)
	req := httptest.NewRequest(http.MethodPost, "/posts/"+draft.ID.String()+"/comments", body)
	req = withURLParam(req, "postID", draft.ID.String())
	req = withSession(req, userSession(user, "draftuser"))
	rr := httptest.NewRecorder()
	env.Comments.Add(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestAddAndListComments(t *testing.T) {
	env := newTestEnv(t)
	post := env.createPost(t, "test-hc-addlist", true)
	user := env.createUser(t, "hc-addlist@test.local", "lister")

	body := strings.NewReader(`{"content":"  Très bel article  "}`)
	req := httptest.NewRequest(http.MethodPost, "/posts/"+post.ID.String()+"/comments", body)
	req = withURLParam(req, "postID", post.ID.String())
	req = withSession(req, userSession(user, "lister"))
	rr := httptest.NewRecorder()
	env.Comments.Add(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
	}

	listReq := httptest.NewRequest(http.MethodGet, "/posts/"+post.ID.String()+"/comments", nil)
	listReq = withURLParam(listReq, "postID", post.ID.String())
	listRR := httptest.NewRecorder()
	env.Comments.ListByPost(listRR, listReq)

	var comments []models.Comment
	if err := json.Unmarshal(listRR.Body.Bytes(), &comments); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(comments) != 1 {
		t.Fatalf("got %d comments, want 1", len(comments))
	}
	if comments[0].Content != "Très bel article" {
		t.Errorf("content = %q, want trimmed", comments[0].Content)
	}
	if comments[0].Author.Username != "lister" {
		t.Errorf("author = %q", comments[0].Author.Username)
	}
}

func TestUpdateCommentNonOwnerForbidden(t *testing.T) {
	env := newTestEnv(t)
	post := env.createPost(t, "test-hc-owner", true)
	owner := env.createUser(t, "hc-owner@test.local", "hcowner")
	other := env.createUser(t, "hc-other@test.local", "hcother")

	comment, err := env.CommentsDB.Add(post.ID, owner.ID, "À moi")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	body := strings.NewReader(`{"content":"modifié par un autre"}`)
	req := httptest.NewRequest(http.MethodPut, "/comments/"+comment.ID.String(), body)
	req = withURLParam(req, "id", comment.ID.String())
	req = withSession(req, userSession(other, "hcother"))
	rr := httptest.NewRecorder()
	env.Comments.Update(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rr.Code)
	}

	got, err := env.CommentsDB.FindByID(comment.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Content != "À moi" {
		t.Errorf("content changed to %q", got.Content)
	}
}

func TestToggleReactionHandler(t *testing.T) {
	env := newTestEnv(t)
	post := env.createPost(t, "test-hc-toggle", true)
	user := env.createUser(t, "hc-toggle@test.local", "toggler")

	comment, err := env.CommentsDB.Add(post.ID, user.ID, "Réagissez !")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	toggle := func() map[string]any {
		body := strings.NewReader(`{"type":"heart"}`)
		req := httptest.NewRequest(http.MethodPost, "/comments/"+comment.ID.String()+"/reactions", body)
		req = withURLParam(req, "id", comment.ID.String())
		req = withSession(req, userSession(user, "toggler"))
		rr := httptest.NewRecorder()
		env.Comments.ToggleReaction(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rr.Code, rr.Body.String())
		}
		var out map[string]any
		if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return out
	}

	if out := toggle(); out["active"] != true {
		t.Errorf("first toggle = %v, want active", out)
	}
	if out := toggle(); out["active"] != false {
		t.Errorf("second toggle = %v, want inactive", out)
	}
}

func TestToggleReactionInvalidType(t *testing.T) {
	env := newTestEnv(t)
	post := env.createPost(t, "test-hc-badtype", true)
	user := env.createUser(t, "hc-badtype@test.local", "badtyper")

	comment, err := env.CommentsDB.Add(post.ID, user.ID, "Hmm")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	body := strings.NewReader(`{"type":"thumbsdown"}`)
	req := httptest.NewRequest(http.MethodPost, "/comments/"+comment.ID.String()+"/reactions", body)
	req = withURLParam(req, "id", comment.ID.String())
	req = withSession(req, userSession(user, "badtyper"))
	rr := httptest.NewRecorder()
	env.Comments.ToggleReaction(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestCommentLengthEnforcedOnAllWritePaths(t *testing.T) {
	env := newTestEnv(t)
	post := env.createPost(t, "test-hc-length", true)
	user := env.createUser(t, "hc-length@test.local", "longuser")
	sess := userSession(user, "longuser")

	comment, err := env.CommentsDB.Add(post.ID, user.ID, "Court et correct")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}

	tooLong := strings.Repeat("a", maxCommentLen+1)
	payload := `{"content":"` + tooLong + `"}`

	// Editing cannot grow a comment past the limit either.
	req := httptest.NewRequest(http.MethodPut, "/comments/"+comment.ID.String(), strings.NewReader(payload))
	req = withURLParam(req, "id", comment.ID.String())
	req = withSession(req, sess)
	rr := httptest.NewRecorder()
	env.Comments.Update(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("update status = %d, want 400", rr.Code)
	}
	got, err := env.CommentsDB.FindByID(comment.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Content != "Court et correct" {
		t.Error("over-long edit should not change the comment")
	}

	req = httptest.NewRequest(http.MethodPost, "/comments/"+comment.ID.String()+"/replies", strings.NewReader(payload))
	req = withURLParam(req, "id", comment.ID.String())
	req = withSession(req, sess)
	rr = httptest.NewRecorder()
	env.Comments.AddReply(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("reply status = %d, want 400", rr.Code)
	}

	album, err := env.Albums.Create(&models.Album{Title: "Longueurs", UserID: user.ID})
	if err != nil {
		t.Fatalf("create album: %v", err)
	}
	t.Cleanup(func() { env.DB.Exec("DELETE FROM albums WHERE id = $1", album.ID) })
	photo, err := env.Albums.AddPhoto(&models.AlbumPhoto{AlbumID: album.ID, ImageURL: "media/l.jpg"})
	if err != nil {
		t.Fatalf("add photo: %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/photos/"+photo.ID.String()+"/comments", strings.NewReader(payload))
	req = withURLParam(req, "photoID", photo.ID.String())
	req = withSession(req, sess)
	rr = httptest.NewRecorder()
	env.Comments.AddPhotoComment(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("photo comment status = %d, want 400", rr.Code)
	}
}
