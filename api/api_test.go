package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rpupo63/sideshub-backend/database"
	"github.com/rpupo63/sideshub-backend/database/dbtest"
	"github.com/rpupo63/sideshub-backend/models"
	"github.com/rpupo63/sideshub-backend/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-session-secret"

type testServer struct {
	t       *testing.T
	db      *gorm.DB
	handler http.Handler
}

func testConfig() map[string]string {
	return map[string]string{
		"SESSION_SECRET":        testSecret,
		"ACCEPTED_ORIGINS":      "https://sideshub.test",
		"RATE_LIMIT_PER_MINUTE": "6000",
		"RATE_LIMIT_BURST":      "1000",
	}
}

func newTestServer(t *testing.T, opts ...func(*router)) *testServer {
	t.Helper()
	db := dbtest.Open(t)
	all := append([]func(*router){withConfig(testConfig()), withStartupTime(time.Now())}, opts...)
	return &testServer{t: t, db: db, handler: newRouter(database.New(db), all...)}
}

func sessionToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Email:     userID + "@example.com",
		FirstName: "Test",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (s *testServer) do(method, path, userID string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+sessionToken(s.t, userID))
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *testServer) createProject(ownerID, title string) models.Project {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/projects", ownerID, ProjectRequest{
		Title:            title,
		ShortDescription: "about " + title,
		Tags:             []string{" go ", "", "cli"},
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Project](s.t, rec)
}

func (s *testServer) createPost(ownerID, title string) models.CommunityPost {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/community/posts", ownerID, CommunityPostRequest{Title: title, Content: "body"})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.CommunityPost](s.t, rec)
}

func TestCreateProjectCleansInput(t *testing.T) {
	s := newTestServer(t)

	project := s.createProject("owner", "Tiny Compiler")
	assert.Equal(t, "owner", project.UserID)
	assert.Equal(t, []string{"go", "cli"}, []string(project.Tags))
	assert.Zero(t, project.LikeCount)

	rec := s.do(http.MethodPost, "/api/projects", "owner", ProjectRequest{ShortDescription: "no title"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "title", decode[ErrorResponse](t, rec).Field)
}

func TestProjectLikeRoundTripOverHTTP(t *testing.T) {
	s := newTestServer(t)
	project := s.createProject("owner", "Liked")
	path := "/api/projects/" + project.ID.String() + "/like"

	steps := []struct {
		method    string
		success   bool
		likeCount int
	}{
		{http.MethodPost, true, 1},
		{http.MethodPost, false, 1},
		{http.MethodDelete, true, 0},
		{http.MethodDelete, false, 0},
	}
	for _, step := range steps {
		rec := s.do(step.method, path, "fan", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		resp := decode[InteractionResponse](t, rec)
		assert.Equal(t, step.success, resp.Success, step.method)
		require.NotNil(t, resp.LikeCount)
		assert.Equal(t, step.likeCount, *resp.LikeCount, step.method)
	}
}

func TestCommunityPostLike(t *testing.T) {
	s := newTestServer(t)
	post := s.createPost("owner", "Hello")

	rec := s.do(http.MethodPost, "/api/community/posts/"+post.ID.String()+"/like", "fan", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/community/posts/"+post.ID.String(), "fan", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[CommunityPostDetail](t, rec)
	assert.Equal(t, 1, detail.LikeCount)
	assert.True(t, detail.UserInteractions.IsLiked)
}

func TestWritesRequireSession(t *testing.T) {
	s := newTestServer(t)
	project := s.createProject("owner", "Guarded")

	rec := s.do(http.MethodPost, "/api/projects/"+project.ID.String()+"/like", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/projects/"+project.ID.String()+"/like", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	bad := httptest.NewRecorder()
	s.handler.ServeHTTP(bad, req)
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
}

func TestProjectDetailInteractionFlags(t *testing.T) {
	s := newTestServer(t)
	project := s.createProject("owner", "Flags")
	base := "/api/projects/" + project.ID.String()

	require.Equal(t, http.StatusOK, s.do(http.MethodPost, base+"/like", "fan", nil).Code)
	rec := s.do(http.MethodPost, base+"/bookmark", "fan", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[InteractionResponse](t, rec).Success)

	detail := decode[ProjectDetail](t, s.do(http.MethodGet, base, "fan", nil))
	assert.True(t, detail.UserInteractions.IsLiked)
	assert.True(t, detail.UserInteractions.IsBookmarked)
	assert.Equal(t, 1, detail.LikeCount)

	anonymous := decode[ProjectDetail](t, s.do(http.MethodGet, base, "", nil))
	assert.False(t, anonymous.UserInteractions.IsLiked)
	assert.False(t, anonymous.UserInteractions.IsBookmarked)

	bookmarks := decode[[]models.ProjectBookmark](t, s.do(http.MethodGet, "/api/me/bookmarks", "fan", nil))
	require.Len(t, bookmarks, 1)
	assert.Equal(t, project.ID, bookmarks[0].ProjectID)
}

func TestCommentLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	post := s.createPost("owner", "Discuss")
	commentsPath := "/api/community/posts/" + post.ID.String() + "/comments"

	rec := s.do(http.MethodPost, commentsPath, "owner", CommentRequest{Content: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, commentsPath, "owner", CommentRequest{Content: "first!"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	comment := decode[models.Comment](t, rec)
	require.NotNil(t, comment.PostID)
	assert.Nil(t, comment.ProjectID)

	listed := decode[[]models.Comment](t, s.do(http.MethodGet, commentsPath, "", nil))
	assert.Len(t, listed, 1)

	rec = s.do(http.MethodDelete, "/api/comments/"+comment.ID.String(), "stranger", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodDelete, "/api/comments/"+comment.ID.String(), "owner", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodDelete, "/api/comments/"+comment.ID.String(), "owner", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	detail := decode[CommunityPostDetail](t, s.do(http.MethodGet, "/api/community/posts/"+post.ID.String(), "", nil))
	assert.Equal(t, 0, detail.CommentCount)
}

func TestOnlyOwnerMutatesProject(t *testing.T) {
	s := newTestServer(t)
	project := s.createProject("owner", "Mine")
	path := "/api/projects/" + project.ID.String()

	rec := s.do(http.MethodPut, path, "intruder", ProjectRequest{Title: "Stolen", ShortDescription: "x"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodDelete, path, "intruder", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPut, path, "owner", ProjectRequest{Title: "Renamed", ShortDescription: "x"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Renamed", decode[models.Project](t, rec).Title)

	rec = s.do(http.MethodDelete, path, "owner", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, path, "", nil).Code)
}

func TestBadAndUnknownIDs(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/projects/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "projectID", decode[ErrorResponse](t, rec).Field)

	rec = s.do(http.MethodPost, "/api/projects/"+uuid.NewString()+"/like", "fan", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPost, "/api/projects/"+uuid.NewString()+"/comments", "fan", CommentRequest{Content: "hi"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecordViewAnonymously(t *testing.T) {
	s := newTestServer(t)
	project := s.createProject("owner", "Viewed")
	path := "/api/projects/" + project.ID.String()

	assert.Equal(t, http.StatusCreated, s.do(http.MethodPost, path+"/views", "", nil).Code)
	assert.Equal(t, http.StatusCreated, s.do(http.MethodPost, path+"/views", "", nil).Code)

	detail := decode[ProjectDetail](t, s.do(http.MethodGet, path, "", nil))
	assert.Equal(t, 2, detail.ViewCount)

	var view models.ProjectView
	require.NoError(t, s.db.First(&view, "project_id = ?", project.ID).Error)
	require.NotNil(t, view.IPAddress)
	assert.Equal(t, "192.0.2.1", *view.IPAddress)
	assert.Nil(t, view.UserID)
}

func TestListProjectsQueryValidation(t *testing.T) {
	s := newTestServer(t)
	s.createProject("owner", "Alpha")
	s.createProject("owner", "Beta")

	rec := s.do(http.MethodGet, "/api/projects?sort=bogus", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/projects?featured=maybe", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	list := decode[ProjectCollection](t, s.do(http.MethodGet, "/api/projects?q=alp&limit=5", "", nil))
	assert.EqualValues(t, 1, list.Total)
	assert.Equal(t, 5, list.Limit)

	owned := decode[[]models.Project](t, s.do(http.MethodGet, "/api/users/owner/projects", "", nil))
	assert.Len(t, owned, 2)
}

func TestWritesAreRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg["RATE_LIMIT_PER_MINUTE"] = "1"
	cfg["RATE_LIMIT_BURST"] = "1"
	s := newTestServer(t, withConfig(cfg))

	rec := s.do(http.MethodPost, "/api/community/posts", "owner", CommunityPostRequest{Title: "one", Content: "x"})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(http.MethodPost, "/api/community/posts", "owner", CommunityPostRequest{Title: "two", Content: "x"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// Reads are not limited.
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/community/posts", "", nil).Code)
}

type fakePresigner struct{}

func (fakePresigner) PresignUpload(_ context.Context, userID, contentType string) (services.PresignedUpload, error) {
	if contentType != "image/png" {
		return services.PresignedUpload{}, services.ErrUnsupportedMediaType
	}
	return services.PresignedUpload{UploadURL: "https://s3.test/put", Method: http.MethodPut, Key: "thumbnails/" + userID + "/x.png"}, nil
}

func TestUploads(t *testing.T) {
	s := newTestServer(t, withStorage(fakePresigner{}))

	rec := s.do(http.MethodPost, "/api/uploads", "owner", UploadRequest{ContentType: "image/png"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "thumbnails/owner/x.png", decode[services.PresignedUpload](t, rec).Key)

	rec = s.do(http.MethodPost, "/api/uploads", "owner", UploadRequest{ContentType: "text/html"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	unconfigured := newTestServer(t)
	rec = unconfigured.do(http.MethodPost, "/api/uploads", "owner", UploadRequest{ContentType: "image/png"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORSPreflightAndHealth(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
	req.Header.Set("Origin", "https://sideshub.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, "https://sideshub.test", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = s.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]any](t, rec)["status"])
}

func TestCurrentUserComesFromClaims(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/auth/user", "sub-42", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	user := decode[CurrentUser](t, rec)
	assert.Equal(t, "sub-42", user.ID)
	require.NotNil(t, user.Email)
	assert.Equal(t, "sub-42@example.com", *user.Email)
}

func TestPublicReadsHideEmail(t *testing.T) {
	s := newTestServer(t)
	project := s.createProject("alice", "Private Parts")
	post := s.createPost("alice", "Hi all")

	comment := CommentRequest{Content: "nice"}
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/projects/"+project.ID.String()+"/comments", "bob", comment).Code)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/community/posts/"+post.ID.String()+"/comments", "bob", comment).Code)

	for _, path := range []string{
		"/api/projects",
		"/api/projects/" + project.ID.String(),
		"/api/projects/" + project.ID.String() + "/comments",
		"/api/users/alice/projects",
		"/api/community/posts",
		"/api/community/posts/" + post.ID.String(),
		"/api/community/posts/" + post.ID.String() + "/comments",
	} {
		rec := s.do(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), `"user":{"id":`, path)
		assert.NotContains(t, rec.Body.String(), "email", path)
		assert.NotContains(t, rec.Body.String(), "@example.com", path)
	}
}

func TestOwnersCannotFeatureOrPin(t *testing.T) {
	s := newTestServer(t)
	project := s.createProject("owner", "Self Promo")
	post := s.createPost("owner", "Read me first")

	rec := s.do(http.MethodPost, "/api/projects", "owner", map[string]any{"title": "x", "shortDescription": "y", "isFeatured": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(http.MethodPost, "/api/community/posts", "owner", map[string]any{"title": "x", "content": "y", "isPinned": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Curated flags set out of band survive an owner edit.
	require.NoError(t, s.db.Model(&models.Project{}).Where("id = ?", project.ID).Update("is_featured", true).Error)
	require.NoError(t, s.db.Model(&models.CommunityPost{}).Where("id = ?", post.ID).Update("is_pinned", true).Error)

	rec = s.do(http.MethodPut, "/api/projects/"+project.ID.String(), "owner", ProjectRequest{Title: "Edited", ShortDescription: "x"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.do(http.MethodPut, "/api/community/posts/"+post.ID.String(), "owner", CommunityPostRequest{Title: "Edited", Content: "x"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.True(t, decode[ProjectDetail](t, s.do(http.MethodGet, "/api/projects/"+project.ID.String(), "", nil)).IsFeatured)
	assert.True(t, decode[CommunityPostDetail](t, s.do(http.MethodGet, "/api/community/posts/"+post.ID.String(), "", nil)).IsPinned)
}
