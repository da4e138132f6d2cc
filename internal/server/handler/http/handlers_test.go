package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/atinyakov/TwoHearts/internal/auth"
	"github.com/atinyakov/TwoHearts/internal/common"
	"github.com/atinyakov/TwoHearts/internal/models"
	"github.com/atinyakov/TwoHearts/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuthService implements AuthService and middleware.Authenticator.
type fakeAuthService struct {
	registerErr error
	loginErr    error
	loggedOut   []string
}

func (f *fakeAuthService) Register(ctx context.Context, email, password, name string) (*models.Identity, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.Identity{ID: "u1", Email: email, Name: name}, nil
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, *models.Identity, error) {
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return "tok-u1", &models.Identity{ID: "u1", Email: email}, nil
}

func (f *fakeAuthService) Logout(ctx context.Context, sessionID string) error {
	f.loggedOut = append(f.loggedOut, sessionID)
	return nil
}

func (f *fakeAuthService) Me(ctx context.Context, userID string) (*models.Identity, error) {
	return &models.Identity{ID: userID, Name: "Ann"}, nil
}

func (f *fakeAuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	if uid, ok := strings.CutPrefix(token, "tok-"); ok {
		return &auth.Claims{UserID: uid, SessionID: "sess-" + uid}, nil
	}
	return nil, common.ErrUnauthorized
}

// fakeEntries keeps journal entries and goals in memory; the remaining
// EntryService methods are stubbed where tests need them.
type fakeEntries struct {
	EntryService
	journal []models.JournalEntry
	goals   map[string]*models.GoalEntry
	upload  *service.Upload
	uploadB []byte
}

func (f *fakeEntries) ListJournal(ctx context.Context, userID string) ([]models.JournalEntry, error) {
	out := make([]models.JournalEntry, 0)
	for _, e := range f.journal {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEntries) CreateJournal(ctx context.Context, userID, title, content string) (*models.JournalEntry, error) {
	if title == "" && content == "" {
		return nil, fmt.Errorf("%w: title or content is required", common.ErrValidation)
	}
	e := models.JournalEntry{ID: fmt.Sprintf("j%d", len(f.journal)+1), UserID: userID, Title: title, Content: content, CreatedAt: time.Now()}
	f.journal = append([]models.JournalEntry{e}, f.journal...)
	return &e, nil
}

func (f *fakeEntries) UpdateJournal(ctx context.Context, userID, id, title, content string) (*models.JournalEntry, error) {
	for i := range f.journal {
		if f.journal[i].ID == id && f.journal[i].UserID == userID {
			f.journal[i].Title, f.journal[i].Content = title, content
			e := f.journal[i]
			return &e, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeEntries) DeleteJournal(ctx context.Context, userID, id string) error {
	for i := range f.journal {
		if f.journal[i].ID == id && f.journal[i].UserID == userID {
			f.journal = append(f.journal[:i], f.journal[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *fakeEntries) CreateMood(ctx context.Context, userID string, rating int, note string) (*models.MoodEntry, error) {
	return &models.MoodEntry{ID: "m1", UserID: userID, Rating: rating, Note: note}, nil
}

func (f *fakeEntries) CreateGoal(ctx context.Context, userID, text string, category models.GoalCategory) (*models.GoalEntry, error) {
	g := &models.GoalEntry{ID: "g1", UserID: userID, Text: text, Category: category}
	f.goals[g.ID] = g
	cp := *g
	return &cp, nil
}

func (f *fakeEntries) ToggleGoal(ctx context.Context, userID, id string) (*models.GoalEntry, error) {
	g, ok := f.goals[id]
	if !ok || g.UserID != userID {
		return nil, common.ErrNotFound
	}
	g.Completed = !g.Completed
	cp := *g
	return &cp, nil
}

func (f *fakeEntries) ListMoods(ctx context.Context, userID string) ([]models.MoodEntry, error) {
	return nil, errors.New("db down")
}

func (f *fakeEntries) UploadGalleryImage(ctx context.Context, userID, title string, up service.Upload) (*models.GalleryImage, error) {
	b, err := io.ReadAll(up.Body)
	if err != nil {
		return nil, err
	}
	f.upload, f.uploadB = &up, b
	return &models.GalleryImage{ID: "i1", UserID: userID, Title: title, URL: "https://cdn/" + up.Filename}, nil
}

type fakeProfiles struct{ ProfileService }

func (fakeProfiles) Get(ctx context.Context, userID string) (*models.Identity, error) {
	return &models.Identity{ID: userID, Name: "Ann"}, nil
}

type fakePartners struct {
	link *models.PartnerLink
}

func (f *fakePartners) Get(ctx context.Context, userID string) (*models.PartnerLink, error) {
	return f.link, nil
}

func (f *fakePartners) Connect(ctx context.Context, userID, email string) (*models.PartnerLink, error) {
	if email != "v@example.com" {
		return nil, fmt.Errorf("partner lookup: %w", common.ErrNotFound)
	}
	f.link = &models.PartnerLink{
		Connection: models.PartnerConnection{ID: "c1", RequesterID: userID, PartnerID: "V", Status: models.StatusPending},
		Partner:    &models.Identity{ID: "V", Name: "Vic"},
	}
	return f.link, nil
}

func (f *fakePartners) Accept(ctx context.Context, userID string) (*models.PartnerLink, error) {
	if f.link == nil {
		return nil, common.ErrNotFound
	}
	if f.link.Connection.PartnerID != userID {
		return nil, fmt.Errorf("%w: only the invited partner can accept", common.ErrForbidden)
	}
	f.link.Connection.Status = models.StatusAccepted
	return f.link, nil
}

func (f *fakePartners) SendLoveNote(ctx context.Context, userID, content string) (*models.LoveNote, error) {
	if f.link == nil || f.link.Connection.Status != models.StatusAccepted {
		return nil, fmt.Errorf("%w: partner has not accepted yet", common.ErrInvalidState)
	}
	return &models.LoveNote{ID: "n1", SenderID: userID, ReceiverID: f.link.Connection.Other(userID), Content: content}, nil
}

type testAPI struct {
	handler  http.Handler
	auth     *fakeAuthService
	entries  *fakeEntries
	partners *fakePartners
}

func newTestAPI() *testAPI {
	a := &testAPI{
		auth:     &fakeAuthService{},
		entries:  &fakeEntries{goals: map[string]*models.GoalEntry{}},
		partners: &fakePartners{},
	}
	a.handler = NewRouter(RouterOptions{
		Auth:          &AuthHandler{AuthService: a.auth},
		Profile:       &ProfileHandler{Profiles: fakeProfiles{}},
		Entries:       &EntryHandler{Entries: a.entries},
		Partner:       &PartnerHandler{Partners: a.partners},
		Authenticator: a.auth,
	})
	return a
}

func (a *testAPI) do(method, path, token, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		registerErr    error
		expectedCode   int
		expectedSubstr string
	}{
		{"invalid JSON", `not a json`, nil, http.StatusBadRequest, "invalid request"},
		{"validation", `{"email":"x"}`, fmt.Errorf("%w: invalid email", common.ErrValidation), http.StatusBadRequest, "invalid email"},
		{"duplicate", `{"email":"ann@example.com","password":"secret1"}`, fmt.Errorf("create user: %w", common.ErrAlreadyExists), http.StatusConflict, "already exists"},
		{"internal", `{"email":"ann@example.com","password":"secret1"}`, errors.New("pq: connection refused"), http.StatusInternalServerError, "internal error"},
		{"created", `{"email":"ann@example.com","password":"secret1","name":"Ann"}`, nil, http.StatusCreated, `"name":"Ann"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI()
			api.auth.registerErr = tt.registerErr

			rec := api.do(http.MethodPost, "/api/register", "", tt.body)
			assert.Equal(t, tt.expectedCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedSubstr)
			assert.NotContains(t, rec.Body.String(), "connection refused")
		})
	}
}

func TestAuthHandler_LoginLogout(t *testing.T) {
	api := newTestAPI()

	rec := api.do(http.MethodPost, "/api/login", "", `{"email":"ann@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp LoginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "tok-u1", resp.Token)
	assert.Equal(t, "u1", resp.Identity.ID)

	rec = api.do(http.MethodGet, "/api/me", resp.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"u1"`)

	rec = api.do(http.MethodPost, "/api/logout", resp.Token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"sess-u1"}, api.auth.loggedOut)

	api.auth.loginErr = common.ErrInvalidCredential
	rec = api.do(http.MethodPost, "/api/login", "", `{"email":"ann@example.com","password":"bad"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"invalid email/password"}`, rec.Body.String())
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	api := newTestAPI()
	for _, path := range []string{"/api/me", "/api/journal", "/api/goals", "/api/partner", "/api/profile"} {
		rec := api.do(http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
	rec := api.do(http.MethodGet, "/api/journal", "forged", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJournalLifecycle(t *testing.T) {
	api := newTestAPI()

	rec := api.do(http.MethodPost, "/api/journal", "tok-u1", `{"title":"Trip","content":"Paris"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created models.JournalEntry
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, "u1", created.UserID)

	rec = api.do(http.MethodPost, "/api/journal", "tok-u1", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPut, "/api/journal/"+created.ID, "tok-u1", `{"title":"Trip","content":"Rome"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Rome")

	rec = api.do(http.MethodPut, "/api/journal/"+created.ID, "tok-u2", `{"title":"x","content":"y"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code, "other owners cannot edit")

	rec = api.do(http.MethodGet, "/api/journal", "tok-u2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = api.do(http.MethodDelete, "/api/journal/"+created.ID, "tok-u1", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(http.MethodDelete, "/api/journal/"+created.ID, "tok-u1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMoodAndGoals(t *testing.T) {
	api := newTestAPI()

	rec := api.do(http.MethodPost, "/api/moods", "tok-u1", `{"note":"meh"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPost, "/api/moods", "tok-u1", `{"rating":0}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rating":0`)

	rec = api.do(http.MethodGet, "/api/moods", "tok-u1", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())

	rec = api.do(http.MethodPost, "/api/goals", "tok-u1", `{"text":"Learn Spanish","category":"personal"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	for _, want := range []bool{true, false} {
		rec = api.do(http.MethodPost, "/api/goals/g1/toggle", "tok-u1", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var g models.GoalEntry
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&g))
		assert.Equal(t, want, g.Completed)
	}
}

func TestPartnerFlow(t *testing.T) {
	api := newTestAPI()

	rec := api.do(http.MethodGet, "/api/partner", "tok-U", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(http.MethodPost, "/api/partner/connect", "tok-U", `{"email":"nobody@example.com"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodPost, "/api/partner/connect", "tok-U", `{"email":"v@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"pending"`)

	rec = api.do(http.MethodPost, "/api/love-notes", "tok-V", `{"content":"hi"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(http.MethodPost, "/api/partner/accept", "tok-U", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(http.MethodPost, "/api/partner/accept", "tok-V", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"accepted"`)

	rec = api.do(http.MethodPost, "/api/love-notes", "tok-V", `{"content":"hi"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var note models.LoveNote
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&note))
	assert.Equal(t, "V", note.SenderID)
	assert.Equal(t, "U", note.ReceiverID)
	assert.Equal(t, "hi", note.Content)
}

func TestGalleryUpload(t *testing.T) {
	api := newTestAPI()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "Beach"))
	fw, err := mw.CreateFormFile("file", "beach.jpg")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("jpeg-data"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/gallery/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer tok-u1")
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"title":"Beach"`)
	assert.Equal(t, "beach.jpg", api.entries.upload.Filename)
	assert.Equal(t, []byte("jpeg-data"), api.entries.uploadB)
}

func TestGalleryUpload_MissingFile(t *testing.T) {
	api := newTestAPI()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "Beach"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/gallery/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer tok-u1")
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthAndContentType(t *testing.T) {
	api := newTestAPI()

	rec := api.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader("email=a"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{common.ErrValidation, http.StatusBadRequest},
		{common.ErrUnauthorized, http.StatusUnauthorized},
		{common.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("x: %w", common.ErrNotFound), http.StatusNotFound},
		{common.ErrAlreadyExists, http.StatusConflict},
		{common.ErrInvalidState, http.StatusConflict},
		{common.ErrStorageDisabled, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
