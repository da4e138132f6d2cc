// Package api is the typed HTTP client for the TwoHearts server. It is the
// only piece of the terminal client that talks to the network.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/atinyakov/TwoHearts/internal/models"
)

const (
	apiRegister = "/api/register"
	apiLogin    = "/api/login"
	apiLogout   = "/api/logout"
	apiMe       = "/api/me"
	apiProfile  = "/api/profile"
	apiAvatar   = "/api/profile/avatar"
	apiJournal  = "/api/journal"
	apiMoods    = "/api/moods"
	apiGoals    = "/api/goals"
	apiGrateful = "/api/gratitude"
	apiGallery  = "/api/gallery"
	apiUpload   = "/api/gallery/upload"
	apiPartner  = "/api/partner"
	apiConnect  = "/api/partner/connect"
	apiAccept   = "/api/partner/accept"
	apiNotes    = "/api/love-notes"
)

// Client calls the API with the current bearer token. It is safe for
// concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// New returns a Client for baseURL. A nil hc uses http.DefaultClient.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// SetToken replaces the bearer token; an empty token sends no header.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// LoginResult is the body of a successful login.
type LoginResult struct {
	Token    string          `json:"token"`
	Identity models.Identity `json:"identity"`
}

func (c *Client) Register(ctx context.Context, email, password, name string) (*models.Identity, error) {
	var id models.Identity
	body := map[string]string{"email": email, "password": password, "name": name}
	if err := c.do(ctx, http.MethodPost, apiRegister, body, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

// Login exchanges credentials for a token. It does not store the token;
// the session package decides when to.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var res LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, apiLogin, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, apiLogout, nil, nil)
}

func (c *Client) Me(ctx context.Context) (*models.Identity, error) {
	return c.identity(ctx, http.MethodGet, apiMe, nil)
}

func (c *Client) GetProfile(ctx context.Context) (*models.Identity, error) {
	return c.identity(ctx, http.MethodGet, apiProfile, nil)
}

func (c *Client) UpdateProfile(ctx context.Context, name, avatarURL string) (*models.Identity, error) {
	return c.identity(ctx, http.MethodPut, apiProfile, map[string]string{"name": name, "avatar_url": avatarURL})
}

// UploadAvatar sends an image as the caller's avatar.
func (c *Client) UploadAvatar(ctx context.Context, filename string, r io.Reader) (*models.Identity, error) {
	var id models.Identity
	if err := c.upload(ctx, apiAvatar, filename, r, nil, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

func (c *Client) identity(ctx context.Context, method, path string, body any) (*models.Identity, error) {
	var id models.Identity
	if err := c.do(ctx, method, path, body, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

// Journal

func (c *Client) ListJournal(ctx context.Context) ([]models.JournalEntry, error) {
	return list[models.JournalEntry](ctx, c, apiJournal)
}

func (c *Client) CreateJournal(ctx context.Context, title, content string) (models.JournalEntry, error) {
	var e models.JournalEntry
	err := c.do(ctx, http.MethodPost, apiJournal, map[string]string{"title": title, "content": content}, &e)
	return e, err
}

func (c *Client) UpdateJournal(ctx context.Context, id, title, content string) (models.JournalEntry, error) {
	var e models.JournalEntry
	err := c.do(ctx, http.MethodPut, apiJournal+"/"+url.PathEscape(id), map[string]string{"title": title, "content": content}, &e)
	return e, err
}

func (c *Client) DeleteJournal(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, apiJournal+"/"+url.PathEscape(id), nil, nil)
}

// Moods

func (c *Client) ListMoods(ctx context.Context) ([]models.MoodEntry, error) {
	return list[models.MoodEntry](ctx, c, apiMoods)
}

func (c *Client) CreateMood(ctx context.Context, rating int, note string) (models.MoodEntry, error) {
	var e models.MoodEntry
	err := c.do(ctx, http.MethodPost, apiMoods, map[string]any{"rating": rating, "note": note}, &e)
	return e, err
}

// Goals

func (c *Client) ListGoals(ctx context.Context) ([]models.GoalEntry, error) {
	return list[models.GoalEntry](ctx, c, apiGoals)
}

func (c *Client) CreateGoal(ctx context.Context, text string, category models.GoalCategory) (models.GoalEntry, error) {
	var e models.GoalEntry
	err := c.do(ctx, http.MethodPost, apiGoals, map[string]any{"text": text, "category": category}, &e)
	return e, err
}

// ToggleGoal asks the server to flip completed and returns the stored row.
func (c *Client) ToggleGoal(ctx context.Context, id string) (models.GoalEntry, error) {
	var e models.GoalEntry
	err := c.do(ctx, http.MethodPost, apiGoals+"/"+url.PathEscape(id)+"/toggle", nil, &e)
	return e, err
}

func (c *Client) DeleteGoal(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, apiGoals+"/"+url.PathEscape(id), nil, nil)
}

// Gratitude

func (c *Client) ListGratitude(ctx context.Context) ([]models.GratitudeEntry, error) {
	return list[models.GratitudeEntry](ctx, c, apiGrateful)
}

func (c *Client) CreateGratitude(ctx context.Context, text string) (models.GratitudeEntry, error) {
	var e models.GratitudeEntry
	err := c.do(ctx, http.MethodPost, apiGrateful, map[string]string{"text": text}, &e)
	return e, err
}

// Gallery

func (c *Client) ListGallery(ctx context.Context) ([]models.GalleryImage, error) {
	return list[models.GalleryImage](ctx, c, apiGallery)
}

func (c *Client) CreateGalleryImage(ctx context.Context, title, imageURL string) (models.GalleryImage, error) {
	var e models.GalleryImage
	err := c.do(ctx, http.MethodPost, apiGallery, map[string]string{"title": title, "url": imageURL}, &e)
	return e, err
}

// UploadGalleryImage stores an image on the server and records it.
func (c *Client) UploadGalleryImage(ctx context.Context, title, filename string, r io.Reader) (models.GalleryImage, error) {
	var e models.GalleryImage
	err := c.upload(ctx, apiUpload, filename, r, map[string]string{"title": title}, &e)
	return e, err
}

// Partner

// GetPartner returns the caller's partner link, or nil when there is none.
func (c *Client) GetPartner(ctx context.Context) (*models.PartnerLink, error) {
	var link *models.PartnerLink
	if err := c.do(ctx, http.MethodGet, apiPartner, nil, &link); err != nil {
		return nil, err
	}
	return link, nil
}

func (c *Client) ConnectPartner(ctx context.Context, email string) (*models.PartnerLink, error) {
	var link models.PartnerLink
	if err := c.do(ctx, http.MethodPost, apiConnect, map[string]string{"email": email}, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (c *Client) AcceptPartner(ctx context.Context) (*models.PartnerLink, error) {
	var link models.PartnerLink
	if err := c.do(ctx, http.MethodPost, apiAccept, nil, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

func (c *Client) SendLoveNote(ctx context.Context, content string) (*models.LoveNote, error) {
	var n models.LoveNote
	if err := c.do(ctx, http.MethodPost, apiNotes, map[string]string{"content": content}, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func list[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var out []T
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// do sends body as JSON and decodes a JSON response into out. A 204 leaves
// out untouched.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (c *Client) upload(ctx context.Context, endpoint, filename string, r io.Reader, fields map[string]string, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
	ct := mime.TypeByExtension(strings.ToLower(path.Ext(filename)))
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &e) != nil {
			e.Error = strings.TrimSpace(string(data))
		}
		return &Error{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
