package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atinyakov/TwoHearts/internal/client/api"
	"github.com/atinyakov/TwoHearts/internal/client/session"
	"github.com/atinyakov/TwoHearts/internal/client/state"
	"github.com/atinyakov/TwoHearts/internal/common"
	"github.com/atinyakov/TwoHearts/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI stands in for api.Client. Methods not overridden here panic
// through the nil embedded interface.
type fakeAPI struct {
	state.Backend

	token     string
	journal   []models.JournalEntry
	goals     []models.GoalEntry
	moods     []models.MoodEntry
	link      *models.PartnerLink
	notes     []string
	profile   models.Identity
	uploaded  string
	connectTo string
}

func (f *fakeAPI) Register(_ context.Context, email, _, name string) (*models.Identity, error) {
	return &models.Identity{ID: "u", Email: email, Name: name}, nil
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (*api.LoginResult, error) {
	if password != "secret1" {
		return nil, &api.Error{Status: 401, Message: "invalid email/password"}
	}
	f.profile = models.Identity{ID: "u", Email: email, Name: "Ann"}
	return &api.LoginResult{Token: "tok", Identity: f.profile}, nil
}

func (f *fakeAPI) Logout(context.Context) error                 { return nil }
func (f *fakeAPI) Me(context.Context) (*models.Identity, error) { return &f.profile, nil }
func (f *fakeAPI) SetToken(token string)                        { f.token = token }

func (f *fakeAPI) GetProfile(context.Context) (*models.Identity, error) {
	p := f.profile
	return &p, nil
}

func (f *fakeAPI) UpdateProfile(_ context.Context, name, avatarURL string) (*models.Identity, error) {
	f.profile.Name, f.profile.AvatarURL = name, avatarURL
	p := f.profile
	return &p, nil
}

func (f *fakeAPI) UploadAvatar(_ context.Context, filename string, r io.Reader) (*models.Identity, error) {
	data, _ := io.ReadAll(r)
	f.uploaded = filename + ":" + string(data)
	f.profile.AvatarURL = "https://cdn.example.com/" + filename
	p := f.profile
	return &p, nil
}

func (f *fakeAPI) ListJournal(context.Context) ([]models.JournalEntry, error) {
	return f.journal, nil
}

func (f *fakeAPI) CreateJournal(_ context.Context, title, content string) (models.JournalEntry, error) {
	e := models.JournalEntry{ID: "j" + title, UserID: "u", Title: title, Content: content, CreatedAt: time.Now()}
	f.journal = append([]models.JournalEntry{e}, f.journal...)
	return e, nil
}

func (f *fakeAPI) ListMoods(context.Context) ([]models.MoodEntry, error) { return f.moods, nil }

func (f *fakeAPI) CreateMood(_ context.Context, rating int, note string) (models.MoodEntry, error) {
	m := models.MoodEntry{ID: "m", UserID: "u", Rating: rating, Note: note, CreatedAt: time.Now()}
	f.moods = append(f.moods, m)
	return m, nil
}

func (f *fakeAPI) ListGoals(context.Context) ([]models.GoalEntry, error) { return f.goals, nil }

func (f *fakeAPI) CreateGoal(_ context.Context, text string, category models.GoalCategory) (models.GoalEntry, error) {
	if category == "" {
		category = models.GoalPersonal
	}
	if !category.Valid() {
		return models.GoalEntry{}, &api.Error{Status: 400, Message: "validation error"}
	}
	g := models.GoalEntry{ID: "g1", UserID: "u", Text: text, Category: category}
	f.goals = append([]models.GoalEntry{g}, f.goals...)
	return g, nil
}

func (f *fakeAPI) ToggleGoal(_ context.Context, id string) (models.GoalEntry, error) {
	for i := range f.goals {
		if f.goals[i].ID == id {
			f.goals[i].Completed = !f.goals[i].Completed
			return f.goals[i], nil
		}
	}
	return models.GoalEntry{}, &api.Error{Status: 404, Message: "not found"}
}

func (f *fakeAPI) ListGratitude(context.Context) ([]models.GratitudeEntry, error) {
	return []models.GratitudeEntry{}, nil
}

func (f *fakeAPI) ListGallery(context.Context) ([]models.GalleryImage, error) {
	return []models.GalleryImage{}, nil
}

func (f *fakeAPI) UploadGalleryImage(_ context.Context, title, filename string, r io.Reader) (models.GalleryImage, error) {
	data, _ := io.ReadAll(r)
	f.uploaded = filename + ":" + string(data)
	return models.GalleryImage{ID: "i1", UserID: "u", Title: title, URL: "https://cdn.example.com/" + filename}, nil
}

func (f *fakeAPI) GetPartner(context.Context) (*models.PartnerLink, error) { return f.link, nil }

func (f *fakeAPI) ConnectPartner(_ context.Context, email string) (*models.PartnerLink, error) {
	if email != "v@example.com" {
		return nil, &api.Error{Status: 404, Message: "not found"}
	}
	f.connectTo = email
	f.link = &models.PartnerLink{
		Connection: models.PartnerConnection{ID: "c", RequesterID: "u", PartnerID: "v", Status: models.StatusPending},
		Partner:    &models.Identity{ID: "v", Name: "Vic"},
	}
	return f.link, nil
}

func (f *fakeAPI) SendLoveNote(_ context.Context, content string) (*models.LoveNote, error) {
	f.notes = append(f.notes, content)
	return &models.LoveNote{ID: "n", SenderID: "u", ReceiverID: "v", Content: content}, nil
}

type harness struct {
	api   *fakeAPI
	sess  *session.Session
	ws    *state.Workspace
	out   *bytes.Buffer
	shell *Shell
}

func newHarness(t *testing.T, input string) *harness {
	t.Helper()
	f := &fakeAPI{}
	sess := session.New(f, filepath.Join(t.TempDir(), "session.json"), nil)
	ws := state.NewWorkspace(f, nil)
	ws.Follow(context.Background(), sess)
	out := &bytes.Buffer{}
	return &harness{
		api:   f,
		sess:  sess,
		ws:    ws,
		out:   out,
		shell: New(strings.NewReader(input), out, sess, ws, f, nil),
	}
}

func TestShell_LoginAndJournal(t *testing.T) {
	input := strings.Join([]string{
		"whoami",
		"login", "ann@example.com", "secret1",
		"whoami",
		"journal add", "Day 1", "We went to the sea",
		"journal",
		"exit",
		"help", // never reached
	}, "\n") + "\n"
	h := newHarness(t, input)

	h.shell.Run(context.Background())

	out := h.out.String()
	assert.Contains(t, out, "Not logged in")
	assert.Contains(t, out, "Welcome, Ann")
	assert.Contains(t, out, "Ann <ann@example.com>")
	assert.Contains(t, out, "Entry saved")
	assert.Contains(t, out, "Day 1")
	assert.Contains(t, out, "We went to the sea")
	assert.Contains(t, out, "Bye")
	assert.NotContains(t, out, "Available commands")
	assert.Equal(t, "tok", h.api.token)
	assert.Equal(t, 1, h.ws.Journal.Len())
}

func TestShell_LoginFailure(t *testing.T) {
	h := newHarness(t, "login\nann@example.com\nwrong\n")
	h.shell.Run(context.Background())

	assert.Contains(t, h.out.String(), "Invalid email or password.")
	assert.Nil(t, h.sess.CurrentIdentity())
}

func TestShell_RequiresLogin(t *testing.T) {
	h := newHarness(t, "gratitude add coffee\nprofile\n")
	h.shell.Run(context.Background())

	assert.Equal(t, 2, strings.Count(h.out.String(), "Please log in first."))
}

func loggedIn(t *testing.T, input string) *harness {
	t.Helper()
	h := newHarness(t, input)
	require.NoError(t, h.sess.LogIn(context.Background(), "ann@example.com", "secret1"))
	return h
}

func TestShell_Goals(t *testing.T) {
	h := loggedIn(t, "goals add\nLearn Spanish\n\ngoals\ngoals toggle g1\ngoals toggle g1\ngoals add\nSave\nyachts\ngoals toggle\n")
	h.shell.Run(context.Background())

	out := h.out.String()
	assert.Contains(t, out, "Goal added")
	assert.Contains(t, out, "[ ] Learn Spanish (personal) g1")
	assert.Contains(t, out, "Goal completed")
	assert.Contains(t, out, "Goal reopened")
	assert.Contains(t, out, "Could not add the goal: please check your input.")
	assert.Contains(t, out, "Usage: goals toggle <id>")

	g, ok := h.ws.Goals.Get("g1")
	require.True(t, ok)
	assert.False(t, g.Completed)
}

func TestShell_Mood(t *testing.T) {
	h := loggedIn(t, "mood add 11\nmood add x\nmood add 7 sunny day\nmood\n")
	h.shell.Run(context.Background())

	out := h.out.String()
	assert.Equal(t, 2, strings.Count(out, "Rating must be a number from 0 to 10"))
	assert.Contains(t, out, "Mood logged")
	assert.Contains(t, out, "*******")
	assert.Contains(t, out, "sunny day")
}

func TestShell_PartnerAndNote(t *testing.T) {
	h := loggedIn(t, "partner\npartner connect nobody@example.com\npartner connect v@example.com\npartner\nnote hi there\n")
	h.shell.Run(context.Background())

	out := h.out.String()
	assert.Contains(t, out, "No partner connected")
	assert.Contains(t, out, "Could not connect with your partner. Please try again.")
	assert.Contains(t, out, "Invitation sent")
	assert.Contains(t, out, "Waiting for Vic to accept")
	assert.Contains(t, out, "Could not send the love note")
	assert.Empty(t, h.api.notes)

	h.api.link.Connection.Status = models.StatusAccepted
	h.ws.Partner.Reload(context.Background(), h.sess.CurrentIdentity())
	h.out.Reset()
	h.shell.Execute(context.Background(), []string{"partner"})
	h.shell.Execute(context.Background(), []string{"note", "hi"})
	assert.Contains(t, h.out.String(), "Connected with Vic")
	assert.Contains(t, h.out.String(), "Love note sent")
	assert.Equal(t, []string{"hi"}, h.api.notes)
}

func TestShell_ProfileAndUploads(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "me.png")
	require.NoError(t, os.WriteFile(img, []byte("png"), 0o600))

	input := "profile edit\nAnnie\nprofile avatar " + img + "\ngallery upload " + img + " Me at home\ngallery upload " + filepath.Join(dir, "missing.png") + " x\nprofile\n"
	h := loggedIn(t, input)
	h.shell.Run(context.Background())

	out := h.out.String()
	assert.Contains(t, out, "Profile updated")
	assert.Contains(t, out, "Avatar updated")
	assert.Contains(t, out, "Image uploaded")
	assert.Contains(t, out, "Failed to read file")
	assert.Contains(t, out, "Name:   Annie")
	assert.Equal(t, "me.png:png", h.api.uploaded)

	id := h.sess.CurrentIdentity()
	assert.Equal(t, "Annie", id.Name)
	assert.Equal(t, "https://cdn.example.com/me.png", id.AvatarURL)

	items := h.ws.Gallery.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Me at home", items[0].Title)
}

func TestShell_LogoutClearsLists(t *testing.T) {
	h := loggedIn(t, "journal add\nT\nC\nlogout\njournal\n")
	h.shell.Run(context.Background())

	assert.Contains(t, h.out.String(), "Logged out")
	assert.Contains(t, h.out.String(), "No journal entries")
	assert.Equal(t, 0, h.ws.Journal.Len())
	assert.Empty(t, h.api.token)
}

func TestShell_Register(t *testing.T) {
	h := newHarness(t, "")
	h.shell = New(strings.NewReader("new@example.com\nsecret1\nNew\n"), h.out, h.sess, h.ws, h.api, nil)

	assert.True(t, h.shell.Execute(context.Background(), []string{"register"}))
	assert.Contains(t, h.out.String(), "Registered new@example.com")
}

func TestShell_UnknownCommand(t *testing.T) {
	h := newHarness(t, "dance\n")
	h.shell.Run(context.Background())
	assert.Contains(t, h.out.String(), "Unknown command")
}

func TestShell_FailMessages(t *testing.T) {
	h := newHarness(t, "")
	h.shell.fail("do it", common.ErrNotFound)
	assert.Contains(t, h.out.String(), "Could not do it. Please try again.")
}
