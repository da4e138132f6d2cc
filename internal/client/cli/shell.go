// Package cli is the interactive terminal front end: a small REPL whose
// commands call the session and the workspace holders.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/atinyakov/TwoHearts/internal/client/session"
	"github.com/atinyakov/TwoHearts/internal/client/state"
	"github.com/atinyakov/TwoHearts/internal/common"
	"github.com/atinyakov/TwoHearts/internal/models"
	"go.uber.org/zap"
)

// ProfileAPI is the profile part of the API client.
type ProfileAPI interface {
	GetProfile(ctx context.Context) (*models.Identity, error)
	UpdateProfile(ctx context.Context, name, avatarURL string) (*models.Identity, error)
	UploadAvatar(ctx context.Context, filename string, r io.Reader) (*models.Identity, error)
}

const helpText = `Available commands:
  register | login | logout | whoami
  journal | journal add | journal edit <id> | journal delete <id>
  mood | mood add <0-10> [note]
  goals | goals add | goals toggle <id> | goals delete <id>
  gratitude | gratitude add <text>
  gallery | gallery add <url> <title> | gallery upload <file> <title>
  profile | profile edit | profile avatar <file>
  partner | partner connect <email> | partner accept
  note <text>
  help | exit`

// Shell runs commands against one session and its workspace.
type Shell struct {
	rawIn io.Reader
	in    *bufio.Scanner
	out   io.Writer

	sess    *session.Session
	ws      *state.Workspace
	profile ProfileAPI
	log     *zap.Logger
}

// New returns a Shell reading commands from in and printing to out.
func New(in io.Reader, out io.Writer, sess *session.Session, ws *state.Workspace, profile ProfileAPI, log *zap.Logger) *Shell {
	if log == nil {
		log = zap.NewNop()
	}
	return &Shell{
		rawIn:   in,
		in:      bufio.NewScanner(in),
		out:     out,
		sess:    sess,
		ws:      ws,
		profile: profile,
		log:     log,
	}
}

// Run reads commands until exit, end of input or ctx is done.
func (s *Shell) Run(ctx context.Context) {
	for ctx.Err() == nil {
		fmt.Fprint(s.out, "twohearts> ")
		if !s.in.Scan() {
			return
		}
		args := strings.Fields(s.in.Text())
		if len(args) == 0 {
			continue
		}
		if !s.Execute(ctx, args) {
			return
		}
	}
}

// Execute runs one command. It returns false when the shell should stop.
func (s *Shell) Execute(ctx context.Context, args []string) bool {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "register":
		s.register(ctx)
	case "login":
		s.login(ctx)
	case "logout":
		if err := s.sess.LogOut(ctx); err != nil {
			s.log.Warn("logout", zap.Error(err))
		}
		fmt.Fprintln(s.out, "Logged out")
	case "whoami":
		s.whoami()
	case "journal":
		s.journal(ctx, rest)
	case "mood":
		s.mood(ctx, rest)
	case "goals":
		s.goals(ctx, rest)
	case "gratitude":
		s.gratitude(ctx, rest)
	case "gallery":
		s.gallery(ctx, rest)
	case "profile":
		s.profileCmd(ctx, rest)
	case "partner":
		s.partner(ctx, rest)
	case "note":
		s.note(ctx, rest)
	case "exit", "quit":
		fmt.Fprintln(s.out, "Bye")
		return false
	default:
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
	}
	return true
}

// fail reports a failed user action with a generic message and logs the
// detail.
func (s *Shell) fail(action string, err error) {
	s.log.Error(action+" failed", zap.Error(err))
	switch {
	case errors.Is(err, common.ErrUnauthorized):
		fmt.Fprintln(s.out, "Please log in first.")
	case errors.Is(err, common.ErrValidation):
		fmt.Fprintf(s.out, "Could not %s: please check your input.\n", action)
	default:
		fmt.Fprintf(s.out, "Could not %s. Please try again.\n", action)
	}
}

func (s *Shell) register(ctx context.Context) {
	email, ok := s.ask("Email: ")
	if !ok {
		return
	}
	password, ok := s.askPassword("Password: ")
	if !ok {
		return
	}
	name, _ := s.ask("Display name (optional): ")

	id, err := s.sess.Register(ctx, email, password, name)
	if err != nil {
		s.fail("register", err)
		return
	}
	fmt.Fprintf(s.out, "Registered %s. You can log in now.\n", id.Email)
}

func (s *Shell) login(ctx context.Context) {
	email, ok := s.ask("Email: ")
	if !ok {
		return
	}
	password, ok := s.askPassword("Password: ")
	if !ok {
		return
	}
	if err := s.sess.LogIn(ctx, email, password); err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			s.log.Info("login rejected", zap.String("email", email))
			fmt.Fprintln(s.out, "Invalid email or password.")
			return
		}
		s.fail("log in", err)
		return
	}
	fmt.Fprintf(s.out, "Welcome, %s\n", s.sess.CurrentIdentity().Name)
}

func (s *Shell) whoami() {
	id := s.sess.CurrentIdentity()
	if id == nil {
		fmt.Fprintln(s.out, "Not logged in")
		return
	}
	fmt.Fprintf(s.out, "%s <%s>\n", id.Name, id.Email)
	if id.AvatarURL != "" {
		fmt.Fprintf(s.out, "Avatar: %s\n", id.AvatarURL)
	}
}

func (s *Shell) journal(ctx context.Context, args []string) {
	if len(args) == 0 {
		items := s.ws.Journal.Items()
		if len(items) == 0 {
			fmt.Fprintln(s.out, "No journal entries")
			return
		}
		for _, e := range items {
			fmt.Fprintf(s.out, "[%s] %s  %s\n%s\n---\n", e.ID, day(e.CreatedAt), e.Title, e.Content)
		}
		return
	}
	switch args[0] {
	case "add":
		title, _ := s.ask("Title: ")
		content, _ := s.ask("Entry: ")
		if _, err := s.ws.Journal.Add(ctx, title, content); err != nil {
			s.fail("save the entry", err)
			return
		}
		fmt.Fprintln(s.out, "Entry saved")
	case "edit":
		if len(args) < 2 {
			fmt.Fprintln(s.out, "Usage: journal edit <id>")
			return
		}
		cur, ok := s.ws.Journal.Get(args[1])
		if !ok {
			fmt.Fprintln(s.out, "Entry not found")
			return
		}
		title, _ := s.ask(fmt.Sprintf("Title [%s]: ", cur.Title))
		content, _ := s.ask("Entry (empty keeps current): ")
		if title == "" {
			title = cur.Title
		}
		if content == "" {
			content = cur.Content
		}
		if _, err := s.ws.Journal.Edit(ctx, cur.ID, title, content); err != nil {
			s.fail("update the entry", err)
			return
		}
		fmt.Fprintln(s.out, "Entry updated")
	case "delete":
		if len(args) < 2 {
			fmt.Fprintln(s.out, "Usage: journal delete <id>")
			return
		}
		if err := s.ws.Journal.Remove(ctx, args[1]); err != nil {
			s.fail("delete the entry", err)
			return
		}
		fmt.Fprintln(s.out, "Entry deleted")
	default:
		fmt.Fprintln(s.out, "Usage: journal [add | edit <id> | delete <id>]")
	}
}

func (s *Shell) mood(ctx context.Context, args []string) {
	if len(args) == 0 {
		items := s.ws.Moods.Items()
		if len(items) == 0 {
			fmt.Fprintln(s.out, "No moods logged")
			return
		}
		for _, m := range items {
			fmt.Fprintf(s.out, "%s  %-10s %2d  %s\n", day(m.CreatedAt), strings.Repeat("*", m.Rating), m.Rating, m.Note)
		}
		return
	}
	if args[0] != "add" || len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: mood add <0-10> [note]")
		return
	}
	rating, err := strconv.Atoi(args[1])
	if err != nil || rating < models.MinMood || rating > models.MaxMood {
		fmt.Fprintf(s.out, "Rating must be a number from %d to %d\n", models.MinMood, models.MaxMood)
		return
	}
	if _, err := s.ws.Moods.Add(ctx, rating, strings.Join(args[2:], " ")); err != nil {
		s.fail("log the mood", err)
		return
	}
	fmt.Fprintln(s.out, "Mood logged")
}

func (s *Shell) goals(ctx context.Context, args []string) {
	if len(args) == 0 {
		items := s.ws.Goals.Items()
		if len(items) == 0 {
			fmt.Fprintln(s.out, "No goals yet")
			return
		}
		for _, g := range items {
			mark := " "
			if g.Completed {
				mark = "x"
			}
			fmt.Fprintf(s.out, "[%s] %s (%s) %s\n", mark, g.Text, g.Category, g.ID)
		}
		return
	}
	switch args[0] {
	case "add":
		text, _ := s.ask("Goal: ")
		category, _ := s.ask("Category (personal/relationship/travel/financial) [personal]: ")
		if _, err := s.ws.Goals.Add(ctx, text, models.GoalCategory(strings.ToLower(category))); err != nil {
			s.fail("add the goal", err)
			return
		}
		fmt.Fprintln(s.out, "Goal added")
	case "toggle":
		if len(args) < 2 {
			fmt.Fprintln(s.out, "Usage: goals toggle <id>")
			return
		}
		g, err := s.ws.Goals.Toggle(ctx, args[1])
		if err != nil {
			s.fail("update the goal", err)
			return
		}
		if g.Completed {
			fmt.Fprintln(s.out, "Goal completed")
		} else {
			fmt.Fprintln(s.out, "Goal reopened")
		}
	case "delete":
		if len(args) < 2 {
			fmt.Fprintln(s.out, "Usage: goals delete <id>")
			return
		}
		if err := s.ws.Goals.Remove(ctx, args[1]); err != nil {
			s.fail("delete the goal", err)
			return
		}
		fmt.Fprintln(s.out, "Goal deleted")
	default:
		fmt.Fprintln(s.out, "Usage: goals [add | toggle <id> | delete <id>]")
	}
}

func (s *Shell) gratitude(ctx context.Context, args []string) {
	if len(args) == 0 {
		items := s.ws.Gratitude.Items()
		if len(items) == 0 {
			fmt.Fprintln(s.out, "Nothing yet. What are you grateful for?")
			return
		}
		for _, g := range items {
			fmt.Fprintf(s.out, "%s  %s\n", day(g.CreatedAt), g.Text)
		}
		return
	}
	if args[0] != "add" || len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: gratitude add <text>")
		return
	}
	if _, err := s.ws.Gratitude.Add(ctx, strings.Join(args[1:], " ")); err != nil {
		s.fail("save gratitude", err)
		return
	}
	fmt.Fprintln(s.out, "Saved")
}

func (s *Shell) gallery(ctx context.Context, args []string) {
	if len(args) == 0 {
		items := s.ws.Gallery.Items()
		if len(items) == 0 {
			fmt.Fprintln(s.out, "Gallery is empty")
			return
		}
		for _, g := range items {
			fmt.Fprintf(s.out, "%s  %s\n    %s\n", day(g.CreatedAt), g.Title, g.URL)
		}
		return
	}
	if len(args) < 3 || (args[0] != "add" && args[0] != "upload") {
		fmt.Fprintln(s.out, "Usage: gallery add <url> <title> | gallery upload <file> <title>")
		return
	}
	title := strings.Join(args[2:], " ")
	if args[0] == "add" {
		if _, err := s.ws.Gallery.Add(ctx, title, args[1]); err != nil {
			s.fail("add the image", err)
			return
		}
		fmt.Fprintln(s.out, "Image added")
		return
	}

	f, err := os.Open(args[1])
	if err != nil {
		fmt.Fprintf(s.out, "Failed to read file %q: %v\n", args[1], err)
		return
	}
	defer f.Close()
	if _, err := s.ws.Gallery.Upload(ctx, title, filepath.Base(args[1]), f); err != nil {
		s.fail("upload the image", err)
		return
	}
	fmt.Fprintln(s.out, "Image uploaded")
}

func (s *Shell) profileCmd(ctx context.Context, args []string) {
	if s.sess.CurrentIdentity() == nil {
		s.fail("load the profile", common.ErrUnauthorized)
		return
	}
	if len(args) == 0 {
		id, err := s.profile.GetProfile(ctx)
		if err != nil {
			s.fail("load the profile", err)
			return
		}
		fmt.Fprintf(s.out, "Name:   %s\nEmail:  %s\nAvatar: %s\n", id.Name, id.Email, id.AvatarURL)
		return
	}
	switch args[0] {
	case "edit":
		cur := s.sess.CurrentIdentity()
		name, _ := s.ask(fmt.Sprintf("Display name [%s]: ", cur.Name))
		if name == "" {
			name = cur.Name
		}
		id, err := s.profile.UpdateProfile(ctx, name, cur.AvatarURL)
		if err != nil {
			s.fail("update the profile", err)
			return
		}
		s.sess.UpdateIdentity(*id)
		fmt.Fprintln(s.out, "Profile updated")
	case "avatar":
		if len(args) < 2 {
			fmt.Fprintln(s.out, "Usage: profile avatar <file>")
			return
		}
		f, err := os.Open(args[1])
		if err != nil {
			fmt.Fprintf(s.out, "Failed to read file %q: %v\n", args[1], err)
			return
		}
		defer f.Close()
		id, err := s.profile.UploadAvatar(ctx, filepath.Base(args[1]), f)
		if err != nil {
			s.fail("upload the avatar", err)
			return
		}
		s.sess.UpdateIdentity(*id)
		fmt.Fprintln(s.out, "Avatar updated")
	default:
		fmt.Fprintln(s.out, "Usage: profile [edit | avatar <file>]")
	}
}

func (s *Shell) partner(ctx context.Context, args []string) {
	if len(args) == 0 {
		s.showPartner()
		return
	}
	switch args[0] {
	case "connect":
		if len(args) < 2 {
			fmt.Fprintln(s.out, "Usage: partner connect <email>")
			return
		}
		if _, err := s.ws.Partner.Connect(ctx, args[1]); err != nil {
			s.fail("connect with your partner", err)
			return
		}
		fmt.Fprintln(s.out, "Invitation sent")
	case "accept":
		if _, err := s.ws.Partner.Accept(ctx); err != nil {
			s.fail("accept the invitation", err)
			return
		}
		fmt.Fprintln(s.out, "You are now connected")
	default:
		fmt.Fprintln(s.out, "Usage: partner [connect <email> | accept]")
	}
}

func (s *Shell) showPartner() {
	me := s.sess.CurrentIdentity()
	link := s.ws.Partner.Link()
	if me == nil || link == nil {
		fmt.Fprintln(s.out, "No partner connected")
		return
	}
	name := "your partner"
	if link.Partner != nil && link.Partner.Name != "" {
		name = link.Partner.Name
	}
	switch {
	case link.Connection.Status == models.StatusAccepted:
		fmt.Fprintf(s.out, "Connected with %s\n", name)
	case link.Connection.RequesterID == me.ID:
		fmt.Fprintf(s.out, "Waiting for %s to accept\n", name)
	default:
		fmt.Fprintf(s.out, "%s invited you. Type 'partner accept' to connect.\n", name)
	}
}

func (s *Shell) note(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(s.out, "Usage: note <text>")
		return
	}
	if _, err := s.ws.Partner.SendLoveNote(ctx, strings.Join(args, " ")); err != nil {
		s.fail("send the love note", err)
		return
	}
	fmt.Fprintln(s.out, "Love note sent")
}

func day(t time.Time) string {
	return t.Local().Format("2006-01-02")
}
