// Package models defines the core data structures shared by the server and
// the client: identities, the per-owner entry kinds and the partner link.
package models

import "time"

// User represents a registered identity with credentials.
type User struct {
	// ID is the unique identifier for the user.
	ID string
	// Email is the login name and the directory key used for partner lookup.
	Email string
	// Name is the display name shown to the partner.
	Name string
	// AvatarURL is the public URL of the uploaded avatar, if any.
	AvatarURL string
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash []byte
	// CreatedAt is the registration time.
	CreatedAt time.Time
}

// Identity is the public view of a User, safe to send over the wire.
type Identity struct {
	ID        string `json:"id"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// Identity returns the public view of u.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Name: u.Name, AvatarURL: u.AvatarURL}
}

// JournalEntry is a titled free-text entry. Title and content are editable.
type JournalEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// MoodEntry is an append-only rating in the MinMood..MaxMood range.
type MoodEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// Mood rating bounds, inclusive.
const (
	MinMood = 0
	MaxMood = 10
)

// GoalCategory groups goals on the goals page.
type GoalCategory string

const (
	GoalPersonal     GoalCategory = "personal"
	GoalRelationship GoalCategory = "relationship"
	GoalTravel       GoalCategory = "travel"
	GoalFinancial    GoalCategory = "financial"
)

// Valid reports whether c is one of the known categories.
func (c GoalCategory) Valid() bool {
	switch c {
	case GoalPersonal, GoalRelationship, GoalTravel, GoalFinancial:
		return true
	}
	return false
}

// GoalEntry is a goal with a completion flag toggled by its owner.
type GoalEntry struct {
	ID        string       `json:"id"`
	UserID    string       `json:"user_id"`
	Text      string       `json:"text"`
	Category  GoalCategory `json:"category"`
	Completed bool         `json:"completed"`
	CreatedAt time.Time    `json:"created_at"`
}

// GratitudeEntry is an append-only line of gratitude.
type GratitudeEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// GalleryImage is an append-only titled picture.
type GalleryImage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// EntryID and Created let the client keep any entry kind in a generic list.
func (e JournalEntry) EntryID() string { return e.ID }
func (e JournalEntry) Created() time.Time { return e.CreatedAt }
func (e MoodEntry) EntryID() string { return e.ID }
func (e MoodEntry) Created() time.Time { return e.CreatedAt }
func (e GoalEntry) EntryID() string { return e.ID }
func (e GoalEntry) Created() time.Time { return e.CreatedAt }
func (e GratitudeEntry) EntryID() string { return e.ID }
func (e GratitudeEntry) Created() time.Time { return e.CreatedAt }
func (e GalleryImage) EntryID() string { return e.ID }
func (e GalleryImage) Created() time.Time { return e.CreatedAt }

// ConnectionStatus is the state of a partner connection.
type ConnectionStatus string

const (
	// StatusPending is set when the requester sends the invitation.
	StatusPending ConnectionStatus = "pending"
	// StatusAccepted is set once the invited partner accepts.
	StatusAccepted ConnectionStatus = "accepted"
)

// PartnerConnection links two identities.
type PartnerConnection struct {
	ID          string           `json:"id"`
	RequesterID string           `json:"requester_id"`
	PartnerID   string           `json:"partner_id"`
	Status      ConnectionStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Other returns the id of the participant that is not userID.
func (c *PartnerConnection) Other(userID string) string {
	if c.RequesterID == userID {
		return c.PartnerID
	}
	return c.RequesterID
}

// Involves reports whether userID is one of the two participants.
func (c *PartnerConnection) Involves(userID string) bool {
	return c.RequesterID == userID || c.PartnerID == userID
}

// PartnerLink is the connection as seen by one participant, with the other
// party's public profile resolved.
type PartnerLink struct {
	Connection PartnerConnection `json:"connection"`
	Partner    *Identity         `json:"partner,omitempty"`
}

// LoveNote is a create-only message between connected partners.
type LoveNote struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// Session is a server-side login record referenced by the access token.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
}
