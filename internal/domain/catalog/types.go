// Package catalog holds the VibeSync resource types shared by the backend
// client and the player, stats and admin features, plus the list and form
// helpers used by the CRUD screens.
package catalog

import (
	"encoding/json"
	"errors"
	"time"
)

// Common errors
var (
	// ErrInvalidForm is returned when a form fails validation.
	ErrInvalidForm = errors.New("invalid form")

	// ErrNotFound indicates an id lookup returned nothing.
	ErrNotFound = errors.New("not found")
)

// Role is a user role.
type Role string

const (
	RoleUser   Role = "user"
	RoleArtist Role = "artist"
	RoleAdmin  Role = "admin"
)

// Song is a playable track.
type Song struct {
	ID                    string   `json:"id"`
	Title                 string   `json:"title"`
	Artist                string   `json:"artist,omitempty"`
	ArtistID              string   `json:"artistId"`
	ContributingArtistIDs []string `json:"contributingArtistIds,omitempty"`
	AlbumIDs              []string `json:"albumIds,omitempty"`
	Album                 string   `json:"album,omitempty"`
	Genre                 []string `json:"genre"`
	Duration              int      `json:"duration"` // seconds
	ReleaseYear           int      `json:"releaseYear,omitempty"`
	CoverArt              string   `json:"coverArt,omitempty"`
	AudioURL              string   `json:"audioUrl,omitempty"`
	LyricsLRC             string   `json:"lyrics_lrc,omitempty"`
}

// UnmarshalJSON accepts both "id" and the raw "_id" key.
func (s *Song) UnmarshalJSON(data []byte) error {
	type plain Song
	return unmarshalWithID(data, (*plain)(s), &s.ID)
}

// Artist is an artist profile.
type Artist struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Bio         string   `json:"bio,omitempty"`
	Image       string   `json:"image,omitempty"`
	Genres      []string `json:"genres"`
	Followers   int      `json:"followers"`
	IsFollowing bool     `json:"isFollowing"`
}

// UnmarshalJSON accepts both "id" and the raw "_id" key.
func (a *Artist) UnmarshalJSON(data []byte) error {
	type plain Artist
	return unmarshalWithID(data, (*plain)(a), &a.ID)
}

// Album is a collection of songs by one artist.
type Album struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	ArtistID    string   `json:"artist_id"`
	CoverArt    string   `json:"cover_art,omitempty"`
	ReleaseYear int      `json:"release_year,omitempty"`
	Genres      []string `json:"genres"`
	Songs       []string `json:"songs"`
}

// UnmarshalJSON accepts both "id" and the raw "_id" key.
func (a *Album) UnmarshalJSON(data []byte) error {
	type plain Album
	return unmarshalWithID(data, (*plain)(a), &a.ID)
}

// HasSong reports whether the album lists the song id.
func (a Album) HasSong(songID string) bool {
	for _, id := range a.Songs {
		if id == songID {
			return true
		}
	}
	return false
}

// Playlist is a user-curated list of songs.
type Playlist struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	IsPublic    bool     `json:"isPublic"`
	Creator     string   `json:"creator"`
	SongIDs     []string `json:"songIds"`
}

// UnmarshalJSON accepts both "id" and the raw "_id" key.
func (p *Playlist) UnmarshalJSON(data []byte) error {
	type plain Playlist
	return unmarshalWithID(data, (*plain)(p), &p.ID)
}

// RequestStatus is the review state of an artist request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// ArtistRequest is a user's application to become an artist.
type ArtistRequest struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	Name            string        `json:"name"`
	Bio             string        `json:"bio,omitempty"`
	Phone           string        `json:"phone,omitempty"`
	Email           string        `json:"email,omitempty"`
	SocialLinks     []string      `json:"social_links,omitempty"`
	Status          RequestStatus `json:"status"`
	MatchedArtistID string        `json:"matched_artist_id,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationArtistRequest NotificationType = "artist_request"
	NotificationAdminAction   NotificationType = "admin_action"
	NotificationRoleChanged   NotificationType = "role_changed"
	NotificationLogin         NotificationType = "login"
)

// Notification is a user-facing message.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id,omitempty"`
	Title     string           `json:"title,omitempty"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type,omitempty"`
	Read      bool             `json:"read"`
	Link      string           `json:"link,omitempty"`
	CreatedAt *time.Time       `json:"created_at,omitempty"`
}

// NewNotification is the body for creating a notification.
type NewNotification struct {
	UserID  string           `json:"user_id"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Type    NotificationType `json:"type"`
}

// User is the signed-in account.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Role   Role   `json:"role"`
	Avatar string `json:"avatar,omitempty"`
	Banned bool   `json:"banned,omitempty"`
}

// UnmarshalJSON accepts both "id" and the raw "_id" key.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	return unmarshalWithID(data, (*plain)(u), &u.ID)
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Sender identifies the author of a chat message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ChatMessage is one line in the chat widget.
type ChatMessage struct {
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
}

// ChatReply is the assistant's answer with the updated conversation.
type ChatReply struct {
	Response string        `json:"response"`
	History  []ChatMessage `json:"history"`
}

// SearchResult groups search hits by kind.
type SearchResult struct {
	Songs   []Song   `json:"songs"`
	Artists []Artist `json:"artists"`
	Albums  []Album  `json:"albums"`
}

func unmarshalWithID(data []byte, v any, id *string) error {
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}
	if *id != "" {
		return nil
	}
	var raw struct {
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*id = raw.MongoID
	return nil
}
