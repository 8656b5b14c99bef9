package store

import (
	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
)

// Settings are the user's local preferences.
type Settings struct {
	Language      string `json:"language,omitempty"`
	Theme         string `json:"theme,omitempty"`
	Volume        int    `json:"volume"`
	Notifications bool   `json:"notifications"`
}

// DefaultSettings are used until the user saves their own.
func DefaultSettings() Settings {
	return Settings{Language: "en", Theme: "dark", Volume: 100, Notifications: true}
}

// Token returns the stored bearer token, or "" when signed out.
// It lets the DB serve as a backend token source.
func (d *DB) Token() (string, error) {
	tok, _, err := d.Get(KeyToken)
	return tok, err
}

// CurrentUser returns the signed-in user, or nil.
func (d *DB) CurrentUser() (*catalog.User, error) {
	var u catalog.User
	ok, err := d.GetJSON(KeyUser, &u)
	if err != nil || !ok {
		return nil, err
	}
	return &u, nil
}

// SaveSession stores the token and user after sign in.
func (d *DB) SaveSession(token string, u *catalog.User) error {
	if err := d.Set(KeyToken, token); err != nil {
		return err
	}
	return d.SetJSON(KeyUser, u)
}

// ClearSession signs the user out locally.
func (d *DB) ClearSession() error {
	return d.Delete(KeyToken, KeyUser)
}

// Settings returns saved settings or the defaults.
func (d *DB) Settings() (Settings, error) {
	s := DefaultSettings()
	if _, err := d.GetJSON(KeySettings, &s); err != nil {
		return DefaultSettings(), err
	}
	return s, nil
}

// SaveSettings persists settings.
func (d *DB) SaveSettings(s Settings) error {
	return d.SetJSON(KeySettings, s)
}

// SongFormDraft returns the unsaved song form, if any.
func (d *DB) SongFormDraft() (*catalog.SongForm, error) {
	var f catalog.SongForm
	ok, err := d.GetJSON(KeySongFormDraft, &f)
	if err != nil || !ok {
		return nil, err
	}
	return &f, nil
}

// SaveSongFormDraft stores an unsaved song form.
func (d *DB) SaveSongFormDraft(f catalog.SongForm) error {
	return d.SetJSON(KeySongFormDraft, f)
}

// ClearSongFormDraft drops the draft after a successful submit.
func (d *DB) ClearSongFormDraft() error {
	return d.Delete(KeySongFormDraft)
}

// MarkRoleChanged records a role change message to surface on next load.
func (d *DB) MarkRoleChanged(message string) error {
	return d.Set(KeyRoleChanged, message)
}

// TakeRoleChanged returns and clears a pending role change message.
func (d *DB) TakeRoleChanged() (string, bool, error) {
	return d.Take(KeyRoleChanged)
}

type previousRole struct {
	UserID string       `json:"userId"`
	Role   catalog.Role `json:"role"`
}

// PreviousRole returns the role last seen for userID. ok is false when no
// role was recorded for that user.
func (d *DB) PreviousRole(userID string) (catalog.Role, bool, error) {
	var p previousRole
	found, err := d.GetJSON(KeyPreviousRole, &p)
	if err != nil || !found || p.UserID != userID {
		return "", false, err
	}
	return p.Role, true, nil
}

// SavePreviousRole records the role seen for userID.
func (d *DB) SavePreviousRole(userID string, role catalog.Role) error {
	return d.SetJSON(KeyPreviousRole, previousRole{UserID: userID, Role: role})
}
