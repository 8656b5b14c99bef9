package player

import (
	"context"
	"time"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
)

// Output is the single audio element the session drives.
type Output interface {
	// Load replaces the source with url and starts playback.
	Load(ctx context.Context, url string) error
	// Play resumes playback of the loaded source.
	Play(ctx context.Context) error
	// Pause pauses playback.
	Pause(ctx context.Context) error
	// Rewind seeks to the start of the loaded source.
	Rewind(ctx context.Context) error
	// AtEnd reports whether playback reached the end of the source.
	AtEnd(ctx context.Context) (bool, error)
}

// SongLoader fetches the queue of a playback context.
type SongLoader interface {
	ContextSongs(ctx context.Context, kind, id string) ([]catalog.Song, error)
}

// ListenRecorder stores full listens.
type ListenRecorder interface {
	RecordFullListen(ctx context.Context, userID, songID string, at time.Time) error
}

// UserSource returns the signed-in user, or nil when signed out.
type UserSource interface {
	CurrentUser() (*catalog.User, error)
}

// NopOutput accepts every command and never reaches the end. It is used
// when no audio backend is configured.
type NopOutput struct{}

func (NopOutput) Load(context.Context, string) error { return nil }
func (NopOutput) Play(context.Context) error { return nil }
func (NopOutput) Pause(context.Context) error { return nil }
func (NopOutput) Rewind(context.Context) error { return nil }
func (NopOutput) AtEnd(context.Context) (bool, error) { return false, nil }
