// Package player owns the playback session: the queue, the current song,
// play/pause, shuffle and repeat, driving one audio Output.
package player

import (
	"fmt"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
)

// Status constants for player state
const (
	StatusPlay  = "play"
	StatusPause = "pause"
	StatusStop  = "stop"
)

// RepeatMode is the 3-state repeat setting.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatOne
	RepeatAll
)

func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "off"
	case RepeatOne:
		return "one"
	case RepeatAll:
		return "all"
	}
	return fmt.Sprintf("RepeatMode(%d)", int(m))
}

// Context kinds that load a queue from the backend.
const (
	ContextAlbum       = "album"
	ContextPlaylist    = "playlist"
	ContextArtist      = "artist"
	ContextNewReleases = "new-releases"
)

// State is a point-in-time copy of the session.
type State struct {
	Songs       []catalog.Song
	CurrentSong *catalog.Song
	IsPlaying   bool
	IsShuffling bool
	RepeatMode  RepeatMode
	Context     string
	ContextID   string
}

// Index returns the position of the current song in the queue, or -1.
func (s State) Index() int {
	if s.CurrentSong == nil {
		return -1
	}
	return indexOf(s.Songs, s.CurrentSong.ID)
}

// Status reports play, pause or stop.
func (s State) Status() string {
	switch {
	case s.CurrentSong == nil:
		return StatusStop
	case s.IsPlaying:
		return StatusPlay
	default:
		return StatusPause
	}
}

// ToJSON returns the state as a map suitable for the pushState event.
func (s State) ToJSON() map[string]interface{} {
	out := map[string]interface{}{
		"status":       s.Status(),
		"position":     s.Index(),
		"isPlaying":    s.IsPlaying,
		"random":       s.IsShuffling,
		"repeatMode":   int(s.RepeatMode),
		"repeat":       s.RepeatMode == RepeatAll,
		"repeatSingle": s.RepeatMode == RepeatOne,
		"context":      s.Context,
		"contextId":    s.ContextID,
		"queueLength":  len(s.Songs),
		"songId":       "",
		"title":        "",
		"artist":       "",
		"albumart":     "",
		"uri":          "",
		"duration":     0,
	}
	if c := s.CurrentSong; c != nil {
		out["songId"] = c.ID
		out["title"] = c.Title
		out["artist"] = c.Artist
		out["albumart"] = c.CoverArt
		out["uri"] = c.AudioURL
		out["duration"] = c.Duration
	}
	return out
}

// QueueJSON returns the queue as maps suitable for the pushQueue event.
func (s State) QueueJSON() []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(s.Songs))
	for _, song := range s.Songs {
		out = append(out, map[string]interface{}{
			"id":       song.ID,
			"title":    song.Title,
			"artist":   song.Artist,
			"albumart": song.CoverArt,
			"uri":      song.AudioURL,
			"duration": song.Duration,
		})
	}
	return out
}

func indexOf(songs []catalog.Song, id string) int {
	for i, s := range songs {
		if s.ID == id {
			return i
		}
	}
	return -1
}
