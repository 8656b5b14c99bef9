package socketio

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
)

var errNoPayload = errors.New("missing payload")

// decodeArg re-encodes a socket.io argument into v.
func decodeArg(args []any, v any) error {
	if len(args) == 0 || args[0] == nil {
		return errNoPayload
	}
	raw, err := json.Marshal(args[0])
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

// songArg accepts {song: {...}} or a bare song.
func songArg(args []any) (catalog.Song, error) {
	var wrapped struct {
		Song *catalog.Song `json:"song"`
	}
	if err := decodeArg(args, &wrapped); err != nil {
		return catalog.Song{}, err
	}
	if wrapped.Song != nil {
		return *wrapped.Song, nil
	}
	var song catalog.Song
	err := decodeArg(args, &song)
	return song, err
}

// songsArg accepts [songs] or {songs: [...]}.
func songsArg(args []any) ([]catalog.Song, error) {
	var songs []catalog.Song
	if err := decodeArg(args, &songs); err == nil {
		return songs, nil
	}
	var wrapped struct {
		Songs []catalog.Song `json:"songs"`
	}
	if err := decodeArg(args, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Songs, nil
}

type contextArgs struct {
	Context string `json:"context"`
	ID      string `json:"id"`
}

// indexArg reads {value: n}. ok is false when absent.
func indexArg(args []any) (int, bool) {
	if len(args) == 0 {
		return 0, false
	}
	m, ok := args[0].(map[string]interface{})
	if !ok {
		return 0, false
	}
	v, ok := m["value"].(float64)
	if !ok {
		return 0, false
	}
	return int(v), true
}
