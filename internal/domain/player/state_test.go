package player_test

import (
	"testing"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
	"github.com/edumarques81/vibesync-player/internal/domain/player"
)

func TestStateStatus(t *testing.T) {
	song := &catalog.Song{ID: "s1"}
	tests := []struct {
		name  string
		state player.State
		want  string
	}{
		{"no song", player.State{IsPlaying: true}, player.StatusStop},
		{"playing", player.State{CurrentSong: song, IsPlaying: true}, player.StatusPlay},
		{"paused", player.State{CurrentSong: song}, player.StatusPause},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Status(); got != tt.want {
				t.Errorf("expected status %q, got %q", tt.want, got)
			}
		})
	}
}

func TestStateIndex(t *testing.T) {
	state := player.State{
		Songs:       []catalog.Song{{ID: "a"}, {ID: "b"}},
		CurrentSong: &catalog.Song{ID: "b"},
	}
	if state.Index() != 1 {
		t.Errorf("expected index 1, got %d", state.Index())
	}
	state.CurrentSong = &catalog.Song{ID: "zz"}
	if state.Index() != -1 {
		t.Errorf("expected index -1 for unknown song, got %d", state.Index())
	}
}

func TestRepeatModeString(t *testing.T) {
	if player.RepeatOne.String() != "one" {
		t.Errorf("unexpected %q", player.RepeatOne.String())
	}
	if player.RepeatMode(7).String() != "RepeatMode(7)" {
		t.Errorf("unexpected %q", player.RepeatMode(7).String())
	}
}

func TestStateToJSON(t *testing.T) {
	state := player.State{
		Songs:       []catalog.Song{{ID: "a"}, {ID: "b"}},
		CurrentSong: &catalog.Song{ID: "b", Title: "Test Track", Artist: "Test Artist", Duration: 200},
		IsPlaying:   true,
		RepeatMode:  player.RepeatOne,
		Context:     player.ContextAlbum,
		ContextID:   "al1",
	}

	json := state.ToJSON()

	if json["status"] != player.StatusPlay {
		t.Errorf("expected status %q in JSON, got %v", player.StatusPlay, json["status"])
	}
	if json["title"] != "Test Track" {
		t.Errorf("expected title %q in JSON, got %v", "Test Track", json["title"])
	}
	if json["position"] != 1 {
		t.Errorf("expected position 1, got %v", json["position"])
	}
	if json["repeatSingle"] != true || json["repeat"] != false {
		t.Errorf("unexpected repeat flags %v %v", json["repeat"], json["repeatSingle"])
	}
	if json["queueLength"] != 2 {
		t.Errorf("expected queueLength 2, got %v", json["queueLength"])
	}
}

func TestStateToJSONIdle(t *testing.T) {
	json := player.State{}.ToJSON()
	if json["status"] != player.StatusStop || json["songId"] != "" {
		t.Errorf("unexpected idle JSON %v", json)
	}
}

func TestQueueJSON(t *testing.T) {
	state := player.State{Songs: []catalog.Song{{ID: "a", Title: "A", AudioURL: "http://x/a.mp3"}}}
	q := state.QueueJSON()
	if len(q) != 1 || q[0]["uri"] != "http://x/a.mp3" || q[0]["title"] != "A" {
		t.Errorf("unexpected queue %v", q)
	}
	if got := (player.State{}).QueueJSON(); got == nil || len(got) != 0 {
		t.Errorf("empty queue should be a non-nil empty slice, got %v", got)
	}
}
