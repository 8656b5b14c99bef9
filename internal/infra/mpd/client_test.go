package mpd_test

import (
	"context"
	"errors"
	"testing"
	"time"

	gompd "github.com/fhs/gompd/v2/mpd"

	"github.com/edumarques81/vibesync-player/internal/infra/mpd"
)

// unusedPort has nothing listening in the test environment.
const unusedPort = 16600

func TestNewClient(t *testing.T) {
	client := mpd.NewClient("localhost", 6600, "")

	if client.Addr() != "localhost:6600" {
		t.Errorf("unexpected addr %q", client.Addr())
	}
}

func TestClientConnectFailure(t *testing.T) {
	client := mpd.NewClient("localhost", unusedPort, "")

	err := client.Connect()
	if err == nil {
		t.Error("Connect should fail for non-existent server")
		client.Close()
	}
}

func TestClientPingWithoutConnect(t *testing.T) {
	client := mpd.NewClient("localhost", unusedPort, "")

	if err := client.Ping(); !errors.Is(err, mpd.ErrNotConnected) {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestClientCommandsWithoutServer(t *testing.T) {
	client := mpd.NewClient("localhost", unusedPort, "")
	out := mpd.NewOutput(client)
	ctx := context.Background()

	if err := out.Load(ctx, "http://media/a.mp3"); err == nil {
		t.Error("Load should fail without a server")
	}
	if err := out.Play(ctx); err == nil {
		t.Error("Play should fail without a server")
	}
	if err := out.Pause(ctx); err == nil {
		t.Error("Pause should fail without a server")
	}
	if _, err := out.AtEnd(ctx); err == nil {
		t.Error("AtEnd should fail without a server")
	}
}

func TestClientCloseWithoutConnect(t *testing.T) {
	client := mpd.NewClient("localhost", unusedPort, "")
	if err := client.Close(); err != nil {
		t.Errorf("Close should be a no-op when not connected: %v", err)
	}
}

func TestParseProgress(t *testing.T) {
	tests := []struct {
		name   string
		status map[string]string
		want   mpd.Progress
		atEnd  bool
	}{
		{
			name:   "playing",
			status: map[string]string{"state": "play", "elapsed": "12.500", "duration": "200.0"},
			want:   mpd.Progress{State: "play", Elapsed: 12500 * time.Millisecond, Duration: 200 * time.Second},
		},
		{
			name:   "finished",
			status: map[string]string{"state": "pause", "elapsed": "200.000", "duration": "200.0"},
			want:   mpd.Progress{State: "pause", Elapsed: 200 * time.Second, Duration: 200 * time.Second},
			atEnd:  true,
		},
		{
			name:   "empty",
			status: map[string]string{},
			want:   mpd.Progress{State: "stop"},
			atEnd:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mpd.ParseProgress(tt.status)
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
			if got.AtEnd() != tt.atEnd {
				t.Errorf("expected AtEnd=%v", tt.atEnd)
			}
		})
	}
}

type scriptedStatus struct {
	states []gompd.Attrs
	i      int
}

func (s *scriptedStatus) Status() (gompd.Attrs, error) {
	if s.i >= len(s.states) {
		return nil, errors.New("exhausted")
	}
	st := s.states[s.i]
	s.i++
	return st, nil
}

type recordingHandler struct {
	ended    int
	progress []time.Duration
}

func (h *recordingHandler) HandleEnded(context.Context) { h.ended++ }

func (h *recordingHandler) ReportProgress(_ context.Context, elapsed time.Duration) {
	h.progress = append(h.progress, elapsed)
}

func TestMonitorPoll(t *testing.T) {
	src := &scriptedStatus{states: []gompd.Attrs{
		{"state": "stop"},
		{"state": "play", "elapsed": "1.0", "duration": "2.5"},
		{"state": "play", "elapsed": "2.0", "duration": "2.5"},
		{"state": "stop"},
		{"state": "stop"},
		{"state": "pause", "elapsed": "3.0"},
		{"state": "stop"},
		// A new song being loaded mid-track is not an end.
		{"state": "play", "elapsed": "10.0", "duration": "200.0"},
		{"state": "stop"},
	}}
	h := &recordingHandler{}
	m := mpd.NewMonitor(src, h, 0)
	ctx := context.Background()

	for range src.states {
		m.Poll(ctx)
	}
	m.Poll(ctx) // status error is ignored

	if h.ended != 1 {
		t.Errorf("expected one ended event, got %d", h.ended)
	}
	if len(h.progress) != 3 || h.progress[1] != 2*time.Second {
		t.Errorf("unexpected progress %v", h.progress)
	}
}

func TestMonitorRunStopsOnCancel(t *testing.T) {
	src := &scriptedStatus{}
	m := mpd.NewMonitor(src, &recordingHandler{}, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	events := make(chan string)
	go func() {
		m.Run(ctx, events)
		close(done)
	}()
	close(events)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
