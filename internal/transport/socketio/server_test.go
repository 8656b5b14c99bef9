package socketio_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
	"github.com/edumarques81/vibesync-player/internal/domain/player"
	"github.com/edumarques81/vibesync-player/internal/transport/socketio"
)

func newServer(t *testing.T) (*socketio.Server, *player.Session) {
	t.Helper()
	session := player.NewSession(nil, nil)
	server, err := socketio.NewServer(session, socketio.WithMaxExternalClients(2))
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	t.Cleanup(func() { server.Close() })
	return server, session
}

func TestNewServer(t *testing.T) {
	server, _ := newServer(t)

	var _ http.Handler = server
	if server.ClientCount() != 0 {
		t.Errorf("expected no clients, got %d", server.ClientCount())
	}
}

func TestServerBroadcastWithoutClients(t *testing.T) {
	server, session := newServer(t)

	session.SetSongs([]catalog.Song{{ID: "s1", Title: "One"}, {ID: "s2", Title: "Two"}})
	session.PlaySong(context.Background(), catalog.Song{ID: "s2"})

	server.BroadcastState()
	server.BroadcastState()
	server.BroadcastQueue()
	server.BroadcastToast(socketio.ToastInfo, "hello")
}

func TestServerClose(t *testing.T) {
	session := player.NewSession(nil, nil)
	server, err := socketio.NewServer(session)
	if err != nil {
		t.Fatal(err)
	}
	if err := server.Close(); err != nil {
		t.Errorf("Close should not error: %v", err)
	}

	// Changes after close must not schedule broadcasts.
	session.ToggleShuffle()
}
