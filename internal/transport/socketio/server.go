// Package socketio pushes player state to clients and takes player
// commands over Socket.io.
package socketio

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/servers/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
	"github.com/edumarques81/vibesync-player/internal/domain/player"
)

const (
	defaultDebounceWindow = 50 * time.Millisecond
	defaultMaxExternal    = 4
	handlerTimeout        = 10 * time.Second
)

// Toast levels for pushToast.
const (
	ToastInfo    = "info"
	ToastWarning = "warning"
	ToastError   = "error"
)

// stateCompareKeys are the pushState fields that decide whether a
// broadcast is needed.
var stateCompareKeys = []string{
	"status", "position", "isPlaying", "random", "repeatMode",
	"context", "contextId", "queueLength", "songId", "uri",
}

// Server handles Socket.io connections and events.
type Server struct {
	io        *socket.Server
	session   *player.Session
	limiter   *ConnectionLimiter
	debouncer *BroadcastDebouncer

	mu      sync.RWMutex
	clients map[string]*socket.Socket

	lastMu    sync.Mutex
	lastState map[string]interface{}
	lastQueue []string

	window      time.Duration
	maxExternal int
}

// Option configures a Server.
type Option func(*Server)

// WithMaxExternalClients caps concurrent non-loopback clients.
func WithMaxExternalClients(n int) Option {
	return func(s *Server) { s.maxExternal = n }
}

// WithDebounceWindow sets how long broadcasts are held back.
func WithDebounceWindow(d time.Duration) Option {
	return func(s *Server) { s.window = d }
}

// NewServer creates a Socket.io server bound to session.
func NewServer(session *player.Session, opts ...Option) (*Server, error) {
	sopts := socket.DefaultServerOptions()
	sopts.SetPingTimeout(20 * time.Second)
	sopts.SetPingInterval(25 * time.Second)
	sopts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	s := &Server{
		io:          socket.NewServer(nil, sopts),
		session:     session,
		clients:     make(map[string]*socket.Socket),
		window:      defaultDebounceWindow,
		maxExternal: defaultMaxExternal,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.limiter = NewConnectionLimiter(s.maxExternal)
	s.debouncer = NewBroadcastDebouncer(s.window, s.BroadcastState, s.BroadcastQueue)

	session.OnChange(s.onChange)
	s.setupHandlers()

	return s, nil
}

// onChange schedules broadcasts for a session change.
func (s *Server) onChange(st player.State) {
	ids := songIDs(st.Songs)

	s.lastMu.Lock()
	queueChanged := !slices.Equal(ids, s.lastQueue)
	s.lastMu.Unlock()

	if queueChanged {
		s.debouncer.Trigger(ChangeQueue)
		return
	}
	s.debouncer.Trigger(ChangeState)
}

func songIDs(songs []catalog.Song) []string {
	ids := make([]string, len(songs))
	for i, song := range songs {
		ids[i] = song.ID
	}
	return ids
}

func (s *Server) setupHandlers() {
	s.io.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		clientID := string(client.Id())
		addr := client.Handshake().Address

		log.Info().Str("id", clientID).Str("addr", addr).Msg("Client connected")

		s.mu.Lock()
		s.clients[clientID] = client
		s.mu.Unlock()

		if evicted := s.limiter.TryAdd(clientID, addr); evicted != "" {
			s.evict(evicted)
		}

		go func() {
			time.Sleep(100 * time.Millisecond)
			s.pushState(client)
			s.pushQueue(client)
		}()

		client.On("disconnect", func(args ...any) {
			reason := ""
			if len(args) > 0 {
				if r, ok := args[0].(string); ok {
					reason = r
				}
			}
			log.Info().Str("id", clientID).Str("reason", reason).Msg("Client disconnected")

			s.limiter.Remove(clientID)
			s.mu.Lock()
			delete(s.clients, clientID)
			s.mu.Unlock()
		})

		s.registerPlayerHandlers(client, clientID)
	})
}

func (s *Server) evict(clientID string) {
	s.mu.RLock()
	victim := s.clients[clientID]
	s.mu.RUnlock()
	if victim == nil {
		return
	}
	log.Warn().Str("id", clientID).Msg("Evicting oldest external client")
	toast(victim, ToastWarning, "Disconnected: too many remote clients")
	victim.Disconnect(true)
}

func (s *Server) registerPlayerHandlers(client *socket.Socket, clientID string) {
	on := func(event string, fn func(ctx context.Context, args []any)) {
		client.On(event, func(args ...any) {
			log.Debug().Str("id", clientID).Interface("data", args).Msg(event)
			ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
			defer cancel()
			fn(ctx, args)
		})
	}

	on("getState", func(context.Context, []any) { s.pushState(client) })
	on("getQueue", func(context.Context, []any) { s.pushQueue(client) })

	on("playSong", func(ctx context.Context, args []any) {
		song, err := songArg(args)
		if err != nil || song.ID == "" {
			toast(client, ToastError, "Song has no id")
			return
		}
		s.session.PlaySong(ctx, song)
	})

	on("play", func(ctx context.Context, args []any) {
		st := s.session.Snapshot()
		if idx, ok := indexArg(args); ok {
			if idx < 0 || idx >= len(st.Songs) {
				toast(client, ToastError, "No song at that position")
				return
			}
			s.session.PlaySong(ctx, st.Songs[idx])
			return
		}
		if !st.IsPlaying {
			s.session.TogglePlayPause(ctx)
		}
	})

	on("pause", func(ctx context.Context, _ []any) {
		if s.session.Snapshot().IsPlaying {
			s.session.TogglePlayPause(ctx)
		}
	})

	on("togglePlayPause", func(ctx context.Context, _ []any) { s.session.TogglePlayPause(ctx) })
	on("next", func(ctx context.Context, _ []any) { s.session.NextSong(ctx) })
	on("prev", func(ctx context.Context, _ []any) { s.session.PrevSong(ctx) })
	on("toggleShuffle", func(context.Context, []any) { s.session.ToggleShuffle() })
	on("toggleRepeat", func(context.Context, []any) { s.session.ToggleRepeat() })
	on("resetPlayer", func(ctx context.Context, _ []any) { s.session.ResetPlayer(ctx) })

	on("setContext", func(ctx context.Context, args []any) {
		var c contextArgs
		if err := decodeArg(args, &c); err != nil {
			toast(client, ToastError, "Invalid context")
			return
		}
		s.session.SelectContext(ctx, c.Context, c.ID)
	})

	on("setSongs", func(_ context.Context, args []any) {
		songs, err := songsArg(args)
		if err != nil {
			toast(client, ToastError, "Invalid song list")
			return
		}
		s.session.SetSongs(songs)
	})
}

func toast(client *socket.Socket, level, message string) {
	client.Emit("pushToast", map[string]interface{}{"type": level, "message": message})
}

func (s *Server) pushState(client *socket.Socket) {
	client.Emit("pushState", s.session.Snapshot().ToJSON())
}

func (s *Server) pushQueue(client *socket.Socket) {
	client.Emit("pushQueue", s.session.Snapshot().QueueJSON())
}

// isStateSame reports whether state matches the last broadcast on every
// compared key, and records it as the last broadcast otherwise.
func (s *Server) isStateSame(state map[string]interface{}) bool {
	s.lastMu.Lock()
	defer s.lastMu.Unlock()

	if s.lastState != nil {
		same := true
		for _, k := range stateCompareKeys {
			if state[k] != s.lastState[k] {
				same = false
				break
			}
		}
		if same {
			return true
		}
	}
	s.lastState = state
	return false
}

// BroadcastState sends state to all connected clients unless nothing
// visible changed since the last broadcast.
func (s *Server) BroadcastState() {
	state := s.session.Snapshot().ToJSON()
	if s.isStateSame(state) {
		return
	}

	s.io.Emit("pushState", state)

	if log.Debug().Enabled() {
		data, _ := json.Marshal(state)
		s.mu.RLock()
		clientCount := len(s.clients)
		s.mu.RUnlock()
		log.Debug().RawJSON("state", data).Int("clients", clientCount).Msg("Broadcast state")
	}
}

// BroadcastQueue sends the queue to all connected clients.
func (s *Server) BroadcastQueue() {
	st := s.session.Snapshot()

	s.lastMu.Lock()
	s.lastQueue = songIDs(st.Songs)
	s.lastMu.Unlock()

	s.io.Emit("pushQueue", st.QueueJSON())
}

// BroadcastToast sends a toast to every client.
func (s *Server) BroadcastToast(level, message string) {
	s.io.Emit("pushToast", map[string]interface{}{"type": level, "message": message})
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// ServeHTTP implements http.Handler for the Socket.io server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.io.ServeHandler(nil).ServeHTTP(w, r)
}

// Close stops pending broadcasts and closes the Socket.io server.
func (s *Server) Close() error {
	s.debouncer.Stop()
	s.io.Close(nil)
	return nil
}
