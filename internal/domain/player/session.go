package player

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
)

// DefaultListenThreshold is how long a song must play before it counts
// as a full listen.
const DefaultListenThreshold = 30 * time.Second

// Session is the app-wide playback session. All methods are safe for
// concurrent use. Commands that drive the output run one at a time under
// cmd, so the state and the loaded source never disagree. Listeners are
// called outside mu and must not issue commands.
type Session struct {
	cmd sync.Mutex

	mu        sync.Mutex
	songs     []catalog.Song
	current   *catalog.Song
	playing   bool
	shuffle   bool
	repeat    RepeatMode
	kind      string
	contextID string
	listened  bool

	out       Output
	loader    SongLoader
	recorder  ListenRecorder
	users     UserSource
	intn      func(n int) int
	now       func() time.Time
	threshold time.Duration

	listenersMu sync.RWMutex
	listeners   []func(State)
}

// Option configures a Session.
type Option func(*Session)

// WithRand replaces the shuffle index source. intn must return a value
// in [0, n).
func WithRand(intn func(n int) int) Option {
	return func(s *Session) { s.intn = intn }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithListenRecorder records a full listen for the signed-in user once
// per song after the listen threshold.
func WithListenRecorder(rec ListenRecorder, users UserSource) Option {
	return func(s *Session) {
		s.recorder = rec
		s.users = users
	}
}

// WithListenThreshold overrides DefaultListenThreshold.
func WithListenThreshold(d time.Duration) Option {
	return func(s *Session) { s.threshold = d }
}

// NewSession creates an idle session in the new-releases context.
func NewSession(out Output, loader SongLoader, opts ...Option) *Session {
	if out == nil {
		out = NopOutput{}
	}
	s := &Session{
		songs:     []catalog.Song{},
		kind:      ContextNewReleases,
		out:       out,
		loader:    loader,
		intn:      rand.IntN,
		now:       time.Now,
		threshold: DefaultListenThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers fn to receive a snapshot after every state change.
func (s *Session) OnChange(fn func(State)) {
	s.listenersMu.Lock()
	s.listeners = append(s.listeners, fn)
	s.listenersMu.Unlock()
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() State {
	st := State{
		Songs:       slices.Clone(s.songs),
		IsPlaying:   s.playing,
		IsShuffling: s.shuffle,
		RepeatMode:  s.repeat,
		Context:     s.kind,
		ContextID:   s.contextID,
	}
	if st.Songs == nil {
		st.Songs = []catalog.Song{}
	}
	if s.current != nil {
		c := *s.current
		st.CurrentSong = &c
	}
	return st
}

func (s *Session) notify() {
	st := s.Snapshot()
	s.listenersMu.RLock()
	defer s.listenersMu.RUnlock()
	for _, fn := range s.listeners {
		fn(st)
	}
}

// SetSongs replaces the queue.
func (s *Session) SetSongs(songs []catalog.Song) {
	s.mu.Lock()
	s.songs = slices.Clone(songs)
	if s.songs == nil {
		s.songs = []catalog.Song{}
	}
	s.mu.Unlock()
	s.notify()
}

// SetContext sets the context kind and loads its queue if the queue is
// empty and a context id is set.
func (s *Session) SetContext(ctx context.Context, kind string) {
	s.mu.Lock()
	s.kind = kind
	s.mu.Unlock()
	s.syncContext(ctx)
}

// SetContextID sets the context id and loads its queue if the queue is
// empty and a context kind is set.
func (s *Session) SetContextID(ctx context.Context, id string) {
	s.mu.Lock()
	s.contextID = id
	s.mu.Unlock()
	s.syncContext(ctx)
}

// SelectContext sets both kind and id before checking the queue.
func (s *Session) SelectContext(ctx context.Context, kind, id string) {
	s.mu.Lock()
	s.kind = kind
	s.contextID = id
	s.mu.Unlock()
	s.syncContext(ctx)
}

func (s *Session) syncContext(ctx context.Context) {
	s.mu.Lock()
	kind, id, empty := s.kind, s.contextID, len(s.songs) == 0
	s.mu.Unlock()

	if empty && kind != "" && id != "" {
		s.UpdateSongsForContext(ctx, kind, id)
		return
	}
	s.notify()
}

// UpdateSongsForContext loads the queue for an album, playlist or artist.
// A missing id for those kinds leaves the queue alone. Unknown kinds
// and fetch failures clear the queue.
func (s *Session) UpdateSongsForContext(ctx context.Context, kind, id string) {
	switch kind {
	case ContextAlbum, ContextPlaylist, ContextArtist:
		if id == "" {
			return
		}
	}

	songs := []catalog.Song{}
	if s.loader != nil {
		loaded, err := s.loader.ContextSongs(ctx, kind, id)
		if err != nil {
			log.Error().Err(err).Str("context", kind).Str("id", id).Msg("Failed to load songs for context")
		} else if loaded != nil {
			songs = loaded
		}
	}
	s.SetSongs(songs)
}

// PlaySong makes song current and starts it. Songs without an id are
// ignored.
func (s *Session) PlaySong(ctx context.Context, song catalog.Song) {
	if song.ID == "" {
		return
	}
	s.cmd.Lock()
	defer s.cmd.Unlock()
	s.play(ctx, song)
}

// play requires cmd.
func (s *Session) play(ctx context.Context, song catalog.Song) {
	s.mu.Lock()
	s.current = &song
	s.playing = true
	s.listened = false
	s.mu.Unlock()

	if err := s.out.Load(ctx, song.AudioURL); err != nil {
		log.Warn().Err(err).Str("song", song.ID).Msg("Unable to autoplay")
	}
	s.notify()
}

// TogglePlayPause pauses a playing song or resumes a paused one,
// restarting it first if it had reached the end.
func (s *Session) TogglePlayPause(ctx context.Context) {
	s.cmd.Lock()
	defer s.cmd.Unlock()

	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	playing := s.playing
	if playing {
		s.playing = false
	}
	s.mu.Unlock()

	if playing {
		if err := s.out.Pause(ctx); err != nil {
			log.Warn().Err(err).Msg("Pause failed")
		}
		s.notify()
		return
	}

	if ended, err := s.out.AtEnd(ctx); err == nil && ended {
		if err := s.out.Rewind(ctx); err != nil {
			log.Warn().Err(err).Msg("Rewind failed")
		}
	}
	if err := s.out.Play(ctx); err != nil {
		log.Warn().Err(err).Msg("Play failed")
		return
	}
	s.mu.Lock()
	s.playing = true
	s.mu.Unlock()
	s.notify()
}

type step int

const (
	stepNone step = iota
	stepPlay
	stepReplay
	stepStop
)

// NextSong advances the queue honoring shuffle and repeat.
func (s *Session) NextSong(ctx context.Context) {
	s.cmd.Lock()
	defer s.cmd.Unlock()
	s.next(ctx)
}

// next requires cmd.
func (s *Session) next(ctx context.Context) {
	s.mu.Lock()
	st, target := s.nextLocked()
	s.mu.Unlock()
	s.apply(ctx, st, target)
}

func (s *Session) nextLocked() (step, catalog.Song) {
	n := len(s.songs)
	if n == 0 || s.current == nil {
		return stepNone, catalog.Song{}
	}
	idx := indexOf(s.songs, s.current.ID)
	if idx == -1 {
		return stepPlay, s.songs[0]
	}

	if s.shuffle {
		next := s.intn(n)
		for n > 1 && next == idx {
			next = s.intn(n)
		}
		return stepPlay, s.songs[next]
	}

	if idx == n-1 {
		switch s.repeat {
		case RepeatAll:
			return stepPlay, s.songs[0]
		case RepeatOne:
			return stepReplay, catalog.Song{}
		default:
			return stepStop, catalog.Song{}
		}
	}
	return stepPlay, s.songs[idx+1]
}

// PrevSong steps back in the queue. Shuffle does not apply.
func (s *Session) PrevSong(ctx context.Context) {
	s.cmd.Lock()
	defer s.cmd.Unlock()

	s.mu.Lock()
	st, target := s.prevLocked()
	s.mu.Unlock()
	s.apply(ctx, st, target)
}

func (s *Session) prevLocked() (step, catalog.Song) {
	n := len(s.songs)
	if n == 0 || s.current == nil {
		return stepNone, catalog.Song{}
	}
	idx := indexOf(s.songs, s.current.ID)
	if idx == -1 {
		return stepPlay, s.songs[0]
	}

	if idx == 0 {
		switch s.repeat {
		case RepeatAll:
			return stepPlay, s.songs[n-1]
		case RepeatOne:
			return stepReplay, catalog.Song{}
		default:
			return stepStop, catalog.Song{}
		}
	}
	return stepPlay, s.songs[idx-1]
}

// apply requires cmd.
func (s *Session) apply(ctx context.Context, st step, target catalog.Song) {
	switch st {
	case stepPlay:
		s.play(ctx, target)
	case stepReplay:
		s.replay(ctx)
	case stepStop:
		s.mu.Lock()
		s.playing = false
		s.mu.Unlock()
		if err := s.out.Pause(ctx); err != nil {
			log.Warn().Err(err).Msg("Pause failed")
		}
		s.notify()
	}
}

// replay requires cmd.
func (s *Session) replay(ctx context.Context) {
	if err := s.out.Rewind(ctx); err != nil {
		log.Warn().Err(err).Msg("Rewind failed")
	}
	if err := s.out.Play(ctx); err != nil {
		log.Warn().Err(err).Msg("Replay failed")
		return
	}
	s.mu.Lock()
	s.playing = true
	s.listened = false
	s.mu.Unlock()
	s.notify()
}

// ToggleShuffle flips shuffle.
func (s *Session) ToggleShuffle() {
	s.mu.Lock()
	s.shuffle = !s.shuffle
	s.mu.Unlock()
	s.notify()
}

// ToggleRepeat cycles off, one, all. With one song or fewer it only
// toggles between off and one.
func (s *Session) ToggleRepeat() {
	s.mu.Lock()
	if len(s.songs) <= 1 {
		if s.repeat == RepeatOne {
			s.repeat = RepeatOff
		} else {
			s.repeat = RepeatOne
		}
	} else {
		s.repeat = (s.repeat + 1) % 3
	}
	s.mu.Unlock()
	s.notify()
}

// ResetPlayer stops playback and clears the current song. The queue is
// kept.
func (s *Session) ResetPlayer(ctx context.Context) {
	s.cmd.Lock()
	defer s.cmd.Unlock()

	if err := s.out.Pause(ctx); err != nil {
		log.Warn().Err(err).Msg("Pause failed")
	}
	if err := s.out.Rewind(ctx); err != nil {
		log.Warn().Err(err).Msg("Rewind failed")
	}
	s.mu.Lock()
	s.current = nil
	s.playing = false
	s.listened = false
	s.mu.Unlock()
	s.notify()
}

// HandleEnded is called by the output when the current source finishes.
func (s *Session) HandleEnded(ctx context.Context) {
	s.cmd.Lock()
	defer s.cmd.Unlock()

	s.mu.Lock()
	one := s.repeat == RepeatOne && s.current != nil
	s.mu.Unlock()

	if one {
		s.replay(ctx)
		return
	}
	s.next(ctx)
}

// ReportProgress is called periodically with the elapsed time of the
// current song. The first report past the listen threshold records a
// full listen for the signed-in user.
func (s *Session) ReportProgress(ctx context.Context, elapsed time.Duration) {
	s.mu.Lock()
	if s.current == nil || s.listened || elapsed < s.threshold || s.recorder == nil {
		s.mu.Unlock()
		return
	}
	s.listened = true
	songID := s.current.ID
	s.mu.Unlock()

	var user *catalog.User
	if s.users != nil {
		u, err := s.users.CurrentUser()
		if err != nil {
			log.Warn().Err(err).Msg("Failed to read current user")
			return
		}
		user = u
	}
	if user == nil || user.ID == "" {
		return
	}

	if err := s.recorder.RecordFullListen(ctx, user.ID, songID, s.now()); err != nil {
		log.Warn().Err(err).Str("song", songID).Msg("Failed to record listen")
		return
	}
	log.Debug().Str("song", songID).Str("user", user.ID).Msg("Full listen recorded")
}
