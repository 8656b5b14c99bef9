package player_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
	"github.com/edumarques81/vibesync-player/internal/domain/player"
)

type fakeOutput struct {
	mu      sync.Mutex
	calls   []string
	loaded  string
	atEnd   bool
	playErr error
}

func (f *fakeOutput) record(c string) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
}

func (f *fakeOutput) Load(_ context.Context, url string) error {
	f.record("load")
	f.mu.Lock()
	f.loaded = url
	f.mu.Unlock()
	return nil
}

func (f *fakeOutput) Play(context.Context) error {
	f.record("play")
	return f.playErr
}

func (f *fakeOutput) Pause(context.Context) error {
	f.record("pause")
	return nil
}

func (f *fakeOutput) Rewind(context.Context) error {
	f.record("rewind")
	return nil
}

func (f *fakeOutput) AtEnd(context.Context) (bool, error) {
	return f.atEnd, nil
}

func (f *fakeOutput) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeLoader struct {
	songs []catalog.Song
	err   error
	calls []string
}

func (f *fakeLoader) ContextSongs(_ context.Context, kind, id string) ([]catalog.Song, error) {
	f.calls = append(f.calls, kind+"/"+id)
	return f.songs, f.err
}

type fakeRecorder struct {
	listens []string
}

func (f *fakeRecorder) RecordFullListen(_ context.Context, userID, songID string, _ time.Time) error {
	f.listens = append(f.listens, userID+":"+songID)
	return nil
}

type fakeUsers struct{ user *catalog.User }

func (f fakeUsers) CurrentUser() (*catalog.User, error) { return f.user, nil }

func songs(ids ...string) []catalog.Song {
	out := make([]catalog.Song, len(ids))
	for i, id := range ids {
		out[i] = catalog.Song{ID: id, Title: "Song " + id, AudioURL: "http://media/" + id + ".mp3"}
	}
	return out
}

// sequence returns a rand source that yields vals in order.
func sequence(vals ...int) func(int) int {
	i := 0
	return func(int) int {
		v := vals[i%len(vals)]
		i++
		return v
	}
}

func newSession(t *testing.T, opts ...player.Option) (*player.Session, *fakeOutput) {
	t.Helper()
	out := &fakeOutput{}
	return player.NewSession(out, &fakeLoader{}, opts...), out
}

func currentID(s *player.Session) string {
	if c := s.Snapshot().CurrentSong; c != nil {
		return c.ID
	}
	return ""
}

func TestNewSessionDefaults(t *testing.T) {
	s, _ := newSession(t)
	st := s.Snapshot()
	if st.Context != player.ContextNewReleases {
		t.Errorf("expected default context %q, got %q", player.ContextNewReleases, st.Context)
	}
	if st.Songs == nil || len(st.Songs) != 0 {
		t.Errorf("expected empty non-nil queue, got %v", st.Songs)
	}
	if st.IsPlaying || st.IsShuffling || st.RepeatMode != player.RepeatOff {
		t.Errorf("unexpected defaults %+v", st)
	}
}

func TestPlaySong(t *testing.T) {
	ctx := context.Background()
	s, out := newSession(t)

	s.PlaySong(ctx, catalog.Song{ID: "a", AudioURL: "http://media/a.mp3"})

	st := s.Snapshot()
	if !st.IsPlaying || currentID(s) != "a" {
		t.Errorf("expected a playing, got %+v", st)
	}
	if out.loaded != "http://media/a.mp3" {
		t.Errorf("expected source loaded, got %q", out.loaded)
	}
}

func TestPlaySongWithoutIDIsNoop(t *testing.T) {
	ctx := context.Background()
	s, out := newSession(t)

	s.PlaySong(ctx, catalog.Song{Title: "no id"})

	if s.Snapshot().CurrentSong != nil || s.Snapshot().IsPlaying {
		t.Error("song without id should not change state")
	}
	if len(out.Calls()) != 0 {
		t.Errorf("output should not be touched, got %v", out.Calls())
	}
}

func TestTogglePlayPause(t *testing.T) {
	ctx := context.Background()
	s, out := newSession(t)

	s.TogglePlayPause(ctx)
	if len(out.Calls()) != 0 {
		t.Fatal("toggle without a song should be a no-op")
	}

	s.PlaySong(ctx, songs("a")[0])
	s.TogglePlayPause(ctx)
	if s.Snapshot().IsPlaying {
		t.Error("expected paused after toggle")
	}

	out.atEnd = true
	s.TogglePlayPause(ctx)
	if !s.Snapshot().IsPlaying {
		t.Error("expected playing after second toggle")
	}
	want := []string{"load", "pause", "rewind", "play"}
	got := out.Calls()
	if len(got) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestToggleResumeFailureStaysPaused(t *testing.T) {
	ctx := context.Background()
	s, out := newSession(t)
	s.PlaySong(ctx, songs("a")[0])
	s.TogglePlayPause(ctx)

	out.playErr = errors.New("blocked")
	s.TogglePlayPause(ctx)
	if s.Snapshot().IsPlaying {
		t.Error("failed resume should leave the session paused")
	}
}

func TestNextSong(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		repeat      int
		start       string
		wantCurrent string
		wantPlaying bool
	}{
		{"middle advances", 0, "b", "c", true},
		{"last stops without repeat", 0, "c", "c", false},
		{"last wraps with repeat all", 2, "c", "a", true},
		{"last replays with repeat one", 1, "c", "c", true},
		{"unknown current starts at first", 0, "zz", "a", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newSession(t)
			s.SetSongs(songs("a", "b", "c"))
			for i := 0; i < tt.repeat; i++ {
				s.ToggleRepeat()
			}
			s.PlaySong(ctx, catalog.Song{ID: tt.start})

			s.NextSong(ctx)

			st := s.Snapshot()
			if currentID(s) != tt.wantCurrent {
				t.Errorf("expected current %q, got %q", tt.wantCurrent, currentID(s))
			}
			if st.IsPlaying != tt.wantPlaying {
				t.Errorf("expected playing=%v, got %v", tt.wantPlaying, st.IsPlaying)
			}
		})
	}
}

func TestNextSongNoops(t *testing.T) {
	ctx := context.Background()
	s, out := newSession(t)

	s.NextSong(ctx)
	s.SetSongs(songs("a"))
	s.NextSong(ctx)
	s.PrevSong(ctx)

	if s.Snapshot().CurrentSong != nil || len(out.Calls()) != 0 {
		t.Error("next/prev without a current song should be a no-op")
	}
}

func TestNextSongShuffleNeverRepeatsCurrent(t *testing.T) {
	ctx := context.Background()
	// The first two draws hit the current index and must be redrawn.
	s, _ := newSession(t, player.WithRand(sequence(1, 1, 3)))
	s.SetSongs(songs("a", "b", "c", "d"))
	s.ToggleShuffle()
	s.PlaySong(ctx, catalog.Song{ID: "b"})

	s.NextSong(ctx)

	if currentID(s) != "d" {
		t.Errorf("expected shuffle to land on d, got %q", currentID(s))
	}
}

func TestNextSongShuffleSingleSong(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t, player.WithRand(sequence(0)))
	s.SetSongs(songs("a"))
	s.ToggleShuffle()
	s.PlaySong(ctx, songs("a")[0])

	s.NextSong(ctx)

	if currentID(s) != "a" || !s.Snapshot().IsPlaying {
		t.Error("shuffle on a single song should replay it")
	}
}

func TestPrevSong(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		repeat      int
		start       string
		wantCurrent string
		wantPlaying bool
	}{
		{"middle steps back", 0, "b", "a", true},
		{"first stops without repeat", 0, "a", "a", false},
		{"first wraps to last with repeat all", 2, "a", "c", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newSession(t, player.WithRand(sequence(0)))
			s.SetSongs(songs("a", "b", "c"))
			s.ToggleShuffle()
			for i := 0; i < tt.repeat; i++ {
				s.ToggleRepeat()
			}
			s.PlaySong(ctx, catalog.Song{ID: tt.start})

			s.PrevSong(ctx)

			if currentID(s) != tt.wantCurrent {
				t.Errorf("expected current %q, got %q", tt.wantCurrent, currentID(s))
			}
			if s.Snapshot().IsPlaying != tt.wantPlaying {
				t.Errorf("expected playing=%v", tt.wantPlaying)
			}
		})
	}
}

// gatedOutput holds Load of one url until release is closed.
type gatedOutput struct {
	fakeOutput
	hold    string
	entered chan struct{}
	release chan struct{}
	loads   []string
}

func newGatedOutput(hold string) *gatedOutput {
	return &gatedOutput{hold: hold, entered: make(chan struct{}), release: make(chan struct{})}
}

func (g *gatedOutput) Load(ctx context.Context, url string) error {
	if url == g.hold {
		close(g.entered)
		<-g.release
	}
	g.mu.Lock()
	g.loads = append(g.loads, url)
	g.mu.Unlock()
	return g.fakeOutput.Load(ctx, url)
}

func (g *gatedOutput) Loads() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.loads...)
}

func TestPlaySongConcurrentStateMatchesOutput(t *testing.T) {
	ctx := context.Background()
	q := songs("a", "b")
	out := newGatedOutput(q[0].AudioURL)
	s := player.NewSession(out, &fakeLoader{})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.PlaySong(ctx, q[0])
	}()
	<-out.entered
	go func() {
		defer wg.Done()
		s.PlaySong(ctx, q[1])
	}()
	time.Sleep(20 * time.Millisecond)
	close(out.release)
	wg.Wait()

	loads := out.Loads()
	if len(loads) != 2 || loads[1] != q[1].AudioURL {
		t.Fatalf("expected a then b loaded, got %v", loads)
	}
	if currentID(s) != "b" {
		t.Errorf("state shows %q while output plays %q", currentID(s), loads[len(loads)-1])
	}
}

func TestNextSongConcurrentAdvancesTwice(t *testing.T) {
	ctx := context.Background()
	q := songs("a", "b", "c")
	out := newGatedOutput(q[1].AudioURL)
	s := player.NewSession(out, &fakeLoader{})
	s.SetSongs(q)

	s.PlaySong(ctx, q[0])

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.NextSong(ctx)
	}()
	<-out.entered
	go func() {
		defer wg.Done()
		s.NextSong(ctx)
	}()
	time.Sleep(20 * time.Millisecond)
	close(out.release)
	wg.Wait()

	want := []string{q[0].AudioURL, q[1].AudioURL, q[2].AudioURL}
	if got := out.Loads(); !slices.Equal(got, want) {
		t.Errorf("expected loads %v, got %v", want, got)
	}
	if currentID(s) != "c" {
		t.Errorf("expected c current, got %q", currentID(s))
	}
}

func TestToggleRepeat(t *testing.T) {
	s, _ := newSession(t)

	s.SetSongs(songs("a", "b"))
	want := []player.RepeatMode{player.RepeatOne, player.RepeatAll, player.RepeatOff}
	for i, w := range want {
		s.ToggleRepeat()
		if got := s.Snapshot().RepeatMode; got != w {
			t.Errorf("step %d: expected %v, got %v", i, w, got)
		}
	}

	s.SetSongs(songs("a"))
	s.ToggleRepeat()
	s.ToggleRepeat()
	if got := s.Snapshot().RepeatMode; got != player.RepeatOff {
		t.Errorf("single song should toggle between off and one, got %v", got)
	}
}

func TestResetPlayer(t *testing.T) {
	ctx := context.Background()
	s, out := newSession(t)
	s.SetSongs(songs("a", "b"))
	s.PlaySong(ctx, songs("a")[0])

	s.ResetPlayer(ctx)

	st := s.Snapshot()
	if st.CurrentSong != nil || st.IsPlaying {
		t.Errorf("expected cleared session, got %+v", st)
	}
	if len(st.Songs) != 2 {
		t.Error("reset should keep the queue")
	}
	calls := out.Calls()
	if calls[len(calls)-2] != "pause" || calls[len(calls)-1] != "rewind" {
		t.Errorf("expected pause then rewind, got %v", calls)
	}
}

func TestHandleEnded(t *testing.T) {
	ctx := context.Background()

	t.Run("repeat one replays", func(t *testing.T) {
		s, out := newSession(t)
		s.SetSongs(songs("a", "b"))
		s.ToggleRepeat()
		s.PlaySong(ctx, songs("a")[0])

		s.HandleEnded(ctx)

		if currentID(s) != "a" {
			t.Errorf("expected a to replay, got %q", currentID(s))
		}
		calls := out.Calls()
		if calls[len(calls)-1] != "play" || calls[len(calls)-2] != "rewind" {
			t.Errorf("expected rewind+play, got %v", calls)
		}
	})

	t.Run("otherwise advances", func(t *testing.T) {
		s, _ := newSession(t)
		s.SetSongs(songs("a", "b"))
		s.PlaySong(ctx, songs("a")[0])

		s.HandleEnded(ctx)

		if currentID(s) != "b" {
			t.Errorf("expected b, got %q", currentID(s))
		}
	})
}

func TestSetContextLoadsEmptyQueue(t *testing.T) {
	ctx := context.Background()
	loader := &fakeLoader{songs: songs("x", "y")}
	s := player.NewSession(&fakeOutput{}, loader)

	s.SetContext(ctx, player.ContextAlbum)
	if len(loader.calls) != 0 {
		t.Fatal("should not load without an id")
	}
	s.SetContextID(ctx, "al1")

	if len(loader.calls) != 1 || loader.calls[0] != "album/al1" {
		t.Fatalf("unexpected loader calls %v", loader.calls)
	}
	if len(s.Snapshot().Songs) != 2 {
		t.Errorf("expected loaded queue, got %v", s.Snapshot().Songs)
	}

	s.SelectContext(ctx, player.ContextPlaylist, "p1")
	if len(loader.calls) != 1 {
		t.Error("non-empty queue should not be reloaded")
	}
}

func TestUpdateSongsForContext(t *testing.T) {
	ctx := context.Background()

	t.Run("missing id is a no-op", func(t *testing.T) {
		loader := &fakeLoader{}
		s := player.NewSession(&fakeOutput{}, loader)
		s.SetSongs(songs("a"))
		s.UpdateSongsForContext(ctx, player.ContextArtist, "")
		if len(loader.calls) != 0 || len(s.Snapshot().Songs) != 1 {
			t.Error("missing id should leave the queue alone")
		}
	})

	t.Run("error clears queue", func(t *testing.T) {
		loader := &fakeLoader{err: errors.New("boom")}
		s := player.NewSession(&fakeOutput{}, loader)
		s.SetSongs(songs("a"))
		s.UpdateSongsForContext(ctx, player.ContextPlaylist, "p1")
		if len(s.Snapshot().Songs) != 0 {
			t.Error("failed load should clear the queue")
		}
	})
}

func TestOnChange(t *testing.T) {
	s, _ := newSession(t)
	var got []player.State
	s.OnChange(func(st player.State) { got = append(got, st) })

	s.ToggleShuffle()

	if len(got) != 1 || !got[0].IsShuffling {
		t.Errorf("expected one shuffled snapshot, got %v", got)
	}
}

func TestReportProgressRecordsOnce(t *testing.T) {
	ctx := context.Background()
	rec := &fakeRecorder{}
	s, _ := newSession(t,
		player.WithListenRecorder(rec, fakeUsers{user: &catalog.User{ID: "u1"}}),
		player.WithListenThreshold(30*time.Second),
	)
	s.PlaySong(ctx, songs("a")[0])

	s.ReportProgress(ctx, 10*time.Second)
	s.ReportProgress(ctx, 31*time.Second)
	s.ReportProgress(ctx, 45*time.Second)

	if len(rec.listens) != 1 || rec.listens[0] != "u1:a" {
		t.Errorf("expected exactly one listen, got %v", rec.listens)
	}

	s.PlaySong(ctx, songs("b")[0])
	s.ReportProgress(ctx, 40*time.Second)
	if len(rec.listens) != 2 {
		t.Errorf("new song should be recordable, got %v", rec.listens)
	}
}

func TestReportProgressSignedOut(t *testing.T) {
	ctx := context.Background()
	rec := &fakeRecorder{}
	s, _ := newSession(t, player.WithListenRecorder(rec, fakeUsers{}))
	s.PlaySong(ctx, songs("a")[0])

	s.ReportProgress(ctx, time.Minute)

	if len(rec.listens) != 0 {
		t.Errorf("signed-out listens should not be recorded, got %v", rec.listens)
	}
}
