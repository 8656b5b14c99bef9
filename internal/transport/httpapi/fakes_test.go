package httpapi_test

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/edumarques81/vibesync-player/internal/domain/auth"
	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
	"github.com/edumarques81/vibesync-player/internal/infra/backend"
	"github.com/edumarques81/vibesync-player/internal/infra/store"
)

// fakeCatalog stands in for the backend client. It records every write
// as "<call> <args>".
type fakeCatalog struct {
	mu       sync.Mutex
	calls    []string
	songs    map[string]catalog.Song
	playlist catalog.Playlist
	err      error

	songPayload   catalog.SongPayload
	albumForm     catalog.AlbumForm
	artistForm    catalog.ArtistForm
	newPlaylist   backend.NewPlaylist
	upload        string
	application   backend.ArtistApplication
	searchedAt    time.Time
	playlistPatch backend.PlaylistUpdate
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		songs: map[string]catalog.Song{
			"s1": {ID: "s1", Title: "One", Duration: 61, Genre: []string{"Pop"}},
			"s2": {ID: "s2", Title: "Two", Duration: 200},
		},
		playlist: catalog.Playlist{ID: "p1", Title: "Mine", Creator: "u1", SongIDs: []string{"s2", "s1"}},
	}
}

func (f *fakeCatalog) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeCatalog) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// Browse

func (f *fakeCatalog) SongsOrEmpty(_ context.Context, q backend.SongQuery) []catalog.Song {
	f.record("songs " + q.Sort)
	return []catalog.Song{f.songs["s1"], f.songs["s2"]}
}

func (f *fakeCatalog) Song(_ context.Context, id string) (*catalog.Song, error) {
	s, ok := f.songs[id]
	if !ok {
		return nil, &backend.APIError{Status: 404}
	}
	return &s, nil
}

func (f *fakeCatalog) SongsByIDs(ctx context.Context, ids []string) ([]catalog.Song, error) {
	out := make([]catalog.Song, 0, len(ids))
	for _, id := range ids {
		s, err := f.Song(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeCatalog) AlbumsIncludingSong(context.Context, string) ([]catalog.Album, error) {
	return []catalog.Album{{ID: "al1", Title: "Sky"}}, nil
}

func (f *fakeCatalog) LikeCount(context.Context, string) (int, error) { return 7, f.err }

func (f *fakeCatalog) AlbumsOrEmpty(context.Context) []catalog.Album {
	return []catalog.Album{{ID: "al1", Title: "Sky"}, {ID: "al2", Title: "Sea"}}
}

func (f *fakeCatalog) Album(_ context.Context, id string) (*catalog.Album, error) {
	return &catalog.Album{ID: id, Title: "Sky"}, nil
}

func (f *fakeCatalog) AlbumSongs(context.Context, string) ([]catalog.Song, error) {
	return []catalog.Song{f.songs["s1"]}, nil
}

func (f *fakeCatalog) ArtistsOrEmpty(context.Context) []catalog.Artist {
	return []catalog.Artist{{ID: "a1", Name: "Den"}, {ID: "a2", Name: "Mono"}}
}

func (f *fakeCatalog) Artist(_ context.Context, id string) (*catalog.Artist, error) {
	return &catalog.Artist{ID: id, Name: "Den"}, nil
}

func (f *fakeCatalog) SongsByArtist(context.Context, string) ([]catalog.Song, error) {
	return []catalog.Song{f.songs["s2"]}, nil
}

func (f *fakeCatalog) AlbumsByArtist(context.Context, string) ([]catalog.Album, error) {
	return []catalog.Album{}, nil
}

func (f *fakeCatalog) SimilarArtists(_ context.Context, q string) ([]catalog.Artist, error) {
	f.record("similar " + q)
	return []catalog.Artist{{ID: "a1", Name: "Den"}}, nil
}

// Editor

func (f *fakeCatalog) ManagedSong(_ context.Context, scope backend.Scope, id string) (*catalog.Song, error) {
	f.record("get song " + string(scope) + " " + id)
	return f.Song(context.Background(), id)
}

func (f *fakeCatalog) SaveSong(_ context.Context, scope backend.Scope, id string, p catalog.SongPayload) (string, error) {
	f.record("save song " + string(scope) + " " + id)
	f.songPayload = p
	if id == "" {
		id = "new-song"
	}
	return id, f.err
}

func (f *fakeCatalog) DeleteSong(_ context.Context, scope backend.Scope, id string) error {
	f.record("delete song " + string(scope) + " " + id)
	return f.err
}

func (f *fakeCatalog) SaveAlbum(_ context.Context, scope backend.Scope, id string, form catalog.AlbumForm) (string, error) {
	f.record("save album " + string(scope) + " " + id)
	f.albumForm = form
	if id == "" {
		id = "new-album"
	}
	return id, f.err
}

func (f *fakeCatalog) DeleteAlbum(_ context.Context, scope backend.Scope, id string) error {
	f.record("delete album " + string(scope) + " " + id)
	return f.err
}

func (f *fakeCatalog) ManagedArtist(_ context.Context, id string) (*catalog.Artist, error) {
	return &catalog.Artist{ID: id, Name: "Den"}, f.err
}

func (f *fakeCatalog) SaveArtist(_ context.Context, id string, form catalog.ArtistForm) (string, error) {
	f.record("save artist " + id)
	f.artistForm = form
	if id == "" {
		id = "new-artist"
	}
	return id, f.err
}

func (f *fakeCatalog) UpdateArtistImage(_ context.Context, id, image string) error {
	f.record("artist image " + id + " " + image)
	return f.err
}

func (f *fakeCatalog) DeleteArtist(_ context.Context, id string) error {
	f.record("delete artist " + id)
	return f.err
}

func (f *fakeCatalog) UploadMedia(_ context.Context, scope backend.Scope, field backend.MediaField, name string, r io.Reader) (*backend.UploadResult, error) {
	data, _ := io.ReadAll(r)
	f.record("upload " + string(scope) + " " + string(field) + " " + name)
	f.upload = string(data)
	return &backend.UploadResult{CoverArt: "https://cdn/" + name, AudioURL: "https://cdn/audio/" + name}, f.err
}

// Playlists

func (f *fakeCatalog) Playlists(_ context.Context, creator string) ([]catalog.Playlist, error) {
	f.record("playlists " + creator)
	return []catalog.Playlist{f.playlist, {ID: "p2", Title: "Road trip", Creator: creator}}, f.err
}

func (f *fakeCatalog) PublicPlaylists(context.Context) ([]catalog.Playlist, error) {
	return []catalog.Playlist{}, f.err
}

func (f *fakeCatalog) Playlist(_ context.Context, id string) (*catalog.Playlist, error) {
	if id != f.playlist.ID {
		return nil, &backend.APIError{Status: 404}
	}
	p := f.playlist
	return &p, nil
}

func (f *fakeCatalog) CreatePlaylist(_ context.Context, p backend.NewPlaylist) (string, error) {
	f.record("create playlist " + p.Creator)
	f.newPlaylist = p
	return "p9", f.err
}

func (f *fakeCatalog) UpdatePlaylist(_ context.Context, id string, u backend.PlaylistUpdate) (*catalog.Playlist, error) {
	f.record("update playlist " + id)
	f.playlistPatch = u
	p := f.playlist
	if u.Title != nil {
		p.Title = *u.Title
	}
	return &p, f.err
}

func (f *fakeCatalog) AddSongToPlaylist(_ context.Context, playlistID, songID string) error {
	f.record("add " + playlistID + " " + songID)
	return f.err
}

func (f *fakeCatalog) RemoveSongFromPlaylist(_ context.Context, playlistID, songID string) error {
	f.record("remove " + playlistID + " " + songID)
	return f.err
}

func (f *fakeCatalog) DeletePlaylist(_ context.Context, id string) error {
	f.record("delete playlist " + id)
	return f.err
}

// Account

func (f *fakeCatalog) ToggleLike(_ context.Context, songID string) (bool, error) {
	f.record("like " + songID)
	return true, f.err
}

func (f *fakeCatalog) LikedSongs(context.Context) ([]catalog.Song, error) {
	return []catalog.Song{f.songs["s1"]}, f.err
}

func (f *fakeCatalog) FollowArtist(_ context.Context, id string) error {
	f.record("follow " + id)
	return f.err
}

func (f *fakeCatalog) UnfollowArtist(_ context.Context, id string) error {
	f.record("unfollow " + id)
	return f.err
}

func (f *fakeCatalog) FollowingArtists(context.Context) ([]catalog.Artist, error) {
	return []catalog.Artist{{ID: "a1", Name: "Den"}}, f.err
}

func (f *fakeCatalog) RecordSearch(_ context.Context, userID, songID string, at time.Time) error {
	f.record("search pick " + userID + " " + songID)
	f.searchedAt = at
	return f.err
}

func (f *fakeCatalog) SubmitArtistRequest(_ context.Context, a backend.ArtistApplication) (*catalog.ArtistRequest, error) {
	f.record("apply " + a.Name)
	f.application = a
	return &catalog.ArtistRequest{ID: "r9", Name: a.Name, Status: catalog.RequestPending}, f.err
}

type fakeAuth struct {
	user     *catalog.User
	err      error
	signOuts int
	signUps  []string
}

func (f *fakeAuth) SignIn(_ context.Context, email, password string) (*catalog.User, error) {
	if email == "" || password == "" {
		return nil, auth.ErrMissingCredentials
	}
	return f.user, f.err
}

func (f *fakeAuth) SignUp(_ context.Context, name, email, _ string) error {
	f.signUps = append(f.signUps, name+"/"+email)
	return f.err
}

func (f *fakeAuth) Refresh(context.Context) (*catalog.User, error) {
	if f.user == nil {
		return nil, auth.ErrSignedOut
	}
	return f.user, f.err
}

func (f *fakeAuth) SignOut(context.Context) error {
	f.signOuts++
	return f.err
}

type fakePrefs struct {
	settings store.Settings
	saved    bool
	draft    *catalog.SongForm
}

func newFakePrefs() *fakePrefs {
	return &fakePrefs{settings: store.DefaultSettings()}
}

func (f *fakePrefs) Settings() (store.Settings, error) { return f.settings, nil }

func (f *fakePrefs) SaveSettings(s store.Settings) error {
	f.settings = s
	f.saved = true
	return nil
}

func (f *fakePrefs) SongFormDraft() (*catalog.SongForm, error) { return f.draft, nil }

func (f *fakePrefs) SaveSongFormDraft(form catalog.SongForm) error {
	f.draft = &form
	return nil
}

func (f *fakePrefs) ClearSongFormDraft() error {
	f.draft = nil
	return nil
}
