package httpapi_test

import (
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"testing"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
	"github.com/edumarques81/vibesync-player/internal/transport/httpapi"
)

func playlistServer(c *fakeCatalog, user *catalog.User) *httpapi.Server {
	return httpapi.NewServer(httpapi.Deps{
		Browse:    c,
		Playlists: c,
		Users:     fakeUsers{user: user},
	})
}

func TestMyPlaylists(t *testing.T) {
	c := newFakeCatalog()
	s := playlistServer(c, plainUser)

	rec := do(t, s, http.MethodGet, "/api/v1/playlists?q=road", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var got []catalog.Playlist
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "p2" {
		t.Errorf("playlists = %+v, want only p2", got)
	}
	if calls := c.Calls(); !slices.Equal(calls, []string{"playlists u1"}) {
		t.Errorf("calls = %v", calls)
	}

	if rec := do(t, playlistServer(c, nil), http.MethodGet, "/api/v1/playlists", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("signed out status = %d, want 401", rec.Code)
	}
}

func TestPlaylistDetailKeepsOrder(t *testing.T) {
	s := playlistServer(newFakeCatalog(), nil)

	rec := do(t, s, http.MethodGet, "/api/v1/playlists/p1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var got struct {
		Playlist catalog.Playlist `json:"playlist"`
		Songs    []catalog.Song   `json:"songs"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Songs) != 2 || got.Songs[0].ID != "s2" || got.Songs[1].ID != "s1" {
		t.Errorf("songs = %+v, want s2 then s1", got.Songs)
	}

	if rec := do(t, s, http.MethodGet, "/api/v1/playlists/zzz", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown playlist status = %d, want 404", rec.Code)
	}
}

func TestCreatePlaylist(t *testing.T) {
	c := newFakeCatalog()
	s := playlistServer(c, plainUser)

	rec := do(t, s, http.MethodPost, "/api/v1/playlists", `{"title":" Focus ","isPublic":true,"songIds":["s1"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), `"id":"p9"`) {
		t.Errorf("body = %s", rec.Body)
	}
	p := c.newPlaylist
	if p.Title != "Focus" || p.Creator != "u1" || !p.IsPublic || !slices.Equal(p.SongIDs, []string{"s1"}) {
		t.Errorf("new playlist = %+v", p)
	}

	if rec := do(t, s, http.MethodPost, "/api/v1/playlists", `{"title":"  "}`); rec.Code != http.StatusBadRequest {
		t.Errorf("blank title status = %d, want 400", rec.Code)
	}
}

func TestPlaylistOwnership(t *testing.T) {
	stranger := &catalog.User{ID: "u2", Name: "Kim", Role: catalog.RoleUser}
	tests := []struct {
		name   string
		user   *catalog.User
		method string
		path   string
		body   string
		want   int
	}{
		{"owner renames", plainUser, http.MethodPatch, "/api/v1/playlists/p1", `{"title":"New"}`, http.StatusOK},
		{"owner blank title", plainUser, http.MethodPatch, "/api/v1/playlists/p1", `{"title":""}`, http.StatusBadRequest},
		{"owner adds song", plainUser, http.MethodPost, "/api/v1/playlists/p1/songs", `{"songId":"s3"}`, http.StatusNoContent},
		{"owner adds nothing", plainUser, http.MethodPost, "/api/v1/playlists/p1/songs", `{}`, http.StatusBadRequest},
		{"owner removes song", plainUser, http.MethodDelete, "/api/v1/playlists/p1/songs/s2", "", http.StatusNoContent},
		{"owner deletes", plainUser, http.MethodDelete, "/api/v1/playlists/p1", "", http.StatusNoContent},
		{"stranger renames", stranger, http.MethodPatch, "/api/v1/playlists/p1", `{"title":"Mine now"}`, http.StatusForbidden},
		{"stranger adds song", stranger, http.MethodPost, "/api/v1/playlists/p1/songs", `{"songId":"s3"}`, http.StatusForbidden},
		{"stranger deletes", stranger, http.MethodDelete, "/api/v1/playlists/p1", "", http.StatusForbidden},
		{"admin deletes", adminUser, http.MethodDelete, "/api/v1/playlists/p1", "", http.StatusNoContent},
		{"signed out", nil, http.MethodDelete, "/api/v1/playlists/p1", "", http.StatusUnauthorized},
		{"unknown playlist", plainUser, http.MethodDelete, "/api/v1/playlists/zzz", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newFakeCatalog()
			s := playlistServer(c, tt.user)
			rec := do(t, s, tt.method, tt.path, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body)
			}
			if tt.want >= http.StatusBadRequest && len(c.Calls()) != 0 {
				t.Errorf("backend changed on a refused request: %v", c.Calls())
			}
		})
	}
}

func TestPlaylistSongCalls(t *testing.T) {
	c := newFakeCatalog()
	s := playlistServer(c, plainUser)

	do(t, s, http.MethodPost, "/api/v1/playlists/p1/songs", `{"songId":"s3"}`)
	do(t, s, http.MethodDelete, "/api/v1/playlists/p1/songs/s2", "")

	want := []string{"add p1 s3", "remove p1 s2"}
	if got := c.Calls(); !slices.Equal(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}
