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

func TestBrowseLists(t *testing.T) {
	c := newFakeCatalog()
	s := httpapi.NewServer(httpapi.Deps{Browse: c})

	tests := []struct {
		path string
		want []string
	}{
		{"/api/v1/songs?sort=newest&q=pop", []string{"s1"}},
		{"/api/v1/albums?q=sea", []string{"al2"}},
		{"/api/v1/artists?q=MONO", []string{"a2"}},
		{"/api/v1/artists/similar?q=jazz", []string{"a1"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, tt.path, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body)
			}
			var got []struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatal(err)
			}
			ids := make([]string, 0, len(got))
			for _, g := range got {
				ids = append(ids, g.ID)
			}
			if !slices.Equal(ids, tt.want) {
				t.Errorf("ids = %v, want %v", ids, tt.want)
			}
		})
	}

	want := []string{"songs newest", "similar jazz"}
	if got := c.Calls(); !slices.Equal(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestSongDetail(t *testing.T) {
	s := httpapi.NewServer(httpapi.Deps{Browse: newFakeCatalog()})

	rec := do(t, s, http.MethodGet, "/api/v1/songs/s1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var got struct {
		Song      catalog.Song    `json:"song"`
		Length    string          `json:"length"`
		Albums    []catalog.Album `json:"albums"`
		LikeCount int             `json:"likeCount"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Song.ID != "s1" || got.Length != "1:01" || got.LikeCount != 7 || len(got.Albums) != 1 {
		t.Errorf("detail = %+v", got)
	}

	if rec := do(t, s, http.MethodGet, "/api/v1/songs/missing", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing song status = %d, want 404", rec.Code)
	}
}

func TestAlbumAndArtistDetail(t *testing.T) {
	s := httpapi.NewServer(httpapi.Deps{Browse: newFakeCatalog()})

	rec := do(t, s, http.MethodGet, "/api/v1/albums/al1", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"songs":[{"id":"s1"`) {
		t.Errorf("album = %d %s", rec.Code, rec.Body)
	}

	rec = do(t, s, http.MethodGet, "/api/v1/artists/a1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("artist status = %d: %s", rec.Code, rec.Body)
	}
	var got struct {
		Artist catalog.Artist  `json:"artist"`
		Songs  []catalog.Song  `json:"songs"`
		Albums []catalog.Album `json:"albums"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Artist.ID != "a1" || len(got.Songs) != 1 || got.Albums == nil {
		t.Errorf("artist detail = %+v", got)
	}
}

func TestBrowseUnavailable(t *testing.T) {
	s := httpapi.NewServer(httpapi.Deps{})
	for _, path := range []string{"/api/v1/songs", "/api/v1/songs/s1", "/api/v1/albums/al1", "/api/v1/artists/a1"} {
		if rec := do(t, s, http.MethodGet, path, ""); rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s status = %d, want 503", path, rec.Code)
		}
	}
}
