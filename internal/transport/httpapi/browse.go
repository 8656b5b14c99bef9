package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
	"github.com/edumarques81/vibesync-player/internal/infra/backend"
)

// songs lists public songs. region, sort, limit and artistId go to the
// backend; q filters the result.
func (s *Server) songs(w http.ResponseWriter, r *http.Request) {
	if s.deps.Browse == nil {
		writeError(w, r, errUnavailable)
		return
	}
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	songs := s.deps.Browse.SongsOrEmpty(r.Context(), backend.SongQuery{
		Region:   q.Get("region"),
		Sort:     q.Get("sort"),
		Limit:    limit,
		ArtistID: q.Get("artistId"),
	})
	writeJSON(w, http.StatusOK, catalog.FilterSongs(songs, q.Get("q")))
}

type songDetail struct {
	Song      catalog.Song    `json:"song"`
	Length    string          `json:"length"`
	Albums    []catalog.Album `json:"albums"`
	LikeCount int             `json:"likeCount"`
}

func (s *Server) songDetail(w http.ResponseWriter, r *http.Request) {
	if s.deps.Browse == nil {
		writeError(w, r, errUnavailable)
		return
	}
	id := chi.URLParam(r, "id")
	var out songDetail

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		song, err := s.deps.Browse.Song(ctx, id)
		if err != nil {
			return err
		}
		out.Song = *song
		return nil
	})
	g.Go(func() error {
		albums, err := s.deps.Browse.AlbumsIncludingSong(ctx, id)
		out.Albums = albums
		return err
	})
	g.Go(func() error {
		n, err := s.deps.Browse.LikeCount(ctx, id)
		out.LikeCount = n
		return err
	})
	if err := g.Wait(); err != nil {
		writeError(w, r, err)
		return
	}
	out.Length = catalog.FormatDuration(out.Song.Duration)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) albums(w http.ResponseWriter, r *http.Request) {
	if s.deps.Browse == nil {
		writeError(w, r, errUnavailable)
		return
	}
	albums := s.deps.Browse.AlbumsOrEmpty(r.Context())
	writeJSON(w, http.StatusOK, catalog.FilterAlbums(albums, r.URL.Query().Get("q")))
}

type albumDetail struct {
	Album catalog.Album  `json:"album"`
	Songs []catalog.Song `json:"songs"`
}

func (s *Server) albumDetail(w http.ResponseWriter, r *http.Request) {
	if s.deps.Browse == nil {
		writeError(w, r, errUnavailable)
		return
	}
	id := chi.URLParam(r, "id")
	var out albumDetail

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		album, err := s.deps.Browse.Album(ctx, id)
		if err != nil {
			return err
		}
		out.Album = *album
		return nil
	})
	g.Go(func() error {
		songs, err := s.deps.Browse.AlbumSongs(ctx, id)
		out.Songs = songs
		return err
	})
	if err := g.Wait(); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) artists(w http.ResponseWriter, r *http.Request) {
	if s.deps.Browse == nil {
		writeError(w, r, errUnavailable)
		return
	}
	artists := s.deps.Browse.ArtistsOrEmpty(r.Context())
	writeJSON(w, http.StatusOK, catalog.FilterArtists(artists, r.URL.Query().Get("q")))
}

func (s *Server) similarArtists(w http.ResponseWriter, r *http.Request) {
	if s.deps.Browse == nil {
		writeError(w, r, errUnavailable)
		return
	}
	artists, err := s.deps.Browse.SimilarArtists(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, artists)
}

type artistDetail struct {
	Artist catalog.Artist  `json:"artist"`
	Songs  []catalog.Song  `json:"songs"`
	Albums []catalog.Album `json:"albums"`
}

func (s *Server) artistDetail(w http.ResponseWriter, r *http.Request) {
	if s.deps.Browse == nil {
		writeError(w, r, errUnavailable)
		return
	}
	id := chi.URLParam(r, "id")
	var out artistDetail

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		artist, err := s.deps.Browse.Artist(ctx, id)
		if err != nil {
			return err
		}
		out.Artist = *artist
		return nil
	})
	g.Go(func() error {
		songs, err := s.deps.Browse.SongsByArtist(ctx, id)
		out.Songs = songs
		return err
	})
	g.Go(func() error {
		albums, err := s.deps.Browse.AlbumsByArtist(ctx, id)
		out.Albums = albums
		return err
	})
	if err := g.Wait(); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
