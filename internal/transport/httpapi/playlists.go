package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
	"github.com/edumarques81/vibesync-player/internal/infra/backend"
)

// myPlaylists lists the signed-in user's playlists, filtered by ?q=.
func (s *Server) myPlaylists(w http.ResponseWriter, r *http.Request) {
	if s.deps.Playlists == nil {
		writeError(w, r, errUnavailable)
		return
	}
	user, err := s.currentUser()
	if err != nil {
		writeError(w, r, err)
		return
	}
	lists, err := s.deps.Playlists.Playlists(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog.FilterPlaylists(lists, r.URL.Query().Get("q")))
}

func (s *Server) publicPlaylists(w http.ResponseWriter, r *http.Request) {
	if s.deps.Playlists == nil {
		writeError(w, r, errUnavailable)
		return
	}
	lists, err := s.deps.Playlists.PublicPlaylists(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

type playlistDetail struct {
	Playlist catalog.Playlist `json:"playlist"`
	Songs    []catalog.Song   `json:"songs"`
}

// playlist returns the playlist with its songs in playlist order.
func (s *Server) playlist(w http.ResponseWriter, r *http.Request) {
	if s.deps.Playlists == nil || s.deps.Browse == nil {
		writeError(w, r, errUnavailable)
		return
	}
	p, err := s.deps.Playlists.Playlist(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	songs, err := s.deps.Browse.SongsByIDs(r.Context(), p.SongIDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playlistDetail{Playlist: *p, Songs: songs})
}

type newPlaylistBody struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	IsPublic    bool     `json:"isPublic"`
	SongIDs     []string `json:"songIds"`
}

func (s *Server) createPlaylist(w http.ResponseWriter, r *http.Request) {
	if s.deps.Playlists == nil {
		writeError(w, r, errUnavailable)
		return
	}
	user, err := s.currentUser()
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body newPlaylistBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	title := strings.TrimSpace(body.Title)
	if title == "" {
		writeError(w, r, catalog.FieldErrors{"title": "title is required"})
		return
	}

	id, err := s.deps.Playlists.CreatePlaylist(r.Context(), backend.NewPlaylist{
		Title:       title,
		Description: strings.TrimSpace(body.Description),
		IsPublic:    body.IsPublic,
		Creator:     user.ID,
		SongIDs:     body.SongIDs,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, savedBody{ID: id})
}

// ownPlaylist checks that the signed-in user created playlist id. Admins
// may change any playlist.
func (s *Server) ownPlaylist(ctx context.Context, id string) error {
	user, err := s.currentUser()
	if err != nil {
		return err
	}
	p, err := s.deps.Playlists.Playlist(ctx, id)
	if err != nil {
		return err
	}
	if p.Creator != user.ID && !user.IsAdmin() {
		return fmt.Errorf("%w: playlist %s belongs to another user", errForbidden, id)
	}
	return nil
}

func (s *Server) updatePlaylist(w http.ResponseWriter, r *http.Request) {
	if s.deps.Playlists == nil {
		writeError(w, r, errUnavailable)
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.ownPlaylist(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	var body backend.PlaylistUpdate
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if body.Title != nil && strings.TrimSpace(*body.Title) == "" {
		writeError(w, r, catalog.FieldErrors{"title": "title is required"})
		return
	}
	p, err := s.deps.Playlists.UpdatePlaylist(r.Context(), id, body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deletePlaylist(w http.ResponseWriter, r *http.Request) {
	if s.deps.Playlists == nil {
		writeError(w, r, errUnavailable)
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.ownPlaylist(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.deps.Playlists.DeletePlaylist(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type songIDBody struct {
	SongID string `json:"songId"`
}

func (s *Server) addPlaylistSong(w http.ResponseWriter, r *http.Request) {
	if s.deps.Playlists == nil {
		writeError(w, r, errUnavailable)
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.ownPlaylist(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	var body songIDBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if body.SongID == "" {
		writeError(w, r, fmt.Errorf("%w: songId is required", errBadRequest))
		return
	}
	if err := s.deps.Playlists.AddSongToPlaylist(r.Context(), id, body.SongID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) removePlaylistSong(w http.ResponseWriter, r *http.Request) {
	if s.deps.Playlists == nil {
		writeError(w, r, errUnavailable)
		return
	}
	id := chi.URLParam(r, "id")
	if err := s.ownPlaylist(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.deps.Playlists.RemoveSongFromPlaylist(r.Context(), id, chi.URLParam(r, "songId")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
