package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
	"github.com/edumarques81/vibesync-player/internal/infra/backend"
	"github.com/edumarques81/vibesync-player/internal/infra/store"
)

type signInBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	if s.deps.Auth == nil {
		writeError(w, r, errUnavailable)
		return
	}
	var body signInBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := s.deps.Auth.SignIn(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	if s.deps.Auth == nil {
		writeError(w, r, errUnavailable)
		return
	}
	if err := s.deps.Auth.SignOut(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type signUpBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	if s.deps.Auth == nil {
		writeError(w, r, errUnavailable)
		return
	}
	var body signUpBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.deps.Auth.SignUp(r.Context(), body.Name, body.Email, body.Password); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// me verifies the stored token with the backend and returns the fresh
// profile.
func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	if s.deps.Auth == nil {
		writeError(w, r, errUnavailable)
		return
	}
	user, err := s.deps.Auth.Refresh(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) likedSongs(w http.ResponseWriter, r *http.Request) {
	if s.deps.Account == nil {
		writeError(w, r, errUnavailable)
		return
	}
	if _, err := s.currentUser(); err != nil {
		writeError(w, r, err)
		return
	}
	songs, err := s.deps.Account.LikedSongs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, songs)
}

func (s *Server) followingArtists(w http.ResponseWriter, r *http.Request) {
	if s.deps.Account == nil {
		writeError(w, r, errUnavailable)
		return
	}
	if _, err := s.currentUser(); err != nil {
		writeError(w, r, err)
		return
	}
	artists, err := s.deps.Account.FollowingArtists(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, artists)
}

type likeBody struct {
	Liked bool `json:"liked"`
}

func (s *Server) toggleLike(w http.ResponseWriter, r *http.Request) {
	if s.deps.Account == nil {
		writeError(w, r, errUnavailable)
		return
	}
	if _, err := s.currentUser(); err != nil {
		writeError(w, r, err)
		return
	}
	liked, err := s.deps.Account.ToggleLike(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, likeBody{Liked: liked})
}

func (s *Server) follow(w http.ResponseWriter, r *http.Request) {
	s.setFollow(w, r, true)
}

func (s *Server) unfollow(w http.ResponseWriter, r *http.Request) {
	s.setFollow(w, r, false)
}

func (s *Server) setFollow(w http.ResponseWriter, r *http.Request, follow bool) {
	if s.deps.Account == nil {
		writeError(w, r, errUnavailable)
		return
	}
	if _, err := s.currentUser(); err != nil {
		writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	var err error
	if follow {
		err = s.deps.Account.FollowArtist(r.Context(), id)
	} else {
		err = s.deps.Account.UnfollowArtist(r.Context(), id)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// recordSearchPick stores that the user opened a song from search
// results. It feeds the top-searched statistics.
func (s *Server) recordSearchPick(w http.ResponseWriter, r *http.Request) {
	if s.deps.Account == nil {
		writeError(w, r, errUnavailable)
		return
	}
	user, err := s.currentUser()
	if err != nil {
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
	if err := s.deps.Account.RecordSearch(r.Context(), user.ID, body.SongID, s.deps.Now()); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// submitRequest files the signed-in user's application to become an
// artist.
func (s *Server) submitRequest(w http.ResponseWriter, r *http.Request) {
	if s.deps.Account == nil {
		writeError(w, r, errUnavailable)
		return
	}
	user, err := s.currentUser()
	if err != nil {
		writeError(w, r, err)
		return
	}
	var app backend.ArtistApplication
	if err := decodeBody(r, &app); err != nil {
		writeError(w, r, err)
		return
	}
	app.Name = strings.TrimSpace(app.Name)
	if app.Name == "" {
		writeError(w, r, catalog.FieldErrors{"name": "name is required"})
		return
	}
	if app.Email == "" {
		app.Email = user.Email
	}
	req, err := s.deps.Account.SubmitArtistRequest(r.Context(), app)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *Server) settings(w http.ResponseWriter, r *http.Request) {
	if s.deps.Prefs == nil {
		writeError(w, r, errUnavailable)
		return
	}
	st, err := s.deps.Prefs.Settings()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// saveSettings merges the body over the saved settings.
func (s *Server) saveSettings(w http.ResponseWriter, r *http.Request) {
	if s.deps.Prefs == nil {
		writeError(w, r, errUnavailable)
		return
	}
	st, err := s.deps.Prefs.Settings()
	if err != nil {
		st = store.DefaultSettings()
	}
	if err := decodeBody(r, &st); err != nil {
		writeError(w, r, err)
		return
	}
	if st.Volume < 0 || st.Volume > 100 {
		writeError(w, r, catalog.FieldErrors{"volume": "volume must be between 0 and 100"})
		return
	}
	if err := s.deps.Prefs.SaveSettings(st); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
