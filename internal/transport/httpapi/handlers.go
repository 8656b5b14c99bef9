package httpapi

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
	"github.com/edumarques81/vibesync-player/internal/domain/stats"
	"github.com/edumarques81/vibesync-player/internal/infra/backend"
	"github.com/edumarques81/vibesync-player/internal/version"
)

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, version.GetInfo())
}

func (s *Server) state(w http.ResponseWriter, r *http.Request) {
	if s.deps.Player == nil {
		writeError(w, r, errUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Player.Snapshot().ToJSON())
}

func (s *Server) queue(w http.ResponseWriter, r *http.Request) {
	if s.deps.Player == nil {
		writeError(w, r, errUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Player.Snapshot().QueueJSON())
}

func (s *Server) listenStats(w http.ResponseWriter, r *http.Request) {
	if s.deps.Stats == nil {
		writeError(w, r, errUnavailable)
		return
	}
	report, err := stats.ListenDashboard(r.Context(), s.deps.Stats, s.deps.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) followStats(w http.ResponseWriter, r *http.Request) {
	if s.deps.Stats == nil {
		writeError(w, r, errUnavailable)
		return
	}
	report, err := stats.FollowDashboard(r.Context(), s.deps.Stats)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// songRow is a song table row with its length rendered for display.
type songRow struct {
	catalog.Song
	Length string `json:"length"`
}

func (s *Server) listSongs(scope backend.Scope) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Library == nil {
			writeError(w, r, errUnavailable)
			return
		}
		songs, _, err := s.deps.Library.ManagedSongs(r.Context(), scope, 0, 0)
		if err != nil {
			writeError(w, r, err)
			return
		}
		songs = catalog.FilterSongs(songs, r.URL.Query().Get("q"))
		rows := make([]songRow, len(songs))
		for i, song := range songs {
			rows[i] = songRow{Song: song, Length: catalog.FormatDuration(song.Duration)}
		}
		writeJSON(w, http.StatusOK, catalog.Paginate(rows, queryPage(r), catalog.DefaultPageSize))
	}
}

func (s *Server) adminArtists(w http.ResponseWriter, r *http.Request) {
	if s.deps.Library == nil {
		writeError(w, r, errUnavailable)
		return
	}
	artists, _, err := s.deps.Library.ManagedArtists(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	artists = catalog.FilterArtists(artists, r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, catalog.Paginate(artists, queryPage(r), catalog.DefaultPageSize))
}

func (s *Server) listAlbums(scope backend.Scope) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Library == nil {
			writeError(w, r, errUnavailable)
			return
		}
		albums, _, err := s.deps.Library.ManagedAlbums(r.Context(), scope)
		if err != nil {
			writeError(w, r, err)
			return
		}
		albums = catalog.FilterAlbums(albums, r.URL.Query().Get("q"))
		writeJSON(w, http.StatusOK, catalog.Paginate(albums, queryPage(r), catalog.DefaultPageSize))
	}
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	if s.deps.Library == nil {
		writeError(w, r, errUnavailable)
		return
	}
	typ := backend.SearchType(r.URL.Query().Get("type"))
	switch typ {
	case "":
		typ = backend.SearchAll
	case backend.SearchAll, backend.SearchSong, backend.SearchArtist, backend.SearchAlbum:
	default:
		writeError(w, r, fmt.Errorf("%w: unknown search type %q", errBadRequest, typ))
		return
	}
	res, err := s.deps.Library.Search(r.Context(), r.URL.Query().Get("q"), typ)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// currentUser returns the signed-in user or errSignedOut.
func (s *Server) currentUser() (*catalog.User, error) {
	if s.deps.Users == nil {
		return nil, errUnavailable
	}
	u, err := s.deps.Users.CurrentUser()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	if u == nil || u.ID == "" {
		return nil, errSignedOut
	}
	return u, nil
}

// requireRole answers 401 when signed out and 403 when the user holds
// none of roles.
func (s *Server) requireRole(roles ...catalog.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := s.currentUser()
			if err != nil {
				writeError(w, r, err)
				return
			}
			if !slices.Contains(roles, u.Role) {
				writeError(w, r, fmt.Errorf("%w: role %q may not access %s", errForbidden, u.Role, r.URL.Path))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestRow is an artist request with its submission time in the
// admins' time zone.
type requestRow struct {
	catalog.ArtistRequest
	SubmittedAt string `json:"submittedAt"`
}

func (s *Server) listRequests(w http.ResponseWriter, r *http.Request) {
	if s.deps.Requests == nil {
		writeError(w, r, errUnavailable)
		return
	}
	reqs, err := s.deps.Requests.Pending(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows := make([]requestRow, len(reqs))
	for i, req := range reqs {
		rows[i] = requestRow{ArtistRequest: req}
		if !req.CreatedAt.IsZero() {
			rows[i].SubmittedAt = catalog.FormatLocalTime(req.CreatedAt)
		}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) requestCandidates(w http.ResponseWriter, r *http.Request) {
	if s.deps.Requests == nil {
		writeError(w, r, errUnavailable)
		return
	}
	candidates, err := s.deps.Requests.MatchCandidates(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, candidates)
}

type approveBody struct {
	MatchedArtistID string `json:"matchedArtistId"`
}

func (s *Server) approveRequest(w http.ResponseWriter, r *http.Request) {
	if s.deps.Requests == nil {
		writeError(w, r, errUnavailable)
		return
	}
	admin, err := s.currentUser()
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body approveBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.deps.Requests.Approve(r.Context(), admin, chi.URLParam(r, "id"), body.MatchedArtistID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) rejectRequest(w http.ResponseWriter, r *http.Request) {
	if s.deps.Requests == nil {
		writeError(w, r, errUnavailable)
		return
	}
	admin, err := s.currentUser()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.deps.Requests.Reject(r.Context(), admin, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteRequest(w http.ResponseWriter, r *http.Request) {
	if s.deps.Requests == nil {
		writeError(w, r, errUnavailable)
		return
	}
	if err := s.deps.Requests.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type notificationList struct {
	Notifications []catalog.Notification `json:"notifications"`
	Unread        int                    `json:"unread"`
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	n := s.deps.Notifications
	if n == nil {
		writeError(w, r, errUnavailable)
		return
	}
	if err := n.Load(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notificationList{Notifications: n.List(), Unread: n.Unread()})
}

func (s *Server) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	if s.deps.Notifications == nil {
		writeError(w, r, errUnavailable)
		return
	}
	if err := s.deps.Notifications.MarkAsRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteNotification(w http.ResponseWriter, r *http.Request) {
	if s.deps.Notifications == nil {
		writeError(w, r, errUnavailable)
		return
	}
	if err := s.deps.Notifications.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) chatHistory(w http.ResponseWriter, r *http.Request) {
	if s.deps.Chat == nil {
		writeError(w, r, errUnavailable)
		return
	}
	// A missing user is answered with a bot message, not an error.
	user, _ := s.currentUser()
	msgs, err := s.deps.Chat.History(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

type chatBody struct {
	Message string `json:"message"`
}

func (s *Server) sendChat(w http.ResponseWriter, r *http.Request) {
	if s.deps.Chat == nil {
		writeError(w, r, errUnavailable)
		return
	}
	var body chatBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	user, _ := s.currentUser()
	msgs, err := s.deps.Chat.Send(r.Context(), user, body.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) clearChat(w http.ResponseWriter, r *http.Request) {
	if s.deps.Chat == nil {
		writeError(w, r, errUnavailable)
		return
	}
	user, err := s.currentUser()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.deps.Chat.Clear(r.Context(), user); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
