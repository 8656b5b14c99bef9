// Package httpapi serves the JSON API used by the admin pages and by
// clients that poll player state.
package httpapi

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
	"github.com/edumarques81/vibesync-player/internal/domain/player"
	"github.com/edumarques81/vibesync-player/internal/domain/requests"
	"github.com/edumarques81/vibesync-player/internal/domain/stats"
	"github.com/edumarques81/vibesync-player/internal/infra/backend"
	"github.com/edumarques81/vibesync-player/internal/infra/store"
)

// Player exposes the current player state.
type Player interface {
	Snapshot() player.State
}

// Library is the catalog side of the backend.
type Library interface {
	ManagedSongs(ctx context.Context, scope backend.Scope, skip, limit int) ([]catalog.Song, int, error)
	ManagedArtists(ctx context.Context) ([]catalog.Artist, int, error)
	ManagedAlbums(ctx context.Context, scope backend.Scope) ([]catalog.Album, int, error)
	Search(ctx context.Context, keyword string, typ backend.SearchType) (*catalog.SearchResult, error)
}

// Browse is the public catalog.
type Browse interface {
	SongsOrEmpty(ctx context.Context, q backend.SongQuery) []catalog.Song
	Song(ctx context.Context, id string) (*catalog.Song, error)
	SongsByIDs(ctx context.Context, ids []string) ([]catalog.Song, error)
	AlbumsIncludingSong(ctx context.Context, songID string) ([]catalog.Album, error)
	LikeCount(ctx context.Context, songID string) (int, error)
	AlbumsOrEmpty(ctx context.Context) []catalog.Album
	Album(ctx context.Context, id string) (*catalog.Album, error)
	AlbumSongs(ctx context.Context, albumID string) ([]catalog.Song, error)
	ArtistsOrEmpty(ctx context.Context) []catalog.Artist
	Artist(ctx context.Context, id string) (*catalog.Artist, error)
	SongsByArtist(ctx context.Context, artistID string) ([]catalog.Song, error)
	AlbumsByArtist(ctx context.Context, artistID string) ([]catalog.Album, error)
	SimilarArtists(ctx context.Context, query string) ([]catalog.Artist, error)
}

// Editor writes catalog entries through the management API.
type Editor interface {
	ManagedSong(ctx context.Context, scope backend.Scope, id string) (*catalog.Song, error)
	SaveSong(ctx context.Context, scope backend.Scope, id string, p catalog.SongPayload) (string, error)
	DeleteSong(ctx context.Context, scope backend.Scope, id string) error
	SaveAlbum(ctx context.Context, scope backend.Scope, id string, f catalog.AlbumForm) (string, error)
	DeleteAlbum(ctx context.Context, scope backend.Scope, id string) error
	ManagedArtist(ctx context.Context, id string) (*catalog.Artist, error)
	SaveArtist(ctx context.Context, id string, f catalog.ArtistForm) (string, error)
	UpdateArtistImage(ctx context.Context, id, image string) error
	DeleteArtist(ctx context.Context, id string) error
	UploadMedia(ctx context.Context, scope backend.Scope, field backend.MediaField, fileName string, r io.Reader) (*backend.UploadResult, error)
}

// Playlists manages playlists.
type Playlists interface {
	Playlists(ctx context.Context, creator string) ([]catalog.Playlist, error)
	PublicPlaylists(ctx context.Context) ([]catalog.Playlist, error)
	Playlist(ctx context.Context, id string) (*catalog.Playlist, error)
	CreatePlaylist(ctx context.Context, p backend.NewPlaylist) (string, error)
	UpdatePlaylist(ctx context.Context, id string, u backend.PlaylistUpdate) (*catalog.Playlist, error)
	AddSongToPlaylist(ctx context.Context, playlistID, songID string) error
	RemoveSongFromPlaylist(ctx context.Context, playlistID, songID string) error
	DeletePlaylist(ctx context.Context, id string) error
}

// Account is what the signed-in user does to the catalog.
type Account interface {
	ToggleLike(ctx context.Context, songID string) (bool, error)
	LikedSongs(ctx context.Context) ([]catalog.Song, error)
	FollowArtist(ctx context.Context, id string) error
	UnfollowArtist(ctx context.Context, id string) error
	FollowingArtists(ctx context.Context) ([]catalog.Artist, error)
	RecordSearch(ctx context.Context, userID, songID string, at time.Time) error
	SubmitArtistRequest(ctx context.Context, a backend.ArtistApplication) (*catalog.ArtistRequest, error)
}

// Auth signs the local user in and out.
type Auth interface {
	SignIn(ctx context.Context, email, password string) (*catalog.User, error)
	SignUp(ctx context.Context, name, email, password string) error
	Refresh(ctx context.Context) (*catalog.User, error)
	SignOut(ctx context.Context) error
}

// Prefs is local UI state.
type Prefs interface {
	Settings() (store.Settings, error)
	SaveSettings(s store.Settings) error
	SongFormDraft() (*catalog.SongForm, error)
	SaveSongFormDraft(f catalog.SongForm) error
	ClearSongFormDraft() error
}

// Reviewer handles artist requests.
type Reviewer interface {
	Pending(ctx context.Context) ([]catalog.ArtistRequest, error)
	Approve(ctx context.Context, admin *catalog.User, requestID, matchedArtistID string) error
	Reject(ctx context.Context, admin *catalog.User, requestID string) error
	Delete(ctx context.Context, requestID string) error
	MatchCandidates(ctx context.Context) ([]requests.Candidate, error)
}

// Notifications is the notification center.
type Notifications interface {
	Load(ctx context.Context) error
	List() []catalog.Notification
	Unread() int
	MarkAsRead(ctx context.Context, id string) error
	Remove(ctx context.Context, id string) error
}

// Chat is the assistant chat session.
type Chat interface {
	History(ctx context.Context, user *catalog.User) ([]catalog.ChatMessage, error)
	Send(ctx context.Context, user *catalog.User, text string) ([]catalog.ChatMessage, error)
	Clear(ctx context.Context, user *catalog.User) error
}

// Users resolves the signed-in user.
type Users interface {
	CurrentUser() (*catalog.User, error)
}

// Deps are the services behind the API. Nil services answer 503.
type Deps struct {
	Player        Player
	Stats         stats.Source
	Library       Library
	Browse        Browse
	Editor        Editor
	Playlists     Playlists
	Account       Account
	Auth          Auth
	Prefs         Prefs
	Requests      Reviewer
	Notifications Notifications
	Chat          Chat
	Users         Users

	// Now defaults to time.Now.
	Now func() time.Time
}

// Server is the HTTP API.
type Server struct {
	router chi.Router
	deps   Deps
}

// NewServer builds the router.
func NewServer(deps Deps) *Server {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	s := &Server{router: chi.NewRouter(), deps: deps}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(corsMiddleware)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Get("/health", s.health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/version", s.version)
		r.Get("/state", s.state)
		r.Get("/queue", s.queue)
		r.Get("/lyrics", s.lyrics)

		r.Post("/session", s.signIn)
		r.Delete("/session", s.signOut)
		r.Post("/register", s.signUp)
		r.Get("/me", s.me)
		r.Get("/me/likes", s.likedSongs)
		r.Get("/me/following", s.followingArtists)
		r.Get("/settings", s.settings)
		r.Put("/settings", s.saveSettings)

		r.Get("/songs", s.songs)
		r.Get("/songs/{id}", s.songDetail)
		r.Post("/songs/{id}/like", s.toggleLike)
		r.Get("/albums", s.albums)
		r.Get("/albums/{id}", s.albumDetail)
		r.Get("/artists", s.artists)
		r.Get("/artists/similar", s.similarArtists)
		r.Get("/artists/{id}", s.artistDetail)
		r.Post("/artists/{id}/follow", s.follow)
		r.Delete("/artists/{id}/follow", s.unfollow)

		r.Route("/playlists", func(r chi.Router) {
			r.Get("/", s.myPlaylists)
			r.Post("/", s.createPlaylist)
			r.Get("/public", s.publicPlaylists)
			r.Get("/{id}", s.playlist)
			r.Patch("/{id}", s.updatePlaylist)
			r.Delete("/{id}", s.deletePlaylist)
			r.Post("/{id}/songs", s.addPlaylistSong)
			r.Delete("/{id}/songs/{songId}", s.removePlaylistSong)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireRole(catalog.RoleAdmin))

			r.Get("/statistics/listens", s.listenStats)
			r.Get("/statistics/follows", s.followStats)

			r.Get("/songs", s.listSongs(backend.AdminScope))
			r.Post("/songs", s.saveSong(backend.AdminScope))
			r.Get("/songs/draft", s.songDraft)
			r.Put("/songs/draft", s.saveSongDraft)
			r.Delete("/songs/draft", s.clearSongDraft)
			r.Get("/songs/{id}", s.editSong(backend.AdminScope))
			r.Put("/songs/{id}", s.saveSong(backend.AdminScope))
			r.Delete("/songs/{id}", s.deleteSong(backend.AdminScope))

			r.Get("/albums", s.listAlbums(backend.AdminScope))
			r.Post("/albums", s.saveAlbum(backend.AdminScope))
			r.Put("/albums/{id}", s.saveAlbum(backend.AdminScope))
			r.Delete("/albums/{id}", s.deleteAlbum(backend.AdminScope))

			r.Get("/artists", s.adminArtists)
			r.Post("/artists", s.saveArtist)
			r.Get("/artists/{id}", s.editArtist)
			r.Put("/artists/{id}", s.saveArtist)
			r.Put("/artists/{id}/image", s.updateArtistImage)
			r.Delete("/artists/{id}", s.deleteArtist)

			r.Post("/upload", s.upload(backend.AdminScope))
		})

		r.Route("/artist", func(r chi.Router) {
			r.Use(s.requireRole(catalog.RoleArtist, catalog.RoleAdmin))

			r.Get("/songs", s.listSongs(backend.ArtistScope))
			r.Post("/songs", s.saveSong(backend.ArtistScope))
			r.Get("/songs/{id}", s.editSong(backend.ArtistScope))
			r.Put("/songs/{id}", s.saveSong(backend.ArtistScope))
			r.Delete("/songs/{id}", s.deleteSong(backend.ArtistScope))

			r.Get("/albums", s.listAlbums(backend.ArtistScope))
			r.Post("/albums", s.saveAlbum(backend.ArtistScope))
			r.Put("/albums/{id}", s.saveAlbum(backend.ArtistScope))
			r.Delete("/albums/{id}", s.deleteAlbum(backend.ArtistScope))

			r.Post("/upload", s.upload(backend.ArtistScope))
		})

		r.Route("/artist-requests", func(r chi.Router) {
			r.Post("/", s.submitRequest)

			r.Group(func(r chi.Router) {
				r.Use(s.requireRole(catalog.RoleAdmin))
				r.Get("/", s.listRequests)
				r.Get("/candidates", s.requestCandidates)
				r.Post("/{id}/approve", s.approveRequest)
				r.Post("/{id}/reject", s.rejectRequest)
				r.Delete("/{id}", s.deleteRequest)
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", s.listNotifications)
			r.Post("/{id}/read", s.markNotificationRead)
			r.Delete("/{id}", s.deleteNotification)
		})

		r.Get("/search", s.search)
		r.Post("/search/picks", s.recordSearchPick)

		r.Get("/chat/history", s.chatHistory)
		r.Post("/chat", s.sendChat)
		r.Delete("/chat/history", s.clearChat)
	})
}

// Mount attaches an extra handler, such as the Socket.io endpoint, under
// pattern.
func (s *Server) Mount(pattern string, h http.Handler) {
	s.router.Handle(pattern, h)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// corsMiddleware sets CORS headers on every response, errors included, so
// browsers on another origin can read them.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("took", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
