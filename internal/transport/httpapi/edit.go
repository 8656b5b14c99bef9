package httpapi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
	"github.com/edumarques81/vibesync-player/internal/infra/backend"
)

// maxUploadMemory is how much of a multipart upload is held in memory
// before spilling to temp files.
const maxUploadMemory = 32 << 20

type savedBody struct {
	ID string `json:"id"`
}

// songEdit prefills the song editor.
type songEdit struct {
	Song catalog.Song     `json:"song"`
	Form catalog.SongForm `json:"form"`
}

func (s *Server) editSong(scope backend.Scope) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Editor == nil {
			writeError(w, r, errUnavailable)
			return
		}
		song, err := s.deps.Editor.ManagedSong(r.Context(), scope, chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, songEdit{Song: *song, Form: catalog.FormFromSong(*song)})
	}
}

// saveSong creates a song on POST and updates {id} on PUT. A successful
// create drops the stored draft.
func (s *Server) saveSong(scope backend.Scope) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Editor == nil {
			writeError(w, r, errUnavailable)
			return
		}
		var form catalog.SongForm
		if err := decodeBody(r, &form); err != nil {
			writeError(w, r, err)
			return
		}
		payload, err := form.Payload(s.deps.Now())
		if err != nil {
			writeError(w, r, err)
			return
		}

		id := chi.URLParam(r, "id")
		saved, err := s.deps.Editor.SaveSong(r.Context(), scope, id, payload)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if id != "" {
			writeJSON(w, http.StatusOK, savedBody{ID: saved})
			return
		}
		if s.deps.Prefs != nil {
			if err := s.deps.Prefs.ClearSongFormDraft(); err != nil {
				log.Warn().Err(err).Msg("Failed to clear song draft")
			}
		}
		writeJSON(w, http.StatusCreated, savedBody{ID: saved})
	}
}

func (s *Server) deleteSong(scope backend.Scope) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Editor == nil {
			writeError(w, r, errUnavailable)
			return
		}
		if err := s.deps.Editor.DeleteSong(r.Context(), scope, chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) songDraft(w http.ResponseWriter, r *http.Request) {
	if s.deps.Prefs == nil {
		writeError(w, r, errUnavailable)
		return
	}
	draft, err := s.deps.Prefs.SongFormDraft()
	if err != nil {
		writeError(w, r, err)
		return
	}
	if draft == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

// saveSongDraft stores the form as typed. Drafts are not validated.
func (s *Server) saveSongDraft(w http.ResponseWriter, r *http.Request) {
	if s.deps.Prefs == nil {
		writeError(w, r, errUnavailable)
		return
	}
	var form catalog.SongForm
	if err := decodeBody(r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.deps.Prefs.SaveSongFormDraft(form); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) clearSongDraft(w http.ResponseWriter, r *http.Request) {
	if s.deps.Prefs == nil {
		writeError(w, r, errUnavailable)
		return
	}
	if err := s.deps.Prefs.ClearSongFormDraft(); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) saveAlbum(scope backend.Scope) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Editor == nil {
			writeError(w, r, errUnavailable)
			return
		}
		var form catalog.AlbumForm
		if err := decodeBody(r, &form); err != nil {
			writeError(w, r, err)
			return
		}
		payload, err := form.Payload(s.deps.Now())
		if err != nil {
			writeError(w, r, err)
			return
		}

		id := chi.URLParam(r, "id")
		saved, err := s.deps.Editor.SaveAlbum(r.Context(), scope, id, payload)
		if err != nil {
			writeError(w, r, err)
			return
		}
		status := http.StatusOK
		if id == "" {
			status = http.StatusCreated
		}
		writeJSON(w, status, savedBody{ID: saved})
	}
}

func (s *Server) deleteAlbum(scope backend.Scope) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Editor == nil {
			writeError(w, r, errUnavailable)
			return
		}
		if err := s.deps.Editor.DeleteAlbum(r.Context(), scope, chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) editArtist(w http.ResponseWriter, r *http.Request) {
	if s.deps.Editor == nil {
		writeError(w, r, errUnavailable)
		return
	}
	artist, err := s.deps.Editor.ManagedArtist(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, artist)
}

func (s *Server) saveArtist(w http.ResponseWriter, r *http.Request) {
	if s.deps.Editor == nil {
		writeError(w, r, errUnavailable)
		return
	}
	var form catalog.ArtistForm
	if err := decodeBody(r, &form); err != nil {
		writeError(w, r, err)
		return
	}
	payload, err := form.Payload()
	if err != nil {
		writeError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	saved, err := s.deps.Editor.SaveArtist(r.Context(), id, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if id == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, savedBody{ID: saved})
}

type imageBody struct {
	Image string `json:"image"`
}

func (s *Server) updateArtistImage(w http.ResponseWriter, r *http.Request) {
	if s.deps.Editor == nil {
		writeError(w, r, errUnavailable)
		return
	}
	var body imageBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if body.Image == "" {
		writeError(w, r, catalog.FieldErrors{"image": "image URL is required"})
		return
	}
	if err := s.deps.Editor.UpdateArtistImage(r.Context(), chi.URLParam(r, "id"), body.Image); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteArtist(w http.ResponseWriter, r *http.Request) {
	if s.deps.Editor == nil {
		writeError(w, r, errUnavailable)
		return
	}
	if err := s.deps.Editor.DeleteArtist(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type uploadBody struct {
	Field backend.MediaField `json:"field"`
	URL   string             `json:"url"`
}

// upload forwards the multipart "file" part to the backend under the
// media field named by ?field= (cover_art by default).
func (s *Server) upload(scope backend.Scope) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.deps.Editor == nil {
			writeError(w, r, errUnavailable)
			return
		}
		field := backend.MediaField(r.URL.Query().Get("field"))
		switch field {
		case "":
			field = backend.MediaCoverArt
		case backend.MediaCoverArt, backend.MediaAudio, backend.MediaImage:
		default:
			writeError(w, r, fmt.Errorf("%w: unknown media field %q", errBadRequest, field))
			return
		}

		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		file, hdr, err := r.FormFile("file")
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		defer file.Close()

		res, err := s.deps.Editor.UploadMedia(r.Context(), scope, field, hdr.Filename, file)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, uploadBody{Field: field, URL: res.URL(field)})
	}
}
