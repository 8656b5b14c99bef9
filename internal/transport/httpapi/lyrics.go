package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/edumarques81/vibesync-player/internal/lyrics"
)

type lyricLine struct {
	Time float64 `json:"time"` // seconds
	Text string  `json:"text"`
}

type lyricsResponse struct {
	SongID string      `json:"songId"`
	Lines  []lyricLine `json:"lines"`
	Active int         `json:"active"`
}

// lyrics returns the current song's synced lyrics. The optional t query
// (seconds) selects the active line.
func (s *Server) lyrics(w http.ResponseWriter, r *http.Request) {
	if s.deps.Player == nil {
		writeError(w, r, errUnavailable)
		return
	}

	var at time.Duration
	if v := r.URL.Query().Get("t"); v != "" {
		sec, err := strconv.ParseFloat(v, 64)
		if err != nil || sec < 0 {
			writeError(w, r, fmt.Errorf("%w: invalid t %q", errBadRequest, v))
			return
		}
		at = time.Duration(sec * float64(time.Second))
	}

	resp := lyricsResponse{Lines: []lyricLine{}, Active: -1}
	if song := s.deps.Player.Snapshot().CurrentSong; song != nil {
		parsed := lyrics.ParseLRC(song.LyricsLRC)
		resp.SongID = song.ID
		for _, l := range parsed {
			resp.Lines = append(resp.Lines, lyricLine{Time: l.Time.Seconds(), Text: l.Text})
		}
		resp.Active = parsed.At(at)
	}
	writeJSON(w, http.StatusOK, resp)
}
