package catalog

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// UnknownArtist is the artist name stored when a song form leaves it blank.
const UnknownArtist = "Unknown Artist"

// FieldErrors maps form field names to validation messages.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return fmt.Sprintf("%s: %s", ErrInvalidForm, strings.Join(parts, "; "))
}

// Unwrap lets errors.Is match ErrInvalidForm.
func (e FieldErrors) Unwrap() error { return ErrInvalidForm }

func (e FieldErrors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// SongForm is the admin/artist song editor as submitted by the UI. Numeric
// fields arrive as text.
type SongForm struct {
	Title                 string   `json:"title"`
	Artist                string   `json:"artist"`
	ArtistID              string   `json:"artistId"`
	ArtistImage           string   `json:"artistImage,omitempty"`
	ContributingArtistIDs []string `json:"contributingArtistIds,omitempty"`
	AlbumIDs              []string `json:"albumIds,omitempty"`
	Genre                 []string `json:"genre"`
	Duration              string   `json:"duration"`
	ReleaseYear           string   `json:"releaseYear"`
	CoverArt              string   `json:"coverArt,omitempty"`
	AudioURL              string   `json:"audioUrl,omitempty"`
	LyricsLRC             string   `json:"lyrics_lrc,omitempty"`
}

// SongPayload is the cleaned body sent to the backend.
type SongPayload struct {
	Title                 string   `json:"title"`
	Artist                string   `json:"artist"`
	ArtistID              string   `json:"artistId"`
	ContributingArtistIDs []string `json:"contributingArtistIds"`
	AlbumIDs              []string `json:"albumIds"`
	Genre                 []string `json:"genre"`
	Duration              int      `json:"duration"`
	ReleaseYear           int      `json:"releaseYear"`
	CoverArt              string   `json:"coverArt,omitempty"`
	AudioURL              string   `json:"audioUrl,omitempty"`
	LyricsLRC             string   `json:"lyrics_lrc,omitempty"`
}

// FormFromSong prefills a SongForm for editing.
func FormFromSong(s Song) SongForm {
	f := SongForm{
		Title:                 s.Title,
		Artist:                s.Artist,
		ArtistID:              s.ArtistID,
		ContributingArtistIDs: s.ContributingArtistIDs,
		AlbumIDs:              s.AlbumIDs,
		Genre:                 s.Genre,
		CoverArt:              s.CoverArt,
		AudioURL:              s.AudioURL,
		LyricsLRC:             s.LyricsLRC,
	}
	if s.Duration > 0 {
		f.Duration = strconv.Itoa(s.Duration)
	}
	if s.ReleaseYear > 0 {
		f.ReleaseYear = strconv.Itoa(s.ReleaseYear)
	}
	return f
}

// Validate checks the form against the backend's song rules as of now.
func (f SongForm) Validate(now time.Time) error {
	errs := FieldErrors{}
	if normalizeTitle(f.Title) == "" {
		errs["title"] = "title is required"
	}
	if strings.TrimSpace(f.ArtistID) == "" {
		errs["artistId"] = "artist is required"
	}
	if len(cleanStrings(f.Genre)) == 0 {
		errs["genre"] = "at least one genre is required"
	}
	if year, err := strconv.Atoi(strings.TrimSpace(f.ReleaseYear)); err != nil {
		errs["releaseYear"] = "release year must be a number"
	} else if year < 1900 || year > now.Year()+1 {
		errs["releaseYear"] = fmt.Sprintf("release year must be between 1900 and %d", now.Year()+1)
	}
	if d, err := strconv.Atoi(strings.TrimSpace(f.Duration)); err != nil || d <= 0 {
		errs["duration"] = "duration must be a positive number of seconds"
	}
	return errs.orNil()
}

// Payload returns the cleaned request body. It validates first.
func (f SongForm) Payload(now time.Time) (SongPayload, error) {
	if err := f.Validate(now); err != nil {
		return SongPayload{}, err
	}
	year, _ := strconv.Atoi(strings.TrimSpace(f.ReleaseYear))
	dur, _ := strconv.Atoi(strings.TrimSpace(f.Duration))

	artist := strings.TrimSpace(f.Artist)
	if artist == "" {
		artist = UnknownArtist
	}
	return SongPayload{
		Title:                 normalizeTitle(f.Title),
		Artist:                artist,
		ArtistID:              strings.TrimSpace(f.ArtistID),
		ContributingArtistIDs: nonNil(f.ContributingArtistIDs),
		AlbumIDs:              nonNil(f.AlbumIDs),
		Genre:                 cleanStrings(f.Genre),
		Duration:              dur,
		ReleaseYear:           year,
		CoverArt:              strings.TrimSpace(f.CoverArt),
		AudioURL:              strings.TrimSpace(f.AudioURL),
		LyricsLRC:             f.LyricsLRC,
	}, nil
}

// AlbumForm is the album editor.
type AlbumForm struct {
	Title       string   `json:"title"`
	ArtistID    string   `json:"artist_id"`
	CoverArt    string   `json:"cover_art,omitempty"`
	ReleaseYear int      `json:"release_year,omitempty"`
	Genres      []string `json:"genres"`
	Songs       []string `json:"songs"`
}

// Validate checks required album fields.
func (f AlbumForm) Validate(now time.Time) error {
	errs := FieldErrors{}
	if strings.TrimSpace(f.Title) == "" {
		errs["title"] = "title is required"
	}
	if strings.TrimSpace(f.ArtistID) == "" {
		errs["artist_id"] = "artist is required"
	}
	if f.ReleaseYear != 0 && (f.ReleaseYear < 1900 || f.ReleaseYear > now.Year()+1) {
		errs["release_year"] = fmt.Sprintf("release year must be between 1900 and %d", now.Year()+1)
	}
	return errs.orNil()
}

// Payload returns the cleaned album body.
func (f AlbumForm) Payload(now time.Time) (AlbumForm, error) {
	if err := f.Validate(now); err != nil {
		return AlbumForm{}, err
	}
	f.Title = normalizeTitle(f.Title)
	f.ArtistID = strings.TrimSpace(f.ArtistID)
	f.Genres = cleanStrings(f.Genres)
	f.Songs = nonNil(f.Songs)
	return f, nil
}

// ArtistForm is the artist editor.
type ArtistForm struct {
	Name      string   `json:"name"`
	Bio       string   `json:"bio"`
	Image     string   `json:"image"`
	Genres    []string `json:"genres"`
	Followers int      `json:"followers"`
}

// Validate checks required artist fields.
func (f ArtistForm) Validate() error {
	errs := FieldErrors{}
	if strings.TrimSpace(f.Name) == "" {
		errs["name"] = "name is required"
	}
	if strings.TrimSpace(f.Bio) == "" {
		errs["bio"] = "bio is required"
	}
	if f.Followers < 0 {
		errs["followers"] = "followers must be non-negative"
	}
	if len(cleanStrings(f.Genres)) == 0 {
		errs["genres"] = "at least one genre is required"
	}
	if img := strings.TrimSpace(f.Image); img == "" {
		errs["image"] = "image URL is required"
	} else if u, err := url.Parse(img); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs["image"] = "must be a valid URL"
	}
	return errs.orNil()
}

// Payload returns the cleaned artist body. It validates first.
func (f ArtistForm) Payload() (ArtistForm, error) {
	if err := f.Validate(); err != nil {
		return ArtistForm{}, err
	}
	f.Name = strings.TrimSpace(f.Name)
	f.Bio = strings.TrimSpace(f.Bio)
	f.Image = strings.TrimSpace(f.Image)
	f.Genres = cleanStrings(f.Genres)
	return f, nil
}

// AddGenre appends a trimmed genre unless it is blank or already present.
func AddGenre(genres []string, genre string) []string {
	g := strings.TrimSpace(genre)
	if g == "" {
		return genres
	}
	for _, existing := range genres {
		if existing == g {
			return genres
		}
	}
	return append(genres, g)
}

func normalizeTitle(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = AddGenre(out, s)
	}
	return out
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
