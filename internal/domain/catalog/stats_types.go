package catalog

// TopListenedSong is a row of the admin top-listened-songs report.
type TopListenedSong struct {
	ID          string `json:"_id"`
	SongID      string `json:"song_id,omitempty"`
	Title       string `json:"title"`
	ArtistName  string `json:"artist_name,omitempty"`
	Artist      string `json:"artist,omitempty"`
	Cover       string `json:"cover,omitempty"`
	Duration    int    `json:"duration,omitempty"`
	ListenCount int    `json:"listen_count"`
}

// Key returns the song id the row refers to.
func (s TopListenedSong) Key() string {
	if s.ID != "" {
		return s.ID
	}
	return s.SongID
}

// DisplayArtist prefers artist_name over artist.
func (s TopListenedSong) DisplayArtist() string {
	if s.ArtistName != "" {
		return s.ArtistName
	}
	return s.Artist
}

// ActivitySong is a song entry inside a listen-activity day.
type ActivitySong struct {
	ID         string `json:"_id"`
	Title      string `json:"title"`
	Artist     string `json:"artist,omitempty"`
	ArtistName string `json:"artist_name,omitempty"`
	Cover      string `json:"cover,omitempty"`
	Count      int    `json:"count,omitempty"`
}

// DisplayArtist prefers artist over artist_name.
func (s ActivitySong) DisplayArtist() string {
	if s.Artist != "" {
		return s.Artist
	}
	return s.ArtistName
}

// ListenActivityDay is one day of the admin listen-activity report.
type ListenActivityDay struct {
	Date  string         `json:"_id"`
	Count int            `json:"count"`
	Songs []ActivitySong `json:"songs"`
}

// SongMetric is a row of the public top / top-repeated / top-searched reports.
// Only the field matching the report is populated.
type SongMetric struct {
	ID          string `json:"_id"`
	Count       int    `json:"count,omitempty"`
	RepeatTotal int    `json:"repeat_total,omitempty"`
	SearchCount int    `json:"search_count,omitempty"`
}

// FollowedArtist is a row of the admin followed-artists report.
type FollowedArtist struct {
	ArtistID      string `json:"artist_id"`
	Name          string `json:"name"`
	Image         string `json:"image,omitempty"`
	FollowerCount int    `json:"follower_count"`
}

// FollowedUser is a row of the admin followed-users report.
type FollowedUser struct {
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	Email          string `json:"email,omitempty"`
	FollowingCount int    `json:"following_count"`
}
