// Package stats builds the admin listen and follow dashboards from
// several backend reports fetched in parallel.
package stats

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
)

const (
	// ChartSize caps every chart.
	ChartSize = 20
	// ActivityWindow is how far back the listen activity report reaches.
	ActivityWindow = 30 * 24 * time.Hour

	topListenedLimit = 20
	metricLimit      = 50

	UnknownTitle     = "Unknown Title"
	UnknownArtist    = "Unknown Artist"
	PlaceholderCover = "/placeholder.svg"
)

// Source is the subset of the backend the dashboards read.
type Source interface {
	TotalListens(ctx context.Context) (int, error)
	ListenActivity(ctx context.Context, from, to time.Time) ([]catalog.ListenActivityDay, error)
	TopListenedSongs(ctx context.Context, limit int) ([]catalog.TopListenedSong, error)
	TopSongs(ctx context.Context, limit int) ([]catalog.SongMetric, error)
	TopRepeatedSongs(ctx context.Context, limit int) ([]catalog.SongMetric, error)
	TopSearchedSongs(ctx context.Context, limit int) ([]catalog.SongMetric, error)
	TotalFollowers(ctx context.Context) (int, error)
	UniqueFollowers(ctx context.Context) (int, error)
	FollowedUsers(ctx context.Context) ([]catalog.FollowedUser, error)
	FollowedArtists(ctx context.Context) ([]catalog.FollowedArtist, error)
}

// CombinedRow is one song in the combined engagement chart.
type CombinedRow struct {
	SongID string `json:"songId"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Listen int    `json:"listen"`
	Repeat int    `json:"repeat"`
	Search int    `json:"search"`
	Total  int    `json:"total"`
}

// ChartRow is one song in the listen activity chart.
type ChartRow struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Image  string `json:"image"`
	Count  int    `json:"count"`
}

// ListenReport is the listen statistics dashboard.
type ListenReport struct {
	TotalListens int                         `json:"totalListens"`
	Activity     []catalog.ListenActivityDay `json:"activity"`
	TopListened  []catalog.TopListenedSong   `json:"topListened"`
	Combined     []CombinedRow               `json:"combined"`
	Chart        []ChartRow                  `json:"chart"`
}

// FollowReport is the follow statistics dashboard.
type FollowReport struct {
	TotalFollowers  int                      `json:"totalFollowers"`
	UniqueFollowers int                      `json:"uniqueFollowers"`
	Users           []catalog.FollowedUser   `json:"users"`
	Artists         []catalog.FollowedArtist `json:"artists"`
	Chart           []catalog.FollowedArtist `json:"chart"`
}

// ListenDashboard fetches all listen reports in parallel and merges them.
// Any failed fetch fails the dashboard.
func ListenDashboard(ctx context.Context, src Source, now time.Time) (*ListenReport, error) {
	var rep ListenReport
	var top, repeated, searched []catalog.SongMetric

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rep.TotalListens, err = src.TotalListens(ctx)
		return err
	})
	g.Go(func() (err error) {
		rep.Activity, err = src.ListenActivity(ctx, now.Add(-ActivityWindow), now)
		return err
	})
	g.Go(func() (err error) {
		rep.TopListened, err = src.TopListenedSongs(ctx, topListenedLimit)
		return err
	})
	g.Go(func() (err error) {
		top, err = src.TopSongs(ctx, metricLimit)
		return err
	})
	g.Go(func() (err error) {
		repeated, err = src.TopRepeatedSongs(ctx, metricLimit)
		return err
	})
	g.Go(func() (err error) {
		searched, err = src.TopSearchedSongs(ctx, metricLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("listen dashboard: %w", err)
	}

	rep.Combined = MergeCombined(rep.TopListened, rep.Activity, top, repeated, searched)
	rep.Chart = ActivityChart(rep.Activity)
	if rep.Activity == nil {
		rep.Activity = []catalog.ListenActivityDay{}
	}
	if rep.TopListened == nil {
		rep.TopListened = []catalog.TopListenedSong{}
	}
	return &rep, nil
}

type songInfo struct {
	title  string
	artist string
}

// MergeCombined joins listen, repeat and search counts by song id.
// Titles and artists come from the top-listened report first, then from
// activity. Songs nobody listened to are dropped.
func MergeCombined(
	topListened []catalog.TopListenedSong,
	activity []catalog.ListenActivityDay,
	listens, repeats, searches []catalog.SongMetric,
) []CombinedRow {
	info := make(map[string]songInfo)
	for _, s := range topListened {
		info[s.Key()] = songInfo{title: s.Title, artist: s.DisplayArtist()}
	}
	for _, day := range activity {
		for _, s := range day.Songs {
			if _, ok := info[s.ID]; !ok {
				info[s.ID] = songInfo{title: s.Title, artist: s.DisplayArtist()}
			}
		}
	}

	var rows []*CombinedRow
	byID := make(map[string]*CombinedRow)
	row := func(id string) *CombinedRow {
		if r, ok := byID[id]; ok {
			return r
		}
		r := &CombinedRow{SongID: id, Title: UnknownTitle, Artist: UnknownArtist}
		if i, ok := info[id]; ok {
			if i.title != "" {
				r.Title = i.title
			}
			if i.artist != "" {
				r.Artist = i.artist
			}
		}
		byID[id] = r
		rows = append(rows, r)
		return r
	}

	for _, m := range listens {
		row(m.ID).Listen += m.Count
	}
	for _, m := range repeats {
		row(m.ID).Repeat += m.RepeatTotal
	}
	for _, m := range searches {
		row(m.ID).Search += m.SearchCount
	}

	out := make([]CombinedRow, 0, len(rows))
	for _, r := range rows {
		if r.Listen == 0 {
			continue
		}
		r.Total = r.Listen + r.Repeat + r.Search
		out = append(out, *r)
	}
	slices.SortStableFunc(out, func(a, b CombinedRow) int {
		return cmp.Compare(b.Total, a.Total)
	})
	return out
}

// ActivityChart groups activity songs by title across days.
func ActivityChart(activity []catalog.ListenActivityDay) []ChartRow {
	var rows []*ChartRow
	byTitle := make(map[string]*ChartRow)
	for _, day := range activity {
		for _, s := range day.Songs {
			r, ok := byTitle[s.Title]
			if !ok {
				r = &ChartRow{Title: s.Title, Artist: s.DisplayArtist(), Image: s.Cover}
				if r.Image == "" {
					r.Image = PlaceholderCover
				}
				byTitle[s.Title] = r
				rows = append(rows, r)
			}
			if s.Count > 0 {
				r.Count += s.Count
			} else {
				r.Count++
			}
		}
	}

	out := make([]ChartRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	slices.SortStableFunc(out, func(a, b ChartRow) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return truncate(out)
}

// FollowDashboard fetches the follow reports in parallel.
func FollowDashboard(ctx context.Context, src Source) (*FollowReport, error) {
	var rep FollowReport

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rep.TotalFollowers, err = src.TotalFollowers(ctx)
		return err
	})
	g.Go(func() (err error) {
		rep.UniqueFollowers, err = src.UniqueFollowers(ctx)
		return err
	})
	g.Go(func() (err error) {
		rep.Users, err = src.FollowedUsers(ctx)
		return err
	})
	g.Go(func() (err error) {
		rep.Artists, err = src.FollowedArtists(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("follow dashboard: %w", err)
	}

	if rep.Users == nil {
		rep.Users = []catalog.FollowedUser{}
	}
	if rep.Artists == nil {
		rep.Artists = []catalog.FollowedArtist{}
	}
	rep.Chart = FollowerChart(rep.Artists)
	return &rep, nil
}

// FollowerChart sorts artists by follower count, top ChartSize.
func FollowerChart(artists []catalog.FollowedArtist) []catalog.FollowedArtist {
	out := slices.Clone(artists)
	if out == nil {
		out = []catalog.FollowedArtist{}
	}
	slices.SortStableFunc(out, func(a, b catalog.FollowedArtist) int {
		return cmp.Compare(b.FollowerCount, a.FollowerCount)
	})
	return truncate(out)
}

func truncate[T any](rows []T) []T {
	if len(rows) > ChartSize {
		return rows[:ChartSize]
	}
	return rows
}
