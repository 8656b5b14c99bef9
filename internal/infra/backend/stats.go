package backend

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"resty.dev/v3"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
)

const dateLayout = "2006-01-02"

func withLimit(limit int) func(*resty.Request) {
	return func(r *resty.Request) {
		if limit > 0 {
			r.SetQueryParam("limit", strconv.Itoa(limit))
		}
	}
}

// TotalListens returns the all-time listen count.
func (c *Client) TotalListens(ctx context.Context) (int, error) {
	var res struct {
		TotalListens int `json:"total_listens"`
	}
	if err := c.get(ctx, "/api/admin/statistics/total-listens", nil, &res); err != nil {
		return 0, fmt.Errorf("total listens: %w", err)
	}
	return res.TotalListens, nil
}

// ListenActivity returns per-day listen activity between two dates, inclusive.
func (c *Client) ListenActivity(ctx context.Context, from, to time.Time) ([]catalog.ListenActivityDay, error) {
	days, _, err := getList[catalog.ListenActivityDay](ctx, c, "/api/admin/statistics/listen-activity", "activity", func(r *resty.Request) {
		r.SetQueryParam("start_date", from.Format(dateLayout))
		r.SetQueryParam("end_date", to.Format(dateLayout))
	})
	if err != nil {
		return nil, fmt.Errorf("listen activity: %w", err)
	}
	return days, nil
}

// TopListenedSongs returns the admin top-listened report.
func (c *Client) TopListenedSongs(ctx context.Context, limit int) ([]catalog.TopListenedSong, error) {
	songs, _, err := getList[catalog.TopListenedSong](ctx, c, "/api/admin/statistics/top-listened-songs", "songs", withLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("top listened songs: %w", err)
	}
	return songs, nil
}

// TopSongs returns public listen counts per song.
func (c *Client) TopSongs(ctx context.Context, limit int) ([]catalog.SongMetric, error) {
	return c.metric(ctx, "/api/listens/top", limit)
}

// TopRepeatedSongs returns repeat totals per song.
func (c *Client) TopRepeatedSongs(ctx context.Context, limit int) ([]catalog.SongMetric, error) {
	return c.metric(ctx, "/api/listens/top-repeated", limit)
}

// TopSearchedSongs returns search counts per song.
func (c *Client) TopSearchedSongs(ctx context.Context, limit int) ([]catalog.SongMetric, error) {
	return c.metric(ctx, "/api/listens/top-searched", limit)
}

func (c *Client) metric(ctx context.Context, path string, limit int) ([]catalog.SongMetric, error) {
	rows, _, err := getList[catalog.SongMetric](ctx, c, path, "songs", withLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// TotalFollowers returns the number of follow relations.
func (c *Client) TotalFollowers(ctx context.Context) (int, error) {
	var res struct {
		TotalFollowers int `json:"totalFollowers"`
	}
	if err := c.get(ctx, "/api/admin/follow/total-followers", nil, &res); err != nil {
		return 0, fmt.Errorf("total followers: %w", err)
	}
	return res.TotalFollowers, nil
}

// UniqueFollowers returns the number of users following at least one artist.
func (c *Client) UniqueFollowers(ctx context.Context) (int, error) {
	var res struct {
		UniqueFollowers int `json:"uniqueFollowers"`
	}
	if err := c.get(ctx, "/api/admin/follow/unique-followers", nil, &res); err != nil {
		return 0, fmt.Errorf("unique followers: %w", err)
	}
	return res.UniqueFollowers, nil
}

// FollowedUsers lists users who follow artists.
func (c *Client) FollowedUsers(ctx context.Context) ([]catalog.FollowedUser, error) {
	users, _, err := getList[catalog.FollowedUser](ctx, c, "/api/admin/follow/followed-users", "users", nil)
	if err != nil {
		return nil, fmt.Errorf("followed users: %w", err)
	}
	return users, nil
}

// FollowedArtists lists artists with their follower counts.
func (c *Client) FollowedArtists(ctx context.Context) ([]catalog.FollowedArtist, error) {
	artists, _, err := getList[catalog.FollowedArtist](ctx, c, "/api/admin/follow/followed-artists", "artists", nil)
	if err != nil {
		return nil, fmt.Errorf("followed artists: %w", err)
	}
	return artists, nil
}
