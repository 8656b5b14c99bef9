package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"resty.dev/v3"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
)

// ErrBanned is returned by SignIn for banned accounts.
var ErrBanned = errors.New("account is banned")

// SignIn exchanges credentials for an access token and the user profile.
func (c *Client) SignIn(ctx context.Context, email, password string) (string, *catalog.User, error) {
	var res struct {
		AccessToken string `json:"access_token"`
	}
	err := c.do(ctx, http.MethodPost, "/user/login", func(r *resty.Request) {
		r.SetFormData(map[string]string{"username": email, "password": password})
	}, &res)
	if err != nil {
		return "", nil, fmt.Errorf("sign in: %w", err)
	}
	if res.AccessToken == "" {
		return "", nil, fmt.Errorf("sign in: empty access token")
	}

	user, err := c.meWithToken(ctx, res.AccessToken)
	if err != nil {
		return "", nil, fmt.Errorf("sign in: %w", err)
	}
	if user.Banned {
		return "", nil, ErrBanned
	}
	return res.AccessToken, user, nil
}

// Register creates an account. The user signs in afterwards.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	body := map[string]string{"name": name, "email": email, "password": password}
	if err := c.send(ctx, http.MethodPost, "/user/register", body, nil); err != nil {
		return fmt.Errorf("register %s: %w", email, err)
	}
	return nil
}

// Me returns the profile of the token owner.
func (c *Client) Me(ctx context.Context) (*catalog.User, error) {
	var u catalog.User
	if err := c.get(ctx, "/user/me", nil, &u); err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	return &u, nil
}

func (c *Client) meWithToken(ctx context.Context, token string) (*catalog.User, error) {
	var u catalog.User
	err := c.get(ctx, "/user/me", func(r *resty.Request) {
		r.SetAuthToken(token)
	}, &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ToggleLike flips the like state of a song and reports the new state.
func (c *Client) ToggleLike(ctx context.Context, songID string) (bool, error) {
	var res struct {
		Liked bool `json:"liked"`
	}
	if err := c.send(ctx, http.MethodPost, resource("/user/me/toggle-like", songID), nil, &res); err != nil {
		return false, fmt.Errorf("toggle like %s: %w", songID, err)
	}
	return res.Liked, nil
}

// LikedSongs lists the songs the user liked.
func (c *Client) LikedSongs(ctx context.Context) ([]catalog.Song, error) {
	songs, _, err := getList[catalog.Song](ctx, c, "/user/me/liked-songs", "songs", nil)
	if err != nil {
		return nil, fmt.Errorf("liked songs: %w", err)
	}
	return songs, nil
}

// FollowingArtists lists the artists the user follows.
func (c *Client) FollowingArtists(ctx context.Context) ([]catalog.Artist, error) {
	artists, _, err := getList[catalog.Artist](ctx, c, "/user/me/following", "artists", nil)
	if err != nil {
		return nil, fmt.Errorf("following artists: %w", err)
	}
	return artists, nil
}

// LikeCount returns the public like count of a song.
func (c *Client) LikeCount(ctx context.Context, songID string) (int, error) {
	var res struct {
		Count int `json:"count"`
	}
	if err := c.get(ctx, resource("/api/likes/count", songID), nil, &res); err != nil {
		return 0, fmt.Errorf("like count %s: %w", songID, err)
	}
	return res.Count, nil
}

// RecordFullListen stores a listen that passed the full-listen threshold.
func (c *Client) RecordFullListen(ctx context.Context, userID, songID string, at time.Time) error {
	body := map[string]string{
		"user_id":     userID,
		"song_id":     songID,
		"listened_at": at.UTC().Format(time.RFC3339Nano),
	}
	if err := c.send(ctx, http.MethodPost, "/user/history/full-listen", body, nil); err != nil {
		return fmt.Errorf("record full listen %s: %w", songID, err)
	}
	return nil
}

// RecordSearch stores that a user picked a song from search results.
func (c *Client) RecordSearch(ctx context.Context, userID, songID string, at time.Time) error {
	body := map[string]string{
		"user_id":     userID,
		"song_id":     songID,
		"searched_at": at.UTC().Format(time.RFC3339Nano),
	}
	if err := c.send(ctx, http.MethodPost, "/user/history/search", body, nil); err != nil {
		return fmt.Errorf("record search %s: %w", songID, err)
	}
	return nil
}
