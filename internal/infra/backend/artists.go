package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"resty.dev/v3"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
)

// Artists lists public artists.
func (c *Client) Artists(ctx context.Context) ([]catalog.Artist, error) {
	artists, _, err := getList[catalog.Artist](ctx, c, "/api/artists", "artists", nil)
	if err != nil {
		return nil, fmt.Errorf("list artists: %w", err)
	}
	return artists, nil
}

// ArtistsOrEmpty is Artists that logs failures and returns an empty list.
func (c *Client) ArtistsOrEmpty(ctx context.Context) []catalog.Artist {
	artists, err := c.Artists(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Falling back to empty artist list")
		return []catalog.Artist{}
	}
	return artists
}

// Artist fetches one artist.
func (c *Client) Artist(ctx context.Context, id string) (*catalog.Artist, error) {
	var a catalog.Artist
	err := c.get(ctx, "/api/artists/{id}", func(r *resty.Request) {
		r.SetPathParam("id", id)
	}, &a)
	if err != nil {
		return nil, fmt.Errorf("get artist %s: %w", id, err)
	}
	return &a, nil
}

// SimilarArtists searches artists by name.
func (c *Client) SimilarArtists(ctx context.Context, query string) ([]catalog.Artist, error) {
	artists, _, err := getList[catalog.Artist](ctx, c, "/api/artists/similar", "artists", func(r *resty.Request) {
		r.SetQueryParam("query", query)
	})
	if err != nil {
		return nil, fmt.Errorf("similar artists: %w", err)
	}
	return artists, nil
}

// FollowArtist follows an artist as the signed-in user.
func (c *Client) FollowArtist(ctx context.Context, id string) error {
	if err := c.send(ctx, http.MethodPost, resource("/api/artists", id, "follow"), nil, nil); err != nil {
		return fmt.Errorf("follow artist %s: %w", id, err)
	}
	return nil
}

// UnfollowArtist stops following an artist.
func (c *Client) UnfollowArtist(ctx context.Context, id string) error {
	if err := c.send(ctx, http.MethodPost, resource("/api/artists", id, "unfollow"), nil, nil); err != nil {
		return fmt.Errorf("unfollow artist %s: %w", id, err)
	}
	return nil
}

// ManagedArtists lists artists in the admin API.
func (c *Client) ManagedArtists(ctx context.Context) ([]catalog.Artist, int, error) {
	artists, total, err := getList[catalog.Artist](ctx, c, string(AdminScope)+"/artists", "artists", nil)
	if err != nil {
		return nil, 0, fmt.Errorf("list managed artists: %w", err)
	}
	return artists, total, nil
}

// ManagedArtist fetches one artist from the admin API.
func (c *Client) ManagedArtist(ctx context.Context, id string) (*catalog.Artist, error) {
	var a catalog.Artist
	err := c.get(ctx, string(AdminScope)+"/artists/{id}", func(r *resty.Request) {
		r.SetPathParam("id", id)
	}, &a)
	if err != nil {
		return nil, fmt.Errorf("get managed artist %s: %w", id, err)
	}
	return &a, nil
}

// SaveArtist creates the artist when id is empty and updates it otherwise.
func (c *Client) SaveArtist(ctx context.Context, id string, f catalog.ArtistForm) (string, error) {
	if id == "" {
		var res created
		if err := c.send(ctx, http.MethodPost, string(AdminScope)+"/artists", f, &res); err != nil {
			return "", fmt.Errorf("create artist: %w", err)
		}
		return res.ID, nil
	}
	if err := c.send(ctx, http.MethodPut, resource(string(AdminScope)+"/artists", id), f, nil); err != nil {
		return "", fmt.Errorf("update artist %s: %w", id, err)
	}
	return id, nil
}

// UpdateArtistImage replaces only the artist's image.
func (c *Client) UpdateArtistImage(ctx context.Context, id, image string) error {
	body := map[string]string{"image": image}
	if err := c.send(ctx, http.MethodPut, resource(string(AdminScope)+"/artists", id), body, nil); err != nil {
		return fmt.Errorf("update artist %s image: %w", id, err)
	}
	return nil
}

// DeleteArtist removes an artist.
func (c *Client) DeleteArtist(ctx context.Context, id string) error {
	if err := c.send(ctx, http.MethodDelete, resource(string(AdminScope)+"/artists", id), nil, nil); err != nil {
		return fmt.Errorf("delete artist %s: %w", id, err)
	}
	return nil
}
