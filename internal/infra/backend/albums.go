package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"resty.dev/v3"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
)

// Albums lists public albums.
func (c *Client) Albums(ctx context.Context) ([]catalog.Album, error) {
	albums, _, err := getList[catalog.Album](ctx, c, "/api/albums", "albums", nil)
	if err != nil {
		return nil, fmt.Errorf("list albums: %w", err)
	}
	return albums, nil
}

// AlbumsOrEmpty is Albums that logs failures and returns an empty list.
func (c *Client) AlbumsOrEmpty(ctx context.Context) []catalog.Album {
	albums, err := c.Albums(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Falling back to empty album list")
		return []catalog.Album{}
	}
	return albums
}

// Album fetches one album. A missing album yields ErrNotFound.
func (c *Client) Album(ctx context.Context, id string) (*catalog.Album, error) {
	var a catalog.Album
	err := c.get(ctx, "/api/albums/{id}", func(r *resty.Request) {
		r.SetPathParam("id", id)
	}, &a)
	if err != nil {
		return nil, fmt.Errorf("get album %s: %w", id, err)
	}
	return &a, nil
}

// AlbumsByArtist lists the albums of one artist.
func (c *Client) AlbumsByArtist(ctx context.Context, artistID string) ([]catalog.Album, error) {
	albums, err := c.Albums(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Album, 0, len(albums))
	for _, a := range albums {
		if a.ArtistID == artistID {
			out = append(out, a)
		}
	}
	return out, nil
}

// AlbumsIncludingSong lists the albums that contain a song.
func (c *Client) AlbumsIncludingSong(ctx context.Context, songID string) ([]catalog.Album, error) {
	albums, err := c.Albums(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Album, 0)
	for _, a := range albums {
		if a.HasSong(songID) {
			out = append(out, a)
		}
	}
	return out, nil
}

// ManagedAlbums lists albums in the management API.
func (c *Client) ManagedAlbums(ctx context.Context, scope Scope) ([]catalog.Album, int, error) {
	albums, total, err := getList[catalog.Album](ctx, c, string(scope)+"/albums", "albums", nil)
	if err != nil {
		return nil, 0, fmt.Errorf("list managed albums: %w", err)
	}
	return albums, total, nil
}

// SaveAlbum creates the album when id is empty and updates it otherwise.
func (c *Client) SaveAlbum(ctx context.Context, scope Scope, id string, f catalog.AlbumForm) (string, error) {
	if id == "" {
		var res created
		if err := c.send(ctx, http.MethodPost, string(scope)+"/albums", f, &res); err != nil {
			return "", fmt.Errorf("create album: %w", err)
		}
		return res.ID, nil
	}
	if err := c.send(ctx, http.MethodPut, resource(string(scope)+"/albums", id), f, nil); err != nil {
		return "", fmt.Errorf("update album %s: %w", id, err)
	}
	return id, nil
}

// DeleteAlbum removes an album.
func (c *Client) DeleteAlbum(ctx context.Context, scope Scope, id string) error {
	if err := c.send(ctx, http.MethodDelete, resource(string(scope)+"/albums", id), nil, nil); err != nil {
		return fmt.Errorf("delete album %s: %w", id, err)
	}
	return nil
}
