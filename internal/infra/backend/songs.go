package backend

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"resty.dev/v3"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
)

// maxParallelFetches bounds per-id fan-out requests.
const maxParallelFetches = 8

// Scope selects the management API for a role.
type Scope string

const (
	// AdminScope manages every resource.
	AdminScope Scope = "/api/admin"

	// ArtistScope manages the signed-in artist's own resources.
	ArtistScope Scope = "/api/artist"
)

// SongQuery filters the public song list.
type SongQuery struct {
	Region   string
	Sort     string
	Limit    int
	ArtistID string
}

func (q SongQuery) apply(r *resty.Request) {
	if q.Region != "" {
		r.SetQueryParam("region", q.Region)
	}
	if q.Sort != "" {
		r.SetQueryParam("sort", q.Sort)
	}
	if q.Limit > 0 {
		r.SetQueryParam("limit", strconv.Itoa(q.Limit))
	}
	if q.ArtistID != "" {
		r.SetQueryParam("artistId", q.ArtistID)
	}
}

// Songs lists public songs.
func (c *Client) Songs(ctx context.Context, q SongQuery) ([]catalog.Song, error) {
	songs, _, err := getList[catalog.Song](ctx, c, "/api/songs", "songs", q.apply)
	if err != nil {
		return nil, fmt.Errorf("list songs: %w", err)
	}
	return songs, nil
}

// SongsOrEmpty is Songs that logs failures and returns an empty list.
func (c *Client) SongsOrEmpty(ctx context.Context, q SongQuery) []catalog.Song {
	songs, err := c.Songs(ctx, q)
	if err != nil {
		log.Warn().Err(err).Msg("Falling back to empty song list")
		return []catalog.Song{}
	}
	return songs
}

// Song fetches one song.
func (c *Client) Song(ctx context.Context, id string) (*catalog.Song, error) {
	var s catalog.Song
	err := c.get(ctx, "/api/songs/{id}", func(r *resty.Request) {
		r.SetPathParam("id", id)
	}, &s)
	if err != nil {
		return nil, fmt.Errorf("get song %s: %w", id, err)
	}
	return &s, nil
}

// SongsByIDs fetches songs in parallel, preserving the order of ids.
// Any failure fails the whole call.
func (c *Client) SongsByIDs(ctx context.Context, ids []string) ([]catalog.Song, error) {
	out := make([]catalog.Song, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetches)
	for i, id := range ids {
		g.Go(func() error {
			s, err := c.Song(gctx, id)
			if err != nil {
				return err
			}
			out[i] = *s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// SongsByArtist lists the songs credited to an artist.
func (c *Client) SongsByArtist(ctx context.Context, artistID string) ([]catalog.Song, error) {
	return c.Songs(ctx, SongQuery{ArtistID: artistID})
}

// AlbumSongs lists the songs on an album.
func (c *Client) AlbumSongs(ctx context.Context, albumID string) ([]catalog.Song, error) {
	songs, _, err := getList[catalog.Song](ctx, c, "/api/albums/{id}/songs", "songs", func(r *resty.Request) {
		r.SetPathParam("id", albumID)
	})
	if err != nil {
		return nil, fmt.Errorf("album %s songs: %w", albumID, err)
	}
	return songs, nil
}

// PlaylistSongs lists the songs in a playlist.
func (c *Client) PlaylistSongs(ctx context.Context, playlistID string) ([]catalog.Song, error) {
	songs, _, err := getList[catalog.Song](ctx, c, "/api/playlists/{id}/songs", "songs", func(r *resty.Request) {
		r.SetPathParam("id", playlistID)
	})
	if err != nil {
		return nil, fmt.Errorf("playlist %s songs: %w", playlistID, err)
	}
	return songs, nil
}

// ContextSongs loads the queue for a playback context kind ("album",
// "playlist" or "artist"). Other kinds yield an empty list.
func (c *Client) ContextSongs(ctx context.Context, kind, id string) ([]catalog.Song, error) {
	switch kind {
	case "album":
		return c.AlbumSongs(ctx, id)
	case "playlist":
		return c.PlaylistSongs(ctx, id)
	case "artist":
		return c.SongsByArtist(ctx, id)
	}
	return []catalog.Song{}, nil
}

// ManagedSongs lists songs in the management API.
func (c *Client) ManagedSongs(ctx context.Context, scope Scope, skip, limit int) ([]catalog.Song, int, error) {
	songs, total, err := getList[catalog.Song](ctx, c, string(scope)+"/songs", "songs", func(r *resty.Request) {
		r.SetQueryParam("skip", strconv.Itoa(skip))
		if limit > 0 {
			r.SetQueryParam("limit", strconv.Itoa(limit))
		}
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list managed songs: %w", err)
	}
	return songs, total, nil
}

// ManagedSong fetches one song from the management API.
func (c *Client) ManagedSong(ctx context.Context, scope Scope, id string) (*catalog.Song, error) {
	var s catalog.Song
	err := c.get(ctx, string(scope)+"/songs/{id}", func(r *resty.Request) {
		r.SetPathParam("id", id)
	}, &s)
	if err != nil {
		return nil, fmt.Errorf("get managed song %s: %w", id, err)
	}
	return &s, nil
}

// SaveSong creates the song when id is empty and updates it otherwise.
// It returns the song id.
func (c *Client) SaveSong(ctx context.Context, scope Scope, id string, p catalog.SongPayload) (string, error) {
	if id == "" {
		var res created
		if err := c.send(ctx, http.MethodPost, string(scope)+"/songs", p, &res); err != nil {
			return "", fmt.Errorf("create song: %w", err)
		}
		return res.ID, nil
	}
	if err := c.send(ctx, http.MethodPut, resource(string(scope)+"/songs", id), p, nil); err != nil {
		return "", fmt.Errorf("update song %s: %w", id, err)
	}
	return id, nil
}

// DeleteSong removes a song.
func (c *Client) DeleteSong(ctx context.Context, scope Scope, id string) error {
	if err := c.send(ctx, http.MethodDelete, resource(string(scope)+"/songs", id), nil, nil); err != nil {
		return fmt.Errorf("delete song %s: %w", id, err)
	}
	return nil
}
