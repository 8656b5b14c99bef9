package backend

import (
	"context"
	"fmt"
	"net/http"

	"resty.dev/v3"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
)

// NewPlaylist is the body for creating a playlist.
type NewPlaylist struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	IsPublic    bool     `json:"isPublic"`
	Creator     string   `json:"creator"`
	SongIDs     []string `json:"songIds"`
}

// PlaylistUpdate patches a playlist. Nil fields are left unchanged.
type PlaylistUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	IsPublic    *bool   `json:"isPublic,omitempty"`
}

type songIDBody struct {
	SongID string `json:"songId"`
}

// Playlists lists playlists, optionally only those of one creator.
func (c *Client) Playlists(ctx context.Context, creator string) ([]catalog.Playlist, error) {
	lists, _, err := getList[catalog.Playlist](ctx, c, "/api/playlists", "playlists", func(r *resty.Request) {
		if creator != "" {
			r.SetQueryParam("creator", creator)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("list playlists: %w", err)
	}
	return lists, nil
}

// PublicPlaylists lists playlists flagged public.
func (c *Client) PublicPlaylists(ctx context.Context) ([]catalog.Playlist, error) {
	lists, err := c.Playlists(ctx, "")
	if err != nil {
		return nil, err
	}
	out := make([]catalog.Playlist, 0, len(lists))
	for _, p := range lists {
		if p.IsPublic {
			out = append(out, p)
		}
	}
	return out, nil
}

// Playlist fetches one playlist by id or slug.
func (c *Client) Playlist(ctx context.Context, id string) (*catalog.Playlist, error) {
	var p catalog.Playlist
	err := c.get(ctx, "/api/playlists/{id}", func(r *resty.Request) {
		r.SetPathParam("id", id)
	}, &p)
	if err != nil {
		return nil, fmt.Errorf("get playlist %s: %w", id, err)
	}
	return &p, nil
}

// CreatePlaylist creates a playlist and returns its id.
func (c *Client) CreatePlaylist(ctx context.Context, p NewPlaylist) (string, error) {
	if p.SongIDs == nil {
		p.SongIDs = []string{}
	}
	var res created
	if err := c.send(ctx, http.MethodPost, "/api/playlists", p, &res); err != nil {
		return "", fmt.Errorf("create playlist: %w", err)
	}
	return res.ID, nil
}

// UpdatePlaylist patches a playlist and returns the stored result.
func (c *Client) UpdatePlaylist(ctx context.Context, id string, u PlaylistUpdate) (*catalog.Playlist, error) {
	var p catalog.Playlist
	if err := c.send(ctx, http.MethodPatch, resource("/api/playlists", id), u, &p); err != nil {
		return nil, fmt.Errorf("update playlist %s: %w", id, err)
	}
	return &p, nil
}

// AddSongToPlaylist appends a song to a playlist.
func (c *Client) AddSongToPlaylist(ctx context.Context, playlistID, songID string) error {
	err := c.send(ctx, http.MethodPatch, resource("/api/playlists", playlistID, "add-song"), songIDBody{SongID: songID}, nil)
	if err != nil {
		return fmt.Errorf("add song %s to playlist %s: %w", songID, playlistID, err)
	}
	return nil
}

// RemoveSongFromPlaylist drops a song from a playlist.
func (c *Client) RemoveSongFromPlaylist(ctx context.Context, playlistID, songID string) error {
	err := c.send(ctx, http.MethodDelete, resource("/api", playlistID, "remove-song"), songIDBody{SongID: songID}, nil)
	if err != nil {
		return fmt.Errorf("remove song %s from playlist %s: %w", songID, playlistID, err)
	}
	return nil
}

// DeletePlaylist removes a playlist.
func (c *Client) DeletePlaylist(ctx context.Context, id string) error {
	if err := c.send(ctx, http.MethodDelete, resource("/api/playlists", id), nil, nil); err != nil {
		return fmt.Errorf("delete playlist %s: %w", id, err)
	}
	return nil
}
