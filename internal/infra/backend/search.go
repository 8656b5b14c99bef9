package backend

import (
	"context"
	"fmt"
	"strings"

	"resty.dev/v3"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
)

// SearchType narrows a search.
type SearchType string

const (
	SearchAll    SearchType = "all"
	SearchSong   SearchType = "song"
	SearchArtist SearchType = "artist"
	SearchAlbum  SearchType = "album"
)

// Search looks up songs, artists and albums. A blank keyword returns empty
// results without calling the backend.
func (c *Client) Search(ctx context.Context, keyword string, typ SearchType) (*catalog.SearchResult, error) {
	res := &catalog.SearchResult{Songs: []catalog.Song{}, Artists: []catalog.Artist{}, Albums: []catalog.Album{}}
	kw := strings.TrimSpace(keyword)
	if kw == "" {
		return res, nil
	}
	if typ == "" {
		typ = SearchAll
	}

	err := c.get(ctx, "/api/search", func(r *resty.Request) {
		r.SetQueryParam("query", kw).SetQueryParam("type", string(typ))
	}, res)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", kw, err)
	}
	res.Songs = nonNilSlice(res.Songs)
	res.Artists = nonNilSlice(res.Artists)
	res.Albums = nonNilSlice(res.Albums)
	return res, nil
}
