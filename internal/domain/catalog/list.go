package catalog

import "strings"

// DefaultPageSize is the row count of the admin tables.
const DefaultPageSize = 10

// Page is one page of a filtered list.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	Total      int `json:"total"`
}

// Paginate returns the requested page of items. The page number is clamped
// to [1, TotalPages] and TotalPages is never below 1.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(items)
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}
	page = max(1, min(page, pages))

	start := (page - 1) * size
	end := min(start+size, total)
	out := make([]T, 0, end-start)
	out = append(out, items[start:end]...)

	return Page[T]{Items: out, Page: page, TotalPages: pages, Total: total}
}

// FilterSongs keeps songs whose title, artist or genres contain query.
func FilterSongs(songs []Song, query string) []Song {
	return filter(songs, query, func(s Song) []string {
		return append([]string{s.Title, s.Artist}, s.Genre...)
	})
}

// FilterArtists keeps artists whose name or genres contain query.
func FilterArtists(artists []Artist, query string) []Artist {
	return filter(artists, query, func(a Artist) []string {
		return append([]string{a.Name}, a.Genres...)
	})
}

// FilterAlbums keeps albums whose title or genres contain query.
func FilterAlbums(albums []Album, query string) []Album {
	return filter(albums, query, func(a Album) []string {
		return append([]string{a.Title}, a.Genres...)
	})
}

// FilterPlaylists keeps playlists whose title or description contain query.
func FilterPlaylists(playlists []Playlist, query string) []Playlist {
	return filter(playlists, query, func(p Playlist) []string {
		return []string{p.Title, p.Description}
	})
}

func filter[T any](items []T, query string, fields func(T) []string) []T {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		for _, f := range fields(item) {
			if strings.Contains(strings.ToLower(f), q) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}
