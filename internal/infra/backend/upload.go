package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"resty.dev/v3"
)

// MediaField is the multipart field an upload is sent under.
type MediaField string

const (
	MediaCoverArt MediaField = "cover_art"
	MediaAudio    MediaField = "audio"
	MediaImage    MediaField = "image"
)

// UploadResult holds the hosted URLs of uploaded media.
type UploadResult struct {
	CoverArt string `json:"coverArt,omitempty"`
	AudioURL string `json:"audioUrl,omitempty"`
	Image    string `json:"image,omitempty"`
}

// URL returns the hosted URL matching field.
func (u UploadResult) URL(field MediaField) string {
	switch field {
	case MediaCoverArt:
		return u.CoverArt
	case MediaAudio:
		return u.AudioURL
	case MediaImage:
		return u.Image
	}
	return ""
}

// UploadMedia sends a file as multipart form data. Admins upload to the
// shared endpoint, artists to their song upload endpoint.
func (c *Client) UploadMedia(ctx context.Context, scope Scope, field MediaField, fileName string, r io.Reader) (*UploadResult, error) {
	path := string(scope) + "/upload"
	if scope == ArtistScope {
		path = string(scope) + "/songs/upload"
	}

	var res UploadResult
	err := c.do(ctx, http.MethodPost, path, func(req *resty.Request) {
		req.SetFileReader(string(field), fileName, r)
	}, &res)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", field, err)
	}
	return &res, nil
}
