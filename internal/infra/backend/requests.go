package backend

import (
	"context"
	"fmt"
	"net/http"

	"resty.dev/v3"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
)

// ArtistApplication is the body a user submits to become an artist.
type ArtistApplication struct {
	Name        string   `json:"name"`
	Bio         string   `json:"bio,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Email       string   `json:"email,omitempty"`
	SocialLinks []string `json:"social_links"`
}

type approveBody struct {
	MatchedArtistID *string `json:"matched_artist_id"`
}

// ArtistRequests lists artist requests, optionally filtered by status.
func (c *Client) ArtistRequests(ctx context.Context, status catalog.RequestStatus) ([]catalog.ArtistRequest, error) {
	reqs, _, err := getList[catalog.ArtistRequest](ctx, c, "/api/artist_requests", "requests", func(r *resty.Request) {
		if status != "" {
			r.SetQueryParam("status", string(status))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("list artist requests: %w", err)
	}
	return reqs, nil
}

// SubmitArtistRequest files an application for the signed-in user.
func (c *Client) SubmitArtistRequest(ctx context.Context, a ArtistApplication) (*catalog.ArtistRequest, error) {
	if a.SocialLinks == nil {
		a.SocialLinks = []string{}
	}
	var out catalog.ArtistRequest
	if err := c.send(ctx, http.MethodPost, "/api/artist_requests", a, &out); err != nil {
		return nil, fmt.Errorf("submit artist request: %w", err)
	}
	return &out, nil
}

// ApproveArtistRequest approves a request, optionally linking it to an
// existing artist. An empty matchedArtistID sends null.
func (c *Client) ApproveArtistRequest(ctx context.Context, requestID, matchedArtistID string) error {
	body := approveBody{}
	if matchedArtistID != "" {
		body.MatchedArtistID = &matchedArtistID
	}
	if err := c.send(ctx, http.MethodPost, resource("/api/artist_requests", requestID, "approve"), body, nil); err != nil {
		return fmt.Errorf("approve artist request %s: %w", requestID, err)
	}
	return nil
}

// RejectArtistRequest rejects a request.
func (c *Client) RejectArtistRequest(ctx context.Context, requestID string) error {
	if err := c.send(ctx, http.MethodPost, resource("/api/artist_requests", requestID, "reject"), nil, nil); err != nil {
		return fmt.Errorf("reject artist request %s: %w", requestID, err)
	}
	return nil
}

// DeleteArtistRequest removes a request.
func (c *Client) DeleteArtistRequest(ctx context.Context, requestID string) error {
	if err := c.send(ctx, http.MethodDelete, resource("/api/artist_requests", requestID), nil, nil); err != nil {
		return fmt.Errorf("delete artist request %s: %w", requestID, err)
	}
	return nil
}
