// Package requests implements the admin review of artist applications.
package requests

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
)

var (
	// ErrNotAdmin is returned when a non-admin reviews a request.
	ErrNotAdmin = errors.New("only admins can review artist requests")
	// ErrUnknownRequest is returned for ids not in the pending list.
	ErrUnknownRequest = errors.New("unknown artist request")
)

// Backend is the artist request API plus what review needs around it.
type Backend interface {
	ArtistRequests(ctx context.Context, status catalog.RequestStatus) ([]catalog.ArtistRequest, error)
	ApproveArtistRequest(ctx context.Context, requestID, matchedArtistID string) error
	RejectArtistRequest(ctx context.Context, requestID string) error
	DeleteArtistRequest(ctx context.Context, requestID string) error
	CreateNotification(ctx context.Context, n catalog.NewNotification) (*catalog.Notification, error)
	Artists(ctx context.Context) ([]catalog.Artist, error)
}

// Notifier receives notifications created during review.
type Notifier interface {
	Add(n catalog.Notification)
}

// Candidate is an existing artist an approved request can be linked to.
type Candidate struct {
	Value  string         `json:"value"`
	Label  string         `json:"label"`
	Artist catalog.Artist `json:"artist"`
}

// Review holds the requests awaiting a decision.
type Review struct {
	mu       sync.Mutex
	pending  []catalog.ArtistRequest
	backend  Backend
	notifier Notifier
}

// NewReview creates a review. notifier may be nil.
func NewReview(b Backend, n Notifier) *Review {
	return &Review{backend: b, notifier: n}
}

// Pending fetches the request list and caches it.
func (r *Review) Pending(ctx context.Context) ([]catalog.ArtistRequest, error) {
	reqs, err := r.backend.ArtistRequests(ctx, "")
	if err != nil {
		return nil, err
	}
	if reqs == nil {
		reqs = []catalog.ArtistRequest{}
	}
	r.mu.Lock()
	r.pending = slices.Clone(reqs)
	r.mu.Unlock()
	return reqs, nil
}

// find looks up id in the cache, refreshing it once on a miss.
func (r *Review) find(ctx context.Context, id string) (catalog.ArtistRequest, error) {
	if req, ok := r.cached(id); ok {
		return req, nil
	}
	if _, err := r.Pending(ctx); err != nil {
		return catalog.ArtistRequest{}, err
	}
	if req, ok := r.cached(id); ok {
		return req, nil
	}
	return catalog.ArtistRequest{}, fmt.Errorf("%s: %w", id, ErrUnknownRequest)
}

func (r *Review) cached(id string) (catalog.ArtistRequest, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.IndexFunc(r.pending, func(req catalog.ArtistRequest) bool { return req.ID == id })
	if i < 0 {
		return catalog.ArtistRequest{}, false
	}
	return r.pending[i], true
}

func (r *Review) drop(id string) {
	r.mu.Lock()
	r.pending = slices.DeleteFunc(r.pending, func(req catalog.ArtistRequest) bool { return req.ID == id })
	r.mu.Unlock()
}

// Approve accepts a request, optionally linking it to an existing artist,
// and notifies both the applicant and the admin.
func (r *Review) Approve(ctx context.Context, admin *catalog.User, requestID, matchedArtistID string) error {
	if admin == nil || !admin.IsAdmin() {
		return ErrNotAdmin
	}
	req, err := r.find(ctx, requestID)
	if err != nil {
		return err
	}
	if err := r.backend.ApproveArtistRequest(ctx, requestID, matchedArtistID); err != nil {
		return err
	}

	err = r.notify(ctx,
		catalog.NewNotification{
			UserID:  req.UserID,
			Title:   "Artist request approved",
			Message: "Your artist application has been approved!",
			Type:    catalog.NotificationArtistRequest,
		},
		catalog.NewNotification{
			UserID:  admin.ID,
			Title:   "Artist approved",
			Message: "You approved the artist request from " + req.Name,
			Type:    catalog.NotificationAdminAction,
		},
	)
	r.drop(requestID)
	log.Info().Str("request", requestID).Str("matched_artist", matchedArtistID).Msg("Artist request approved")
	return err
}

// Reject declines a request and notifies both the applicant and the admin.
func (r *Review) Reject(ctx context.Context, admin *catalog.User, requestID string) error {
	if admin == nil || !admin.IsAdmin() {
		return ErrNotAdmin
	}
	req, err := r.find(ctx, requestID)
	if err != nil {
		return err
	}
	if err := r.backend.RejectArtistRequest(ctx, requestID); err != nil {
		return err
	}

	err = r.notify(ctx,
		catalog.NewNotification{
			UserID:  req.UserID,
			Title:   "Artist request rejected",
			Message: "Your artist application was rejected.",
			Type:    catalog.NotificationArtistRequest,
		},
		catalog.NewNotification{
			UserID:  admin.ID,
			Title:   "Artist rejected",
			Message: "You rejected the artist request from " + req.Name,
			Type:    catalog.NotificationAdminAction,
		},
	)
	r.drop(requestID)
	log.Info().Str("request", requestID).Msg("Artist request rejected")
	return err
}

// notify creates each notification in order and stops at the first
// failure.
func (r *Review) notify(ctx context.Context, notes ...catalog.NewNotification) error {
	for _, n := range notes {
		saved, err := r.backend.CreateNotification(ctx, n)
		if err != nil {
			return fmt.Errorf("notification failed: %w", err)
		}
		if r.notifier != nil && saved != nil {
			r.notifier.Add(*saved)
		}
	}
	return nil
}

// Delete removes a request without a decision.
func (r *Review) Delete(ctx context.Context, requestID string) error {
	if err := r.backend.DeleteArtistRequest(ctx, requestID); err != nil {
		return err
	}
	r.drop(requestID)
	return nil
}

// MatchCandidates lists existing artists as select options.
func (r *Review) MatchCandidates(ctx context.Context) ([]Candidate, error) {
	artists, err := r.backend.Artists(ctx)
	if err != nil {
		return nil, fmt.Errorf("match candidates: %w", err)
	}
	out := make([]Candidate, 0, len(artists))
	for _, a := range artists {
		out = append(out, Candidate{Value: a.ID, Label: CandidateLabel(a), Artist: a})
	}
	return out, nil
}

// CandidateLabel renders "name (genre, genre)" or "name (N/A)".
func CandidateLabel(a catalog.Artist) string {
	genres := "N/A"
	if len(a.Genres) > 0 {
		genres = strings.Join(a.Genres, ", ")
	}
	return fmt.Sprintf("%s (%s)", a.Name, genres)
}
