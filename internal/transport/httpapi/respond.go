package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/edumarques81/vibesync-player/internal/domain/auth"
	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
	"github.com/edumarques81/vibesync-player/internal/domain/chat"
	"github.com/edumarques81/vibesync-player/internal/domain/notify"
	"github.com/edumarques81/vibesync-player/internal/domain/requests"
	"github.com/edumarques81/vibesync-player/internal/infra/backend"
)

var (
	errUnavailable = errors.New("service unavailable")
	errSignedOut   = errors.New("not signed in")
	errBadRequest  = errors.New("bad request")
	errForbidden   = errors.New("forbidden")
)

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	}
	body := errorBody{Error: err.Error()}
	var fields catalog.FieldErrors
	if errors.As(err, &fields) {
		body.Fields = fields
	}
	writeJSON(w, status, body)
}

// statusFor maps domain and backend errors to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, catalog.ErrInvalidForm),
		errors.Is(err, auth.ErrMissingCredentials):
		return http.StatusBadRequest
	case errors.Is(err, errSignedOut),
		errors.Is(err, auth.ErrSignedOut),
		errors.Is(err, backend.ErrUnauthorized),
		errors.Is(err, backend.ErrNotSignedIn):
		return http.StatusUnauthorized
	case errors.Is(err, errForbidden),
		errors.Is(err, requests.ErrNotAdmin),
		errors.Is(err, auth.ErrBanned),
		errors.Is(err, backend.ErrBanned),
		errors.Is(err, backend.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, requests.ErrUnknownRequest),
		errors.Is(err, notify.ErrUnknownNotification),
		errors.Is(err, backend.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errUnavailable):
		return http.StatusServiceUnavailable
	}
	// Other client errors from the backend, such as a taken email, pass
	// through. Everything else the backend does wrong is a bad gateway.
	switch st := backend.StatusOf(err); {
	case st >= http.StatusBadRequest && st < http.StatusInternalServerError:
		return st
	case st != 0:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func queryPage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		return 1
	}
	return page
}
