// Package auth signs the local user in and out against the backend and
// keeps the stored session in step with the backend's view of the user.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/edumarques81/vibesync-player/internal/domain/catalog"
)

var (
	// ErrMissingCredentials is returned when email or password is blank.
	ErrMissingCredentials = errors.New("email and password are required")
	// ErrSignedOut is returned when no session is stored.
	ErrSignedOut = errors.New("not signed in")
	// ErrBanned is returned when the stored user has been banned.
	ErrBanned = errors.New("account is banned")
)

// WelcomeTitle is the title of the notification created on sign in.
const WelcomeTitle = "Welcome"

// Backend is the account API.
type Backend interface {
	SignIn(ctx context.Context, email, password string) (string, *catalog.User, error)
	Register(ctx context.Context, name, email, password string) error
	Me(ctx context.Context) (*catalog.User, error)
	CreateNotification(ctx context.Context, n catalog.NewNotification) (*catalog.Notification, error)
}

// Store persists the session locally.
type Store interface {
	Token() (string, error)
	SaveSession(token string, u *catalog.User) error
	ClearSession() error
	PreviousRole(userID string) (catalog.Role, bool, error)
	SavePreviousRole(userID string, role catalog.Role) error
	MarkRoleChanged(message string) error
}

// Player is reset on sign out so the next user starts idle.
type Player interface {
	ResetPlayer(ctx context.Context)
}

// Notifier receives the welcome notification.
type Notifier interface {
	Add(n catalog.Notification)
}

// Service owns the local session.
type Service struct {
	mu       sync.Mutex
	backend  Backend
	store    Store
	player   Player
	notifier Notifier
	rejected func(error) bool
}

// Option configures a Service.
type Option func(*Service)

// WithPlayer resets p on sign out.
func WithPlayer(p Player) Option {
	return func(s *Service) { s.player = p }
}

// WithNotifier adds the welcome notification to n.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithRejection decides which Me errors mean the token is no longer
// valid. By default every error does.
func WithRejection(fn func(error) bool) Option {
	return func(s *Service) { s.rejected = fn }
}

// NewService creates a Service.
func NewService(b Backend, st Store, opts ...Option) *Service {
	s := &Service{
		backend:  b,
		store:    st,
		rejected: func(error) bool { return true },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignIn exchanges credentials for a session, stores it and greets the
// user with a welcome notification.
func (s *Service) SignIn(ctx context.Context, email, password string) (*catalog.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	token, user, err := s.backend.SignIn(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if err := s.store.SaveSession(token, user); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.checkRole(user)

	log.Info().Str("user", user.ID).Str("role", string(user.Role)).Msg("Signed in")

	welcome := catalog.NewNotification{
		UserID:  user.ID,
		Title:   WelcomeTitle,
		Message: fmt.Sprintf("Welcome back, %s! You are logged in as %s.", user.Name, user.Role),
		Type:    catalog.NotificationLogin,
	}
	n, err := s.backend.CreateNotification(ctx, welcome)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("Notify welcome failed")
	case s.notifier != nil && n != nil:
		s.notifier.Add(*n)
	}
	return user, nil
}

// SignUp creates an account. It does not sign in.
func (s *Service) SignUp(ctx context.Context, name, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return ErrMissingCredentials
	}
	if err := s.backend.Register(ctx, strings.TrimSpace(name), email, password); err != nil {
		return fmt.Errorf("sign up: %w", err)
	}
	return nil
}

// Refresh re-reads the signed-in user from the backend and stores it.
// A rejected token or a banned user clears the session.
func (s *Service) Refresh(ctx context.Context) (*catalog.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token, err := s.store.Token()
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	if token == "" {
		return nil, ErrSignedOut
	}

	user, err := s.backend.Me(ctx)
	if err != nil {
		if s.rejected(err) {
			log.Warn().Err(err).Msg("Token verification failed")
			s.clear()
		}
		return nil, fmt.Errorf("refresh user: %w", err)
	}
	if user.Banned {
		s.clear()
		return nil, ErrBanned
	}
	if err := s.store.SaveSession(token, user); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.checkRole(user)
	return user, nil
}

// SignOut drops the stored session and resets the player.
func (s *Service) SignOut(ctx context.Context) error {
	s.mu.Lock()
	err := s.store.ClearSession()
	s.mu.Unlock()

	if s.player != nil {
		s.player.ResetPlayer(ctx)
	}
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	log.Info().Msg("Signed out")
	return nil
}

func (s *Service) clear() {
	if err := s.store.ClearSession(); err != nil {
		log.Warn().Err(err).Msg("Failed to clear session")
	}
}

// checkRole raises a role change notice when the user's role differs
// from the one last seen for them.
func (s *Service) checkRole(user *catalog.User) {
	prev, ok, err := s.store.PreviousRole(user.ID)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read previous role")
		return
	}
	if ok && prev != user.Role {
		msg := fmt.Sprintf("Role changed from %s to %s", prev, user.Role)
		if err := s.store.MarkRoleChanged(msg); err != nil {
			log.Warn().Err(err).Msg("Failed to record role change")
		}
	}
	if err := s.store.SavePreviousRole(user.ID, user.Role); err != nil {
		log.Warn().Err(err).Msg("Failed to save role")
	}
}
