package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"labcare/internal/domain"
	"labcare/internal/events"
	"labcare/internal/metrics"
	"labcare/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RegisterInput is the registration form. Blank name and email get defaults.
type RegisterInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Session holds who is signed in. It is created once per process, restored
// from the store and then mutated by Register, Login and Logout.
type Session struct {
	users    domain.UserRepository
	provider AuthProvider
	events   domain.EventPublisher
	logger   *zerolog.Logger
	now      func() time.Time

	mu            sync.RWMutex
	authenticated bool
	user          *models.User
}

func New(users domain.UserRepository, provider AuthProvider, publisher domain.EventPublisher, logger *zerolog.Logger) *Session {
	if provider == nil {
		provider = InsecureAuthProvider{}
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Session{
		users:    users,
		provider: provider,
		events:   publisher,
		logger:   logger,
		now:      time.Now,
	}
}

// Restore loads the persisted session. The session is signed in only when a
// user record exists and the auth flag is set.
func (s *Session) Restore(ctx context.Context) error {
	user, err := s.users.GetUser(ctx)
	if err != nil {
		return err
	}
	authed, err := s.users.IsAuthenticated(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if user != nil && authed {
		s.user = user
		s.authenticated = true
		s.logger.Info().Str("user_id", user.ID).Msg("session restored")
		return nil
	}
	s.user = nil
	s.authenticated = false
	return nil
}

// Register stores a new user and leaves the session signed out.
func (s *Session) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	credential, err := s.provider.Credential(in.Password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:        uuid.NewString(),
		FullName:  strings.TrimSpace(in.FullName),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Password:  credential,
		CreatedAt: s.now().UTC(),
	}
	if user.FullName == "" {
		user.FullName = models.DefaultUserName
	}
	if user.Email == "" {
		user.Email = models.DefaultUserEmail
	}

	if err := s.users.SaveUser(ctx, user); err != nil {
		return models.User{}, err
	}
	if err := s.users.SetAuthenticated(ctx, false); err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	s.user = nil
	s.authenticated = false
	s.mu.Unlock()

	s.publish(events.EventUserRegistered, user)
	metrics.IncSessionEvent("register")
	s.logger.Info().Str("user_id", user.ID).Msg("user registered")
	return user.Public(), nil
}

// Login signs the session in. With no stored user the provider may allow a
// user to be created from the email alone.
func (s *Session) Login(ctx context.Context, email, password string) (models.User, error) {
	stored, err := s.users.GetUser(ctx)
	if err != nil {
		return models.User{}, err
	}
	if err := s.provider.Verify(stored, email, password); err != nil {
		metrics.IncSessionEvent("login_failed")
		s.logger.Warn().Err(err).Str("provider", s.provider.Name()).Msg("login rejected")
		return models.User{}, err
	}

	var user models.User
	if stored != nil {
		user = *stored
	} else {
		email = strings.TrimSpace(email)
		user = models.User{
			ID:        uuid.NewString(),
			Email:     email,
			FullName:  email,
			CreatedAt: s.now().UTC(),
		}
		if user.Email == "" {
			user.Email = models.DefaultUserEmail
			user.FullName = models.DefaultUserName
		}
		if err := s.users.SaveUser(ctx, user); err != nil {
			return models.User{}, err
		}
	}

	if err := s.users.SetAuthenticated(ctx, true); err != nil {
		return models.User{}, err
	}

	s.mu.Lock()
	s.user = &user
	s.authenticated = true
	s.mu.Unlock()

	s.publish(events.EventUserLoggedIn, user)
	metrics.IncSessionEvent("login")
	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")
	return user.Public(), nil
}

// Logout clears the auth flag. The user record stays.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.users.SetAuthenticated(ctx, false); err != nil {
		return err
	}

	s.mu.Lock()
	user := s.user
	s.user = nil
	s.authenticated = false
	s.mu.Unlock()

	if user != nil {
		s.publish(events.EventUserLoggedOut, *user)
	}
	metrics.IncSessionEvent("logout")
	return nil
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// CurrentUser returns the signed-in user without the stored credential.
func (s *Session) CurrentUser() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.authenticated || s.user == nil {
		return models.User{}, false
	}
	return s.user.Public(), true
}

func (s *Session) publish(eventType string, user models.User) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishJSON(eventType, events.SessionPayload{UserID: user.ID, Email: user.Email}); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish session event")
	}
}
