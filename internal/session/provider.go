package session

import (
	"errors"
	"strings"

	"labcare/internal/models"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNoUser             = errors.New("no registered user")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// AuthProvider decides what is stored at registration and whether a login
// attempt is accepted.
type AuthProvider interface {
	Name() string
	// Credential turns the password given at registration into what is persisted.
	Credential(password string) (string, error)
	// Verify checks a login attempt against the stored user. stored is nil when
	// nobody has registered.
	Verify(stored *models.User, email, password string) error
}

// InsecureAuthProvider accepts any credentials and keeps no password.
type InsecureAuthProvider struct{}

func (InsecureAuthProvider) Name() string { return "insecure" }

func (InsecureAuthProvider) Credential(string) (string, error) { return "", nil }

func (InsecureAuthProvider) Verify(*models.User, string, string) error { return nil }

// PasswordAuthProvider stores a bcrypt hash and requires the registered email
// and password at login.
type PasswordAuthProvider struct {
	Cost int
}

func (PasswordAuthProvider) Name() string { return "password" }

func (p PasswordAuthProvider) Credential(password string) (string, error) {
	if password == "" {
		return "", ErrInvalidCredentials
	}
	cost := p.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (PasswordAuthProvider) Verify(stored *models.User, email, password string) error {
	if stored == nil {
		return ErrNoUser
	}
	if !strings.EqualFold(strings.TrimSpace(email), stored.Email) || stored.Password == "" {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// NewAuthProvider maps a configured provider name to its implementation.
func NewAuthProvider(name string) (AuthProvider, error) {
	switch name {
	case "", "insecure":
		return InsecureAuthProvider{}, nil
	case "password":
		return PasswordAuthProvider{}, nil
	default:
		return nil, errors.New("unknown auth provider: " + name)
	}
}
