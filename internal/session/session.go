// Package session keeps the authenticated user and their API token between
// runs.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// User is the authenticated account as returned by the login call.
type User struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	OrganisationID int64  `json:"organisation_id"`
}

// Claims is the JWT body issued for a session. Tokens that do not parse as
// JWTs are treated as opaque.
type Claims struct {
	OrganisationID int64 `json:"org"`
	jwt.StandardClaims
}

// UserProvider exposes the currently authenticated user, or nil.
type UserProvider interface {
	StoredUser() *User
}

type record struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Store persists the session as JSON on disk.
type Store struct {
	path  string
	clock func() time.Time
	mu    sync.Mutex
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithClock allows tests to control token expiry checks.
func WithClock(clock func() time.Time) StoreOption {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewStore returns a store backed by path. The file is created on Save.
func NewStore(path string, opts ...StoreOption) *Store {
	s := &Store{path: path, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Path returns the file backing this store.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Save replaces the stored session.
func (s *Store) Save(token string, user User) error {
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("session: token is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("session: ensure dir: %w", err)
	}
	data, err := json.MarshalIndent(record{Token: token, User: &user}, "", "  ")
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("session: write %s: %w", s.path, err)
	}
	return nil
}

// Clear removes the stored session. Clearing an absent session is not an
// error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("session: remove %s: %w", s.path, err)
	}
	return nil
}

// StoredUser returns the current user when the session is usable: present,
// scoped to an organisation and not past its token expiry.
func (s *Store) StoredUser() *User {
	if s == nil {
		return nil
	}
	rec, ok := s.load()
	if !ok || rec.User == nil {
		return nil
	}
	if rec.User.OrganisationID == 0 || s.expired(rec.Token) {
		return nil
	}
	user := *rec.User
	return &user
}

// Token returns the stored bearer token, or "" when the session is unusable.
func (s *Store) Token() string {
	if s == nil {
		return ""
	}
	rec, ok := s.load()
	if !ok || s.expired(rec.Token) {
		return ""
	}
	return rec.Token
}

func (s *Store) load() (record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if err != nil {
		return record{}, false
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return record{}, false
	}
	if strings.TrimSpace(rec.Token) == "" {
		return record{}, false
	}
	return rec, true
}

func (s *Store) expired(token string) bool {
	claims, ok := ParseClaims(token)
	if !ok {
		return false
	}
	return !claims.VerifyExpiresAt(s.clock().Unix(), false)
}

// ParseClaims reads the claims of a JWT without verifying its signature. The
// second result is false for opaque tokens.
func ParseClaims(token string) (*Claims, bool) {
	if strings.Count(token, ".") != 2 {
		return nil, false
	}
	claims := &Claims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return nil, false
	}
	return claims, true
}
