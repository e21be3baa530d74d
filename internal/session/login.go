package session

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kingrea/leads-admin/internal/transport"
)

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is what the API returns for a successful login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Authenticator exchanges credentials for a token and stores the session.
type Authenticator struct {
	doer   transport.Doer
	store  *Store
	logger *zap.Logger
}

// NewAuthenticator wires the login call to a session store.
func NewAuthenticator(doer transport.Doer, store *Store, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{doer: doer, store: store, logger: logger}
}

// Login posts the credentials to /auth/login and persists the session.
func (a *Authenticator) Login(ctx context.Context, email, password string) (*User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("session: email and password are required")
	}
	res := transport.Decode[LoginResponse](a.doer.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   Credentials{Email: email, Password: password},
	}))
	resp, err := res.Unwrap()
	if err != nil {
		a.logger.Error("login failed", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("session: login: %w", err)
	}
	if strings.TrimSpace(resp.Token) == "" {
		return nil, fmt.Errorf("session: login: response carried no token")
	}
	if err := a.store.Save(resp.Token, resp.User); err != nil {
		return nil, err
	}
	a.logger.Info("logged in",
		zap.String("email", resp.User.Email),
		zap.Int64("organisation_id", resp.User.OrganisationID))
	user := resp.User
	return &user, nil
}

// Logout forgets the stored session.
func (a *Authenticator) Logout() error {
	return a.store.Clear()
}
