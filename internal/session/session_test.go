package session

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/leads-admin/internal/transport"
)

func signedToken(t *testing.T, org int64, expires time.Time) string {
	t.Helper()
	claims := Claims{OrganisationID: org, StandardClaims: jwt.StandardClaims{ExpiresAt: expires.Unix(), Subject: "1"}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func TestStoreRoundTrip(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store := NewStore(filepath.Join(t.TempDir(), "state", "session.json"), WithClock(func() time.Time { return now }))

	assert.Nil(t, store.StoredUser())
	assert.Empty(t, store.Token())

	token := signedToken(t, 4, now.Add(time.Hour))
	require.NoError(t, store.Save(token, User{ID: 1, Email: "a@b.c", OrganisationID: 4}))

	user := store.StoredUser()
	require.NotNil(t, user)
	assert.Equal(t, int64(4), user.OrganisationID)
	assert.Equal(t, token, store.Token())

	require.NoError(t, store.Clear())
	assert.Nil(t, store.StoredUser())
	require.NoError(t, store.Clear())
}

func TestStoreRejectsExpiredToken(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	store := NewStore(filepath.Join(t.TempDir(), "session.json"), WithClock(func() time.Time { return now }))
	require.NoError(t, store.Save(signedToken(t, 4, now.Add(-time.Minute)), User{ID: 1, OrganisationID: 4}))

	assert.Nil(t, store.StoredUser())
	assert.Empty(t, store.Token())
}

func TestStoreAcceptsOpaqueToken(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, store.Save("12|opaque", User{ID: 1, OrganisationID: 2}))
	require.NotNil(t, store.StoredUser())
	assert.Equal(t, "12|opaque", store.Token())
}

func TestStoreRequiresOrganisation(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, store.Save("tok", User{ID: 1}))
	assert.Nil(t, store.StoredUser())
	assert.Equal(t, "tok", store.Token())
}

type fakeDoer struct {
	got transport.Request
	res transport.Result[json.RawMessage]
}

func (f *fakeDoer) Do(_ context.Context, req transport.Request) transport.Result[json.RawMessage] {
	f.got = req
	return f.res
}

func TestAuthenticatorLogin(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "session.json"))
	doer := &fakeDoer{res: transport.Ok(json.RawMessage(`{"token":"abc","user":{"id":3,"email":"test@example.com","organisation_id":9}}`))}
	auth := NewAuthenticator(doer, store, nil)

	user, err := auth.Login(context.Background(), "test@example.com", "password")
	require.NoError(t, err)
	assert.Equal(t, int64(9), user.OrganisationID)
	assert.Equal(t, http.MethodPost, doer.got.Method)
	assert.Equal(t, "/auth/login", doer.got.Path)
	assert.Equal(t, Credentials{Email: "test@example.com", Password: "password"}, doer.got.Body)
	assert.Equal(t, "abc", store.Token())

	require.NoError(t, auth.Logout())
	assert.Nil(t, store.StoredUser())
}

func TestAuthenticatorLoginFailure(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "session.json"))
	doer := &fakeDoer{res: transport.ErrStatus[json.RawMessage](transport.KindUnauthorized, http.StatusUnauthorized, "invalid credentials")}
	auth := NewAuthenticator(doer, store, nil)

	_, err := auth.Login(context.Background(), "test@example.com", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")
	assert.Nil(t, store.StoredUser())

	_, err = auth.Login(context.Background(), "", "x")
	assert.Error(t, err)
}
