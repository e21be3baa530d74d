package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSendsAuthenticatedJSON(t *testing.T) {
	var gotAuth, gotType, gotMethod, gotPath, gotBody, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotRequestID = r.Header.Get("X-Request-Id")
		gotMethod = r.Method
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":9}`))
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL+"/api/", WithTokenSource(TokenFunc(func() string { return "tok" })))
	require.NoError(t, err)

	res := client.Do(context.Background(), Request{Method: http.MethodPost, Path: "/leads", Body: map[string]string{"full_name": "Bob"}})
	raw, err := res.Unwrap()
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":9}`, string(raw))
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/leads", gotPath)
	assert.JSONEq(t, `{"full_name":"Bob"}`, gotBody)
	assert.NotEmpty(t, gotRequestID)
}

func TestClientOmitsAuthorizationWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL)
	require.NoError(t, err)
	res := client.Do(context.Background(), Request{Method: http.MethodDelete, Path: "leads/1"})
	assert.True(t, res.IsOk())
}

func TestClientNormalizesFailures(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		kind    Kind
		message string
	}{
		{"server message", http.StatusUnprocessableEntity, `{"message":"full_name is required"}`, KindRejected, "full_name is required"},
		{"error field", http.StatusBadRequest, `{"error":"bad input"}`, KindRejected, "bad input"},
		{"status text fallback", http.StatusInternalServerError, ``, KindRejected, "Internal Server Error"},
		{"unauthorized", http.StatusUnauthorized, `{"message":"token expired"}`, KindUnauthorized, "token expired"},
		{"forbidden", http.StatusForbidden, `not json`, KindUnauthorized, "Forbidden"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			t.Cleanup(srv.Close)

			client, err := NewClient(srv.URL)
			require.NoError(t, err)
			res := client.Do(context.Background(), Request{Path: "/x"})
			require.False(t, res.IsOk())
			fail := res.Failure()
			assert.Equal(t, tc.kind, fail.Kind)
			assert.Equal(t, tc.status, fail.Status)
			assert.Equal(t, tc.message, fail.Message)
		})
	}
}

func TestClientNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	client, err := NewClient(base)
	require.NoError(t, err)
	res := client.Do(context.Background(), Request{Path: "/leads"})
	_, err = res.Unwrap()
	require.Error(t, err)
	var terr *Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, KindNetwork, terr.Kind)
}

func TestNewClientRejectsBadBaseURL(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)
	_, err = NewClient("ftp://example.com")
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	type item struct {
		ID int `json:"id"`
	}
	got, err := Decode[item](Ok(json.RawMessage(`{"id":4}`))).Unwrap()
	require.NoError(t, err)
	assert.Equal(t, 4, got.ID)

	empty := Decode[item](Ok(json.RawMessage(``)))
	require.False(t, empty.IsOk())
	assert.Equal(t, KindDecode, empty.Failure().Kind)

	null := Decode[item](Ok(json.RawMessage(" null\n")))
	require.False(t, null.IsOk())
	assert.Equal(t, KindDecode, null.Failure().Kind)

	passthrough := Decode[item](Err[json.RawMessage](KindRejected, "nope"))
	require.False(t, passthrough.IsOk())
	assert.Equal(t, KindRejected, passthrough.Failure().Kind)
	assert.Equal(t, "nope", passthrough.Failure().Message)
}
