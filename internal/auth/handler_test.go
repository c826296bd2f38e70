package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMux(t *testing.T) (*http.ServeMux, *TokenIssuer, *fakeStore) {
	t.Helper()

	store := newFakeStore()
	registry := NewMemoryRegistry()
	issuer := newTestIssuer(time.Hour, 7*24*time.Hour)
	handler := NewHandler(NewService(store, registry, NewHasher(4), issuer))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", handler.Register)
	mux.HandleFunc("POST /auth/login", handler.Login)
	mux.HandleFunc("POST /auth/refresh", handler.Refresh)
	mux.HandleFunc("POST /auth/logout", handler.Logout)
	mux.Handle("POST /posts", Middleware(issuer, store, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, _ := IdentityFromContext(r.Context())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"sender": identity.UserID})
	})))

	return mux, issuer, store
}

func postJSON(t *testing.T, mux *http.ServeMux, path string, body any, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRegisterEndpoint(t *testing.T) {
	t.Parallel()

	mux, _, _ := newTestMux(t)

	rec := postJSON(t, mux, "/auth/register", map[string]string{"email": "a@x.com", "password": "pw1"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["message"])

	rec = postJSON(t, mux, "/auth/register", map[string]string{"email": "a@x.com", "password": "pw1"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterRejectsInvalidBody(t *testing.T) {
	t.Parallel()

	mux, _, _ := newTestMux(t)

	rec := postJSON(t, mux, "/auth/register", map[string]string{"email": "not-an-email", "password": "pw1"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, mux, "/auth/register", map[string]string{"email": "a@x.com"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginEndpointIndistinguishableFailures(t *testing.T) {
	t.Parallel()

	mux, _, _ := newTestMux(t)

	rec := postJSON(t, mux, "/auth/register", map[string]string{"email": "a@x.com", "password": "pw1"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	wrongPw := postJSON(t, mux, "/auth/login", map[string]string{"email": "a@x.com", "password": "wrong"}, nil)
	unknown := postJSON(t, mux, "/auth/login", map[string]string{"email": "nobody@x.com", "password": "pw1"}, nil)

	assert.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, wrongPw.Body.String(), unknown.Body.String(),
		"unknown email and wrong password must be indistinguishable")
}

func TestAuthFlowEndToEnd(t *testing.T) {
	t.Parallel()

	mux, _, _ := newTestMux(t)

	rec := postJSON(t, mux, "/auth/register", map[string]string{"email": "a@x.com", "password": "pw1"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, mux, "/auth/login", map[string]string{"email": "a@x.com", "password": "pw1"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tokens := decodeBody(t, rec)
	require.NotEmpty(t, tokens["accessToken"])
	require.NotEmpty(t, tokens["refreshToken"])

	// Protected route with the access token: sender stamped from identity.
	header := http.Header{"Authorization": []string{"Bearer " + tokens["accessToken"]}}
	rec = postJSON(t, mux, "/posts", map[string]string{}, header)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["sender"])

	// Protected route without a header fails.
	rec = postJSON(t, mux, "/posts", map[string]string{}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Refresh returns a new access token only.
	rec = postJSON(t, mux, "/auth/refresh", map[string]string{"refreshToken": tokens["refreshToken"]}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	refreshed := decodeBody(t, rec)
	assert.NotEmpty(t, refreshed["accessToken"])
	assert.Empty(t, refreshed["refreshToken"])

	// Logout revokes the refresh token.
	rec = postJSON(t, mux, "/auth/logout", map[string]string{"refreshToken": tokens["refreshToken"]}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, mux, "/auth/refresh", map[string]string{"refreshToken": tokens["refreshToken"]}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = postJSON(t, mux, "/auth/logout", map[string]string{"refreshToken": tokens["refreshToken"]}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRefreshEndpointMissingToken(t *testing.T) {
	t.Parallel()

	mux, _, _ := newTestMux(t)

	rec := postJSON(t, mux, "/auth/refresh", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshEndpointUnknownToken(t *testing.T) {
	t.Parallel()

	mux, issuer, _ := newTestMux(t)

	token, err := issuer.IssueRefresh("user-1", "a@x.com")
	require.NoError(t, err)

	rec := postJSON(t, mux, "/auth/refresh", map[string]string{"refreshToken": token}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestLogoutEndpointMissingToken(t *testing.T) {
	t.Parallel()

	mux, _, _ := newTestMux(t)

	rec := postJSON(t, mux, "/auth/logout", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
