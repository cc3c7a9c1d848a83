package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/drill-api/internal/config"
	"github.com/phrazzld/drill-api/internal/service/auth"
)

func newMiddleware(t *testing.T) (*AuthMiddleware, auth.JWTService) {
	t.Helper()
	svc, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:              "0123456789abcdef0123456789abcdef",
		TokenLifetimeMinutes:   60,
		RefreshLifetimeMinutes: 1440,
	})
	require.NoError(t, err)
	return NewAuthMiddleware(svc), svc
}

func TestAuthenticateInjectsUserID(t *testing.T) {
	m, svc := newMiddleware(t)
	userID := uuid.New()

	token, err := svc.GenerateToken(httptest.NewRequest("GET", "/", nil).Context(), userID)
	require.NoError(t, err)

	var gotUserID uuid.UUID
	var found bool
	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, found = GetUserID(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/items/next", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, found)
	assert.Equal(t, userID, gotUserID)
}

func TestAuthenticateRejections(t *testing.T) {
	m, svc := newMiddleware(t)

	refreshToken, err := svc.GenerateRefreshToken(
		httptest.NewRequest("GET", "/", nil).Context(), uuid.New())
	require.NoError(t, err)

	handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for rejected requests")
	}))

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"malformed token", "Bearer not-a-token"},
		{"refresh token on protected route", "Bearer " + refreshToken},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/items/next", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
