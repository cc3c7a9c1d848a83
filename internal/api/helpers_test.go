package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/api/shared"
	"github.com/phrazzld/drill-api/internal/catalog"
	"github.com/phrazzld/drill-api/internal/config"
	"github.com/phrazzld/drill-api/internal/domain/srs"
	"github.com/phrazzld/drill-api/internal/service/auth"
	"github.com/phrazzld/drill-api/internal/service/review"
	"github.com/phrazzld/drill-api/internal/testutils"
	"github.com/stretchr/testify/require"
)

// testAuthConfig returns a valid auth configuration for tests.
func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:              "0123456789abcdef0123456789abcdef",
		TokenLifetimeMinutes:   60,
		RefreshLifetimeMinutes: 1440,
	}
}

// newTestJWTService builds a real JWT service over the test secret.
func newTestJWTService(t *testing.T) auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService(testAuthConfig())
	require.NoError(t, err)
	return svc
}

// newReviewService builds a review service over an in-memory store and
// the given catalog fixture.
func newReviewService(cat catalog.Catalog) (review.Service, *testutils.MemUserRecordStore) {
	st := testutils.NewMemUserRecordStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := review.NewService(cat, st, srs.NewDefaultService(), review.Params{}, log)
	return svc, st
}

// smallCatalog returns a minimal reviewable catalog for handler tests.
func smallCatalog() catalog.Catalog {
	return testutils.NewCatalog(
		testutils.ItemSpec{ID: "item-1", Subtopic: "Sorting"},
		testutils.ItemSpec{ID: "item-2", Subtopic: "Graphs"},
		testutils.ItemSpec{ID: "item-3", Subtopic: "Trees"},
	)
}

// authenticatedRouter mounts the review handler routes behind a stub
// that injects the given user ID, standing in for the JWT middleware.
func authenticatedRouter(h *ReviewHandler, userID uuid.UUID) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/session", h.StartSession)
	r.Get("/items/next", h.NextItem)
	r.Post("/items/{id}/answer", h.RecordAnswer)
	r.Post("/items/{id}/rating", h.RecordRating)
	r.Post("/batch/complete", h.CompleteBatch)
	r.Get("/batch/cooldown", h.GetCooldown)
	return r
}

// doJSON performs a request with an optional JSON body against the
// handler and returns the recorder.
func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		blob, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(blob)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals the recorder's JSON body into v.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}
