package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/waymark-io/waymark/internal/service"
	"github.com/waymark-io/waymark/internal/store"
)

func newAuthService(t *testing.T, adminSecret string) (*service.AuthService, *store.Store) {
	t.Helper()
	st, err := store.Open("", "")
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return service.NewAuthService(st, adminSecret, discardLogger()), st
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestIDGenerated(t *testing.T) {
	var captured string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if captured == "" {
		t.Error("expected a generated request ID in context")
	}
	if rec.Header().Get("X-Request-ID") != captured {
		t.Error("expected request ID echoed on the response header")
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	var captured string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "client-supplied-id")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if captured != "client-supplied-id" {
		t.Errorf("got %q, want client-supplied-id", captured)
	}
}

func TestRequireAPIKeyMissing(t *testing.T) {
	auth, _ := newAuthService(t, "")
	h := RequireAPIKey(auth, discardLogger())(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/history", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing header: got %d, want 401", rec.Code)
	}
}

func TestRequireAPIKeyInvalid(t *testing.T) {
	auth, _ := newAuthService(t, "")
	h := RequireAPIKey(auth, discardLogger())(okHandler())

	req := httptest.NewRequest("GET", "/history", nil)
	req.Header.Set("X-Api-Key", "wm_not_a_real_key")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("invalid key: got %d, want 403", rec.Code)
	}
}

func TestRequireAPIKeyValidAttachesInfo(t *testing.T) {
	auth, _ := newAuthService(t, "")
	rawKey, _, err := auth.GenerateKey(context.Background(), "alice", "", nil)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	var info *service.KeyInfo
	h := RequireAPIKey(auth, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info = GetKeyInfo(r.Context())
	}))

	req := httptest.NewRequest("GET", "/history", nil)
	req.Header.Set("X-Api-Key", rawKey)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("valid key: got %d, want 200", rec.Code)
	}
	if info == nil || info.User != "alice" {
		t.Errorf("expected key info for alice in context, got %+v", info)
	}
}

func TestRequireAPIKeyStoreFailure(t *testing.T) {
	auth, st := newAuthService(t, "")
	rawKey, _, err := auth.GenerateKey(context.Background(), "alice", "", nil)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	// A store outage is not a rejection; the valid key must not read as
	// revoked.
	st.Close()

	h := RequireAPIKey(auth, discardLogger())(okHandler())
	req := httptest.NewRequest("GET", "/history", nil)
	req.Header.Set("X-Api-Key", rawKey)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("store down: got %d, want 500", rec.Code)
	}
}

func TestRequireAdminPassthroughWithoutSecret(t *testing.T) {
	auth, _ := newAuthService(t, "")
	h := RequireAdmin(auth)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/admin/generate-api-key", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("no secret configured: got %d, want passthrough 200", rec.Code)
	}
}

func TestRequireAdminWithSecret(t *testing.T) {
	auth, _ := newAuthService(t, "test-admin-secret")
	h := RequireAdmin(auth)(okHandler())

	// No token.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/admin/generate-api-key", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing token: got %d, want 401", rec.Code)
	}

	// Bad token.
	req := httptest.NewRequest("POST", "/admin/generate-api-key", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("bad token: got %d, want 403", rec.Code)
	}

	// Good token.
	token, err := auth.IssueAdminToken(time.Hour)
	if err != nil {
		t.Fatalf("IssueAdminToken: %v", err)
	}
	req = httptest.NewRequest("POST", "/admin/generate-api-key", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid token: got %d, want 200", rec.Code)
	}
}
