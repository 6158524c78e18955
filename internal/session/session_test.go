package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte(`{"access_token":"tok-1","isAuthenticated":true}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	store, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if store.Token() != "tok-1" {
		t.Errorf("Token() = %q", store.Token())
	}
	if !store.IsAuthenticated() {
		t.Errorf("expected authenticated session")
	}
}

func TestLoadFile_StringFlagWithoutToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte(`{"isAuthenticated":"true"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	store, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if store.IsAuthenticated() {
		t.Fatalf("session without token must not be authenticated")
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")
	if s, ok := FromRequest(req); !ok || s.Token() != "abc" {
		t.Fatalf("bearer: got %q %v", s, ok)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: TokenKey, Value: "cookie-tok"})
	if s, ok := FromRequest(req); !ok || s.Token() != "cookie-tok" {
		t.Fatalf("cookie: got %q %v", s, ok)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := FromRequest(req); ok {
		t.Fatalf("expected no session")
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := ContextWith(context.Background(), Static("t"))
	s, ok := FromContext(ctx)
	if !ok || s.Token() != "t" {
		t.Fatalf("FromContext() = %v %v", s, ok)
	}
	if _, ok := FromContext(context.Background()); ok {
		t.Fatalf("expected no session in empty context")
	}
}
