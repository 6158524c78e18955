package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yourorg/aviationcerts/internal/selection"
)

func writeSession(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write session: %v", err)
	}
	return path
}

func TestRun_EmptySelection(t *testing.T) {
	t.Setenv("CERTS_CONFIG_FILE", "")
	path := writeSession(t, `{"access_token":"tok","isAuthenticated":"true"}`)
	var stdout, stderr bytes.Buffer
	code := run([]string{"-session", path, "-out", t.TempDir(), "-ids", " , "}, &stdout, &stderr)
	if code != exitUsage {
		t.Fatalf("expected exit %d, got %d", exitUsage, code)
	}
	if !strings.Contains(stderr.String(), selection.NoSelectionMessage) {
		t.Fatalf("expected selection message, got %q", stderr.String())
	}
}

func TestRun_NotSignedIn(t *testing.T) {
	t.Setenv("CERTS_CONFIG_FILE", "")
	path := writeSession(t, `{"access_token":"","isAuthenticated":"false"}`)
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-session", path, "-ids", "A"}, &stdout, &stderr); code != exitUsage {
		t.Fatalf("expected exit %d, got %d", exitUsage, code)
	}
	if stdout.Len() != 0 {
		t.Fatalf("expected no output, got %q", stdout.String())
	}
}

func TestRun_BadFlag(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-nope"}, &stdout, &stderr); code != exitUsage {
		t.Fatalf("expected exit %d, got %d", exitUsage, code)
	}
}
