package logfile

import (
	"strings"
	"testing"
)

func TestSanitizeLogLineRedactsBearerToken(t *testing.T) {
	line := `request header Authorization: Bearer abc123secrettoken sent`
	got := sanitizeLogLine(line)
	if strings.Contains(got, "abc123secrettoken") {
		t.Fatalf("token leaked: %q", got)
	}
	if !strings.Contains(got, redactionPlaceholder) {
		t.Fatalf("expected placeholder in %q", got)
	}
}

func TestSanitizeLogLineRedactsIdentityToken(t *testing.T) {
	line := `config loaded identity_token=zl-9f8e7d6c`
	got := sanitizeLogLine(line)
	if strings.Contains(got, "zl-9f8e7d6c") {
		t.Fatalf("identity token leaked: %q", got)
	}
}

func TestSanitizeLogLineLeavesPlainTextAlone(t *testing.T) {
	line := "fetched 12 moments for key topMoments"
	if got := sanitizeLogLine(line); got != line {
		t.Fatalf("expected %q unchanged, got %q", line, got)
	}
}
