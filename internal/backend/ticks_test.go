package backend

import (
	"testing"
	"time"
)

func TestTicksMillisDividesByScaleFactor(t *testing.T) {
	ts := Ticks(1_700_000_000_123_456_789)
	if got := ts.Millis(); got != 1_700_000_000_123 {
		t.Fatalf("Millis() = %d", got)
	}
}

func TestTicksRoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Nanosecond)
	if got := TicksAt(now).Time(); !got.Equal(now) {
		t.Fatalf("round trip mismatch: %v vs %v", got, now)
	}
}

func TestIsValidAvatar(t *testing.T) {
	if !IsValidAvatar("🦊") {
		t.Fatal("fox avatar should be allowed")
	}
	if IsValidAvatar("🚗") {
		t.Fatal("car avatar must be rejected")
	}
	if IsValidAvatar("") {
		t.Fatal("empty avatar must be rejected")
	}
}
