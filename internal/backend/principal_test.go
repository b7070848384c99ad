package backend

import "testing"

func TestParsePrincipalAcceptsValidForms(t *testing.T) {
	for _, s := range []string{"w7x7r-cok77-xa", "aaaaa", "2vxsx-fae", " padded-id "} {
		if _, err := ParsePrincipal(s); err != nil {
			t.Fatalf("expected %q to parse: %v", s, err)
		}
	}
}

func TestParsePrincipalRejectsMalformedInput(t *testing.T) {
	for _, s := range []string{"", "   ", "UPPER-case", "has space", "trailing-", "-leading", "sneaky!chars"} {
		if _, err := ParsePrincipal(s); err == nil {
			t.Fatalf("expected %q to be rejected", s)
		}
	}
}

func TestPrincipalShort(t *testing.T) {
	if got := Principal("abc-def").Short(); got != "abc-def" {
		t.Fatalf("short ids should pass through, got %q", got)
	}
	long := Principal("abcde-fghij-klmno-pqrst")
	short := long.Short()
	if len(short) >= len(long) {
		t.Fatalf("expected truncation, got %q", short)
	}
}
