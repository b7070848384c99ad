package onboarding

import "github.com/caffeinepub/zenlink-5/internal/backend"

// GateOutcome is the routing decision for an authenticated-area entry.
type GateOutcome int

const (
	// GateSignIn means no identity is present.
	GateSignIn GateOutcome = iota
	// GateOnboard means the identity has no complete profile yet.
	GateOnboard
	// GateAllow means the caller may proceed to the requested page.
	GateAllow
)

func (g GateOutcome) String() string {
	switch g {
	case GateSignIn:
		return "sign-in"
	case GateOnboard:
		return "onboard"
	default:
		return "allow"
	}
}

// IsComplete reports whether a profile counts as finished setup: a non-empty
// display name and an avatar from the allowed set.
func IsComplete(p *backend.UserProfile) bool {
	if p == nil {
		return false
	}
	return p.DisplayName != "" && backend.IsValidAvatar(p.Avatar)
}

// Decide routes based on identity presence and profile completeness. The
// profile pointer is nil both when none exists and while it is still loading;
// callers gate on fetch completion before trusting a GateOnboard outcome.
func Decide(hasIdentity bool, profile *backend.UserProfile) GateOutcome {
	if !hasIdentity {
		return GateSignIn
	}
	if !IsComplete(profile) {
		return GateOnboard
	}
	return GateAllow
}

// DefaultProfile is the starting point handed to the setup form after
// onboarding resolves a type.
func DefaultProfile(mbti string) backend.UserProfile {
	return backend.UserProfile{
		MBTIType:           mbti,
		CommunicationStyle: "Listener",
		Interests:          []string{},
		Perspectives:       []string{},
	}
}
