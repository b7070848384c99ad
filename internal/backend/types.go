package backend

// UserRole identifies the caller's privilege level.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
	RoleGuest UserRole = "guest"
)

// UserProfile is the caller-owned identity card.
//
// A profile is "complete" once DisplayName is non-empty and Avatar is one of
// the allowed set; the onboarding gate enforces that client-side, the backend
// remains the source of truth.
type UserProfile struct {
	DisplayName        string   `json:"displayName"`
	Avatar             string   `json:"avatar"`
	Interests          []string `json:"interests"`
	Perspectives       []string `json:"perspectives"`
	MBTIType           string   `json:"mbtiType,omitempty"`
	CommunicationStyle string   `json:"communicationStyle"`
	Location           string   `json:"location,omitempty"`
	ComfortMode        bool     `json:"comfortMode"`
}

// WeeklyMoment is a community highlight owned by its author.
// ImpactCount only ever grows; increments happen server-side.
type WeeklyMoment struct {
	ID          uint64    `json:"id"`
	Content     string    `json:"content"`
	Category    string    `json:"category"`
	User        Principal `json:"user"`
	Timestamp   Ticks     `json:"timestamp"`
	ImpactCount uint64    `json:"impactCount"`
}

// ChatMessage is immutable once sent. Perspective is only populated on the
// global feed variant.
type ChatMessage struct {
	Content     string    `json:"content"`
	Sender      Principal `json:"sender"`
	Timestamp   Ticks     `json:"timestamp"`
	Perspective string    `json:"perspective,omitempty"`
}

// DailyChallenge carries a backend-computed streak; the client never derives
// streak logic itself.
type DailyChallenge struct {
	ID          uint64 `json:"id"`
	Description string `json:"description"`
	Streak      uint64 `json:"streak"`
}

// WeeklyChallenge carries a simple completion flag.
type WeeklyChallenge struct {
	ID          uint64 `json:"id"`
	Description string `json:"description"`
	IsCompleted bool   `json:"isCompleted"`
}

// GlobalStats is a read-only aggregate snapshot, refreshed periodically.
type GlobalStats struct {
	ActiveUsers       uint64   `json:"activeUsers"`
	TrendingMBTITypes []string `json:"trendingMbtiTypes"`
	EmotionalHeatmap  []string `json:"emotionalHeatmap"`
}

// Connection is a discovery listing entry.
type Connection struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Avatar          string   `json:"avatar"`
	PersonalityType string   `json:"personalityType"`
	Interests       []string `json:"interests"`
	IsAvailable     bool     `json:"isAvailable"`
}

// ProfileEntry pairs an identity with its profile in bulk listings.
type ProfileEntry struct {
	User    Principal   `json:"user"`
	Profile UserProfile `json:"profile"`
}

// AdminStats is the admin dashboard aggregate.
type AdminStats struct {
	TotalUsers   uint64 `json:"totalUsers"`
	TotalMoments uint64 `json:"totalMoments"`
	TotalImpacts uint64 `json:"totalImpacts"`
}

// AllowedAvatars is the fixed emoji set a profile avatar must come from.
var AllowedAvatars = []string{
	"🦢", "🦄", "🐷", "🪷", "🐯", "🦊", "🦚",
	"🌙", "🌊", "❄️", "🦋", "💸", "💎",
}

// IsValidAvatar reports whether avatar belongs to the allowed set.
func IsValidAvatar(avatar string) bool {
	for _, a := range AllowedAvatars {
		if a == avatar {
			return true
		}
	}
	return false
}

// CommunicationStyles enumerates the profile communication-style options.
var CommunicationStyles = []string{"Listener", "Advisor", "Deep Thinker", "Expressive"}

// MomentCategories enumerates the weekly-moment submission categories.
var MomentCategories = []string{"Growth", "Helpful", "Supportive"}

// PredefinedInterests are suggested interest tags for profile setup.
var PredefinedInterests = []string{
	"Philosophy", "Psychology", "Art & Creativity", "Music", "Literature",
	"Science & Technology", "Nature & Environment", "Mindfulness & Meditation",
	"Personal Growth", "Social Justice", "Health & Wellness", "Travel & Culture",
	"Gaming", "Sports & Fitness", "Cooking & Food", "Photography",
	"Film & Cinema", "Entrepreneurship", "Education", "Spirituality",
}

// PredefinedPerspectives are suggested perspective tags for profile setup.
var PredefinedPerspectives = []string{
	"Optimist", "Realist", "Idealist", "Pragmatist", "Skeptic", "Empath",
	"Analyst", "Visionary", "Traditionalist", "Progressive", "Minimalist",
	"Maximalist", "Introvert", "Extrovert", "Ambivert", "Growth Mindset",
	"Curious Explorer", "Deep Thinker", "Action-Oriented", "Reflective",
}
