package devserver

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/caffeinepub/zenlink-5/internal/backend"
)

// Store is the in-memory state behind the development backend. Every method
// takes the lock; handlers never touch the fields directly.
type Store struct {
	mu sync.RWMutex

	profiles map[backend.Principal]backend.UserProfile
	roles    map[backend.Principal]backend.UserRole

	moments      []backend.WeeklyMoment
	nextMomentID uint64
	totalImpacts uint64

	conversations map[string][]backend.ChatMessage
	globalFeed    []backend.ChatMessage

	daily  map[backend.Principal][]backend.DailyChallenge
	weekly map[backend.Principal][]backend.WeeklyChallenge

	now func() backend.Ticks
}

var defaultDaily = []backend.DailyChallenge{
	{ID: 1, Description: "Share one thing you are grateful for"},
	{ID: 2, Description: "Send an encouraging message to a connection"},
}

var defaultWeekly = []backend.WeeklyChallenge{
	{ID: 1, Description: "Post a weekly highlight"},
	{ID: 2, Description: "Join a weekly debate"},
}

// NewStore returns an empty store. Principals listed in admins get the admin
// role up front.
func NewStore(admins ...backend.Principal) *Store {
	s := &Store{
		profiles:      map[backend.Principal]backend.UserProfile{},
		roles:         map[backend.Principal]backend.UserRole{},
		conversations: map[string][]backend.ChatMessage{},
		daily:         map[backend.Principal][]backend.DailyChallenge{},
		weekly:        map[backend.Principal][]backend.WeeklyChallenge{},
		nextMomentID:  1,
		now:           func() backend.Ticks { return backend.TicksAt(time.Now()) },
	}
	for _, a := range admins {
		s.roles[a] = backend.RoleAdmin
	}
	return s
}

func (s *Store) Profile(user backend.Principal) (backend.UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[user]
	return p, ok
}

func (s *Store) SaveProfile(user backend.Principal, p backend.UserProfile) error {
	if p.Avatar != "" && !backend.IsValidAvatar(p.Avatar) {
		return fmt.Errorf("avatar %q is not in the allowed set", p.Avatar)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[user] = p
	if _, ok := s.roles[user]; !ok {
		s.roles[user] = backend.RoleUser
	}
	return nil
}

func (s *Store) AllProfiles() []backend.ProfileEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]backend.ProfileEntry, 0, len(s.profiles))
	for user, p := range s.profiles {
		out = append(out, backend.ProfileEntry{User: user, Profile: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].User < out[j].User })
	return out
}

func (s *Store) Role(user backend.Principal) backend.UserRole {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if role, ok := s.roles[user]; ok {
		return role
	}
	return backend.RoleGuest
}

func (s *Store) AssignRole(user backend.Principal, role backend.UserRole) error {
	switch role {
	case backend.RoleAdmin, backend.RoleUser, backend.RoleGuest:
	default:
		return fmt.Errorf("unknown role %q", role)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[user] = role
	return nil
}

func (s *Store) SubmitMoment(user backend.Principal, content, category string) (backend.WeeklyMoment, error) {
	if strings.TrimSpace(content) == "" {
		return backend.WeeklyMoment{}, fmt.Errorf("moment content must not be empty")
	}
	valid := false
	for _, c := range backend.MomentCategories {
		if c == category {
			valid = true
			break
		}
	}
	if !valid {
		return backend.WeeklyMoment{}, fmt.Errorf("unknown moment category %q", category)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m := backend.WeeklyMoment{
		ID:        s.nextMomentID,
		Content:   content,
		Category:  category,
		User:      user,
		Timestamp: s.now(),
	}
	s.nextMomentID++
	s.moments = append(s.moments, m)
	return m, nil
}

// TopMoments returns moments ranked by impact count, newest first on ties.
func (s *Store) TopMoments(limit int) []backend.WeeklyMoment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]backend.WeeklyMoment, len(s.moments))
	copy(out, s.moments)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ImpactCount != out[j].ImpactCount {
			return out[i].ImpactCount > out[j].ImpactCount
		}
		return out[i].Timestamp > out[j].Timestamp
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *Store) IncrementImpact(momentID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.moments {
		if s.moments[i].ID == momentID {
			s.moments[i].ImpactCount++
			s.totalImpacts++
			return nil
		}
	}
	return fmt.Errorf("moment %d not found", momentID)
}

func (s *Store) RemoveMoment(momentID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.moments {
		if s.moments[i].ID == momentID {
			s.moments = append(s.moments[:i], s.moments[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("moment %d not found", momentID)
}

// conversationKey is order-independent so both sides read the same thread.
func conversationKey(a, b backend.Principal) string {
	if b < a {
		a, b = b, a
	}
	return string(a) + "|" + string(b)
}

func (s *Store) SendMessage(sender, receiver backend.Principal, content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("message content must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := conversationKey(sender, receiver)
	s.conversations[key] = append(s.conversations[key], backend.ChatMessage{
		Content:   content,
		Sender:    sender,
		Timestamp: s.now(),
	})
	return nil
}

func (s *Store) Conversation(a, b backend.Principal) []backend.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.conversations[conversationKey(a, b)]
	out := make([]backend.ChatMessage, len(msgs))
	copy(out, msgs)
	return out
}

func (s *Store) PostGlobalMessage(sender backend.Principal, content, perspective string) (backend.ChatMessage, error) {
	if strings.TrimSpace(content) == "" {
		return backend.ChatMessage{}, fmt.Errorf("message content must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := backend.ChatMessage{
		Content:     content,
		Sender:      sender,
		Timestamp:   s.now(),
		Perspective: perspective,
	}
	s.globalFeed = append(s.globalFeed, msg)
	return msg, nil
}

func (s *Store) GlobalFeed() []backend.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]backend.ChatMessage, len(s.globalFeed))
	copy(out, s.globalFeed)
	return out
}

func (s *Store) DailyChallenges(user backend.Principal) []backend.DailyChallenge {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.daily[user]; !ok {
		seeded := make([]backend.DailyChallenge, len(defaultDaily))
		copy(seeded, defaultDaily)
		s.daily[user] = seeded
	}
	out := make([]backend.DailyChallenge, len(s.daily[user]))
	copy(out, s.daily[user])
	return out
}

func (s *Store) CompleteDailyChallenge(user backend.Principal, id uint64) error {
	s.DailyChallenges(user) // seed if needed
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.daily[user] {
		if s.daily[user][i].ID == id {
			s.daily[user][i].Streak++
			return nil
		}
	}
	return fmt.Errorf("daily challenge %d not found", id)
}

func (s *Store) WeeklyChallenges(user backend.Principal) []backend.WeeklyChallenge {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.weekly[user]; !ok {
		seeded := make([]backend.WeeklyChallenge, len(defaultWeekly))
		copy(seeded, defaultWeekly)
		s.weekly[user] = seeded
	}
	out := make([]backend.WeeklyChallenge, len(s.weekly[user]))
	copy(out, s.weekly[user])
	return out
}

func (s *Store) CompleteWeeklyChallenge(user backend.Principal, id uint64) error {
	s.WeeklyChallenges(user)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.weekly[user] {
		if s.weekly[user][i].ID == id {
			s.weekly[user][i].IsCompleted = true
			return nil
		}
	}
	return fmt.Errorf("weekly challenge %d not found", id)
}

// GlobalStats derives a snapshot from current state.
func (s *Store) GlobalStats() backend.GlobalStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	typeCounts := map[string]int{}
	for _, p := range s.profiles {
		if p.MBTIType != "" {
			typeCounts[p.MBTIType]++
		}
	}
	trending := make([]string, 0, len(typeCounts))
	for t := range typeCounts {
		trending = append(trending, t)
	}
	sort.Slice(trending, func(i, j int) bool {
		if typeCounts[trending[i]] != typeCounts[trending[j]] {
			return typeCounts[trending[i]] > typeCounts[trending[j]]
		}
		return trending[i] < trending[j]
	})
	if len(trending) > 3 {
		trending = trending[:3]
	}

	return backend.GlobalStats{
		ActiveUsers:       uint64(len(s.profiles)),
		TrendingMBTITypes: trending,
		EmotionalHeatmap:  []string{"calm", "curious", "hopeful"},
	}
}

// AvailableConnections lists everyone with a complete profile except viewer.
func (s *Store) AvailableConnections(viewer backend.Principal) []backend.Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []backend.Connection{}
	for user, p := range s.profiles {
		if user == viewer || p.DisplayName == "" {
			continue
		}
		out = append(out, backend.Connection{
			ID:              string(user),
			Name:            p.DisplayName,
			Avatar:          p.Avatar,
			PersonalityType: p.MBTIType,
			Interests:       p.Interests,
			IsAvailable:     true,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) AdminStats() backend.AdminStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return backend.AdminStats{
		TotalUsers:   uint64(len(s.profiles)),
		TotalMoments: uint64(len(s.moments)),
		TotalImpacts: s.totalImpacts,
	}
}
