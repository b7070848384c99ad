package data

import (
	"context"
	"errors"

	"github.com/caffeinepub/zenlink-5/internal/backend"
	"github.com/caffeinepub/zenlink-5/internal/logging"
	"github.com/caffeinepub/zenlink-5/internal/querycache"
)

// Cache keys, one family per backend read operation.
const (
	KeyCurrentProfile       = "currentUserProfile"
	KeyAllProfiles          = "allUserProfiles"
	KeyTopMoments           = "topMoments"
	KeyDailyChallenges      = "dailyChallenges"
	KeyWeeklyChallenges     = "weeklyChallenges"
	KeyGlobalStats          = "globalStats"
	KeyGlobalChatFeed       = "globalChatFeed"
	KeyAvailableConnections = "availableConnections"
	KeyCallerRole           = "callerRole"
)

// ConversationKey scopes a direct-message history to one partner. Sending a
// message invalidates exactly this key, never the whole conversation family.
func ConversationKey(partner backend.Principal) string {
	return "conversation:" + partner.String()
}

// ErrNotReady reports that a required dependency (client, session or
// parameter) is unavailable. Read accessors translate it into a loading
// state; it is never a remote failure.
var ErrNotReady = errors.New("data: backend client not ready")

// ClientProvider yields the current backend client, or nil before the
// authenticated identity's client has been established. The provider owns
// the client lifecycle; the store only borrows it per call.
type ClientProvider interface {
	Client() *backend.Client
}

// StaticProvider wraps an already-built client.
type StaticProvider struct {
	C *backend.Client
}

func (p StaticProvider) Client() *backend.Client {
	return p.C
}

// Result is the read-accessor view shape: either loading (dependencies not
// ready), fetched data, or a surfaced remote error.
type Result[T any] struct {
	Data      T
	Err       error
	IsLoading bool
	IsFetched bool
}

func notReady[T any]() Result[T] {
	return Result[T]{IsLoading: true}
}

func fromCache[T any](value T, res querycache.Result) Result[T] {
	return Result[T]{
		Data:      value,
		Err:       res.Err,
		IsLoading: !res.Fetched && res.Err == nil,
		IsFetched: res.Fetched,
	}
}

// Store exposes one typed accessor per backend operation, wired through the
// query cache with the write-side invalidation rules of the application.
type Store struct {
	provider ClientProvider
	cache    *querycache.Cache
	logger   logging.Logger
}

// NewStore builds a store over provider and cache.
func NewStore(provider ClientProvider, cache *querycache.Cache, logger logging.Logger) *Store {
	return &Store{
		provider: provider,
		cache:    cache,
		logger:   logging.OrNop(logger),
	}
}

// Cache exposes the underlying cache for subscriptions.
func (s *Store) Cache() *querycache.Cache {
	return s.cache
}

// Ready reports whether the backend client is available.
func (s *Store) Ready() bool {
	return s.provider.Client() != nil
}

// Subscribe registers a view callback for a cache key.
func (s *Store) Subscribe(key string, fn querycache.Subscriber) func() {
	return s.cache.Subscribe(key, fn)
}

// CallerProfile returns the caller's profile; nil data with no error means
// the profile does not exist yet. Never retried: an absent profile is a
// meaningful state, not a failure.
func (s *Store) CallerProfile(ctx context.Context) Result[*backend.UserProfile] {
	client := s.provider.Client()
	if client == nil {
		return notReady[*backend.UserProfile]()
	}
	value, res := querycache.ReadAs(ctx, s.cache, KeyCurrentProfile,
		client.GetCallerUserProfile, querycache.WithNoRetry())
	return fromCache(value, res)
}

// SaveCallerProfile upserts the caller's profile. On success the cached
// profile is optimistically overwritten so views reflect it without a round
// trip, then invalidated so the next read reconciles with the backend.
func (s *Store) SaveCallerProfile(ctx context.Context, profile backend.UserProfile) error {
	client := s.provider.Client()
	if client == nil {
		return ErrNotReady
	}
	if err := client.SaveCallerUserProfile(ctx, profile); err != nil {
		return err
	}
	s.cache.SetOptimistic(KeyCurrentProfile, &profile)
	s.cache.Invalidate(KeyCurrentProfile)
	return nil
}

// UserProfile returns another identity's profile.
func (s *Store) UserProfile(ctx context.Context, user backend.Principal) Result[*backend.UserProfile] {
	client := s.provider.Client()
	if client == nil || user == "" {
		return notReady[*backend.UserProfile]()
	}
	value, res := querycache.ReadAs(ctx, s.cache, "userProfile:"+user.String(),
		func(ctx context.Context) (*backend.UserProfile, error) {
			return client.GetUserProfile(ctx, user)
		})
	return fromCache(value, res)
}

// AllProfiles lists every known (identity, profile) pair.
func (s *Store) AllProfiles(ctx context.Context) Result[[]backend.ProfileEntry] {
	client := s.provider.Client()
	if client == nil {
		return notReady[[]backend.ProfileEntry]()
	}
	value, res := querycache.ReadAs(ctx, s.cache, KeyAllProfiles, client.GetAllUserProfiles)
	return fromCache(value, res)
}

// TopMoments returns the ranked moments feed.
func (s *Store) TopMoments(ctx context.Context) Result[[]backend.WeeklyMoment] {
	client := s.provider.Client()
	if client == nil {
		return notReady[[]backend.WeeklyMoment]()
	}
	value, res := querycache.ReadAs(ctx, s.cache, KeyTopMoments, client.GetTopMoments)
	return fromCache(value, res)
}

// SubmitWeeklyMoment creates a moment and invalidates the ranked feed; the
// new moment appears once the invalidation round-trip completes.
func (s *Store) SubmitWeeklyMoment(ctx context.Context, content, category string) error {
	client := s.provider.Client()
	if client == nil {
		return ErrNotReady
	}
	if err := client.SubmitWeeklyMoment(ctx, content, category); err != nil {
		return err
	}
	s.cache.Invalidate(KeyTopMoments)
	return nil
}

// IncrementImpact sends an impact-increment intent for a moment. The
// read-modify-write happens server-side; a double-click legitimately sends
// two intents.
func (s *Store) IncrementImpact(ctx context.Context, momentID uint64) error {
	client := s.provider.Client()
	if client == nil {
		return ErrNotReady
	}
	if err := client.IncrementImpact(ctx, momentID); err != nil {
		return err
	}
	s.cache.Invalidate(KeyTopMoments)
	return nil
}

// RemoveMoment deletes a moment (admin).
func (s *Store) RemoveMoment(ctx context.Context, momentID uint64) error {
	client := s.provider.Client()
	if client == nil {
		return ErrNotReady
	}
	if err := client.RemoveMoment(ctx, momentID); err != nil {
		return err
	}
	s.cache.Invalidate(KeyTopMoments)
	return nil
}

// DailyChallenges lists daily challenges with backend-computed streaks.
func (s *Store) DailyChallenges(ctx context.Context) Result[[]backend.DailyChallenge] {
	client := s.provider.Client()
	if client == nil {
		return notReady[[]backend.DailyChallenge]()
	}
	value, res := querycache.ReadAs(ctx, s.cache, KeyDailyChallenges, client.GetDailyChallenges)
	return fromCache(value, res)
}

// CompleteDailyChallenge triggers a completion and refreshes the list.
func (s *Store) CompleteDailyChallenge(ctx context.Context, challengeID uint64) error {
	client := s.provider.Client()
	if client == nil {
		return ErrNotReady
	}
	if err := client.CompleteDailyChallenge(ctx, challengeID); err != nil {
		return err
	}
	s.cache.Invalidate(KeyDailyChallenges)
	return nil
}

// WeeklyChallenges lists weekly challenges.
func (s *Store) WeeklyChallenges(ctx context.Context) Result[[]backend.WeeklyChallenge] {
	client := s.provider.Client()
	if client == nil {
		return notReady[[]backend.WeeklyChallenge]()
	}
	value, res := querycache.ReadAs(ctx, s.cache, KeyWeeklyChallenges, client.GetWeeklyChallenges)
	return fromCache(value, res)
}

// CompleteWeeklyChallenge marks a weekly challenge done and refreshes the list.
func (s *Store) CompleteWeeklyChallenge(ctx context.Context, challengeID uint64) error {
	client := s.provider.Client()
	if client == nil {
		return ErrNotReady
	}
	if err := client.CompleteWeeklyChallenge(ctx, challengeID); err != nil {
		return err
	}
	s.cache.Invalidate(KeyWeeklyChallenges)
	return nil
}

// GlobalStats returns the aggregate community snapshot.
func (s *Store) GlobalStats(ctx context.Context) Result[backend.GlobalStats] {
	client := s.provider.Client()
	if client == nil {
		return notReady[backend.GlobalStats]()
	}
	value, res := querycache.ReadAs(ctx, s.cache, KeyGlobalStats, client.GetGlobalStats)
	return fromCache(value, res)
}

// Conversation returns the direct-message history with partner. Not ready
// until both the client and the partner parameter are present.
func (s *Store) Conversation(ctx context.Context, partner backend.Principal) Result[[]backend.ChatMessage] {
	client := s.provider.Client()
	if client == nil || partner == "" {
		return notReady[[]backend.ChatMessage]()
	}
	value, res := querycache.ReadAs(ctx, s.cache, ConversationKey(partner),
		func(ctx context.Context) ([]backend.ChatMessage, error) {
			return client.GetConversation(ctx, partner)
		})
	return fromCache(value, res)
}

// SendMessage sends a direct message and invalidates only the conversation
// keyed by this partner.
func (s *Store) SendMessage(ctx context.Context, receiver backend.Principal, content string) error {
	client := s.provider.Client()
	if client == nil {
		return ErrNotReady
	}
	if receiver == "" {
		return errors.New("data: receiver must not be empty")
	}
	if err := client.SendMessage(ctx, receiver, content); err != nil {
		return err
	}
	s.cache.Invalidate(ConversationKey(receiver))
	return nil
}

// GlobalChatFeed returns the public feed.
func (s *Store) GlobalChatFeed(ctx context.Context) Result[[]backend.ChatMessage] {
	client := s.provider.Client()
	if client == nil {
		return notReady[[]backend.ChatMessage]()
	}
	value, res := querycache.ReadAs(ctx, s.cache, KeyGlobalChatFeed, client.GetGlobalChatFeed)
	return fromCache(value, res)
}

// PostGlobalMessage posts to the public feed and refreshes it.
func (s *Store) PostGlobalMessage(ctx context.Context, content, perspective string) error {
	client := s.provider.Client()
	if client == nil {
		return ErrNotReady
	}
	if err := client.PostGlobalMessage(ctx, content, perspective); err != nil {
		return err
	}
	s.cache.Invalidate(KeyGlobalChatFeed)
	return nil
}

// AvailableConnections returns the discovery listing.
func (s *Store) AvailableConnections(ctx context.Context) Result[[]backend.Connection] {
	client := s.provider.Client()
	if client == nil {
		return notReady[[]backend.Connection]()
	}
	value, res := querycache.ReadAs(ctx, s.cache, KeyAvailableConnections, client.GetAvailableConnections)
	return fromCache(value, res)
}

// CallerRole returns the caller's role.
func (s *Store) CallerRole(ctx context.Context) Result[backend.UserRole] {
	client := s.provider.Client()
	if client == nil {
		return notReady[backend.UserRole]()
	}
	value, res := querycache.ReadAs(ctx, s.cache, KeyCallerRole, client.GetCallerUserRole)
	return fromCache(value, res)
}

// AssignRole assigns a role to a user (admin) and refreshes role-derived
// views.
func (s *Store) AssignRole(ctx context.Context, user backend.Principal, role backend.UserRole) error {
	client := s.provider.Client()
	if client == nil {
		return ErrNotReady
	}
	if err := client.AssignCallerUserRole(ctx, user, role); err != nil {
		return err
	}
	s.cache.Invalidate(KeyCallerRole)
	s.cache.Invalidate(KeyAllProfiles)
	return nil
}

// AdminStats returns the admin aggregate (admin only, uncached: the admin
// dashboard always wants live numbers).
func (s *Store) AdminStats(ctx context.Context) (backend.AdminStats, error) {
	client := s.provider.Client()
	if client == nil {
		return backend.AdminStats{}, ErrNotReady
	}
	return client.GetAdminStats(ctx)
}
