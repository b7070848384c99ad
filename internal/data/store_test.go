package data

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caffeinepub/zenlink-5/internal/backend"
	"github.com/caffeinepub/zenlink-5/internal/devserver"
	"github.com/caffeinepub/zenlink-5/internal/querycache"
)

type nilProvider struct{}

func (nilProvider) Client() *backend.Client { return nil }

func newTestStore(t *testing.T, token string, admins ...backend.Principal) *Store {
	t.Helper()
	srv := devserver.NewServer(&devserver.ServerConfig{Admins: admins})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client, err := backend.NewClient(backend.ClientConfig{
		BaseURL:       ts.URL,
		IdentityToken: token,
		Timeout:       5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	cache, err := querycache.New(querycache.Config{StaleTime: time.Hour})
	require.NoError(t, err)
	return NewStore(StaticProvider{C: client}, cache, nil)
}

// waitFor polls cond until it holds or the deadline hits.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never held")
}

func TestAccessorsReturnLoadingWithoutClient(t *testing.T) {
	cache, err := querycache.New(querycache.Config{})
	require.NoError(t, err)
	s := NewStore(nilProvider{}, cache, nil)
	ctx := context.Background()

	assert.True(t, s.CallerProfile(ctx).IsLoading)
	assert.True(t, s.TopMoments(ctx).IsLoading)
	assert.True(t, s.Conversation(ctx, "bob").IsLoading)
	assert.False(t, s.Ready())

	assert.ErrorIs(t, s.SubmitWeeklyMoment(ctx, "x", "Growth"), ErrNotReady)
	assert.ErrorIs(t, s.SendMessage(ctx, "bob", "hi"), ErrNotReady)
}

func TestConversationNotReadyWithoutPartner(t *testing.T) {
	s := newTestStore(t, "alice")
	res := s.Conversation(context.Background(), "")
	assert.True(t, res.IsLoading)
	assert.False(t, res.IsFetched)
}

func TestCallerProfileNilMeansNoProfile(t *testing.T) {
	s := newTestStore(t, "alice")
	res := s.CallerProfile(context.Background())
	require.NoError(t, res.Err)
	assert.True(t, res.IsFetched)
	assert.Nil(t, res.Data)
}

func TestSaveProfileOptimisticallyUpdatesCache(t *testing.T) {
	s := newTestStore(t, "alice")
	ctx := context.Background()

	profile := backend.UserProfile{DisplayName: "Alice", Avatar: "🦊"}
	require.NoError(t, s.SaveCallerProfile(ctx, profile))

	// The optimistic write is visible before any refetch settles.
	cached, ok := s.Cache().Peek(KeyCurrentProfile)
	require.True(t, ok)
	got, ok := cached.Value.(*backend.UserProfile)
	require.True(t, ok)
	assert.Equal(t, "Alice", got.DisplayName)

	// The reconciling read converges on the backend copy.
	waitFor(t, func() bool {
		res := s.CallerProfile(ctx)
		return res.IsFetched && res.Data != nil && res.Data.DisplayName == "Alice"
	})
}

func TestSubmitMomentRefreshesTopMoments(t *testing.T) {
	s := newTestStore(t, "alice")
	ctx := context.Background()

	res := s.TopMoments(ctx)
	require.NoError(t, res.Err)
	assert.Empty(t, res.Data)

	require.NoError(t, s.SubmitWeeklyMoment(ctx, "ran a marathon", "Growth"))

	waitFor(t, func() bool {
		res := s.TopMoments(ctx)
		return len(res.Data) == 1 && res.Data[0].Content == "ran a marathon"
	})
}

func TestIncrementImpactRefreshesRanking(t *testing.T) {
	s := newTestStore(t, "alice")
	ctx := context.Background()

	require.NoError(t, s.SubmitWeeklyMoment(ctx, "first", "Growth"))
	waitFor(t, func() bool { return len(s.TopMoments(ctx).Data) == 1 })

	id := s.TopMoments(ctx).Data[0].ID
	require.NoError(t, s.IncrementImpact(ctx, id))

	waitFor(t, func() bool {
		data := s.TopMoments(ctx).Data
		return len(data) == 1 && data[0].ImpactCount == 1
	})
}

func TestSendMessageInvalidatesOnlyThatConversation(t *testing.T) {
	s := newTestStore(t, "alice")
	ctx := context.Background()

	// Prime both conversation entries.
	require.NoError(t, s.Conversation(ctx, "bob").Err)
	require.NoError(t, s.Conversation(ctx, "carol").Err)

	require.NoError(t, s.SendMessage(ctx, "bob", "hey"))

	bob, ok := s.Cache().Peek(ConversationKey("bob"))
	require.True(t, ok)
	assert.True(t, bob.Stale, "receiver's conversation must be invalidated")

	carol, ok := s.Cache().Peek(ConversationKey("carol"))
	require.True(t, ok)
	assert.False(t, carol.Stale, "unrelated conversations stay fresh")

	waitFor(t, func() bool {
		return len(s.Conversation(ctx, "bob").Data) == 1
	})
}

func TestPostGlobalMessageRefreshesFeed(t *testing.T) {
	s := newTestStore(t, "alice")
	ctx := context.Background()

	require.NoError(t, s.GlobalChatFeed(ctx).Err)
	require.NoError(t, s.PostGlobalMessage(ctx, "hello all", "Realist"))

	waitFor(t, func() bool {
		data := s.GlobalChatFeed(ctx).Data
		return len(data) == 1 && data[0].Content == "hello all"
	})
}

func TestCompleteChallengesRefreshTheirLists(t *testing.T) {
	s := newTestStore(t, "alice")
	ctx := context.Background()

	daily := s.DailyChallenges(ctx)
	require.NoError(t, daily.Err)
	require.NotEmpty(t, daily.Data)

	require.NoError(t, s.CompleteDailyChallenge(ctx, daily.Data[0].ID))
	waitFor(t, func() bool {
		data := s.DailyChallenges(ctx).Data
		return len(data) > 0 && data[0].Streak == 1
	})

	weekly := s.WeeklyChallenges(ctx)
	require.NoError(t, weekly.Err)
	require.NotEmpty(t, weekly.Data)

	require.NoError(t, s.CompleteWeeklyChallenge(ctx, weekly.Data[0].ID))
	waitFor(t, func() bool {
		data := s.WeeklyChallenges(ctx).Data
		return len(data) > 0 && data[0].IsCompleted
	})
}

func TestAssignRoleRefreshesRole(t *testing.T) {
	s := newTestStore(t, "root", "root")
	ctx := context.Background()

	role := s.CallerRole(ctx)
	require.NoError(t, role.Err)
	assert.Equal(t, backend.RoleAdmin, role.Data)

	require.NoError(t, s.AssignRole(ctx, "root", backend.RoleUser))
	waitFor(t, func() bool {
		return s.CallerRole(ctx).Data == backend.RoleUser
	})
}

func TestAdminStatsUncached(t *testing.T) {
	s := newTestStore(t, "root", "root")
	ctx := context.Background()

	stats, err := s.AdminStats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalMoments)

	require.NoError(t, s.SubmitWeeklyMoment(ctx, "m", "Growth"))

	stats, err = s.AdminStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats.TotalMoments)
}

func TestStatsRefresherInvalidatesOnTick(t *testing.T) {
	s := newTestStore(t, "alice")
	ctx := context.Background()

	require.NoError(t, s.GlobalStats(ctx).Err)

	stop := s.StartStatsRefresher(ctx, 20*time.Millisecond)
	defer stop()

	// A tick marks the entry stale and immediately re-reads it.
	waitFor(t, func() bool {
		res, ok := s.Cache().Peek(KeyGlobalStats)
		return ok && res.Fetched && !res.Stale
	})
}
