package devserver

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caffeinepub/zenlink-5/internal/backend"
)

func newTestClient(t *testing.T, ts *httptest.Server, token string) *backend.Client {
	t.Helper()
	client, err := backend.NewClient(backend.ClientConfig{
		BaseURL:       ts.URL,
		IdentityToken: token,
		Timeout:       5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func startServer(t *testing.T, admins ...backend.Principal) (*Server, *httptest.Server) {
	t.Helper()
	srv := NewServer(&ServerConfig{Admins: admins})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func TestProfileRoundTrip(t *testing.T) {
	_, ts := startServer(t)
	client := newTestClient(t, ts, "alice")
	ctx := context.Background()

	got, err := client.GetCallerUserProfile(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "no profile saved yet")

	profile := backend.UserProfile{
		DisplayName:        "Alice",
		Avatar:             "🦊",
		Interests:          []string{"Philosophy"},
		Perspectives:       []string{"Optimist"},
		MBTIType:           "ENFP",
		CommunicationStyle: "Listener",
	}
	require.NoError(t, client.SaveCallerUserProfile(ctx, profile))

	got, err = client.GetCallerUserProfile(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, profile, *got)

	other := newTestClient(t, ts, "bob")
	fetched, err := other.GetUserProfile(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, fetched)
	assert.Equal(t, "Alice", fetched.DisplayName)
}

func TestProfileRejectsUnknownAvatar(t *testing.T) {
	_, ts := startServer(t)
	client := newTestClient(t, ts, "alice")

	err := client.SaveCallerUserProfile(context.Background(), backend.UserProfile{
		DisplayName: "Alice",
		Avatar:      "🤖",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "allowed set")
}

func TestIdentityRequired(t *testing.T) {
	_, ts := startServer(t)
	anon := newTestClient(t, ts, "")

	_, err := anon.GetCallerUserProfile(context.Background())
	require.Error(t, err)

	role, err := anon.GetCallerUserRole(context.Background())
	require.NoError(t, err)
	assert.Equal(t, backend.RoleGuest, role)
}

func TestMomentsRankingAndImpact(t *testing.T) {
	_, ts := startServer(t)
	client := newTestClient(t, ts, "alice")
	ctx := context.Background()

	require.NoError(t, client.SubmitWeeklyMoment(ctx, "learned to say no", "Growth"))
	require.NoError(t, client.SubmitWeeklyMoment(ctx, "helped a neighbor move", "Helpful"))

	moments, err := client.GetTopMoments(ctx)
	require.NoError(t, err)
	require.Len(t, moments, 2)

	// Boost the first moment above the second.
	require.NoError(t, client.IncrementImpact(ctx, moments[1].ID))
	boosted := moments[1].ID

	moments, err = client.GetTopMoments(ctx)
	require.NoError(t, err)
	assert.Equal(t, boosted, moments[0].ID)
	assert.Equal(t, uint64(1), moments[0].ImpactCount)
}

func TestMomentCategoryValidated(t *testing.T) {
	_, ts := startServer(t)
	client := newTestClient(t, ts, "alice")

	err := client.SubmitWeeklyMoment(context.Background(), "something", "Gossip")
	require.Error(t, err)
}

func TestRemoveMomentRequiresAdmin(t *testing.T) {
	_, ts := startServer(t, "root")
	ctx := context.Background()

	alice := newTestClient(t, ts, "alice")
	require.NoError(t, alice.SubmitWeeklyMoment(ctx, "a moment", "Growth"))
	moments, err := alice.GetTopMoments(ctx)
	require.NoError(t, err)
	require.Len(t, moments, 1)

	require.Error(t, alice.RemoveMoment(ctx, moments[0].ID))

	admin := newTestClient(t, ts, "root")
	require.NoError(t, admin.RemoveMoment(ctx, moments[0].ID))

	moments, err = alice.GetTopMoments(ctx)
	require.NoError(t, err)
	assert.Empty(t, moments)
}

func TestConversationIsSharedBetweenBothSides(t *testing.T) {
	_, ts := startServer(t)
	ctx := context.Background()
	alice := newTestClient(t, ts, "alice")
	bob := newTestClient(t, ts, "bob")

	require.NoError(t, alice.SendMessage(ctx, "bob", "hey bob"))
	require.NoError(t, bob.SendMessage(ctx, "alice", "hey alice"))

	fromAlice, err := alice.GetConversation(ctx, "bob")
	require.NoError(t, err)
	fromBob, err := bob.GetConversation(ctx, "alice")
	require.NoError(t, err)

	require.Len(t, fromAlice, 2)
	assert.Equal(t, fromAlice, fromBob)
	assert.Equal(t, backend.Principal("alice"), fromAlice[0].Sender)
}

func TestGlobalFeedAndStats(t *testing.T) {
	_, ts := startServer(t)
	ctx := context.Background()
	alice := newTestClient(t, ts, "alice")

	require.NoError(t, alice.SaveCallerUserProfile(ctx, backend.UserProfile{
		DisplayName: "Alice", Avatar: "🦊", MBTIType: "ENFP",
	}))
	require.NoError(t, alice.PostGlobalMessage(ctx, "hello world", "Optimist"))

	feed, err := alice.GetGlobalChatFeed(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "Optimist", feed[0].Perspective)

	stats, err := alice.GetGlobalStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stats.ActiveUsers)
	assert.Equal(t, []string{"ENFP"}, stats.TrendingMBTITypes)
}

func TestChallenges(t *testing.T) {
	_, ts := startServer(t)
	ctx := context.Background()
	client := newTestClient(t, ts, "alice")

	daily, err := client.GetDailyChallenges(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, daily)
	assert.Zero(t, daily[0].Streak)

	require.NoError(t, client.CompleteDailyChallenge(ctx, daily[0].ID))
	require.NoError(t, client.CompleteDailyChallenge(ctx, daily[0].ID))

	daily, err = client.GetDailyChallenges(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), daily[0].Streak)

	weekly, err := client.GetWeeklyChallenges(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, weekly)
	assert.False(t, weekly[0].IsCompleted)

	require.NoError(t, client.CompleteWeeklyChallenge(ctx, weekly[0].ID))
	weekly, err = client.GetWeeklyChallenges(ctx)
	require.NoError(t, err)
	assert.True(t, weekly[0].IsCompleted)
}

func TestConnectionsExcludeViewer(t *testing.T) {
	_, ts := startServer(t)
	ctx := context.Background()
	alice := newTestClient(t, ts, "alice")
	bob := newTestClient(t, ts, "bob")

	require.NoError(t, alice.SaveCallerUserProfile(ctx, backend.UserProfile{DisplayName: "Alice", Avatar: "🦊"}))
	require.NoError(t, bob.SaveCallerUserProfile(ctx, backend.UserProfile{DisplayName: "Bob", Avatar: "🌊"}))

	conns, err := alice.GetAvailableConnections(ctx)
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.Equal(t, "bob", conns[0].ID)
}

func TestRolesAndAdminStats(t *testing.T) {
	_, ts := startServer(t, "root")
	ctx := context.Background()
	admin := newTestClient(t, ts, "root")
	alice := newTestClient(t, ts, "alice")

	isAdmin, err := admin.IsCallerAdmin(ctx)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	isAdmin, err = alice.IsCallerAdmin(ctx)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	require.Error(t, alice.AssignCallerUserRole(ctx, "bob", backend.RoleAdmin))
	require.NoError(t, admin.AssignCallerUserRole(ctx, "alice", backend.RoleAdmin))

	role, err := alice.GetCallerUserRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, backend.RoleAdmin, role)

	_, err = admin.GetAdminStats(ctx)
	require.NoError(t, err)
}

func TestGlobalFeedSocketBroadcasts(t *testing.T) {
	_, ts := startServer(t)
	ctx := context.Background()
	alice := newTestClient(t, ts, "alice")

	watcher, err := backend.NewClient(backend.ClientConfig{
		BaseURL:       ts.URL,
		IdentityToken: "bob",
		Timeout:       5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(watcher.Close)

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	feed, err := watcher.WatchGlobalFeed(watchCtx)
	require.NoError(t, err)

	// Let the subscriber register before posting.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, alice.PostGlobalMessage(ctx, "live message", ""))

	select {
	case msg := <-feed:
		assert.Equal(t, "live message", msg.Content)
		assert.Equal(t, backend.Principal("alice"), msg.Sender)
	case <-time.After(3 * time.Second):
		t.Fatal("no feed message received")
	}
}
