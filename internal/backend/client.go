package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	zlerrors "github.com/caffeinepub/zenlink-5/internal/errors"
	"github.com/caffeinepub/zenlink-5/internal/httpclient"
	"github.com/caffeinepub/zenlink-5/internal/logging"
)

// ClientConfig configures a backend client.
type ClientConfig struct {
	BaseURL       string
	IdentityToken string        // bearer token; empty means anonymous
	Timeout       time.Duration // whole-request timeout, transport-level
	BodyLimit     int64         // max response body bytes, 0 = unlimited
	Logger        logging.Logger
}

// Client is the single point of contact with the remote backend. All calls
// are synchronous from the caller's point of view but safe for concurrent
// use; the query cache above it provides the async/memoised view.
//
// The client's lifecycle follows the authenticated identity: a new identity
// means a new client (see data.ClientProvider).
type Client struct {
	baseURL   string
	token     string
	http      *http.Client
	bodyLimit int64
	logger    logging.Logger
}

// NewClient builds a client guarded by a circuit breaker.
func NewClient(cfg ClientConfig) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("backend: base URL must not be empty")
	}
	logger := logging.OrNop(cfg.Logger)
	return &Client{
		baseURL:   base,
		token:     cfg.IdentityToken,
		http:      httpclient.NewWithCircuitBreaker(cfg.Timeout, logger, "zenlink-backend"),
		bodyLimit: cfg.BodyLimit,
		logger:    logger,
	}, nil
}

// Close releases idle network resources. The client must not be used after.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// Identity returns the bearer token the client was built with.
func (c *Client) Identity() string {
	return c.token
}

type errorEnvelope struct {
	Error string `json:"error"`
}

// call posts JSON-encoded args to an operation endpoint and decodes the reply.
func call[T any](ctx context.Context, c *Client, op string, args any) (T, error) {
	var zero T

	body, err := json.Marshal(args)
	if err != nil {
		return zero, fmt.Errorf("%s: encode args: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/"+op, bytes.NewReader(body))
	if err != nil {
		return zero, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return zero, &zlerrors.TransientError{Err: fmt.Errorf("%s: %w", op, err)}
	}
	defer resp.Body.Close()

	data, err := httpclient.ReadAllWithLimit(resp.Body, c.bodyLimit)
	if err != nil {
		return zero, fmt.Errorf("%s: read response: %w", op, err)
	}
	c.logger.Debug("%s -> %d (%d bytes, %v)", op, resp.StatusCode, len(data), time.Since(start))

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(data))
		var envelope errorEnvelope
		if json.Unmarshal(data, &envelope) == nil && envelope.Error != "" {
			msg = envelope.Error
		}
		wrapped := fmt.Errorf("%s: backend returned %d: %s", op, resp.StatusCode, msg)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return zero, &zlerrors.TransientError{Err: wrapped, StatusCode: resp.StatusCode}
		}
		return zero, &zlerrors.PermanentError{Err: wrapped, StatusCode: resp.StatusCode}
	}

	if len(data) == 0 {
		return zero, nil
	}
	if err := json.Unmarshal(data, &zero); err != nil {
		return zero, fmt.Errorf("%s: decode response: %w", op, err)
	}
	return zero, nil
}

type emptyArgs struct{}

// GetCallerUserProfile returns the caller's profile, or nil when none exists.
// A nil profile is a meaningful answer, not an error.
func (c *Client) GetCallerUserProfile(ctx context.Context) (*UserProfile, error) {
	return call[*UserProfile](ctx, c, "getCallerUserProfile", emptyArgs{})
}

// SaveCallerUserProfile upserts the caller's full profile object.
func (c *Client) SaveCallerUserProfile(ctx context.Context, profile UserProfile) error {
	_, err := call[json.RawMessage](ctx, c, "saveCallerUserProfile", profile)
	return err
}

// GetUserProfile returns another identity's profile, or nil when none exists.
func (c *Client) GetUserProfile(ctx context.Context, user Principal) (*UserProfile, error) {
	return call[*UserProfile](ctx, c, "getUserProfile", map[string]any{"user": user})
}

// GetAllUserProfiles returns every (identity, profile) pair.
func (c *Client) GetAllUserProfiles(ctx context.Context) ([]ProfileEntry, error) {
	return call[[]ProfileEntry](ctx, c, "getAllUserProfiles", emptyArgs{})
}

// SubmitWeeklyMoment creates a moment owned by the caller.
func (c *Client) SubmitWeeklyMoment(ctx context.Context, content, category string) error {
	_, err := call[json.RawMessage](ctx, c, "submitWeeklyMoment", map[string]any{
		"content":  content,
		"category": category,
	})
	return err
}

// GetTopMoments returns moments ranked by impact.
func (c *Client) GetTopMoments(ctx context.Context) ([]WeeklyMoment, error) {
	return call[[]WeeklyMoment](ctx, c, "getTopMoments", emptyArgs{})
}

// IncrementImpact sends an increment intent for a moment's impact counter.
// Atomicity (and idempotency, if any) is the backend's responsibility.
func (c *Client) IncrementImpact(ctx context.Context, momentID uint64) error {
	_, err := call[json.RawMessage](ctx, c, "incrementImpact", map[string]any{"momentId": momentID})
	return err
}

// RemoveMoment deletes a moment (admin only).
func (c *Client) RemoveMoment(ctx context.Context, momentID uint64) error {
	_, err := call[json.RawMessage](ctx, c, "removeMoment", map[string]any{"momentId": momentID})
	return err
}

// GetDailyChallenges lists the caller's daily challenges.
func (c *Client) GetDailyChallenges(ctx context.Context) ([]DailyChallenge, error) {
	return call[[]DailyChallenge](ctx, c, "getDailyChallenges", emptyArgs{})
}

// CompleteDailyChallenge triggers completion; streak semantics live server-side.
func (c *Client) CompleteDailyChallenge(ctx context.Context, challengeID uint64) error {
	_, err := call[json.RawMessage](ctx, c, "completeDailyChallenge", map[string]any{"challengeId": challengeID})
	return err
}

// GetWeeklyChallenges lists the caller's weekly challenges.
func (c *Client) GetWeeklyChallenges(ctx context.Context) ([]WeeklyChallenge, error) {
	return call[[]WeeklyChallenge](ctx, c, "getWeeklyChallenges", emptyArgs{})
}

// CompleteWeeklyChallenge marks a weekly challenge completed.
func (c *Client) CompleteWeeklyChallenge(ctx context.Context, challengeID uint64) error {
	_, err := call[json.RawMessage](ctx, c, "completeWeeklyChallenge", map[string]any{"challengeId": challengeID})
	return err
}

// GetGlobalStats returns aggregate community metrics.
func (c *Client) GetGlobalStats(ctx context.Context) (GlobalStats, error) {
	return call[GlobalStats](ctx, c, "getGlobalStats", emptyArgs{})
}

// SendMessage sends a direct message to receiver.
func (c *Client) SendMessage(ctx context.Context, receiver Principal, content string) error {
	_, err := call[json.RawMessage](ctx, c, "sendMessage", map[string]any{
		"receiver": receiver,
		"content":  content,
	})
	return err
}

// GetConversation returns the direct-message history with partner.
func (c *Client) GetConversation(ctx context.Context, partner Principal) ([]ChatMessage, error) {
	return call[[]ChatMessage](ctx, c, "getConversation", map[string]any{"partner": partner})
}

// PostGlobalMessage posts to the public feed with an optional perspective tag.
func (c *Client) PostGlobalMessage(ctx context.Context, content, perspective string) error {
	_, err := call[json.RawMessage](ctx, c, "postGlobalMessage", map[string]any{
		"content":     content,
		"perspective": perspective,
	})
	return err
}

// GetGlobalChatFeed returns the public feed.
func (c *Client) GetGlobalChatFeed(ctx context.Context) ([]ChatMessage, error) {
	return call[[]ChatMessage](ctx, c, "getGlobalChatFeed", emptyArgs{})
}

// GetAvailableConnections returns the discovery listing.
func (c *Client) GetAvailableConnections(ctx context.Context) ([]Connection, error) {
	return call[[]Connection](ctx, c, "getAvailableConnections", emptyArgs{})
}

// GetCallerUserRole returns the caller's role.
func (c *Client) GetCallerUserRole(ctx context.Context) (UserRole, error) {
	return call[UserRole](ctx, c, "getCallerUserRole", emptyArgs{})
}

// IsCallerAdmin reports whether the caller holds the admin role.
func (c *Client) IsCallerAdmin(ctx context.Context) (bool, error) {
	return call[bool](ctx, c, "isCallerAdmin", emptyArgs{})
}

// AssignCallerUserRole assigns a role to a user (admin only).
func (c *Client) AssignCallerUserRole(ctx context.Context, user Principal, role UserRole) error {
	_, err := call[json.RawMessage](ctx, c, "assignCallerUserRole", map[string]any{
		"user": user,
		"role": role,
	})
	return err
}

// GetAdminStats returns the admin dashboard aggregate (admin only).
func (c *Client) GetAdminStats(ctx context.Context) (AdminStats, error) {
	return call[AdminStats](ctx, c, "getAdminStats", emptyArgs{})
}
