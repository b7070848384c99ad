package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/caffeinepub/zenlink-5/internal/logging"
)

// WatchGlobalFeed opens a websocket subscription to the public feed and
// delivers new messages until ctx is cancelled or the connection drops. The
// returned channel is closed on exit; callers wanting the backlog should
// still issue a GetGlobalChatFeed read.
func (c *Client) WatchGlobalFeed(ctx context.Context) (<-chan ChatMessage, error) {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/ws/global"

	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, err
	}

	out := make(chan ChatMessage, 16)
	logger := logging.OrNop(c.logger)

	// Close the socket when the caller goes away so the read loop unblocks.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	go func() {
		defer close(out)
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					logger.Debug("global feed watcher closed: %v", err)
				}
				return
			}
			var msg ChatMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				logger.Warn("global feed watcher: bad frame: %v", err)
				continue
			}
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
