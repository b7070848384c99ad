package devserver

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/caffeinepub/zenlink-5/internal/backend"
	"github.com/caffeinepub/zenlink-5/internal/logging"
)

// feedHub fans global-feed messages out to websocket subscribers.
type feedHub struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]struct{}
	logger logging.Logger
}

func newFeedHub(logger logging.Logger) *feedHub {
	return &feedHub{
		conns:  map[*websocket.Conn]struct{}{},
		logger: logging.OrNop(logger),
	}
}

func (h *feedHub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

func (h *feedHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
	conn.Close()
}

// broadcast writes msg to every subscriber, dropping the ones that fail.
func (h *feedHub) broadcast(msg backend.ChatMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(msg); err != nil {
			h.logger.Debug("dropping feed subscriber: %v", err)
			delete(h.conns, conn)
			conn.Close()
		}
	}
}

func (h *feedHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.Close()
		delete(h.conns, conn)
	}
}
