// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package realtime

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// subscriber wraps a websocket connection with a write lock. gorilla/websocket
// allows only one concurrent writer per connection and publishes can arrive
// from many goroutines (request handlers, timers, cleanup).
type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *subscriber) send(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

// Hub is the in-process Broadcaster implementation: a per-topic subscriber
// registry fed by websocket upgrades.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*subscriber]struct{}

	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		topics: make(map[string]map[*subscriber]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Cross-origin policy is enforced by the CORS middleware layer.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Publish sends the event to every subscriber of the topic. Failed writes
// evict the subscriber; they never propagate to the publisher.
func (h *Hub) Publish(topic string, event Event) {
	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.topics[topic]))
	for s := range h.topics[topic] {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	for _, s := range subs {
		if err := s.send(event); err != nil {
			slog.Debug("dropping dead subscriber", "topic", topic, "error", err)
			h.unsubscribe(s)
			s.conn.Close()
		}
	}
}

// ServeWS upgrades the request to a websocket and subscribes it to the given
// topics until the peer disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, topics ...string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	sub := &subscriber{conn: conn}
	h.subscribe(sub, topics...)

	slog.Info("subscriber connected", "topics", topics, "remote", r.RemoteAddr)

	// Read loop: the protocol is one-way, so inbound frames are discarded.
	// The loop exists to notice the peer going away.
	go func() {
		defer func() {
			h.unsubscribe(sub)
			conn.Close()
			slog.Info("subscriber disconnected", "topics", topics)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// SubscriberCount reports how many connections are subscribed to a topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

func (h *Hub) subscribe(s *subscriber, topics ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, topic := range topics {
		if h.topics[topic] == nil {
			h.topics[topic] = make(map[*subscriber]struct{})
		}
		h.topics[topic][s] = struct{}{}
	}
}

func (h *Hub) unsubscribe(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for topic, subs := range h.topics {
		delete(subs, s)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
}
