// Package notify pushes list events to followers over WebSocket.
package notify

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/Garicore01/PlayBeat-Backend/logger"

	"github.com/gorilla/websocket"
)

// EventType classifies a list event.
type EventType string

const (
	EventListUpdated   EventType = "list_updated"
	EventListDeleted   EventType = "list_deleted"
	EventMemberAdded   EventType = "member_added"
	EventMemberRemoved EventType = "member_removed"
)

// Event is the wire message pushed to subscribers of a list.
type Event struct {
	Type      EventType       `json:"type"`
	ListID    int64           `json:"listId"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// subscriber is one open WebSocket connection watching a list.
type subscriber struct {
	conn   *websocket.Conn
	send   chan Event
	listID int64
}

// Hub fans list events out to subscribers. One goroutine per subscriber
// drains its send channel; slow consumers are dropped rather than blocking
// the broadcast.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[int64]map[*subscriber]struct{} // listID -> connections
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[int64]map[*subscriber]struct{})}
}

// Subscribe registers a connection for a list's events and starts its writer.
// The connection is closed and unregistered when the peer goes away.
func (h *Hub) Subscribe(listID int64, conn *websocket.Conn) {
	sub := &subscriber{
		conn:   conn,
		send:   make(chan Event, 16),
		listID: listID,
	}

	h.mu.Lock()
	if h.subscribers[listID] == nil {
		h.subscribers[listID] = make(map[*subscriber]struct{})
	}
	h.subscribers[listID][sub] = struct{}{}
	h.mu.Unlock()

	go sub.writeLoop(h)
	go sub.readLoop(h)
}

func (h *Hub) unsubscribe(sub *subscriber) {
	h.mu.Lock()
	if conns, ok := h.subscribers[sub.listID]; ok {
		if _, ok := conns[sub]; ok {
			delete(conns, sub)
			close(sub.send)
			if len(conns) == 0 {
				delete(h.subscribers, sub.listID)
			}
		}
	}
	h.mu.Unlock()
	sub.conn.Close()
}

// Broadcast sends an event to every subscriber of the list.
func (h *Hub) Broadcast(event Event) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	h.mu.RLock()
	conns := h.subscribers[event.ListID]
	dropped := make([]*subscriber, 0)
	for sub := range conns {
		select {
		case sub.send <- event:
		default:
			dropped = append(dropped, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range dropped {
		logger.Warn("Dropping slow list subscriber", logger.Int64("listId", sub.listID))
		h.unsubscribe(sub)
	}
}

// SubscriberCount returns the number of open connections for a list.
func (h *Hub) SubscriberCount(listID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[listID])
}

func (s *subscriber) writeLoop(h *Hub) {
	for event := range s.send {
		if err := s.conn.WriteJSON(event); err != nil {
			h.unsubscribe(s)
			return
		}
	}
}

// readLoop discards inbound frames, it exists to detect the peer closing.
func (s *subscriber) readLoop(h *Hub) {
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			h.unsubscribe(s)
			return
		}
	}
}
