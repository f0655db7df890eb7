// Package realtime fans schedule and work-order events out to websocket
// clients grouped into named rooms. Delivery is fire-and-forget, at most
// once: a disconnected client simply misses events and reconciles on its
// next full fetch.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/fieldworks/woms/internal/metrics"
)

type subscription struct {
	client *Client
	room   string
}

type outbound struct {
	rooms []string
	data  []byte
}

// Hub routes events to room subscribers. All room state is owned by the Run
// loop; the channels are the only way in.
type Hub struct {
	logger  *zap.Logger
	running atomic.Bool

	rooms   map[string]map[*Client]struct{}
	clients map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	join       chan subscription
	leave      chan subscription
	broadcast  chan outbound
	done       chan struct{}
}

// NewHub creates a hub. Call Run before serving connections.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:     logger,
		rooms:      make(map[string]map[*Client]struct{}),
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan subscription),
		leave:      make(chan subscription),
		broadcast:  make(chan outbound, 64),
		done:       make(chan struct{}),
	}
}

// Run owns the room registry until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	h.running.Store(true)
	defer h.running.Store(false)
	for {
		select {
		case <-ctx.Done():
			// Close every connection, including clients that never joined
			// a room. The done channel releases readPumps mid-unregister.
			close(h.done)
			for client := range h.clients {
				client.closeSend()
			}
			return

		case client := <-h.register:
			h.clients[client] = struct{}{}

		case client := <-h.unregister:
			delete(h.clients, client)
			for room, members := range h.rooms {
				if _, ok := members[client]; ok {
					delete(members, client)
					if len(members) == 0 {
						delete(h.rooms, room)
					}
				}
			}
			client.closeSend()

		case sub := <-h.join:
			members, ok := h.rooms[sub.room]
			if !ok {
				members = make(map[*Client]struct{})
				h.rooms[sub.room] = members
			}
			members[sub.client] = struct{}{}

		case sub := <-h.leave:
			if members, ok := h.rooms[sub.room]; ok {
				delete(members, sub.client)
				if len(members) == 0 {
					delete(h.rooms, sub.room)
				}
			}

		case msg := <-h.broadcast:
			delivered := make(map[*Client]struct{})
			for _, room := range msg.rooms {
				for client := range h.rooms[room] {
					if _, dup := delivered[client]; dup {
						continue
					}
					delivered[client] = struct{}{}
					select {
					case client.send <- msg.data:
					default:
						// Slow consumer; drop the event rather than stall
						// the hub.
						h.logger.Debug("dropping event for slow client",
							zap.String("room", room))
					}
				}
			}
		}
	}
}

// Ping reports whether the Run loop is active, for readiness probes.
func (h *Hub) Ping(ctx context.Context) error {
	if h == nil || !h.running.Load() {
		return errors.New("hub is not running")
	}
	return nil
}

// Publish broadcasts an event to the given rooms. Never blocks the caller;
// when the hub queue is full the event is dropped.
func (h *Hub) Publish(rooms []string, event string, payload any) {
	if h == nil || len(rooms) == 0 {
		return
	}

	data, err := json.Marshal(Event{
		Event:     event,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		h.logger.Warn("failed to encode broadcast event",
			zap.String("event", event), zap.Error(err))
		return
	}

	metrics.RecordBroadcast()

	select {
	case h.broadcast <- outbound{rooms: rooms, data: data}:
	default:
		h.logger.Warn("broadcast queue full, dropping event",
			zap.String("event", event))
	}
}
