package websocket

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

type eventKind int

const (
	eventJoin eventKind = iota
	eventChat
)

// event is the tagged variant the hub dispatches on: a join or a chat
// message, both scoped to a room.
type event struct {
	kind     eventKind
	client   *Client
	room     string
	username string
	body     string
}

// Hub owns all live connections and the room registry. Room membership is
// purely in-memory: a connection belongs to the rooms it has joined and
// drops out of all of them when it disconnects. All events flow through a
// single goroutine, so delivery order within a room matches the order the
// hub accepted the events.
type Hub struct {
	rooms      map[string]map[*Client]bool
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	events     chan *event
	stop       chan struct{}
	done       chan struct{}
	stopped    bool
	logger     *zap.Logger
	mu         sync.RWMutex
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan *event, 64),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				client.Close()
			}
			h.clients = make(map[*Client]bool)
			h.rooms = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				h.clients[client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if !h.stopped {
				if _, ok := h.clients[client]; ok {
					delete(h.clients, client)
					h.removeFromRooms(client)
					client.Close()
				}
			}
			h.mu.Unlock()

		case ev := <-h.events:
			h.handleEvent(ev)
		}
	}
}

// Stop shuts the hub down and closes every client. It blocks until Run
// has exited.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.mu.Unlock()

	close(h.stop)
	<-h.done
}

func (h *Hub) handleEvent(ev *event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		return
	}

	switch ev.kind {
	case eventJoin:
		// Malformed joins are dropped without an error; the channel is
		// best-effort on both sides.
		if ev.room == "" || ev.username == "" {
			h.logger.Debug("dropping malformed join event")
			return
		}

		// A join can still be queued when its connection unregisters.
		// Re-adding the dead client would broadcast on its closed send
		// channel.
		if !h.clients[ev.client] {
			h.logger.Debug("dropping join event from disconnected client")
			return
		}

		members, ok := h.rooms[ev.room]
		if !ok {
			members = make(map[*Client]bool)
			h.rooms[ev.room] = members
		}
		members[ev.client] = true
		ev.client.rooms[ev.room] = true

		h.broadcast(ev.room, &ChatPayload{
			Msg: fmt.Sprintf("%s has joined the chat.", ev.username),
		})
		h.logger.Info("client joined room",
			zap.String("room", ev.room),
			zap.String("username", ev.username))

	case eventChat:
		if ev.room == "" || ev.username == "" || ev.body == "" {
			h.logger.Debug("dropping malformed chat event")
			return
		}

		h.broadcast(ev.room, &ChatPayload{
			Msg:      ev.body,
			Username: ev.username,
		})
	}
}

// broadcast delivers payload to every current member of the room, the
// originator included. Delivery is non-blocking: a client whose send
// buffer is full loses the message rather than stalling the room.
// Caller holds h.mu.
func (h *Hub) broadcast(room string, payload *ChatPayload) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}

	msg, err := NewMessage(MessageTypeChat, payload)
	if err != nil {
		h.logger.Error("failed to build chat message", zap.Error(err))
		return
	}

	for client := range members {
		client.trySend(msg)
	}
}

// removeFromRooms scrubs a disconnecting client out of every room it
// joined, deleting rooms that become empty. Caller holds h.mu.
func (h *Hub) removeFromRooms(client *Client) {
	for room := range client.rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, client)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	client.rooms = make(map[string]bool)
}

// RoomSize reports how many connections are currently in the room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Register attaches a client, tolerating a hub that is mid-shutdown.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister detaches a client, tolerating a hub that is mid-shutdown.
func (h *Hub) Unregister(client *Client) {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()

	if stopped {
		return
	}

	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
