package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zap.NewNop())
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func newTestClient(t *testing.T, hub *Hub) *Client {
	t.Helper()
	client := NewClient(hub, nil, uuid.New())
	hub.Register(client)
	return client
}

func join(hub *Hub, client *Client, room, username string) {
	hub.events <- &event{kind: eventJoin, client: client, room: room, username: username}
}

func chat(hub *Hub, client *Client, room, username, body string) {
	hub.events <- &event{kind: eventChat, client: client, room: room, username: username, body: body}
}

func receiveChat(t *testing.T, client *Client) *ChatPayload {
	t.Helper()
	select {
	case data := <-client.send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		require.Equal(t, MessageTypeChat, msg.Type)
		var payload ChatPayload
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		return &payload
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func expectSilence(t *testing.T, client *Client) {
	t.Helper()
	select {
	case data := <-client.send:
		t.Fatalf("unexpected message: %s", string(data))
	case <-time.After(50 * time.Millisecond):
	}
}

func waitForRoomSize(t *testing.T, hub *Hub, room string, size int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if hub.RoomSize(room) == size {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("room %q never reached size %d (got %d)", room, size, hub.RoomSize(room))
}

func TestHub_JoinBroadcastsToWholeRoom(t *testing.T) {
	hub := newTestHub(t)
	alice := newTestClient(t, hub)
	bob := newTestClient(t, hub)

	join(hub, alice, "canyon", "alice")
	payload := receiveChat(t, alice)
	assert.Equal(t, "alice has joined the chat.", payload.Msg)
	assert.Empty(t, payload.Username)

	// The join notification reaches existing members and the joiner alike.
	join(hub, bob, "canyon", "bob")
	assert.Equal(t, "bob has joined the chat.", receiveChat(t, alice).Msg)
	assert.Equal(t, "bob has joined the chat.", receiveChat(t, bob).Msg)

	assert.Equal(t, 2, hub.RoomSize("canyon"))
}

func TestHub_MalformedJoinIsDropped(t *testing.T) {
	hub := newTestHub(t)
	client := newTestClient(t, hub)

	join(hub, client, "", "alice")
	expectSilence(t, client)
	assert.Equal(t, 0, hub.RoomSize(""))

	join(hub, client, "canyon", "")
	expectSilence(t, client)
	assert.Equal(t, 0, hub.RoomSize("canyon"))
}

func TestHub_ChatReachesEveryMemberIncludingSender(t *testing.T) {
	hub := newTestHub(t)
	alice := newTestClient(t, hub)
	bob := newTestClient(t, hub)

	join(hub, alice, "canyon", "alice")
	receiveChat(t, alice)
	join(hub, bob, "canyon", "bob")
	receiveChat(t, alice)
	receiveChat(t, bob)

	chat(hub, alice, "canyon", "alice", "rolling out at 9")

	for _, client := range []*Client{alice, bob} {
		payload := receiveChat(t, client)
		assert.Equal(t, "rolling out at 9", payload.Msg)
		assert.Equal(t, "alice", payload.Username)
	}
}

func TestHub_MalformedChatIsDropped(t *testing.T) {
	hub := newTestHub(t)
	alice := newTestClient(t, hub)

	join(hub, alice, "canyon", "alice")
	receiveChat(t, alice)

	tests := []struct {
		name               string
		room, sender, body string
	}{
		{name: "missing room", room: "", sender: "alice", body: "hello"},
		{name: "missing sender", room: "canyon", sender: "", body: "hello"},
		{name: "missing body", room: "canyon", sender: "alice", body: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat(hub, alice, tt.room, tt.sender, tt.body)
			expectSilence(t, alice)
		})
	}
}

func TestHub_MessagesScopedToRoom(t *testing.T) {
	hub := newTestHub(t)
	alice := newTestClient(t, hub)
	bob := newTestClient(t, hub)

	join(hub, alice, "canyon", "alice")
	receiveChat(t, alice)
	join(hub, bob, "gravel", "bob")
	receiveChat(t, bob)

	chat(hub, alice, "canyon", "alice", "canyon only")
	assert.Equal(t, "canyon only", receiveChat(t, alice).Msg)
	expectSilence(t, bob)
}

func TestHub_ClientMayJoinMultipleRooms(t *testing.T) {
	hub := newTestHub(t)
	alice := newTestClient(t, hub)

	join(hub, alice, "canyon", "alice")
	receiveChat(t, alice)
	join(hub, alice, "gravel", "alice")
	receiveChat(t, alice)

	assert.Equal(t, 1, hub.RoomSize("canyon"))
	assert.Equal(t, 1, hub.RoomSize("gravel"))

	chat(hub, alice, "gravel", "alice", "tires?")
	assert.Equal(t, "tires?", receiveChat(t, alice).Msg)
}

func TestHub_DeliveryOrderWithinRoom(t *testing.T) {
	hub := newTestHub(t)
	alice := newTestClient(t, hub)

	join(hub, alice, "canyon", "alice")
	receiveChat(t, alice)

	want := []string{"first", "second", "third"}
	for _, body := range want {
		chat(hub, alice, "canyon", "alice", body)
	}

	for _, body := range want {
		assert.Equal(t, body, receiveChat(t, alice).Msg)
	}
}

func waitForUnregistered(t *testing.T, hub *Hub, client *Client) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		registered := hub.clients[client]
		hub.mu.RUnlock()
		if !registered {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("client never unregistered")
}

func TestHub_JoinQueuedBehindUnregisterIsDropped(t *testing.T) {
	hub := newTestHub(t)
	alice := newTestClient(t, hub)
	bob := newTestClient(t, hub)

	join(hub, alice, "canyon", "alice")
	receiveChat(t, alice)

	// Bob's join is still queued when his connection goes away. The hub
	// must not re-add him to the room: his send channel is closed, and a
	// broadcast to it would crash the run loop.
	hub.Unregister(bob)
	waitForUnregistered(t, hub, bob)
	join(hub, bob, "canyon", "bob")

	expectSilence(t, alice)
	assert.Equal(t, 1, hub.RoomSize("canyon"))

	// The hub is still alive and serving the room.
	chat(hub, alice, "canyon", "alice", "still rolling")
	assert.Equal(t, "still rolling", receiveChat(t, alice).Msg)
}

func TestHub_UnregisterScrubsRooms(t *testing.T) {
	hub := newTestHub(t)
	alice := newTestClient(t, hub)
	bob := newTestClient(t, hub)

	join(hub, alice, "canyon", "alice")
	receiveChat(t, alice)
	join(hub, bob, "canyon", "bob")
	receiveChat(t, alice)
	receiveChat(t, bob)

	hub.Unregister(bob)
	waitForRoomSize(t, hub, "canyon", 1)

	// Delivery to the remaining member is unaffected.
	chat(hub, alice, "canyon", "alice", "still here")
	assert.Equal(t, "still here", receiveChat(t, alice).Msg)
}

func TestHub_SlowClientDoesNotBlockRoom(t *testing.T) {
	hub := newTestHub(t)
	alice := newTestClient(t, hub)
	bob := newTestClient(t, hub)

	join(hub, alice, "canyon", "alice")
	receiveChat(t, alice)
	join(hub, bob, "canyon", "bob")
	receiveChat(t, alice)
	receiveChat(t, bob)

	// Nobody drains bob. Flood past his buffer; alice must still see
	// every message.
	for i := 0; i < sendBufferSize+10; i++ {
		chat(hub, alice, "canyon", "alice", "spin")
		assert.Equal(t, "spin", receiveChat(t, alice).Msg)
	}
}
