package testutil

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	gorillaWS "github.com/gorilla/websocket"
	"github.com/ridetrack/server/internal/websocket"
)

// WSClient is a test WebSocket client
type WSClient struct {
	t        *testing.T
	conn     *gorillaWS.Conn
	messages chan *websocket.Message
	errors   chan error
	done     chan struct{}
	mu       sync.Mutex
}

// NewWSClient creates a new WebSocket test client
func NewWSClient(t *testing.T, url string) *WSClient {
	t.Helper()

	dialer := gorillaWS.DefaultDialer
	dialer.HandshakeTimeout = 5 * time.Second

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to connect to websocket: %v", err)
	}

	client := &WSClient{
		t:        t,
		conn:     conn,
		messages: make(chan *websocket.Message, 100),
		errors:   make(chan error, 10),
		done:     make(chan struct{}),
	}

	go client.readPump()

	t.Cleanup(func() {
		client.Close()
	})

	return client
}

// readPump reads messages from the WebSocket connection
func (c *WSClient) readPump() {
	defer close(c.messages)
	for {
		select {
		case <-c.done:
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				select {
				case <-c.done:
					return
				case c.errors <- err:
				}
				return
			}

			var msg websocket.Message
			if err := json.Unmarshal(data, &msg); err != nil {
				c.errors <- err
				continue
			}

			select {
			case c.messages <- &msg:
			case <-c.done:
				return
			}
		}
	}
}

// Close closes the WebSocket connection gracefully
func (c *WSClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	select {
	case <-c.done:
		return
	default:
		close(c.done)
		c.conn.WriteMessage(gorillaWS.CloseMessage, gorillaWS.FormatCloseMessage(gorillaWS.CloseNormalClosure, ""))
		c.conn.Close()
	}
}

func (c *WSClient) send(msgType websocket.MessageType, payload interface{}) {
	c.t.Helper()

	msg, err := websocket.NewMessage(msgType, payload)
	if err != nil {
		c.t.Fatalf("failed to build message: %v", err)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		c.t.Fatalf("failed to marshal message: %v", err)
	}

	c.mu.Lock()
	err = c.conn.WriteMessage(gorillaWS.TextMessage, data)
	c.mu.Unlock()

	if err != nil {
		c.t.Fatalf("failed to send message: %v", err)
	}
}

// Join sends a JOIN event for the given room
func (c *WSClient) Join(room, username string) {
	c.send(websocket.MessageTypeJoin, websocket.JoinPayload{
		Room:     room,
		Username: username,
	})
}

// SendChat sends a MESSAGE event to the given room
func (c *WSClient) SendChat(room, username, msg string) {
	c.send(websocket.MessageTypeMessage, websocket.MessagePayload{
		Room:     room,
		Username: username,
		Msg:      msg,
	})
}

// WaitForChat waits for the next CHAT message, failing the test on timeout
func (c *WSClient) WaitForChat(timeout time.Duration) *websocket.ChatPayload {
	c.t.Helper()

	deadline := time.After(timeout)
	for {
		select {
		case msg, ok := <-c.messages:
			if !ok {
				c.t.Fatal("websocket closed while waiting for chat message")
				return nil
			}
			if msg.Type != websocket.MessageTypeChat {
				continue
			}
			var payload websocket.ChatPayload
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				c.t.Fatalf("failed to unmarshal chat payload: %v", err)
			}
			return &payload
		case <-deadline:
			c.t.Fatal("timed out waiting for chat message")
			return nil
		}
	}
}

// ExpectNoChat asserts no CHAT message arrives within the window
func (c *WSClient) ExpectNoChat(window time.Duration) {
	c.t.Helper()

	deadline := time.After(window)
	for {
		select {
		case msg, ok := <-c.messages:
			if !ok {
				return
			}
			if msg.Type == websocket.MessageTypeChat {
				c.t.Fatalf("unexpected chat message: %s", string(msg.Payload))
			}
		case <-deadline:
			return
		}
	}
}
