package websocket

import (
	"encoding/json"
	"time"
)

type MessageType string

const (
	// Client to Server
	MessageTypeJoin    MessageType = "JOIN"
	MessageTypeMessage MessageType = "MESSAGE"

	// Server to Client
	MessageTypeChat MessageType = "CHAT"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// Client to Server payloads

type JoinPayload struct {
	Room     string `json:"room"`
	Username string `json:"username"`
}

type MessagePayload struct {
	Room     string `json:"room"`
	Username string `json:"username"`
	Msg      string `json:"msg"`
}

// Server to Client payloads

// ChatPayload is what room members receive. Username is empty on join
// notifications, set on relayed chat messages.
type ChatPayload struct {
	Msg      string `json:"msg"`
	Username string `json:"username,omitempty"`
}
