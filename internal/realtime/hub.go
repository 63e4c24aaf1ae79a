package realtime

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"skycarry/internal/models"
)

// Envelope is the tagged frame exchanged over the websocket. Every frame,
// inbound or outbound, carries a type so clients can multiplex chat and
// receipts over one connection.
type Envelope struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

const (
	// TypeChat carries a persisted chat message.
	TypeChat = "chat"
	// TypeRead carries a read receipt for a whole thread.
	TypeRead = "read"
	// TypeError reports a rejected inbound frame back to its sender.
	TypeError = "error"
)

// ReadReceipt is the payload of a TypeRead frame.
type ReadReceipt struct {
	ReaderID      int `json:"reader_id"`
	CounterpartID int `json:"counterpart_id"`
}

// Hub tracks live connections by user. A user may hold several connections
// (multiple tabs); frames addressed to a user go to all of them and only
// them — there is no broadcast to unrelated connections.
type Hub struct {
	clients    map[string]*Client
	byUser     map[int]map[string]*Client
	register   chan *Client
	unregister chan *Client
	outbound   chan addressed
	log        zerolog.Logger
}

type addressed struct {
	userID int
	data   []byte
}

// NewHub creates a hub; call Run on its own goroutine before serving.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		byUser:     make(map[int]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan addressed, 64),
		log:        log,
	}
}

// Run owns the connection maps; all map access happens on this goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client.id] = client
			if h.byUser[client.userID] == nil {
				h.byUser[client.userID] = make(map[string]*Client)
			}
			h.byUser[client.userID][client.id] = client
			h.log.Debug().Int("user_id", client.userID).Str("conn_id", client.id).Msg("client registered")

		case client := <-h.unregister:
			if _, ok := h.clients[client.id]; ok {
				h.drop(client)
			}

		case frame := <-h.outbound:
			for _, client := range h.byUser[frame.userID] {
				select {
				case client.send <- frame.data:
				default:
					// Slow consumer; drop the connection rather than block
					// the hub.
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client.id)
	if conns, ok := h.byUser[client.userID]; ok {
		delete(conns, client.id)
		if len(conns) == 0 {
			delete(h.byUser, client.userID)
		}
	}
	close(client.send)
	h.log.Debug().Int("user_id", client.userID).Str("conn_id", client.id).Msg("client unregistered")
}

// PushMessage sends a persisted chat message to the receiver's connections.
// It implements messages.Pusher.
func (h *Hub) PushMessage(receiverID int, msg *models.Message) {
	h.sendEnvelope(receiverID, TypeChat, msg)
}

// PushReadReceipt tells the counterpart that their messages were read.
func (h *Hub) PushReadReceipt(counterpartID int, receipt ReadReceipt) {
	h.sendEnvelope(counterpartID, TypeRead, receipt)
}

func (h *Hub) sendEnvelope(userID int, frameType string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		h.log.Error().Err(err).Str("type", frameType).Msg("failed to marshal payload")
		return
	}
	data, err := json.Marshal(Envelope{Type: frameType, Payload: raw, Timestamp: time.Now()})
	if err != nil {
		h.log.Error().Err(err).Str("type", frameType).Msg("failed to marshal envelope")
		return
	}
	h.outbound <- addressed{userID: userID, data: data}
}
