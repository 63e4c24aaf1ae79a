package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"skycarry/internal/models"
	"skycarry/internal/modules/messages"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
)

// Client is one websocket connection bound to an authenticated user.
type Client struct {
	id     string
	userID int
	conn   *websocket.Conn
	send   chan []byte
	hub    *Hub
	msgSvc messages.ServiceInterface
}

// readPump consumes inbound envelopes until the connection drops. Chat
// frames are persisted through the messages service, which fans them out to
// the recipient via the hub; read receipts are applied and forwarded.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug().Err(err).Int("user_id", c.userID).Msg("websocket closed")
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.reportError("malformed frame")
			continue
		}
		c.handleEnvelope(env)
	}
}

func (c *Client) handleEnvelope(env Envelope) {
	ctx := context.Background()

	switch env.Type {
	case TypeChat:
		var req models.SendMessageRequest
		if err := json.Unmarshal(env.Payload, &req); err != nil {
			c.reportError("malformed chat payload")
			return
		}
		// Send persists the message and pushes it to the receiver.
		msg, err := c.msgSvc.Send(ctx, c.userID, req)
		if err != nil {
			c.reportError("message rejected")
			return
		}
		// Echo the stored record back so the sender learns its id.
		c.hub.sendEnvelope(c.userID, TypeChat, msg)

	case TypeRead:
		var receipt ReadReceipt
		if err := json.Unmarshal(env.Payload, &receipt); err != nil {
			c.reportError("malformed read payload")
			return
		}
		receipt.ReaderID = c.userID
		if _, err := c.msgSvc.GetThread(ctx, c.userID, receipt.CounterpartID); err != nil {
			c.reportError("read receipt rejected")
			return
		}
		c.hub.PushReadReceipt(receipt.CounterpartID, receipt)

	default:
		c.reportError("unknown frame type")
	}
}

func (c *Client) reportError(reason string) {
	c.hub.sendEnvelope(c.userID, TypeError, map[string]string{"reason": reason})
}

// writePump flushes the send channel to the socket and keeps the connection
// alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				return
			}
		}
	}
}
