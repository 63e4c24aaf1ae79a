package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skycarry/internal/models"
)

func newTestClient(userID, sendBuffer int) *Client {
	return &Client{
		id:     uuid.NewString(),
		userID: userID,
		send:   make(chan []byte, sendBuffer),
	}
}

func recvEnvelope(t *testing.T, c *Client) Envelope {
	t.Helper()
	select {
	case data := <-c.send:
		var env Envelope
		require.NoError(t, json.Unmarshal(data, &env))
		return env
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a frame")
		return Envelope{}
	}
}

func assertNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Fatalf("unexpected frame: %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPushMessageIsAddressed(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()

	// The receiver holds two connections, a bystander holds one.
	receiverTab1 := newTestClient(1, 4)
	receiverTab2 := newTestClient(1, 4)
	bystander := newTestClient(2, 4)
	hub.register <- receiverTab1
	hub.register <- receiverTab2
	hub.register <- bystander

	hub.PushMessage(1, &models.Message{ID: 7, SenderID: 2, ReceiverID: 1, Content: "hello"})

	for _, c := range []*Client{receiverTab1, receiverTab2} {
		env := recvEnvelope(t, c)
		assert.Equal(t, TypeChat, env.Type)

		var msg models.Message
		require.NoError(t, json.Unmarshal(env.Payload, &msg))
		assert.Equal(t, 7, msg.ID)
		assert.Equal(t, "hello", msg.Content)
	}
	assertNoFrame(t, bystander)
}

func TestPushToOfflineUserIsDropped(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()

	online := newTestClient(1, 4)
	hub.register <- online

	// Nobody with user id 9 is connected; the frame simply evaporates.
	hub.PushMessage(9, &models.Message{ID: 1, Content: "into the void"})
	hub.PushMessage(1, &models.Message{ID: 2, Content: "still works"})

	env := recvEnvelope(t, online)
	var msg models.Message
	require.NoError(t, json.Unmarshal(env.Payload, &msg))
	assert.Equal(t, 2, msg.ID)
}

func TestSlowConsumerIsDisconnected(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()

	slow := newTestClient(1, 1)
	hub.register <- slow

	// The first frame fills the buffer; the second finds it full and the hub
	// drops the connection instead of blocking.
	hub.PushMessage(1, &models.Message{ID: 1})
	hub.PushMessage(1, &models.Message{ID: 2})

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-slow.send:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond, "send channel should be drained and closed")
}

func TestPushReadReceipt(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()

	counterpart := newTestClient(2, 4)
	hub.register <- counterpart

	hub.PushReadReceipt(2, ReadReceipt{ReaderID: 1, CounterpartID: 2})

	env := recvEnvelope(t, counterpart)
	assert.Equal(t, TypeRead, env.Type)

	var receipt ReadReceipt
	require.NoError(t, json.Unmarshal(env.Payload, &receipt))
	assert.Equal(t, 1, receipt.ReaderID)
}

func TestUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	go hub.Run()

	client := newTestClient(1, 4)
	hub.register <- client
	hub.unregister <- client

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-client.send:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}
