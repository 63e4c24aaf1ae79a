package messages

import (
	"context"
	"errors"
	"fmt"

	"skycarry/internal/models"
	"skycarry/internal/storage"
)

// Pusher delivers a persisted message to the receiver's live websocket
// connections, if any. The realtime hub implements it.
type Pusher interface {
	PushMessage(receiverID int, msg *models.Message)
}

// ServiceInterface defines messaging business logic.
type ServiceInterface interface {
	Send(ctx context.Context, senderID int, req models.SendMessageRequest) (*models.Message, error)
	ListConversations(ctx context.Context, userID int) ([]*models.Conversation, error)
	GetThread(ctx context.Context, userID, counterpartID int) ([]*models.Message, error)
}

type Service struct {
	store  storage.Storage
	pusher Pusher
}

func NewService(store storage.Storage, pusher Pusher) *Service {
	return &Service{store: store, pusher: pusher}
}

// SetPusher wires the realtime hub in after construction; the hub itself
// needs this service to persist inbound chat frames.
func (s *Service) SetPusher(pusher Pusher) {
	s.pusher = pusher
}

// Send persists the message and forwards it to the receiver's live
// connections.
func (s *Service) Send(ctx context.Context, senderID int, req models.SendMessageRequest) (*models.Message, error) {
	if senderID == req.ReceiverID {
		return nil, models.ErrForbidden
	}
	if _, err := s.store.GetUser(ctx, req.ReceiverID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("service.SendMessage.GetUser: %w", err)
	}

	msg, err := s.store.CreateMessage(ctx, senderID, req)
	if err != nil {
		return nil, fmt.Errorf("service.SendMessage: %w", err)
	}

	if s.pusher != nil {
		s.pusher.PushMessage(msg.ReceiverID, msg)
	}
	return msg, nil
}

// ListConversations groups the user's messages by counterpart, newest thread
// first, with the counterpart's redacted profile and an unread count.
func (s *Service) ListConversations(ctx context.Context, userID int) ([]*models.Conversation, error) {
	msgs, err := s.store.GetMessagesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.ListConversations: %w", err)
	}

	// Messages arrive newest first, so the first message seen per
	// counterpart is the thread's latest.
	var order []int
	latest := make(map[int]*models.Message)
	unread := make(map[int]int)
	for _, msg := range msgs {
		counterpartID := msg.SenderID
		if counterpartID == userID {
			counterpartID = msg.ReceiverID
		}
		if _, seen := latest[counterpartID]; !seen {
			latest[counterpartID] = msg
			order = append(order, counterpartID)
		}
		if msg.ReceiverID == userID && !msg.IsRead {
			unread[counterpartID]++
		}
	}

	conversations := make([]*models.Conversation, 0, len(order))
	for _, counterpartID := range order {
		conv := &models.Conversation{
			LastMessage: latest[counterpartID],
			UnreadCount: unread[counterpartID],
		}
		if user, err := s.store.GetUser(ctx, counterpartID); err == nil {
			conv.Counterpart = user.Profile()
		}
		conversations = append(conversations, conv)
	}
	return conversations, nil
}

// GetThread returns the full exchange with one counterpart, oldest first,
// and marks the counterpart's messages as read.
func (s *Service) GetThread(ctx context.Context, userID, counterpartID int) ([]*models.Message, error) {
	msgs, err := s.store.GetMessagesBetweenUsers(ctx, userID, counterpartID)
	if err != nil {
		return nil, fmt.Errorf("service.GetThread: %w", err)
	}

	if err := s.store.MarkMessagesRead(ctx, userID, counterpartID); err != nil {
		return nil, fmt.Errorf("service.GetThread.MarkRead: %w", err)
	}
	return msgs, nil
}
