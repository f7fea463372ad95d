package service

import (
	"context"
	"strings"

	"atelier/internal/models"
	"atelier/internal/repository"
)

const maxMessageLen = 5000

// MessageService provides direct-messaging logic on top of canonical-pair
// conversations.
type MessageService struct {
	convRepo repository.ConversationRepository
	userRepo repository.UserRepository
}

// SendMessageInput is the input for sending a direct message. Exactly one
// of RecipientID or ConversationID must be set; sending by recipient
// creates the conversation on first contact.
type SendMessageInput struct {
	SenderID       uint
	RecipientID    uint
	ConversationID uint
	Content        string
}

// NewMessageService returns a new MessageService.
func NewMessageService(convRepo repository.ConversationRepository, userRepo repository.UserRepository) *MessageService {
	return &MessageService{convRepo: convRepo, userRepo: userRepo}
}

// SendMessage delivers a message, creating the conversation when the pair
// has never talked before.
func (s *MessageService) SendMessage(ctx context.Context, in SendMessageInput) (*models.DirectMessage, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Message content is required")
	}
	if len(content) > maxMessageLen {
		return nil, models.NewValidationError("Message content too long (max 5000 characters)")
	}

	var conv *models.Conversation
	switch {
	case in.ConversationID != 0:
		var err error
		conv, err = s.convRepo.GetByID(ctx, in.ConversationID)
		if err != nil {
			return nil, err
		}
		if !conv.HasParticipant(in.SenderID) {
			return nil, models.NewForbiddenError("You are not a participant in this conversation")
		}
	case in.RecipientID != 0:
		if in.RecipientID == in.SenderID {
			return nil, models.NewValidationError("Cannot message yourself")
		}
		if _, err := s.userRepo.GetByID(ctx, in.RecipientID); err != nil {
			return nil, err
		}
		var err error
		conv, err = s.convRepo.GetOrCreate(ctx, in.SenderID, in.RecipientID)
		if err != nil {
			return nil, err
		}
	default:
		return nil, models.NewValidationError("A recipient or conversation is required")
	}

	msg := &models.DirectMessage{
		ConversationID: conv.ID,
		SenderID:       in.SenderID,
		Content:        content,
	}
	if err := s.convRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	if sender, err := s.userRepo.GetByID(ctx, in.SenderID); err == nil {
		msg.Sender = sender
	}
	return msg, nil
}

// GetThread returns a page of the conversation for a participant. Fetching
// never changes read state; clients call MarkRead explicitly.
func (s *MessageService) GetThread(ctx context.Context, convID, userID uint, limit, offset int) ([]*models.DirectMessage, error) {
	conv, err := s.convRepo.GetByID(ctx, convID)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, models.NewForbiddenError("You are not a participant in this conversation")
	}
	return s.convRepo.GetMessages(ctx, convID, limit, offset)
}

// MarkRead marks every message addressed to the caller in the conversation
// as read and returns the number of messages affected.
func (s *MessageService) MarkRead(ctx context.Context, convID, userID uint) (int64, error) {
	conv, err := s.convRepo.GetByID(ctx, convID)
	if err != nil {
		return 0, err
	}
	if !conv.HasParticipant(userID) {
		return 0, models.NewForbiddenError("You are not a participant in this conversation")
	}
	return s.convRepo.MarkRead(ctx, convID, userID)
}

// ListConversations returns the caller's inbox, newest activity first, with
// per-conversation unread counts and latest-message previews.
func (s *MessageService) ListConversations(ctx context.Context, userID uint) ([]models.ConversationSummary, error) {
	conversations, err := s.convRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ConversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		unread, err := s.convRepo.UnreadCount(ctx, conv.ID, userID)
		if err != nil {
			return nil, err
		}
		latest, err := s.convRepo.LatestMessage(ctx, conv.ID)
		if err != nil {
			return nil, err
		}

		peer := conv.UserB
		if conv.UserBID == userID {
			peer = conv.UserA
		}
		summary := models.ConversationSummary{
			ID:            conv.ID,
			LastMessage:   latest,
			LastMessageAt: conv.LastMessageAt,
			UnreadCount:   unread,
		}
		if peer != nil {
			summary.Peer = peer.Public()
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
