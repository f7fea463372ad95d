package repository

import (
	"context"
	"errors"
	"time"

	"atelier/internal/middleware"
	"atelier/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConversationRepository defines persistence operations for direct messaging.
type ConversationRepository interface {
	GetOrCreate(ctx context.Context, userA, userB uint) (*models.Conversation, error)
	GetByID(ctx context.Context, id uint) (*models.Conversation, error)
	ListForUser(ctx context.Context, userID uint) ([]*models.Conversation, error)
	CreateMessage(ctx context.Context, msg *models.DirectMessage) error
	GetMessages(ctx context.Context, convID uint, limit, offset int) ([]*models.DirectMessage, error)
	MarkRead(ctx context.Context, convID, readerID uint) (int64, error)
	UnreadCount(ctx context.Context, convID, readerID uint) (int64, error)
	LatestMessage(ctx context.Context, convID uint) (*models.DirectMessage, error)
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository returns a new ConversationRepository implementation.
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// GetOrCreate finds the conversation for a user pair, creating it when
// absent. The pair is stored in canonical order and the insert ignores
// unique-index conflicts, so two racing first messages converge on one row.
func (r *conversationRepository) GetOrCreate(ctx context.Context, userA, userB uint) (*models.Conversation, error) {
	a, b := models.CanonicalPair(userA, userB)

	conv := models.Conversation{UserAID: a, UserBID: b, LastMessageAt: time.Now().UTC()}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&conv).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	if conv.ID != 0 {
		middleware.ConversationCreates.WithLabelValues("created").Inc()
	} else {
		middleware.ConversationCreates.WithLabelValues("existing").Inc()
	}

	// Re-read in all cases: on conflict the Create above leaves conv.ID zero.
	var out models.Conversation
	if err := r.db.WithContext(ctx).
		Where("user_a_id = ? AND user_b_id = ?", a, b).
		First(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return &out, nil
}

func (r *conversationRepository) GetByID(ctx context.Context, id uint) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.db.WithContext(ctx).First(&conv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Conversation", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &conv, nil
}

func (r *conversationRepository) ListForUser(ctx context.Context, userID uint) ([]*models.Conversation, error) {
	var conversations []*models.Conversation
	if err := r.db.WithContext(ctx).
		Where("user_a_id = ? OR user_b_id = ?", userID, userID).
		Preload("UserA").
		Preload("UserB").
		Order("last_message_at DESC").
		Find(&conversations).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return conversations, nil
}

func (r *conversationRepository) CreateMessage(ctx context.Context, msg *models.DirectMessage) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Conversation{}).
			Where("id = ?", msg.ConversationID).
			Update("last_message_at", msg.CreatedAt).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetMessages returns a page of the thread in chronological order. The
// query fetches newest-first so the page window covers the latest
// messages, then reverses in memory.
func (r *conversationRepository) GetMessages(ctx context.Context, convID uint, limit, offset int) ([]*models.DirectMessage, error) {
	var messages []*models.DirectMessage
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Preload("Sender").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// MarkRead flips every unread message sent TO the reader in this
// conversation and returns how many rows changed.
func (r *conversationRepository) MarkRead(ctx context.Context, convID, readerID uint) (int64, error) {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&models.DirectMessage{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", convID, readerID, false).
		Updates(map[string]any{"is_read": true, "read_at": now})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *conversationRepository) UnreadCount(ctx context.Context, convID, readerID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.DirectMessage{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", convID, readerID, false).
		Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *conversationRepository) LatestMessage(ctx context.Context, convID uint) (*models.DirectMessage, error) {
	var msg models.DirectMessage
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", convID).
		Order("created_at DESC").
		First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &msg, nil
}
