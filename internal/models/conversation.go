package models

import (
	"time"
)

// Conversation pairs two users for direct messaging. The pair is stored in
// canonical order (UserAID < UserBID) and guarded by a composite unique
// index, so concurrent first-contact between the same two users cannot
// produce duplicate rows.
type Conversation struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserAID       uint      `gorm:"not null;uniqueIndex:idx_conversation_pair" json:"user_a_id"`
	UserBID       uint      `gorm:"not null;uniqueIndex:idx_conversation_pair" json:"user_b_id"`
	UserA         *User     `gorm:"foreignKey:UserAID" json:"user_a,omitempty"`
	UserB         *User     `gorm:"foreignKey:UserBID" json:"user_b,omitempty"`
	LastMessageAt time.Time `gorm:"index" json:"last_message_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Messages []DirectMessage `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`

	// UnreadCount is computed per caller, never persisted.
	UnreadCount int64 `gorm:"-" json:"unread_count"`
}

// CanonicalPair returns the two user IDs in canonical (ascending) order.
func CanonicalPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

// HasParticipant reports whether the given user is one of the two parties.
func (c *Conversation) HasParticipant(userID uint) bool {
	return c.UserAID == userID || c.UserBID == userID
}

// PeerOf returns the other participant's ID. Callers must have already
// checked HasParticipant.
func (c *Conversation) PeerOf(userID uint) uint {
	if c.UserAID == userID {
		return c.UserBID
	}
	return c.UserAID
}

// DirectMessage belongs to exactly one conversation. The read flag is
// flipped by an explicit mark-read call from the recipient, never as a
// side effect of fetching the thread.
type DirectMessage struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	ConversationID uint       `gorm:"not null;index" json:"conversation_id"`
	SenderID       uint       `gorm:"not null;index" json:"sender_id"`
	Sender         *User      `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	IsRead         bool       `gorm:"default:false" json:"is_read"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ConversationSummary is the list-view projection of a conversation for one
// participant: the peer, the latest message, and the caller's unread count.
type ConversationSummary struct {
	ID            uint           `json:"id"`
	Peer          PublicProfile  `json:"peer"`
	LastMessage   *DirectMessage `json:"last_message,omitempty"`
	LastMessageAt time.Time      `json:"last_message_at"`
	UnreadCount   int64          `json:"unread_count"`
}
