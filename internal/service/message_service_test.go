package service

import (
	"strings"
	"testing"

	"atelier/internal/models"
	"atelier/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMessageService(t *testing.T) (*MessageService, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	return NewMessageService(
		repository.NewConversationRepository(db),
		repository.NewUserRepository(db),
	), db
}

func TestSendMessage_FirstContactCreatesConversation(t *testing.T) {
	svc, db := newMessageService(t)
	alice := createTestUser(t, db, "alice", models.RoleUser)
	bob := createTestUser(t, db, "bob", models.RoleUser)

	msg, err := svc.SendMessage(ctxBg(), SendMessageInput{
		SenderID:    alice.ID,
		RecipientID: bob.ID,
		Content:     "hey bob",
	})
	require.NoError(t, err)
	assert.NotZero(t, msg.ConversationID)
	assert.Equal(t, alice.ID, msg.SenderID)

	var conv models.Conversation
	require.NoError(t, db.First(&conv, msg.ConversationID).Error)
	assert.Less(t, conv.UserAID, conv.UserBID, "pair is stored in canonical order")
}

func TestSendMessage_RepeatContactReusesConversation(t *testing.T) {
	svc, db := newMessageService(t)
	alice := createTestUser(t, db, "alice", models.RoleUser)
	bob := createTestUser(t, db, "bob", models.RoleUser)

	first, err := svc.SendMessage(ctxBg(), SendMessageInput{
		SenderID: alice.ID, RecipientID: bob.ID, Content: "hello",
	})
	require.NoError(t, err)

	// reply goes through the same conversation even though the sender flips
	second, err := svc.SendMessage(ctxBg(), SendMessageInput{
		SenderID: bob.ID, RecipientID: alice.ID, Content: "hello back",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ConversationID, second.ConversationID)

	var count int64
	require.NoError(t, db.Model(&models.Conversation{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSendMessage_Validation(t *testing.T) {
	svc, db := newMessageService(t)
	alice := createTestUser(t, db, "alice", models.RoleUser)
	bob := createTestUser(t, db, "bob", models.RoleUser)

	tests := []struct {
		name  string
		input SendMessageInput
	}{
		{"empty content", SendMessageInput{SenderID: alice.ID, RecipientID: bob.ID, Content: "   "}},
		{"too long", SendMessageInput{SenderID: alice.ID, RecipientID: bob.ID, Content: strings.Repeat("x", 5001)}},
		{"self message", SendMessageInput{SenderID: alice.ID, RecipientID: alice.ID, Content: "hi me"}},
		{"no target", SendMessageInput{SenderID: alice.ID, Content: "hi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SendMessage(ctxBg(), tt.input)
			require.Error(t, err)
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, 400, appErr.HTTPStatus())
		})
	}

	var count int64
	require.NoError(t, db.Model(&models.DirectMessage{}).Count(&count).Error)
	assert.Zero(t, count, "no rejected message may reach the database")
}

func TestSendMessage_NonParticipantForbidden(t *testing.T) {
	svc, db := newMessageService(t)
	alice := createTestUser(t, db, "alice", models.RoleUser)
	bob := createTestUser(t, db, "bob", models.RoleUser)
	mallory := createTestUser(t, db, "mallory", models.RoleUser)

	msg, err := svc.SendMessage(ctxBg(), SendMessageInput{
		SenderID: alice.ID, RecipientID: bob.ID, Content: "private",
	})
	require.NoError(t, err)

	_, err = svc.SendMessage(ctxBg(), SendMessageInput{
		SenderID:       mallory.ID,
		ConversationID: msg.ConversationID,
		Content:        "let me in",
	})
	require.Error(t, err)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.HTTPStatus())

	var count int64
	require.NoError(t, db.Model(&models.DirectMessage{}).
		Where("conversation_id = ?", msg.ConversationID).Count(&count).Error)
	assert.Equal(t, int64(1), count, "intruder message must not be stored")
}

func TestGetThread_ChronologicalAndReadOnly(t *testing.T) {
	svc, db := newMessageService(t)
	alice := createTestUser(t, db, "alice", models.RoleUser)
	bob := createTestUser(t, db, "bob", models.RoleUser)

	var convID uint
	for _, content := range []string{"one", "two", "three"} {
		msg, err := svc.SendMessage(ctxBg(), SendMessageInput{
			SenderID: alice.ID, RecipientID: bob.ID, Content: content,
		})
		require.NoError(t, err)
		convID = msg.ConversationID
	}

	thread, err := svc.GetThread(ctxBg(), convID, bob.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, thread, 3)
	assert.Equal(t, "one", thread[0].Content)
	assert.Equal(t, "three", thread[2].Content)

	// fetching the thread must not flip read flags
	var unread int64
	require.NoError(t, db.Model(&models.DirectMessage{}).
		Where("conversation_id = ? AND is_read = ?", convID, false).Count(&unread).Error)
	assert.Equal(t, int64(3), unread)
}

func TestGetThread_NonParticipantForbidden(t *testing.T) {
	svc, db := newMessageService(t)
	alice := createTestUser(t, db, "alice", models.RoleUser)
	bob := createTestUser(t, db, "bob", models.RoleUser)
	mallory := createTestUser(t, db, "mallory", models.RoleUser)

	msg, err := svc.SendMessage(ctxBg(), SendMessageInput{
		SenderID: alice.ID, RecipientID: bob.ID, Content: "secret",
	})
	require.NoError(t, err)

	_, err = svc.GetThread(ctxBg(), msg.ConversationID, mallory.ID, 50, 0)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.HTTPStatus())
}

func TestMarkRead_OnlyMarksMessagesFromPeer(t *testing.T) {
	svc, db := newMessageService(t)
	alice := createTestUser(t, db, "alice", models.RoleUser)
	bob := createTestUser(t, db, "bob", models.RoleUser)

	msg, err := svc.SendMessage(ctxBg(), SendMessageInput{
		SenderID: alice.ID, RecipientID: bob.ID, Content: "from alice",
	})
	require.NoError(t, err)
	convID := msg.ConversationID

	_, err = svc.SendMessage(ctxBg(), SendMessageInput{
		SenderID: bob.ID, ConversationID: convID, Content: "from bob",
	})
	require.NoError(t, err)

	marked, err := svc.MarkRead(ctxBg(), convID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked, "only alice's message is addressed to bob")

	var aliceMsg models.DirectMessage
	require.NoError(t, db.Where("sender_id = ?", alice.ID).First(&aliceMsg).Error)
	assert.True(t, aliceMsg.IsRead)
	assert.NotNil(t, aliceMsg.ReadAt)

	var bobMsg models.DirectMessage
	require.NoError(t, db.Where("sender_id = ?", bob.ID).First(&bobMsg).Error)
	assert.False(t, bobMsg.IsRead, "the reader's own messages stay untouched")

	// marking again is a no-op
	marked, err = svc.MarkRead(ctxBg(), convID, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, marked)
}

func TestListConversations_UnreadCountsAndPeer(t *testing.T) {
	svc, db := newMessageService(t)
	alice := createTestUser(t, db, "alice", models.RoleUser)
	bob := createTestUser(t, db, "bob", models.RoleUser)
	carol := createTestUser(t, db, "carol", models.RoleUser)

	for i := 0; i < 2; i++ {
		_, err := svc.SendMessage(ctxBg(), SendMessageInput{
			SenderID: alice.ID, RecipientID: bob.ID, Content: "ping",
		})
		require.NoError(t, err)
	}
	_, err := svc.SendMessage(ctxBg(), SendMessageInput{
		SenderID: carol.ID, RecipientID: bob.ID, Content: "hi bob",
	})
	require.NoError(t, err)

	inbox, err := svc.ListConversations(ctxBg(), bob.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 2)

	// newest activity first: carol's conversation was touched last
	assert.Equal(t, "carol", inbox[0].Peer.Username)
	assert.Equal(t, int64(1), inbox[0].UnreadCount)
	require.NotNil(t, inbox[0].LastMessage)
	assert.Equal(t, "hi bob", inbox[0].LastMessage.Content)

	assert.Equal(t, "alice", inbox[1].Peer.Username)
	assert.Equal(t, int64(2), inbox[1].UnreadCount)
}
