package service

import (
	"testing"

	"atelier/internal/mailer"
	"atelier/internal/models"
	"atelier/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newContactService(t *testing.T) (*ContactService, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	// disabled mailer: publishing is dropped, submissions still succeed
	m := mailer.New("", "no-reply@example.com")
	return NewContactService(repository.NewContactRepository(db), m, "admin@example.com"), db
}

func TestSubmit_StoresMessageWithReference(t *testing.T) {
	svc, db := newContactService(t)

	msg, err := svc.Submit(ctxBg(), ContactInput{
		Name:    "  Visitor  ",
		Email:   "visitor@example.com",
		Subject: "Hello",
		Message: "I would like to talk about a project.",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.Reference)
	assert.Equal(t, "Visitor", msg.Name)
	assert.False(t, msg.IsRead)

	var count int64
	require.NoError(t, db.Model(&models.ContactMessage{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSubmit_Validation(t *testing.T) {
	svc, db := newContactService(t)

	tests := []struct {
		name  string
		input ContactInput
	}{
		{"missing name", ContactInput{Email: "a@example.com", Message: "A long enough message."}},
		{"bad email", ContactInput{Name: "A", Email: "not-an-email", Message: "A long enough message."}},
		{"message too short", ContactInput{Name: "A", Email: "a@example.com", Message: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(ctxBg(), tt.input)
			require.Error(t, err)
			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, 400, appErr.HTTPStatus())
		})
	}

	var count int64
	require.NoError(t, db.Model(&models.ContactMessage{}).Count(&count).Error)
	assert.Zero(t, count, "rejected submissions must not reach the database")
}

func TestMarkReadAndReplied(t *testing.T) {
	svc, _ := newContactService(t)

	msg, err := svc.Submit(ctxBg(), ContactInput{
		Name: "A", Email: "a@example.com", Message: "A long enough message.",
	})
	require.NoError(t, err)

	read, err := svc.MarkRead(ctxBg(), msg.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	assert.False(t, read.IsReplied)

	replied, err := svc.MarkReplied(ctxBg(), msg.ID)
	require.NoError(t, err)
	assert.True(t, replied.IsRead)
	assert.True(t, replied.IsReplied)
}

func TestContactList_UnreadFilter(t *testing.T) {
	svc, _ := newContactService(t)

	for i := 0; i < 3; i++ {
		_, err := svc.Submit(ctxBg(), ContactInput{
			Name: "A", Email: "a@example.com", Message: "A long enough message.",
		})
		require.NoError(t, err)
	}
	first, _, err := svc.List(ctxBg(), false, 10, 0)
	require.NoError(t, err)
	_, err = svc.MarkRead(ctxBg(), first[0].ID)
	require.NoError(t, err)

	unread, total, err := svc.List(ctxBg(), true, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, unread, 2)
}

func TestContactDelete_MissingIsNotFound(t *testing.T) {
	svc, _ := newContactService(t)

	err := svc.Delete(ctxBg(), 42)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.HTTPStatus())
}
