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

func newUserService(t *testing.T) (*UserService, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	return NewUserService(repository.NewUserRepository(db)), db
}

func TestGetPublicProfile_OmitsPrivateFields(t *testing.T) {
	svc, db := newUserService(t)
	user := createTestUser(t, db, "alice", models.RoleUser)
	user.Bio = "hello"
	require.NoError(t, db.Save(user).Error)

	profile, err := svc.GetPublicProfile(ctxBg(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "hello", profile.Bio)

	_, err = svc.GetPublicProfile(ctxBg(), 9999)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.HTTPStatus())
}

func TestUpdateProfile_UsernameRules(t *testing.T) {
	svc, db := newUserService(t)
	alice := createTestUser(t, db, "alice", models.RoleUser)
	createTestUser(t, db, "bob", models.RoleUser)

	// invalid format
	_, err := svc.UpdateProfile(ctxBg(), UpdateProfileInput{UserID: alice.ID, Username: "a!"})
	require.Error(t, err)

	// taken by someone else
	_, err = svc.UpdateProfile(ctxBg(), UpdateProfileInput{UserID: alice.ID, Username: "bob"})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.HTTPStatus())

	// keeping the current username is not a conflict
	updated, err := svc.UpdateProfile(ctxBg(), UpdateProfileInput{
		UserID: alice.ID, Username: "alice", Bio: "new bio",
	})
	require.NoError(t, err)
	assert.Equal(t, "new bio", updated.Bio)

	// valid rename
	updated, err = svc.UpdateProfile(ctxBg(), UpdateProfileInput{UserID: alice.ID, Username: "alice_2"})
	require.NoError(t, err)
	assert.Equal(t, "alice_2", updated.Username)
}

func TestUpdateProfile_BioTooLong(t *testing.T) {
	svc, db := newUserService(t)
	alice := createTestUser(t, db, "alice", models.RoleUser)

	_, err := svc.UpdateProfile(ctxBg(), UpdateProfileInput{
		UserID: alice.ID, Bio: strings.Repeat("x", 501),
	})
	require.Error(t, err)
}

func TestSetRole(t *testing.T) {
	svc, db := newUserService(t)
	alice := createTestUser(t, db, "alice", models.RoleUser)

	promoted, err := svc.SetRole(ctxBg(), alice.ID, models.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin())

	demoted, err := svc.SetRole(ctxBg(), alice.ID, models.RoleUser)
	require.NoError(t, err)
	assert.False(t, demoted.IsAdmin())

	_, err = svc.SetRole(ctxBg(), alice.ID, "superuser")
	require.Error(t, err)
}

func TestDeleteUser_MissingIsNotFound(t *testing.T) {
	svc, _ := newUserService(t)

	err := svc.DeleteUser(ctxBg(), 99)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.HTTPStatus())
}
