package service

import (
	"context"
	"testing"

	"atelier/internal/database"
	"atelier/internal/models"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string, role string) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Username:      username,
		Email:         username + "@example.com",
		Password:      string(hashed),
		Provider:      models.ProviderCredentials,
		Role:          role,
		EmailVerified: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func ctxBg() context.Context {
	return context.Background()
}
