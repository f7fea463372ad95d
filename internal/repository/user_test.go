package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"atelier/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openMockDB returns a gorm handle backed by sqlmock so error paths can be
// driven without a database.
func openMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestGetByEmail_DistinguishesAbsenceFromFailure(t *testing.T) {
	db, mock := openMockDB(t)
	repo := NewUserRepository(db)

	query := regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)

	// no rows is not an error
	mock.ExpectQuery(query).WillReturnError(gorm.ErrRecordNotFound)
	user, err := repo.GetByEmail(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)

	// a broken connection is
	mock.ExpectQuery(query).WillReturnError(errors.New("connection reset by peer"))
	_, err = repo.GetByEmail(context.Background(), "ghost@example.com")
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 500, appErr.HTTPStatus())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_MapsUniqueViolationToConflict(t *testing.T) {
	db, mock := openMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(errors.New(`duplicate key value violates unique constraint "idx_users_email"`))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.User{
		Username: "alice",
		Email:    "alice@example.com",
	})
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.HTTPStatus())

	require.NoError(t, mock.ExpectationsWereMet())
}
