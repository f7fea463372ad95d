package server

import (
	"errors"
	"net/http"
	"testing"

	"atelier/internal/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func readinessApp(t *testing.T, mock func(sqlmock.Sqlmock)) *fiber.App {
	t.Helper()

	sqlDB, m, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	mock(m)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Silent),
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	srv, err := NewServerWithDeps(&config.Config{
		Env:       "test",
		JWTSecret: "unit-test-secret-with-enough-length",
	}, db, nil)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/health/ready", srv.ReadinessCheck)
	return app
}

func TestReadinessCheck_HealthyDatabase(t *testing.T) {
	app := readinessApp(t, func(m sqlmock.Sqlmock) {
		m.ExpectPing()
	})

	resp, _ := doJSON(t, app, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReadinessCheck_UnreachableDatabaseIs503(t *testing.T) {
	app := readinessApp(t, func(m sqlmock.Sqlmock) {
		m.ExpectPing().WillReturnError(errors.New("connection refused"))
	})

	resp, _ := doJSON(t, app, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
