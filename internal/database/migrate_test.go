package database

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMigrate_CreatesAllDomainTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	for _, table := range []string{
		"users", "conversations", "direct_messages",
		"blogs", "comments", "reactions", "tags", "categories", "blog_tags",
		"projects", "skills", "experiences", "educations", "testimonials",
		"contact_messages",
	} {
		require.True(t, db.Migrator().HasTable(table), "expected table %s", table)
	}
}
