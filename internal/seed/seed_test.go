package seed

import (
	"testing"
	"time"

	"atelier/internal/database"
	"atelier/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func TestFactory_DryRunSkipsWrites(t *testing.T) {
	f := NewFactory(nil, SeedOptions{DryRun: true, SkipBcrypt: true})

	user, err := f.CreateUser()
	require.NoError(t, err)
	assert.NotZero(t, user.ID)

	blog, err := f.CreateBlog(user)
	require.NoError(t, err)
	assert.NotZero(t, blog.ID)
	assert.NotEqual(t, user.ID, blog.ID, "synthetic IDs must be distinct")
}

func TestFactory_CreateUserAppliesOverrides(t *testing.T) {
	db := openTestDB(t)
	f := NewFactory(db, SeedOptions{SkipBcrypt: true})

	user, err := f.CreateUser(func(u *models.User) {
		u.Username = "owner"
		u.Role = models.RoleAdmin
	})
	require.NoError(t, err)
	assert.Equal(t, "owner", user.Username)
	assert.True(t, user.IsAdmin())

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.Equal(t, models.RoleAdmin, stored.Role)
}

func TestFactory_CreateBlogDraftHasNoPublishedAt(t *testing.T) {
	db := openTestDB(t)
	f := NewFactory(db, SeedOptions{SkipBcrypt: true})

	author, err := f.CreateUser()
	require.NoError(t, err)

	draft, err := f.CreateBlog(author, func(b *models.Blog) {
		b.Published = false
	})
	require.NoError(t, err)
	assert.False(t, draft.Published)
	assert.Nil(t, draft.PublishedAt)

	published, err := f.CreateBlog(author)
	require.NoError(t, err)
	assert.True(t, published.Published)
	assert.NotNil(t, published.PublishedAt)
}

func TestFactory_CreateConversationStoresCanonicalPair(t *testing.T) {
	db := openTestDB(t)
	f := NewFactory(db, SeedOptions{SkipBcrypt: true})

	a, err := f.CreateUser()
	require.NoError(t, err)
	b, err := f.CreateUser()
	require.NoError(t, err)

	// pass in reverse order; the stored pair must still be ascending
	conv, err := f.CreateConversation(b, a)
	require.NoError(t, err)
	assert.Less(t, conv.UserAID, conv.UserBID)
}

func TestFactory_CreateDirectMessageBumpsLastMessageAt(t *testing.T) {
	db := openTestDB(t)
	f := NewFactory(db, SeedOptions{SkipBcrypt: true})

	a, err := f.CreateUser()
	require.NoError(t, err)
	b, err := f.CreateUser()
	require.NoError(t, err)

	conv, err := f.CreateConversation(a, b)
	require.NoError(t, err)
	before := conv.LastMessageAt

	msg, err := f.CreateDirectMessage(conv, a, func(m *models.DirectMessage) {
		m.CreatedAt = before.Add(72 * time.Hour)
	})
	require.NoError(t, err)

	var stored models.Conversation
	require.NoError(t, db.First(&stored, conv.ID).Error)
	assert.WithinDuration(t, msg.CreatedAt, stored.LastMessageAt, 0)
}

func TestCategories_UpsertsBySlug(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, Categories(db))
	require.NoError(t, Categories(db), "second run must not conflict")

	var count int64
	require.NoError(t, db.Model(&models.Category{}).Count(&count).Error)
	assert.Equal(t, int64(len(BuiltInCategories)), count)
}

func TestSeeder_ShowcasePopulatesEveryArea(t *testing.T) {
	db := openTestDB(t)
	s := NewSeederWithOptions(db, SeedOptions{SkipBcrypt: true})

	owner, users, err := s.SeedUsers(4)
	require.NoError(t, err)
	require.Len(t, users, 4)
	assert.True(t, owner.IsAdmin())

	require.NoError(t, Categories(db))

	blogs, err := s.SeedBlogs(owner, users, 5)
	require.NoError(t, err)
	require.Len(t, blogs, 5)

	var drafts int64
	require.NoError(t, db.Model(&models.Blog{}).Where("published = ?", false).Count(&drafts).Error)
	assert.Equal(t, int64(1), drafts, "every fifth post stays a draft")

	require.NoError(t, s.SeedPortfolio())
	var pending int64
	require.NoError(t, db.Model(&models.Testimonial{}).Where("approved = ?", false).Count(&pending).Error)
	assert.Equal(t, int64(1), pending, "one testimonial left for the admin inbox")

	require.NoError(t, s.SeedConversations(owner, users, 2))
	var convCount int64
	require.NoError(t, db.Model(&models.Conversation{}).Count(&convCount).Error)
	assert.Equal(t, int64(2), convCount)

	require.NoError(t, s.SeedContactInbox(3))
	var contactCount int64
	require.NoError(t, db.Model(&models.ContactMessage{}).Count(&contactCount).Error)
	assert.Equal(t, int64(3), contactCount)
}
