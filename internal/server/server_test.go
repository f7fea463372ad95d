package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"atelier/internal/config"
	"atelier/internal/database"
	"atelier/internal/featureflags"
	"atelier/internal/models"
	"atelier/internal/repository"
	"atelier/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"atelier/internal/cache"

	goredis "github.com/redis/go-redis/v9"
)

func newTestServer(t *testing.T) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		Env:          "test",
		Port:         "8080",
		JWTSecret:    "unit-test-secret-with-enough-length",
		AdminEmail:   "admin@example.com",
		MailFrom:     "no-reply@example.com",
		FeatureFlags: "",
	}

	srv, err := NewServerWithDeps(cfg, db, nil)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)
	return srv, app, db
}

// withServerRedis backs the cache package with miniredis for one test and
// restores the disabled state afterwards.
func withServerRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	cache.SetClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })
	return mr
}

func seedUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("Str0ng!Passw0rd"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username:      username,
		Email:         username + "@example.com",
		Password:      string(hash),
		Provider:      models.ProviderCredentials,
		Role:          role,
		EmailVerified: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func tokenFor(t *testing.T, srv *Server, user *models.User) string {
	t.Helper()
	token, err := srv.generateToken(user)
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, models.Envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var env models.Envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp, env
}

func dataMap(t *testing.T, env models.Envelope) map[string]any {
	t.Helper()
	m, ok := env.Data.(map[string]any)
	require.True(t, ok, "expected object data, got %T", env.Data)
	return m
}

func TestMetricsEndpointExposed(t *testing.T) {
	_, app, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "go_goroutines",
		"scrape output carries the default registry collectors")
}

func TestLivenessCheck(t *testing.T) {
	_, app, _ := newTestServer(t)

	resp, _ := doJSON(t, app, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSignupThenLogin(t *testing.T) {
	_, app, db := newTestServer(t)

	resp, env := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", fiber.Map{
		"username": "newcomer",
		"email":    "Newcomer@Example.com",
		"password": "Str0ng!Passw0rd",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, env.Success)
	assert.NotEmpty(t, dataMap(t, env)["token"])

	// the email is stored lowercased
	var user models.User
	require.NoError(t, db.Where("username = ?", "newcomer").First(&user).Error)
	assert.Equal(t, "newcomer@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)

	resp, env = doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "newcomer@example.com",
		"password": "Str0ng!Passw0rd",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, dataMap(t, env)["token"])

	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "newcomer@example.com",
		"password": "wrong-password-1!A",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSignup_RejectsWeakPassword(t *testing.T) {
	_, app, _ := newTestServer(t)

	resp, env := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", fiber.Map{
		"username": "weakling",
		"email":    "weak@example.com",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, env.Success)
}

func TestSignup_DuplicateEmailConflicts(t *testing.T) {
	_, app, db := newTestServer(t)
	seedUser(t, db, "existing", models.RoleUser)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", fiber.Map{
		"username": "someone_else",
		"email":    "existing@example.com",
		"password": "Str0ng!Passw0rd",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestGetUserProfile_PublicProjection(t *testing.T) {
	_, app, db := newTestServer(t)
	user := seedUser(t, db, "alice", models.RoleUser)
	user.Bio = "hello"
	require.NoError(t, db.Save(user).Error)

	resp, env := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/users/%d", user.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	profile := dataMap(t, env)
	assert.Equal(t, "alice", profile["username"])
	assert.Equal(t, "hello", profile["bio"])
	assert.NotContains(t, profile, "email")
	assert.NotContains(t, profile, "role")
}

func TestAuthRequired_RejectsBadTokens(t *testing.T) {
	srv, app, db := newTestServer(t)
	user := seedUser(t, db, "alice", models.RoleUser)

	// no token
	resp, _ := doJSON(t, app, http.MethodGet, "/api/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// garbage token
	resp, _ = doJSON(t, app, http.MethodGet, "/api/users/me", "not.a.jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// a valid token works
	resp, _ = doJSON(t, app, http.MethodGet, "/api/users/me", tokenFor(t, srv, user), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLogout_RevokesToken(t *testing.T) {
	srv, app, db := newTestServer(t)
	withServerRedis(t)
	user := seedUser(t, db, "alice", models.RoleUser)
	token := tokenFor(t, srv, user)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env := doJSON(t, app, http.MethodGet, "/api/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Token has been revoked", env.Message)
}

func TestVerifyOTP_MarksEmailVerified(t *testing.T) {
	_, app, db := newTestServer(t)
	mr := withServerRedis(t)

	user := seedUser(t, db, "pending", models.RoleUser)
	user.EmailVerified = false
	require.NoError(t, db.Save(user).Error)

	require.NoError(t, mr.Set("otp:pending@example.com", "123456"))

	resp, _ := doJSON(t, app, http.MethodPost, "/api/auth/verify-otp", "", fiber.Map{
		"email": "pending@example.com",
		"code":  "999999",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/verify-otp", "", fiber.Map{
		"email": "Pending@Example.com",
		"code":  "123456",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stored models.User
	require.NoError(t, db.First(&stored, user.ID).Error)
	assert.True(t, stored.EmailVerified)

	// the code is single-use
	resp, _ = doJSON(t, app, http.MethodPost, "/api/auth/verify-otp", "", fiber.Map{
		"email": "pending@example.com",
		"code":  "123456",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateOTP_AlwaysSixDecimalDigits(t *testing.T) {
	for i := 0; i < 32; i++ {
		code := generateOTP()
		require.Len(t, code, 6)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9', "non-digit in %q", code)
		}
	}

	// the degraded path keeps the same contract
	code := digitsFromUUID(uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff"))
	assert.Equal(t, "555555", code)

	code = digitsFromUUID(uuid.MustParse("00010203-0405-0607-0809-0a0b0c0d0e0f"))
	assert.Equal(t, "012345", code)
}

func TestAdminRequired_BlocksRegularUsers(t *testing.T) {
	srv, app, db := newTestServer(t)
	user := seedUser(t, db, "alice", models.RoleUser)
	admin := seedUser(t, db, "root", models.RoleAdmin)

	resp, env := doJSON(t, app, http.MethodGet, "/api/users/", tokenFor(t, srv, user), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Admin access required", env.Message)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/users/", tokenFor(t, srv, admin), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// countingUserRepo wraps a real repository and counts List calls.
type countingUserRepo struct {
	repository.UserRepository
	listCalls int
}

func (r *countingUserRepo) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	r.listCalls++
	return r.UserRepository.List(ctx, limit, offset)
}

func TestAdminRequired_RejectsBeforeDataAccess(t *testing.T) {
	srv, app, db := newTestServer(t)
	user := seedUser(t, db, "alice", models.RoleUser)

	counting := &countingUserRepo{UserRepository: repository.NewUserRepository(db)}
	srv.userService = service.NewUserService(counting)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/users/", tokenFor(t, srv, user), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, counting.listCalls, "the admin gate must run before any listing")
}

func TestAdminRequired_ChecksRoleFromDatabase(t *testing.T) {
	srv, app, db := newTestServer(t)
	admin := seedUser(t, db, "root", models.RoleAdmin)
	token := tokenFor(t, srv, admin)

	// demotion takes effect immediately even though the token says admin
	admin.Role = models.RoleUser
	require.NoError(t, db.Save(admin).Error)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/users/", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSendMessage_CreatesConversationAndThread(t *testing.T) {
	srv, app, db := newTestServer(t)
	alice := seedUser(t, db, "alice", models.RoleUser)
	bob := seedUser(t, db, "bob", models.RoleUser)

	resp, env := doJSON(t, app, http.MethodPost, "/api/messages/", tokenFor(t, srv, alice), fiber.Map{
		"recipient_id": bob.ID,
		"content":      "hey bob",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	msg := dataMap(t, env)
	convID := uint(msg["conversation_id"].(float64))
	require.NotZero(t, convID)

	// bob sees the conversation with one unread message
	resp, env = doJSON(t, app, http.MethodGet, "/api/messages/", tokenFor(t, srv, bob), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	convs, ok := env.Data.([]any)
	require.True(t, ok)
	require.Len(t, convs, 1)

	// bob reads the thread, then marks it read
	path := fmt.Sprintf("/api/messages/conversations/%d", convID)
	resp, env = doJSON(t, app, http.MethodGet, path, tokenFor(t, srv, bob), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	msgs, ok := env.Data.([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 1)

	resp, env = doJSON(t, app, http.MethodPost, path+"/read", tokenFor(t, srv, bob), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), dataMap(t, env)["marked_read"])

	// an outsider cannot read the thread
	carol := seedUser(t, db, "carol", models.RoleUser)
	resp, _ = doJSON(t, app, http.MethodGet, path, tokenFor(t, srv, carol), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSendMessage_RequiresRecipient(t *testing.T) {
	srv, app, db := newTestServer(t)
	alice := seedUser(t, db, "alice", models.RoleUser)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/messages/", tokenFor(t, srv, alice), fiber.Map{
		"content": "to nobody",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestParseID_RejectsNonNumericParams(t *testing.T) {
	srv, app, db := newTestServer(t)
	alice := seedUser(t, db, "alice", models.RoleUser)

	resp, env := doJSON(t, app, http.MethodGet,
		"/api/messages/conversations/abc", tokenFor(t, srv, alice), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid ID", env.Message)
}

func TestBlogLifecycleOverHTTP(t *testing.T) {
	srv, app, db := newTestServer(t)
	admin := seedUser(t, db, "root", models.RoleAdmin)
	reader := seedUser(t, db, "reader", models.RoleUser)

	// non-admins cannot create posts
	resp, _ := doJSON(t, app, http.MethodPost, "/api/blogs/", tokenFor(t, srv, reader), fiber.Map{
		"title": "Nope", "content": "body",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, env := doJSON(t, app, http.MethodPost, "/api/blogs/", tokenFor(t, srv, admin), fiber.Map{
		"title": "Hello World", "content": "First post body.", "published": true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	blog := dataMap(t, env)
	assert.Equal(t, "hello-world", blog["slug"])
	blogID := uint(blog["id"].(float64))

	// anonymous readers can fetch it by slug
	resp, env = doJSON(t, app, http.MethodGet, "/api/blogs/hello-world", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Hello World", dataMap(t, env)["title"])

	// a signed-in reader comments
	resp, env = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/blogs/%d/comments", blogID), tokenFor(t, srv, reader), fiber.Map{
			"content": "great read",
		})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, env = doJSON(t, app, http.MethodGet,
		fmt.Sprintf("/api/blogs/%d/comments", blogID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	comments, ok := env.Data.([]any)
	require.True(t, ok)
	assert.Len(t, comments, 1)
}

func TestReactions_FeatureFlagged(t *testing.T) {
	srv, app, db := newTestServer(t)
	admin := seedUser(t, db, "root", models.RoleAdmin)
	reader := seedUser(t, db, "reader", models.RoleUser)

	resp, env := doJSON(t, app, http.MethodPost, "/api/blogs/", tokenFor(t, srv, admin), fiber.Map{
		"title": "Reactive", "content": "body", "published": true,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	blogID := uint(dataMap(t, env)["id"].(float64))
	path := fmt.Sprintf("/api/blogs/%d/reactions", blogID)

	// enabled by default
	resp, _ = doJSON(t, app, http.MethodPost, path, tokenFor(t, srv, reader), fiber.Map{
		"type": "like",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// once disabled, the route pretends not to exist
	srv.featureFlags = featureflags.NewManager("blog_reactions=off")
	resp, _ = doJSON(t, app, http.MethodPost, path, tokenFor(t, srv, reader), fiber.Map{
		"type": "like",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOAuthAuthorize_UnknownProviderIs404(t *testing.T) {
	_, app, _ := newTestServer(t)

	// no client IDs configured, so no provider is registered
	resp, _ := doJSON(t, app, http.MethodGet, "/api/auth/oauth/google", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// github is additionally behind a default-off flag
	resp, _ = doJSON(t, app, http.MethodGet, "/api/auth/oauth/github", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestContactSubmitOverHTTP(t *testing.T) {
	_, app, db := newTestServer(t)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/contact", "", fiber.Map{
		"name":    "Visitor",
		"email":   "visitor@example.com",
		"message": "I have a project to discuss with you.",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var count int64
	require.NoError(t, db.Model(&models.ContactMessage{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestFeatureFlagSnapshotEndpoint(t *testing.T) {
	srv, app, db := newTestServer(t)
	admin := seedUser(t, db, "root", models.RoleAdmin)

	resp, env := doJSON(t, app, http.MethodGet, "/api/admin/feature-flags", tokenFor(t, srv, admin), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	flags := dataMap(t, env)
	assert.Equal(t, true, flags["blog_reactions"])
}
