package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"unihomes_backend/internal/admin"
	"unihomes_backend/internal/agent"
	"unihomes_backend/internal/auth"
	"unihomes_backend/internal/common"
	"unihomes_backend/internal/config"
	"unihomes_backend/internal/listing"
	"unihomes_backend/internal/middleware"
	"unihomes_backend/internal/notification"
	"unihomes_backend/internal/payment"
	"unihomes_backend/internal/roommate"
	"unihomes_backend/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testEnv wires the full HTTP surface against an in-memory SQLite database.
// Postgres-specific paths (array set updates, date_trunc aggregation) are not
// exercised here; those stay in unit tests against fakes.
type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	cfg := &config.Config{
		GinMode:                   gin.TestMode,
		JWTSecretKey:              "integration-test-secret-key",
		JWTAccessTokenExpiry:      15 * time.Minute,
		JWTRefreshTokenExpiry:     7 * 24 * time.Hour,
		EmailVerificationTokenTTL: 24 * time.Hour,
		PasswordResetTokenTTL:     time.Hour,
		FrontendBaseURL:           "http://localhost:3000",
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&user.User{},
		&listing.Listing{},
		&roommate.RoommateListing{},
		&payment.PaymentProof{},
		&notification.Notification{},
	))

	blocklist := auth.NewInMemoryBlocklistService(auth.InMemoryBlocklistConfig{
		DefaultExpiration: cfg.JWTRefreshTokenExpiry,
		CleanupInterval:   time.Hour,
	})
	tokenService := auth.NewJWTService(cfg, blocklist, logger)

	notificationRepo := notification.NewGORMRepository(db)
	notificationService := notification.NewService(notificationRepo, &nopMailer{}, cfg, logger)
	// Not started: dispatched events just sit in the buffer.
	dispatcher := notification.NewChannelDispatcher(notificationService, logger)

	listingService := listing.NewService(listing.NewGORMRepository(db), nil, logger)
	roommateService := roommate.NewService(roommate.NewGORMRepository(db), logger)
	userService := user.NewService(user.NewGORMRepository(db), dispatcher, listingService, roommateService, cfg, logger)
	paymentService := payment.NewService(payment.NewGORMRepository(db), listingService, userService, userService, dispatcher, logger)
	adminService := admin.NewService(userService, listingService, paymentService, dispatcher, logger)
	agentService := agent.NewService(listingService, paymentService, logger)

	authHandler := auth.NewHandler(cfg, userService, tokenService, blocklist, logger)
	userHandler := user.NewHandler(userService, logger)
	listingHandler := listing.NewHandler(listingService, userService, logger)
	roommateHandler := roommate.NewHandler(roommateService, userService, logger)
	paymentHandler := payment.NewHandler(paymentService, logger)
	adminHandler := admin.NewHandler(adminService, logger)
	agentHandler := agent.NewHandler(agentService, userService, logger)
	notificationHandler := notification.NewHandler(notificationService, logger)

	router := gin.New()
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	authMW := middleware.AuthMiddleware(tokenService, userService, logger)
	optionalAuthMW := middleware.OptionalAuthMiddleware(tokenService, userService, logger)
	requireAdmin := middleware.RequireRole(common.RoleAdmin)
	requireAgent := middleware.RequireRole(common.RoleAgent)

	v1 := router.Group("/api/v1")
	authHandler.RegisterRoutes(v1, authMW)
	userHandler.RegisterRoutes(v1, authMW)
	listingHandler.RegisterRoutes(v1, authMW, optionalAuthMW, requireAgent)
	roommateHandler.RegisterRoutes(v1, authMW, optionalAuthMW)
	paymentHandler.RegisterRoutes(v1, authMW, requireAdmin)
	adminHandler.RegisterRoutes(v1, authMW, requireAdmin)
	agentHandler.RegisterRoutes(v1, authMW, requireAgent)
	notificationHandler.RegisterRoutes(v1, authMW)

	return &testEnv{router: router, db: db, cfg: cfg}
}

type nopMailer struct{}

func (*nopMailer) Send(context.Context, string, string, string) error { return nil }

// envelope is the standard response wrapper.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *envelope) decodeData(t *testing.T, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(e.Data, out))
}

// doRequest performs one request against the in-process router.
func (env *testEnv) doRequest(t *testing.T, method, path string, body interface{}, cookies []*http.Cookie) (*httptest.ResponseRecorder, *envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	var env2 envelope
	if rec.Body.Len() > 0 {
		// Non-JSON bodies (e.g. 204) are fine to skip.
		_ = json.Unmarshal(rec.Body.Bytes(), &env2)
	}
	return rec, &env2
}

// registerUser creates an account over the API and returns its session cookies.
func (env *testEnv) registerUser(t *testing.T, email, role string) []*http.Cookie {
	t.Helper()
	rec, _ := env.doRequest(t, http.MethodPost, "/api/v1/auth/register", gin.H{
		"email":    email,
		"password": "password123",
		"name":     "Test " + role,
		"role":     role,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return rec.Result().Cookies()
}

// promoteToAdmin flips a registered account to the admin role directly in the
// database; the API never mints admins.
func (env *testEnv) promoteToAdmin(t *testing.T, email string) {
	t.Helper()
	result := env.db.Model(&user.User{}).Where("email = ?", email).Update("role", common.RoleAdmin)
	require.NoError(t, result.Error)
	require.EqualValues(t, 1, result.RowsAffected)
}

// findUser loads a user row straight from the database.
func (env *testEnv) findUser(t *testing.T, email string) *user.User {
	t.Helper()
	var u user.User
	require.NoError(t, env.db.Where("email = ?", email).First(&u).Error)
	return &u
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name && c.Value != "" {
			return c
		}
	}
	return nil
}
