package integration

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func login(t *testing.T, env *testEnv, email, password string) (*http.Response, []*http.Cookie) {
	t.Helper()
	rec, _ := env.doRequest(t, http.MethodPost, "/api/v1/auth/login", gin.H{
		"email":    email,
		"password": password,
	}, nil)
	res := rec.Result()
	return res, res.Cookies()
}

func TestRegisterLoginAndMe(t *testing.T) {
	env := setupTestServer(t)

	cookies := env.registerUser(t, "student@unihomes.test", "student")
	require.NotNil(t, cookieByName(cookies, "access_token"))
	require.NotNil(t, cookieByName(cookies, "refresh_token"))

	rec, body := env.doRequest(t, http.MethodGet, "/api/v1/auth/me", nil, cookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var me struct {
		Email              string   `json:"email"`
		Role               string   `json:"role"`
		SavedListingIDs    []string `json:"saved_listing_ids"`
		UnlockedListingIDs []string `json:"unlocked_listing_ids"`
	}
	body.decodeData(t, &me)
	assert.Equal(t, "student@unihomes.test", me.Email)
	assert.Equal(t, "student", me.Role)
	assert.NotNil(t, me.SavedListingIDs)
	assert.NotNil(t, me.UnlockedListingIDs)

	res, loginCookies := login(t, env, "student@unihomes.test", "password123")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.NotNil(t, cookieByName(loginCookies, "access_token"))
}

func TestLoginFailuresAreUniform(t *testing.T) {
	env := setupTestServer(t)
	env.registerUser(t, "known@unihomes.test", "student")

	resWrongPassword, _ := login(t, env, "known@unihomes.test", "wrong-password")
	resUnknownEmail, _ := login(t, env, "nobody@unihomes.test", "password123")

	assert.Equal(t, http.StatusUnauthorized, resWrongPassword.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, resUnknownEmail.StatusCode)
}

func TestAdminRegistrationRejected(t *testing.T) {
	env := setupTestServer(t)

	rec, _ := env.doRequest(t, http.MethodPost, "/api/v1/auth/register", gin.H{
		"email":    "sneaky@unihomes.test",
		"password": "password123",
		"name":     "Sneaky",
		"role":     "admin",
	}, nil)
	// The binding only admits student, agent and owner.
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyEmailFlow(t *testing.T) {
	env := setupTestServer(t)
	env.registerUser(t, "verifyme@unihomes.test", "student")

	u := env.findUser(t, "verifyme@unihomes.test")
	require.False(t, u.IsEmailVerified)
	require.NotNil(t, u.EmailVerificationToken)

	rec, _ := env.doRequest(t, http.MethodGet, "/api/v1/auth/verify-email?token="+*u.EmailVerificationToken, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	verified := env.findUser(t, "verifyme@unihomes.test")
	assert.True(t, verified.IsEmailVerified)
	assert.Nil(t, verified.EmailVerificationToken)

	// Single use.
	rec, _ = env.doRequest(t, http.MethodGet, "/api/v1/auth/verify-email?token="+*u.EmailVerificationToken, nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshRotation(t *testing.T) {
	env := setupTestServer(t)
	cookies := env.registerUser(t, "rotate@unihomes.test", "student")
	oldRefresh := cookieByName(cookies, "refresh_token")
	require.NotNil(t, oldRefresh)

	rec, _ := env.doRequest(t, http.MethodPost, "/api/v1/auth/refresh", nil, []*http.Cookie{oldRefresh})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	newRefresh := cookieByName(rec.Result().Cookies(), "refresh_token")
	require.NotNil(t, newRefresh)
	assert.NotEqual(t, oldRefresh.Value, newRefresh.Value)

	// The spent token no longer rotates.
	rec, _ = env.doRequest(t, http.MethodPost, "/api/v1/auth/refresh", nil, []*http.Cookie{oldRefresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The fresh one does.
	rec, _ = env.doRequest(t, http.MethodPost, "/api/v1/auth/refresh", nil, []*http.Cookie{newRefresh})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnonymousMeIsUnauthorized(t *testing.T) {
	env := setupTestServer(t)

	rec, _ := env.doRequest(t, http.MethodGet, "/api/v1/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestForgotPasswordNeverRevealsAccounts(t *testing.T) {
	env := setupTestServer(t)
	env.registerUser(t, "resetme@unihomes.test", "student")

	recKnown, bodyKnown := env.doRequest(t, http.MethodPost, "/api/v1/auth/forgot-password", gin.H{"email": "resetme@unihomes.test"}, nil)
	recUnknown, bodyUnknown := env.doRequest(t, http.MethodPost, "/api/v1/auth/forgot-password", gin.H{"email": "ghost@unihomes.test"}, nil)

	assert.Equal(t, http.StatusOK, recKnown.Code)
	assert.Equal(t, http.StatusOK, recUnknown.Code)
	assert.Equal(t, bodyKnown.Message, bodyUnknown.Message)

	// The real account did get a token.
	u := env.findUser(t, "resetme@unihomes.test")
	assert.NotNil(t, u.PasswordResetToken)
}
