// File: internal/auth/cookies.go
package auth

import (
	"net/http"
	"time"

	"unihomes_backend/internal/config"
	"unihomes_backend/internal/middleware"
	"unihomes_backend/internal/shared"

	"github.com/gin-gonic/gin"
)

// RefreshTokenCookieName is the cookie carrying the long-lived refresh token.
// It is scoped to the auth route group so it never rides along on API calls
// that have no use for it.
const RefreshTokenCookieName = "refresh_token"

const refreshCookiePath = "/api/v1/auth"

func secureCookies() bool {
	return gin.Mode() == gin.ReleaseMode
}

// SetAuthCookies writes the access and refresh tokens as HTTP-only cookies.
// JavaScript never sees token material; the browser carries the session.
func SetAuthCookies(c *gin.Context, cfg *config.Config, pair *shared.TokenPair) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.AccessTokenCookieName,
		Value:    pair.AccessToken,
		Path:     "/",
		Domain:   cfg.AuthCookieDomain,
		Expires:  pair.AccessExpiresAt,
		MaxAge:   int(time.Until(pair.AccessExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     RefreshTokenCookieName,
		Value:    pair.RefreshToken,
		Path:     refreshCookiePath,
		Domain:   cfg.AuthCookieDomain,
		Expires:  pair.RefreshExpiresAt,
		MaxAge:   int(time.Until(pair.RefreshExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearAuthCookies expires both auth cookies.
func ClearAuthCookies(c *gin.Context, cfg *config.Config) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.AccessTokenCookieName,
		Value:    "",
		Path:     "/",
		Domain:   cfg.AuthCookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     RefreshTokenCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		Domain:   cfg.AuthCookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secureCookies(),
		SameSite: http.SameSiteLaxMode,
	})
}

// RefreshTokenFromRequest reads the refresh token from its cookie, falling
// back to a JSON body for non-browser clients. Returns "" when absent.
func RefreshTokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Request.Cookie(RefreshTokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}
	return ""
}
