// File: internal/middleware/auth.go
package middleware

import (
	"strings"

	"unihomes_backend/internal/common"
	"unihomes_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// AuthorizationHeader is the header name for authorization token
	AuthorizationHeader = "Authorization"
	// AuthorizationTypeBearer is the prefix for Bearer tokens
	AuthorizationTypeBearer = "Bearer"
	// AccessTokenCookieName is the cookie carrying the short-lived access token
	AccessTokenCookieName = "access_token"
	// UserIDKey is the context key for storing the authenticated user's ID
	UserIDKey = "userID"
	// UserEmailKey is the context key for storing the authenticated user's email
	UserEmailKey = "userEmail"
	// UserRoleKey is the context key for storing the authenticated user's role
	UserRoleKey = "userRole"
	// UserClaimsKey stores the whole claims object
	UserClaimsKey = "userClaims"
)

// accessTokenFromRequest reads the access token from the auth cookie, falling
// back to a Bearer Authorization header for non-browser clients.
func accessTokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Request.Cookie(AccessTokenCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := c.GetHeader(AuthorizationHeader)
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], AuthorizationTypeBearer) {
		return ""
	}
	return parts[1]
}

// resolveViewer validates the access token and confirms the account is still
// active in the database. Both must hold before any identity reaches a handler.
func resolveViewer(c *gin.Context, tokenService shared.TokenService, userService shared.Service) (*shared.Claims, bool) {
	tokenString := accessTokenFromRequest(c)
	if tokenString == "" {
		return nil, false
	}
	claims, err := tokenService.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, false
	}
	// A token outliving its account must not authenticate.
	if _, err := userService.GetUserByID(c.Request.Context(), claims.UserID); err != nil {
		return nil, false
	}
	return claims, true
}

func setViewerContext(c *gin.Context, claims *shared.Claims) {
	c.Set(UserIDKey, claims.UserID)
	c.Set(UserEmailKey, claims.Email)
	c.Set(UserRoleKey, claims.Role)
	c.Set(UserClaimsKey, claims)
}

// AuthMiddleware creates a Gin middleware requiring an authenticated, active
// account. All failure modes collapse into the same generic 401 so callers
// cannot probe which stage rejected them.
func AuthMiddleware(tokenService shared.TokenService, userService shared.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := resolveViewer(c, tokenService, userService)
		if !ok {
			logger.Debug("Request rejected: authentication required",
				zap.String("path", c.Request.URL.Path))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authentication required."))
			return
		}
		setViewerContext(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches viewer identity when resolvable and proceeds
// anonymously otherwise. It never rejects. Used by endpoints whose response
// shape depends on who is looking.
func OptionalAuthMiddleware(tokenService shared.TokenService, userService shared.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := resolveViewer(c, tokenService, userService); ok {
			setViewerContext(c, claims)
		}
		c.Next()
	}
}

// RequireRole creates a middleware enforcing a minimum role against the role
// hierarchy. One generic guard instead of a wrapper per role; the hierarchy is
// a partial order, so an owner-level requirement rejects agents and vice versa.
func RequireRole(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := GetUserRoleFromContext(c)
		if userRole == "" {
			common.RespondWithError(c, common.ErrForbidden.WithDetails("User role not found in context."))
			return
		}
		if !common.RoleSatisfies(userRole, required) {
			common.RespondWithError(c, common.ErrForbidden.WithDetails("You do not have sufficient permissions for this resource."))
			return
		}
		c.Next()
	}
}

// GetUserIDFromContext retrieves the user ID from the Gin context.
// Returns uuid.Nil if not found or not a UUID.
func GetUserIDFromContext(c *gin.Context) uuid.UUID {
	val, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil
	}
	userID, ok := val.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return userID
}

// GetUserRoleFromContext retrieves the user role from the Gin context.
func GetUserRoleFromContext(c *gin.Context) string {
	val, exists := c.Get(UserRoleKey)
	if !exists {
		return ""
	}
	role, ok := val.(string)
	if !ok {
		return ""
	}
	return role
}

// GetUserClaimsFromContext retrieves the full claims object from the Gin context.
func GetUserClaimsFromContext(c *gin.Context) *shared.Claims {
	val, exists := c.Get(UserClaimsKey)
	if !exists {
		return nil
	}
	claims, ok := val.(*shared.Claims)
	if !ok {
		return nil
	}
	return claims
}
