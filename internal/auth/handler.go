// File: internal/auth/handler.go
package auth

import (
	"errors"

	"unihomes_backend/internal/common"
	"unihomes_backend/internal/config"
	"unihomes_backend/internal/middleware"
	"unihomes_backend/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for auth handlers.
type Handler struct {
	cfg          *config.Config
	userService  UserProvider
	tokenService shared.TokenService
	blocklist    TokenBlocklistService
	logger       *zap.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(
	cfg *config.Config,
	userService UserProvider,
	tokenService shared.TokenService,
	blocklist TokenBlocklistService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		cfg:          cfg,
		userService:  userService,
		tokenService: tokenService,
		blocklist:    blocklist,
		logger:       logger,
	}
}

// RegisterRoutes sets up the routes for authentication operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
		authGroup.POST("/refresh", h.refreshToken)
		authGroup.POST("/logout", h.logout)
		authGroup.POST("/forgot-password", h.forgotPassword)
		authGroup.POST("/reset-password", h.resetPassword)
		authGroup.GET("/verify-email", h.verifyEmailFromLink)
		authGroup.POST("/verify-email", h.verifyEmail)
		authGroup.POST("/resend-verification", h.resendVerification)
		authGroup.GET("/me", authMiddleware, h.getMe)
		authGroup.PATCH("/me", authMiddleware, h.updateMe)
	}
}

func bindJSONOrRespond(c *gin.Context, logger *zap.Logger, req interface{}, op string) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		logger.Warn(op+": Invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return false
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return false
	}
	return true
}

// startSession mints a token pair for the user and attaches it as cookies.
func (h *Handler) startSession(c *gin.Context, u *shared.User) (*shared.TokenPair, error) {
	pair, err := h.tokenService.GenerateTokenPair(u)
	if err != nil {
		return nil, err
	}
	SetAuthCookies(c, h.cfg, pair)
	return pair, nil
}

func (h *Handler) register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSONOrRespond(c, h.logger, &req, "Register") {
		return
	}

	newUser, err := h.userService.Register(c.Request.Context(), shared.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
		Phone:    req.Phone,
	})
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	pair, err := h.startSession(c, newUser)
	if err != nil {
		h.logger.Error("Failed to generate tokens after registration",
			zap.Error(err), zap.String("userID", newUser.ID.String()))
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("Account created but session could not be started. Please log in."))
		return
	}

	common.RespondCreated(c, "Registration successful. Please verify your email.", gin.H{
		"user":  shared.ToMeResponse(newUser),
		"token": pair,
	})
}

func (h *Handler) login(c *gin.Context) {
	var req LoginRequest
	if !bindJSONOrRespond(c, h.logger, &req, "Login") {
		return
	}

	loggedInUser, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	pair, err := h.startSession(c, loggedInUser)
	if err != nil {
		h.logger.Error("Failed to generate tokens during login",
			zap.Error(err), zap.String("userID", loggedInUser.ID.String()))
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("Could not start session."))
		return
	}

	common.RespondOK(c, "Login successful.", gin.H{
		"user":  shared.ToMeResponse(loggedInUser),
		"token": pair,
	})
}

func (h *Handler) refreshToken(c *gin.Context) {
	refreshToken := RefreshTokenFromRequest(c)
	if refreshToken == "" {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Refresh token is missing."))
		return
	}

	claims, err := h.tokenService.ValidateRefreshToken(refreshToken)
	if err != nil {
		h.logger.Warn("Refresh token validation failed", zap.Error(err))
		ClearAuthCookies(c, h.cfg)
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Invalid or expired refresh token."))
		return
	}

	u, err := h.userService.GetUserByID(c.Request.Context(), claims.UserID)
	if err != nil {
		h.logger.Warn("User not found for valid refresh token claims",
			zap.String("userID", claims.UserID.String()), zap.Error(err))
		ClearAuthCookies(c, h.cfg)
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Invalid or expired refresh token."))
		return
	}

	// Rotation: the presented token is spent the moment a new pair exists.
	if err := h.blocklist.AddToBlocklist(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		h.logger.Error("Failed to blocklist rotated refresh token", zap.Error(err))
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("Could not rotate session."))
		return
	}

	pair, err := h.startSession(c, u)
	if err != nil {
		h.logger.Error("Failed to generate tokens during refresh",
			zap.Error(err), zap.String("userID", u.ID.String()))
		common.RespondWithError(c, common.ErrInternalServer.WithDetails("Could not rotate session."))
		return
	}

	common.RespondOK(c, "Session refreshed.", gin.H{"token": pair})
}

func (h *Handler) logout(c *gin.Context) {
	// Best effort: revoke the refresh token if one is presented and parses.
	if refreshToken := RefreshTokenFromRequest(c); refreshToken != "" {
		if claims, err := h.tokenService.ValidateRefreshToken(refreshToken); err == nil {
			if err := h.blocklist.AddToBlocklist(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
				h.logger.Error("Failed to blocklist refresh token on logout", zap.Error(err))
			}
		}
	}
	ClearAuthCookies(c, h.cfg)
	common.RespondOK(c, "Logged out.", nil)
}

func (h *Handler) getMe(c *gin.Context) {
	userID := middleware.GetUserIDFromContext(c)
	u, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Profile retrieved.", shared.ToMeResponse(u))
}

func (h *Handler) updateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if !bindJSONOrRespond(c, h.logger, &req, "UpdateProfile") {
		return
	}

	userID := middleware.GetUserIDFromContext(c)
	updated, err := h.userService.UpdateProfile(c.Request.Context(), userID, shared.ProfileUpdateInput{
		Name:         req.Name,
		Phone:        req.Phone,
		AvatarURL:    req.AvatarURL,
		MatricNumber: req.MatricNumber,
	})
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Profile updated.", shared.ToMeResponse(updated))
}

// forgotPassword always answers 200 with the same message, whether or not the
// address belongs to an account.
func (h *Handler) forgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !bindJSONOrRespond(c, h.logger, &req, "ForgotPassword") {
		return
	}

	if err := h.userService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		// Internal failures are logged but never change the response shape.
		h.logger.Error("Password reset request failed internally", zap.Error(err))
	}
	common.RespondOK(c, "If an account exists for that email, a password reset link has been sent.", nil)
}

func (h *Handler) resetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !bindJSONOrRespond(c, h.logger, &req, "ResetPassword") {
		return
	}

	if err := h.userService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Password has been reset. Please log in with your new password.", nil)
}

func (h *Handler) verifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if !bindJSONOrRespond(c, h.logger, &req, "VerifyEmail") {
		return
	}
	h.completeVerification(c, req.Token)
}

// verifyEmailFromLink handles the GET variant used by the link in the
// verification email.
func (h *Handler) verifyEmailFromLink(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Verification token is missing."))
		return
	}
	h.completeVerification(c, token)
}

func (h *Handler) completeVerification(c *gin.Context, token string) {
	if err := h.userService.VerifyEmail(c.Request.Context(), token); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Email verified successfully.", nil)
}

// resendVerification mirrors forgotPassword: the response never reveals
// whether the address is registered.
func (h *Handler) resendVerification(c *gin.Context) {
	var req ResendVerificationRequest
	if !bindJSONOrRespond(c, h.logger, &req, "ResendVerification") {
		return
	}

	if err := h.userService.ResendVerificationEmail(c.Request.Context(), req.Email); err != nil {
		h.logger.Error("Resend verification failed internally", zap.Error(err))
	}
	common.RespondOK(c, "If an account exists for that email, a verification link has been sent.", nil)
}
