// File: internal/auth/service.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"unihomes_backend/internal/config"
	"unihomes_backend/internal/shared"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	accessTokenIssuer  = "unihomes_backend"
	refreshTokenIssuer = "unihomes_backend_refresh"
)

// JWTService issues and validates the HS256 session tokens. Access and
// refresh tokens share the signing key but carry distinct issuers, so one can
// never be replayed as the other.
type JWTService struct {
	cfg       *config.Config
	blocklist TokenBlocklistService
	logger    *zap.Logger
}

// NewJWTService creates a new JWT service.
func NewJWTService(cfg *config.Config, blocklist TokenBlocklistService, logger *zap.Logger) shared.TokenService {
	return &JWTService{cfg: cfg, blocklist: blocklist, logger: logger}
}

// GenerateTokenPair mints a fresh access/refresh pair for the given user.
// Every refresh token carries a unique JTI so it can be individually revoked.
func (s *JWTService) GenerateTokenPair(userData shared.UserDataForToken) (*shared.TokenPair, error) {
	now := time.Now()
	accessExpiresAt := now.Add(s.cfg.JWTAccessTokenExpiry)
	refreshExpiresAt := now.Add(s.cfg.JWTRefreshTokenExpiry)

	accessClaims := &shared.Claims{
		UserID: userData.GetID(),
		Email:  userData.GetEmail(),
		Role:   userData.GetRole(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(accessExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    accessTokenIssuer,
			Subject:   userData.GetID().String(),
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(s.cfg.JWTSecretKey))
	if err != nil {
		s.logger.Error("Failed to sign access token", zap.Error(err))
		return nil, fmt.Errorf("could not sign access token: %w", err)
	}

	refreshClaims := &shared.Claims{
		UserID: userData.GetID(),
		Email:  userData.GetEmail(),
		Role:   userData.GetRole(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(refreshExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    refreshTokenIssuer,
			Subject:   userData.GetID().String(),
			ID:        uuid.NewString(),
		},
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(s.cfg.JWTSecretKey))
	if err != nil {
		s.logger.Error("Failed to sign refresh token", zap.Error(err))
		return nil, fmt.Errorf("could not sign refresh token: %w", err)
	}

	return &shared.TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExpiresAt,
		RefreshExpiresAt: refreshExpiresAt,
		TokenType:        "Bearer",
	}, nil
}

// parseAndValidate parses a token, enforcing the signing method and issuer.
// Expired, malformed, badly signed and wrong-issuer tokens all fail the same
// way from the caller's point of view.
func (s *JWTService) parseAndValidate(tokenString, expectedIssuer string) (*shared.Claims, error) {
	claims := &shared.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecretKey), nil
	}, jwt.WithIssuer(expectedIssuer))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	parsed, ok := token.Claims.(*shared.Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return parsed, nil
}

// ValidateAccessToken validates an access token and returns its claims.
func (s *JWTService) ValidateAccessToken(tokenString string) (*shared.Claims, error) {
	return s.parseAndValidate(tokenString, accessTokenIssuer)
}

// ValidateRefreshToken validates a refresh token. A structurally valid token
// whose JTI has been revoked (rotated away or logged out) is rejected.
func (s *JWTService) ValidateRefreshToken(tokenString string) (*shared.Claims, error) {
	claims, err := s.parseAndValidate(tokenString, refreshTokenIssuer)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, errors.New("refresh token is missing its ID")
	}
	blocked, err := s.blocklist.IsBlocklisted(context.Background(), claims.ID)
	if err != nil {
		s.logger.Error("Blocklist lookup failed", zap.Error(err))
		return nil, fmt.Errorf("blocklist lookup failed: %w", err)
	}
	if blocked {
		return nil, errors.New("refresh token has been revoked")
	}
	return claims, nil
}
