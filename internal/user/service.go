// File: internal/user/service.go
package user

import (
	"context"
	"time"

	"unihomes_backend/internal/common"
	"unihomes_backend/internal/config"
	"unihomes_backend/internal/platform/crypto"
	"unihomes_backend/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const credentialTokenLength = 48

// ListingChecker reports whether a listing is live. Implemented by the
// listing service; declared here so this package stays independent of it.
type ListingChecker interface {
	ListingExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// RoommateChecker reports whether a roommate listing is live.
type RoommateChecker interface {
	RoommateListingExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service implements account management: registration, login, credential
// token flows, profile updates and the viewer's reference sets.
type Service struct {
	repo       Repository
	dispatcher shared.EventDispatcher
	listings   ListingChecker
	roommates  RoommateChecker
	cfg        *config.Config
	logger     *zap.Logger
}

// NewService creates a new user service.
func NewService(
	repo Repository,
	dispatcher shared.EventDispatcher,
	listings ListingChecker,
	roommates RoommateChecker,
	cfg *config.Config,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:       repo,
		dispatcher: dispatcher,
		listings:   listings,
		roommates:  roommates,
		cfg:        cfg,
		logger:     logger,
	}
}

// Register creates a new account and queues the verification email.
func (s *Service) Register(ctx context.Context, input shared.RegisterInput) (*shared.User, error) {
	if !common.IsValidRole(input.Role) || input.Role == common.RoleAdmin {
		return nil, common.ErrBadRequest.WithDetails("Role must be one of: student, agent, owner.")
	}

	hash, err := common.HashPassword(input.Password)
	if err != nil {
		s.logger.Error("Failed to hash password during registration", zap.Error(err))
		return nil, common.ErrInternalServer
	}

	token, err := crypto.RandomToken(credentialTokenLength)
	if err != nil {
		s.logger.Error("Failed to generate verification token", zap.Error(err))
		return nil, common.ErrInternalServer
	}
	tokenExpiry := time.Now().Add(s.cfg.EmailVerificationTokenTTL)

	newUser := &User{
		Email:                        input.Email,
		PasswordHash:                 hash,
		Name:                         input.Name,
		Phone:                        input.Phone,
		Role:                         input.Role,
		EmailVerificationToken:       &token,
		EmailVerificationTokenExpiry: &tokenExpiry,
	}
	if err := s.repo.Create(ctx, newUser); err != nil {
		return nil, err
	}

	s.dispatcher.Dispatch(ctx, shared.NotificationEvent{
		Type:           shared.EventUserRegistered,
		RecipientID:    newUser.ID,
		RecipientEmail: newUser.Email,
		RecipientName:  newUser.Name,
		Data:           map[string]string{"verification_token": token},
	})

	s.logger.Info("User registered",
		zap.String("userID", newUser.ID.String()),
		zap.String("role", newUser.Role))
	return ToSharedUser(newUser), nil
}

// Login authenticates by email and password. Unknown email, wrong password
// and deleted account all produce the identical unauthorized error.
func (s *Service) Login(ctx context.Context, email, password string) (*shared.User, error) {
	invalidCredentials := common.ErrUnauthorized.WithDetails("Invalid email or password.")

	dbUser, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, invalidCredentials
	}
	if !common.CheckPasswordHash(password, dbUser.PasswordHash) {
		return nil, invalidCredentials
	}

	now := time.Now()
	dbUser.LastLoginAt = &now
	if err := s.repo.Update(ctx, dbUser); err != nil {
		// Login still succeeds; the timestamp is advisory.
		s.logger.Warn("Failed to record last login time",
			zap.Error(err), zap.String("userID", dbUser.ID.String()))
	}

	return ToSharedUser(dbUser), nil
}

// GetUserByID retrieves an active user by ID.
func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*shared.User, error) {
	dbUser, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToSharedUser(dbUser), nil
}

// GetUserByEmail retrieves an active user by email.
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*shared.User, error) {
	dbUser, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return ToSharedUser(dbUser), nil
}

// UpdateProfile applies a partial profile update.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, input shared.ProfileUpdateInput) (*shared.User, error) {
	dbUser, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		dbUser.Name = *input.Name
	}
	if input.Phone != nil {
		dbUser.Phone = input.Phone
	}
	if input.AvatarURL != nil {
		dbUser.AvatarURL = input.AvatarURL
	}
	if input.MatricNumber != nil {
		dbUser.MatricNumber = input.MatricNumber
	}

	if err := s.repo.Update(ctx, dbUser); err != nil {
		return nil, err
	}
	return ToSharedUser(dbUser), nil
}

// RequestPasswordReset issues a reset token for the account, if one exists.
// An unknown email is not an error; the caller's response never varies.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	dbUser, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil
	}

	token, err := crypto.RandomToken(credentialTokenLength)
	if err != nil {
		return err
	}
	expiry := time.Now().Add(s.cfg.PasswordResetTokenTTL)
	dbUser.PasswordResetToken = &token
	dbUser.PasswordResetTokenExpiry = &expiry
	if err := s.repo.Update(ctx, dbUser); err != nil {
		return err
	}

	s.dispatcher.Dispatch(ctx, shared.NotificationEvent{
		Type:           shared.EventPasswordResetRequested,
		RecipientID:    dbUser.ID,
		RecipientEmail: dbUser.Email,
		RecipientName:  dbUser.Name,
		Data:           map[string]string{"reset_token": token},
	})
	return nil
}

// ResetPassword consumes a reset token and installs the new password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	dbUser, err := s.repo.FindByResetToken(ctx, token)
	if err != nil {
		return err
	}

	hash, err := common.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("Failed to hash password during reset", zap.Error(err))
		return common.ErrInternalServer
	}

	dbUser.PasswordHash = hash
	dbUser.PasswordResetToken = nil
	dbUser.PasswordResetTokenExpiry = nil
	if err := s.repo.Update(ctx, dbUser); err != nil {
		return err
	}

	s.dispatcher.Dispatch(ctx, shared.NotificationEvent{
		Type:           shared.EventPasswordChanged,
		RecipientID:    dbUser.ID,
		RecipientEmail: dbUser.Email,
		RecipientName:  dbUser.Name,
	})
	return nil
}

// VerifyEmail consumes a verification token and marks the email verified.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	dbUser, err := s.repo.FindByVerificationToken(ctx, token)
	if err != nil {
		return err
	}

	dbUser.IsEmailVerified = true
	dbUser.EmailVerificationToken = nil
	dbUser.EmailVerificationTokenExpiry = nil
	return s.repo.Update(ctx, dbUser)
}

// ResendVerificationEmail reissues the verification token. Silent for unknown
// or already-verified addresses.
func (s *Service) ResendVerificationEmail(ctx context.Context, email string) error {
	dbUser, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil
	}
	if dbUser.IsEmailVerified {
		return nil
	}

	token, err := crypto.RandomToken(credentialTokenLength)
	if err != nil {
		return err
	}
	expiry := time.Now().Add(s.cfg.EmailVerificationTokenTTL)
	dbUser.EmailVerificationToken = &token
	dbUser.EmailVerificationTokenExpiry = &expiry
	if err := s.repo.Update(ctx, dbUser); err != nil {
		return err
	}

	s.dispatcher.Dispatch(ctx, shared.NotificationEvent{
		Type:           shared.EventEmailVerificationResent,
		RecipientID:    dbUser.ID,
		RecipientEmail: dbUser.Email,
		RecipientName:  dbUser.Name,
		Data:           map[string]string{"verification_token": token},
	})
	return nil
}

// SaveListing adds a live listing to the viewer's saved set. Saving a listing
// that is already saved is a conflict.
func (s *Service) SaveListing(ctx context.Context, userID, listingID uuid.UUID) (*shared.User, error) {
	exists, err := s.listings.ListingExists(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, common.ErrNotFound.WithDetails("Listing not found.")
	}

	added, err := s.repo.AddSavedListing(ctx, userID, listingID.String())
	if err != nil {
		return nil, err
	}
	if !added {
		// Zero rows also happens when the account itself is gone; only a
		// live account earns the conflict verdict.
		if _, err := s.GetUserByID(ctx, userID); err != nil {
			return nil, err
		}
		return nil, common.ErrConflict.WithDetails("Listing is already saved.")
	}
	return s.GetUserByID(ctx, userID)
}

// UnsaveListing removes a listing from the viewer's saved set. Idempotent.
func (s *Service) UnsaveListing(ctx context.Context, userID, listingID uuid.UUID) (*shared.User, error) {
	if err := s.repo.RemoveSavedListing(ctx, userID, listingID.String()); err != nil {
		return nil, err
	}
	return s.GetUserByID(ctx, userID)
}

// SaveRoommate adds a live roommate listing to the viewer's saved set.
func (s *Service) SaveRoommate(ctx context.Context, userID, roommateID uuid.UUID) (*shared.User, error) {
	exists, err := s.roommates.RoommateListingExists(ctx, roommateID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, common.ErrNotFound.WithDetails("Roommate listing not found.")
	}

	added, err := s.repo.AddSavedRoommate(ctx, userID, roommateID.String())
	if err != nil {
		return nil, err
	}
	if !added {
		if _, err := s.GetUserByID(ctx, userID); err != nil {
			return nil, err
		}
		return nil, common.ErrConflict.WithDetails("Roommate listing is already saved.")
	}
	return s.GetUserByID(ctx, userID)
}

// UnsaveRoommate removes a roommate listing from the viewer's saved set.
func (s *Service) UnsaveRoommate(ctx context.Context, userID, roommateID uuid.UUID) (*shared.User, error) {
	if err := s.repo.RemoveSavedRoommate(ctx, userID, roommateID.String()); err != nil {
		return nil, err
	}
	return s.GetUserByID(ctx, userID)
}

// GrantListingUnlock adds a listing to the user's unlocked set. Called when a
// payment proof for it is approved. Granting an unlock twice is a no-op.
func (s *Service) GrantListingUnlock(ctx context.Context, userID, listingID uuid.UUID) error {
	added, err := s.repo.AddUnlockedListing(ctx, userID, listingID.String())
	if err != nil {
		return err
	}
	if !added {
		s.logger.Debug("Listing unlock already granted",
			zap.String("userID", userID.String()),
			zap.String("listingID", listingID.String()))
	}
	return nil
}

// ListUsers returns a page of users for the admin surface.
func (s *Service) ListUsers(ctx context.Context, filters ListFilters, pq common.PaginationQuery) ([]shared.User, int64, error) {
	dbUsers, total, err := s.repo.List(ctx, filters, pq)
	if err != nil {
		return nil, 0, err
	}
	users := make([]shared.User, 0, len(dbUsers))
	for i := range dbUsers {
		users = append(users, *ToSharedUser(&dbUsers[i]))
	}
	return users, total, nil
}

// UpdateRoleAndVerification applies an admin's role or verification change.
// Returns the updated view and whether the change newly verified the account.
func (s *Service) UpdateRoleAndVerification(ctx context.Context, targetID uuid.UUID, role *string, isVerified *bool) (*shared.User, bool, error) {
	dbUser, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return nil, false, err
	}

	newlyVerified := false
	if role != nil {
		if !common.IsValidRole(*role) {
			return nil, false, common.ErrBadRequest.WithDetails("Unknown role.")
		}
		dbUser.Role = *role
	}
	if isVerified != nil {
		if *isVerified && !dbUser.IsVerified {
			newlyVerified = true
		}
		dbUser.IsVerified = *isVerified
	}

	if err := s.repo.Update(ctx, dbUser); err != nil {
		return nil, false, err
	}
	return ToSharedUser(dbUser), newlyVerified, nil
}

// SoftDeleteUser marks the account deleted.
func (s *Service) SoftDeleteUser(ctx context.Context, targetID uuid.UUID) error {
	return s.repo.SoftDelete(ctx, targetID)
}

// CountUsersByRole exposes role counts for dashboards.
func (s *Service) CountUsersByRole(ctx context.Context, role string) (int64, error) {
	return s.repo.CountByRole(ctx, role)
}

// CountUsersCreatedSince exposes signup counts for dashboards.
func (s *Service) CountUsersCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	return s.repo.CountCreatedSince(ctx, since)
}

// ClearExpiredCredentialTokens removes verification and reset tokens past
// their expiry. Run periodically by the token cleanup job.
func (s *Service) ClearExpiredCredentialTokens(ctx context.Context) (int64, error) {
	return s.repo.ClearExpiredCredentialTokens(ctx, time.Now())
}
