// File: internal/roommate/service.go
package roommate

import (
	"context"
	"errors"

	"unihomes_backend/internal/common"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service implements roommate listing lifecycle and ownership enforcement.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new roommate listing service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create inserts a new roommate listing owned by the given user.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, req CreateRequest) (*RoommateListing, error) {
	l := &RoommateListing{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
		Area:        req.Area,
		MoveInDate:  req.MoveInDate,
		Photos:      req.Photos,
		Preferences: req.Preferences,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("Roommate listing created",
		zap.String("roommateID", l.ID.String()),
		zap.String("ownerID", ownerID.String()))
	return l, nil
}

// GetByID retrieves a live roommate listing.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*RoommateListing, error) {
	return s.repo.FindByID(ctx, id)
}

// RoommateListingExists reports whether a live roommate listing exists.
func (s *Service) RoommateListingExists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// List returns a page of roommate listings matching the filters.
func (s *Service) List(ctx context.Context, filters Filters, pq common.PaginationQuery) ([]RoommateListing, int64, error) {
	return s.repo.List(ctx, filters, pq)
}

// ListByIDs returns the live roommate listings among the given IDs. Used for
// the viewer's saved collection.
func (s *Service) ListByIDs(ctx context.Context, ids []string) ([]RoommateListing, error) {
	return s.repo.FindByIDs(ctx, ids)
}

func (s *Service) fetchOwned(ctx context.Context, actorID, id uuid.UUID) (*RoommateListing, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.OwnerID != actorID {
		return nil, common.ErrForbidden.WithDetails("You do not own this roommate listing.")
	}
	return l, nil
}

// Update applies a partial update. Owner-only.
func (s *Service) Update(ctx context.Context, actorID, id uuid.UUID, req UpdateRequest) (*RoommateListing, error) {
	l, err := s.fetchOwned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		l.Title = *req.Title
	}
	if req.Description != nil {
		l.Description = *req.Description
	}
	if req.Budget != nil {
		l.Budget = *req.Budget
	}
	if req.Area != nil {
		l.Area = *req.Area
	}
	if req.MoveInDate != nil {
		l.MoveInDate = req.MoveInDate
	}
	if req.Photos != nil {
		l.Photos = *req.Photos
	}
	if req.Preferences != nil {
		l.Preferences = *req.Preferences
	}

	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// Delete soft-deletes the roommate listing. The owner may always delete;
// admins may delete any for moderation.
func (s *Service) Delete(ctx context.Context, actorID uuid.UUID, actorRole string, id uuid.UUID) error {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if l.OwnerID != actorID && actorRole != common.RoleAdmin {
		return common.ErrForbidden.WithDetails("You do not own this roommate listing.")
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Roommate listing soft-deleted", zap.String("roommateID", id.String()))
	return nil
}
