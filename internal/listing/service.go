// File: internal/listing/service.go
package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"unihomes_backend/internal/common"
	"unihomes_backend/internal/platform/crypto"
	"unihomes_backend/internal/platform/elasticsearch"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

const maxSlugAttempts = 5

// Service implements listing lifecycle, ownership enforcement and search.
type Service struct {
	repo     Repository
	esClient *elasticsearch.ESClientWrapper
	logger   *zap.Logger
}

// NewService creates a new listing service. esClient may be nil; search then
// runs against the database only.
func NewService(repo Repository, esClient *elasticsearch.ESClientWrapper, logger *zap.Logger) *Service {
	return &Service{repo: repo, esClient: esClient, logger: logger}
}

// generateUniqueSlug derives a slug from the title, suffixing a short random
// string on collision. Slugs of deleted listings stay reserved.
func (s *Service) generateUniqueSlug(ctx context.Context, title string) (string, error) {
	base := slug.Make(title)
	candidate := base
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		exists, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		suffix, err := crypto.RandomToken(4)
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s-%s", base, strings.ToLower(suffix[:6]))
	}
	return "", fmt.Errorf("could not find a free slug for title %q", title)
}

// Create inserts a new listing owned by the given agent.
func (s *Service) Create(ctx context.Context, agentID uuid.UUID, req CreateRequest) (*Listing, error) {
	listingSlug, err := s.generateUniqueSlug(ctx, req.Title)
	if err != nil {
		s.logger.Error("Failed to generate listing slug", zap.Error(err))
		return nil, common.ErrInternalServer
	}

	l := &Listing{
		AgentID:      agentID,
		Title:        req.Title,
		Slug:         listingSlug,
		Description:  req.Description,
		Price:        req.Price,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		Area:         req.Area,
		AddressArea:  req.AddressArea,
		AddressFull:  req.AddressFull,
		MapFull:      req.MapFull,
		ContactName:  req.ContactName,
		ContactPhone: req.ContactPhone,
		Photos:       req.Photos,
		Amenities:    req.Amenities,
		Status:       StatusAvailable,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	s.indexListing(ctx, l)
	s.logger.Info("Listing created",
		zap.String("listingID", l.ID.String()),
		zap.String("agentID", agentID.String()))
	return l, nil
}

// GetByID retrieves a live listing.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Listing, error) {
	return s.repo.FindByID(ctx, id)
}

// GetBySlug retrieves a live listing by its slug.
func (s *Service) GetBySlug(ctx context.Context, listingSlug string) (*Listing, error) {
	return s.repo.FindBySlug(ctx, listingSlug)
}

// ListingExists reports whether a live listing with the ID exists.
func (s *Service) ListingExists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// List returns a page of listings. When a text query is present and the
// search index is configured, Elasticsearch ranks the page; any index failure
// falls back to the database.
func (s *Service) List(ctx context.Context, filters Filters, pq common.PaginationQuery) ([]Listing, int64, error) {
	if filters.Query != "" && s.esClient != nil {
		listings, total, err := s.listViaES(ctx, filters, pq)
		if err == nil {
			return listings, total, nil
		}
		s.logger.Warn("ES search failed, falling back to database search", zap.Error(err))
	}
	return s.repo.List(ctx, filters, pq)
}

func (s *Service) listViaES(ctx context.Context, filters Filters, pq common.PaginationQuery) ([]Listing, int64, error) {
	ids, total, err := s.searchIDsViaES(ctx, filters, pq.Offset(), pq.Limit())
	if err != nil {
		return nil, 0, err
	}
	listings, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	// Restore relevance order; the repository returns newest-first.
	byID := make(map[string]Listing, len(listings))
	for _, l := range listings {
		byID[l.ID.String()] = l
	}
	ordered := make([]Listing, 0, len(ids))
	for _, id := range ids {
		if l, ok := byID[id]; ok {
			ordered = append(ordered, l)
		}
	}
	return ordered, total, nil
}

// ListByIDs returns the live listings among the given IDs. Used for the
// viewer's saved and unlocked collections.
func (s *Service) ListByIDs(ctx context.Context, ids []string) ([]Listing, error) {
	return s.repo.FindByIDs(ctx, ids)
}

// ListByAgent returns a page of the agent's own listings.
func (s *Service) ListByAgent(ctx context.Context, agentID uuid.UUID, status string, pq common.PaginationQuery) ([]Listing, int64, error) {
	if status != "" && !IsValidStatus(status) {
		return nil, 0, common.ErrBadRequest.WithDetails("Status must be 'available' or 'taken'.")
	}
	return s.repo.List(ctx, Filters{AgentID: &agentID, Status: status}, pq)
}

// fetchOwned loads the listing and enforces that the actor owns it.
func (s *Service) fetchOwned(ctx context.Context, actorID, id uuid.UUID) (*Listing, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.AgentID != actorID {
		return nil, common.ErrForbidden.WithDetails("You do not own this listing.")
	}
	return l, nil
}

// Update applies a partial update. Owner-only; the slug is fixed at creation.
func (s *Service) Update(ctx context.Context, actorID, id uuid.UUID, req UpdateRequest) (*Listing, error) {
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
	if req.Price != nil {
		l.Price = *req.Price
	}
	if req.Bedrooms != nil {
		l.Bedrooms = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		l.Bathrooms = *req.Bathrooms
	}
	if req.Area != nil {
		l.Area = *req.Area
	}
	if req.AddressArea != nil {
		l.AddressArea = *req.AddressArea
	}
	if req.AddressFull != nil {
		l.AddressFull = *req.AddressFull
	}
	if req.MapFull != nil {
		l.MapFull = *req.MapFull
	}
	if req.ContactName != nil {
		l.ContactName = *req.ContactName
	}
	if req.ContactPhone != nil {
		l.ContactPhone = *req.ContactPhone
	}
	if req.Photos != nil {
		l.Photos = *req.Photos
	}
	if req.Amenities != nil {
		l.Amenities = *req.Amenities
	}

	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	s.indexListing(ctx, l)
	return l, nil
}

// UpdateStatus flips the listing between available and taken. Owner-only.
func (s *Service) UpdateStatus(ctx context.Context, actorID, id uuid.UUID, status string) (*Listing, error) {
	if !IsValidStatus(status) {
		return nil, common.ErrBadRequest.WithDetails("Status must be 'available' or 'taken'.")
	}
	l, err := s.fetchOwned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	l.Status = status
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	s.indexListing(ctx, l)
	return l, nil
}

// Delete soft-deletes the listing. The owner may always delete; admins may
// delete any listing for moderation.
func (s *Service) Delete(ctx context.Context, actorID uuid.UUID, actorRole string, id uuid.UUID) error {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if l.AgentID != actorID && actorRole != common.RoleAdmin {
		return common.ErrForbidden.WithDetails("You do not own this listing.")
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.removeFromIndex(ctx, id.String())
	s.logger.Info("Listing soft-deleted", zap.String("listingID", id.String()))
	return nil
}

// CountByAgent exposes per-agent listing counts for dashboards.
func (s *Service) CountByAgent(ctx context.Context, agentID uuid.UUID, status string) (int64, error) {
	return s.repo.CountByAgent(ctx, agentID, status)
}

// Count exposes platform listing counts for dashboards.
func (s *Service) Count(ctx context.Context, status string) (int64, error) {
	return s.repo.Count(ctx, status)
}
