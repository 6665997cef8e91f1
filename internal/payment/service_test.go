// File: internal/payment/service_test.go
package payment

import (
	"context"
	"sync"
	"testing"
	"time"

	"unihomes_backend/internal/common"
	"unihomes_backend/internal/listing"
	"unihomes_backend/internal/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRepository struct {
	mu     sync.Mutex
	proofs map[uuid.UUID]*PaymentProof
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{proofs: make(map[uuid.UUID]*PaymentProof)}
}

func (f *fakeRepository) Create(ctx context.Context, p *PaymentProof) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	cp := *p
	f.proofs[p.ID] = &cp
	return nil
}

func (f *fakeRepository) FindByID(ctx context.Context, id uuid.UUID) (*PaymentProof, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.proofs[id]; ok && !p.IsDeleted {
		cp := *p
		return &cp, nil
	}
	return nil, common.ErrNotFound.WithDetails("Payment proof not found.")
}

func (f *fakeRepository) HasPendingForListing(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.proofs {
		if p.UserID == userID && p.ListingID == listingID && p.Status == StatusPending && !p.IsDeleted {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepository) Update(ctx context.Context, p *PaymentProof) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.proofs[p.ID]; !ok {
		return common.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	cp := *p
	f.proofs[p.ID] = &cp
	return nil
}

func (f *fakeRepository) ListByUser(ctx context.Context, userID uuid.UUID, pq common.PaginationQuery) ([]PaymentProof, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []PaymentProof
	for _, p := range f.proofs {
		if p.UserID == userID && !p.IsDeleted {
			out = append(out, *p)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepository) List(ctx context.Context, status string, pq common.PaginationQuery) ([]PaymentProof, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []PaymentProof
	for _, p := range f.proofs {
		if p.IsDeleted {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRepository) Count(ctx context.Context, status string) (int64, error) {
	_, n, err := f.List(ctx, status, common.PaginationQuery{})
	return n, err
}

func (f *fakeRepository) CountApprovedForAgent(ctx context.Context, agentID uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeRepository) SumApprovedForAgent(ctx context.Context, agentID uuid.UUID) (float64, error) {
	return 0, nil
}

func (f *fakeRepository) MonthlyEarningsForAgent(ctx context.Context, agentID uuid.UUID, since time.Time) ([]MonthlyEarning, error) {
	return []MonthlyEarning{}, nil
}

type fakeListingProvider struct {
	listings map[uuid.UUID]*listing.Listing
}

func (f *fakeListingProvider) GetByID(ctx context.Context, id uuid.UUID) (*listing.Listing, error) {
	if l, ok := f.listings[id]; ok {
		return l, nil
	}
	return nil, common.ErrNotFound.WithDetails("Listing not found.")
}

type fakeUnlocker struct {
	mu     sync.Mutex
	grants map[uuid.UUID][]uuid.UUID
	err    error
}

func (f *fakeUnlocker) GrantListingUnlock(ctx context.Context, userID, listingID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.grants == nil {
		f.grants = make(map[uuid.UUID][]uuid.UUID)
	}
	f.grants[userID] = append(f.grants[userID], listingID)
	return nil
}

type fakeUserService struct {
	users map[uuid.UUID]*shared.User
}

func (f *fakeUserService) GetUserByID(ctx context.Context, id uuid.UUID) (*shared.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, common.ErrNotFound.WithDetails("User not found.")
}

func (f *fakeUserService) GetUserByEmail(ctx context.Context, email string) (*shared.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrNotFound.WithDetails("User not found.")
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []shared.NotificationEvent
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, event shared.NotificationEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
}

func (d *recordingDispatcher) byType(eventType string) []shared.NotificationEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []shared.NotificationEvent
	for _, e := range d.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type paymentFixture struct {
	svc        *Service
	repo       *fakeRepository
	unlocker   *fakeUnlocker
	dispatcher *recordingDispatcher
	payerID    uuid.UUID
	listingID  uuid.UUID
}

func newFixture(t *testing.T) *paymentFixture {
	t.Helper()
	payerID := uuid.New()
	listingID := uuid.New()

	l := &listing.Listing{
		AgentID: uuid.New(),
		Title:   "Room near campus",
	}
	l.ID = listingID

	payer := &shared.User{
		ID:    payerID,
		Email: "payer@example.com",
		Name:  "Payer",
		Role:  common.RoleStudent,
	}

	repo := newFakeRepository()
	unlocker := &fakeUnlocker{}
	dispatcher := &recordingDispatcher{}
	svc := NewService(
		repo,
		&fakeListingProvider{listings: map[uuid.UUID]*listing.Listing{listingID: l}},
		unlocker,
		&fakeUserService{users: map[uuid.UUID]*shared.User{payerID: payer}},
		dispatcher,
		zap.NewNop(),
	)
	return &paymentFixture{
		svc:        svc,
		repo:       repo,
		unlocker:   unlocker,
		dispatcher: dispatcher,
		payerID:    payerID,
		listingID:  listingID,
	}
}

func (fx *paymentFixture) submit(t *testing.T) *PaymentProof {
	t.Helper()
	proof, err := fx.svc.Submit(context.Background(), fx.payerID, SubmitRequest{
		ListingID: fx.listingID.String(),
		Reference: "TRF-20260825-001",
		ImageURL:  "https://cdn.example.com/proofs/1.png",
		Amount:    2000,
	})
	require.NoError(t, err)
	return proof
}

func TestSubmit(t *testing.T) {
	fx := newFixture(t)

	proof := fx.submit(t)
	assert.Equal(t, StatusPending, proof.Status)
	assert.Nil(t, proof.ReviewedBy)
	assert.Nil(t, proof.ReviewedAt)

	events := fx.dispatcher.byType(shared.EventPaymentSubmitted)
	require.Len(t, events, 1)
	assert.Equal(t, "Room near campus", events[0].Data["listing_title"])
}

func TestSubmit_DuplicatePendingIsConflict(t *testing.T) {
	fx := newFixture(t)
	fx.submit(t)

	_, err := fx.svc.Submit(context.Background(), fx.payerID, SubmitRequest{
		ListingID: fx.listingID.String(),
		Reference: "TRF-20260825-002",
		ImageURL:  "https://cdn.example.com/proofs/2.png",
		Amount:    2000,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestSubmit_UnknownListing(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.Submit(context.Background(), fx.payerID, SubmitRequest{
		ListingID: uuid.NewString(),
		Reference: "TRF-20260825-003",
		ImageURL:  "https://cdn.example.com/proofs/3.png",
		Amount:    2000,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestReview_Approve(t *testing.T) {
	fx := newFixture(t)
	proof := fx.submit(t)
	adminID := uuid.New()

	reviewed, err := fx.svc.Review(context.Background(), adminID, proof.ID, ReviewRequest{Action: ActionApprove})
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, adminID, *reviewed.ReviewedBy)
	assert.NotNil(t, reviewed.ReviewedAt)

	// Approval granted the unlock.
	require.Len(t, fx.unlocker.grants[fx.payerID], 1)
	assert.Equal(t, fx.listingID, fx.unlocker.grants[fx.payerID][0])

	events := fx.dispatcher.byType(shared.EventPaymentApproved)
	require.Len(t, events, 1)
	assert.Equal(t, fx.payerID, events[0].RecipientID)
}

func TestReview_Reject(t *testing.T) {
	fx := newFixture(t)
	proof := fx.submit(t)
	adminID := uuid.New()

	reviewed, err := fx.svc.Review(context.Background(), adminID, proof.ID, ReviewRequest{
		Action:          ActionReject,
		RejectionReason: "The transfer reference does not match any bank record.",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, reviewed.Status)
	require.NotNil(t, reviewed.RejectionReason)

	// No unlock on rejection.
	assert.Empty(t, fx.unlocker.grants)

	events := fx.dispatcher.byType(shared.EventPaymentRejected)
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Data["rejection_reason"], "does not match")
}

func TestReview_RejectRequiresReason(t *testing.T) {
	fx := newFixture(t)
	proof := fx.submit(t)

	_, err := fx.svc.Review(context.Background(), uuid.New(), proof.ID, ReviewRequest{
		Action:          ActionReject,
		RejectionReason: "too short",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrBadRequest)

	// The proof is still pending after the failed review.
	stored, err := fx.repo.FindByID(context.Background(), proof.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)
}

func TestReview_ResolvedIsTerminal(t *testing.T) {
	fx := newFixture(t)
	proof := fx.submit(t)
	adminID := uuid.New()

	_, err := fx.svc.Review(context.Background(), adminID, proof.ID, ReviewRequest{Action: ActionApprove})
	require.NoError(t, err)

	// Approving again, or flipping to rejected, is a conflict.
	_, err = fx.svc.Review(context.Background(), adminID, proof.ID, ReviewRequest{Action: ActionApprove})
	assert.ErrorIs(t, err, common.ErrConflict)
	_, err = fx.svc.Review(context.Background(), adminID, proof.ID, ReviewRequest{
		Action:          ActionReject,
		RejectionReason: "Changed my mind about this payment proof.",
	})
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestGetByID_Ownership(t *testing.T) {
	fx := newFixture(t)
	proof := fx.submit(t)

	// The payer sees their own proof.
	_, err := fx.svc.GetByID(context.Background(), fx.payerID, common.RoleStudent, proof.ID)
	require.NoError(t, err)

	// A stranger does not.
	_, err = fx.svc.GetByID(context.Background(), uuid.New(), common.RoleStudent, proof.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)

	// An admin does.
	_, err = fx.svc.GetByID(context.Background(), uuid.New(), common.RoleAdmin, proof.ID)
	require.NoError(t, err)
}
