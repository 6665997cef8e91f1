// File: internal/notification/service_test.go
package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"unihomes_backend/internal/common"
	"unihomes_backend/internal/config"
	"unihomes_backend/internal/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRepository struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*Notification
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{rows: make(map[uuid.UUID]*Notification)}
}

func (r *fakeRepository) Create(_ context.Context, n *Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	clone := *n
	r.rows[n.ID] = &clone
	return nil
}

func (r *fakeRepository) ListByUser(_ context.Context, userID uuid.UUID, _ common.PaginationQuery) ([]Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Notification
	for _, n := range r.rows {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepository) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.rows {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeRepository) MarkRead(_ context.Context, userID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.rows[id]
	if !ok || n.UserID != userID {
		return common.ErrNotFound.WithDetails("Notification not found.")
	}
	n.IsRead = true
	return nil
}

func (r *fakeRepository) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var updated int64
	for _, n := range r.rows {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			updated++
		}
	}
	return updated, nil
}

func (r *fakeRepository) all() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Notification
	for _, n := range r.rows {
		out = append(out, *n)
	}
	return out
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

func (m *fakeMailer) all() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMail(nil), m.sent...)
}

func newTestService(t *testing.T) (*Service, *fakeRepository, *fakeMailer) {
	t.Helper()
	repo := newFakeRepository()
	mailer := &fakeMailer{}
	cfg := &config.Config{FrontendBaseURL: "https://app.unihomes.test"}
	return NewService(repo, mailer, cfg, zap.NewNop()), repo, mailer
}

func TestHandleEvent_UserRegistered(t *testing.T) {
	svc, repo, mailer := newTestService(t)

	svc.HandleEvent(context.Background(), shared.NotificationEvent{
		Type:           shared.EventUserRegistered,
		RecipientID:    uuid.New(),
		RecipientEmail: "new@unihomes.test",
		RecipientName:  "Ada",
		Data:           map[string]string{"verification_token": "tok/with special+chars"},
	})

	sent := mailer.all()
	require.Len(t, sent, 1)
	assert.Equal(t, "new@unihomes.test", sent[0].To)
	assert.Contains(t, sent[0].Subject, "Verify")
	assert.Contains(t, sent[0].Body, "https://app.unihomes.test/verify-email?token=tok%2Fwith+special%2Bchars")

	// Token-bearing events never leave an in-app row.
	assert.Empty(t, repo.all())
}

func TestHandleEvent_PaymentApproved(t *testing.T) {
	svc, repo, mailer := newTestService(t)
	payerID := uuid.New()

	svc.HandleEvent(context.Background(), shared.NotificationEvent{
		Type:           shared.EventPaymentApproved,
		RecipientID:    payerID,
		RecipientEmail: "payer@unihomes.test",
		RecipientName:  "Bisi",
		Data:           map[string]string{"listing_title": "Lekki Self-Contain", "reference": "TXN-001"},
	})

	rows := repo.all()
	require.Len(t, rows, 1)
	assert.Equal(t, payerID, rows[0].UserID)
	assert.Equal(t, shared.EventPaymentApproved, rows[0].Type)
	assert.False(t, rows[0].IsRead)
	assert.Contains(t, rows[0].Message, "Lekki Self-Contain")

	sent := mailer.all()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Body, "Lekki Self-Contain")
}

func TestHandleEvent_PaymentRejectedCarriesReason(t *testing.T) {
	svc, repo, mailer := newTestService(t)

	svc.HandleEvent(context.Background(), shared.NotificationEvent{
		Type:           shared.EventPaymentRejected,
		RecipientID:    uuid.New(),
		RecipientEmail: "payer@unihomes.test",
		RecipientName:  "Bisi",
		Data: map[string]string{
			"reference":        "TXN-002",
			"rejection_reason": "Reference does not match any bank transfer.",
		},
	})

	rows := repo.all()
	require.Len(t, rows, 1)
	assert.Contains(t, rows[0].Message, "Reference does not match any bank transfer.")

	sent := mailer.all()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Body, "Reference does not match any bank transfer.")
}

func TestHandleEvent_UnknownTypeIsDropped(t *testing.T) {
	svc, repo, mailer := newTestService(t)

	svc.HandleEvent(context.Background(), shared.NotificationEvent{
		Type:           "listing.viewed",
		RecipientID:    uuid.New(),
		RecipientEmail: "someone@unihomes.test",
	})

	assert.Empty(t, repo.all())
	assert.Empty(t, mailer.all())
}

func TestHandleEvent_NoEmailAddressSkipsSend(t *testing.T) {
	svc, repo, mailer := newTestService(t)

	svc.HandleEvent(context.Background(), shared.NotificationEvent{
		Type:          shared.EventAgentVerified,
		RecipientID:   uuid.New(),
		RecipientName: "Chinedu",
	})

	assert.Len(t, repo.all(), 1)
	assert.Empty(t, mailer.all())
}

func TestChannelDispatcher_DeliversQueuedEvents(t *testing.T) {
	svc, repo, _ := newTestService(t)
	dispatcher := NewChannelDispatcher(svc, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	dispatcher.Start(ctx)

	for i := 0; i < 3; i++ {
		dispatcher.Dispatch(context.Background(), shared.NotificationEvent{
			Type:        shared.EventAgentVerified,
			RecipientID: uuid.New(),
		})
	}

	cancel()
	require.NoError(t, dispatcher.Close())
	assert.Len(t, repo.all(), 3)
}

func TestListMine_ReportsUnreadCount(t *testing.T) {
	svc, repo, _ := newTestService(t)
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(context.Background(), &Notification{
			UserID: userID, Type: shared.EventPaymentApproved, Title: "Payment approved",
		}))
	}
	rows := repo.all()
	require.NoError(t, svc.MarkRead(context.Background(), userID, rows[0].ID))

	notifications, total, unread, err := svc.ListMine(context.Background(), userID, common.PaginationQuery{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, notifications, 3)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(2), unread)
}

func TestMarkRead_OtherUsersNotificationIsNotFound(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ownerID := uuid.New()

	n := &Notification{UserID: ownerID, Type: shared.EventAgentVerified, Title: "Verified"}
	require.NoError(t, repo.Create(context.Background(), n))

	err := svc.MarkRead(context.Background(), uuid.New(), n.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, svc.MarkRead(context.Background(), ownerID, n.ID))
}

func TestMarkAllRead(t *testing.T) {
	svc, repo, _ := newTestService(t)
	userID := uuid.New()

	for i := 0; i < 2; i++ {
		require.NoError(t, repo.Create(context.Background(), &Notification{
			UserID: userID, Type: shared.EventPaymentSubmitted, Title: "Payment proof received",
		}))
	}

	updated, err := svc.MarkAllRead(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	unread, err := repo.CountUnread(context.Background(), userID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}
