// File: internal/admin/service_test.go
package admin

import (
	"context"
	"testing"
	"time"

	"unihomes_backend/internal/common"
	"unihomes_backend/internal/shared"
	"unihomes_backend/internal/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeDirectory struct {
	users   map[uuid.UUID]*shared.User
	deleted map[uuid.UUID]bool
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		users:   make(map[uuid.UUID]*shared.User),
		deleted: make(map[uuid.UUID]bool),
	}
}

func (d *fakeDirectory) add(role string, verified bool) *shared.User {
	u := &shared.User{
		ID:         uuid.New(),
		Email:      uuid.NewString() + "@unihomes.test",
		Name:       "Someone",
		Role:       role,
		IsVerified: verified,
	}
	d.users[u.ID] = u
	return u
}

func (d *fakeDirectory) GetUserByID(_ context.Context, id uuid.UUID) (*shared.User, error) {
	u, ok := d.users[id]
	if !ok || d.deleted[id] {
		return nil, common.ErrNotFound.WithDetails("User not found.")
	}
	return u, nil
}

func (d *fakeDirectory) GetUserByEmail(_ context.Context, email string) (*shared.User, error) {
	for _, u := range d.users {
		if u.Email == email && !d.deleted[u.ID] {
			return u, nil
		}
	}
	return nil, common.ErrNotFound.WithDetails("User not found.")
}

func (d *fakeDirectory) ListUsers(_ context.Context, filters user.ListFilters, _ common.PaginationQuery) ([]shared.User, int64, error) {
	var out []shared.User
	for _, u := range d.users {
		if d.deleted[u.ID] {
			continue
		}
		if filters.Role != "" && u.Role != filters.Role {
			continue
		}
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (d *fakeDirectory) UpdateRoleAndVerification(ctx context.Context, targetID uuid.UUID, role *string, isVerified *bool) (*shared.User, bool, error) {
	u, err := d.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, false, err
	}
	if role != nil {
		u.Role = *role
	}
	newlyVerified := false
	if isVerified != nil {
		newlyVerified = *isVerified && !u.IsVerified
		u.IsVerified = *isVerified
	}
	return u, newlyVerified, nil
}

func (d *fakeDirectory) SoftDeleteUser(_ context.Context, targetID uuid.UUID) error {
	if _, ok := d.users[targetID]; !ok || d.deleted[targetID] {
		return common.ErrNotFound.WithDetails("User not found.")
	}
	d.deleted[targetID] = true
	return nil
}

func (d *fakeDirectory) CountUsersByRole(_ context.Context, role string) (int64, error) {
	var count int64
	for _, u := range d.users {
		if d.deleted[u.ID] {
			continue
		}
		if role == "" || u.Role == role {
			count++
		}
	}
	return count, nil
}

func (d *fakeDirectory) CountUsersCreatedSince(_ context.Context, _ time.Time) (int64, error) {
	return int64(len(d.users) - len(d.deleted)), nil
}

type staticCounter struct {
	byStatus map[string]int64
}

func (c *staticCounter) Count(_ context.Context, status string) (int64, error) {
	return c.byStatus[status], nil
}

type recordingDispatcher struct {
	events []shared.NotificationEvent
}

func (d *recordingDispatcher) Dispatch(_ context.Context, event shared.NotificationEvent) {
	d.events = append(d.events, event)
}

func newTestService(t *testing.T) (*Service, *fakeDirectory, *recordingDispatcher) {
	t.Helper()
	dir := newFakeDirectory()
	dispatcher := &recordingDispatcher{}
	svc := NewService(
		dir,
		&staticCounter{byStatus: map[string]int64{"": 7, "available": 5, "taken": 2}},
		&staticCounter{byStatus: map[string]int64{"pending": 3, "approved": 10, "rejected": 1}},
		dispatcher,
		zap.NewNop(),
	)
	return svc, dir, dispatcher
}

func TestGetStats(t *testing.T) {
	svc, dir, _ := newTestService(t)
	dir.add(common.RoleStudent, false)
	dir.add(common.RoleStudent, false)
	dir.add(common.RoleAgent, true)
	dir.add(common.RoleAdmin, true)

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), stats.TotalUsers)
	assert.Equal(t, int64(2), stats.Students)
	assert.Equal(t, int64(1), stats.Agents)
	assert.Equal(t, int64(7), stats.TotalListings)
	assert.Equal(t, int64(5), stats.AvailableListings)
	assert.Equal(t, int64(3), stats.PendingPayments)
	assert.Equal(t, int64(10), stats.ApprovedPayments)
}

func TestUpdateUser_VerifyingAgentDispatchesEvent(t *testing.T) {
	svc, dir, dispatcher := newTestService(t)
	target := dir.add(common.RoleAgent, false)

	verified := true
	updated, err := svc.UpdateUser(context.Background(), target.ID, nil, &verified)
	require.NoError(t, err)
	assert.True(t, updated.IsVerified)

	require.Len(t, dispatcher.events, 1)
	assert.Equal(t, shared.EventAgentVerified, dispatcher.events[0].Type)
	assert.Equal(t, target.ID, dispatcher.events[0].RecipientID)
}

func TestUpdateUser_ReVerifyingIsSilent(t *testing.T) {
	svc, dir, dispatcher := newTestService(t)
	target := dir.add(common.RoleAgent, true)

	verified := true
	_, err := svc.UpdateUser(context.Background(), target.ID, nil, &verified)
	require.NoError(t, err)
	assert.Empty(t, dispatcher.events)
}

func TestUpdateUser_VerifyingStudentIsSilent(t *testing.T) {
	svc, dir, dispatcher := newTestService(t)
	target := dir.add(common.RoleStudent, false)

	verified := true
	_, err := svc.UpdateUser(context.Background(), target.ID, nil, &verified)
	require.NoError(t, err)
	assert.Empty(t, dispatcher.events)
}

func TestDeleteUser(t *testing.T) {
	svc, dir, _ := newTestService(t)
	actor := dir.add(common.RoleAdmin, true)
	target := dir.add(common.RoleStudent, false)

	require.NoError(t, svc.DeleteUser(context.Background(), actor.ID, target.ID))
	assert.True(t, dir.deleted[target.ID])
}

func TestDeleteUser_SelfDeletionForbidden(t *testing.T) {
	svc, dir, _ := newTestService(t)
	actor := dir.add(common.RoleAdmin, true)

	err := svc.DeleteUser(context.Background(), actor.ID, actor.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)
	assert.False(t, dir.deleted[actor.ID])
}

func TestDeleteUser_OtherAdminForbidden(t *testing.T) {
	svc, dir, _ := newTestService(t)
	actor := dir.add(common.RoleAdmin, true)
	target := dir.add(common.RoleAdmin, true)

	err := svc.DeleteUser(context.Background(), actor.ID, target.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)
	assert.False(t, dir.deleted[target.ID])
}
