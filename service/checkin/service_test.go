package checkin

import (
	"context"
	"testing"
	"tixgate/db"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) TicketByCode(ctx context.Context, code string) (*db.Ticket, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db.Ticket), args.Error(1)
}

func (m *MockStore) CheckinTicket(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) TicketStatus(ctx context.Context, id uuid.UUID) (db.TicketStatus, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(db.TicketStatus), args.Error(1)
}

func (m *MockStore) UserByID(ctx context.Context, id uuid.UUID) (*db.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db.User), args.Error(1)
}

func paidTicket(eventID uuid.UUID) *db.Ticket {
	return &db.Ticket{
		Model:      db.Model{ID: uuid.New()},
		TicketCode: "ABCDEF-A1B2C3D4E5",
		EventID:    eventID,
		Status:     db.TicketPaid,
	}
}

func TestConfirmCheckinAdmin(t *testing.T) {
	store := new(MockStore)
	service := NewCheckinService(store)
	eventID := uuid.New()
	ticket := paidTicket(eventID)

	store.On("TicketByCode", mock.Anything, ticket.TicketCode).Return(ticket, nil)
	store.On("CheckinTicket", mock.Anything, ticket.ID).Return(int64(1), nil)

	result, err := service.ConfirmCheckin(context.Background(),
		Requester{ID: uuid.New(), Role: db.RoleAdmin}, ticket.TicketCode)
	require.NoError(t, err)
	require.Equal(t, db.TicketCheckedIn, result.Status)

	// Admins never need a staff assignment lookup
	store.AssertNotCalled(t, "UserByID", mock.Anything, mock.Anything)
}

func TestConfirmCheckinAssignedStaff(t *testing.T) {
	store := new(MockStore)
	service := NewCheckinService(store)
	eventID := uuid.New()
	staffID := uuid.New()
	ticket := paidTicket(eventID)

	store.On("TicketByCode", mock.Anything, ticket.TicketCode).Return(ticket, nil)
	store.On("UserByID", mock.Anything, staffID).Return(&db.User{
		Model:        db.Model{ID: staffID},
		Role:         db.RoleStaff,
		StaffEventID: &eventID,
	}, nil)
	store.On("CheckinTicket", mock.Anything, ticket.ID).Return(int64(1), nil)

	result, err := service.ConfirmCheckin(context.Background(),
		Requester{ID: staffID, Role: db.RoleStaff}, ticket.TicketCode)
	require.NoError(t, err)
	require.Equal(t, db.TicketCheckedIn, result.Status)
}

func TestConfirmCheckinStaffWrongEvent(t *testing.T) {
	store := new(MockStore)
	service := NewCheckinService(store)
	staffID := uuid.New()
	otherEvent := uuid.New()
	ticket := paidTicket(uuid.New())

	store.On("TicketByCode", mock.Anything, ticket.TicketCode).Return(ticket, nil)
	store.On("UserByID", mock.Anything, staffID).Return(&db.User{
		Model:        db.Model{ID: staffID},
		Role:         db.RoleStaff,
		StaffEventID: &otherEvent,
	}, nil)

	_, err := service.ConfirmCheckin(context.Background(),
		Requester{ID: staffID, Role: db.RoleStaff}, ticket.TicketCode)
	require.ErrorIs(t, err, db.ErrForbidden)
	store.AssertNotCalled(t, "CheckinTicket", mock.Anything, mock.Anything)
}

func TestConfirmCheckinUnassignedStaff(t *testing.T) {
	store := new(MockStore)
	service := NewCheckinService(store)
	staffID := uuid.New()
	ticket := paidTicket(uuid.New())

	store.On("TicketByCode", mock.Anything, ticket.TicketCode).Return(ticket, nil)
	store.On("UserByID", mock.Anything, staffID).Return(&db.User{
		Model: db.Model{ID: staffID},
		Role:  db.RoleStaff,
	}, nil)

	_, err := service.ConfirmCheckin(context.Background(),
		Requester{ID: staffID, Role: db.RoleStaff}, ticket.TicketCode)
	require.ErrorIs(t, err, db.ErrForbidden)
}

func TestConfirmCheckinRegularUser(t *testing.T) {
	store := new(MockStore)
	service := NewCheckinService(store)
	ticket := paidTicket(uuid.New())

	store.On("TicketByCode", mock.Anything, ticket.TicketCode).Return(ticket, nil)

	_, err := service.ConfirmCheckin(context.Background(),
		Requester{ID: uuid.New(), Role: db.RoleUser}, ticket.TicketCode)
	require.ErrorIs(t, err, db.ErrForbidden)
	store.AssertNotCalled(t, "UserByID", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "CheckinTicket", mock.Anything, mock.Anything)
}

func TestConfirmCheckinUnknownCode(t *testing.T) {
	store := new(MockStore)
	service := NewCheckinService(store)

	store.On("TicketByCode", mock.Anything, "NOPE-0000000000").Return(nil, db.ErrTicketNotFound)

	_, err := service.ConfirmCheckin(context.Background(),
		Requester{ID: uuid.New(), Role: db.RoleAdmin}, "NOPE-0000000000")
	require.ErrorIs(t, err, db.ErrTicketNotFound)
}

func TestConfirmCheckinAlreadyCheckedIn(t *testing.T) {
	store := new(MockStore)
	service := NewCheckinService(store)
	ticket := paidTicket(uuid.New())

	store.On("TicketByCode", mock.Anything, ticket.TicketCode).Return(ticket, nil)
	store.On("CheckinTicket", mock.Anything, ticket.ID).Return(int64(0), nil)
	store.On("TicketStatus", mock.Anything, ticket.ID).Return(db.TicketCheckedIn, nil)

	_, err := service.ConfirmCheckin(context.Background(),
		Requester{ID: uuid.New(), Role: db.RoleAdmin}, ticket.TicketCode)
	require.ErrorIs(t, err, db.ErrAlreadyCheckedIn)
}

func TestConfirmCheckinNotPaid(t *testing.T) {
	store := new(MockStore)
	service := NewCheckinService(store)
	ticket := paidTicket(uuid.New())

	store.On("TicketByCode", mock.Anything, ticket.TicketCode).Return(ticket, nil)
	store.On("CheckinTicket", mock.Anything, ticket.ID).Return(int64(0), nil)
	store.On("TicketStatus", mock.Anything, ticket.ID).Return(db.TicketPendingPayment, nil)

	_, err := service.ConfirmCheckin(context.Background(),
		Requester{ID: uuid.New(), Role: db.RoleAdmin}, ticket.TicketCode)
	require.ErrorIs(t, err, db.ErrNotPaid)
}

func TestConfirmCheckinCancelled(t *testing.T) {
	store := new(MockStore)
	service := NewCheckinService(store)
	ticket := paidTicket(uuid.New())

	store.On("TicketByCode", mock.Anything, ticket.TicketCode).Return(ticket, nil)
	store.On("CheckinTicket", mock.Anything, ticket.ID).Return(int64(0), nil)
	store.On("TicketStatus", mock.Anything, ticket.ID).Return(db.TicketCancelled, nil)

	_, err := service.ConfirmCheckin(context.Background(),
		Requester{ID: uuid.New(), Role: db.RoleAdmin}, ticket.TicketCode)
	require.ErrorIs(t, err, db.ErrTicketCancelled)
}

func TestFetchTicket(t *testing.T) {
	store := new(MockStore)
	service := NewCheckinService(store)
	ticket := paidTicket(uuid.New())

	store.On("TicketByCode", mock.Anything, ticket.TicketCode).Return(ticket, nil)

	result, err := service.FetchTicket(context.Background(),
		Requester{ID: uuid.New(), Role: db.RoleAdmin}, ticket.TicketCode)
	require.NoError(t, err)
	require.Equal(t, ticket.TicketCode, result.TicketCode)

	// Viewing never mutates the ticket
	store.AssertNotCalled(t, "CheckinTicket", mock.Anything, mock.Anything)
}
