package checkin

import (
	"context"
	"tixgate/db"
	"tixgate/util"

	"github.com/google/uuid"
)

// Store is the slice of the storage layer the check-in flow touches
type Store interface {
	TicketByCode(ctx context.Context, code string) (*db.Ticket, error)
	CheckinTicket(ctx context.Context, id uuid.UUID) (int64, error)
	TicketStatus(ctx context.Context, id uuid.UUID) (db.TicketStatus, error)
	UserByID(ctx context.Context, id uuid.UUID) (*db.User, error)
}

// The resolved identity performing the check-in, as extracted from the
// access token. Staff event association is read from storage, not from the
// token, so a reassignment takes effect immediately.
type Requester struct {
	ID   uuid.UUID
	Role db.Role
}

// CheckinService drives the forward-only ticket state machine at the gate:
// PAID -> CHECKED_IN, no reversal
type CheckinService struct {
	store Store
}

func NewCheckinService(store Store) *CheckinService {
	return &CheckinService{store: store}
}

// Explicit authorization check: admins may check in any ticket, staff only
// tickets of the event they are assigned to
func (service *CheckinService) authorize(ctx context.Context, requester Requester, eventID uuid.UUID) error {
	switch requester.Role {
	case db.RoleAdmin:
		return nil
	case db.RoleStaff:
		user, err := service.store.UserByID(ctx, requester.ID)
		if err != nil {
			return err
		}
		if user.StaffEventID == nil || *user.StaffEventID != eventID {
			return db.ErrForbidden
		}
		return nil
	default:
		return db.ErrForbidden
	}
}

// FetchTicket loads a ticket for the check-in screen. Unknown codes are
// not-found; a requester without authority over the ticket's event gets a
// permission error and the ticket stays untouched.
func (service *CheckinService) FetchTicket(ctx context.Context, requester Requester, ticketCode string) (*db.Ticket, error) {
	ticket, err := service.store.TicketByCode(ctx, ticketCode)
	if err != nil {
		return nil, err
	}

	if err := service.authorize(ctx, requester, ticket.EventID); err != nil {
		return nil, err
	}

	return ticket, nil
}

// ConfirmCheckin transitions a PAID ticket to CHECKED_IN. The status check
// and the update are one conditional write, so two staff devices confirming
// the same ticket cannot both succeed. A second confirm is rejected with
// ErrAlreadyCheckedIn, deliberately not idempotent: the gate needs to know
// the ticket was used before.
func (service *CheckinService) ConfirmCheckin(ctx context.Context, requester Requester, ticketCode string) (*db.Ticket, error) {
	ticket, err := service.store.TicketByCode(ctx, ticketCode)
	if err != nil {
		return nil, err
	}

	if err := service.authorize(ctx, requester, ticket.EventID); err != nil {
		return nil, err
	}

	updated, err := service.store.CheckinTicket(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}

	if updated == 0 {
		// Lost the compare-and-set: report why, based on the current state
		status, err := service.store.TicketStatus(ctx, ticket.ID)
		if err != nil {
			return nil, err
		}
		switch status {
		case db.TicketCheckedIn:
			return nil, db.ErrAlreadyCheckedIn
		case db.TicketCancelled:
			return nil, db.ErrTicketCancelled
		default:
			return nil, db.ErrNotPaid
		}
	}

	util.LOGGER.Info("ticket checked in",
		"ticket_code", ticket.TicketCode, "event_id", ticket.EventID, "staff_id", requester.ID)

	ticket.Status = db.TicketCheckedIn
	return ticket, nil
}
