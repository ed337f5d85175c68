package db

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Check if a ticket code has already been issued
func (queries *Queries) TicketCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := queries.DB.WithContext(ctx).
		Model(&Ticket{}).
		Where("ticket_code = ?", code).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create every ticket of one purchase in a single transaction: either all
// rows exist afterwards or none do. The order row is inserted first; its
// unique order_code index rejects a reused order code even when two
// purchases race, so the duplicate check needs no extra locking.
func (queries *Queries) CreateTicketBatch(ctx context.Context, tickets []Ticket) error {
	if len(tickets) == 0 {
		return nil
	}

	return queries.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order := Order{OrderCode: tickets[0].OrderCode}
		if err := tx.Create(&order).Error; err != nil {
			if strings.Contains(err.Error(), "duplicate key") {
				return ErrDuplicateOrder
			}
			return err
		}

		for i := range tickets {
			if err := tx.Create(&tickets[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Count non-cancelled tickets of a ticket class, for capacity checks
func (queries *Queries) CountIssuedByClass(ctx context.Context, classID uuid.UUID) (int64, error) {
	var count int64
	err := queries.DB.WithContext(ctx).
		Model(&Ticket{}).
		Where("ticket_class_id = ? AND status <> ?", classID, TicketCancelled).
		Count(&count).Error
	return count, err
}

// Fetch all tickets sharing an order reference, newest purchase first
func (queries *Queries) TicketsByOrderCode(ctx context.Context, orderCode int64) ([]Ticket, error) {
	var tickets []Ticket
	err := queries.DB.WithContext(ctx).
		Preload("TicketClass").
		Preload("Event").
		Preload("Owner").
		Where("order_code = ?", orderCode).
		Order("ticket_code").
		Find(&tickets).Error
	return tickets, err
}

// Transition every PENDING_PAYMENT ticket of the order to PAID in one
// conditional update. Tickets in any other state are left untouched, which
// makes the confirmation safe to run twice and safe to run concurrently.
// Returns the number of tickets actually transitioned.
func (queries *Queries) MarkOrderPaid(ctx context.Context, orderCode int64) (int64, error) {
	result := queries.DB.WithContext(ctx).
		Model(&Ticket{}).
		Where("order_code = ? AND status = ?", orderCode, TicketPendingPayment).
		Update("status", TicketPaid)
	return result.RowsAffected, result.Error
}

// Compensating action when payment-link creation fails: roll the whole
// pending batch to CANCELLED so no ticket dangles in PENDING_PAYMENT
func (queries *Queries) CancelPendingOrder(ctx context.Context, orderCode int64) (int64, error) {
	result := queries.DB.WithContext(ctx).
		Model(&Ticket{}).
		Where("order_code = ? AND status = ?", orderCode, TicketPendingPayment).
		Update("status", TicketCancelled)
	return result.RowsAffected, result.Error
}

// Fetch a single ticket by its code, with the event and class resolved
func (queries *Queries) TicketByCode(ctx context.Context, code string) (*Ticket, error) {
	var ticket Ticket
	err := queries.DB.WithContext(ctx).
		Preload("Event").
		Preload("TicketClass").
		Preload("TicketClass.Showtime").
		Where("ticket_code = ?", code).
		First(&ticket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// Compare-and-set check-in: set CHECKED_IN only if the ticket is currently
// PAID. Two staff devices confirming the same ticket cannot both win; the
// loser observes zero rows affected.
func (queries *Queries) CheckinTicket(ctx context.Context, id uuid.UUID) (int64, error) {
	result := queries.DB.WithContext(ctx).
		Model(&Ticket{}).
		Where("id = ? AND status = ?", id, TicketPaid).
		Update("status", TicketCheckedIn)
	return result.RowsAffected, result.Error
}

// Current status of a ticket, used to report why a check-in was rejected
func (queries *Queries) TicketStatus(ctx context.Context, id uuid.UUID) (TicketStatus, error) {
	var ticket Ticket
	err := queries.DB.WithContext(ctx).
		Select("status").
		Where("id = ?", id).
		First(&ticket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrTicketNotFound
	}
	if err != nil {
		return "", err
	}
	return ticket.Status, nil
}
