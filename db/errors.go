package db

import "errors"

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrShowtimeNotFound    = errors.New("showtime not found")
	ErrTicketClassNotFound = errors.New("ticket class not found")
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrFormNotFound        = errors.New("form not found")
)

var (
	ErrDuplicateOrder    = errors.New("order reference already in use")
	ErrCodeExhausted     = errors.New("ticket code generation exhausted retry attempts")
	ErrMissingShortkey   = errors.New("event has no shortkey configured")
	ErrEmailRegistered   = errors.New("email already registered")
	ErrShortkeyTaken     = errors.New("shortkey already in use")
	ErrStaffAssigned     = errors.New("user already staffs another event")
	ErrClassInUse        = errors.New("ticket class has issued tickets")
	ErrEventHasTickets   = errors.New("event has issued tickets")
	ErrShortkeyImmutable = errors.New("shortkey cannot change once tickets reference it")
)

var (
	ErrInactiveTicketClass = errors.New("ticket class is not active")
	ErrClassMismatch       = errors.New("ticket class does not belong to the stated showtime and event")
	ErrNonPositiveAmount   = errors.New("total amount must be strictly positive")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrQuantityExceeded    = errors.New("quantity exceeds the remaining capacity of the ticket class")
	ErrInvalidTimeRange    = errors.New("end time must be after start time")
)

var (
	ErrForbidden        = errors.New("requester lacks permission for this operation")
	ErrAlreadyCheckedIn = errors.New("ticket already checked in")
	ErrNotPaid          = errors.New("ticket has not been paid")
	ErrTicketCancelled  = errors.New("ticket is cancelled")
)

var (
	ErrGateway = errors.New("payment gateway request failed")
)
