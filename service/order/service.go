package order

import (
	"context"
	"fmt"
	"time"
	"tixgate/db"
	"tixgate/service/payment"
	"tixgate/service/worker"
	"tixgate/util"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// TicketStore is the slice of the storage layer the order flow mutates
type TicketStore interface {
	TicketCodeExists(ctx context.Context, code string) (bool, error)
	CreateTicketBatch(ctx context.Context, tickets []db.Ticket) error
	CountIssuedByClass(ctx context.Context, classID uuid.UUID) (int64, error)
	TicketsByOrderCode(ctx context.Context, orderCode int64) ([]db.Ticket, error)
	MarkOrderPaid(ctx context.Context, orderCode int64) (int64, error)
	CancelPendingOrder(ctx context.Context, orderCode int64) (int64, error)
}

// CatalogStore is the read-only view of the catalog the order flow consumes.
// Cross-id consistency is checked here, not trusted from the caller.
type CatalogStore interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*db.Event, error)
	GetShowtime(ctx context.Context, id uuid.UUID) (*db.Showtime, error)
	GetTicketClass(ctx context.Context, id uuid.UUID) (*db.TicketClass, error)
}

// Gateway is the hosted-checkout payment provider. Injected once at process
// start; the order service never constructs it.
type Gateway interface {
	CreatePaymentLink(ctx context.Context, req payment.CheckoutRequest) (*payment.CheckoutLink, error)
}

// OrderService turns a purchase request into pending tickets, binds them to
// a gateway checkout, and finalizes their state on payment confirmation
type OrderService struct {
	tickets     TicketStore
	catalog     CatalogStore
	gateway     Gateway
	distributor worker.TaskDistributor
	returnURL   string
	cancelURL   string
}

func NewOrderService(
	tickets TicketStore,
	catalog CatalogStore,
	gateway Gateway,
	distributor worker.TaskDistributor,
	returnURL, cancelURL string,
) *OrderService {
	return &OrderService{
		tickets:     tickets,
		catalog:     catalog,
		gateway:     gateway,
		distributor: distributor,
		returnURL:   returnURL,
		cancelURL:   cancelURL,
	}
}

// A validated purchase: who buys how many tickets of which class
type PurchaseRequest struct {
	EventID       uuid.UUID
	ShowtimeID    uuid.UUID
	TicketClassID uuid.UUID
	Quantity      int
	OwnerID       *uuid.UUID
	GuestName     string
	GuestEmail    string
	FormData      db.JSONMap
}

// What the frontend needs to send the buyer to the gateway
type PaymentSession struct {
	CheckoutURL   string `json:"checkout_url"`
	PaymentLinkID string `json:"payment_id"`
	OrderCode     int64  `json:"order_code"`
}

// Resolve and cross-validate the event, showtime and ticket class of a
// purchase. The class must be active, belong to the stated showtime, and the
// showtime to the stated event; independently existing ids are not enough.
func (service *OrderService) resolvePurchase(ctx context.Context, req PurchaseRequest) (*db.Event, *db.TicketClass, error) {
	if req.Quantity < 1 {
		return nil, nil, db.ErrInvalidQuantity
	}

	event, err := service.catalog.GetEvent(ctx, req.EventID)
	if err != nil {
		return nil, nil, err
	}

	showtime, err := service.catalog.GetShowtime(ctx, req.ShowtimeID)
	if err != nil {
		return nil, nil, err
	}

	class, err := service.catalog.GetTicketClass(ctx, req.TicketClassID)
	if err != nil {
		return nil, nil, err
	}

	if showtime.EventID != event.ID || class.ShowtimeID != showtime.ID || class.EventID != event.ID {
		return nil, nil, db.ErrClassMismatch
	}
	if !class.Active {
		return nil, nil, db.ErrInactiveTicketClass
	}
	if class.Price*int64(req.Quantity) <= 0 {
		return nil, nil, db.ErrNonPositiveAmount
	}

	if class.MaxQuantity != nil {
		issued, err := service.tickets.CountIssuedByClass(ctx, class.ID)
		if err != nil {
			return nil, nil, err
		}
		if issued+int64(req.Quantity) > int64(*class.MaxQuantity) {
			return nil, nil, db.ErrQuantityExceeded
		}
	}

	return event, class, nil
}

// Create the whole ticket batch of one purchase: quantity rows, each with a
// freshly generated code, all in the given status, all tagged with the order
// code. The batch is atomic; a duplicate order code is a conflict.
func (service *OrderService) issueTickets(
	ctx context.Context,
	req PurchaseRequest,
	event *db.Event,
	class *db.TicketClass,
	orderCode int64,
	status db.TicketStatus,
) ([]db.Ticket, error) {
	tickets := make([]db.Ticket, 0, req.Quantity)
	for i := 0; i < req.Quantity; i++ {
		code, err := service.generateTicketCode(ctx, event.Shortkey)
		if err != nil {
			return nil, err
		}

		tickets = append(tickets, db.Ticket{
			Model:         db.NewModel(),
			TicketCode:    code,
			OwnerID:       req.OwnerID,
			GuestName:     req.GuestName,
			GuestEmail:    req.GuestEmail,
			TicketClassID: class.ID,
			EventID:       event.ID,
			PurchasedAt:   time.Now(),
			Status:        status,
			FormData:      req.FormData,
			OrderCode:     orderCode,
		})
	}

	if err := service.tickets.CreateTicketBatch(ctx, tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// CreatePayment is the full order orchestration: validate, price, issue the
// pending batch, request a hosted checkout link, and hand the link back.
// If the gateway call fails the pending batch is rolled to CANCELLED before
// the error is surfaced; tickets never dangle in PENDING_PAYMENT without a
// live checkout.
func (service *OrderService) CreatePayment(ctx context.Context, req PurchaseRequest) (*PaymentSession, error) {
	event, class, err := service.resolvePurchase(ctx, req)
	if err != nil {
		return nil, err
	}

	orderCode := GenerateOrderCode()
	amount := class.Price * int64(req.Quantity)

	tickets, err := service.issueTickets(ctx, req, event, class, orderCode, db.TicketPendingPayment)
	if err != nil {
		return nil, err
	}

	link, err := service.gateway.CreatePaymentLink(ctx, payment.CheckoutRequest{
		OrderCode:   orderCode,
		Amount:      amount,
		Description: tickets[0].TicketCode,
		BuyerName:   req.GuestName,
		BuyerEmail:  req.GuestEmail,
		Items: []payment.CheckoutItem{
			{Name: fmt.Sprintf("%s - %s", event.Title, class.Name), Quantity: req.Quantity, Price: class.Price},
		},
		ReturnURL: service.returnURL,
		CancelURL: service.cancelURL,
	})
	if err != nil {
		// Compensating action, not optional cleanup
		cancelled, cancelErr := service.tickets.CancelPendingOrder(ctx, orderCode)
		if cancelErr != nil {
			util.LOGGER.Error("failed to cancel pending tickets after gateway failure",
				"order_code", orderCode, "error", cancelErr)
		} else {
			util.LOGGER.Warn("gateway link creation failed, pending tickets cancelled",
				"order_code", orderCode, "cancelled", cancelled, "error", err)
		}
		return nil, fmt.Errorf("%w: %v", db.ErrGateway, err)
	}

	return &PaymentSession{
		CheckoutURL:   link.CheckoutURL,
		PaymentLinkID: link.PaymentLinkID,
		OrderCode:     orderCode,
	}, nil
}

// IssuePaid is the admin path: tickets start directly in PAID with no
// gateway involvement. Returns the created batch.
func (service *OrderService) IssuePaid(ctx context.Context, req PurchaseRequest) ([]db.Ticket, error) {
	event, class, err := service.resolvePurchase(ctx, req)
	if err != nil {
		return nil, err
	}

	return service.issueTickets(ctx, req, event, class, GenerateOrderCode(), db.TicketPaid)
}

// Confirm applies the payment confirmation for an order reference. Both the
// gateway webhook and the browser return-redirect funnel into this method,
// possibly twice and possibly concurrently; the conditional update in the
// store makes re-delivery a no-op. An unknown order code is logged, not an
// error: the gateway may retry deliveries for orders we never issued.
func (service *OrderService) Confirm(ctx context.Context, orderCode int64) error {
	transitioned, err := service.tickets.MarkOrderPaid(ctx, orderCode)
	if err != nil {
		return err
	}

	if transitioned == 0 {
		util.LOGGER.Info("payment confirmation with nothing to transition",
			"order_code", orderCode)
		return nil
	}

	util.LOGGER.Info("order confirmed", "order_code", orderCode, "tickets", transitioned)

	// First effective confirmation: send the buyer their tickets
	err = service.distributor.DistributeTask(ctx, worker.SendTicketEmail, worker.SendTicketEmailPayload{
		OrderCode: orderCode,
	}, asynq.Queue(worker.HIGH_IMPACT), asynq.MaxRetry(5))
	if err != nil {
		// The confirmation itself succeeded; the email can be re-sent by hand
		util.LOGGER.Error("failed to distribute ticket email task", "order_code", orderCode, "error", err)
	}

	return nil
}

// Confirmation returns the ticket summaries of an order for display. Orders
// with a registered owner are only visible to that owner; the mismatch is
// reported as not-found so strangers cannot probe which order codes exist.
// Guest orders are viewable by anyone holding the order reference.
func (service *OrderService) Confirmation(ctx context.Context, orderCode int64, requester *uuid.UUID) ([]db.Ticket, error) {
	tickets, err := service.tickets.TicketsByOrderCode(ctx, orderCode)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, db.ErrOrderNotFound
	}

	owner := tickets[0].OwnerID
	if owner != nil && (requester == nil || *requester != *owner) {
		return nil, db.ErrOrderNotFound
	}

	return tickets, nil
}
