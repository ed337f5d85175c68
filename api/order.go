package api

import (
	"errors"
	"net/http"
	"strconv"
	"tixgate/db"
	"tixgate/service/order"
	"tixgate/service/payment"
	"tixgate/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CreatePaymentRequest struct {
	EventID       uuid.UUID  `json:"event_id" binding:"required"`
	ShowtimeID    uuid.UUID  `json:"showtime_id" binding:"required"`
	TicketClassID uuid.UUID  `json:"ticket_class_id" binding:"required"`
	Quantity      int        `json:"quantity" binding:"required,min=1"`
	GuestName     string     `json:"guest_name"`
	GuestEmail    string     `json:"guest_email" binding:"omitempty,email"`
	FormData      db.JSONMap `json:"form_data"`
}

// CreatePayment godoc
// @Summary      Create a payment for a ticket purchase
// @Description  Issues the pending ticket batch for the purchase and returns a hosted
// @Description  checkout link. Tickets stay PENDING_PAYMENT until the gateway confirms.
// @Description  A logged-in buyer's order is bound to their account; guests supply name and email.
// @Tags         Orders
// @Accept       json
// @Produce      json
// @Param        request body CreatePaymentRequest true "Purchase information"
// @Success      200  {object}  order.PaymentSession  "Checkout link created"
// @Failure      400  {object}  ErrorResponse  "Invalid request body | Inactive ticket class | Quantity exceeds availability"
// @Failure      404  {object}  ErrorResponse  "Event, showtime or ticket class not found"
// @Failure      502  {object}  ErrorResponse  "Payment gateway unavailable"
// @Router       /orders/create-payment [post]
func (server *Server) CreatePayment(ctx *gin.Context) {
	var req CreatePaymentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.LOGGER.Warn("POST /orders/create-payment: failed to bind request body", "error", err)
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid request body"})
		return
	}

	purchase := order.PurchaseRequest{
		EventID:       req.EventID,
		ShowtimeID:    req.ShowtimeID,
		TicketClassID: req.TicketClassID,
		Quantity:      req.Quantity,
		GuestName:     req.GuestName,
		GuestEmail:    req.GuestEmail,
		FormData:      req.FormData,
	}

	// A logged-in buyer owns the order; guests must identify themselves
	if claims := requestClaims(ctx); claims != nil {
		id := claims.ID
		purchase.OwnerID = &id
	} else if req.GuestName == "" || req.GuestEmail == "" {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Guest purchases require guest_name and guest_email"})
		return
	}

	session, err := server.orderService.CreatePayment(ctx, purchase)
	if err != nil {
		server.orderError(ctx, "POST /orders/create-payment", err)
		return
	}

	ctx.JSON(http.StatusOK, session)
}

// PaymentSuccess godoc
// @Summary      Gateway return redirect
// @Description  Landing endpoint the gateway redirects the buyer to after checkout.
// @Description  Confirms the order like the webhook does, so payment is finalized even
// @Description  when the async webhook is delayed or lost. Idempotent with the webhook.
// @Tags         Orders
// @Produce      json
// @Param        orderCode path int true "Order code"
// @Success      200  {object}  SuccessMessage  "Payment recorded"
// @Failure      400  {object}  ErrorResponse   "Invalid order code"
// @Router       /orders/success/{orderCode} [get]
func (server *Server) PaymentSuccess(ctx *gin.Context) {
	orderCode, err := strconv.ParseInt(ctx.Param("orderCode"), 10, 64)
	if err != nil {
		util.LOGGER.Warn("GET /orders/success: invalid order code", "raw", ctx.Param("orderCode"))
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid order code"})
		return
	}

	if err := server.orderService.Confirm(ctx, orderCode); err != nil {
		util.LOGGER.Error("GET /orders/success: failed to confirm order", "order_code", orderCode, "error", err)
		internalError(ctx)
		return
	}

	ctx.JSON(http.StatusOK, SuccessMessage{"Payment recorded, your tickets are on the way"})
}

// OrderConfirmation godoc
// @Summary      View the tickets of an order
// @Description  Returns the ticket batch of an order. Orders owned by an account are
// @Description  only visible to that account; guest orders are visible to anyone who
// @Description  holds the order code. Unknown and foreign orders both answer not-found.
// @Tags         Orders
// @Produce      json
// @Param        orderCode path int true "Order code"
// @Success      200  {array}   db.Ticket      "Tickets of the order"
// @Failure      400  {object}  ErrorResponse  "Invalid order code"
// @Failure      404  {object}  ErrorResponse  "Order not found"
// @Router       /orders/confirmation/{orderCode} [get]
func (server *Server) OrderConfirmation(ctx *gin.Context) {
	orderCode, err := strconv.ParseInt(ctx.Param("orderCode"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid order code"})
		return
	}

	var requester *uuid.UUID
	if claims := requestClaims(ctx); claims != nil {
		id := claims.ID
		requester = &id
	}

	tickets, err := server.orderService.Confirmation(ctx, orderCode, requester)
	if err != nil {
		if errors.Is(err, db.ErrOrderNotFound) {
			ctx.JSON(http.StatusNotFound, ErrorResponse{"Order not found"})
			return
		}
		util.LOGGER.Error("GET /orders/confirmation: failed to load order", "order_code", orderCode, "error", err)
		internalError(ctx)
		return
	}

	ctx.JSON(http.StatusOK, tickets)
}

// PayOSWebhook godoc
// @Summary      Payment gateway webhook
// @Description  Receives payment notifications from the gateway. Successful payments
// @Description  flip the order's pending tickets to PAID exactly once; re-deliveries
// @Description  and unknown orders are acknowledged without side effects so the
// @Description  gateway stops retrying.
// @Tags         Orders
// @Accept       json
// @Produce      json
// @Param        request body payment.WebhookPayload true "Gateway notification"
// @Success      200  {object}  SuccessMessage  "Notification processed"
// @Failure      400  {object}  ErrorResponse   "Invalid payload | Missing order code"
// @Router       /orders/payos-hook [post]
func (server *Server) PayOSWebhook(ctx *gin.Context) {
	var payload payment.WebhookPayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		util.LOGGER.Warn("POST /orders/payos-hook: failed to parse payload", "error", err)
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid payload"})
		return
	}

	// A payload without an order code cannot be acted on; reject it so the
	// problem is visible on the gateway side
	if payload.Data.OrderCode == 0 {
		util.LOGGER.Warn("POST /orders/payos-hook: payload missing order code", "code", payload.Code, "desc", payload.Desc)
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Missing order code"})
		return
	}

	if !payload.IsSuccess() {
		// Failed or cancelled payments are acknowledged, not acted on; the
		// buyer can retry from a fresh checkout
		util.LOGGER.Info("POST /orders/payos-hook: non-success notification",
			"order_code", payload.Data.OrderCode, "code", payload.Data.Code, "status", payload.Data.Status)
		ctx.JSON(http.StatusOK, SuccessMessage{"Notification received"})
		return
	}

	if err := server.orderService.Confirm(ctx, payload.Data.OrderCode); err != nil {
		util.LOGGER.Error("POST /orders/payos-hook: failed to confirm order",
			"order_code", payload.Data.OrderCode, "error", err)
		internalError(ctx)
		return
	}

	ctx.JSON(http.StatusOK, SuccessMessage{"Payment confirmed"})
}

type IssueTicketsRequest struct {
	ShowtimeID    uuid.UUID  `json:"showtime_id" binding:"required"`
	TicketClassID uuid.UUID  `json:"ticket_class_id" binding:"required"`
	Quantity      int        `json:"quantity" binding:"required,min=1"`
	OwnerID       *uuid.UUID `json:"owner_id"`
	GuestName     string     `json:"guest_name"`
	GuestEmail    string     `json:"guest_email" binding:"omitempty,email"`
	FormData      db.JSONMap `json:"form_data"`
}

// IssueTickets godoc
// @Summary      Issue tickets directly (admin)
// @Description  Creates a ticket batch straight in PAID status, bypassing the payment
// @Description  gateway. Used for comps, invited guests and offline sales.
// @Tags         Orders
// @Accept       json
// @Produce      json
// @Param        id      path  string              true  "Event ID"
// @Param        request body  IssueTicketsRequest true  "Issuance information"
// @Success      200  {array}   db.Ticket      "Issued tickets"
// @Failure      400  {object}  ErrorResponse  "Invalid request body | Inactive ticket class"
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      403  {object}  ErrorResponse  "Admin only"
// @Failure      404  {object}  ErrorResponse  "Event, showtime or ticket class not found"
// @Router       /api/events/{id}/tickets [post]
func (server *Server) IssueTickets(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid event ID"})
		return
	}

	var req IssueTicketsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.LOGGER.Warn("POST /api/events/:id/tickets: failed to bind request body", "error", err)
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid request body"})
		return
	}

	tickets, err := server.orderService.IssuePaid(ctx, order.PurchaseRequest{
		EventID:       eventID,
		ShowtimeID:    req.ShowtimeID,
		TicketClassID: req.TicketClassID,
		Quantity:      req.Quantity,
		OwnerID:       req.OwnerID,
		GuestName:     req.GuestName,
		GuestEmail:    req.GuestEmail,
		FormData:      req.FormData,
	})
	if err != nil {
		server.orderError(ctx, "POST /api/events/:id/tickets", err)
		return
	}

	ctx.JSON(http.StatusOK, tickets)
}

// Shared mapping of purchase pipeline errors to HTTP answers
func (server *Server) orderError(ctx *gin.Context, route string, err error) {
	switch {
	case errors.Is(err, db.ErrEventNotFound),
		errors.Is(err, db.ErrShowtimeNotFound),
		errors.Is(err, db.ErrTicketClassNotFound):
		ctx.JSON(http.StatusNotFound, ErrorResponse{err.Error()})
	case errors.Is(err, db.ErrInvalidQuantity),
		errors.Is(err, db.ErrClassMismatch),
		errors.Is(err, db.ErrInactiveTicketClass),
		errors.Is(err, db.ErrNonPositiveAmount),
		errors.Is(err, db.ErrQuantityExceeded):
		ctx.JSON(http.StatusBadRequest, ErrorResponse{err.Error()})
	case errors.Is(err, db.ErrDuplicateOrder):
		ctx.JSON(http.StatusConflict, ErrorResponse{"Order code conflict, please retry"})
	case errors.Is(err, db.ErrGateway):
		util.LOGGER.Error(route+": payment gateway failure", "error", err)
		ctx.JSON(http.StatusBadGateway, ErrorResponse{"Payment gateway unavailable, please retry later"})
	default:
		util.LOGGER.Error(route+": unexpected error", "error", err)
		internalError(ctx)
	}
}
