package api

import (
	"errors"
	"net/http"
	"tixgate/db"
	"tixgate/service/checkin"
	"tixgate/util"

	"github.com/gin-gonic/gin"
)

func (server *Server) checkinRequester(ctx *gin.Context) checkin.Requester {
	claims := requestClaims(ctx)
	return checkin.Requester{ID: claims.ID, Role: claims.Role}
}

// FetchTicket godoc
// @Summary      Look up a ticket at the gate
// @Description  Loads the ticket behind a scanned code for the check-in screen,
// @Description  without changing its state. Staff can only look up tickets of the
// @Description  event they are assigned to; admins can look up any ticket.
// @Tags         Checkin
// @Produce      json
// @Param        ticketCode path string true "Ticket code"
// @Success      200  {object}  db.Ticket      "Ticket detail"
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      403  {object}  ErrorResponse  "Not assigned to this event"
// @Failure      404  {object}  ErrorResponse  "Ticket not found"
// @Router       /checkin/{ticketCode} [get]
func (server *Server) FetchTicket(ctx *gin.Context) {
	ticket, err := server.checkinService.FetchTicket(ctx, server.checkinRequester(ctx), ctx.Param("ticketCode"))
	if err != nil {
		server.checkinError(ctx, "GET /checkin/:ticketCode", err)
		return
	}

	ctx.JSON(http.StatusOK, ticket)
}

// ConfirmCheckin godoc
// @Summary      Check a ticket in
// @Description  Marks a PAID ticket as CHECKED_IN. The transition happens at most
// @Description  once: a second confirmation, a cancelled ticket or an unpaid ticket
// @Description  each get a distinct rejection so gate staff know what they scanned.
// @Tags         Checkin
// @Produce      json
// @Param        ticketCode path string true "Ticket code"
// @Success      200  {object}  db.Ticket      "Ticket after check-in"
// @Failure      400  {object}  ErrorResponse  "Ticket not paid | Ticket cancelled"
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      403  {object}  ErrorResponse  "Not assigned to this event"
// @Failure      404  {object}  ErrorResponse  "Ticket not found"
// @Failure      409  {object}  ErrorResponse  "Ticket already checked in"
// @Router       /checkin/{ticketCode}/confirm [post]
func (server *Server) ConfirmCheckin(ctx *gin.Context) {
	ticket, err := server.checkinService.ConfirmCheckin(ctx, server.checkinRequester(ctx), ctx.Param("ticketCode"))
	if err != nil {
		server.checkinError(ctx, "POST /checkin/:ticketCode/confirm", err)
		return
	}

	ctx.JSON(http.StatusOK, ticket)
}

func (server *Server) checkinError(ctx *gin.Context, route string, err error) {
	switch {
	case errors.Is(err, db.ErrTicketNotFound):
		ctx.JSON(http.StatusNotFound, ErrorResponse{"Ticket not found"})
	case errors.Is(err, db.ErrForbidden):
		ctx.JSON(http.StatusForbidden, ErrorResponse{"You don't have permission to check in this ticket"})
	case errors.Is(err, db.ErrAlreadyCheckedIn):
		ctx.JSON(http.StatusConflict, ErrorResponse{"Ticket already checked in"})
	case errors.Is(err, db.ErrNotPaid):
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Ticket is not paid"})
	case errors.Is(err, db.ErrTicketCancelled):
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Ticket was cancelled"})
	default:
		util.LOGGER.Error(route+": unexpected error", "error", err)
		internalError(ctx)
	}
}
