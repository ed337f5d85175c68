package api

import (
	"errors"
	"net/http"
	"tixgate/db"
	"tixgate/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TicketClassRequest struct {
	Name        string `json:"name" binding:"required"`
	Price       int64  `json:"price" binding:"min=0"`
	MaxQuantity *int   `json:"max_quantity" binding:"omitempty,min=1"`
	Active      *bool  `json:"active"`
}

// CreateTicketClass godoc
// @Summary      Add a ticket class to a showtime
// @Description  Creates a ticket class (tier) for a showtime. Price is in the
// @Description  smallest currency unit. A nil max quantity means unlimited.
// @Tags         TicketClasses
// @Accept       json
// @Produce      json
// @Param        id         path string             true "Event ID"
// @Param        showtimeId path string             true "Showtime ID"
// @Param        request    body TicketClassRequest true "Ticket class information"
// @Success      200 {object} db.TicketClass "Created ticket class"
// @Failure      400 {object} ErrorResponse "Invalid request body"
// @Failure      404 {object} ErrorResponse "Showtime not found"
// @Router       /api/events/{id}/showtimes/{showtimeId}/classes [post]
func (server *Server) CreateTicketClass(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid event ID"})
		return
	}
	showtimeID, err := uuid.Parse(ctx.Param("showtimeId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid showtime ID"})
		return
	}

	var req TicketClassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.LOGGER.Warn("POST .../classes: failed to bind request body", "error", err)
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid request body"})
		return
	}

	// The showtime must exist and belong to the stated event
	showtime, err := server.queries.GetShowtime(ctx, showtimeID)
	if err != nil {
		if errors.Is(err, db.ErrShowtimeNotFound) {
			ctx.JSON(http.StatusNotFound, ErrorResponse{"Showtime not found"})
			return
		}
		util.LOGGER.Error("POST .../classes: failed to load showtime", "error", err)
		internalError(ctx)
		return
	}
	if showtime.EventID != eventID {
		ctx.JSON(http.StatusNotFound, ErrorResponse{"Showtime not found"})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	class := db.TicketClass{
		Model:       db.NewModel(),
		EventID:     eventID,
		ShowtimeID:  showtimeID,
		Name:        req.Name,
		Price:       req.Price,
		MaxQuantity: req.MaxQuantity,
		Active:      active,
	}
	if err := server.queries.CreateTicketClass(ctx, &class); err != nil {
		util.LOGGER.Error("POST .../classes: failed to create ticket class", "error", err)
		internalError(ctx)
		return
	}

	ctx.JSON(http.StatusOK, class)
}

// UpdateTicketClass godoc
// @Summary      Update a ticket class
// @Description  Updates name, price, max quantity and active flag. Deactivating a
// @Description  class stops new sales without touching issued tickets.
// @Tags         TicketClasses
// @Accept       json
// @Produce      json
// @Param        id         path string             true "Event ID"
// @Param        showtimeId path string             true "Showtime ID"
// @Param        classId    path string             true "Ticket class ID"
// @Param        request    body TicketClassRequest true "Ticket class information"
// @Success      200 {object} SuccessMessage "Ticket class updated"
// @Failure      400 {object} ErrorResponse "Invalid request body"
// @Failure      404 {object} ErrorResponse "Ticket class not found"
// @Router       /api/events/{id}/showtimes/{showtimeId}/classes/{classId} [patch]
func (server *Server) UpdateTicketClass(ctx *gin.Context) {
	classID, err := uuid.Parse(ctx.Param("classId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid ticket class ID"})
		return
	}

	var req TicketClassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid request body"})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	class := db.TicketClass{
		Model:       db.Model{ID: classID},
		Name:        req.Name,
		Price:       req.Price,
		MaxQuantity: req.MaxQuantity,
		Active:      active,
	}
	if err := server.queries.UpdateTicketClass(ctx, &class); err != nil {
		if errors.Is(err, db.ErrTicketClassNotFound) {
			ctx.JSON(http.StatusNotFound, ErrorResponse{"Ticket class not found"})
			return
		}
		util.LOGGER.Error("PATCH .../classes/:classId: failed to update ticket class", "error", err)
		internalError(ctx)
		return
	}

	ctx.JSON(http.StatusOK, SuccessMessage{"Ticket class updated"})
}

// DeleteTicketClass godoc
// @Summary      Delete a ticket class
// @Description  Deletes a ticket class. Refused while any ticket references it;
// @Description  deactivate instead to stop sales.
// @Tags         TicketClasses
// @Produce      json
// @Param        id         path string true "Event ID"
// @Param        showtimeId path string true "Showtime ID"
// @Param        classId    path string true "Ticket class ID"
// @Success      200 {object} SuccessMessage "Ticket class deleted"
// @Failure      400 {object} ErrorResponse "Invalid ticket class ID | Ticket class has issued tickets"
// @Failure      404 {object} ErrorResponse "Ticket class not found"
// @Router       /api/events/{id}/showtimes/{showtimeId}/classes/{classId} [delete]
func (server *Server) DeleteTicketClass(ctx *gin.Context) {
	classID, err := uuid.Parse(ctx.Param("classId"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid ticket class ID"})
		return
	}

	if err := server.queries.DeleteTicketClass(ctx, classID); err != nil {
		switch {
		case errors.Is(err, db.ErrTicketClassNotFound):
			ctx.JSON(http.StatusNotFound, ErrorResponse{"Ticket class not found"})
		case errors.Is(err, db.ErrClassInUse):
			ctx.JSON(http.StatusBadRequest, ErrorResponse{"Ticket class has issued tickets; deactivate it instead"})
		default:
			util.LOGGER.Error("DELETE .../classes/:classId: failed to delete ticket class", "error", err)
			internalError(ctx)
		}
		return
	}

	ctx.JSON(http.StatusOK, SuccessMessage{"Ticket class deleted"})
}
