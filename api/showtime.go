package api

import (
	"errors"
	"net/http"
	"time"
	"tixgate/db"
	"tixgate/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ShowtimeRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
	Location  string    `json:"location" binding:"required"`
}

// CreateShowtime godoc
// @Summary      Add a showtime to an event
// @Description  Creates a showtime. End time must be after start time.
// @Tags         Showtimes
// @Accept       json
// @Produce      json
// @Param        id      path string          true "Event ID"
// @Param        request body ShowtimeRequest true "Showtime information"
// @Success      200 {object} db.Showtime "Created showtime"
// @Failure      400 {object} ErrorResponse "Invalid request body | End time must be after start time"
// @Failure      404 {object} ErrorResponse "Event not found"
// @Router       /api/events/{id}/showtimes [post]
func (server *Server) CreateShowtime(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid event ID"})
		return
	}

	var req ShowtimeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.LOGGER.Warn("POST /api/events/:id/showtimes: failed to bind request body", "error", err)
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid request body"})
		return
	}

	// The event must exist before we attach schedule rows to it
	if _, err := server.queries.GetEvent(ctx, eventID); err != nil {
		if errors.Is(err, db.ErrEventNotFound) {
			ctx.JSON(http.StatusNotFound, ErrorResponse{"Event not found"})
			return
		}
		util.LOGGER.Error("POST /api/events/:id/showtimes: failed to load event", "error", err)
		internalError(ctx)
		return
	}

	showtime := db.Showtime{
		Model:     db.NewModel(),
		EventID:   eventID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Location:  req.Location,
	}
	if err := server.queries.CreateShowtime(ctx, &showtime); err != nil {
		if errors.Is(err, db.ErrInvalidTimeRange) {
			ctx.JSON(http.StatusBadRequest, ErrorResponse{"End time must be after start time"})
			return
		}
		util.LOGGER.Error("POST /api/events/:id/showtimes: failed to create showtime", "error", err)
		internalError(ctx)
		return
	}

	ctx.JSON(http.StatusOK, showtime)
}

// UpdateShowtime godoc
// @Summary      Update a showtime
// @Tags         Showtimes
// @Accept       json
// @Produce      json
// @Param        id         path string          true "Event ID"
// @Param        showtimeId path string          true "Showtime ID"
// @Param        request    body ShowtimeRequest true "Showtime information"
// @Success      200 {object} SuccessMessage "Showtime updated"
// @Failure      400 {object} ErrorResponse "Invalid request body | End time must be after start time"
// @Failure      404 {object} ErrorResponse "Showtime not found"
// @Router       /api/events/{id}/showtimes/{showtimeId} [patch]
func (server *Server) UpdateShowtime(ctx *gin.Context) {
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

	var req ShowtimeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid request body"})
		return
	}

	showtime := db.Showtime{
		Model:     db.Model{ID: showtimeID},
		EventID:   eventID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Location:  req.Location,
	}
	if err := server.queries.UpdateShowtime(ctx, &showtime); err != nil {
		switch {
		case errors.Is(err, db.ErrInvalidTimeRange):
			ctx.JSON(http.StatusBadRequest, ErrorResponse{"End time must be after start time"})
		case errors.Is(err, db.ErrShowtimeNotFound):
			ctx.JSON(http.StatusNotFound, ErrorResponse{"Showtime not found"})
		default:
			util.LOGGER.Error("PATCH /api/events/:id/showtimes/:showtimeId: failed to update showtime", "error", err)
			internalError(ctx)
		}
		return
	}

	ctx.JSON(http.StatusOK, SuccessMessage{"Showtime updated"})
}

// DeleteShowtime godoc
// @Summary      Delete a showtime
// @Description  Deletes a showtime with its ticket classes (cascade).
// @Tags         Showtimes
// @Produce      json
// @Param        id         path string true "Event ID"
// @Param        showtimeId path string true "Showtime ID"
// @Success      200 {object} SuccessMessage "Showtime deleted"
// @Failure      400 {object} ErrorResponse "Invalid showtime ID"
// @Failure      404 {object} ErrorResponse "Showtime not found"
// @Router       /api/events/{id}/showtimes/{showtimeId} [delete]
func (server *Server) DeleteShowtime(ctx *gin.Context) {
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

	if err := server.queries.DeleteShowtime(ctx, eventID, showtimeID); err != nil {
		if errors.Is(err, db.ErrShowtimeNotFound) {
			ctx.JSON(http.StatusNotFound, ErrorResponse{"Showtime not found"})
			return
		}
		util.LOGGER.Error("DELETE /api/events/:id/showtimes/:showtimeId: failed to delete showtime", "error", err)
		internalError(ctx)
		return
	}

	ctx.JSON(http.StatusOK, SuccessMessage{"Showtime deleted"})
}
