package api

import (
	"errors"
	"fmt"
	"net/http"
	"tixgate/db"
	"tixgate/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EventRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Shortkey    string `json:"shortkey" binding:"required,alphanum,min=2,max=20"`
}

// CreateEvent godoc
// @Summary      Create an event
// @Description  Creates an event with a unique shortkey. The shortkey becomes the
// @Description  prefix of every ticket code of the event and is uppercased on save.
// @Tags         Events
// @Accept       json
// @Produce      json
// @Param        request body EventRequest true "Event information"
// @Success      200 {object} db.Event "Created event"
// @Failure      400 {object} ErrorResponse "Invalid request body | Shortkey already taken"
// @Failure      401 {object} ErrorResponse "Unauthorized"
// @Failure      403 {object} ErrorResponse "Admin only"
// @Router       /api/events [post]
func (server *Server) CreateEvent(ctx *gin.Context) {
	var req EventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.LOGGER.Warn("POST /api/events: failed to bind request body", "error", err)
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid request body"})
		return
	}

	event := db.Event{
		Model:       db.NewModel(),
		Title:       req.Title,
		Description: req.Description,
		Shortkey:    req.Shortkey,
	}
	if err := server.queries.CreateEvent(ctx, &event); err != nil {
		if errors.Is(err, db.ErrShortkeyTaken) {
			ctx.JSON(http.StatusBadRequest, ErrorResponse{"Shortkey already taken"})
			return
		}
		util.LOGGER.Error("POST /api/events: failed to create event", "error", err)
		internalError(ctx)
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// GetEvent godoc
// @Summary      Get event detail
// @Description  Returns the event with its showtimes, gallery images and attendee form.
// @Tags         Events
// @Produce      json
// @Param        id path string true "Event ID"
// @Success      200 {object} db.Event "Event detail"
// @Failure      400 {object} ErrorResponse "Invalid event ID"
// @Failure      404 {object} ErrorResponse "Event not found"
// @Router       /api/events/{id} [get]
func (server *Server) GetEvent(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid event ID"})
		return
	}

	event, err := server.queries.GetEvent(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrEventNotFound) {
			ctx.JSON(http.StatusNotFound, ErrorResponse{"Event not found"})
			return
		}
		util.LOGGER.Error("GET /api/events/:id: failed to load event", "error", err)
		internalError(ctx)
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// ListEvents godoc
// @Summary      List events
// @Description  Returns all events, newest first.
// @Tags         Events
// @Produce      json
// @Success      200 {array} db.Event "Events"
// @Failure      500 {object} ErrorResponse "Internal server error"
// @Router       /api/events [get]
func (server *Server) ListEvents(ctx *gin.Context) {
	events, err := server.queries.ListEvents(ctx)
	if err != nil {
		util.LOGGER.Error("GET /api/events: failed to list events", "error", err)
		internalError(ctx)
		return
	}

	ctx.JSON(http.StatusOK, events)
}

// UpdateEvent godoc
// @Summary      Update an event
// @Description  Updates title, description and shortkey. The shortkey is locked once
// @Description  the event has issued tickets; their codes carry it forever.
// @Tags         Events
// @Accept       json
// @Produce      json
// @Param        id      path string       true "Event ID"
// @Param        request body EventRequest true "Event information"
// @Success      200 {object} SuccessMessage "Event updated"
// @Failure      400 {object} ErrorResponse "Invalid request body | Shortkey is locked | Shortkey already taken"
// @Failure      404 {object} ErrorResponse "Event not found"
// @Router       /api/events/{id} [patch]
func (server *Server) UpdateEvent(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid event ID"})
		return
	}

	var req EventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.LOGGER.Warn("PATCH /api/events/:id: failed to bind request body", "error", err)
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid request body"})
		return
	}

	event := db.Event{
		Model:       db.Model{ID: id},
		Title:       req.Title,
		Description: req.Description,
		Shortkey:    req.Shortkey,
	}
	if err := server.queries.UpdateEvent(ctx, &event); err != nil {
		switch {
		case errors.Is(err, db.ErrEventNotFound):
			ctx.JSON(http.StatusNotFound, ErrorResponse{"Event not found"})
		case errors.Is(err, db.ErrShortkeyImmutable):
			ctx.JSON(http.StatusBadRequest, ErrorResponse{"Shortkey cannot change once tickets are issued"})
		case errors.Is(err, db.ErrShortkeyTaken):
			ctx.JSON(http.StatusBadRequest, ErrorResponse{"Shortkey already taken"})
		default:
			util.LOGGER.Error("PATCH /api/events/:id: failed to update event", "error", err)
			internalError(ctx)
		}
		return
	}

	ctx.JSON(http.StatusOK, SuccessMessage{"Event updated"})
}

// DeleteEvent godoc
// @Summary      Delete an event
// @Description  Deletes the event with its showtimes, classes, form and images.
// @Description  Refused while any ticket references the event.
// @Tags         Events
// @Produce      json
// @Param        id path string true "Event ID"
// @Success      200 {object} SuccessMessage "Event deleted"
// @Failure      400 {object} ErrorResponse "Invalid event ID | Event has issued tickets"
// @Failure      404 {object} ErrorResponse "Event not found"
// @Router       /api/events/{id} [delete]
func (server *Server) DeleteEvent(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid event ID"})
		return
	}

	if err := server.queries.DeleteEvent(ctx, id); err != nil {
		switch {
		case errors.Is(err, db.ErrEventNotFound):
			ctx.JSON(http.StatusNotFound, ErrorResponse{"Event not found"})
		case errors.Is(err, db.ErrEventHasTickets):
			ctx.JSON(http.StatusBadRequest, ErrorResponse{"Event has issued tickets and cannot be deleted"})
		default:
			util.LOGGER.Error("DELETE /api/events/:id: failed to delete event", "error", err)
			internalError(ctx)
		}
		return
	}

	ctx.JSON(http.StatusOK, SuccessMessage{"Event deleted"})
}

// UploadThumbnail godoc
// @Summary      Upload the event thumbnail
// @Description  Uploads the thumbnail image to cloud storage and stores its URL on the event.
// @Tags         Events
// @Accept       mpfd
// @Produce      json
// @Param        id    path     string true "Event ID"
// @Param        image formData file   true "Thumbnail image"
// @Success      200 {object} db.Event "Event with the new thumbnail URL"
// @Failure      400 {object} ErrorResponse "Invalid event ID | Missing image"
// @Failure      404 {object} ErrorResponse "Event not found"
// @Failure      500 {object} ErrorResponse "Upload failed"
// @Router       /api/events/{id}/thumbnail [post]
func (server *Server) UploadThumbnail(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid event ID"})
		return
	}

	event, err := server.queries.GetEvent(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrEventNotFound) {
			ctx.JSON(http.StatusNotFound, ErrorResponse{"Event not found"})
			return
		}
		util.LOGGER.Error("POST /api/events/:id/thumbnail: failed to load event", "error", err)
		internalError(ctx)
		return
	}

	file, err := ctx.FormFile("image")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Missing image"})
		return
	}

	reader, err := file.Open()
	if err != nil {
		util.LOGGER.Error("POST /api/events/:id/thumbnail: failed to open upload", "error", err)
		internalError(ctx)
		return
	}
	defer reader.Close()

	url, err := server.uploadService.UploadImage(ctx, fmt.Sprintf("%s-thumbnail", event.Shortkey), reader)
	if err != nil {
		util.LOGGER.Error("POST /api/events/:id/thumbnail: upload failed", "error", err)
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{"Upload failed"})
		return
	}

	event.ThumbnailURL = url
	if err := server.queries.UpdateEvent(ctx, event); err != nil {
		util.LOGGER.Error("POST /api/events/:id/thumbnail: failed to store thumbnail URL", "error", err)
		internalError(ctx)
		return
	}

	ctx.JSON(http.StatusOK, event)
}

// UploadEventImages godoc
// @Summary      Upload gallery images
// @Description  Uploads one or more gallery images for the event to cloud storage.
// @Tags         Events
// @Accept       mpfd
// @Produce      json
// @Param        id     path     string true "Event ID"
// @Param        images formData file   true "Gallery images"
// @Success      200 {array} db.EventImage "Stored images"
// @Failure      400 {object} ErrorResponse "Invalid event ID | Missing images"
// @Failure      404 {object} ErrorResponse "Event not found"
// @Failure      500 {object} ErrorResponse "Upload failed"
// @Router       /api/events/{id}/images [post]
func (server *Server) UploadEventImages(ctx *gin.Context) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid event ID"})
		return
	}

	event, err := server.queries.GetEvent(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrEventNotFound) {
			ctx.JSON(http.StatusNotFound, ErrorResponse{"Event not found"})
			return
		}
		util.LOGGER.Error("POST /api/events/:id/images: failed to load event", "error", err)
		internalError(ctx)
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil || len(form.File["images"]) == 0 {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Missing images"})
		return
	}

	stored := make([]db.EventImage, 0, len(form.File["images"]))
	for i, file := range form.File["images"] {
		reader, err := file.Open()
		if err != nil {
			util.LOGGER.Error("POST /api/events/:id/images: failed to open upload", "error", err)
			internalError(ctx)
			return
		}

		url, err := server.uploadService.UploadImage(ctx, fmt.Sprintf("%s-image-%d", event.Shortkey, i), reader)
		reader.Close()
		if err != nil {
			util.LOGGER.Error("POST /api/events/:id/images: upload failed", "error", err)
			ctx.JSON(http.StatusInternalServerError, ErrorResponse{"Upload failed"})
			return
		}

		image := db.EventImage{Model: db.NewModel(), EventID: event.ID, URL: url}
		if err := server.queries.CreateEventImage(ctx, &image); err != nil {
			util.LOGGER.Error("POST /api/events/:id/images: failed to store image", "error", err)
			internalError(ctx)
			return
		}
		stored = append(stored, image)
	}

	ctx.JSON(http.StatusOK, stored)
}

type AssignStaffRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// AssignStaff godoc
// @Summary      Assign a staff user to the event
// @Description  Binds a staff account to this event for gate check-in. A staff user
// @Description  works one event at a time; an existing assignment elsewhere is a conflict.
// @Tags         Events
// @Accept       json
// @Produce      json
// @Param        id      path string             true "Event ID"
// @Param        request body AssignStaffRequest true "Staff user"
// @Success      200 {object} SuccessMessage "Staff assigned"
// @Failure      400 {object} ErrorResponse "Invalid request body"
// @Failure      403 {object} ErrorResponse "User is not staff"
// @Failure      404 {object} ErrorResponse "Event or user not found"
// @Failure      409 {object} ErrorResponse "Staff already assigned to another event"
// @Router       /api/events/{id}/staff [post]
func (server *Server) AssignStaff(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid event ID"})
		return
	}

	var req AssignStaffRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid request body"})
		return
	}

	if err := server.queries.AssignStaff(ctx, req.UserID, eventID); err != nil {
		switch {
		case errors.Is(err, db.ErrUserNotFound):
			ctx.JSON(http.StatusNotFound, ErrorResponse{"User not found"})
		case errors.Is(err, db.ErrEventNotFound):
			ctx.JSON(http.StatusNotFound, ErrorResponse{"Event not found"})
		case errors.Is(err, db.ErrForbidden):
			ctx.JSON(http.StatusForbidden, ErrorResponse{"User is not a staff account"})
		case errors.Is(err, db.ErrStaffAssigned):
			ctx.JSON(http.StatusConflict, ErrorResponse{"Staff already assigned to another event"})
		default:
			util.LOGGER.Error("POST /api/events/:id/staff: failed to assign staff", "error", err)
			internalError(ctx)
		}
		return
	}

	ctx.JSON(http.StatusOK, SuccessMessage{"Staff assigned"})
}
