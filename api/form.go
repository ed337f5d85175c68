package api

import (
	"errors"
	"net/http"
	"tixgate/db"
	"tixgate/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FormFieldOptionRequest struct {
	Label string `json:"label" binding:"required"`
}

type FormFieldRequest struct {
	Label    string                   `json:"label" binding:"required"`
	Type     db.FieldType             `json:"type" binding:"required,oneof=short_answer long_answer date single_choice multi_choice"`
	Required bool                     `json:"required"`
	Options  []FormFieldOptionRequest `json:"options" binding:"dive"`
}

type FormRequest struct {
	Title  string             `json:"title"`
	Fields []FormFieldRequest `json:"fields" binding:"required,min=1,dive"`
}

// GetForm godoc
// @Summary      Get the attendee form of an event
// @Description  Returns the form definition with fields and options in display order.
// @Tags         Forms
// @Produce      json
// @Param        id path string true "Event ID"
// @Success      200 {object} db.Form "Form definition"
// @Failure      400 {object} ErrorResponse "Invalid event ID"
// @Failure      404 {object} ErrorResponse "Form not found"
// @Router       /api/events/{id}/form [get]
func (server *Server) GetForm(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid event ID"})
		return
	}

	form, err := server.queries.GetFormByEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, db.ErrFormNotFound) {
			ctx.JSON(http.StatusNotFound, ErrorResponse{"Form not found"})
			return
		}
		util.LOGGER.Error("GET /api/events/:id/form: failed to load form", "error", err)
		internalError(ctx)
		return
	}

	ctx.JSON(http.StatusOK, form)
}

// ReplaceForm godoc
// @Summary      Replace the attendee form of an event
// @Description  Replaces the full form definition. An event has one form; fields are
// @Description  stored in the order they are submitted. Choice fields carry options.
// @Tags         Forms
// @Accept       json
// @Produce      json
// @Param        id      path string      true "Event ID"
// @Param        request body FormRequest true "Form definition"
// @Success      200 {object} db.Form "Stored form"
// @Failure      400 {object} ErrorResponse "Invalid request body | Choice field without options"
// @Failure      404 {object} ErrorResponse "Event not found"
// @Router       /api/events/{id}/form [put]
func (server *Server) ReplaceForm(ctx *gin.Context) {
	eventID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid event ID"})
		return
	}

	var req FormRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.LOGGER.Warn("PUT /api/events/:id/form: failed to bind request body", "error", err)
		ctx.JSON(http.StatusBadRequest, ErrorResponse{"Invalid request body"})
		return
	}

	if _, err := server.queries.GetEvent(ctx, eventID); err != nil {
		if errors.Is(err, db.ErrEventNotFound) {
			ctx.JSON(http.StatusNotFound, ErrorResponse{"Event not found"})
			return
		}
		util.LOGGER.Error("PUT /api/events/:id/form: failed to load event", "error", err)
		internalError(ctx)
		return
	}

	form := db.Form{
		Model:   db.NewModel(),
		EventID: eventID,
		Title:   req.Title,
	}
	for i, fieldReq := range req.Fields {
		choice := fieldReq.Type == db.FieldSingleChoice || fieldReq.Type == db.FieldMultiChoice
		if choice && len(fieldReq.Options) == 0 {
			ctx.JSON(http.StatusBadRequest, ErrorResponse{"Choice field without options: " + fieldReq.Label})
			return
		}
		if !choice && len(fieldReq.Options) > 0 {
			ctx.JSON(http.StatusBadRequest, ErrorResponse{"Only choice fields may carry options: " + fieldReq.Label})
			return
		}

		field := db.FormField{
			Model:    db.NewModel(),
			Label:    fieldReq.Label,
			Type:     fieldReq.Type,
			Required: fieldReq.Required,
			Position: i,
		}
		for j, optionReq := range fieldReq.Options {
			field.Options = append(field.Options, db.FieldOption{
				Model:    db.NewModel(),
				Label:    optionReq.Label,
				Position: j,
			})
		}
		form.Fields = append(form.Fields, field)
	}

	if err := server.queries.ReplaceForm(ctx, &form); err != nil {
		util.LOGGER.Error("PUT /api/events/:id/form: failed to store form", "error", err)
		internalError(ctx)
		return
	}

	ctx.JSON(http.StatusOK, form)
}
