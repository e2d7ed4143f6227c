package controller

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/2003abishek/sms-tracker/src/schemas"
	"github.com/2003abishek/sms-tracker/src/service"
	"github.com/2003abishek/sms-tracker/src/sms"

	"github.com/gin-gonic/gin"
)

type SessionController struct {
	Service *service.SessionService
}

func NewSessionController(service *service.SessionService) *SessionController {
	return &SessionController{
		Service: service,
	}
}

// @Summary Create tracking session
// @Description Creates a tracking session and dispatches the tracking link by SMS
// @Tags sessions
// @Accept json
// @Produce json
// @Param CreateSessionRequest body schemas.CreateSessionRequest true "Create Session Request"
// @Success 201 {object} schemas.CreateSessionResponse
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 500 {object} schemas.ErrorResponse
// @Router /api/sessions [post]
func (sc *SessionController) CreateSession(ctx *gin.Context) {
	var req schemas.CreateSessionRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		slog.Error("Invalid request body", "error", err.Error())
		schemas.SendError(ctx, schemas.NewBadRequestError(
			"Invalid JSON format: "+err.Error(),
			ctx.FullPath(),
		))
		return
	}

	session, outcome, err := sc.Service.CreateSession(ctx.Request.Context(), req.SenderPhone, req.RecipientPhone, req.Message)
	if err != nil {
		schemas.SendError(ctx, err)
		return
	}

	resp := schemas.CreateSessionResponse{
		Session:     schemas.NewSessionView(session, time.Now()),
		TrackingURL: outcome.TrackingURL,
		SMSSent:     outcome.State == sms.StateSent,
		MessageRef:  outcome.MessageRef,
	}
	switch outcome.State {
	case sms.StateDemoMode:
		resp.Warning = "SMS not sent (transport not configured) - share the tracking URL manually"
	case sms.StateFailed:
		resp.Warning = fmt.Sprintf("SMS failed: %s - share the tracking URL manually", outcome.Err)
	}

	ctx.JSON(http.StatusCreated, resp)
}

// @Summary List tracking sessions
// @Description Lists all tracking sessions, newest first
// @Tags sessions
// @Produce json
// @Success 200 {array} schemas.SessionView
// @Failure 500 {object} schemas.ErrorResponse
// @Router /api/sessions [get]
func (sc *SessionController) ListSessions(ctx *gin.Context) {
	sessions, err := sc.Service.ListSessions(ctx.Request.Context())
	if err != nil {
		schemas.SendError(ctx, err)
		return
	}

	now := time.Now()
	views := make([]schemas.SessionView, 0, len(sessions))
	for i := range sessions {
		views = append(views, schemas.NewSessionView(&sessions[i], now))
	}

	ctx.JSON(http.StatusOK, views)
}

// @Summary Get tracking session
// @Description Fetches one tracking session; the status field reflects expiry
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} schemas.SessionView
// @Failure 404 {object} schemas.ErrorResponse
// @Router /api/sessions/{id} [get]
func (sc *SessionController) GetSession(ctx *gin.Context) {
	session, err := sc.Service.GetSession(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		schemas.SendError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, schemas.NewSessionView(session, time.Now()))
}

// @Summary Delete tracking session
// @Description Removes a session and its location history
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} schemas.ErrorResponse
// @Router /api/sessions/{id} [delete]
func (sc *SessionController) DeleteSession(ctx *gin.Context) {
	if err := sc.Service.DeleteSession(ctx.Request.Context(), ctx.Param("id")); err != nil {
		schemas.SendError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// @Summary Record location
// @Description Appends a location update; the first update activates the session
// @Tags locations
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param RecordLocationRequest body schemas.RecordLocationRequest true "Location"
// @Success 201 {object} models.LocationUpdate
// @Failure 400 {object} schemas.ErrorResponse
// @Failure 404 {object} schemas.ErrorResponse
// @Failure 410 {object} schemas.ErrorResponse
// @Router /api/sessions/{id}/locations [post]
func (sc *SessionController) RecordLocation(ctx *gin.Context) {
	var req schemas.RecordLocationRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		slog.Error("Invalid request body", "error", err.Error())
		schemas.SendError(ctx, schemas.NewBadRequestError(
			"Invalid JSON format: "+err.Error(),
			ctx.FullPath(),
		))
		return
	}

	update, err := sc.Service.RecordLocation(ctx.Request.Context(), ctx.Param("id"), *req.Latitude, *req.Longitude, req.Accuracy)
	if err != nil {
		schemas.SendError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, update)
}

// @Summary Get location history
// @Description Returns a session's location updates in chronological order
// @Tags locations
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {array} models.LocationUpdate
// @Failure 404 {object} schemas.ErrorResponse
// @Router /api/sessions/{id}/locations [get]
func (sc *SessionController) GetLocations(ctx *gin.Context) {
	locations, err := sc.Service.GetLocations(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		schemas.SendError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, locations)
}

// @Summary Export location history as CSV
// @Description Returns the history with columns Timestamp, Latitude, Longitude, Accuracy
// @Tags locations
// @Produce text/csv
// @Param id path string true "Session ID"
// @Success 200 {string} string "CSV body"
// @Failure 404 {object} schemas.ErrorResponse
// @Router /api/sessions/{id}/locations/export [get]
func (sc *SessionController) ExportLocationsCSV(ctx *gin.Context) {
	sessionID := ctx.Param("id")

	data, err := sc.Service.LocationsCSV(ctx.Request.Context(), sessionID)
	if err != nil {
		schemas.SendError(ctx, err)
		return
	}

	filename := "locations_" + shortID(sessionID) + ".csv"
	ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	ctx.Data(http.StatusOK, "text/csv", data)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
