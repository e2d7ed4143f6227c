package web

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/2003abishek/sms-tracker/src/models"
	"github.com/2003abishek/sms-tracker/src/schemas"
	"github.com/2003abishek/sms-tracker/src/service"
	"github.com/2003abishek/sms-tracker/src/sms"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates for the gin engine.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

// PageController renders the three screens: send request, view sessions and
// share location. Every render reads through the lifecycle service; no page
// keeps session state of its own.
type PageController struct {
	Service   *service.SessionService
	ServerURL string
}

func NewPageController(svc *service.SessionService, serverURL string) *PageController {
	return &PageController{Service: svc, ServerURL: serverURL}
}

type locationRow struct {
	Timestamp string
	Latitude  float64
	Longitude float64
	Accuracy  string
	MapURL    string
}

func newLocationRow(loc models.LocationUpdate) locationRow {
	accuracy := "N/A"
	if loc.Accuracy != nil {
		accuracy = strconv.FormatFloat(*loc.Accuracy, 'f', -1, 64) + "m"
	}
	lat := strconv.FormatFloat(loc.Latitude, 'f', 6, 64)
	lon := strconv.FormatFloat(loc.Longitude, 'f', 6, 64)
	return locationRow{
		Timestamp: loc.Timestamp.UTC().Format("2006-01-02 15:04:05"),
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		Accuracy:  accuracy,
		MapURL:    "https://www.openstreetmap.org/?mlat=" + lat + "&mlon=" + lon + "#map=15/" + lat + "/" + lon,
	}
}

// SendPage renders the send-tracking-request form.
func (pc *PageController) SendPage(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "send.html", gin.H{
		"SenderPhone":    "",
		"RecipientPhone": "",
		"Message":        "",
	})
}

// SubmitSendPage creates a session from the form and shows the outcome,
// including the manual-share URL when the SMS was not delivered.
func (pc *PageController) SubmitSendPage(ctx *gin.Context) {
	recipient := ctx.PostForm("recipient_phone")
	sender := ctx.PostForm("sender_phone")
	message := ctx.PostForm("message")

	session, outcome, err := pc.Service.CreateSession(ctx.Request.Context(), sender, recipient, message)
	if err != nil {
		ctx.HTML(errStatus(err), "send.html", gin.H{
			"Error":          errDetail(err),
			"RecipientPhone": recipient,
			"SenderPhone":    sender,
			"Message":        message,
		})
		return
	}

	data := gin.H{
		"SessionID":   session.ID,
		"TrackingURL": outcome.TrackingURL,
		"SMSSent":     outcome.State == sms.StateSent,
	}
	switch outcome.State {
	case sms.StateDemoMode:
		data["Warning"] = "SMS not sent (transport not configured). Copy the tracking URL and share it manually."
	case sms.StateFailed:
		data["Warning"] = "SMS failed: " + outcome.Err + ". Copy the tracking URL and share it manually."
	}
	ctx.HTML(http.StatusOK, "send.html", data)
}

// SessionsPage renders the session picker and, when one is selected, its
// status and location history.
func (pc *PageController) SessionsPage(ctx *gin.Context) {
	sessions, err := pc.Service.ListSessions(ctx.Request.Context())
	if err != nil {
		ctx.HTML(errStatus(err), "sessions.html", gin.H{"Error": errDetail(err)})
		return
	}

	now := time.Now()
	data := gin.H{"Sessions": sessionViews(sessions, now)}

	selected := ctx.Query("id")
	if selected == "" && len(sessions) > 0 {
		selected = sessions[0].ID
	}

	if selected != "" {
		session, err := pc.Service.GetSession(ctx.Request.Context(), selected)
		if err != nil {
			data["Error"] = errDetail(err)
			ctx.HTML(errStatus(err), "sessions.html", data)
			return
		}

		locations, err := pc.Service.GetLocations(ctx.Request.Context(), selected)
		if err != nil {
			data["Error"] = errDetail(err)
			ctx.HTML(errStatus(err), "sessions.html", data)
			return
		}

		rows := make([]locationRow, 0, len(locations))
		for _, loc := range locations {
			rows = append(rows, newLocationRow(loc))
		}

		data["Selected"] = schemas.NewSessionView(session, now)
		data["Locations"] = rows
		data["TrackingURL"] = pc.trackingURL(session.ID)
	}

	ctx.HTML(http.StatusOK, "sessions.html", data)
}

// SharePage is the recipient-facing screen. The tracking id arrives either as
// the ?tracking_id= query parameter from the SMS link or by manual paste.
func (pc *PageController) SharePage(ctx *gin.Context) {
	trackingID := ctx.Query("tracking_id")
	if trackingID == "" {
		ctx.HTML(http.StatusOK, "share.html", gin.H{})
		return
	}
	pc.renderShare(ctx, trackingID, gin.H{})
}

// SubmitShare records a manually entered coordinate pair for the session.
func (pc *PageController) SubmitShare(ctx *gin.Context) {
	trackingID := ctx.PostForm("tracking_id")

	lat, latErr := strconv.ParseFloat(ctx.PostForm("latitude"), 64)
	lon, lonErr := strconv.ParseFloat(ctx.PostForm("longitude"), 64)
	if latErr != nil || lonErr != nil {
		pc.renderShare(ctx, trackingID, gin.H{"Error": "latitude and longitude must be decimal degrees"})
		return
	}

	var accuracy *float64
	if raw := ctx.PostForm("accuracy"); raw != "" {
		acc, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			pc.renderShare(ctx, trackingID, gin.H{"Error": "accuracy must be a number of meters"})
			return
		}
		accuracy = &acc
	}

	if _, err := pc.Service.RecordLocation(ctx.Request.Context(), trackingID, lat, lon, accuracy); err != nil {
		pc.renderShare(ctx, trackingID, gin.H{"Error": errDetail(err)})
		return
	}

	pc.renderShare(ctx, trackingID, gin.H{"Shared": true})
}

func (pc *PageController) renderShare(ctx *gin.Context, trackingID string, data gin.H) {
	data["TrackingID"] = trackingID

	session, err := pc.Service.GetSession(ctx.Request.Context(), trackingID)
	if err != nil {
		data["Error"] = "Invalid tracking ID. Please check and try again."
		ctx.HTML(errStatus(err), "share.html", data)
		return
	}

	now := time.Now()
	if session.IsExpired(now) {
		data["Expired"] = true
		ctx.HTML(http.StatusGone, "share.html", data)
		return
	}

	data["Session"] = schemas.NewSessionView(session, now)

	locations, err := pc.Service.GetLocations(ctx.Request.Context(), trackingID)
	if err == nil && len(locations) > 0 {
		// Show the most recent reports, latest first.
		start := len(locations) - 3
		if start < 0 {
			start = 0
		}
		recent := make([]locationRow, 0, 3)
		for i := len(locations) - 1; i >= start; i-- {
			recent = append(recent, newLocationRow(locations[i]))
		}
		data["Recent"] = recent
	}

	ctx.HTML(http.StatusOK, "share.html", data)
}

func (pc *PageController) trackingURL(sessionID string) string {
	url := pc.ServerURL
	for len(url) > 0 && url[len(url)-1] == '/' {
		url = url[:len(url)-1]
	}
	return url + "/?tracking_id=" + sessionID
}

func sessionViews(sessions []models.TrackingSession, now time.Time) []schemas.SessionView {
	views := make([]schemas.SessionView, 0, len(sessions))
	for i := range sessions {
		views = append(views, schemas.NewSessionView(&sessions[i], now))
	}
	return views
}

func errStatus(err error) int {
	if resp, ok := err.(*schemas.ErrorResponse); ok {
		return resp.Status
	}
	return http.StatusInternalServerError
}

func errDetail(err error) string {
	if resp, ok := err.(*schemas.ErrorResponse); ok {
		return resp.Detail
	}
	return err.Error()
}
