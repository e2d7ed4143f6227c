package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/2003abishek/sms-tracker/src/models"
	"github.com/2003abishek/sms-tracker/src/service"
	"github.com/2003abishek/sms-tracker/src/sms"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type pageRepo struct {
	sessions  map[string]*models.TrackingSession
	locations map[string][]models.LocationUpdate
}

func newPageRepo() *pageRepo {
	return &pageRepo{
		sessions:  make(map[string]*models.TrackingSession),
		locations: make(map[string][]models.LocationUpdate),
	}
}

func (p *pageRepo) seed(expired bool) *models.TrackingSession {
	now := time.Now().UTC()
	if expired {
		now = now.Add(-25 * time.Hour)
	}
	s := &models.TrackingSession{
		ID:             uuid.New().String(),
		RecipientPhone: "+15551234567",
		Message:        "Please check in",
		Status:         models.StatusPending,
		CreatedAt:      now,
		ExpiresAt:      now.Add(models.SessionTTL),
	}
	p.sessions[s.ID] = s
	return s
}

func (p *pageRepo) CreateSession(_ context.Context, senderPhone, recipientPhone, message string) (*models.TrackingSession, error) {
	now := time.Now().UTC()
	s := &models.TrackingSession{
		ID:             uuid.New().String(),
		SenderPhone:    senderPhone,
		RecipientPhone: recipientPhone,
		Message:        message,
		Status:         models.StatusPending,
		CreatedAt:      now,
		ExpiresAt:      now.Add(models.SessionTTL),
	}
	p.sessions[s.ID] = s
	return s, nil
}

func (p *pageRepo) GetSessionByID(_ context.Context, sessionID string) (*models.TrackingSession, error) {
	s, ok := p.sessions[sessionID]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return s, nil
}

func (p *pageRepo) ListSessions(_ context.Context) ([]models.TrackingSession, error) {
	out := make([]models.TrackingSession, 0, len(p.sessions))
	for _, s := range p.sessions {
		out = append(out, *s)
	}
	return out, nil
}

func (p *pageRepo) RecordLocation(_ context.Context, sessionID string, latitude, longitude float64, accuracy *float64) (*models.LocationUpdate, error) {
	s, ok := p.sessions[sessionID]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	if s.Status == models.StatusPending {
		s.Status = models.StatusActive
	}
	update := models.LocationUpdate{
		ID:        int64(len(p.locations[sessionID]) + 1),
		SessionID: sessionID,
		Latitude:  latitude,
		Longitude: longitude,
		Accuracy:  accuracy,
		Timestamp: time.Now().UTC(),
	}
	p.locations[sessionID] = append(p.locations[sessionID], update)
	return &update, nil
}

func (p *pageRepo) GetLocations(_ context.Context, sessionID string) ([]models.LocationUpdate, error) {
	return p.locations[sessionID], nil
}

func (p *pageRepo) DeleteSession(_ context.Context, sessionID string) error {
	if _, ok := p.sessions[sessionID]; !ok {
		return models.ErrSessionNotFound
	}
	delete(p.sessions, sessionID)
	return nil
}

func newPageEngine(repo service.SessionRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)

	gateway := sms.NewGateway("http://localhost:8080", nil)
	svc := service.NewSessionService(repo, gateway, nil)
	pages := NewPageController(svc, "http://localhost:8080")

	r := gin.New()
	r.SetHTMLTemplate(Templates())
	r.GET("/", pages.SharePage)
	r.POST("/share", pages.SubmitShare)
	r.GET("/send", pages.SendPage)
	r.POST("/send", pages.SubmitSendPage)
	r.GET("/sessions", pages.SessionsPage)
	return r
}

func get(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postForm(t *testing.T, r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSharePageAcceptsTrackingIDFromURL(t *testing.T) {
	repo := newPageRepo()
	session := repo.seed(false)
	r := newPageEngine(repo)

	w := get(t, r, "/?tracking_id="+session.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, session.RecipientPhone) {
		t.Fatal("share page should show the recipient")
	}
	if !strings.Contains(body, "Please check in") {
		t.Fatal("share page should show the request message")
	}
}

func TestSharePageWithoutIDOffersManualPaste(t *testing.T) {
	r := newPageEngine(newPageRepo())

	w := get(t, r, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `name="tracking_id"`) {
		t.Fatal("share page should offer a manual tracking id field")
	}
}

func TestSharePageExpiredLink(t *testing.T) {
	repo := newPageRepo()
	session := repo.seed(true)
	r := newPageEngine(repo)

	w := get(t, r, "/?tracking_id="+session.ID)
	if w.Code != http.StatusGone {
		t.Fatalf("status = %d, want 410", w.Code)
	}
	if !strings.Contains(w.Body.String(), "expired") {
		t.Fatal("expired link should render the expiry message")
	}
}

func TestSubmitShareRecordsLocation(t *testing.T) {
	repo := newPageRepo()
	session := repo.seed(false)
	r := newPageEngine(repo)

	w := postForm(t, r, "/share", url.Values{
		"tracking_id": {session.ID},
		"latitude":    {"40.7128"},
		"longitude":   {"-74.0060"},
		"accuracy":    {"25"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if len(repo.locations[session.ID]) != 1 {
		t.Fatalf("location count = %d", len(repo.locations[session.ID]))
	}
	if repo.sessions[session.ID].Status != models.StatusActive {
		t.Fatal("first share should activate the session")
	}
}

func TestSendPageFlow(t *testing.T) {
	repo := newPageRepo()
	r := newPageEngine(repo)

	w := postForm(t, r, "/send", url.Values{
		"recipient_phone": {"+15551234567"},
		"message":         {"where are you"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	// Demo mode: page must surface the manual-share URL.
	if !strings.Contains(w.Body.String(), "tracking_id=") {
		t.Fatal("send result should show the tracking URL")
	}
	if len(repo.sessions) != 1 {
		t.Fatalf("expected one session, got %d", len(repo.sessions))
	}
}

func TestSessionsPageListsAndLinksCSV(t *testing.T) {
	repo := newPageRepo()
	session := repo.seed(false)
	acc := 25.0
	if _, err := repo.RecordLocation(context.Background(), session.ID, 40.7128, -74.006, &acc); err != nil {
		t.Fatalf("seed location: %v", err)
	}
	r := newPageEngine(repo)

	w := get(t, r, "/sessions?id="+session.ID)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, "/api/sessions/"+session.ID+"/locations/export") {
		t.Fatal("sessions page should link the CSV export")
	}
	if !strings.Contains(body, "25m") {
		t.Fatal("sessions page should render the accuracy in meters")
	}
}
