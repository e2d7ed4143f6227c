package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/2003abishek/sms-tracker/src/models"
	"github.com/2003abishek/sms-tracker/src/rabbitmq"
	"github.com/2003abishek/sms-tracker/src/schemas"
	"github.com/2003abishek/sms-tracker/src/sms"
)

// SessionRepository is the persistence surface the lifecycle service needs.
type SessionRepository interface {
	CreateSession(ctx context.Context, senderPhone, recipientPhone, message string) (*models.TrackingSession, error)
	GetSessionByID(ctx context.Context, sessionID string) (*models.TrackingSession, error)
	ListSessions(ctx context.Context) ([]models.TrackingSession, error)
	RecordLocation(ctx context.Context, sessionID string, latitude, longitude float64, accuracy *float64) (*models.LocationUpdate, error)
	GetLocations(ctx context.Context, sessionID string) ([]models.LocationUpdate, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// SessionService owns the tracking-session lifecycle: creation, status
// transitions, location appends and expiry.
type SessionService struct {
	repo      SessionRepository
	gateway   sms.Gateway
	publisher rabbitmq.Publisher
	now       func() time.Time
}

func NewSessionService(repo SessionRepository, gateway sms.Gateway, publisher rabbitmq.Publisher) *SessionService {
	if publisher == nil {
		publisher = rabbitmq.NopPublisher{}
	}
	return &SessionService{
		repo:      repo,
		gateway:   gateway,
		publisher: publisher,
		now:       time.Now,
	}
}

// CreateSession validates the recipient, persists a new pending session and
// then dispatches the tracking link. The gateway's outcome is reported to the
// caller but never rolls the session back: once the row is committed it
// survives any notification failure.
func (s *SessionService) CreateSession(ctx context.Context, senderPhone, recipientPhone, message string) (*models.TrackingSession, sms.Outcome, error) {
	if recipientPhone == "" {
		return nil, sms.Outcome{}, schemas.NewBadRequestError(
			models.ErrRecipientRequired.Error(),
			"/api/sessions",
		)
	}

	session, err := s.repo.CreateSession(ctx, senderPhone, recipientPhone, message)
	if err != nil {
		return nil, sms.Outcome{}, schemas.NewInternalError(
			fmt.Sprintf("failed to create tracking session: %v", err),
			"/api/sessions",
		)
	}

	outcome := s.gateway.SendTrackingLink(ctx, session.RecipientPhone, session.ID, session.Message)

	s.publishEvent(models.LifecycleEvent{
		Event:          models.EventSessionCreated,
		SessionID:      session.ID,
		RecipientPhone: session.RecipientPhone,
		At:             s.now().UTC(),
	})

	return session, outcome, nil
}

// GetSession is a read-only lookup with no side effects. Callers overlay
// expiry with EffectiveStatus.
func (s *SessionService) GetSession(ctx context.Context, sessionID string) (*models.TrackingSession, error) {
	session, err := s.repo.GetSessionByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, models.ErrSessionNotFound) {
			return nil, schemas.InvalidSessionError(sessionID, "/api/sessions/"+sessionID)
		}
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to get session: %v", err),
			"/api/sessions/"+sessionID,
		)
	}
	return session, nil
}

// ListSessions returns all sessions, newest first.
func (s *SessionService) ListSessions(ctx context.Context) ([]models.TrackingSession, error) {
	sessions, err := s.repo.ListSessions(ctx)
	if err != nil {
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to list sessions: %v", err),
			"/api/sessions",
		)
	}
	return sessions, nil
}

// RecordLocation appends a coordinate report to a session. Coordinates are
// validated before any write; expired links are rejected; the pending->active
// flip and the insert commit in one transaction.
func (s *SessionService) RecordLocation(ctx context.Context, sessionID string, latitude, longitude float64, accuracy *float64) (*models.LocationUpdate, error) {
	instance := "/api/sessions/" + sessionID + "/locations"

	if !models.ValidCoordinates(latitude, longitude) {
		return nil, schemas.InvalidCoordinatesError(
			fmt.Sprintf("latitude must be in [-90,90] and longitude in [-180,180], got (%v, %v)", latitude, longitude),
			instance,
		)
	}
	if accuracy != nil && *accuracy < 0 {
		return nil, schemas.InvalidCoordinatesError(models.ErrNegativeAccuracy.Error(), instance)
	}

	session, err := s.repo.GetSessionByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, models.ErrSessionNotFound) {
			return nil, schemas.InvalidSessionError(sessionID, instance)
		}
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to get session: %v", err),
			instance,
		)
	}

	if session.IsExpired(s.now()) {
		return nil, schemas.SessionExpiredError(sessionID, instance)
	}

	update, err := s.repo.RecordLocation(ctx, sessionID, latitude, longitude, accuracy)
	if err != nil {
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to record location: %v", err),
			instance,
		)
	}

	// First successful update activates the session.
	if session.Status == models.StatusPending {
		s.publishEvent(models.LifecycleEvent{
			Event:     models.EventSessionActivated,
			SessionID: sessionID,
			At:        s.now().UTC(),
		})
	}

	return update, nil
}

// DeleteSession removes a session together with its location history.
func (s *SessionService) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.repo.DeleteSession(ctx, sessionID); err != nil {
		if errors.Is(err, models.ErrSessionNotFound) {
			return schemas.InvalidSessionError(sessionID, "/api/sessions/"+sessionID)
		}
		return schemas.NewInternalError(
			fmt.Sprintf("failed to delete session: %v", err),
			"/api/sessions/"+sessionID,
		)
	}
	return nil
}

// GetLocations returns a session's history in chronological order.
func (s *SessionService) GetLocations(ctx context.Context, sessionID string) ([]models.LocationUpdate, error) {
	instance := "/api/sessions/" + sessionID + "/locations"

	if _, err := s.repo.GetSessionByID(ctx, sessionID); err != nil {
		if errors.Is(err, models.ErrSessionNotFound) {
			return nil, schemas.InvalidSessionError(sessionID, instance)
		}
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to get session: %v", err),
			instance,
		)
	}

	locations, err := s.repo.GetLocations(ctx, sessionID)
	if err != nil {
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to get locations: %v", err),
			instance,
		)
	}
	return locations, nil
}

// LocationsCSV renders a session's history as CSV with columns
// Timestamp, Latitude, Longitude, Accuracy.
func (s *SessionService) LocationsCSV(ctx context.Context, sessionID string) ([]byte, error) {
	locations, err := s.GetLocations(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Timestamp", "Latitude", "Longitude", "Accuracy"}); err != nil {
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to write csv: %v", err),
			"/api/sessions/"+sessionID+"/locations/export",
		)
	}

	for _, loc := range locations {
		accuracy := "N/A"
		if loc.Accuracy != nil {
			accuracy = strconv.FormatFloat(*loc.Accuracy, 'f', -1, 64) + "m"
		}
		record := []string{
			loc.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			strconv.FormatFloat(loc.Latitude, 'f', -1, 64),
			strconv.FormatFloat(loc.Longitude, 'f', -1, 64),
			accuracy,
		}
		if err := w.Write(record); err != nil {
			return nil, schemas.NewInternalError(
				fmt.Sprintf("failed to write csv: %v", err),
				"/api/sessions/"+sessionID+"/locations/export",
			)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, schemas.NewInternalError(
			fmt.Sprintf("failed to flush csv: %v", err),
			"/api/sessions/"+sessionID+"/locations/export",
		)
	}

	return buf.Bytes(), nil
}

// publishEvent marshals and publishes a lifecycle event. Failures are logged
// and dropped; event publishing never fails a request.
func (s *SessionService) publishEvent(event models.LifecycleEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal lifecycle event", "event", event.Event, "error", err)
		return
	}
	if err := s.publisher.Publish(rabbitmq.LifecycleExchange, body); err != nil {
		slog.Warn("Failed to publish lifecycle event",
			"event", event.Event,
			"session_id", event.SessionID,
			"error", err)
	}
}
