package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/2003abishek/sms-tracker/src/config"
	"github.com/2003abishek/sms-tracker/src/db"
	"github.com/2003abishek/sms-tracker/src/rabbitmq"
	"github.com/2003abishek/sms-tracker/src/router"
)

// Server represents the HTTP server
type Server struct {
	config          *config.GlobalConfig
	database        *db.DB
	publisher       rabbitmq.Publisher
	http            *http.Server
	shutdownHandler ShutdownHandlerInterface
}

// NewServer creates a new server instance
func NewServer(cfg *config.GlobalConfig) (*Server, error) {
	// Initialize database connection
	database, err := db.NewDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	publisher, err := newPublisher(cfg)
	if err != nil {
		database.Close()
		return nil, err
	}

	server := &Server{
		config:    cfg,
		database:  database,
		publisher: publisher,
	}

	// Create and assign shutdown handler
	server.shutdownHandler = NewShutdownHandler(server)

	return server, nil
}

// newPublisher connects the lifecycle event publisher, or installs the no-op
// publisher when RabbitMQ is not configured.
func newPublisher(cfg *config.GlobalConfig) (rabbitmq.Publisher, error) {
	if cfg.RabbitMQURL == "" {
		slog.Info("RabbitMQ not configured, lifecycle events disabled")
		return rabbitmq.NopPublisher{}, nil
	}

	publisher, err := rabbitmq.NewAMQPPublisher(cfg.RabbitMQURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	slog.Info("RabbitMQ lifecycle event publisher connected")
	return publisher, nil
}

// Run starts the server with graceful shutdown using ShutdownHandler
func (s *Server) Run() error {
	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, syscall.SIGINT, syscall.SIGTERM)

	serverDone := s.startServerGoroutine()

	return s.shutdownHandler.HandleShutdown(serverDone, osSignals)
}

// startServerGoroutine starts the HTTP server in a goroutine and returns a channel for errors
func (s *Server) startServerGoroutine() chan error {
	serverDone := make(chan error, 1)

	go func() {
		r := router.NewRouter(s.config, s.database, s.publisher)
		// Create HTTP server
		httpServer := &http.Server{
			Addr:    fmt.Sprintf("%s:%s", s.config.GetHost(), s.config.GetPort()),
			Handler: r,
		}
		s.http = httpServer

		slog.Info("Starting tracking service",
			"host", s.config.GetHost(),
			"port", s.config.GetPort())

		serverDone <- s.startServer()
	}()

	return serverDone
}

// startServer starts the HTTP server and handles errors
func (s *Server) startServer() error {
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
