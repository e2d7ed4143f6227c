package router

import (
	"github.com/2003abishek/sms-tracker/src/config"
	"github.com/2003abishek/sms-tracker/src/controller"
	"github.com/2003abishek/sms-tracker/src/db"
	"github.com/2003abishek/sms-tracker/src/middleware"
	"github.com/2003abishek/sms-tracker/src/rabbitmq"
	"github.com/2003abishek/sms-tracker/src/repository"
	"github.com/2003abishek/sms-tracker/src/service"
	"github.com/2003abishek/sms-tracker/src/sms"
	"github.com/2003abishek/sms-tracker/src/web"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with all controllers and routes wired.
func NewRouter(cfg *config.GlobalConfig, database *db.DB, publisher rabbitmq.Publisher) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog())
	router.SetHTMLTemplate(web.Templates())

	repo := repository.NewSessionRepository(database)
	gateway := sms.NewGatewayFromConfig(cfg)
	sessionService := service.NewSessionService(repo, gateway, publisher)

	sessionController := controller.NewSessionController(sessionService)
	healthController := controller.NewHealthController(database)
	pages := web.NewPageController(sessionService, cfg.ServerURL)

	api := router.Group("/api")
	{
		api.POST("/sessions", sessionController.CreateSession)
		api.GET("/sessions", sessionController.ListSessions)
		api.GET("/sessions/:id", sessionController.GetSession)
		api.DELETE("/sessions/:id", sessionController.DeleteSession)
		api.POST("/sessions/:id/locations", sessionController.RecordLocation)
		api.GET("/sessions/:id/locations", sessionController.GetLocations)
		api.GET("/sessions/:id/locations/export", sessionController.ExportLocationsCSV)
	}

	router.GET("/healthz", healthController.Healthz)

	// The three screens. The root path is the recipient-facing share page so
	// that SMS links of the form <server>/?tracking_id=<id> land directly on it.
	router.GET("/", pages.SharePage)
	router.POST("/share", pages.SubmitShare)
	router.GET("/send", pages.SendPage)
	router.POST("/send", pages.SubmitSendPage)
	router.GET("/sessions", pages.SessionsPage)

	return router
}
