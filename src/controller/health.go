package controller

import (
	"net/http"

	"github.com/2003abishek/sms-tracker/src/db"

	"github.com/gin-gonic/gin"
)

type HealthController struct {
	Database *db.DB
}

func NewHealthController(database *db.DB) *HealthController {
	return &HealthController{Database: database}
}

// Healthz reports liveness, including a database ping.
func (hc *HealthController) Healthz(ctx *gin.Context) {
	if err := hc.Database.Ping(ctx.Request.Context()); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}
