package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zaqqye/room_console/internal/config"
	"github.com/zaqqye/room_console/internal/models"
)

// ConfigController serves the backend parameters the console loads at start.
type ConfigController struct {
	Backend config.BackendValues
	BaseURL string
	Logger  *zap.Logger
}

func (cc *ConfigController) BackendConfig(c *gin.Context) {
	b := cc.Backend
	if b.APIKey == "" || b.AuthDomain == "" || b.ProjectID == "" {
		cc.Logger.Error("missing required backend environment variables")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server configuration is incomplete."})
		return
	}
	c.JSON(http.StatusOK, models.BackendConfig{
		APIKey:            b.APIKey,
		AuthDomain:        b.AuthDomain,
		ProjectID:         b.ProjectID,
		StorageBucket:     b.StorageBucket,
		MessagingSenderID: b.MessagingSenderID,
		AppID:             b.AppID,
		MeasurementID:     b.MeasurementID,
		DatabaseURL:       b.DatabaseURL,
	})
}

func (cc *ConfigController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"base_url":  cc.BaseURL,
		"endpoints": []string{
			"GET /backend-config - backend connection parameters",
			"GET /health - Health check",
		},
	})
}
