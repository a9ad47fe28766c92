package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zaqqye/room_console/internal/config"
	"github.com/zaqqye/room_console/internal/middleware"
	"github.com/zaqqye/room_console/internal/routes"
	"github.com/zaqqye/room_console/internal/utils"
)

func main() {
	// Load .env (non-fatal if missing in production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, err := utils.NewLogger(cfg.LogLevel, cfg.LogFormat, "room-configserver")
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync()

	if cfg.Backend.APIKey == "" || cfg.Backend.ProjectID == "" {
		logger.Warn("BACKEND_API_KEY or BACKEND_PROJECT_ID not set; /backend-config will answer 500")
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.GinLogger(logger.Named("http")))
	_ = r.SetTrustedProxies(nil)
	routes.RegisterConfigServer(r, cfg, logger.Named("config"))

	logger.Info("config server listening", zap.String("port", cfg.ConfigPort))
	if err := r.Run(":" + cfg.ConfigPort); err != nil {
		logger.Error("server exited with error", zap.Error(err))
		os.Exit(1)
	}
}
