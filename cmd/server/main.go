package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/zaqqye/room_console/internal/capture"
	"github.com/zaqqye/room_console/internal/config"
	"github.com/zaqqye/room_console/internal/console"
	"github.com/zaqqye/room_console/internal/database"
	"github.com/zaqqye/room_console/internal/metrics"
	"github.com/zaqqye/room_console/internal/middleware"
	"github.com/zaqqye/room_console/internal/models"
	"github.com/zaqqye/room_console/internal/remoteconfig"
	"github.com/zaqqye/room_console/internal/routes"
	"github.com/zaqqye/room_console/internal/store"
	"github.com/zaqqye/room_console/internal/utils"
	"github.com/zaqqye/room_console/internal/ws"
)

func main() {
	// room-console hash-password <plain> prints a value for ADMIN_PASSWORD.
	if len(os.Args) == 3 && os.Args[1] == "hash-password" {
		hashed, err := utils.HashPassword(os.Args[2])
		if err != nil {
			log.Fatalf("hash password: %v", err)
		}
		fmt.Println(hashed)
		return
	}

	// Load .env (non-fatal if missing in production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger, err := utils.NewLogger(cfg.LogLevel, cfg.LogFormat, cfg.ServiceID)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync()

	loc, err := time.LoadLocation(cfg.ReportTimezone)
	if err != nil {
		logger.Warn("unknown report timezone, using UTC", zap.String("timezone", cfg.ReportTimezone), zap.Error(err))
		loc = time.UTC
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	connect := func(ctx context.Context, backend models.BackendConfig) (store.RoomStore, error) {
		return database.OpenStore(ctx, cfg, backend, logger.Named("database"))
	}
	loader := remoteconfig.NewLoader(cfg.ConfigURL, cfg.ConfigFetchTimeout, connect, logger.Named("remoteconfig"))
	go func() {
		if _, err := loader.Load(ctx); err != nil {
			logger.Error("backend initialization failed", zap.Error(err))
		}
	}()

	hub := ws.NewPageHub()
	go hub.Run(ctx)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.GinLogger(logger.Named("http")))
	pages := console.PageDeps{
		Ready:     loader.Ready(),
		Devices:   capture.NewV4L2(cfg.V4L2Sysfs, cfg.FFmpegBin, logger.Named("capture")),
		Clock:     console.SystemClock,
		Metrics:   metrics.NewConsole(reg),
		Logger:    logger.Named("page"),
		BaseURL:   cfg.BaseURL,
		QRSeconds: cfg.QRSeconds,
	}
	sessions := middleware.NewSessionManager(middleware.SessionConfig{
		Secret:    cfg.SessionSecret,
		ExpiresIn: cfg.SessionTTL,
		Secure:    strings.HasPrefix(cfg.BaseURL, "https://"),
	})
	err = routes.Register(r, routes.Deps{
		Cfg:      cfg,
		Pages:    pages,
		Hub:      hub,
		Sessions: sessions,
		Location: loc,
		Gatherer: reg,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal("route setup failed", zap.Error(err))
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Info("console listening", zap.String("addr", srv.Addr), zap.String("config_url", cfg.ConfigURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server exited with error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	if st, err := loader.Ready().Wait(shutdownCtx); err == nil && st != nil {
		_ = st.Close()
	}
}
