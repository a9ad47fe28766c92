package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/zaqqye/room_console/internal/config"
	"github.com/zaqqye/room_console/internal/console"
	"github.com/zaqqye/room_console/internal/controllers"
	"github.com/zaqqye/room_console/internal/middleware"
	"github.com/zaqqye/room_console/internal/ws"
)

type Deps struct {
	Cfg      *config.Config
	Pages    console.PageDeps
	Hub      *ws.PageHub
	Sessions *middleware.SessionManager
	Location *time.Location
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// Register wires the console: pages, page websocket, streams, QR images
// and metrics.
func Register(r *gin.Engine, d Deps) error {
	tmpl, err := console.Templates()
	if err != nil {
		return err
	}
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", http.FS(console.Static()))

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	ready := d.Pages.Ready
	authCtrl := &controllers.AuthController{
		Sessions:     d.Sessions,
		PasswordHash: d.Cfg.AdminPassword,
		Logger:       d.Logger.Named("auth"),
	}
	pageCtrl := &controllers.PageController{
		Ready:     ready,
		Location:  d.Location,
		QRSeconds: d.Cfg.QRSeconds,
		ReadyWait: d.Cfg.ConfigFetchTimeout,
		Logger:    d.Logger.Named("pages"),
	}
	roomCtrl := &controllers.RoomController{
		Ready:   ready,
		Hub:     d.Hub,
		BaseURL: d.Cfg.BaseURL,
		Logger:  d.Logger.Named("rooms"),
	}

	gated := r.Group("/", middleware.SessionGate(d.Sessions))
	{
		gated.GET("/login", authCtrl.LoginPage)
		gated.POST("/login", authCtrl.Login)
		gated.POST("/logout", authCtrl.Logout)

		gated.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/rooms") })
		gated.GET("/rooms", pageCtrl.Rooms)
		gated.GET("/rooms/new", pageCtrl.NewRoom)
		gated.GET("/rooms/:id/qr.png", roomCtrl.QRCode)
		gated.GET("/report", pageCtrl.Report)
		gated.GET("/report/rows", pageCtrl.ReportRows)

		gated.DELETE("/api/rooms/:id", roomCtrl.DeleteRoom)
		gated.GET("/pages/:page/streams/:key", roomCtrl.Stream)
		gated.GET("/ws", ws.PageHandler(d.Hub, d.Pages, d.Logger.Named("ws")))
	}
	return nil
}

// RegisterConfigServer wires the backend config endpoint.
func RegisterConfigServer(r *gin.Engine, cfg *config.Config, logger *zap.Logger) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

	cfgCtrl := &controllers.ConfigController{Backend: cfg.Backend, BaseURL: cfg.BaseURL, Logger: logger}
	r.GET("/health", cfgCtrl.Health)
	r.GET("/backend-config", cfgCtrl.BackendConfig)
}
