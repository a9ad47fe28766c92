package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zaqqye/room_console/internal/console"
	"github.com/zaqqye/room_console/internal/middleware"
	"github.com/zaqqye/room_console/internal/remoteconfig"
)

// PageController renders the gated console pages. Live content arrives over
// the page websocket; the report body is fetched from ReportRows.
type PageController struct {
	Ready     *remoteconfig.Ready
	Location  *time.Location
	QRSeconds int
	ReadyWait time.Duration
	Logger    *zap.Logger
}

func (pc *PageController) data(c *gin.Context, title string, mode console.PageMode) console.PageData {
	return console.PageData{
		Title:     title,
		Mode:      mode.String(),
		Admin:     middleware.CurrentAdmin(c),
		Banner:    pc.Ready.Banner(),
		QRSeconds: pc.QRSeconds,
	}
}

func (pc *PageController) Rooms(c *gin.Context) {
	c.HTML(http.StatusOK, "rooms.html", pc.data(c, "Rooms", console.ModeRooms))
}

func (pc *PageController) NewRoom(c *gin.Context) {
	c.HTML(http.StatusOK, "room_form.html", pc.data(c, "Add room", console.ModeCreate))
}

func (pc *PageController) Report(c *gin.Context) {
	c.HTML(http.StatusOK, "report.html", pc.data(c, "Report", console.ModeReport))
}

// ReportRows is the one-shot read behind the report table.
func (pc *PageController) ReportRows(c *gin.Context) {
	ctx := c.Request.Context()
	if pc.ReadyWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, pc.ReadyWait)
		defer cancel()
	}
	st, err := pc.Ready.Wait(ctx)
	if err != nil {
		pc.Logger.Warn("report without backend", zap.Error(err))
		html, _ := console.RenderReportError("Failed to load the report.")
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
		return
	}
	view := console.NewReportView(st, pc.Location, pc.Logger)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(view.RenderRows(c.Request.Context())))
}
