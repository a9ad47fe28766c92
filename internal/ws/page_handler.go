package ws

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zaqqye/room_console/internal/console"
)

// CheckOrigin is left nil, so only same-origin pages can connect with the
// session cookie.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// PageHandler upgrades /ws?mode=... into a page instance. The session gate
// runs before it.
func PageHandler(hub *PageHub, deps console.PageDeps, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if hub == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "realtime not available"})
			return
		}
		mode, err := console.ParseMode(c.Query("mode"))
		if err != nil || !mode.Live() {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid page mode"})
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		id := uuid.NewString()
		client := newPageClient(hub, conn, logger.With(zap.String("page_id", id)))
		client.page = console.NewPage(id, mode, deps, client)
		if !hub.add(client) {
			client.close()
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		go client.page.Run(ctx)
		go client.writePump()
		client.readPump()

		// The socket is gone: that is page unload.
		cancel()
		<-client.page.Done()
	}
}
