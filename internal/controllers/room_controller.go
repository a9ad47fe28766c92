package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zaqqye/room_console/internal/capture"
	"github.com/zaqqye/room_console/internal/console"
	"github.com/zaqqye/room_console/internal/remoteconfig"
	"github.com/zaqqye/room_console/internal/store"
	"github.com/zaqqye/room_console/internal/ws"
)

type RoomController struct {
	Ready   *remoteconfig.Ready
	Hub     *ws.PageHub
	BaseURL string
	Logger  *zap.Logger
}

func (rc *RoomController) backend(c *gin.Context) (store.RoomStore, bool) {
	if !rc.Ready.Settled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "backend not ready"})
		return nil, false
	}
	st, err := rc.Ready.Wait(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": remoteconfig.BannerText})
		return nil, false
	}
	return st, true
}

func (rc *RoomController) DeleteRoom(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	st, ok := rc.backend(c)
	if !ok {
		return
	}
	if err := st.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		rc.Logger.Warn("delete room failed", zap.String("room_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// QRCode renders the PNG that points at a room's console page.
func (rc *RoomController) QRCode(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	base := rc.BaseURL
	if base == "" {
		base = "http://" + c.Request.Host
	}
	png, err := console.QRPNG(console.RoomURL(base, id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

// Stream serves a page's live camera feed as MJPEG.
func (rc *RoomController) Stream(c *gin.Context) {
	page, ok := rc.Hub.Page(c.Param("page"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
		return
	}
	src, ok := page.Stream(c.Request.Context(), c.Param("key"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "stream not active"})
		return
	}
	if err := capture.ServeMJPEG(c.Request.Context(), c.Writer, src); err != nil {
		rc.Logger.Debug("stream viewer left", zap.Error(err))
	}
}
