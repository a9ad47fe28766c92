package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zaqqye/room_console/internal/console"
)

// pageClient is the websocket side of one page instance. It is the page's
// console.Sink.
type pageClient struct {
	hub    *PageHub
	conn   *websocket.Conn
	send   chan []byte
	page   *console.Page
	logger *zap.Logger
	done   chan struct{}
	once   sync.Once
}

func newPageClient(hub *PageHub, conn *websocket.Conn, logger *zap.Logger) *pageClient {
	return &pageClient{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Send queues m for the browser. A client that cannot keep up is dropped.
func (c *pageClient) Send(m console.Message) {
	data, err := json.Marshal(m)
	if err != nil {
		c.logger.Error("encode message", zap.String("type", m.Type), zap.Error(err))
		return
	}
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- data:
	case <-c.done:
	default:
		c.logger.Warn("send buffer full, closing page")
		c.close()
	}
}

func (c *pageClient) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (c *pageClient) readPump() {
	defer func() {
		c.hub.remove(c)
		c.close()
	}()
	c.conn.SetReadLimit(maxCommandSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("page connection closed", zap.Error(err))
			}
			return
		}
		var cmd console.Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			c.logger.Debug("bad command", zap.Error(err))
			continue
		}
		if !c.page.Dispatch(cmd) {
			return
		}
	}
}

func (c *pageClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()
	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
