package ws

import (
	"context"
	"time"

	"github.com/zaqqye/room_console/internal/console"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 256
	maxCommandSize = 4096
)

type lookupRequest struct {
	pageID string
	reply  chan *console.Page
}

// PageHub tracks the open page instances so HTTP handlers can reach them.
type PageHub struct {
	register   chan *pageClient
	unregister chan *pageClient
	lookup     chan lookupRequest
	count      chan chan int
	clients    map[string]*pageClient
	done       chan struct{}
}

func NewPageHub() *PageHub {
	return &PageHub{
		register:   make(chan *pageClient),
		unregister: make(chan *pageClient),
		lookup:     make(chan lookupRequest),
		count:      make(chan chan int),
		clients:    make(map[string]*pageClient),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx ends, then closes every connection.
func (h *PageHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.clients[client.page.ID] = client
		case client := <-h.unregister:
			if stored, ok := h.clients[client.page.ID]; ok && stored == client {
				delete(h.clients, client.page.ID)
			}
		case req := <-h.lookup:
			var page *console.Page
			if client, ok := h.clients[req.pageID]; ok {
				page = client.page
			}
			req.reply <- page
		case reply := <-h.count:
			reply <- len(h.clients)
		case <-ctx.Done():
			for id, client := range h.clients {
				client.conn.Close()
				delete(h.clients, id)
			}
			return
		}
	}
}

// Page returns the open page with id, if any.
func (h *PageHub) Page(id string) (*console.Page, bool) {
	reply := make(chan *console.Page, 1)
	select {
	case h.lookup <- lookupRequest{pageID: id, reply: reply}:
	case <-h.done:
		return nil, false
	}
	page := <-reply
	return page, page != nil
}

func (h *PageHub) Len() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
	case <-h.done:
		return 0
	}
	return <-reply
}

func (h *PageHub) add(c *pageClient) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *PageHub) remove(c *pageClient) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
