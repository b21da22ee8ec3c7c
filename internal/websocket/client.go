package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
)

// Request is a message sent by the client.
type Request struct {
	Op    string `json:"op"`
	Topic string `json:"topic"`
	ID    string `json:"id,omitempty"`
}

// Frame carries the full current value of a topic.
type Frame struct {
	Type  string `json:"type"`
	Topic string `json:"topic"`
	ID    string `json:"id,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

type listener struct {
	stream *Stream
	cancel context.CancelFunc
	done   chan struct{}
}

// Client represents a single WebSocket connection.
type Client struct {
	hub    *Hub
	conn   *ws.Conn
	send   chan []byte
	uid    string
	logger *slog.Logger

	// listeners is touched only by the read loop and by Run's cleanup.
	listeners map[Request]*listener
	wg        sync.WaitGroup
}

// NewClient creates a new Client for uid.
func NewClient(hub *Hub, conn *ws.Conn, uid string) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		uid:       uid,
		logger:    hub.logger.With("uid", uid),
		listeners: make(map[Request]*listener),
	}
}

// Run registers the client, starts the write pump, and runs the read pump.
// It blocks until the connection is closed, then stops every listener and
// unregisters.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(ctx)
	c.unlistenAll()
}

func (c *Client) readPump(ctx context.Context) {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			c.sendFrame(ctx, Frame{Type: "error", Error: "invalid message"})
			continue
		}
		c.handle(ctx, req)
	}
}

func (c *Client) handle(ctx context.Context, req Request) {
	key := Request{Topic: req.Topic, ID: req.ID}
	switch req.Op {
	case "listen":
		c.listen(ctx, key)
	case "unlisten":
		c.unlisten(key)
	default:
		c.sendFrame(ctx, Frame{Type: "error", Topic: req.Topic, ID: req.ID, Error: "unknown op"})
	}
}

// listen starts forwarding key's topic. Listening twice to the same key
// restarts it.
func (c *Client) listen(ctx context.Context, key Request) {
	topic, ok := c.hub.topic(key.Topic)
	if !ok {
		c.sendFrame(ctx, Frame{Type: "error", Topic: key.Topic, ID: key.ID, Error: "unknown topic"})
		return
	}
	c.unlisten(key)

	lctx, cancel := context.WithCancel(ctx)
	stream, err := topic(lctx, c.uid, key.ID)
	if err != nil {
		cancel()
		c.logger.Warn("listen failed", "topic", key.Topic, "id", key.ID, "error", err)
		c.sendFrame(ctx, Frame{Type: "error", Topic: key.Topic, ID: key.ID, Error: "listen failed"})
		return
	}

	l := &listener{stream: stream, cancel: cancel, done: make(chan struct{})}
	c.listeners[key] = l
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(l.done)
		for {
			select {
			case <-lctx.Done():
				return
			case data := <-stream.Updates():
				c.sendFrame(lctx, Frame{Type: "snapshot", Topic: key.Topic, ID: key.ID, Data: data})
			}
		}
	}()
}

func (c *Client) unlisten(key Request) {
	l, ok := c.listeners[key]
	if !ok {
		return
	}
	delete(c.listeners, key)
	l.cancel()
	<-l.done
	l.stream.Stop()
}

func (c *Client) unlistenAll() {
	for key := range c.listeners {
		c.unlisten(key)
	}
	c.wg.Wait()
}

// ListenerCount returns how many topics the client is listening to.
func (c *Client) ListenerCount() int {
	return len(c.listeners)
}

// sendFrame queues f, waiting for buffer space until ctx ends.
func (c *Client) sendFrame(ctx context.Context, f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		c.logger.Error("marshal frame", "topic", f.Topic, "error", err)
		return
	}
	select {
	case c.send <- data:
	case <-ctx.Done():
	}
}

// writePump drains the send channel and writes messages to the WebSocket.
// It also sends periodic pings to detect stale connections.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
