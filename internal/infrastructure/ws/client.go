package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second

	defaultSendBuffer    = 256
	defaultMaxFrameBytes = 32768 // 32KB max frame size
)

// Client pumps frames between one websocket peer and the gateway. It
// implements Sender; a full send buffer drops the connection rather
// than blocking a broadcast.
type Client struct {
	conn   *connWrapper
	ID     string `json:"id"`
	UserID string `json:"userId"`

	send          chan *OutFrame
	maxFrameBytes int64

	// Protection against double-close and race conditions
	closeOnce sync.Once
	closed    chan struct{} // signals when client is closed
}

type ClientOptions struct {
	SendBuffer    int
	MaxFrameBytes int64
}

func NewClient(conn *websocket.Conn, id, userID string, opts ClientOptions) *Client {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaultSendBuffer
	}
	if opts.MaxFrameBytes <= 0 {
		opts.MaxFrameBytes = defaultMaxFrameBytes
	}

	return &Client{
		conn:          newConnWrapper(conn),
		ID:            id,
		UserID:        userID,
		send:          make(chan *OutFrame, opts.SendBuffer),
		maxFrameBytes: opts.MaxFrameBytes,
		closed:        make(chan struct{}),
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
	})
}

func (c *Client) IsClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// Send queues one frame for delivery. It never blocks: a peer that
// cannot drain its queue is cut loose.
func (c *Client) Send(frame *OutFrame) bool {
	select {
	case <-c.closed:
		return false
	default:
	}

	select {
	case c.send <- frame:
		return true
	case <-c.closed:
		return false
	default:
		log.Printf("send queue full (client %s), dropping connection", c.ID)
		c.Close()
		return false
	}
}

// ReadPump decodes inbound frames and hands them to handle until the
// peer goes away. Runs on the connection's goroutine; handle is called
// serially, so per-connection event order is preserved.
func (c *Client) ReadPump(handle func(*Frame)) {
	defer c.Close()

	c.conn.conn.SetReadLimit(c.maxFrameBytes)
	_ = c.conn.conn.SetReadDeadline(time.Now().Add(pongWait))

	c.conn.conn.SetPongHandler(func(string) error {
		_ = c.conn.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.closed:
			return
		default:
		}

		_, raw, err := c.conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws read error (client %s): %v", c.ID, err)
			}
			return
		}

		if len(raw) == 0 {
			continue
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.Send(NewError("malformed frame"))
			continue
		}

		if frame.Event == "" {
			c.Send(NewError("missing event name"))
			continue
		}

		handle(&frame)
	}
}

// WritePump drains the send queue and keeps the connection alive with
// pings.
func (c *Client) WritePump() {
	defer c.Close()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame := <-c.send:
			if err := c.conn.WriteJSON(frame, writeWait); err != nil {
				log.Printf("ws write error (client %s): %v", c.ID, err)
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, writeWait); err != nil {
				log.Printf("ping error (client %s): %v", c.ID, err)
				return
			}

		case <-c.closed:
			_ = c.conn.WriteControl(websocket.CloseMessage, writeWait)
			return
		}
	}
}
