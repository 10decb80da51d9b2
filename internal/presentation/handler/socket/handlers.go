package socket

import (
	"context"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/herald-chat/herald/internal/infrastructure/gateway"
	"github.com/herald-chat/herald/internal/infrastructure/json"
	"github.com/herald-chat/herald/internal/infrastructure/registry"
	"github.com/herald-chat/herald/internal/infrastructure/ws"
)

type Options struct {
	// AllowedOrigins gates the upgrade; "*" allows everything.
	AllowedOrigins []string
	SendBuffer     int
	MaxFrameBytes  int64
}

type Handler struct {
	gateway  *gateway.Gateway
	upgrader websocket.Upgrader
	opts     Options
}

func NewHandler(g *gateway.Gateway, opts Options) *Handler {
	h := &Handler{gateway: g, opts: opts}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.opts.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// ServeHandler godoc
// @Summary      Open the event socket
// @Description  Upgrades to a WebSocket carrying JSON frames {event, data, ackId?}. Identity comes from the X-User-ID header or the userId query parameter.
// @Tags         socket
// @Param        userId query string false "User id when the header is absent"
// @Success      101 {object} map[string]interface{} "Switching Protocols"
// @Failure      400 {object} json.ErrorResponse "Missing user identity"
// @Router       /ws [get]
func (h *Handler) ServeHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		userID = r.URL.Query().Get("userId")
	}
	if userID == "" {
		json.WriteBadRequestError(w, "missing user identity")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		log.Printf("ws upgrade failed for user %s: %v", userID, err)
		return
	}

	connID := uuid.NewString()
	client := ws.NewClient(conn, connID, userID, ws.ClientOptions{
		SendBuffer:    h.opts.SendBuffer,
		MaxFrameBytes: h.opts.MaxFrameBytes,
	})
	c := registry.NewConnection(connID, userID, client)

	h.gateway.Connect(r.Context(), c)

	go client.WritePump()

	// Blocks until the peer goes away. Frames are handled serially, so
	// per-connection ordering is preserved end to end. The background
	// context keeps teardown-time dispatches alive past the request.
	client.ReadPump(func(frame *ws.Frame) {
		h.gateway.Dispatch(context.Background(), c, frame)
	})

	h.gateway.Disconnect(context.Background(), connID)
}
