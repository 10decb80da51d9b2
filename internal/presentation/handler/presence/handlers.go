package presence

import (
	"net/http"
	"sort"

	"github.com/herald-chat/herald/internal/infrastructure/json"
	"github.com/herald-chat/herald/internal/infrastructure/registry"
)

type Handler struct {
	registry *registry.Registry
}

func NewHandler(reg *registry.Registry) *Handler {
	return &Handler{registry: reg}
}

// GetPresenceHandler godoc
// @Summary      Who is online
// @Description  Returns the distinct online users and connection counts
// @Tags         presence
// @Produce      json
// @Success      200 {object} presenceResponse "Presence snapshot"
// @Router       /presence [get]
func (h *Handler) GetPresenceHandler(w http.ResponseWriter, r *http.Request) {
	users := h.registry.OnlineUsers()
	sort.Strings(users)

	json.Write(w, http.StatusOK, presenceResponse{
		Online:      users,
		Users:       len(users),
		Connections: h.registry.Count(),
	})
}
