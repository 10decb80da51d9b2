package rooms

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/herald-chat/herald/internal/domain"
	"github.com/herald-chat/herald/internal/infrastructure/chat"
	"github.com/herald-chat/herald/internal/infrastructure/gateway"
	"github.com/herald-chat/herald/internal/infrastructure/json"
	"github.com/herald-chat/herald/internal/infrastructure/rooms"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type Handler struct {
	directory *rooms.Directory
	chat      *chat.Manager
	audit     domain.RoomAuditRepository
	publisher gateway.EventPublisher
}

func NewHandler(
	directory *rooms.Directory,
	chatManager *chat.Manager,
	audit domain.RoomAuditRepository,
	publisher gateway.EventPublisher,
) *Handler {
	if publisher == nil {
		publisher = gateway.NopPublisher{}
	}
	return &Handler{
		directory: directory,
		chat:      chatManager,
		audit:     audit,
		publisher: publisher,
	}
}

// ListRoomsHandler godoc
// @Summary      List public rooms
// @Description  Returns public rooms with live occupancy, sorted by name
// @Tags         rooms
// @Produce      json
// @Param        limit query int false "Page size" default(20) maximum(100)
// @Param        offset query int false "Entries to skip" default(0)
// @Success      200 {object} listRoomsResponse "Room page"
// @Router       /rooms [get]
func (h *Handler) ListRoomsHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	all := h.directory.List()
	total := len(all)

	page := []rooms.Summary{}
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		page = all[offset:end]
	}

	json.Write(w, http.StatusOK, listRoomsResponse{
		Rooms:  page,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// CreateRoomHandler godoc
// @Summary      Create a new room
// @Description  Registers a room in the directory and returns its metadata
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Param        request body createRoomRequest true "Room metadata"
// @Success      201 {object} domain.Room "Room created"
// @Failure      400 {object} json.ErrorResponse "Validation error"
// @Failure      409 {object} json.ErrorResponse "Room already exists"
// @Failure      500 {object} json.ErrorResponse "Internal server error"
// @Router       /rooms [post]
func (h *Handler) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	createdBy := req.CreatedBy
	if createdBy == "" {
		createdBy = r.Header.Get("X-User-ID")
	}
	if createdBy == "" {
		json.WriteBadRequestError(w, "createdBy is required")
		return
	}

	room, err := domain.NewRoom(req.Name, req.Topic, createdBy, req.Capacity, domain.Visibility(req.Visibility))
	if err != nil {
		json.WriteValidationError(w, err)
		return
	}

	ctx := r.Context()
	if err := h.directory.Create(room); err != nil {
		switch {
		case errors.Is(err, domain.ErrRoomExists):
			json.WriteError(w, http.StatusConflict, err, "A room with that name already exists")
		case errors.Is(err, domain.ErrInvalidInput):
			json.WriteValidationError(w, err)
		default:
			log.Printf("Failed to create room %s: %v", room.Name, err)
			json.WriteInternalError(w, err)
		}
		return
	}

	if err := h.publisher.RoomCreated(ctx, *room); err != nil {
		log.Printf("Error publishing room created: %v", err)
	}

	json.Write(w, http.StatusCreated, room)
}

// GetRoomHandler godoc
// @Summary      Get room details
// @Description  Returns one room with its live occupancy, any visibility
// @Tags         rooms
// @Produce      json
// @Param        roomId path string true "Room ID"
// @Success      200 {object} rooms.Summary "Room details"
// @Failure      404 {object} json.ErrorResponse "Room not found"
// @Router       /rooms/{roomId} [get]
func (h *Handler) GetRoomHandler(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		json.WriteValidationError(w, domain.ErrInvalidRoom)
		return
	}

	summary, err := h.directory.Info(roomID)
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			json.WriteError(w, http.StatusNotFound, err, "Room not found")
			return
		}
		json.WriteValidationError(w, err)
		return
	}

	json.Write(w, http.StatusOK, summary)
}

// GetRoomHistoryHandler godoc
// @Summary      Get room message history
// @Description  Pages backward from the most recent buffered message. Unknown rooms yield an empty page.
// @Tags         rooms
// @Produce      json
// @Param        roomId path string true "Room ID"
// @Param        limit query int false "Page size" default(20) maximum(100)
// @Param        offset query int false "Messages to skip, counted from the end" default(0)
// @Success      200 {object} historyResponse "Message page"
// @Failure      403 {object} json.ErrorResponse "Room is private"
// @Router       /rooms/{roomId}/history [get]
func (h *Handler) GetRoomHistoryHandler(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		json.WriteValidationError(w, domain.ErrInvalidRoom)
		return
	}

	// Implicit chat rooms have no directory entry and are treated as
	// public. Registered private rooms keep their history off the REST
	// surface.
	if room, err := h.directory.Get(roomID); err == nil && room.Visibility == domain.VisibilityPrivate {
		json.WriteError(w, http.StatusForbidden, domain.ErrRoomPrivate, "Room is private")
		return
	}

	limit, offset := pageParams(r)
	messages, total := h.chat.History(roomID, limit, offset)

	json.Write(w, http.StatusOK, historyResponse{
		Messages: messages,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	})
}

// GetRoomAuditHandler godoc
// @Summary      Get room audit trail
// @Description  Returns the newest audit entries recorded for a room
// @Tags         rooms
// @Produce      json
// @Param        roomId path string true "Room ID"
// @Param        limit query int false "Max entries" default(20) maximum(100)
// @Success      200 {object} auditResponse "Audit entries"
// @Failure      503 {object} json.ErrorResponse "Audit log not enabled"
// @Router       /rooms/{roomId}/audit [get]
func (h *Handler) GetRoomAuditHandler(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		json.WriteValidationError(w, domain.ErrInvalidRoom)
		return
	}

	if h.audit == nil {
		json.WriteError(w, http.StatusServiceUnavailable, errors.New("audit disabled"), "Audit log is not enabled")
		return
	}

	limit, _ := pageParams(r)
	entries, err := h.audit.GetByRoomID(r.Context(), roomID, limit)
	if err != nil {
		log.Printf("Failed to read audit log for room %s: %v", roomID, err)
		json.WriteInternalError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.RoomAuditLog{}
	}

	json.Write(w, http.StatusOK, auditResponse{Entries: entries})
}

func pageParams(r *http.Request) (limit, offset int) {
	limit = defaultPageLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			offset = v
		}
	}
	return limit, offset
}
