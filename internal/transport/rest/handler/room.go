package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"nottebuia/internal/model"
	"nottebuia/internal/service"
	"nottebuia/internal/transport/rest/middleware"
)

// RoomHandler handles the room lifecycle endpoints.
type RoomHandler struct {
	roomSvc *service.RoomService
}

// NewRoomHandler creates a new room handler.
func NewRoomHandler(roomSvc *service.RoomService) *RoomHandler {
	return &RoomHandler{roomSvc: roomSvc}
}

// CreateRoomRequest is the request body for creating a room.
type CreateRoomRequest struct {
	Name string `json:"name"`
}

// RoomResponse pairs the caller's player id with the sanitized room view.
type RoomResponse struct {
	PlayerID string              `json:"playerId,omitempty"`
	Room     *model.RoomSnapshot `json:"room"`
}

// Create handles POST /v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, err := h.roomSvc.Create(r.Context(), req.Name, middleware.GetAccountRef(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, RoomResponse{
		PlayerID: room.Players[0].PlayerID,
		Room:     room.Snapshot(),
	})
}

// Get handles GET /v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	room, err := h.roomSvc.Get(r.Context(), code)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room.Snapshot())
}

// List handles GET /v1/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.roomSvc.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if summaries == nil {
		summaries = []model.RoomSummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

// JoinRequest is the request body for joining a room.
type JoinRequest struct {
	Name string `json:"name"`
}

// Join handles POST /v1/rooms/{code}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	room, player, err := h.roomSvc.Join(r.Context(), code, req.Name, middleware.GetAccountRef(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, RoomResponse{
		PlayerID: player.PlayerID,
		Room:     room.Snapshot(),
	})
}

// LeaveRequest is the request body for leaving a room.
type LeaveRequest struct {
	PlayerID string `json:"playerId"`
}

// Leave handles POST /v1/rooms/{code}/leave
func (h *RoomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req LeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, "playerId is required")
		return
	}

	room, err := h.roomSvc.Leave(r.Context(), code, req.PlayerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RoomResponse{Room: room.Snapshot()})
}

// Start handles POST /v1/rooms/{code}/start
func (h *RoomHandler) Start(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	room, err := h.roomSvc.Start(r.Context(), code)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RoomResponse{Room: room.Snapshot()})
}

// EndRequest declares which side won the finished round.
type EndRequest struct {
	Winner string `json:"winner"`
}

// End handles POST /v1/rooms/{code}/end
func (h *RoomHandler) End(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req EndRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Winner != model.SideAssassino && req.Winner != model.SideCittadini {
		writeError(w, http.StatusBadRequest, "winner must be assassino or cittadini")
		return
	}

	room, err := h.roomSvc.End(r.Context(), code, req.Winner)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RoomResponse{Room: room.Snapshot()})
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrRoomExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNotEnoughPlayers):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotAuthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
