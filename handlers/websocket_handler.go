package handlers

import (
	"log/slog"
	"net/http"

	"github.com/arenastack/tournament-registration/realtime"
	"github.com/arenastack/tournament-registration/services"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: ограничить Origin доменом фронтенда перед продакшеном.
		return true
	},
}

type WebSocketHandler struct {
	hub            *realtime.Hub
	catalogService services.CatalogService
	logger         *slog.Logger
}

func NewWebSocketHandler(hub *realtime.Hub, catalogService services.CatalogService, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:            hub,
		catalogService: catalogService,
		logger:         logger,
	}
}

// ServeTournament подписывает клиента на события одного турнира:
// GET /ws/tournaments/{tournamentID}.
func (h *WebSocketHandler) ServeTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := idParam(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if _, err := h.catalogService.GetTournament(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.serve(w, r, realtime.RoomForTournament(tournamentID))
}

// ServeAll подписывает клиента на события всех турниров: GET /ws/all.
func (h *WebSocketHandler) ServeAll(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, realtime.RoomAll)
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, room string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отправил HTTP-ошибку клиенту.
		h.logger.Warn("websocket upgrade failed",
			slog.String("room", room), slog.Any("error", err))
		return
	}

	client := &realtime.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: room,
	}
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
