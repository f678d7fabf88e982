package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/meera-jewels/retail-api/internal/events"
	"go.uber.org/zap"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// EventsHandler streams change notifications to console clients over
// WebSocket. Each connection subscribes to one floor topic; clients
// re-fetch through the REST API when a signal arrives.
type EventsHandler struct {
	bus      *events.Bus
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewEventsHandler(bus *events.Bus, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{
		bus: bus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origins are enforced by the CORS layer in front of the router
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// @Summary Subscribe to lead changes
// @Description Upgrades to a WebSocket that delivers a signal whenever the floor's leads change. Signals carry no lead data; clients must re-fetch.
// @Tags Events
// @Param floor query int true "Floor number"
// @Success 101 {string} string "Switching Protocols"
// @Router /events/leads [get]
func (h *EventsHandler) SubscribeLeads(w http.ResponseWriter, r *http.Request) {
	h.subscribe(w, r, events.LeadsTopic)
}

// @Summary Subscribe to report changes
// @Description Upgrades to a WebSocket that delivers a signal whenever a report is submitted for the floor
// @Tags Events
// @Param floor query int true "Floor number"
// @Success 101 {string} string "Switching Protocols"
// @Router /events/reports [get]
func (h *EventsHandler) SubscribeReports(w http.ResponseWriter, r *http.Request) {
	h.subscribe(w, r, events.ReportsTopic)
}

func (h *EventsHandler) subscribe(w http.ResponseWriter, r *http.Request, topicFor func(int) string) {
	floor, err := parseFloor(r.URL.Query().Get("floor"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid or missing floor parameter")
		return
	}
	topic := topicFor(floor)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	changes, err := h.bus.Subscribe(ctx, topic)
	if err != nil {
		h.logger.Error("failed to subscribe", zap.String("topic", topic), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to subscribe")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		h.logger.Warn("websocket upgrade failed", zap.String("topic", topic), zap.Error(err))
		return
	}
	defer conn.Close()

	h.logger.Debug("subscriber connected", zap.String("topic", topic))

	// Drain client frames so close and pong control messages are processed
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case change, ok := <-changes:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "bus closed"),
					time.Now().Add(wsWriteTimeout))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(change); err != nil {
				h.logger.Debug("subscriber write failed, closing",
					zap.String("topic", topic), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
