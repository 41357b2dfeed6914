package server

import (
	"net/http"

	"github.com/Garicore01/PlayBeat-Backend/core/access"
	"github.com/Garicore01/PlayBeat-Backend/logger"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from the frontend origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// SubscribeListHandler upgrades the connection and subscribes it to the
// list's event stream. The requester must be read-authorized for the list.
func (h *APIHandler) SubscribeListHandler(w http.ResponseWriter, r *http.Request) {
	_, list, err := h.loadListForAccess(r, access.Read)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", logger.ErrorField(err))
		return
	}

	h.hub.Subscribe(list.ID, conn)
	logger.Info("List subscriber connected",
		logger.Int64("listId", list.ID),
		logger.Int("subscribers", h.hub.SubscriberCount(list.ID)))
}
