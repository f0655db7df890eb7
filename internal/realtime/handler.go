package realtime

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/fieldworks/woms/internal/config"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin enforcement belongs to the gateway in front of this service.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades HTTP requests to websocket connections attached to the hub.
func Handler(hub *Hub, cfg config.RealtimeConfig, logger *zap.Logger) http.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	writeWait := cfg.WriteWait
	if writeWait <= 0 {
		writeWait = 10 * time.Second
	}
	pongWait := cfg.PongWait
	if pongWait <= 0 {
		pongWait = 60 * time.Second
	}
	sendBuffer := cfg.SendBuffer
	if sendBuffer <= 0 {
		sendBuffer = 32
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error.
			logger.Debug("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			hub:       hub,
			conn:      conn,
			send:      make(chan []byte, sendBuffer),
			logger:    logger,
			writeWait: writeWait,
			pongWait:  pongWait,
		}
		hub.register <- client

		go client.writePump()
		go client.readPump()
	}
}
