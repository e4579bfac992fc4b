package config

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

type WebSocket struct {
	Upgrader     websocket.Upgrader
	WriteTimeout time.Duration
	PingInterval time.Duration
	// EventBuffer is how many game events a slow client may lag behind
	// before events are dropped.
	EventBuffer int
}

func NewWebSocket() (*WebSocket, error) {
	writeTimeout, err := lookupDuration("WS_WRITE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	pingInterval, err := lookupDuration("WS_PING_INTERVAL", 30*time.Second)
	if err != nil {
		return nil, err
	}
	eventBuffer, err := lookupInt("WS_EVENT_BUFFER", 64)
	if err != nil {
		return nil, err
	}

	ws := &WebSocket{
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		WriteTimeout: writeTimeout,
		PingInterval: pingInterval,
		EventBuffer:  eventBuffer,
	}

	return ws, nil
}
