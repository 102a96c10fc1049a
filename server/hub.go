package server

import (
	"encoding/json"
	"sync"
	"time"

	"SpectraFM/logger"

	"github.com/gorilla/websocket"
)

// MessageType names a WebSocket message.
type MessageType string

const (
	MsgTypeState    MessageType = "state"    // playback status
	MsgTypeSpectrum MessageType = "spectrum" // rendered visualizer bars, one frame
	MsgTypePlaylist MessageType = "playlist" // registry contents changed
	MsgTypeNotice   MessageType = "notice"   // non-fatal user-visible notification
	MsgTypeLive     MessageType = "live"     // cosmetic GO LIVE flag
)

// WSMessage is the envelope for everything pushed to clients.
type WSMessage struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// NoticeData is the payload of a notice message.
type NoticeData struct {
	Level   string `json:"level"` // "warn" or "error"
	Message string `json:"message"`
}

const clientSendBuffer = 64

// Hub fans messages out to every connected WebSocket client. A slow client
// drops frames rather than stalling the broadcast.
type Hub struct {
	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*wsClient]struct{})}
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends one typed message to every client.
func (h *Hub) Broadcast(msgType MessageType, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("broadcast payload marshal", logger.ErrorField(err))
		return
	}
	msg, err := json.Marshal(WSMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		logger.Error("broadcast envelope marshal", logger.ErrorField(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			// Client buffer is full; this frame is droppable.
		}
	}
}

// Notice broadcasts a user-visible, non-fatal notification.
func (h *Hub) Notice(level, message string) {
	h.Broadcast(MsgTypeNotice, NoticeData{Level: level, Message: message})
}

func (h *Hub) register(client *wsClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	logger.Debug("websocket client connected", logger.Int("clients", count))
}

func (h *Hub) unregister(client *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	count := len(h.clients)
	h.mu.Unlock()
	logger.Debug("websocket client disconnected", logger.Int("clients", count))
}

// Close disconnects all clients.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		client.conn.Close()
		delete(h.clients, client)
	}
}
