package server

import (
	"encoding/binary"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/control"
)

const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// PointSource provides the particle buffer and control state.
type PointSource interface {
	Snapshot() control.State
	WithPositions(fn func(positions []float32, rotation float64))
}

// stateMessage is the text frame sent after each binary points frame.
type stateMessage struct {
	Type     string        `json:"type"`
	Rotation float64       `json:"rotation"`
	State    control.State `json:"state"`
}

// PointsHandler broadcasts the particle buffer to WebSocket clients. Each
// tick sends one binary message (uint32 point count, then little-endian
// float32 x,y,z triples) followed by one JSON state message.
type PointsHandler struct {
	source   PointSource
	interval time.Duration
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	stopCh   chan struct{}
	once     sync.Once
}

// NewPointsHandler creates a PointsHandler broadcasting at fps.
func NewPointsHandler(src PointSource, fps int) *PointsHandler {
	if fps <= 0 {
		fps = 30
	}
	h := &PointsHandler{
		source:   src,
		interval: time.Second / time.Duration(fps),
		clients:  make(map[*websocket.Conn]bool),
		stopCh:   make(chan struct{}),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *PointsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer h.remove(conn)

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *PointsHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close stops the broadcast loop and disconnects every client.
func (h *PointsHandler) Close() {
	h.once.Do(func() {
		close(h.stopCh)
		h.mu.Lock()
		for conn := range h.clients {
			conn.Close()
			delete(h.clients, conn)
		}
		h.mu.Unlock()
	})
}

func (h *PointsHandler) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
}

// broadcast sends the particle buffer to all connected clients.
func (h *PointsHandler) broadcast() {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	var buf []byte
	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
		}

		if h.Clients() == 0 {
			continue
		}

		var rotation float64
		h.source.WithPositions(func(positions []float32, rot float64) {
			buf = encodePoints(buf, positions)
			rotation = rot
		})
		state, err := json.Marshal(stateMessage{Type: "state", Rotation: rotation, State: h.source.Snapshot()})
		if err != nil {
			continue
		}

		h.mu.RLock()
		var dead []*websocket.Conn
		for conn := range h.clients {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.BinaryMessage, buf); err != nil {
				dead = append(dead, conn)
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, state); err != nil {
				dead = append(dead, conn)
			}
		}
		h.mu.RUnlock()

		for _, conn := range dead {
			h.remove(conn)
			conn.Close()
		}
	}
}

// encodePoints writes positions (flat x,y,z) into dst as a uint32 count
// followed by little-endian float32 values.
func encodePoints(dst []byte, positions []float32) []byte {
	n := 4 + 4*len(positions)
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]
	binary.LittleEndian.PutUint32(dst, uint32(len(positions)/3))
	for i, v := range positions {
		binary.LittleEndian.PutUint32(dst[4+4*i:], math.Float32bits(v))
	}
	return dst
}
