// Package server publishes block classification and per-frame draw stats
// over a websocket, and accepts threshold changes from connected clients.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"simpleblocks/core"
	"simpleblocks/logging"
)

// BlockInfo is one block's classification result.
type BlockInfo struct {
	IJK     [3]uint64 `json:"ijk"`
	Average float32   `json:"avg"`
	Empty   bool      `json:"empty"`
}

// Classification is sent to every client on connect and after each refilter.
type Classification struct {
	Type          string          `json:"type"`
	VolumeDims    [3]uint64       `json:"volumeDims"`
	BlocksPerAxis [3]uint64       `json:"blocksPerAxis"`
	Thresholds    core.Thresholds `json:"thresholds"`
	NonEmpty      int             `json:"nonEmpty"`
	Blocks        []BlockInfo     `json:"blocks"`
}

// FrameMessage is broadcast every BroadcastEvery frames.
type FrameMessage struct {
	Type           string  `json:"type"`
	Frame          uint64  `json:"frame"`
	Orientation    string  `json:"orientation"`
	BaseVertex     int32   `json:"baseVertex"`
	Drawn          int     `json:"drawn"`
	SkippedEmpty   int     `json:"skippedEmpty"`
	SkippedTexture int     `json:"skippedTexture"`
	FPS            float64 `json:"fps"`
}

// thresholdRequest is what clients send. Either bound may be omitted.
type thresholdRequest struct {
	TMin *float32 `json:"tmin"`
	TMax *float32 `json:"tmax"`
}

// Snapshot copies the grid's current classification. It must be called from
// the goroutine that filters the grid.
func Snapshot(g *core.BlockGrid, t core.Thresholds) Classification {
	c := Classification{
		Type:          "classification",
		VolumeDims:    g.VolumeDims(),
		BlocksPerAxis: g.BlocksPerAxis(),
		Thresholds:    t,
		Blocks:        make([]BlockInfo, 0, len(g.Blocks())),
	}
	for _, b := range g.Blocks() {
		if !b.Empty() {
			c.NonEmpty++
		}
		c.Blocks = append(c.Blocks, BlockInfo{IJK: b.IJK(), Average: b.Average(), Empty: b.Empty()})
	}
	return c
}

// Hub tracks websocket clients.
type Hub struct {
	upgrader websocket.Upgrader

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]*sync.Mutex

	classMu        sync.RWMutex
	classification Classification

	refilter       chan<- core.Thresholds
	broadcastEvery uint64
	frames         uint64
}

// NewHub returns a hub that forwards client threshold requests to refilter
// and broadcasts frame stats every broadcastEvery frames.
func NewHub(refilter chan<- core.Thresholds, broadcastEvery int) *Hub {
	if broadcastEvery < 1 {
		broadcastEvery = 1
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for development
			},
		},
		clients:        make(map[*websocket.Conn]*sync.Mutex),
		refilter:       refilter,
		broadcastEvery: uint64(broadcastEvery),
	}
}

// Handler serves the websocket at /ws.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWebSocket)
	return mux
}

// ListenAndServe serves until ctx is cancelled.
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: h.Handler()}
	errc := make(chan error, 1)
	go func() {
		logging.Infof("Stats server listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		h.closeClients()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// SetClassification stores c for new clients and sends it to current ones.
func (h *Hub) SetClassification(c Classification) {
	h.classMu.Lock()
	h.classification = c
	h.classMu.Unlock()
	h.broadcast(c)
}

// FrameDone counts a rendered frame and broadcasts its stats on every
// broadcastEvery-th call.
func (h *Hub) FrameDone(stats core.FrameStats, fps float64) {
	h.frames++
	if h.frames%h.broadcastEvery != 0 {
		return
	}
	h.broadcast(FrameMessage{
		Type:           "frame",
		Frame:          h.frames,
		Orientation:    stats.Orientation.String(),
		BaseVertex:     stats.BaseVertex,
		Drawn:          stats.Drawn,
		SkippedEmpty:   stats.SkippedEmpty,
		SkippedTexture: stats.SkippedTexture,
		FPS:            fps,
	})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Errorf("WebSocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	connMutex := &sync.Mutex{}
	h.clientsMu.Lock()
	h.clients[conn] = connMutex
	h.clientsMu.Unlock()
	defer func() {
		h.clientsMu.Lock()
		delete(h.clients, conn)
		h.clientsMu.Unlock()
	}()
	logging.Debugf("Stats client connected from %s", r.RemoteAddr)

	h.classMu.RLock()
	c := h.classification
	h.classMu.RUnlock()
	connMutex.Lock()
	err = conn.WriteJSON(c)
	connMutex.Unlock()
	if err != nil {
		logging.Warningf("WebSocket write error: %v", err)
		return
	}

	for {
		var req thresholdRequest
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Debugf("WebSocket read error: %v", err)
			}
			return
		}
		h.requestRefilter(req)
	}
}

func (h *Hub) requestRefilter(req thresholdRequest) {
	if req.TMin == nil && req.TMax == nil {
		return
	}
	h.classMu.RLock()
	t := h.classification.Thresholds
	h.classMu.RUnlock()
	if req.TMin != nil {
		t.TMin = *req.TMin
	}
	if req.TMax != nil {
		t.TMax = *req.TMax
	}
	if h.refilter == nil {
		return
	}
	select {
	case h.refilter <- t:
		logging.Infof("Client requested thresholds %s", t)
	default:
		logging.Warningf("Refilter pending, dropped client request %s", t)
	}
}

func (h *Hub) broadcast(msg interface{}) {
	h.clientsMu.RLock()
	clientsToRemove := []*websocket.Conn{}
	for client, mutex := range h.clients {
		mutex.Lock()
		err := client.WriteJSON(msg)
		mutex.Unlock()
		if err != nil {
			logging.Warningf("WebSocket write error: %v", err)
			client.Close()
			clientsToRemove = append(clientsToRemove, client)
		}
	}
	h.clientsMu.RUnlock()

	if len(clientsToRemove) > 0 {
		h.clientsMu.Lock()
		for _, client := range clientsToRemove {
			delete(h.clients, client)
		}
		h.clientsMu.Unlock()
	}
}

func (h *Hub) closeClients() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}
