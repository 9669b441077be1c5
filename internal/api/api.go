// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package api provides HTTP and WebSocket endpoints for pool data
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/blinklabs-io/poolview/internal/logging"
	"github.com/blinklabs-io/poolview/internal/pool"
	"github.com/gorilla/websocket"
)

// Api serves pool states, history, and prices over HTTP and WebSocket
type Api struct {
	service  *pool.Service
	upgrader websocket.Upgrader
	wsConns  map[*websocket.Conn]bool
	wsMu     sync.RWMutex
}

// New creates a new Api instance
func New(service *pool.Service) *Api {
	return &Api{
		service: service,
		wsConns: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: checkWebSocketOrigin,
		},
	}
}

// checkWebSocketOrigin validates WebSocket connection origins.
// Allows same-origin requests and localhost connections for development.
func checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true // Allow requests without Origin header (non-browser clients)
	}

	// Allow localhost connections for development
	if strings.HasPrefix(origin, "http://localhost") ||
		strings.HasPrefix(origin, "http://127.0.0.1") ||
		strings.HasPrefix(origin, "https://localhost") ||
		strings.HasPrefix(origin, "https://127.0.0.1") {
		return true
	}

	// Parse origin URL to extract host for exact comparison
	// This prevents attacks where malicious origins contain the host as a
	// substring (e.g. "example.com.attacker.com")
	originHost := extractHost(origin)
	if originHost == "" {
		return false
	}

	host := r.Host
	if host == "" {
		host = r.URL.Host
	}
	// Strip port from request host for comparison if origin doesn't have port
	if !strings.Contains(originHost, ":") {
		if idx := strings.LastIndex(host, ":"); idx != -1 {
			host = host[:idx]
		}
	}
	return originHost == host
}

// extractHost extracts the host from a URL string
func extractHost(urlStr string) string {
	// Remove scheme prefix
	if idx := strings.Index(urlStr, "://"); idx != -1 {
		urlStr = urlStr[idx+3:]
	}
	// Remove path
	if idx := strings.Index(urlStr, "/"); idx != -1 {
		urlStr = urlStr[:idx]
	}
	return urlStr
}

// RegisterHandlers registers HTTP handlers on the given ServeMux
func (a *Api) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/pools", a.HandleListPools)
	mux.HandleFunc("/api/v1/pools/", a.HandlePool)
	mux.HandleFunc("/api/v1/prices", a.HandleListPrices)
	mux.HandleFunc("/api/v1/tip", a.HandleTip)
	mux.HandleFunc("/ws/prices", a.HandlePriceStream)
}

// StartServer starts the HTTP server
func (a *Api) StartServer(addr string) error {
	logger := logging.GetLogger()

	mux := http.NewServeMux()
	a.RegisterHandlers(mux)

	// Start WebSocket broadcaster
	go a.broadcastPriceUpdates()

	logger.Info("starting API server", "addr", addr)
	return http.ListenAndServe(addr, mux)
}

// HandleListPools returns all cached pools
func (a *Api) HandleListPools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	pools := a.service.GetAllPools()

	// Filter by protocol if specified
	protocol := r.URL.Query().Get("protocol")
	if protocol != "" {
		filtered := make([]*pool.PoolState, 0)
		for _, p := range pools {
			if p.Protocol == protocol {
				filtered = append(filtered, p)
			}
		}
		pools = filtered
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"pools": pools,
		"count": len(pools),
	})
}

// HandlePool routes /api/v1/pools/{id}[/history|/price]
func (a *Api) HandlePool(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/pools/")
	if rest == "" {
		http.Error(w, "Pool ID required", http.StatusBadRequest)
		return
	}
	poolId, sub, _ := strings.Cut(rest, "/")

	switch sub {
	case "":
		a.handleGetPool(w, poolId)
	case "history":
		a.handlePoolHistory(w, r, poolId)
	case "price":
		a.handlePoolPrice(w, r, poolId)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// handleGetPool returns a specific pool by ID
func (a *Api) handleGetPool(w http.ResponseWriter, poolId string) {
	state, ok := a.service.GetPoolState(poolId)
	if !ok {
		http.Error(w, "Pool not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(state)
}

// handlePoolHistory returns a page of the pool's transaction history
func (a *Api) handlePoolHistory(
	w http.ResponseWriter,
	r *http.Request,
	poolId string,
) {
	page := 1
	if pageParam := r.URL.Query().Get("page"); pageParam != "" {
		parsed, err := strconv.Atoi(pageParam)
		if err != nil || parsed < 1 {
			http.Error(w, "Invalid page", http.StatusBadRequest)
			return
		}
		page = parsed
	}

	entries, err := a.service.History(r.Context(), poolId, page)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"history": entries,
		"page":    page,
		"count":   len(entries),
	})
}

// handlePoolPrice returns the decimal-adjusted prices for a pool
func (a *Api) handlePoolPrice(
	w http.ResponseWriter,
	r *http.Request,
	poolId string,
) {
	state, ok := a.service.GetPoolState(poolId)
	if !ok {
		http.Error(w, "Pool not found", http.StatusNotFound)
		return
	}

	price, err := a.service.PoolPrice(r.Context(), state)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(price)
}

// HandleListPrices returns current raw reserve ratios for all cached pools
func (a *Api) HandleListPrices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	pools := a.service.GetAllPools()

	type PriceEntry struct {
		PoolId   string  `json:"poolId"`
		Protocol string  `json:"protocol"`
		AssetX   string  `json:"assetX"`
		AssetY   string  `json:"assetY"`
		PriceXY  float64 `json:"priceXY"`
		PriceYX  float64 `json:"priceYX"`
		ReserveX uint64  `json:"reserveX"`
		ReserveY uint64  `json:"reserveY"`
	}

	prices := make([]PriceEntry, 0, len(pools))
	for _, p := range pools {
		prices = append(prices, PriceEntry{
			PoolId:   p.PoolId,
			Protocol: p.Protocol,
			AssetX:   p.AssetX.Class.Fingerprint(),
			AssetY:   p.AssetY.Class.Fingerprint(),
			PriceXY:  p.PriceXY(),
			PriceYX:  p.PriceYX(),
			ReserveX: p.AssetX.Amount,
			ReserveY: p.AssetY.Amount,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"prices": prices,
		"count":  len(prices),
	})
}

// HandleTip returns the backend's view of the chain tip
func (a *Api) HandleTip(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	block, err := a.service.LatestBlock(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(block)
}

// HandlePriceStream handles WebSocket connections for price streaming
func (a *Api) HandlePriceStream(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLogger()

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", "error", err)
		return
	}

	// Register connection
	a.wsMu.Lock()
	a.wsConns[conn] = true
	a.wsMu.Unlock()

	logger.Debug("WebSocket client connected", "remote", conn.RemoteAddr())

	// Keep connection alive and handle disconnection
	defer func() {
		a.wsMu.Lock()
		delete(a.wsConns, conn)
		a.wsMu.Unlock()
		_ = conn.Close()
		logger.Debug(
			"WebSocket client disconnected",
			"remote",
			conn.RemoteAddr(),
		)
	}()

	// Read messages (for ping/pong and close handling)
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
	}
}

// broadcastPriceUpdates subscribes to price updates and broadcasts to
// WebSocket clients
func (a *Api) broadcastPriceUpdates() {
	logger := logging.GetLogger()
	updates := a.service.Subscribe()

	for update := range updates {
		var failedConns []*websocket.Conn

		a.wsMu.RLock()
		for conn := range a.wsConns {
			if err := conn.WriteJSON(update); err != nil {
				logger.Debug(
					"failed to send WebSocket update",
					"error", err,
					"remote", conn.RemoteAddr(),
				)
				failedConns = append(failedConns, conn)
			}
		}
		a.wsMu.RUnlock()

		// Remove failed connections outside of the read lock
		if len(failedConns) > 0 {
			a.wsMu.Lock()
			for _, conn := range failedConns {
				delete(a.wsConns, conn)
				_ = conn.Close()
			}
			a.wsMu.Unlock()
		}
	}
}

// WebSocketClientCount returns the number of connected WebSocket clients
func (a *Api) WebSocketClientCount() int {
	a.wsMu.RLock()
	defer a.wsMu.RUnlock()
	return len(a.wsConns)
}
