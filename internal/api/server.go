// Package api exposes the simulation over HTTP.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
//
// The engine is single-writer with no internal locking; this server owns the
// mutex that serializes every engine call, including the step loop's.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/talgya/beanmarket/internal/engine"
	"github.com/talgya/beanmarket/internal/persistence"
	"github.com/talgya/beanmarket/internal/trade"
)

// Server serves the market state over HTTP.
type Server struct {
	Eng      *engine.MarketEngine
	Runner   *engine.Runner
	DB       *persistence.DB
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	mu sync.Mutex // Serializes all engine access
}

// Lock exposes the engine mutex so the step loop shares the same
// serialization as request handlers.
func (s *Server) Lock()   { s.mu.Lock() }
func (s *Server) Unlock() { s.mu.Unlock() }

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/suppliers", s.handleSuppliers)
	mux.HandleFunc("/api/v1/market", s.handleMarket)
	mux.HandleFunc("/api/v1/changes", s.handleChanges)
	mux.HandleFunc("/api/v1/regions/", s.handleRegionCountry)

	// Contracts and orders support GET (list) and admin POST (add).
	mux.HandleFunc("/api/v1/contracts", s.adminOnly(s.handleContracts))
	mux.HandleFunc("/api/v1/orders", s.adminOnly(s.handleOrders))
	mux.HandleFunc("/api/v1/orders/", s.handleOrderRoutes)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/place-order", s.adminOnly(s.handlePlaceOrder))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list; localhost dev servers are
// always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no BEANSIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	status := map[string]any{
		"name":      "beanmarket",
		"step":      s.Eng.Step(),
		"sim_date":  s.Eng.SimDate().Format("2006-01-02"),
		"suppliers": len(s.Eng.Suppliers()),
		"contracts": len(s.Eng.Contracts()),
		"orders":    len(s.Eng.Orders()),
	}
	s.mu.Unlock()

	if s.Runner != nil {
		status["speed"] = s.Runner.Speed
		status["running"] = s.Runner.Running
	}
	writeJSON(w, status)
}

func (s *Server) handleSuppliers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	suppliers := s.Eng.Suppliers()
	s.mu.Unlock()
	writeJSON(w, suppliers)
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	conditions := s.Eng.MarketConditions()
	s.mu.Unlock()
	writeJSON(w, conditions)
}

func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	changes := s.Eng.Changes()
	s.mu.Unlock()
	writeJSON(w, changes)
}

func (s *Server) handleContracts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.Lock()
		contracts := s.Eng.Contracts()
		s.mu.Unlock()
		writeJSON(w, contracts)

	case http.MethodPost:
		var c trade.Contract
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		s.mu.Lock()
		err := s.Eng.AddContract(&c)
		s.mu.Unlock()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, map[string]string{"id": c.ID, "status": "added"})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.Lock()
		orders := s.Eng.Orders()
		s.mu.Unlock()
		writeJSON(w, orders)

	case http.MethodPost:
		var o trade.Order
		if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		s.mu.Lock()
		err := s.Eng.AddOrder(&o)
		s.mu.Unlock()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, map[string]string{"id": o.ID, "status": "added"})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleOrderRoutes serves GET /api/v1/orders/:id and /api/v1/orders/:id/tracking.
func (s *Server) handleOrderRoutes(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/v1/orders/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "missing order id", http.StatusBadRequest)
		return
	}
	orderID := parts[0]

	if len(parts) >= 2 && parts[1] == "tracking" {
		s.mu.Lock()
		tracking, err := s.Eng.OrderTracking(orderID)
		s.mu.Unlock()
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, tracking)
		return
	}

	s.mu.Lock()
	orders := s.Eng.Orders()
	s.mu.Unlock()
	for _, o := range orders {
		if o.ID == orderID {
			writeJSON(w, o)
			return
		}
	}
	writeError(w, http.StatusNotFound, fmt.Sprintf("order with ID %s not found", orderID))
}

// handleRegionCountry serves GET /api/v1/regions/:region/country.
func (s *Server) handleRegionCountry(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/v1/regions/"), "/")
	if len(parts) < 2 || parts[1] != "country" {
		http.Error(w, "usage: /api/v1/regions/:region/country", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	country := s.Eng.CountryForRegion(parts[0])
	s.mu.Unlock()
	writeJSON(w, map[string]string{"region": parts[0], "country": country})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Runner == nil {
		http.Error(w, "no runner attached", http.StatusServiceUnavailable)
		return
	}
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			writeError(w, http.StatusBadRequest, "speed must be 0-1000")
			return
		}
		s.Runner.Speed = req.Speed
		slog.Info("speed changed", "speed", req.Speed)
	}
	writeJSON(w, map[string]float64{"speed": s.Runner.Speed})
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		ContractID string `json:"contract_id"`
		VolumeLbs  int    `json:"volume_lbs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	s.mu.Lock()
	order, err := s.Eng.PlaceOrder(req.ContractID, req.VolumeLbs)
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, order)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	s.mu.Lock()
	err := s.DB.SaveSnapshot(s.Eng)
	s.mu.Unlock()
	if err != nil {
		slog.Error("snapshot failed", "error", err)
		writeError(w, http.StatusInternalServerError, "snapshot failed")
		return
	}
	writeJSON(w, map[string]string{"status": "saved"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "error", err)
	}
}

// writeError renders the error-payload shape consumers check for.
func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
