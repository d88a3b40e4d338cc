package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	serviceName    = "codex-users"
	serviceVersion = "0.1.0"
)

// HealthHandler probes the store and the cache directly, bypassing the
// service layer.
type HealthHandler struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
}

func NewHealthHandler(pool *pgxpool.Pool, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{
		pool: pool,
		rdb:  rdb,
	}
}

func (h *HealthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.Health).Methods("GET")
	router.HandleFunc("/", h.Root).Methods("GET")
}

type healthCheck struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Checks    map[string]healthCheck `json:"checks"`
}

// Health always answers 200; the aggregate status lives in the body only.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	checks := make(map[string]healthCheck)
	healthy := true

	if conn, err := h.pool.Acquire(ctx); err != nil {
		checks["database"] = healthCheck{Status: "unhealthy", Message: "postgres connection failed: " + err.Error()}
		healthy = false
	} else {
		conn.Release()
		checks["database"] = healthCheck{Status: "healthy", Message: "postgres connection successful"}
	}

	if err := h.rdb.Set(ctx, "health_check", "test", 10*time.Second).Err(); err != nil {
		checks["redis"] = healthCheck{Status: "unhealthy", Message: "redis connection failed: " + err.Error()}
		healthy = false
	} else if val, err := h.rdb.Get(ctx, "health_check").Result(); err != nil || val != "test" {
		checks["redis"] = healthCheck{Status: "unhealthy", Message: "redis read/write failed"}
		healthy = false
	} else {
		checks["redis"] = healthCheck{Status: "healthy", Message: "redis connection successful"}
	}

	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:    status,
		Timestamp: time.Now().Format(time.RFC3339),
		Service:   serviceName,
		Version:   serviceVersion,
		Checks:    checks,
	})
}

func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Codex Users API",
		"version":   serviceVersion,
		"timestamp": time.Now().Format(time.RFC3339),
		"endpoints": map[string]string{
			"health": "/health",
			"users":  "/api/users",
			"stats":  "/api/users/stats",
		},
	})
}
