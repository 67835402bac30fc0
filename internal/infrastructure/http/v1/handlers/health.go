package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	corenumerator "prodtrack/internal/core/numerator"
	"prodtrack/internal/infrastructure/storage/postgres"
)

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CounterCheck reports sequence kinds without a counter row.
type CounterCheck func(ctx context.Context) ([]corenumerator.Kind, error)

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	db       Pinger
	counters CounterCheck
	stats    func() postgres.PoolStats
	version  string
}

// HealthConfig configures the health handler. Counters and Stats are optional.
type HealthConfig struct {
	DB       Pinger
	Counters CounterCheck
	Stats    func() postgres.PoolStats
	Version  string
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(cfg HealthConfig) *HealthHandler {
	return &HealthHandler{
		db:       cfg.DB,
		counters: cfg.Counters,
		stats:    cfg.Stats,
		version:  cfg.Version,
	}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready handles readiness probe (is the service ready to accept traffic?).
// The service is not ready while the database is unreachable or a sequence
// counter is missing, since creating orders would fail.
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()
	checks := map[string]string{}
	healthy := true

	if err := h.db.Ping(ctx); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		healthy = false
	} else {
		checks["database"] = "healthy"
	}

	if h.counters != nil && healthy {
		missing, err := h.counters(ctx)
		switch {
		case err != nil:
			checks["sequence_counters"] = "unhealthy: " + err.Error()
			healthy = false
		case len(missing) > 0:
			checks["sequence_counters"] = "missing: " + joinKinds(missing)
			healthy = false
		default:
			checks["sequence_counters"] = "healthy"
		}
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "error",
			"checks": checks,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"checks": checks,
	})
}

// Info returns application information.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	body := gin.H{
		"app":     "prodtrack",
		"version": h.version,
	}
	if h.stats != nil {
		body["database"] = h.stats()
	}
	c.JSON(http.StatusOK, body)
}

func joinKinds(kinds []corenumerator.Kind) string {
	return strings.Join(lo.Map(kinds, func(k corenumerator.Kind, _ int) string { return k.String() }), ", ")
}
