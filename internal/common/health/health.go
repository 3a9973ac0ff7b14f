package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hotelstay/service-booking/internal/common/database"
)

// Checker reports whether a dependency is reachable.
type Checker interface {
	Ping(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

// Ping calls f.
func (f CheckerFunc) Ping(ctx context.Context) error { return f(ctx) }

// Handler serves liveness and readiness probes.
type Handler struct {
	service  string
	checkers map[string]Checker
}

// NewHandler creates a Handler that checks db plus any extra dependencies.
func NewHandler(db *gorm.DB, service string) *Handler {
	h := &Handler{service: service, checkers: map[string]Checker{}}
	if db != nil {
		h.checkers["postgres"] = CheckerFunc(func(ctx context.Context) error {
			return database.Ping(ctx, db)
		})
	}
	return h
}

// WithChecker registers an additional readiness dependency.
func (h *Handler) WithChecker(name string, c Checker) *Handler {
	h.checkers[name] = c
	return h
}

// RegisterRoutes mounts /health and /health/ready.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Live)
	r.GET("/health/ready", h.Ready)
}

// Live handles GET /health.
func (h *Handler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": h.service})
}

// Ready handles GET /health/ready.
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.checkers))
	for name, checker := range h.checkers {
		if err := checker.Ping(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "unavailable"
	}
	c.JSON(status, gin.H{"status": state, "service": h.service, "checks": checks})
}
