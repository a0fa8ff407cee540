package handlers

import (
	"context"
	"time"

	"github.com/fasthttp/router"
	xhttp "github.com/gesthub/gesthub/pkg/http"
)

// HealthCheck checks one dependency.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
	// Optional dependencies report their error without failing the check.
	Optional bool
}

type HealthHandler struct {
	checks  []HealthCheck
	timeout time.Duration
}

func RegisterHealthRoutes(e *router.Group, h *HealthHandler) {
	e.GET("/health", h.GetHealth)
}

func NewHealthHandler(checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{
		checks:  checks,
		timeout: 2 * time.Second,
	}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *HealthHandler) GetHealth(ctx *xhttp.RequestCtx) {
	c, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	status := xhttp.StatusOK
	for _, check := range h.checks {
		if err := check.Check(c); err != nil {
			resp.Checks[check.Name] = err.Error()
			if !check.Optional {
				resp.Status = "unavailable"
				status = xhttp.StatusServiceUnavailable
			}
			continue
		}
		resp.Checks[check.Name] = "ok"
	}
	writeJSON(ctx, status, resp)
}
