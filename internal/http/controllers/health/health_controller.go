// Package health contiene el controller para health checks.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/authcore/internal/observability/logger"
)

// Pinger es cualquier dependencia que sabe responder un ping (store, cache).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Component es una dependencia chequeada por /readyz. Si Critical falla el
// servicio queda "unavailable" (503); si no, "degraded" (200).
type Component struct {
	Name     string
	Pinger   Pinger
	Critical bool
}

type readyResponse struct {
	Status     string            `json:"status"`
	Version    string            `json:"version,omitempty"`
	Components map[string]string `json:"components"`
}

// HealthController maneja /healthz y /readyz.
type HealthController struct {
	version    string
	components []Component
	timeout    time.Duration
}

func NewHealthController(version string, components ...Component) *HealthController {
	return &HealthController{version: version, components: components, timeout: 2 * time.Second}
}

// Healthz es liveness: no toca dependencias.
func (c *HealthController) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
}

// Readyz pinguea cada componente en paralelo.
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("HealthController.Readyz"))

	var (
		mu       sync.Mutex
		states   = make(map[string]string, len(c.components))
		critical bool
		degraded bool
	)
	var g errgroup.Group
	for _, comp := range c.components {
		comp := comp
		g.Go(func() error {
			err := comp.Pinger.Ping(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn("component not ready", logger.Component(comp.Name), logger.Err(err))
				states[comp.Name] = "error"
				if comp.Critical {
					critical = true
				} else {
					degraded = true
				}
				return nil
			}
			states[comp.Name] = "ok"
			return nil
		})
	}
	_ = g.Wait()

	resp := readyResponse{Status: "ready", Version: c.version, Components: states}
	status := http.StatusOK
	switch {
	case critical:
		resp.Status = "unavailable"
		status = http.StatusServiceUnavailable
	case degraded:
		resp.Status = "degraded"
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if c.version != "" {
		w.Header().Set("X-Service-Version", c.version)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
