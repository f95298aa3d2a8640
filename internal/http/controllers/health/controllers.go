// Package health expone /healthz y /readyz.
package health

import (
	"context"
	"net/http"

	dto "github.com/dropDatabas3/tandem/internal/http/dto/health"
	"github.com/dropDatabas3/tandem/internal/http/helpers"
)

// Checker es lo que el controller necesita del service de health.
type Checker interface {
	Check(ctx context.Context) dto.Response
}

type Controller struct {
	svc Checker
}

func NewController(svc Checker) *Controller { return &Controller{svc: svc} }

// Live responde 200 mientras el proceso esté vivo.
func (c *Controller) Live(w http.ResponseWriter, _ *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready responde 503 si alguna dependencia no responde.
func (c *Controller) Ready(w http.ResponseWriter, r *http.Request) {
	resp := c.svc.Check(r.Context())
	status := http.StatusOK
	if resp.Status != "ready" {
		status = http.StatusServiceUnavailable
	}
	helpers.WriteJSON(w, status, resp)
}
