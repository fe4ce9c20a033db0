package handler

import (
	"net/http"

	"github.com/cuihairu/tabletop/services/catalog/internal/svc"
)

// HealthzHandler answers liveness probes.
func HealthzHandler(_ *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
