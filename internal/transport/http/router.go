// Package httptransport is the thin HTTP layer. It delegates to domain
// services without embedding business logic so transport concerns
// remain isolated.
package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	dErrors "voteauth/pkg/domain-errors"
)

// NewRouter wires all public endpoints.
func NewRouter(vote *VoteHandler, station *StationHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		vote.Register(r)
		station.Register(r)
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/healthz", handleHealthz)
	return r
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError centralizes domain error translation to the wire envelope
// {"status": "error", "reason": <code>}.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, dErrors.ToHTTPStatus(dErrors.CodeOf(err)), map[string]string{
		"status": "error",
		"reason": string(dErrors.CodeOf(err)),
	})
}
