package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	dErrors "voteauth/pkg/domain-errors"
)

// StationService is the slice of the station service the handler needs.
type StationService interface {
	Register(ctx context.Context, name, secret string) (uuid.UUID, string, error)
	Login(ctx context.Context, name, secret string) (string, error)
	Ping(ctx context.Context, token string) (uuid.UUID, error)
}

// StationHandler serves station lifecycle endpoints.
type StationHandler struct {
	stations StationService
}

func NewStationHandler(stations StationService) *StationHandler {
	return &StationHandler{stations: stations}
}

func (h *StationHandler) Register(r chi.Router) {
	r.Post("/station/register", h.handleRegister)
	r.Post("/station/login", h.handleLogin)
	r.Post("/station/ping", h.handlePing)
}

type stationCredentials struct {
	Name   string `json:"name"`
	Secret string `json:"secret"`
}

func (h *StationHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req stationCredentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeParamsInvalid, "invalid request body"))
		return
	}

	stationID, token, err := h.stations.Register(r.Context(), req.Name, req.Secret)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "success",
		"station_id": stationID.String(),
		"token":      token,
	})
}

func (h *StationHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req stationCredentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeParamsInvalid, "invalid request body"))
		return
	}

	token, err := h.stations.Login(r.Context(), req.Name, req.Secret)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"token":  token,
	})
}

type pingRequest struct {
	Token string `json:"token"`
}

func (h *StationHandler) handlePing(w http.ResponseWriter, r *http.Request) {
	var req pingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeParamsInvalid, "invalid request body"))
		return
	}

	stationID, err := h.stations.Ping(r.Context(), req.Token)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "success",
		"station_id": stationID.String(),
	})
}
