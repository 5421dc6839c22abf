package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"voteauth/internal/vote/service"
	id "voteauth/pkg/domain"
	dErrors "voteauth/pkg/domain-errors"
)

// VoteService is the slice of the issuance service the handler needs.
type VoteService interface {
	Authenticate(ctx context.Context, req service.AuthRequest) (service.AuthResult, error)
	Confirm(ctx context.Context, stationID string, studentID id.StudentID) error
	Report(ctx context.Context, stationID, message string) error
	Complete(ctx context.Context, stationID string) error
}

// VoteHandler serves the station-facing issuance endpoints.
type VoteHandler struct {
	vote VoteService
}

func NewVoteHandler(vote VoteService) *VoteHandler {
	return &VoteHandler{vote: vote}
}

func (h *VoteHandler) Register(r chi.Router) {
	r.Post("/authenticate", h.handleAuthenticate)
	r.Post("/confirm", h.handleConfirm)
	r.Post("/report", h.handleReport)
	r.Post("/complete", h.handleComplete)
}

type authenticateRequest struct {
	APIKey  string `json:"api_key"`
	Version string `json:"version"`
	Station string `json:"station"`
	CID     string `json:"cid"`
	UID     string `json:"uid"`
}

type authenticateResponse struct {
	Status string `json:"status"`
	UID    string `json:"uid"`
	Type   string `json:"type"`
	Code   string `json:"code"`
}

func (h *VoteHandler) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req authenticateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeParamsInvalid, "invalid request body"))
		return
	}

	result, err := h.vote.Authenticate(r.Context(), service.AuthRequest{
		APIKey:     req.APIKey,
		Version:    req.Version,
		StationID:  req.Station,
		CardToken:  req.CID,
		Credential: req.UID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authenticateResponse{
		Status: "success",
		UID:    result.StudentID.String(),
		Type:   result.KindName,
		Code:   result.Code,
	})
}

type confirmRequest struct {
	Station string `json:"station"`
	UID     string `json:"uid"`
}

func (h *VoteHandler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeParamsInvalid, "invalid request body"))
		return
	}
	if err := h.vote.Confirm(r.Context(), req.Station, id.StudentID(req.UID)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

type reportRequest struct {
	Station string `json:"station"`
	Message string `json:"message"`
}

func (h *VoteHandler) handleReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeParamsInvalid, "invalid request body"))
		return
	}
	if err := h.vote.Report(r.Context(), req.Station, req.Message); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

type completeRequest struct {
	Station string `json:"station"`
}

func (h *VoteHandler) handleComplete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, dErrors.New(dErrors.CodeParamsInvalid, "invalid request body"))
		return
	}
	if err := h.vote.Complete(r.Context(), req.Station); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}
