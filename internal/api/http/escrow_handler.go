package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"tutorlink-backend/internal/domain"
	"tutorlink-backend/internal/service"
)

// EscrowHandler exposes the escrow actions API consumed by the front-end
// routing layer.
type EscrowHandler struct {
	escrowSvc service.EscrowService
}

func NewEscrowHandler(escrowSvc service.EscrowService) *EscrowHandler {
	return &EscrowHandler{escrowSvc: escrowSvc}
}

func bookingIDFromPath(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func (h *EscrowHandler) Info(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid booking id", http.StatusBadRequest)
		return
	}
	info, err := h.escrowSvc.Info(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *EscrowHandler) Release(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid booking id", http.StatusBadRequest)
		return
	}
	var req struct {
		ConfirmedBy string `json:"confirmed_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	booking, err := h.escrowSvc.Release(r.Context(), id, req.ConfirmedBy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *EscrowHandler) Refund(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid booking id", http.StatusBadRequest)
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	booking, err := h.escrowSvc.Refund(r.Context(), id, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *EscrowHandler) Dispute(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid booking id", http.StatusBadRequest)
		return
	}
	var req struct {
		Initiator string `json:"initiator"`
		Reason    string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	booking, err := h.escrowSvc.Dispute(r.Context(), id, req.Initiator, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *EscrowHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid booking id", http.StatusBadRequest)
		return
	}
	var req struct {
		Decision   string `json:"decision"`
		ResolvedBy string `json:"resolved_by"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	booking, err := h.escrowSvc.Resolve(r.Context(), id, domain.ResolutionDecision(req.Decision), req.ResolvedBy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *EscrowHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	count, err := h.escrowSvc.SweepExpired(r.Context(), time.Now().UTC())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"expired": count})
}
