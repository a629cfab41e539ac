package http

import (
	"encoding/json"
	"net/http"

	"tutorlink-backend/internal/service"
)

// BookingHandler exposes booking-level operations: creation, dual
// completion confirmation, cancellation and discounts.
type BookingHandler struct {
	bookingSvc  service.BookingService
	discountSvc service.DiscountService
	ledgerSvc   service.LedgerService
}

func NewBookingHandler(bookingSvc service.BookingService, discountSvc service.DiscountService, ledgerSvc service.LedgerService) *BookingHandler {
	return &BookingHandler{
		bookingSvc:  bookingSvc,
		discountSvc: discountSvc,
		ledgerSvc:   ledgerSvc,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	booking, err := h.bookingSvc.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid booking id", http.StatusBadRequest)
		return
	}
	booking, err := h.bookingSvc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) ConfirmCompletion(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid booking id", http.StatusBadRequest)
		return
	}
	var req struct {
		UserID int64 `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	booking, err := h.bookingSvc.ConfirmCompletion(r.Context(), id, req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid booking id", http.StatusBadRequest)
		return
	}
	var req struct {
		UserID int64  `json:"user_id"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	booking, err := h.bookingSvc.Cancel(r.Context(), id, req.UserID, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) EvaluateDiscount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentID int64  `json:"student_id"`
		TutorID   int64  `json:"tutor_id"`
		Category  string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	eval, err := h.discountSvc.Evaluate(r.Context(), req.StudentID, req.TutorID, req.Category)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eval)
}

func (h *BookingHandler) ApplyDiscount(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid booking id", http.StatusBadRequest)
		return
	}
	var req struct {
		StudentID int64  `json:"student_id"`
		TutorID   int64  `json:"tutor_id"`
		Category  string `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	booking, err := h.discountSvc.Apply(r.Context(), id, req.StudentID, req.TutorID, req.Category)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := bookingIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid booking id", http.StatusBadRequest)
		return
	}
	txs, err := h.ledgerSvc.ListByBooking(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}
