package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"tutorlink-backend/internal/service"
)

// NewRouter wires the webhook endpoint and the escrow/booking actions API.
func NewRouter(
	bookingSvc service.BookingService,
	escrowSvc service.EscrowService,
	discountSvc service.DiscountService,
	ledgerSvc service.LedgerService,
	webhookSvc service.WebhookService,
) *mux.Router {
	bookings := NewBookingHandler(bookingSvc, discountSvc, ledgerSvc)
	escrow := NewEscrowHandler(escrowSvc)
	webhooks := NewWebhookHandler(webhookSvc)

	r := mux.NewRouter()
	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/webhooks/payments", webhooks.HandlePaymentWebhook).Methods(http.MethodPost)

	v1.HandleFunc("/bookings", bookings.Create).Methods(http.MethodPost)
	v1.HandleFunc("/bookings/{id:[0-9]+}", bookings.Get).Methods(http.MethodGet)
	v1.HandleFunc("/bookings/{id:[0-9]+}/confirm-completion", bookings.ConfirmCompletion).Methods(http.MethodPost)
	v1.HandleFunc("/bookings/{id:[0-9]+}/cancel", bookings.Cancel).Methods(http.MethodPost)
	v1.HandleFunc("/bookings/{id:[0-9]+}/transactions", bookings.ListTransactions).Methods(http.MethodGet)

	v1.HandleFunc("/discounts/evaluate", bookings.EvaluateDiscount).Methods(http.MethodPost)
	v1.HandleFunc("/bookings/{id:[0-9]+}/discount", bookings.ApplyDiscount).Methods(http.MethodPost)

	v1.HandleFunc("/bookings/{id:[0-9]+}/escrow", escrow.Info).Methods(http.MethodGet)
	v1.HandleFunc("/bookings/{id:[0-9]+}/escrow/release", escrow.Release).Methods(http.MethodPost)
	v1.HandleFunc("/bookings/{id:[0-9]+}/escrow/refund", escrow.Refund).Methods(http.MethodPost)
	v1.HandleFunc("/bookings/{id:[0-9]+}/escrow/dispute", escrow.Dispute).Methods(http.MethodPost)
	v1.HandleFunc("/bookings/{id:[0-9]+}/escrow/resolve", escrow.Resolve).Methods(http.MethodPost)

	v1.HandleFunc("/sweeps/escrow", escrow.Sweep).Methods(http.MethodPost)

	return r
}
