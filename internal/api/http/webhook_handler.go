package http

import (
	"encoding/json"
	"net/http"

	"tutorlink-backend/internal/gateway"
	"tutorlink-backend/internal/service"
)

// WebhookHandler receives asynchronous payment gateway notifications.
type WebhookHandler struct {
	webhookSvc service.WebhookService
}

func NewWebhookHandler(webhookSvc service.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookSvc: webhookSvc}
}

func (h *WebhookHandler) HandlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	var event service.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "invalid webhook body", http.StatusBadRequest)
		return
	}

	sig := gateway.SignatureHeader{
		Signature: r.Header.Get("X-Signature"),
		RequestID: r.Header.Get("X-Request-Id"),
	}

	if err := h.webhookSvc.Handle(r.Context(), &event, sig); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
