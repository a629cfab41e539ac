package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tutorlink-backend/internal/domain"
)

// PaymentInfo is the gateway's view of a payment, re-fetched by id before
// any webhook event is acted on. Webhook bodies are never trusted for
// amounts.
type PaymentInfo struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	StatusDetail      string `json:"status_detail"`
	AmountCents       int64  `json:"transaction_amount"`
	ExternalReference string `json:"external_reference"`
}

// TransactionStatus maps the gateway's payment status vocabulary onto the
// ledger's. Unknown statuses map to the zero value.
func (p *PaymentInfo) TransactionStatus() domain.TransactionStatus {
	switch strings.ToLower(p.Status) {
	case "approved":
		return domain.TransactionStatusApproved
	case "rejected":
		return domain.TransactionStatusRejected
	case "cancelled":
		return domain.TransactionStatusCancelled
	case "pending":
		return domain.TransactionStatusPending
	case "in_process":
		return domain.TransactionStatusInProcess
	}
	return ""
}

// ChargeRequest describes an outbound charge creation.
type ChargeRequest struct {
	AmountCents       int64  `json:"transaction_amount"`
	Description       string `json:"description"`
	ExternalReference string `json:"external_reference"`
	PayerEmail        string `json:"payer_email"`
}

// HTTPClient talks to the payment gateway's REST API with a bearer token.
type HTTPClient struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

func NewHTTPClient(baseURL, accessToken string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// GetPayment fetches the full payment record by gateway id.
func (c *HTTPClient) GetPayment(ctx context.Context, id string) (*PaymentInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/v1/payments/%s", c.baseURL, id), nil)
	if err != nil {
		return nil, err
	}
	return c.doPayment(req)
}

// CreateCharge asks the gateway to create a charge for a booking.
func (c *HTTPClient) CreateCharge(ctx context.Context, charge *ChargeRequest) (*PaymentInfo, error) {
	body, err := json.Marshal(charge)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payments", strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doPayment(req)
}

func (c *HTTPClient) doPayment(req *http.Request) (*PaymentInfo, error) {
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("gateway payment: %w", domain.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(body))
	}

	var payment PaymentInfo
	if err := json.NewDecoder(resp.Body).Decode(&payment); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return &payment, nil
}
