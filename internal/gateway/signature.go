package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"tutorlink-backend/internal/domain"
)

// SignatureHeader carries the authenticity headers of an inbound webhook
// delivery: the x-signature value ("ts=...,v1=...") and the x-request-id.
type SignatureHeader struct {
	Signature string
	RequestID string
}

// SignatureValidator verifies webhook deliveries against the shared
// secret. The signed manifest is "id:{dataID};request-id:{rid};ts:{ts};"
// and v1 is its hex-encoded HMAC-SHA256.
type SignatureValidator struct {
	secret string
}

func NewSignatureValidator(secret string) *SignatureValidator {
	return &SignatureValidator{secret: secret}
}

// Validate checks the v1 digest for the given webhook data id. It returns
// domain.ErrInvalidSignature on any mismatch or malformed header.
func (v *SignatureValidator) Validate(dataID string, header SignatureHeader) error {
	ts, v1, err := parseSignature(header.Signature)
	if err != nil {
		return err
	}

	expected := v.digest(dataID, header.RequestID, ts)
	if !hmac.Equal([]byte(expected), []byte(v1)) {
		return fmt.Errorf("digest mismatch: %w", domain.ErrInvalidSignature)
	}
	return nil
}

// Sign produces an x-signature header value, used by tests and by the
// sandbox tooling that replays gateway deliveries.
func (v *SignatureValidator) Sign(dataID, requestID, ts string) string {
	return fmt.Sprintf("ts=%s,v1=%s", ts, v.digest(dataID, requestID, ts))
}

func (v *SignatureValidator) digest(dataID, requestID, ts string) string {
	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", dataID, requestID, ts)
	mac := hmac.New(sha256.New, []byte(v.secret))
	mac.Write([]byte(manifest))
	return hex.EncodeToString(mac.Sum(nil))
}

func parseSignature(header string) (ts, v1 string, err error) {
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "ts":
			ts = value
		case "v1":
			v1 = value
		}
	}
	if ts == "" || v1 == "" {
		return "", "", fmt.Errorf("malformed signature header: %w", domain.ErrInvalidSignature)
	}
	return ts, v1, nil
}
