package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tutorlink-backend/internal/domain"
)

func TestSignatureValidator_Validate(t *testing.T) {
	validator := NewSignatureValidator("webhook-secret")

	t.Run("Accepts its own signature", func(t *testing.T) {
		header := SignatureHeader{
			Signature: validator.Sign("pay_123", "req-1", "1700000000"),
			RequestID: "req-1",
		}

		assert.NoError(t, validator.Validate("pay_123", header))
	})

	t.Run("Rejects a signature for a different data id", func(t *testing.T) {
		header := SignatureHeader{
			Signature: validator.Sign("pay_123", "req-1", "1700000000"),
			RequestID: "req-1",
		}

		err := validator.Validate("pay_999", header)

		assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	})

	t.Run("Rejects a signature computed with another secret", func(t *testing.T) {
		other := NewSignatureValidator("leaked-secret")
		header := SignatureHeader{
			Signature: other.Sign("pay_123", "req-1", "1700000000"),
			RequestID: "req-1",
		}

		err := validator.Validate("pay_123", header)

		assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	})

	t.Run("Rejects a tampered request id", func(t *testing.T) {
		header := SignatureHeader{
			Signature: validator.Sign("pay_123", "req-1", "1700000000"),
			RequestID: "req-2",
		}

		err := validator.Validate("pay_123", header)

		assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	})

	t.Run("Rejects a malformed header", func(t *testing.T) {
		for _, sig := range []string{"", "garbage", "ts=1700000000", "v1=abc"} {
			err := validator.Validate("pay_123", SignatureHeader{Signature: sig})
			assert.ErrorIs(t, err, domain.ErrInvalidSignature)
		}
	})

	t.Run("Tolerates whitespace between header parts", func(t *testing.T) {
		signed := validator.Sign("pay_123", "req-1", "1700000000")
		spaced := "ts=1700000000, " + signed[len("ts=1700000000,"):]

		assert.NoError(t, validator.Validate("pay_123", SignatureHeader{Signature: spaced, RequestID: "req-1"}))
	})
}

func TestPaymentInfo_TransactionStatus(t *testing.T) {
	cases := map[string]domain.TransactionStatus{
		"approved":   domain.TransactionStatusApproved,
		"APPROVED":   domain.TransactionStatusApproved,
		"rejected":   domain.TransactionStatusRejected,
		"cancelled":  domain.TransactionStatusCancelled,
		"pending":    domain.TransactionStatusPending,
		"in_process": domain.TransactionStatusInProcess,
		"refunded":   "",
		"":           "",
	}
	for status, want := range cases {
		p := PaymentInfo{Status: status}
		assert.Equal(t, want, p.TransactionStatus(), "status %q", status)
	}
}
