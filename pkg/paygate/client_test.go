package paygate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockMode(t *testing.T) {
	client := NewClient("https://pay.example", "sk_test", "whsec_test", true)

	session, err := client.CreateCheckout(context.Background(), CheckoutRequest{
		TransactionRef: "PGV-abc",
		Amount:         300,
		Currency:       "NGN",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/mock/checkout/PGV-abc", session.PaymentURL)
	assert.Equal(t, "MOCK-PGV-abc", session.ProviderRef)

	charge, err := client.VerifyCharge(context.Background(), "PGV-abc")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSucceeded, charge.Outcome)
	assert.Equal(t, "PGV-abc", charge.TransactionRef)
	assert.NotEmpty(t, charge.RawPayload)
}

func TestCreateCheckout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		var req CheckoutRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "PGV-abc", req.TransactionRef)
		assert.EqualValues(t, 300, req.Amount)

		json.NewEncoder(w).Encode(CheckoutSession{
			PaymentURL:  "https://provider.example/pay/xyz",
			ProviderRef: "PRV-123",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test", "whsec_test", false)
	session, err := client.CreateCheckout(context.Background(), CheckoutRequest{
		TransactionRef: "PGV-abc",
		Amount:         300,
		Currency:       "NGN",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://provider.example/pay/xyz", session.PaymentURL)
	assert.Equal(t, "PRV-123", session.ProviderRef)
}

func TestCreateCheckoutProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test", "whsec_test", false)
	_, err := client.CreateCheckout(context.Background(), CheckoutRequest{TransactionRef: "PGV-abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestVerifyCharge(t *testing.T) {
	t.Run("normalizes the provider status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/transaction/verify/PGV-abc", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]string{
				"reference":    "PGV-abc",
				"provider_ref": "PRV-123",
				"status":       "successful",
			})
		}))
		defer server.Close()

		client := NewClient(server.URL, "sk_test", "whsec_test", false)
		charge, err := client.VerifyCharge(context.Background(), "PGV-abc")
		require.NoError(t, err)
		assert.Equal(t, OutcomeSucceeded, charge.Outcome)
		assert.Equal(t, "PRV-123", charge.ProviderRef)
		assert.NotEmpty(t, charge.RawPayload)
	})

	t.Run("errors on an unknown charge", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewClient(server.URL, "sk_test", "whsec_test", false)
		_, err := client.VerifyCharge(context.Background(), "PGV-missing")
		require.Error(t, err)
	})
}

func TestSignatureRoundTrip(t *testing.T) {
	client := NewClient("", "sk_test", "whsec_test", false)
	payload := []byte(`{"event":"charge.completed","data":{"reference":"PGV-abc"}}`)

	signature := client.Sign(payload)
	assert.True(t, client.VerifySignature(payload, signature))

	assert.False(t, client.VerifySignature([]byte(`{"tampered":true}`), signature))
	assert.False(t, client.VerifySignature(payload, signature+"00"))
	assert.False(t, client.VerifySignature(payload, ""))

	other := NewClient("", "sk_test", "whsec_other", false)
	assert.False(t, other.VerifySignature(payload, signature))
}

func TestNormalizeOutcome(t *testing.T) {
	for _, status := range []string{"success", "successful", "SUCCESS", "SUCCEEDED"} {
		assert.Equal(t, OutcomeSucceeded, NormalizeOutcome(status), status)
	}
	for _, status := range []string{"failed", "failure", "abandoned", "reversed", "cancelled", "declined", "FAILED"} {
		assert.Equal(t, OutcomeFailed, NormalizeOutcome(status), status)
	}
	// Non-terminal or unrecognized statuses must never settle a transaction
	for _, status := range []string{"pending", "processing", "ongoing", "queued", ""} {
		assert.Equal(t, OutcomePending, NormalizeOutcome(status), status)
	}
}
