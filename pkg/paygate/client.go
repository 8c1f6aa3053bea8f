package paygate

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Outcome values reported by the provider, already normalized by this client.
// OutcomePending means the provider has not finalized the charge yet; it is
// never recorded as an outcome.
const (
	OutcomeSucceeded = "SUCCEEDED"
	OutcomeFailed    = "FAILED"
	OutcomePending   = "PENDING"
)

// Client talks to the payment provider's REST API. With Mock enabled it
// returns deterministic sessions and outcomes for local development.
type Client struct {
	BaseURL       string
	SecretKey     string
	WebhookSecret string
	Mock          bool
	client        *http.Client
}

// CheckoutRequest describes a payment session to open with the provider
type CheckoutRequest struct {
	TransactionRef string `json:"reference"`
	Amount         int64  `json:"amount"` // minor currency units
	Currency       string `json:"currency"`
	PayerContact   string `json:"customer"`
	CallbackURL    string `json:"callback_url"`
}

// CheckoutSession is the provider's response to a checkout request
type CheckoutSession struct {
	PaymentURL  string `json:"authorization_url"`
	ProviderRef string `json:"provider_ref"`
}

// ChargeStatus is the provider's view of a charge, used by the confirm poll
type ChargeStatus struct {
	TransactionRef string `json:"reference"`
	ProviderRef    string `json:"provider_ref"`
	Outcome        string `json:"status"`
	RawPayload     []byte `json:"-"`
}

// NewClient creates a new payment gateway client
func NewClient(baseURL, secretKey, webhookSecret string, mock bool) *Client {
	return &Client{
		BaseURL:       baseURL,
		SecretKey:     secretKey,
		WebhookSecret: webhookSecret,
		Mock:          mock,
		client:        &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateCheckout opens a payment session for the given amount and payer and
// returns the redirect target for the client.
func (c *Client) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if c.Mock {
		return &CheckoutSession{
			PaymentURL:  c.BaseURL + "/mock/checkout/" + req.TransactionRef,
			ProviderRef: "MOCK-" + req.TransactionRef,
		}, nil
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.SecretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("paygate checkout request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paygate checkout returned status %d", resp.StatusCode)
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

// VerifyCharge queries the provider for the current outcome of a charge
func (c *Client) VerifyCharge(ctx context.Context, transactionRef string) (*ChargeStatus, error) {
	if c.Mock {
		return &ChargeStatus{
			TransactionRef: transactionRef,
			ProviderRef:    "MOCK-" + transactionRef,
			Outcome:        OutcomeSucceeded,
			RawPayload:     []byte(`{"mock":true,"status":"success"}`),
		}, nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/transaction/verify/"+transactionRef, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("paygate verify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("paygate has no charge for reference %s", transactionRef)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("paygate verify returned status %d", resp.StatusCode)
	}

	var raw struct {
		Reference   string `json:"reference"`
		ProviderRef string `json:"provider_ref"`
		Status      string `json:"status"`
	}
	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		return nil, err
	}

	return &ChargeStatus{
		TransactionRef: raw.Reference,
		ProviderRef:    raw.ProviderRef,
		Outcome:        NormalizeOutcome(raw.Status),
		RawPayload:     buf.Bytes(),
	}, nil
}

// VerifySignature checks the webhook body against its HMAC-SHA256 signature.
// Mandatory in production; the webhook handler only skips it in mock mode.
func (c *Client) VerifySignature(payload []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.WebhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes the webhook signature for a payload. Exposed for tests and
// for the mock provider.
func (c *Client) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(c.WebhookSecret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// NormalizeOutcome maps provider status strings onto the outcomes the
// settlement engine understands. Only explicitly terminal statuses settle a
// transaction; anything unrecognized is treated as still in flight, because
// failing a charge the provider may yet complete loses a captured payment.
func NormalizeOutcome(status string) string {
	switch status {
	case "success", "successful", "SUCCESS", "SUCCEEDED":
		return OutcomeSucceeded
	case "failed", "failure", "abandoned", "reversed", "cancelled", "declined", "FAILED":
		return OutcomeFailed
	default:
		return OutcomePending
	}
}
