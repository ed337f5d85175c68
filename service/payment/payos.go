package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// One line item of a checkout, shown on the gateway's hosted page
type CheckoutItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int64  `json:"price"`
}

// Everything the gateway needs to build a hosted checkout page
type CheckoutRequest struct {
	OrderCode   int64          `json:"orderCode"`
	Amount      int64          `json:"amount"`
	Description string         `json:"description"`
	BuyerName   string         `json:"buyerName,omitempty"`
	BuyerEmail  string         `json:"buyerEmail,omitempty"`
	Items       []CheckoutItem `json:"items,omitempty"`
	ReturnURL   string         `json:"returnUrl"`
	CancelURL   string         `json:"cancelUrl"`
	Signature   string         `json:"signature"`
}

// The hosted checkout link the gateway hands back
type CheckoutLink struct {
	CheckoutURL   string `json:"checkoutUrl"`
	PaymentLinkID string `json:"paymentLinkId"`
}

// payOS response envelope: every response carries a code ("00" = success),
// a description and the actual payload under data
type payosResp struct {
	Code string          `json:"code"`
	Desc string          `json:"desc"`
	Data json.RawMessage `json:"data"`
}

// Webhook payload delivered by the gateway after a checkout finishes.
// Success is signaled by data.code == "00" or data.status == "PAID"; the
// gateway may deliver the same webhook more than once.
type WebhookPayload struct {
	Code string      `json:"code"`
	Desc string      `json:"desc"`
	Data WebhookData `json:"data"`
}

type WebhookData struct {
	OrderCode int64  `json:"orderCode"`
	Code      string `json:"code"`
	Desc      string `json:"desc"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	Reference string `json:"reference"`
}

// Whether this delivery reports a successful payment
func (p *WebhookPayload) IsSuccess() bool {
	return p.Data.Code == "00" || p.Data.Status == "PAID"
}

// PayOSClient talks to the payOS merchant API over plain HTTP. Constructed
// once at process start and injected into the order service.
type PayOSClient struct {
	baseURL     string
	clientID    string
	apiKey      string
	checksumKey string
	client      *http.Client
}

func NewPayOSClient(baseURL, clientID, apiKey, checksumKey string) *PayOSClient {
	return &PayOSClient{
		baseURL:     baseURL,
		clientID:    clientID,
		apiKey:      apiKey,
		checksumKey: checksumKey,
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

// Sign the checkout request the way payOS expects: HMAC-SHA256 over the
// alphabetically ordered core fields, keyed with the checksum key
func (gateway *PayOSClient) sign(req *CheckoutRequest) string {
	payload := fmt.Sprintf(
		"amount=%d&cancelUrl=%s&description=%s&orderCode=%d&returnUrl=%s",
		req.Amount, req.CancelURL, req.Description, req.OrderCode, req.ReturnURL,
	)
	mac := hmac.New(sha256.New, []byte(gateway.checksumKey))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Request a hosted checkout link for the order. The call is bounded by the
// client timeout; any failure is surfaced to the caller, which must run its
// compensating cancellation.
func (gateway *PayOSClient) CreatePaymentLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error) {
	req.Signature = gateway.sign(&req)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, gateway.baseURL+"/v2/payment-requests", bytes.NewBuffer(body),
	)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-client-id", gateway.clientID)
	httpReq.Header.Set("x-api-key", gateway.apiKey)

	resp, err := gateway.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("payment gateway status not ok: %s %s", resp.Status, string(message))
	}

	var envelope payosResp
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}
	if envelope.Code != "00" {
		return nil, fmt.Errorf("payment gateway rejected the request: %s (%s)", envelope.Desc, envelope.Code)
	}

	var link CheckoutLink
	if err := json.Unmarshal(envelope.Data, &link); err != nil {
		return nil, err
	}
	if link.CheckoutURL == "" {
		return nil, fmt.Errorf("payment gateway returned no checkout URL")
	}

	return &link, nil
}
