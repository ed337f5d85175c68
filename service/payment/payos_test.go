package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreatePaymentLink(t *testing.T) {
	var received CheckoutRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/payment-requests", r.URL.Path)
		require.Equal(t, "test-client", r.Header.Get("x-client-id"))
		require.Equal(t, "test-key", r.Header.Get("x-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		json.NewEncoder(w).Encode(map[string]any{
			"code": "00",
			"desc": "success",
			"data": map[string]any{
				"checkoutUrl":   "https://pay.example.com/web/abc123",
				"paymentLinkId": "abc123",
			},
		})
	}))
	defer server.Close()

	gateway := NewPayOSClient(server.URL, "test-client", "test-key", "checksum-secret")

	link, err := gateway.CreatePaymentLink(context.Background(), CheckoutRequest{
		OrderCode:   123456789012345,
		Amount:      200000,
		Description: "ABCDEF-1A2B3C4D5E",
		ReturnURL:   "https://shop.example.com/orders/success",
		CancelURL:   "https://shop.example.com/orders/cancel",
	})
	require.NoError(t, err)
	require.Equal(t, "https://pay.example.com/web/abc123", link.CheckoutURL)
	require.Equal(t, "abc123", link.PaymentLinkID)

	// The request must carry a signature over the core fields
	require.NotEmpty(t, received.Signature)
	require.Len(t, received.Signature, 64) // hex encoded HMAC-SHA256
}

func TestCreatePaymentLinkGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"code": "231",
			"desc": "duplicate order code",
		})
	}))
	defer server.Close()

	gateway := NewPayOSClient(server.URL, "test-client", "test-key", "checksum-secret")

	_, err := gateway.CreatePaymentLink(context.Background(), CheckoutRequest{
		OrderCode: 1,
		Amount:    1000,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate order code")
}

func TestWebhookIsSuccess(t *testing.T) {
	paid := WebhookPayload{Data: WebhookData{OrderCode: 1, Code: "00"}}
	require.True(t, paid.IsSuccess())

	paidStatus := WebhookPayload{Data: WebhookData{OrderCode: 1, Status: "PAID"}}
	require.True(t, paidStatus.IsSuccess())

	failed := WebhookPayload{Data: WebhookData{OrderCode: 1, Code: "01", Status: "CANCELLED"}}
	require.False(t, failed.IsSuccess())
}
