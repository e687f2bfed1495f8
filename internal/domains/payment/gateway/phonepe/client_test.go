package phonepe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nplusone-backend/internal/domains/payment/gateway"
)

func newTestServer(t *testing.T, tokenCalls *int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/v1/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		*tokenCalls++
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostFormValue("grant_type"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "tok-123",
			"expires_at":   time.Now().Add(time.Hour).Unix(),
			"token_type":   "O-Bearer",
		})
	})

	mux.HandleFunc("/checkout/v2/pay", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "O-Bearer tok-123", r.Header.Get("Authorization"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ORD123", body["merchantOrderId"])
		assert.Equal(t, float64(259800), body["amount"], "amount must be in paise")

		json.NewEncoder(w).Encode(map[string]interface{}{
			"orderId":     "OMO456",
			"state":       "PENDING",
			"redirectUrl": "https://mercury.phonepe.com/transact/ORD123",
		})
	})

	mux.HandleFunc("/checkout/v2/order/ORD123/status", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "O-Bearer tok-123", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"orderId": "OMO456",
			"state":   "COMPLETED",
			"amount":  259800,
			"paymentDetails": []map[string]interface{}{
				{"transactionId": "T789", "state": "COMPLETED"},
			},
		})
	})

	return httptest.NewServer(mux)
}

func newTestClient(t *testing.T, serverURL string) gateway.PhonePeGateway {
	t.Helper()
	client, err := NewClient(&Config{
		ClientID:      "client",
		ClientSecret:  "secret",
		ClientVersion: 1,
		Environment:   EnvironmentSandbox,
		BaseURL:       serverURL,
		AuthBaseURL:   serverURL,
	})
	require.NoError(t, err)
	return client
}

func TestCreatePayment(t *testing.T) {
	var tokenCalls int
	server := newTestServer(t, &tokenCalls)
	defer server.Close()

	client := newTestClient(t, server.URL)

	resp, err := client.CreatePayment(context.Background(), gateway.PhonePePaymentRequest{
		MerchantOrderID: "ORD123",
		Amount:          decimal.NewFromInt(2598),
		RedirectURL:     "https://api.nplusone.in/callback",
	})
	require.NoError(t, err)

	assert.Equal(t, "OMO456", resp.OrderID)
	assert.Equal(t, "https://mercury.phonepe.com/transact/ORD123", resp.RedirectURL)
}

func TestGetOrderStatus(t *testing.T) {
	var tokenCalls int
	server := newTestServer(t, &tokenCalls)
	defer server.Close()

	client := newTestClient(t, server.URL)

	status, err := client.GetOrderStatus(context.Background(), "ORD123")
	require.NoError(t, err)

	assert.Equal(t, gateway.StateCompleted, status.State)
	assert.Equal(t, int64(259800), status.Amount)
	assert.Equal(t, "T789", status.TransactionID)
}

func TestAccessTokenIsCached(t *testing.T) {
	var tokenCalls int
	server := newTestServer(t, &tokenCalls)
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.GetOrderStatus(context.Background(), "ORD123")
	require.NoError(t, err)
	_, err = client.GetOrderStatus(context.Background(), "ORD123")
	require.NoError(t, err)

	assert.Equal(t, 1, tokenCalls, "token fetched once and reused")
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(&Config{})
	assert.Error(t, err)
}
