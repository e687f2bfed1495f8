package phonepe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"nplusone-backend/internal/domains/payment/gateway"
)

// =====================================================
// PHONEPE CLIENT IMPLEMENTATION
// =====================================================

type Client struct {
	config     *Config
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates new PhonePe client
func NewClient(config *Config) (gateway.PhonePeGateway, error) {
	if config.ClientID == "" || config.ClientSecret == "" {
		return nil, fmt.Errorf("phonepe credentials not configured")
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// =====================================================
// OAUTH TOKEN
// =====================================================

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"`
	TokenType   string `json:"token_type"`
}

// getAccessToken returns a cached token, refreshing when close to expiry.
func (c *Client) getAccessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Until(c.tokenExpiry) > 2*time.Minute {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("client_id", c.config.ClientID)
	form.Set("client_secret", c.config.ClientSecret)
	form.Set("client_version", strconv.Itoa(c.config.ClientVersion))
	form.Set("grant_type", "client_credentials")

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.config.GetTokenURL(), bytes.NewBufferString(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call PhonePe token API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("PhonePe token API returned %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var token tokenResponse
	if err := json.Unmarshal(bodyBytes, &token); err != nil {
		return "", fmt.Errorf("failed to unmarshal token response: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("access_token not found in response")
	}

	c.accessToken = token.AccessToken
	c.tokenExpiry = time.Unix(token.ExpiresAt, 0)

	return c.accessToken, nil
}

// =====================================================
// CREATE PAYMENT
// =====================================================

// CreatePayment opens a Standard Checkout session and returns the hosted
// payment page URL.
func (c *Client) CreatePayment(ctx context.Context, req gateway.PhonePePaymentRequest) (*gateway.PhonePePaymentResponse, error) {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	// Amount goes over the wire in paise
	amountPaise := req.Amount.Mul(decimal.NewFromInt(100)).IntPart()

	requestBody := map[string]interface{}{
		"merchantOrderId": req.MerchantOrderID,
		"amount":          amountPaise,
		"paymentFlow": map[string]interface{}{
			"type": "PG_CHECKOUT",
			"merchantUrls": map[string]interface{}{
				"redirectUrl": req.RedirectURL,
			},
		},
	}

	bodyJSON, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.config.GetPayURL(), bytes.NewReader(bodyJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "O-Bearer "+token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call PhonePe pay API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("PhonePe pay API returned %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var respData struct {
		OrderID     string `json:"orderId"`
		State       string `json:"state"`
		RedirectURL string `json:"redirectUrl"`
	}
	if err := json.Unmarshal(bodyBytes, &respData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if respData.RedirectURL == "" {
		return nil, fmt.Errorf("redirectUrl not found in response")
	}

	return &gateway.PhonePePaymentResponse{
		OrderID:     respData.OrderID,
		State:       respData.State,
		RedirectURL: respData.RedirectURL,
	}, nil
}

// =====================================================
// GET ORDER STATUS
// =====================================================

// GetOrderStatus fetches the authoritative payment state for an order.
func (c *Client) GetOrderStatus(ctx context.Context, merchantOrderID string) (*gateway.PhonePeOrderStatus, error) {
	token, err := c.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "GET", c.config.GetOrderStatusURL(merchantOrderID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "O-Bearer "+token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call PhonePe status API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("PhonePe status API returned %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var respData struct {
		OrderID        string `json:"orderId"`
		State          string `json:"state"`
		Amount         int64  `json:"amount"`
		PaymentDetails []struct {
			TransactionID string `json:"transactionId"`
			State         string `json:"state"`
		} `json:"paymentDetails"`
	}
	if err := json.Unmarshal(bodyBytes, &respData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	status := &gateway.PhonePeOrderStatus{
		OrderID: respData.OrderID,
		State:   respData.State,
		Amount:  respData.Amount,
	}
	if len(respData.PaymentDetails) > 0 {
		status.TransactionID = respData.PaymentDetails[0].TransactionID
	}

	return status, nil
}
