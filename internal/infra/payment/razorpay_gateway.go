package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"subscription-billing/internal/domain"
	"subscription-billing/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*RazorpayGateway)(nil)

// RazorpayGateway implements PaymentGateway against the Razorpay Orders API
// using direct HTTP calls with basic auth.
type RazorpayGateway struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

// NewRazorpayGateway constructs the gateway. An empty baseURL selects the
// production API; timeout bounds every outbound call.
func NewRazorpayGateway(keyID, keySecret, baseURL string, timeout time.Duration) *RazorpayGateway {
	if baseURL == "" {
		baseURL = "https://api.razorpay.com/v1"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RazorpayGateway{
		keyID:     keyID,
		keySecret: keySecret,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: timeout},
	}
}

func (g *RazorpayGateway) Name() string { return "razorpay" }

// razorpayOrderResponse represents the response from the order creation API.
type razorpayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
	Error    *struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder implements PaymentGateway.CreateOrder.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amountMinorUnits int64, currency, receipt string) (adapter.GatewayOrder, error) {
	requestData := map[string]interface{}{
		"amount":   amountMinorUnits,
		"currency": currency,
		"receipt":  receipt,
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return adapter.GatewayOrder{}, fmt.Errorf("failed to marshal request data: %w", err)
	}

	url := g.baseURL + "/orders"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return adapter.GatewayOrder{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.client.Do(req)
	if err != nil {
		return adapter.GatewayOrder{}, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return adapter.GatewayOrder{}, fmt.Errorf("%w: read response: %v", domain.ErrGatewayUnavailable, err)
	}

	var response razorpayOrderResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return adapter.GatewayOrder{}, fmt.Errorf("%w: unmarshal response: %v, body: %s", domain.ErrGatewayUnavailable, err, string(body))
	}

	if resp.StatusCode != http.StatusOK || response.ID == "" {
		if response.Error != nil {
			return adapter.GatewayOrder{}, fmt.Errorf("%w: razorpay error: code %s, description: %s",
				domain.ErrGatewayUnavailable, response.Error.Code, response.Error.Description)
		}
		return adapter.GatewayOrder{}, fmt.Errorf("%w: razorpay status %d", domain.ErrGatewayUnavailable, resp.StatusCode)
	}

	return adapter.GatewayOrder{
		ID:       response.ID,
		Amount:   response.Amount,
		Currency: response.Currency,
		Receipt:  response.Receipt,
	}, nil
}
