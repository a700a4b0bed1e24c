package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// PayPalClient creates checkout orders against PayPal's Orders API.
type PayPalClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	client       *http.Client
}

// NewPayPalClient creates a PayPal gateway client. An empty baseURL
// targets the sandbox environment.
func NewPayPalClient(baseURL, clientID, clientSecret string) *PayPalClient {
	if baseURL == "" {
		baseURL = "https://api-m.sandbox.paypal.com"
	}
	return &PayPalClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		client:       &http.Client{Timeout: DefaultCallTimeout},
	}
}

type paypalOrder struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Links  []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
}

func (c *PayPalClient) CreatePayment(ctx context.Context, amount float64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	body := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"amount": map[string]string{
					"currency_code": strings.ToUpper(currency),
					"value":         fmt.Sprintf("%.2f", amount),
				},
				"custom_id": metadata["transactionId"],
			},
		},
	}

	var order paypalOrder
	if err := c.do(ctx, http.MethodPost, "/v2/checkout/orders", body, &order); err != nil {
		return nil, fmt.Errorf("paypal order creation failed: %w", err)
	}

	intent := &PaymentIntent{
		ExternalID: order.ID,
		Status:     mapPayPalStatus(order.Status),
	}
	for _, link := range order.Links {
		if link.Rel == "approve" {
			intent.RedirectURL = link.Href
		}
	}
	return intent, nil
}

func (c *PayPalClient) GetStatus(ctx context.Context, externalID string) (string, error) {
	var order paypalOrder
	if err := c.do(ctx, http.MethodGet, "/v2/checkout/orders/"+externalID, nil, &order); err != nil {
		return "", fmt.Errorf("paypal status lookup failed: %w", err)
	}
	return mapPayPalStatus(order.Status), nil
}

func (c *PayPalClient) do(ctx context.Context, method, path string, body, dest interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultCallTimeout)
	defer cancel()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("paypal returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

func mapPayPalStatus(status string) string {
	switch status {
	case "COMPLETED":
		return StatusCompleted
	case "VOIDED", "DECLINED":
		return StatusFailed
	default:
		return StatusProcessing
	}
}

var _ Client = (*PayPalClient)(nil)
