package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/qs3c/options_go_server/config"
)

// Client 支付方 API 客户端：创建托管结账会话与订阅管理门户会话。
// 订阅状态变更不走这里，统一由 webhook 回调驱动。
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(cfg *config.BillingConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
	}
}

// Customer 支付方侧的客户记录
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// CheckoutSession 托管结账会话
type CheckoutSession struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	Subscription string `json:"subscription,omitempty"`
}

// PortalSession 订阅管理门户会话
type PortalSession struct {
	URL string `json:"url"`
}

// CreateCustomer 创建支付方客户，metadata 带上本系统的 user_id 便于对账
func (c *Client) CreateCustomer(ctx context.Context, email string, userID int64) (*Customer, error) {
	payload := map[string]interface{}{
		"email": email,
		"metadata": map[string]string{
			"user_id": fmt.Sprintf("%d", userID),
		},
	}

	var customer Customer
	if err := c.post(ctx, "/v1/customers", payload, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// CreateCheckoutSession 创建订阅结账会话
func (c *Client) CreateCheckoutSession(ctx context.Context, customerID, priceID, plan string, userID int64, successURL, cancelURL string) (*CheckoutSession, error) {
	payload := map[string]interface{}{
		"customer":    customerID,
		"mode":        "subscription",
		"line_items":  []map[string]interface{}{{"price": priceID, "quantity": 1}},
		"success_url": successURL,
		"cancel_url":  cancelURL,
		"metadata": map[string]string{
			"user_id": fmt.Sprintf("%d", userID),
			"plan":    plan,
		},
	}

	var session CheckoutSession
	if err := c.post(ctx, "/v1/checkout/sessions", payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// CreatePortalSession 创建订阅管理门户会话（改卡、退订等自助操作）
func (c *Client) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*PortalSession, error) {
	payload := map[string]interface{}{
		"customer":   customerID,
		"return_url": returnURL,
	}

	var session PortalSession
	if err := c.post(ctx, "/v1/billing_portal/sessions", payload, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("billing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("billing api status %d: %s", resp.StatusCode, string(data))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
