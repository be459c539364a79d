package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a thin pass-through to the external subscription/payment provider.
// Provider errors propagate to callers unchanged; the provider owns all
// subscription state and consistency.

type Subscription struct {
	ID                 string `json:"id"`
	CustomerID         string `json:"customer"`
	Status             string `json:"status"`
	PriceID            string `json:"price_id"`
	CurrentPeriodStart int64  `json:"current_period_start"`
	CurrentPeriodEnd   int64  `json:"current_period_end"`
	CancelAtPeriodEnd  bool   `json:"cancel_at_period_end"`
	Amount             int64  `json:"amount"`
	Currency           string `json:"currency"`
	PaymentMethodID    string `json:"default_payment_method"`
}

type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Card struct {
	ID       string `json:"id"`
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
}

type Plan struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Interval string `json:"interval"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func New(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

func (c *Client) CreateCustomer(ctx context.Context, email, name string) (*Customer, error) {
	form := url.Values{}
	form.Set("email", email)
	form.Set("name", name)

	out := &Customer{}
	if err := c.do(ctx, http.MethodPost, "/customers", form, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateSubscription(ctx context.Context, customerID, paymentMethodID, priceID string) (*Subscription, error) {
	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("default_payment_method", paymentMethodID)
	form.Set("price_id", priceID)

	out := &Subscription{}
	if err := c.do(ctx, http.MethodPost, "/subscriptions", form, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	out := &Subscription{}
	if err := c.do(ctx, http.MethodDelete, "/subscriptions/"+subscriptionID, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	out := &Subscription{}
	if err := c.do(ctx, http.MethodGet, "/subscriptions/"+subscriptionID, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListCards(ctx context.Context, customerID string) ([]Card, error) {
	var out struct {
		Data []Card `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/customers/"+customerID+"/cards", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) RemoveCard(ctx context.Context, customerID, cardID string) error {
	return c.do(ctx, http.MethodDelete, "/customers/"+customerID+"/cards/"+cardID, nil, nil)
}

func (c *Client) ListPlans(ctx context.Context) ([]Plan, error) {
	var out struct {
		Data []Plan `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/plans", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, out interface{}) error {
	if c.apiKey == "" {
		return errors.New("missing payment api key")
	}

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e apiError
		if json.Unmarshal(raw, &e) == nil && e.Error.Message != "" {
			return fmt.Errorf("payment provider error (%d): %s", resp.StatusCode, e.Error.Message)
		}
		return fmt.Errorf("payment provider http error (%d): %s", resp.StatusCode, string(raw))
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}
