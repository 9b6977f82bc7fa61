// Package paymentprovider скрывает Stripe за небольшим интерфейсом,
// чтобы сервис подписок можно было тестировать без сети.
package paymentprovider

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
)

// Client — Stripe-клиент приложения.
type Client struct {
	api *client.API
}

// NewClient создаёт клиент с секретным ключом Stripe.
func NewClient(secretKey string) *Client {
	return &Client{api: client.New(secretKey, nil)}
}

// NewClientWithURL создаёт клиент, отправляющий запросы на baseURL.
func NewClientWithURL(secretKey, baseURL string) *Client {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:           stripe.String(baseURL),
		LeveledLogger: &stripe.LeveledLogger{Level: stripe.LevelError},
	})
	return &Client{api: client.New(secretKey, &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})}
}

// CreateCheckoutSession создаёт разовую оплату картой на одну позицию и возвращает ID сессии.
func (c *Client) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (string, error) {
	const op = "paymentprovider.CreateCheckoutSession"

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(p.PriceID), Quantity: stripe.Int64(1)},
		},
		ClientReferenceID: stripe.String(p.UserID),
		SuccessURL:        stripe.String(p.SuccessURL),
		CancelURL:         stripe.String(p.CancelURL),
	}
	if p.CouponID != "" {
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{
			{Coupon: stripe.String(p.CouponID)},
		}
	}
	params.Context = ctx

	s, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return s.ID, nil
}

// GetCheckoutSession возвращает сессию оплаты по ID.
func (c *Client) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	const op = "paymentprovider.GetCheckoutSession"

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := &CheckoutSession{
		ID:                s.ID,
		ClientReferenceID: s.ClientReferenceID,
		PaymentStatus:     string(s.PaymentStatus),
	}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	return out, nil
}

// UpdateCustomerDescription записывает description в карточку покупателя.
func (c *Client) UpdateCustomerDescription(ctx context.Context, customerID, description string) error {
	const op = "paymentprovider.UpdateCustomerDescription"

	params := &stripe.CustomerParams{Description: stripe.String(description)}
	params.Context = ctx

	if _, err := c.api.Customers.Update(customerID, params); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
