package paymentprovider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithURL("sk_test_123", srv.URL)
}

func TestCreateCheckoutSession(t *testing.T) {
	var form url.Values
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cs_test_1","object":"checkout.session"}`))
	})

	id, err := c.CreateCheckoutSession(context.Background(), CheckoutParams{
		PriceID:    "price_1",
		CouponID:   "SPRING",
		UserID:     "u-1",
		SuccessURL: "https://example.org/ok",
		CancelURL:  "https://example.org/account",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", id)

	assert.Equal(t, "payment", form.Get("mode"))
	assert.Equal(t, "card", form.Get("payment_method_types[0]"))
	assert.Equal(t, "price_1", form.Get("line_items[0][price]"))
	assert.Equal(t, "1", form.Get("line_items[0][quantity]"))
	assert.Equal(t, "u-1", form.Get("client_reference_id"))
	assert.Equal(t, "SPRING", form.Get("discounts[0][coupon]"))
	assert.Equal(t, "https://example.org/ok", form.Get("success_url"))
}

func TestCreateCheckoutSession_WithoutCoupon(t *testing.T) {
	var form url.Values
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		_, _ = w.Write([]byte(`{"id":"cs_test_2"}`))
	})

	_, err := c.CreateCheckoutSession(context.Background(), CheckoutParams{PriceID: "price_1", UserID: "u-1"})
	require.NoError(t, err)
	_, has := form["discounts[0][coupon]"]
	assert.False(t, has)
}

func TestGetCheckoutSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions/cs_test_1", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"cs_test_1","client_reference_id":"u-1","customer":"cus_9","payment_status":"paid"}`))
	})

	s, err := c.GetCheckoutSession(context.Background(), "cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", s.ClientReferenceID)
	assert.Equal(t, "cus_9", s.CustomerID)
	assert.True(t, s.Paid())
}

func TestUpdateCustomerDescription(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/customers/cus_9", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "u-1", r.PostForm.Get("description"))
		_, _ = w.Write([]byte(`{"id":"cus_9"}`))
	})

	require.NoError(t, c.UpdateCustomerDescription(context.Background(), "cus_9", "u-1"))
}

func TestStripeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"No such price"}}`))
	})

	_, err := c.CreateCheckoutSession(context.Background(), CheckoutParams{PriceID: "bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paymentprovider.CreateCheckoutSession")
}

func TestCheckoutSession_Paid(t *testing.T) {
	assert.True(t, CheckoutSession{PaymentStatus: "no_payment_required"}.Paid())
	assert.False(t, CheckoutSession{PaymentStatus: "unpaid"}.Paid())
}
