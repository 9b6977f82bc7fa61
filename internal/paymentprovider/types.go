package paymentprovider

import "errors"

// ErrNotPaid возвращается, если сессия оплаты ещё не оплачена.
var ErrNotPaid = errors.New("checkout session is not paid")

// CheckoutParams — параметры новой сессии оплаты.
type CheckoutParams struct {
	PriceID    string
	CouponID   string
	UserID     string
	SuccessURL string
	CancelURL  string
}

// CheckoutSession — данные завершённой сессии оплаты.
type CheckoutSession struct {
	ID                string
	ClientReferenceID string
	CustomerID        string
	PaymentStatus     string
}

// Paid сообщает, можно ли выдавать подписку по сессии.
func (s CheckoutSession) Paid() bool {
	return s.PaymentStatus == "paid" || s.PaymentStatus == "no_payment_required"
}
