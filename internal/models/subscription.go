// Package models содержит доменные структуры приложения: пользователей,
// счета, операции, записи о подписках и производные значения вроде
// классификации тарифного плана, а также DTO для приёма JSON-запросов.
package models

import "time"

// SubscriptionRecord — запись об оплаченной подписке пользователя.
// Создаётся после подтверждения оплаты и никогда не изменяется:
// продление оформляется новой записью с более поздней датой истечения.
type SubscriptionRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// PlanType — уровень доступа пользователя.
type PlanType string

const (
	// PlanBasic — бесплатный уровень.
	PlanBasic PlanType = "Basic"
	// PlanPremium — уровень с действующей оплаченной подпиской.
	PlanPremium PlanType = "Premium"
)

// PlanClassification — текущий тарифный план пользователя.
// Вычисляется при каждом запросе и не хранится в базе.
type PlanClassification struct {
	Type      PlanType   `json:"type"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// CheckoutSessionRequest используется для приёма параметров оплаты из JSON-запроса.
type CheckoutSessionRequest struct {
	CouponID string `json:"coupon_id,omitempty" validate:"omitempty,max=255"`
	PriceID  string `json:"price_id" validate:"required,max=255"`
}

// ExpiryNotice — сообщение в очередь уведомлений о скором окончании подписки.
type ExpiryNotice struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Locale    string    `json:"locale"`
	ExpiresAt time.Time `json:"expires_at"`
}
