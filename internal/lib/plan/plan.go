// Package plan вычисляет текущий тарифный план пользователя по его записям о подписках.
package plan

import (
	"time"

	"github.com/magabrotheeeer/portfolio-tracker/internal/models"
)

// Resolve возвращает классификацию плана на момент now.
//
// Учитывается только запись с самой поздней датой истечения: план Premium,
// если эта дата строго позже now, иначе Basic. Без записей — Basic без даты.
func Resolve(records []models.SubscriptionRecord, now time.Time) models.PlanClassification {
	if len(records) == 0 {
		return models.PlanClassification{Type: models.PlanBasic}
	}

	latest := records[0].ExpiresAt
	for _, r := range records[1:] {
		if r.ExpiresAt.After(latest) {
			latest = r.ExpiresAt
		}
	}

	planType := models.PlanBasic
	if now.Before(latest) {
		planType = models.PlanPremium
	}
	return models.PlanClassification{
		Type:      planType,
		ExpiresAt: &latest,
	}
}

// IsPremium сообщает, действует ли у пользователя оплаченная подписка на момент now.
func IsPremium(records []models.SubscriptionRecord, now time.Time) bool {
	return Resolve(records, now).Type == models.PlanPremium
}
