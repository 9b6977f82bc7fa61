package rabbitmq

const (
	// ExchangeNotifications — direct-обменник для всех уведомлений.
	ExchangeNotifications = "notifications"

	// RoutingKeySubscriptionExpiring — ключ для напоминаний об окончании Premium.
	RoutingKeySubscriptionExpiring = "subscription.expiring"
	// QueueSubscriptionExpiring — очередь, из которой читает notifier.
	QueueSubscriptionExpiring = "notifications.subscription_expiring"
)

// QueueConfig связывает очередь с ключом маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди, которые должны существовать у обменника уведомлений.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: QueueSubscriptionExpiring, RoutingKey: RoutingKeySubscriptionExpiring},
	}
}
