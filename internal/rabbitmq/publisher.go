package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// PublishMessage публикует сообщение в RabbitMQ.
func PublishMessage(ch *amqp.Channel, exchange string, routingkey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// WelcomeMessage — полезная нагрузка приветственного уведомления при выдаче
// специального аккаунта.
type WelcomeMessage struct {
	Email       string    `json:"email"`
	Tier        string    `json:"tier"`
	AccountType string    `json:"account_type"`
	GrantedAt   time.Time `json:"granted_at"`
}

// TrialStartedMessage — полезная нагрузка события старта пробного периода.
type TrialStartedMessage struct {
	Email     string    `json:"email"`
	TrialPlan string    `json:"trial_plan"`
	TrialEnd  time.Time `json:"trial_end"`
}

// Notifier публикует уведомления сервиса в exchange уведомлений.
type Notifier struct {
	ch *amqp.Channel
}

// NewNotifier создаёт Notifier поверх открытого канала.
func NewNotifier(ch *amqp.Channel) *Notifier {
	return &Notifier{ch: ch}
}

// PublishWelcome публикует приветственное уведомление.
func (n *Notifier) PublishWelcome(msg WelcomeMessage) error {
	return PublishMessage(n.ch, NotificationsExchange, WelcomeRoutingKey, msg)
}

// PublishTrialStarted публикует событие старта пробного периода.
func (n *Notifier) PublishTrialStarted(msg TrialStartedMessage) error {
	return PublishMessage(n.ch, NotificationsExchange, TrialRoutingKey, msg)
}
