package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// Имена exchange и очередей уведомлений.
const (
	NotificationsExchange = "notifications"
	WelcomeQueue          = "notifications.welcome"
	WelcomeRoutingKey     = "welcome"
	TrialQueue            = "notifications.trial"
	TrialRoutingKey       = "trial"
)

// SetupChannel открывает канал, объявляет exchange уведомлений и
// привязывает к нему очереди приветствий и пробных периодов.
func SetupChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	err = ch.ExchangeDeclare(
		NotificationsExchange,
		"direct",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	bindings := []struct {
		queue      string
		routingKey string
	}{
		{WelcomeQueue, WelcomeRoutingKey},
		{TrialQueue, TrialRoutingKey},
	}
	for _, b := range bindings {
		_, err = ch.QueueDeclare(
			b.queue,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to declare queue %s: %w", op, b.queue, err)
		}
		err = ch.QueueBind(b.queue, b.routingKey, NotificationsExchange, false, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to bind queue %s: %w", op, b.queue, err)
		}
	}
	return ch, nil
}
