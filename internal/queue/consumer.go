// Background consumer that listens to the lead.received queue and turns
// each event into an admin notification email. Keeping the dispatch off
// the request path means a slow or failing email provider never delays or
// fails a lead submission.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/MP-make/pechos-inmobiliaria/internal/email"
)

// StartLeadConsumer connects to RabbitMQ, declares the lead.received queue
// (durable), and starts consuming messages. Each message is rendered and
// dispatched through the mailer. The function runs a reconnect loop with
// exponential backoff and keeps running indefinitely, logging processing
// errors and rejecting the offending message so the server continues
// operating. Intended to run in its own goroutine.
func StartLeadConsumer(mailer *email.Mailer) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(brokerURL())
		if err != nil {
			log.Printf("lead-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn, mailer); err != nil {
			log.Printf("lead-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
			continue
		}
	}
}

func consumeLoop(conn *amqp.Connection, mailer *email.Mailer) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		log.Printf("lead-consumer: set QoS failed: %v", err)
	}

	if _, err := ch.QueueDeclare(leadQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(leadQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body, mailer); err != nil {
			log.Printf("lead-consumer: handle message failed: %v", err)
			_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte, mailer *email.Mailer) error {
	var ev LeadReceivedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := mailer.SendLeadNotification(ctx, email.LeadMessage{
		LeadName:      ev.LeadName,
		LeadDocument:  ev.LeadDocument,
		LeadPhone:     ev.LeadPhone,
		LeadEmail:     ev.LeadEmail,
		PropertyID:    ev.PropertyID,
		PropertyTitle: ev.PropertyTitle,
		Message:       ev.Message,
		Resubmission:  ev.Resubmission,
		ReceivedAt:    ev.ReceivedAt,
	})
	if err != nil {
		return fmt.Errorf("dispatch lead %d: %w", ev.LeadID, err)
	}
	log.Printf("lead-consumer: notification sent | lead_id=%d | document=%s | property=%q | resubmission=%t",
		ev.LeadID, ev.LeadDocument, ev.PropertyTitle, ev.Resubmission)
	return nil
}
