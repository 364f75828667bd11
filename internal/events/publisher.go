package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// RedemptionEvent is published after a token redemption commits, for
// downstream consumers (notifications, municipal reporting).
type RedemptionEvent struct {
	Code             string    `json:"code"`
	UserID           string    `json:"user_id"`
	Material         string    `json:"material"`
	WeightKg         float64   `json:"weight_kg"`
	Credits          int       `json:"credits"`
	CO2SavedKg       float64   `json:"co2_saved_kg"`
	WaterSavedLiters float64   `json:"water_saved_liters"`
	LandfillSavedKg  float64   `json:"landfill_saved_kg"`
	RedeemedAt       time.Time `json:"redeemed_at"`
}

// ScanEvent is published when a user-attributed scan estimate is recorded.
type ScanEvent struct {
	UserID            string    `json:"user_id"`
	Material          string    `json:"material"`
	EstimatedWeightKg float64   `json:"estimated_weight_kg"`
	Credits           int       `json:"credits"`
	CO2SavedKg        float64   `json:"co2_saved_kg"`
	WaterSavedLiters  float64   `json:"water_saved_liters"`
	LandfillSavedKg   float64   `json:"landfill_saved_kg"`
	ScannedAt         time.Time `json:"scanned_at"`
}

// Publisher delivers recycling events to interested consumers.
type Publisher interface {
	PublishRedemption(ctx context.Context, event RedemptionEvent) error
	PublishScan(ctx context.Context, event ScanEvent) error
	Close() error
}

// RabbitMQPublisher publishes events to a durable RabbitMQ queue.
type RabbitMQPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  *zap.Logger
}

// NewRabbitMQPublisher connects to RabbitMQ and declares the event queue.
func NewRabbitMQPublisher(url, queue string, logger *zap.Logger) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = channel.QueueDeclare(
		queue, // queue name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &RabbitMQPublisher{
		conn:    conn,
		channel: channel,
		queue:   queue,
		logger:  logger,
	}, nil
}

func (p *RabbitMQPublisher) PublishRedemption(ctx context.Context, event RedemptionEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal redemption event: %w", err)
	}

	if err := p.publish(ctx, body); err != nil {
		return fmt.Errorf("failed to publish redemption event: %w", err)
	}

	p.logger.Info("Redemption event published",
		zap.String("queue", p.queue),
		zap.String("code", event.Code))

	return nil
}

func (p *RabbitMQPublisher) PublishScan(ctx context.Context, event ScanEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal scan event: %w", err)
	}

	if err := p.publish(ctx, body); err != nil {
		return fmt.Errorf("failed to publish scan event: %w", err)
	}

	p.logger.Info("Scan event published",
		zap.String("queue", p.queue),
		zap.String("user_id", event.UserID))

	return nil
}

func (p *RabbitMQPublisher) publish(ctx context.Context, body []byte) error {
	return p.channel.PublishWithContext(
		ctx,
		"",      // exchange
		p.queue, // routing key (queue name)
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
}

func (p *RabbitMQPublisher) Close() error {
	if err := p.channel.Close(); err != nil {
		return err
	}
	return p.conn.Close()
}

// NoopPublisher drops events; used when no AMQP URL is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishRedemption(ctx context.Context, event RedemptionEvent) error {
	return nil
}

func (NoopPublisher) PublishScan(ctx context.Context, event ScanEvent) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
