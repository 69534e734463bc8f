package mailer

import (
	"context"
	"time"

	"github.com/myokr/okr-api/internal/constants"
	"github.com/myokr/okr-api/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DeliveryResult is the outcome of one recipient's email.
type DeliveryResult struct {
	Email string `json:"email"`
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
}

// Dispatcher fans messages out to a Mailer with a concurrency cap and a
// per-message timeout.
type Dispatcher struct {
	mailer      Mailer
	concurrency int
	timeout     time.Duration
	log         *zap.Logger
}

// NewDispatcher creates a Dispatcher. Non-positive limits fall back to defaults.
func NewDispatcher(m Mailer, concurrency int, timeout time.Duration, log *zap.Logger) *Dispatcher {
	if concurrency <= 0 {
		concurrency = constants.DefaultMailConcurrency
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{
		mailer:      m,
		concurrency: concurrency,
		timeout:     timeout,
		log:         log,
	}
}

// Send delivers a single message with the per-message timeout.
func (d *Dispatcher) Send(ctx context.Context, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := d.mailer.Send(ctx, msg)
	d.record(msg, err)
	return err
}

// SendAll delivers every message and returns one result per message, in input
// order. A failing recipient never stops the others.
func (d *Dispatcher) SendAll(ctx context.Context, msgs []Message) []DeliveryResult {
	results := make([]DeliveryResult, len(msgs))

	var g errgroup.Group
	g.SetLimit(d.concurrency)

	for i, msg := range msgs {
		g.Go(func() error {
			result := DeliveryResult{Email: msg.To, Sent: true}
			if err := d.Send(ctx, msg); err != nil {
				result.Sent = false
				result.Error = "delivery failed"
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (d *Dispatcher) record(msg Message, err error) {
	result := "sent"
	if err != nil {
		result = "failed"
		d.log.Warn("email delivery failed",
			zap.String("kind", string(msg.Kind)),
			zap.String("to", msg.To),
			zap.Error(err))
	}
	metrics.MailDeliveries.WithLabelValues(string(msg.Kind), result).Inc()
}
