// Package mailer sends transactional email: invitations and one-time codes.
package mailer

import (
	"context"

	"go.uber.org/zap"
)

// Kind labels a message for metrics and logs.
type Kind string

const (
	KindInvite Kind = "invite"
	KindOTP    Kind = "otp"
)

// Message is a single outbound email.
type Message struct {
	Kind    Kind
	To      string
	ToName  string
	Subject string
	HTML    string
}

// Mailer delivers one message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log instead of sending them. It is used
// when no provider key is configured.
type LogMailer struct {
	log *zap.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

// Send implements Mailer.
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.Info("email not sent, no provider configured",
		zap.String("kind", string(msg.Kind)),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}
