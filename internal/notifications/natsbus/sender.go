// Package natsbus publishes notifications to NATS subjects so in-app
// consumers can fan them out.
package natsbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"assetnexus/internal/notifications"

	natspkg "github.com/nats-io/nats.go"
)

const DefaultSubjectPrefix = "assetnexus.notifications"

// Publisher is the subset of *nats.Conn the sender needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

type Sender struct {
	name   string
	prefix string
	pub    Publisher
	logger *slog.Logger
}

var _ notifications.Channel = (*Sender)(nil)

func NewSender(name, prefix string, pub Publisher, logger *slog.Logger) *Sender {
	if name == "" {
		name = "nats"
	}
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &Sender{name: name, prefix: strings.TrimSuffix(prefix, "."), pub: pub, logger: logger}
}

// Connect dials url and returns the connection for use as a Publisher.
func Connect(url string, logger *slog.Logger) (*natspkg.Conn, error) {
	nc, err := natspkg.Connect(url,
		natspkg.Name("assetnexus"),
		natspkg.DisconnectErrHandler(func(_ *natspkg.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		natspkg.ReconnectHandler(func(nc *natspkg.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return nc, nil
}

func (s *Sender) Name() string { return s.name }

// Subject returns the subject a notification kind is published on.
func (s *Sender) Subject(kind notifications.Kind) string {
	return s.prefix + "." + string(kind)
}

func (s *Sender) Send(ctx context.Context, n notifications.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	subject := s.Subject(n.Kind)
	if err := s.pub.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	s.logger.Debug("notification published", "subject", subject, "notification_id", n.ID.String())
	return nil
}
