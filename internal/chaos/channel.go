// internal/chaos/channel.go
package chaos

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"assetnexus/internal/notifications"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var ErrInjectedFault = errors.New("chaos: injected fault")

// Experiment describes the faults injected into a channel.
type Experiment struct {
	// BlastRadius is the share of sends affected, 0.0 to 1.0.
	BlastRadius float64
	Latency     time.Duration
	// Fail makes affected sends return ErrInjectedFault after the latency.
	Fail bool
}

func (e Experiment) Active() bool {
	return e.BlastRadius > 0 && (e.Latency > 0 || e.Fail)
}

// Channel wraps a notification channel and injects faults into a share of
// its sends. It keeps the wrapped channel's name so the settings gate still
// applies.
type Channel struct {
	next   notifications.Channel
	exp    Experiment
	roll   func() float64
	tracer trace.Tracer
	logger *slog.Logger
}

var _ notifications.Channel = (*Channel)(nil)

func Wrap(next notifications.Channel, exp Experiment, logger *slog.Logger) *Channel {
	return &Channel{
		next:   next,
		exp:    exp,
		roll:   rand.Float64,
		tracer: otel.Tracer("assetnexus/chaos"),
		logger: logger,
	}
}

func (c *Channel) Name() string { return c.next.Name() }

func (c *Channel) Send(ctx context.Context, n notifications.Notification) error {
	if c.roll() >= c.exp.BlastRadius {
		return c.next.Send(ctx, n)
	}

	ctx, span := c.tracer.Start(ctx, "chaos.inject",
		trace.WithAttributes(
			attribute.String("channel", c.Name()),
			attribute.String("notification.kind", string(n.Kind)),
			attribute.Int64("latency_ms", c.exp.Latency.Milliseconds()),
			attribute.Bool("fail", c.exp.Fail),
		),
	)
	defer span.End()

	if c.exp.Latency > 0 {
		span.AddEvent("injecting_latency")
		select {
		case <-time.After(c.exp.Latency):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if c.exp.Fail {
		span.RecordError(ErrInjectedFault)
		c.logger.Warn("chaos fault injected", "channel", c.Name(), "kind", n.Kind)
		return ErrInjectedFault
	}
	return c.next.Send(ctx, n)
}
