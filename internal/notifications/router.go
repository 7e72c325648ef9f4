// internal/notifications/router.go
package notifications

import (
	"context"
	"errors"
	"log/slog"

	"assetnexus/internal/events"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "assetnexus_notifications_total",
	Help: "Notification dispatch decisions by channel, kind and outcome.",
}, []string{"channel", "kind", "outcome"})

// Gate decides whether a channel may fire.
type Gate interface {
	IsEnabled(channel string) bool
}

// Subscriber is the subscription side of the event bus.
type Subscriber interface {
	Subscribe(kind events.Kind, name string, h events.Handler)
}

// Router turns checkin and checkout events into notifications and hands one
// payload to every enabled channel.
type Router struct {
	gate     Gate
	channels []Channel
	logger   *slog.Logger
	tracer   trace.Tracer
}

func NewRouter(gate Gate, logger *slog.Logger, channels ...Channel) *Router {
	return &Router{
		gate:     gate,
		channels: channels,
		logger:   logger,
		tracer:   otel.Tracer("assetnexus/notifications"),
	}
}

// Subscribe registers the router for every event kind it understands.
func (r *Router) Subscribe(bus Subscriber) {
	bus.Subscribe(events.KindCheckedIn, "notifications", r.Handle)
	bus.Subscribe(events.KindCheckedOut, "notifications", r.Handle)
}

// Handle dispatches e. The decision to use a channel depends only on the
// gate; per-entity preferences such as a category's checkin email flag do not
// take part. Disabled channels are skipped without error.
func (r *Router) Handle(ctx context.Context, e events.Event) error {
	ctx, span := r.tracer.Start(ctx, "notifications.route",
		trace.WithAttributes(attribute.String("event.kind", string(e.Kind()))),
	)
	defer span.End()

	kind, err := KindFor(e)
	if err != nil {
		notificationsTotal.WithLabelValues("", "", "rejected").Inc()
		r.logger.Error("notification not routed", "event", string(e.Kind()), "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "unroutable event")
		return err
	}
	span.SetAttributes(attribute.String("notification.kind", string(kind)))

	var errs []error
	for _, ch := range r.channels {
		name := ch.Name()
		if !r.gate.IsEnabled(name) {
			notificationsTotal.WithLabelValues(name, string(kind), "skipped").Inc()
			continue
		}

		n := newNotification(kind, name, e)
		if err := ch.Send(ctx, n); err != nil {
			notificationsTotal.WithLabelValues(name, string(kind), "failed").Inc()
			errs = append(errs, &SendError{Channel: name, Kind: kind, Err: err})
			continue
		}
		notificationsTotal.WithLabelValues(name, string(kind), "sent").Inc()
		span.AddEvent("notification.sent", trace.WithAttributes(
			attribute.String("channel", name),
			attribute.String("notification.id", n.ID.String()),
		))
	}

	if err := errors.Join(errs...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "channel send failed")
		return err
	}
	return nil
}
