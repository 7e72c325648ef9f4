// internal/events/bus.go
package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Handler processes one event. A returned error only concerns that handler.
type Handler func(ctx context.Context, e Event) error

type subscription struct {
	name    string
	handler Handler
}

// Bus delivers events synchronously to the handlers subscribed to their kind.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Kind][]subscription
	logger   *slog.Logger

	tracer    trace.Tracer
	published metric.Int64Counter
	failures  metric.Int64Counter
}

type Option func(*options)

type options struct {
	meterProvider metric.MeterProvider
}

// WithMeterProvider records bus metrics through mp instead of the global
// provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) { o.meterProvider = mp }
}

func NewBus(logger *slog.Logger, opts ...Option) *Bus {
	o := options{meterProvider: otel.GetMeterProvider()}
	for _, opt := range opts {
		opt(&o)
	}

	meter := o.meterProvider.Meter("assetnexus/events")
	published, _ := meter.Int64Counter("events.published",
		metric.WithDescription("Domain events published on the bus"))
	failures, _ := meter.Int64Counter("events.handler_failures",
		metric.WithDescription("Event handler invocations that returned an error"))

	return &Bus{
		handlers:  make(map[Kind][]subscription),
		logger:    logger,
		tracer:    otel.Tracer("assetnexus/events"),
		published: published,
		failures:  failures,
	}
}

// Subscribe registers h for events of the given kind. Handlers run in
// registration order.
func (b *Bus) Subscribe(kind Kind, name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[kind] = append(b.handlers[kind], subscription{name: name, handler: h})
}

// Publish runs every handler subscribed to e.Kind() and returns once all of
// them have finished. A failing handler does not prevent later handlers from
// running; all failures are returned joined.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	kind := e.Kind()
	ctx, span := b.tracer.Start(ctx, "events.publish",
		trace.WithAttributes(attribute.String("event.kind", string(kind))),
	)
	defer span.End()

	b.mu.RLock()
	subs := b.handlers[kind]
	b.mu.RUnlock()

	kindAttr := metric.WithAttributes(attribute.String("event.kind", string(kind)))
	b.published.Add(ctx, 1, kindAttr)

	var errs []error
	for _, sub := range subs {
		if err := b.invoke(ctx, sub, e); err != nil {
			b.failures.Add(ctx, 1, kindAttr)
			b.logger.Error("event handler failed",
				"event", string(kind),
				"handler", sub.name,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("%s: %w", sub.name, err))
		}
	}

	span.SetAttributes(attribute.Int("handlers.count", len(subs)))
	if err := errors.Join(errs...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "handler failed")
		return err
	}
	return nil
}

func (b *Bus) invoke(ctx context.Context, sub subscription, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return sub.handler(ctx, e)
}
