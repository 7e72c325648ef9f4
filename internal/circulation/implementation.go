// internal/circulation/implementation.go
package circulation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"assetnexus/internal/events"
	"assetnexus/internal/inventory"
	"assetnexus/pkg/eventstore"
)

// service implements the Service interface.
type service struct {
	catalog inventory.Catalog
	journal Journal
	bus     Publisher
	logger  *slog.Logger
}

// NewService creates a circulation service. journal may be nil, in which case
// movements are not recorded.
func NewService(catalog inventory.Catalog, journal Journal, bus Publisher, logger *slog.Logger) Service {
	return &service{
		catalog: catalog,
		journal: journal,
		bus:     bus,
		logger:  logger,
	}
}

// Checkout assigns the item, records the movement and publishes
// CheckoutableCheckedOut.
func (s *service) Checkout(ctx context.Context, req CheckoutRequest) (*Receipt, error) {
	item, err := s.catalog.Checkoutable(ctx, req.Item)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	target, err := s.catalog.Target(ctx, req.Target)
	if err != nil {
		return nil, fmt.Errorf("failed to get target: %w", err)
	}
	actor, err := s.catalog.User(ctx, req.ActorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}

	if err := s.catalog.Assign(ctx, item, target); err != nil {
		return nil, err
	}

	e := events.NewCheckedOut(item, target, actor, req.Note)
	version, err := s.record(ctx, e)
	if err != nil {
		s.logger.Warn("compensating failed checkout", "item", item.Ref().String())
		if _, relErr := s.catalog.Release(ctx, item); relErr != nil {
			s.logger.Error("failed to compensate checkout", "item", item.Ref().String(), "error", relErr)
		}
		return nil, fmt.Errorf("failed to record checkout: %w", err)
	}

	s.publish(ctx, e)
	return receipt("checkout", e.Movement, version), nil
}

// Checkin releases the item from its current target, records the movement
// and publishes CheckoutableCheckedIn. Notification failures are logged; the
// checkin itself stays committed.
func (s *service) Checkin(ctx context.Context, req CheckinRequest) (*Receipt, error) {
	item, err := s.catalog.Checkoutable(ctx, req.Item)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	actor, err := s.catalog.User(ctx, req.ActorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}

	target, err := s.catalog.Release(ctx, item)
	if err != nil {
		return nil, err
	}

	e := events.NewCheckedIn(item, target, actor, req.Note)
	version, err := s.record(ctx, e)
	if err != nil {
		s.logger.Warn("compensating failed checkin", "item", item.Ref().String())
		if assignErr := s.catalog.Assign(ctx, item, target); assignErr != nil {
			s.logger.Error("failed to compensate checkin", "item", item.Ref().String(), "error", assignErr)
		}
		return nil, fmt.Errorf("failed to record checkin: %w", err)
	}

	s.publish(ctx, e)
	return receipt("checkin", e.Movement, version), nil
}

func (s *service) record(ctx context.Context, e events.Event) (int, error) {
	if s.journal == nil {
		return 0, nil
	}
	m := e.Details()
	stream := m.Checkoutable.Ref()

	data, err := json.Marshal(movementRecord{
		Item:       stream,
		Target:     m.Target.Ref(),
		ActorID:    m.Actor.ID,
		Note:       m.Note,
		OccurredAt: m.OccurredAt,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal movement: %w", err)
	}

	version, err := s.journal.Version(ctx, stream.ID)
	if err != nil {
		return 0, err
	}
	rec := eventstore.Record{
		Type:     string(e.Kind()),
		Data:     data,
		Metadata: map[string]any{"actor": m.Actor.Username},
	}
	if err := s.journal.Append(ctx, stream.ID, string(stream.Kind), version, []eventstore.Record{rec}); err != nil {
		return 0, err
	}
	return version + 1, nil
}

func (s *service) publish(ctx context.Context, e events.Event) {
	if err := s.bus.Publish(ctx, e); err != nil {
		s.logger.Error("movement subscribers failed",
			"event", string(e.Kind()),
			"item", e.Details().Checkoutable.Ref().String(),
			"error", err,
		)
	}
}

func receipt(action string, m events.Movement, version int) *Receipt {
	return &Receipt{
		Action:     action,
		Item:       m.Checkoutable.Ref(),
		Target:     m.Target.Ref(),
		ActorID:    m.Actor.ID,
		Note:       m.Note,
		Version:    version,
		OccurredAt: m.OccurredAt,
	}
}
