// internal/settings/service.go
package settings

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

var ErrInvalidChannel = errors.New("settings: channel name must not be empty")

// Service changes channel flags, persisting them first when a Store is set.
type Service struct {
	gate   *Gate
	store  Store
	logger *slog.Logger
}

// NewService wires a gate to an optional store.
func NewService(gate *Gate, store Store, logger *slog.Logger) *Service {
	return &Service{gate: gate, store: store, logger: logger}
}

func (s *Service) Gate() *Gate { return s.gate }

func (s *Service) Enable(ctx context.Context, channel string) error {
	return s.set(ctx, channel, true)
}

func (s *Service) Disable(ctx context.Context, channel string) error {
	return s.set(ctx, channel, false)
}

func (s *Service) set(ctx context.Context, channel string, enabled bool) error {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return ErrInvalidChannel
	}
	if s.store != nil {
		if err := s.store.Save(ctx, channel, enabled); err != nil {
			return err
		}
	}
	s.gate.Set(channel, enabled)
	s.logger.Info("notification channel updated", "channel", channel, "enabled", enabled)
	return nil
}

// Restore loads persisted flags into the gate. Persisted values win over
// flags set from configuration.
func (s *Service) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	flags, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	for ch, enabled := range flags {
		s.gate.Set(ch, enabled)
	}
	s.logger.Info("notification channels restored", "count", len(flags))
	return nil
}

// Channels returns the current flag values.
func (s *Service) Channels() map[string]bool {
	return s.gate.Snapshot()
}
