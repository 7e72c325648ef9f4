// Package eventstore is an append-only, per-stream journal on Postgres with
// optimistic concurrency.
package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var ErrVersionConflict = errors.New("eventstore: stream version conflict")

// Record is one entry in a stream.
type Record struct {
	ID         int64           `json:"id"`
	StreamID   uuid.UUID       `json:"stream_id"`
	StreamType string          `json:"stream_type"`
	Type       string          `json:"type"`
	Data       json.RawMessage `json:"data"`
	Metadata   map[string]any  `json:"metadata,omitempty"`
	Version    int             `json:"version"`
	RecordedAt time.Time       `json:"recorded_at"`
}

type Store struct {
	db     *sql.DB
	tracer trace.Tracer
}

func New(db *sql.DB) *Store {
	return &Store{
		db:     db,
		tracer: otel.Tracer("assetnexus/eventstore"),
	}
}

// EnsureSchema creates the stream_records table if needed.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS stream_records (
			id BIGSERIAL PRIMARY KEY,
			stream_id UUID NOT NULL,
			stream_type TEXT NOT NULL,
			record_type TEXT NOT NULL,
			data JSONB NOT NULL,
			metadata JSONB,
			version INT NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (stream_id, version)
		)
	`)
	if err != nil {
		return fmt.Errorf("create stream_records: %w", err)
	}
	return nil
}

// Append writes records to the end of a stream. expectedVersion must equal
// the stream's current version, otherwise ErrVersionConflict is returned and
// nothing is written.
func (s *Store) Append(ctx context.Context, streamID uuid.UUID, streamType string, expectedVersion int, records []Record) error {
	ctx, span := s.tracer.Start(ctx, "eventstore.append",
		trace.WithAttributes(
			attribute.String("stream.id", streamID.String()),
			attribute.String("stream.type", streamType),
			attribute.Int("expected.version", expectedVersion),
			attribute.Int("record.count", len(records)),
		),
	)
	defer span.End()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version), 0) FROM stream_records WHERE stream_id = $1
	`, streamID).Scan(&current)
	if err != nil {
		if isConflict(err) {
			return ErrVersionConflict
		}
		return fmt.Errorf("query stream version: %w", err)
	}
	if current != expectedVersion {
		span.SetAttributes(attribute.Int("actual.version", current), attribute.Bool("conflict", true))
		return ErrVersionConflict
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stream_records (stream_id, stream_type, record_type, data, metadata, version, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		version := expectedVersion + i + 1
		metadata, err := json.Marshal(rec.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata for record %d: %w", i, err)
		}

		var id int64
		err = stmt.QueryRowContext(ctx, streamID, streamType, rec.Type, []byte(rec.Data), metadata, version, time.Now().UTC()).Scan(&id)
		if err != nil {
			if isConflict(err) {
				return ErrVersionConflict
			}
			return fmt.Errorf("insert record %d: %w", i, err)
		}
		span.AddEvent("record.appended", trace.WithAttributes(
			attribute.Int64("record.id", id),
			attribute.Int("record.version", version),
			attribute.String("record.type", rec.Type),
		))
	}

	if err := tx.Commit(); err != nil {
		if isConflict(err) {
			span.SetAttributes(attribute.Bool("conflict", true))
			return ErrVersionConflict
		}
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// isConflict reports errors raised by a concurrent append to the same stream:
// unique_violation on (stream_id, version) or serialization_failure.
func isConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case "23505", "40001":
		return true
	}
	return false
}

// Load returns the records of a stream from fromVersion on, oldest first.
func (s *Store) Load(ctx context.Context, streamID uuid.UUID, fromVersion int) ([]Record, error) {
	ctx, span := s.tracer.Start(ctx, "eventstore.load",
		trace.WithAttributes(
			attribute.String("stream.id", streamID.String()),
			attribute.Int("from.version", fromVersion),
		),
	)
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, stream_id, stream_type, record_type, data, metadata, version, recorded_at
		FROM stream_records
		WHERE stream_id = $1 AND version >= $2
		ORDER BY version ASC
	`, streamID, fromVersion)
	if err != nil {
		return nil, fmt.Errorf("query stream: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var data, metadata []byte
		if err := rows.Scan(&rec.ID, &rec.StreamID, &rec.StreamType, &rec.Type, &data, &metadata, &rec.Version, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Data = data
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &rec.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata of record %d: %w", rec.ID, err)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stream: %w", err)
	}

	span.SetAttributes(attribute.Int("records.loaded", len(records)))
	return records, nil
}

// Version returns the latest version of a stream, 0 if it is empty.
func (s *Store) Version(ctx context.Context, streamID uuid.UUID) (int, error) {
	ctx, span := s.tracer.Start(ctx, "eventstore.version",
		trace.WithAttributes(attribute.String("stream.id", streamID.String())),
	)
	defer span.End()

	var version int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(version), 0) FROM stream_records WHERE stream_id = $1
	`, streamID).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("query stream version: %w", err)
	}
	return version, nil
}
