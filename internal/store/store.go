package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/rcastell/wheelhouse/internal/log"
	"github.com/rcastell/wheelhouse/internal/tracing"
)

// Store is a key-value view over the settings table. Reads are served
// from an in-memory copy loaded at open; Set and Delete write through to
// the database before updating memory, so a failed write leaves the
// store consistent with disk.
type Store struct {
	db     *DB
	tracer trace.Tracer
	mu     sync.RWMutex
	values map[string]string
}

// Open opens the state database at path and loads the settings table.
// A nil tracer disables spans.
func Open(path string, tracer trace.Tracer) (*Store, error) {
	db, err := NewDB(path)
	if err != nil {
		return nil, err
	}
	s, err := New(db, tracer)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New loads the settings table from db into memory.
// A nil tracer disables spans.
func New(db *DB, tracer trace.Tracer) (*Store, error) {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("store")
	}
	s := &Store{db: db, tracer: tracer, values: make(map[string]string)}

	rows, err := db.conn.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting row: %w", err)
		}
		s.values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating setting rows: %w", err)
	}

	log.Debug(log.CatStore, "Loaded settings", "count", len(s.values))
	return s, nil
}

// Get returns the stored value for key and whether it exists.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set upserts key to value.
func (s *Store) Set(key, value string) error {
	// Writes originate in the UI loop, which carries no context, so each
	// write is its own root span.
	_, span := s.tracer.Start(context.Background(), tracing.SpanStoreSet,
		trace.WithAttributes(attribute.String(tracing.AttrSettingKey, key)))
	defer span.End()

	_, err := s.db.conn.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Unix(),
	)
	if err != nil {
		err = fmt.Errorf("failed to write setting %q: %w", key, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()

	span.SetStatus(codes.Ok, "")
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	_, span := s.tracer.Start(context.Background(), tracing.SpanStoreDelete,
		trace.WithAttributes(attribute.String(tracing.AttrSettingKey, key)))
	defer span.End()

	if _, err := s.db.conn.Exec(`DELETE FROM settings WHERE key = ?`, key); err != nil {
		err = fmt.Errorf("failed to delete setting %q: %w", key, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()

	span.SetStatus(codes.Ok, "")
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
