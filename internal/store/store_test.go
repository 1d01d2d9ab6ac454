package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/rcastell/wheelhouse/internal/tracing"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := Open(path, nil)
	require.NoError(t, err, "Open should succeed")
	return s
}

// TestStore_GetMissingKey verifies that a fresh store reports absent keys.
func TestStore_GetMissingKey(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "state.db"))
	defer s.Close()

	_, ok := s.Get("selected-item")
	assert.False(t, ok, "Fresh store should not contain any keys")
}

// TestStore_SetAndGet verifies the basic write/read round trip.
func TestStore_SetAndGet(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "state.db"))
	defer s.Close()

	require.NoError(t, s.Set("sidebar-collapsed", "true"))

	v, ok := s.Get("sidebar-collapsed")
	assert.True(t, ok)
	assert.Equal(t, "true", v)
}

// TestStore_SetOverwrites verifies that Set replaces an existing value.
func TestStore_SetOverwrites(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "state.db"))
	defer s.Close()

	require.NoError(t, s.Set("chat-panel-collapsed", "true"))
	require.NoError(t, s.Set("chat-panel-collapsed", "false"))

	v, ok := s.Get("chat-panel-collapsed")
	assert.True(t, ok)
	assert.Equal(t, "false", v)
}

// TestStore_Delete verifies that Delete removes the key entirely.
func TestStore_Delete(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "state.db"))
	defer s.Close()

	require.NoError(t, s.Set("selected-item", `{"kind":"backlog","project_id":"p1"}`))
	require.NoError(t, s.Delete("selected-item"))

	_, ok := s.Get("selected-item")
	assert.False(t, ok, "Deleted key should be absent")
}

// TestStore_DeleteMissingKey verifies that deleting an absent key is not an error.
func TestStore_DeleteMissingKey(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "state.db"))
	defer s.Close()

	assert.NoError(t, s.Delete("never-written"))
}

// TestStore_PersistsAcrossReopen verifies that values written before Close
// are visible after reopening the same database file.
func TestStore_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state.db")

	s1 := openTestStore(t, dbPath)
	require.NoError(t, s1.Set("selected-item", `{"kind":"project","project_id":"p1"}`))
	require.NoError(t, s1.Set("sidebar-collapsed", "true"))
	require.NoError(t, s1.Close())

	s2 := openTestStore(t, dbPath)
	defer s2.Close()

	v, ok := s2.Get("selected-item")
	require.True(t, ok, "Value should survive a reopen")
	assert.Equal(t, `{"kind":"project","project_id":"p1"}`, v)

	v, ok = s2.Get("sidebar-collapsed")
	require.True(t, ok)
	assert.Equal(t, "true", v)
}

// TestStore_DeletePersistsAcrossReopen verifies that a deleted key stays
// deleted after reopening.
func TestStore_DeletePersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state.db")

	s1 := openTestStore(t, dbPath)
	require.NoError(t, s1.Set("selected-item", `{"kind":"docs","project_id":"p1"}`))
	require.NoError(t, s1.Delete("selected-item"))
	require.NoError(t, s1.Close())

	s2 := openTestStore(t, dbPath)
	defer s2.Close()

	_, ok := s2.Get("selected-item")
	assert.False(t, ok, "Deleted key should stay absent after reopen")
}

// TestStore_SetAfterCloseFails verifies that a failed write leaves the
// in-memory copy untouched.
func TestStore_SetAfterCloseFails(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "state.db"))

	require.NoError(t, s.Set("sidebar-collapsed", "false"))
	require.NoError(t, s.Close())

	err := s.Set("sidebar-collapsed", "true")
	require.Error(t, err, "Set should fail on a closed database")

	v, ok := s.Get("sidebar-collapsed")
	require.True(t, ok)
	assert.Equal(t, "false", v, "Failed write should not update memory")
}

// TestStore_RecordsSpans verifies that writes emit store spans keyed by the
// setting name.
func TestStore_RecordsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	s, err := Open(filepath.Join(t.TempDir(), "state.db"), tp.Tracer("test"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("sidebar-collapsed", "true"))
	require.NoError(t, s.Delete("sidebar-collapsed"))

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	assert.Equal(t, tracing.SpanStoreSet, spans[0].Name)
	assert.Equal(t, codes.Ok, spans[0].Status.Code)
	assert.Equal(t, tracing.SpanStoreDelete, spans[1].Name)

	attrs := make(map[string]string)
	for _, kv := range spans[0].Attributes {
		attrs[string(kv.Key)] = kv.Value.AsString()
	}
	assert.Equal(t, "sidebar-collapsed", attrs[tracing.AttrSettingKey])
}
