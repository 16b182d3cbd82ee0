package control

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xscout/xscout/internal/models"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "control.json"))
}

func TestGet_DefaultsWhenMissing(t *testing.T) {
	store := newTestStore(t)

	state := store.Get()
	assert.True(t, state.Running)
	assert.False(t, state.TriggerNow)
}

func TestSetGet_RoundTrip(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set(models.ControlState{Running: false, TriggerNow: true}))

	state := store.Get()
	assert.False(t, state.Running)
	assert.True(t, state.TriggerNow)
}

func TestConsumeTrigger_ResetsOnce(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set(models.ControlState{Running: false, TriggerNow: true}))

	assert.True(t, store.ConsumeTrigger(), "first consume observes the trigger")
	assert.False(t, store.ConsumeTrigger(), "trigger is honored at most once")

	state := store.Get()
	assert.False(t, state.TriggerNow)
	assert.False(t, state.Running, "consuming the trigger must not touch running")
}

func TestConsumeTrigger_NoTrigger(t *testing.T) {
	store := newTestStore(t)
	assert.False(t, store.ConsumeTrigger())
}

func TestGet_CorruptFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set(models.ControlState{Running: true}))

	// Overwrite with garbage; Get falls back to the default state
	require.NoError(t, os.WriteFile(store.path, []byte("{not json"), 0o644))
	state := store.Get()
	assert.True(t, state.Running)
	assert.False(t, state.TriggerNow)
}
