package config

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultPath)
	require.NoError(t, os.WriteFile(path, []byte("session:\n  persist_credentials_on_success: true\n"), 0o600))

	var persist atomic.Int32
	persist.Store(-1)
	w, err := NewWatcher(path, 50*time.Millisecond, func(_ context.Context, cfg *Config) {
		if cfg.Session.PersistCredentials() {
			persist.Store(1)
		} else {
			persist.Store(0)
		}
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer func() { _ = w.Stop() }()

	require.NoError(t, os.WriteFile(path, []byte("session:\n  persist_credentials_on_success: false\n"), 0o600))

	require.Eventually(t, func() bool { return persist.Load() == 0 }, 5*time.Second, 20*time.Millisecond)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultPath)
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o600))

	var calls atomic.Int32
	w, err := NewWatcher(path, 20*time.Millisecond, func(context.Context, *Config) { calls.Add(1) })
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o600))
	time.Sleep(200 * time.Millisecond)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
	require.Zero(t, calls.Load())
}
