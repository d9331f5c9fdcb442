package sunbeds

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestWatch_RequiresCallback rejects a nil callback.
func TestWatch_RequiresCallback(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "beds.yaml"))
	require.Error(t, repo.Watch(context.Background(), nil))
}

// TestWatch_NotifiesOnSave starts a watcher and checks that a save triggers the callback.
func TestWatch_NotifiesOnSave(t *testing.T) {
	t.Parallel()

	var (
		repo    = NewFileRepository(filepath.Join(t.TempDir(), "beds.yaml"))
		calls   atomic.Int32
		stopped = make(chan error, 1)
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		stopped <- repo.Watch(ctx, func() { calls.Add(1) })
	}()

	// Keep saving until the watcher is up and reports a change.
	require.Eventually(t, func() bool {
		if err := repo.Save(context.Background(), threeBeds()); err != nil {
			return false
		}

		return calls.Load() > 0
	}, 5*time.Second, 100*time.Millisecond)

	cancel()

	select {
	case err := <-stopped:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
