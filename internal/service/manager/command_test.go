package manager

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/sunbed-manager/internal/config"
	"github.com/oshokin/sunbed-manager/internal/domain/sunbed"
	repo "github.com/oshokin/sunbed-manager/internal/repository/sunbeds"
	"github.com/oshokin/sunbed-manager/internal/service/collection"
)

// syncBuffer is a bytes.Buffer safe for the watcher goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write appends p under the lock.
func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

// Bytes returns a copy of the written data.
func (b *syncBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	return bytes.Clone(b.buf.Bytes())
}

// newTestManager builds a manager writing into a temp data file and a buffer.
func newTestManager(t *testing.T, dataFile string) (*Manager, *bytes.Buffer) {
	t.Helper()

	out := new(bytes.Buffer)

	m, err := New(context.Background(), &Options{
		ConfigPath: filepath.Join(t.TempDir(), "missing-settings.yaml"),
		DataFile:   dataFile,
		Out:        out,
	})
	require.NoError(t, err)

	return m, out
}

// TestManager_DayFlow walks through opening beds, booking, freeing and ending the day.
func TestManager_DayFlow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dataFile := filepath.Join(t.TempDir(), "sunloungers.yaml")
	m, out := newTestManager(t, dataFile)
	require.Equal(t, dataFile, m.DataFile())

	require.NoError(t, m.Add(ctx, 3))
	require.Contains(t, out.String(), "Sun beds: 3 total, 3 free.")

	out.Reset()
	require.NoError(t, m.Toggle(ctx, 2, false))
	require.Contains(t, out.String(), "2. Sun bed #2 is booked right now.")
	require.Contains(t, out.String(), "Sun beds: 3 total, 2 free.")

	out.Reset()
	require.NoError(t, m.Toggle(ctx, 3, true))
	require.Contains(t, out.String(), "3. Sun bed #3 is booked right now.")

	out.Reset()
	require.NoError(t, m.Status(ctx))
	require.Contains(t, out.String(), "1. Sun bed #1 is not booked right now.")
	require.Contains(t, out.String(), "Sun beds: 3 total, 1 free.")

	// A new manager sees the persisted state.
	restored, restoredOut := newTestManager(t, dataFile)
	require.NoError(t, restored.Status(ctx))
	require.Contains(t, restoredOut.String(), "Sun beds: 3 total, 1 free.")

	out.Reset()
	require.NoError(t, m.FreeAll(ctx))
	require.Contains(t, out.String(), "Sun beds: 3 total, 3 free.")

	out.Reset()
	require.NoError(t, m.Remove(ctx, 1))
	require.Contains(t, out.String(), "Sun beds: 2 total, 2 free.")

	out.Reset()
	require.NoError(t, m.EndDay(ctx))
	require.Contains(t, out.String(), "Sun beds: 0 total, 0 free.")

	beds, err := repo.NewFileRepository(dataFile).Load(ctx)
	require.NoError(t, err)
	require.Empty(t, beds)
}

// TestManager_Errors checks that invalid input is reported and leaves state unchanged.
func TestManager_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m, out := newTestManager(t, filepath.Join(t.TempDir(), "sunloungers.yaml"))

	require.ErrorIs(t, m.Add(ctx, 0), errInvalidCount)
	require.ErrorIs(t, m.Remove(ctx, 0), errInvalidCount)
	require.ErrorIs(t, m.Remove(ctx, 1), collection.ErrUnderflow)

	require.NoError(t, m.Add(ctx, 2))
	require.ErrorIs(t, m.Remove(ctx, 3), collection.ErrUnderflow)
	require.ErrorIs(t, m.Toggle(ctx, 5, false), collection.ErrIndexOutOfRange)
	require.ErrorIs(t, m.Toggle(ctx, 0, false), collection.ErrIndexOutOfRange)
	require.ErrorIs(t, m.Toggle(ctx, 42, true), collection.ErrUnknownID)

	out.Reset()
	require.NoError(t, m.Status(ctx))
	require.Contains(t, out.String(), "Sun beds: 2 total, 2 free.")
}

// TestManager_WarnsWhenSaveFails verifies the user is told about unsaved changes.
func TestManager_WarnsWhenSaveFails(t *testing.T) {
	t.Parallel()

	out := new(bytes.Buffer)
	provider := NewProvider(func(context.Context) (*collection.Collection, error) {
		return collection.New(brokenRepository{}), nil
	})

	m := &Manager{
		repo:     repo.NewFileRepository(filepath.Join(t.TempDir(), "unused.yaml")),
		provider: provider,
		out:      out,
	}

	require.NoError(t, m.Add(context.Background(), 1))
	require.Contains(t, out.String(), "Warning: changes were not saved")
	require.Contains(t, out.String(), "Sun beds: 1 total, 1 free.")
}

// TestNew_UsesSettingsFile checks that the data file comes from settings unless overridden.
func TestNew_UsesSettingsFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	settingsPath := filepath.Join(dir, "settings.yaml")
	dataFile := filepath.Join(dir, "beds.toml")

	require.NoError(t, config.Save(settingsPath, &config.Config{DataFile: dataFile, LogLevel: "info"}))

	m, err := New(context.Background(), &Options{ConfigPath: settingsPath, Out: new(bytes.Buffer)})
	require.NoError(t, err)
	require.Equal(t, dataFile, m.DataFile())

	override := filepath.Join(dir, "other.yaml")
	m, err = New(context.Background(), &Options{ConfigPath: settingsPath, DataFile: override})
	require.NoError(t, err)
	require.Equal(t, override, m.DataFile())

	_, err = New(context.Background(), &Options{ConfigPath: settingsPath, LogLevel: "loud"})
	require.Error(t, err)
}

// TestManager_Watch checks that external changes to the data file are reloaded and printed.
func TestManager_Watch(t *testing.T) {
	t.Parallel()

	dataFile := filepath.Join(t.TempDir(), "sunloungers.yaml")
	out := new(syncBuffer)

	m, err := New(context.Background(), &Options{
		ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"),
		DataFile:   dataFile,
		Out:        out,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)

	go func() {
		done <- m.Watch(ctx)
	}()

	require.Eventually(t, func() bool {
		_, err := os.Stat(dataFile)

		return err == nil
	}, 5*time.Second, 20*time.Millisecond)

	writer := repo.NewFileRepository(dataFile)

	require.Eventually(t, func() bool {
		if err := writer.Save(context.Background(), []*sunbed.SunBed{sunbed.Restore(1, true)}); err != nil {
			return false
		}

		return bytes.Contains(out.Bytes(), []byte("Sun beds: 1 total, 0 free."))
	}, 5*time.Second, 100*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
