package sunbeds

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/oshokin/sunbed-manager/internal/logger"
)

// DefaultWatchDebounce coalesces bursts of file events into a single notification.
const DefaultWatchDebounce = 200 * time.Millisecond

// errCallbackRequired is returned when Watch is called without a callback.
var errCallbackRequired = errors.New("onChange callback is required")

// Watch calls onChange whenever the data file is written, replaced or removed.
// It watches the parent directory so temp+rename replacements are observed,
// and blocks until ctx is canceled.
func (r *FileRepository) Watch(ctx context.Context, onChange func()) error {
	if onChange == nil {
		return errCallbackRequired
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	defer func() {
		_ = watcher.Close()
	}()

	if err = watcher.Add(filepath.Dir(r.path)); err != nil {
		return fmt.Errorf("watch data dir: %w", err)
	}

	var (
		base     = filepath.Base(r.path)
		debounce *time.Timer
	)

	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	schedule := func() {
		if debounce != nil {
			debounce.Stop()
		}

		debounce = time.AfterFunc(DefaultWatchDebounce, onChange)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Base(event.Name) != base {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				schedule()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.ErrorKV(ctx, "Data file watcher error", "path", r.path, "error", err)
		}
	}
}
