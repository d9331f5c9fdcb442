package manager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/oshokin/sunbed-manager/internal/config"
	"github.com/oshokin/sunbed-manager/internal/logger"
	repo "github.com/oshokin/sunbed-manager/internal/repository/sunbeds"
	"github.com/oshokin/sunbed-manager/internal/service/collection"
)

// Options configures the sunbeds commands.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// DataFile overrides the data file from the settings when specified.
	DataFile string
	// LogLevel overrides the log level from the settings when specified.
	LogLevel string
	// Out receives the human-readable command output, stdout if nil.
	Out io.Writer
}

// errInvalidCount is returned when a command is asked to handle fewer than one bed.
var errInvalidCount = errors.New("count must be at least 1")

// Manager runs user commands against the shared collection.
type Manager struct {
	// repo is the data file adapter.
	repo *repo.FileRepository
	// provider opens the collection once.
	provider *Provider
	// out receives command output.
	out io.Writer
}

// New loads settings, applies overrides and prepares a manager.
// The collection itself is opened lazily by the first command.
func New(ctx context.Context, opts *Options) (*Manager, error) {
	if opts == nil {
		opts = new(Options)
	}

	settings, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if opts.DataFile != "" {
		settings.DataFile = opts.DataFile
	}

	if opts.LogLevel != "" {
		settings.LogLevel = opts.LogLevel
	}

	if err = config.Validate(settings); err != nil {
		return nil, err
	}

	if err = logger.SetLevelFromString(settings.LogLevel); err != nil {
		return nil, err
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	repository := repo.NewFileRepository(settings.DataFile)

	logger.DebugKV(ctx, "Settings loaded", "data_file", repository.Path(), "log_level", settings.LogLevel)

	provider := NewProvider(func(ctx context.Context) (*collection.Collection, error) {
		return Open(ctx, repository)
	})

	return &Manager{
		repo:     repository,
		provider: provider,
		out:      out,
	}, nil
}

// DataFile returns the effective data file path.
func (m *Manager) DataFile() string {
	return m.repo.Path()
}

// Add creates count free beds at the end of the collection.
func (m *Manager) Add(ctx context.Context, count int) error {
	if count < 1 {
		return errInvalidCount
	}

	c, err := m.collection(ctx)
	if err != nil {
		return err
	}

	var last collection.SaveResult
	for range count {
		if result := c.Add(ctx); !result.Saved() {
			last = result
		}
	}

	m.warnUnsaved(last)
	m.printSummary(c)

	return nil
}

// Remove drops count beds from the end of the collection.
func (m *Manager) Remove(ctx context.Context, count int) error {
	if count < 1 {
		return errInvalidCount
	}

	c, err := m.collection(ctx)
	if err != nil {
		return err
	}

	if available := c.Count(); count > available {
		return fmt.Errorf("%w: asked for %d, have %d", collection.ErrUnderflow, count, available)
	}

	var last collection.SaveResult

	for range count {
		result, err := c.Remove(ctx)
		if err != nil {
			return err
		}

		if !result.Saved() {
			last = result
		}
	}

	m.warnUnsaved(last)
	m.printSummary(c)

	return nil
}

// Toggle flips one bed. number is the 1-based bed number as displayed,
// or the bed id when byID is set.
func (m *Manager) Toggle(ctx context.Context, number int, byID bool) error {
	c, err := m.collection(ctx)
	if err != nil {
		return err
	}

	var (
		result   collection.SaveResult
		position = number - 1
	)

	if byID {
		result, err = c.ToggleByID(ctx, number)
	} else {
		result, err = c.Toggle(ctx, position)
	}

	if err != nil {
		return err
	}

	m.warnUnsaved(result)

	for i, bed := range c.Snapshot() {
		if (byID && bed.ID() == number) || (!byID && i == position) {
			m.printf("%d. %s\n", i+1, bed.String())

			break
		}
	}

	m.printSummary(c)

	return nil
}

// Status prints every bed and the totals.
func (m *Manager) Status(ctx context.Context) error {
	c, err := m.collection(ctx)
	if err != nil {
		return err
	}

	for i, bed := range c.Snapshot() {
		m.printf("%d. %s\n", i+1, bed.String())
	}

	m.printSummary(c)

	return nil
}

// FreeAll marks every bed as free.
func (m *Manager) FreeAll(ctx context.Context) error {
	c, err := m.collection(ctx)
	if err != nil {
		return err
	}

	m.warnUnsaved(c.SetAllFree(ctx))
	m.printSummary(c)

	return nil
}

// EndDay removes every bed.
func (m *Manager) EndDay(ctx context.Context) error {
	c, err := m.collection(ctx)
	if err != nil {
		return err
	}

	m.warnUnsaved(c.Clear(ctx))
	m.printSummary(c)

	return nil
}

// Watch prints the totals and reprints them whenever the data file changes,
// until ctx is canceled.
func (m *Manager) Watch(ctx context.Context) error {
	c, err := m.collection(ctx)
	if err != nil {
		return err
	}

	m.printSummary(c)

	logger.InfoKV(ctx, "Watching data file", "data_file", m.repo.Path())

	return m.repo.Watch(ctx, func() {
		if err := c.Load(ctx); err != nil {
			logger.WarnKV(ctx, "Cannot reload data file", "error", err)

			return
		}

		m.printSummary(c)
	})
}

// collection returns the shared collection, opening it on first use.
func (m *Manager) collection(ctx context.Context) (*collection.Collection, error) {
	c, err := m.provider.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("open sun beds: %w", err)
	}

	return c, nil
}

// warnUnsaved tells the user that the last change did not reach the data file.
func (m *Manager) warnUnsaved(result collection.SaveResult) {
	if result.Saved() {
		return
	}

	m.printf("Warning: changes were not saved to %s: %v\n", m.repo.Path(), result.Err)
}

// printSummary prints the total and free bed counts.
func (m *Manager) printSummary(c *collection.Collection) {
	m.printf("Sun beds: %d total, %d free.\n", c.Count(), c.CountFree())
}

// printf writes to the command output, ignoring write errors.
func (m *Manager) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(m.out, format, args...)
}
