package collection

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/oshokin/sunbed-manager/internal/domain/sunbed"
	"github.com/oshokin/sunbed-manager/internal/logger"
	repo "github.com/oshokin/sunbed-manager/internal/repository/sunbeds"
)

var (
	// ErrIndexOutOfRange is returned when a position is outside [0, Count()).
	ErrIndexOutOfRange = errors.New("sun bed position out of range")
	// ErrUnderflow is returned when removing from an empty collection.
	ErrUnderflow = errors.New("no sun beds to remove")
	// ErrUnknownID is returned when no bed carries the requested id.
	ErrUnknownID = errors.New("unknown sun bed id")
)

// SaveResult reports the outcome of the write that follows a mutation.
// The mutation itself is kept even when the write fails.
type SaveResult struct {
	// Err is the persistence error, nil when the collection was written.
	Err error
}

// Saved reports whether the collection reached the data file.
func (r SaveResult) Saved() bool {
	return r.Err == nil
}

// Collection is the ordered set of sun beds and the only way to change them.
// Public operations address beds by their 0-based position.
type Collection struct {
	// repo handles persistent storage of the collection.
	repo repo.Repository
	// ids issues identifiers for new beds.
	ids *sunbed.Sequence
	// beds is the ordered in-memory collection.
	beds []*sunbed.SunBed
	// mu protects concurrent access to beds.
	mu sync.RWMutex
}

// Option configures a Collection.
type Option func(*Collection)

// WithSequence replaces the default id sequence.
func WithSequence(seq *sunbed.Sequence) Option {
	return func(c *Collection) {
		if seq != nil {
			c.ids = seq
		}
	}
}

// New creates an empty collection backed by the provided repository.
func New(repository repo.Repository, opts ...Option) *Collection {
	c := &Collection{
		repo: repository,
		ids:  sunbed.NewSequence(sunbed.DefaultBaseID),
		beds: make([]*sunbed.SunBed, 0),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Count returns the number of beds.
func (c *Collection) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.beds)
}

// CountFree returns the number of beds that are not booked.
func (c *Collection) CountFree() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	free := 0

	for _, bed := range c.beds {
		if !bed.IsBooked() {
			free++
		}
	}

	return free
}

// Snapshot returns a copy of the beds in collection order.
func (c *Collection) Snapshot() []sunbed.SunBed {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]sunbed.SunBed, 0, len(c.beds))
	for _, bed := range c.beds {
		result = append(result, *bed)
	}

	return result
}

// Add appends a fresh free bed.
func (c *Collection) Add(ctx context.Context) SaveResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	bed := c.ids.Next()
	c.beds = append(c.beds, bed)

	logger.DebugKV(ctx, "Sun bed added", "id", bed.ID(), "count", len(c.beds))

	return c.persistLocked(ctx)
}

// Remove drops the last bed.
func (c *Collection) Remove(ctx context.Context) (SaveResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.beds) == 0 {
		return SaveResult{}, ErrUnderflow
	}

	last := len(c.beds) - 1
	removed := c.beds[last]

	c.beds[last] = nil
	c.beds = c.beds[:last]

	logger.DebugKV(ctx, "Sun bed removed", "id", removed.ID(), "count", len(c.beds))

	return c.persistLocked(ctx), nil
}

// IsOccupied returns the flag of the bed at the given position.
func (c *Collection) IsOccupied(index int) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bed, err := c.atLocked(index)
	if err != nil {
		return false, err
	}

	return bed.IsBooked(), nil
}

// Toggle flips the flag of the bed at the given position.
func (c *Collection) Toggle(ctx context.Context, index int) (SaveResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bed, err := c.atLocked(index)
	if err != nil {
		return SaveResult{}, err
	}

	bed.Toggle()

	logger.DebugKV(ctx, "Sun bed toggled", "position", index, "id", bed.ID(), "booked", bed.IsBooked())

	return c.persistLocked(ctx), nil
}

// IsOccupiedByID returns the flag of the bed carrying the given id.
func (c *Collection) IsOccupiedByID(id int) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	index, err := c.indexOfLocked(id)
	if err != nil {
		return false, err
	}

	return c.beds[index].IsBooked(), nil
}

// ToggleByID flips the flag of the bed carrying the given id.
func (c *Collection) ToggleByID(ctx context.Context, id int) (SaveResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	index, err := c.indexOfLocked(id)
	if err != nil {
		return SaveResult{}, err
	}

	bed := c.beds[index]
	bed.Toggle()

	logger.DebugKV(ctx, "Sun bed toggled", "position", index, "id", id, "booked", bed.IsBooked())

	return c.persistLocked(ctx), nil
}

// SetAllFree marks every bed as free and writes the collection once.
func (c *Collection) SetAllFree(ctx context.Context) SaveResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, bed := range c.beds {
		bed.SetBooked(false)
	}

	logger.DebugKV(ctx, "All sun beds freed", "count", len(c.beds))

	return c.persistLocked(ctx)
}

// Clear removes every bed.
func (c *Collection) Clear(ctx context.Context) SaveResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.beds = make([]*sunbed.SunBed, 0)

	logger.DebugKV(ctx, "Sun beds cleared")

	return c.persistLocked(ctx)
}

// ReplaceAll swaps the whole collection for copies of the given beds.
func (c *Collection) ReplaceAll(ctx context.Context, beds []*sunbed.SunBed) SaveResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.replaceLocked(beds)

	logger.DebugKV(ctx, "Sun beds replaced", "count", len(c.beds))

	return c.persistLocked(ctx)
}

// Load replaces the collection with the contents of the repository.
// Read and format errors are returned to the caller and leave the collection untouched.
func (c *Collection) Load(ctx context.Context) error {
	beds, err := c.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("load sun beds: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.replaceLocked(beds)

	logger.InfoKV(ctx, "Sun beds loaded", "count", len(c.beds))

	return nil
}

// Save writes the whole collection to the repository.
func (c *Collection) Save(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.saveLocked(ctx)
}

// atLocked returns the bed at index (caller must hold the lock).
func (c *Collection) atLocked(index int) (*sunbed.SunBed, error) {
	if index < 0 || index >= len(c.beds) {
		return nil, fmt.Errorf("%w: position %d, count %d", ErrIndexOutOfRange, index, len(c.beds))
	}

	return c.beds[index], nil
}

// indexOfLocked finds the position of the bed with the given id (caller must hold the lock).
func (c *Collection) indexOfLocked(id int) (int, error) {
	for i, bed := range c.beds {
		if bed.ID() == id {
			return i, nil
		}
	}

	return -1, fmt.Errorf("%w: %d", ErrUnknownID, id)
}

// replaceLocked copies beds into the collection and advances the id sequence
// past every id it sees (caller must hold the write lock).
func (c *Collection) replaceLocked(beds []*sunbed.SunBed) {
	replaced := make([]*sunbed.SunBed, 0, len(beds))

	for _, bed := range beds {
		if bed == nil {
			continue
		}

		c.ids.Observe(bed.ID())
		replaced = append(replaced, bed.Clone())
	}

	c.beds = replaced
}

// saveLocked writes the collection (caller must hold a lock).
func (c *Collection) saveLocked(ctx context.Context) error {
	if c.repo == nil {
		return nil
	}

	if err := c.repo.Save(ctx, c.beds); err != nil {
		return fmt.Errorf("save sun beds: %w", err)
	}

	return nil
}

// persistLocked is the best-effort write after a mutation: failures are logged
// and reported, never rolled back.
func (c *Collection) persistLocked(ctx context.Context) SaveResult {
	err := c.saveLocked(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Failed to persist sun beds", "count", len(c.beds), "error", err)
	}

	return SaveResult{Err: err}
}
