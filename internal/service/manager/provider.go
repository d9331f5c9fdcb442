package manager

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/oshokin/sunbed-manager/internal/logger"
	repo "github.com/oshokin/sunbed-manager/internal/repository/sunbeds"
	"github.com/oshokin/sunbed-manager/internal/service/collection"
)

// OpenFunc builds the collection on first access.
type OpenFunc func(ctx context.Context) (*collection.Collection, error)

// errOpenRequired is returned when a provider has no open function.
var errOpenRequired = errors.New("open function is required")

// Open creates a collection and restores it from the repository.
// An absent or unreadable data file is replaced by an empty one and read again;
// if that fails too, the error is returned and the caller must not proceed.
func Open(ctx context.Context, repository repo.Repository, opts ...collection.Option) (*collection.Collection, error) {
	c := collection.New(repository, opts...)

	err := c.Load(ctx)
	if err == nil {
		return c, nil
	}

	logger.WarnKV(ctx, "Cannot read data file, creating an empty one", "error", err)

	if err = repository.Save(ctx, nil); err != nil {
		return nil, fmt.Errorf("create empty data file: %w", err)
	}

	if err = c.Load(ctx); err != nil {
		return nil, fmt.Errorf("reload data file: %w", err)
	}

	return c, nil
}

// Provider hands out a single collection, opening it on first access.
// Concurrent first callers all receive the same collection (or the same error).
type Provider struct {
	// open builds the collection.
	open OpenFunc
	// once guards the call to open.
	once sync.Once
	// collection is the shared instance.
	collection *collection.Collection
	// err is the error returned by open.
	err error
}

// NewProvider creates a provider around the given open function.
func NewProvider(open OpenFunc) *Provider {
	return &Provider{
		open: open,
	}
}

// Get returns the shared collection.
func (p *Provider) Get(ctx context.Context) (*collection.Collection, error) {
	p.once.Do(func() {
		if p.open == nil {
			p.err = errOpenRequired

			return
		}

		p.collection, p.err = p.open(ctx)
	})

	return p.collection, p.err
}
