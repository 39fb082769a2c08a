package memory

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"paradox-quiz-service/internal/domain"
)

// CatalogLoader fetches the paradox catalog from a backing store (Postgres, a file, ...).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) ([]domain.Paradox, error)
}

const catalogKey = "catalog"

// CatalogRepository caches the catalog with TTL to avoid repeated loads.
type CatalogRepository struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	items     []domain.Paradox
	byID      map[string]int
	expiresAt time.Time
}

func NewCatalogRepository(loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ListParadoxes returns the cached catalog, reloading it once expired.
// Callers must not modify the returned slice.
func (r *CatalogRepository) ListParadoxes(ctx context.Context) ([]domain.Paradox, error) {
	if items, ok := r.cached(); ok {
		return items, nil
	}

	result, err, _ := r.sf.Do(catalogKey, func() (interface{}, error) {
		if items, ok := r.cached(); ok {
			return items, nil
		}

		items, err := r.loader.LoadCatalog(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
		}
		if items == nil {
			items = []domain.Paradox{}
		}

		byID := make(map[string]int, len(items))
		for i, p := range items {
			byID[p.ID] = i
		}

		r.mu.Lock()
		r.items = items
		r.byID = byID
		r.expiresAt = r.clock().Add(r.ttlWithJitter())
		r.mu.Unlock()
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Paradox), nil
}

// GetParadox looks up a single paradox by ID.
func (r *CatalogRepository) GetParadox(ctx context.Context, id string) (domain.Paradox, error) {
	items, err := r.ListParadoxes(ctx)
	if err != nil {
		return domain.Paradox{}, err
	}
	r.mu.RLock()
	idx, ok := r.byID[id]
	r.mu.RUnlock()
	if !ok || idx >= len(items) || items[idx].ID != id {
		return domain.Paradox{}, domain.ErrParadoxNotFound
	}
	return items[idx], nil
}

func (r *CatalogRepository) cached() ([]domain.Paradox, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.items != nil && r.expiresAt.After(r.clock()) {
		return r.items, true
	}
	return nil, false
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticCatalogLoader is a simple loader backed by an in-memory slice (useful for tests/demos).
type StaticCatalogLoader struct {
	items []domain.Paradox
}

func NewStaticCatalogLoader(items []domain.Paradox) *StaticCatalogLoader {
	return &StaticCatalogLoader{items: items}
}

func (l *StaticCatalogLoader) LoadCatalog(_ context.Context) ([]domain.Paradox, error) {
	out := make([]domain.Paradox, len(l.items))
	copy(out, l.items)
	return out, nil
}
