package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"paradox-quiz-service/internal/domain"
)

// CatalogLoader fetches the paradox catalog from a backing store.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) ([]domain.Paradox, error)
}

// Catalog layout:
//
//	SET  catalog:paradoxes      <json array, catalog order>
//	HSET catalog:paradoxes:byid {paradoxID} <json object>
const (
	catalogListKey  = "catalog:paradoxes"
	catalogIndexKey = "catalog:paradoxes:byid"
)

// CatalogRepository caches the catalog in Redis and falls back to a loader on cache miss.
type CatalogRepository struct {
	client *redis.Client
	loader CatalogLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	log    zerolog.Logger
}

func NewCatalogRepository(client *redis.Client, loader CatalogLoader, ttl time.Duration, log zerolog.Logger) *CatalogRepository {
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		log:    log.With().Str("component", "redis_catalog").Logger(),
	}
}

func (r *CatalogRepository) ListParadoxes(ctx context.Context) ([]domain.Paradox, error) {
	if items, ok := r.readCache(ctx); ok {
		return items, nil
	}

	result, err, _ := r.sf.Do(catalogListKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if items, ok := r.readCache(ctx); ok {
			return items, nil
		}

		items, err := r.loader.LoadCatalog(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrCatalogUnavailable, err)
		}
		r.fill(ctx, items)
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Paradox), nil
}

func (r *CatalogRepository) GetParadox(ctx context.Context, id string) (domain.Paradox, error) {
	raw, err := r.client.HGet(ctx, catalogIndexKey, id).Bytes()
	if err == nil {
		var p domain.Paradox
		if err := json.Unmarshal(raw, &p); err == nil {
			return p, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		r.log.Warn().Err(err).Str("paradox_id", id).Msg("catalog index read failed")
	}

	items, err := r.ListParadoxes(ctx)
	if err != nil {
		return domain.Paradox{}, err
	}
	for _, p := range items {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Paradox{}, domain.ErrParadoxNotFound
}

func (r *CatalogRepository) readCache(ctx context.Context) ([]domain.Paradox, bool) {
	raw, err := r.client.Get(ctx, catalogListKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warn().Err(err).Msg("catalog cache read failed")
		}
		return nil, false
	}
	var items []domain.Paradox
	if err := json.Unmarshal(raw, &items); err != nil {
		r.log.Warn().Err(err).Msg("catalog cache corrupt")
		return nil, false
	}
	return items, true
}

// fill is best-effort; a failed write only costs another load later.
func (r *CatalogRepository) fill(ctx context.Context, items []domain.Paradox) {
	list, err := json.Marshal(items)
	if err != nil {
		r.log.Warn().Err(err).Msg("encode catalog")
		return
	}

	ttl := r.ttlWithJitter()
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, catalogListKey, list, ttl)
	pipe.Del(ctx, catalogIndexKey)
	for _, p := range items {
		raw, err := json.Marshal(p)
		if err != nil {
			continue
		}
		pipe.HSet(ctx, catalogIndexKey, p.ID, raw)
	}
	if ttl > 0 {
		pipe.Expire(ctx, catalogIndexKey, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.log.Warn().Err(err).Msg("catalog cache write failed")
	}
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
