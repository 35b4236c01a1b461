package content

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"dahabiya-site/internal/data"
	"dahabiya-site/internal/logger"
	"dahabiya-site/internal/schema"
)

const cachePrefix = "content:"

// Store reads content items.
type Store interface {
	ListByPage(ctx context.Context, page, section string, activeOnly bool) ([]*data.ContentItem, error)
}

// Cache holds serialized page maps between requests.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// Resolver loads page content maps. Failures never reach callers: they are
// logged and produce an empty map.
type Resolver struct {
	store     Store
	cache     Cache
	ttl       time.Duration
	structure *schema.Structure
	log       logger.Logger
}

// NewResolver creates a Resolver. cache and structure may be nil.
func NewResolver(store Store, cache Cache, ttl time.Duration, structure *schema.Structure, log logger.Logger) *Resolver {
	return &Resolver{store: store, cache: cache, ttl: ttl, structure: structure, log: log}
}

// Load returns the active content of page. Within a request context prepared
// by WithMemo each page is fetched at most once.
func (r *Resolver) Load(ctx context.Context, page string) Map {
	memo, _ := ctx.Value(memoKey{}).(*requestMemo)
	if memo != nil {
		if m, ok := memo.get(page); ok {
			return m
		}
	}

	values, err := r.values(ctx, page)
	m := Map{page: page, values: values, defaults: r.defaultsFor(page), err: err}
	if err != nil {
		r.log.With(map[string]interface{}{"page": page, "error": err.Error()}).Warn("content unavailable, rendering defaults")
		m.values = nil
	}

	if memo != nil {
		memo.put(page, m)
	}
	return m
}

func (r *Resolver) values(ctx context.Context, page string) (map[string]string, error) {
	if r.cache != nil {
		raw, err := r.cache.Get(ctx, cachePrefix+page)
		if err != nil {
			r.log.Error(err, "content cache read failed")
		} else if raw != nil {
			var values map[string]string
			if err := json.Unmarshal(raw, &values); err == nil {
				return values, nil
			}
		}
	}

	items, err := r.store.ListByPage(ctx, page, "", true)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(items))
	for _, item := range items {
		values[item.Key] = item.Value()
	}

	if r.cache != nil {
		if raw, err := json.Marshal(values); err == nil {
			if err := r.cache.Set(ctx, cachePrefix+page, raw, r.ttl); err != nil {
				r.log.Error(err, "content cache write failed")
			}
		}
	}
	return values, nil
}

// Invalidate drops the cached map of page so the next Load reads the store.
func (r *Resolver) Invalidate(ctx context.Context, page string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Delete(ctx, cachePrefix+page); err != nil {
		r.log.Error(err, "content cache invalidation failed")
	}
}

// InvalidateAll drops every cached page map.
func (r *Resolver) InvalidateAll(ctx context.Context) {
	if r.cache == nil {
		return
	}
	if err := r.cache.DeletePrefix(ctx, cachePrefix); err != nil {
		r.log.Error(err, "content cache invalidation failed")
	}
}

func (r *Resolver) defaultsFor(page string) func(string) string {
	if r.structure == nil {
		return nil
	}
	s := r.structure
	return func(key string) string { return s.DefaultValue(page, key) }
}

type memoKey struct{}

type requestMemo struct {
	mu    sync.Mutex
	pages map[string]Map
}

func (m *requestMemo) get(page string) (Map, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.pages[page]
	return v, ok
}

func (m *requestMemo) put(page string, v Map) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[page] = v
}

// WithMemo returns a context in which Load results are reused for the
// lifetime of the request.
func WithMemo(ctx context.Context) context.Context {
	return context.WithValue(ctx, memoKey{}, &requestMemo{pages: make(map[string]Map)})
}
