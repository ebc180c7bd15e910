package record

import (
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/roach88/dynq/internal/types"
)

// Cache maps schemas to record types. Entries are never evicted or
// modified, so a schema resolves to the same *types.Type for the lifetime
// of the cache.
//
// Lookups share a read lock. A miss takes the write lock, checks again and
// registers the new type; concurrent misses on the same schema all observe
// the type registered by the first writer.
type Cache struct {
	mu      sync.RWMutex
	buckets map[uint64][]*Type
	count   int
	logger  *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used to report new record types.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCache creates an empty cache.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		buckets: map[uint64][]*Type{},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var shared = NewCache()

// Shared returns the process-wide cache.
func Shared() *Cache { return shared }

func (c *Cache) lookup(h uint64, s Schema) *Type {
	for _, rt := range c.buckets[h] {
		if rt.schema.Equal(s) {
			return rt
		}
	}
	return nil
}

// GetOrCreate returns the record type for s, creating it on first use.
func (c *Cache) GetOrCreate(s Schema) *types.Type {
	h := s.Hash()

	c.mu.RLock()
	rt := c.lookup(h, s)
	c.mu.RUnlock()
	if rt != nil {
		return rt.typ
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if rt := c.lookup(h, s); rt != nil {
		return rt.typ
	}
	rt = newType("Record"+strconv.Itoa(c.count+1), s)
	c.register(h, rt)
	return rt.typ
}

// register adds rt under h. Callers hold the write lock.
func (c *Cache) register(h uint64, rt *Type) {
	c.count++
	c.buckets[h] = append(c.buckets[h], rt)
	c.logger.Debug("record type registered",
		"name", rt.typ.Name(),
		"schema", rt.schema.String(),
	)
}

// Stage starts a batch of registrations that stay private until Commit.
// A compile stages the records it creates and commits them only once it
// succeeds, so a failed compile leaves the cache unchanged.
func (c *Cache) Stage() *Pending {
	return &Pending{cache: c}
}

// Pending is an uncommitted overlay on a Cache. It is not safe for
// concurrent use.
type Pending struct {
	cache  *Cache
	base   int // cache.count when the first type was staged
	staged []*Type
}

// GetOrCreate returns the record type for s from the cache or the
// overlay, staging a new type on a miss.
func (p *Pending) GetOrCreate(s Schema) *types.Type {
	h := s.Hash()
	c := p.cache

	c.mu.RLock()
	defer c.mu.RUnlock()
	if rt := c.lookup(h, s); rt != nil {
		return rt.typ
	}
	for _, rt := range p.staged {
		if rt.schema.Equal(s) {
			return rt.typ
		}
	}
	if len(p.staged) == 0 {
		p.base = c.count
	}
	rt := newType("Record"+strconv.Itoa(p.base+len(p.staged)+1), s)
	p.staged = append(p.staged, rt)
	return rt.typ
}

// Len returns the number of staged types.
func (p *Pending) Len() int { return len(p.staged) }

// Commit registers the staged types. It reports false, registering
// nothing, if the cache changed since the first type was staged; the
// staged types must then be discarded and the batch rebuilt.
func (p *Pending) Commit() bool {
	if len(p.staged) == 0 {
		return true
	}
	c := p.cache
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.count != p.base {
		return false
	}
	for _, rt := range p.staged {
		c.register(rt.schema.Hash(), rt)
	}
	p.staged = nil
	return true
}

// Len returns the number of registered record types.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.count
}
