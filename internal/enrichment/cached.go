package enrichment

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/cesargomez89/requestline/internal/logger"
)

// Cache stores serialized lookup results.
type Cache interface {
	GetCache(ctx context.Context, key string) ([]byte, error)
	SetCache(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// CachedProvider turns a Source into a Provider, optionally memoizing
// completed lookups. Transport failures are never cached.
type CachedProvider struct {
	source Source
	cache  Cache
	logger *logger.Logger
	ttl    time.Duration
}

var _ Provider = (*CachedProvider)(nil)

// NewCachedProvider wraps source. A nil cache disables memoization.
func NewCachedProvider(source Source, cache Cache, ttl time.Duration, log *logger.Logger) *CachedProvider {
	return &CachedProvider{
		source: source,
		cache:  cache,
		ttl:    ttl,
		logger: log.WithComponent("enrichment"),
	}
}

func (c *CachedProvider) Name() string {
	return c.source.Name()
}

type cachedResult struct {
	Result   Result `json:"result"`
	NotFound bool   `json:"not_found"`
}

// SearchKey builds the cache key for a text lookup.
func SearchKey(provider, songName, artist string) string {
	return "enrich:" + provider + ":" + normalize(songName) + "|" + normalize(artist)
}

// IDKey builds the cache key for a lookup by track id.
func IDKey(provider, trackID string) string {
	return "enrich:" + provider + ":id:" + trackID
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (c *CachedProvider) Lookup(ctx context.Context, songName, artist string) Result {
	key := SearchKey(c.source.Name(), songName, artist)
	return c.lookup(ctx, key, songName, artist, func() (Result, error) {
		return c.source.Search(ctx, songName, artist)
	})
}

func (c *CachedProvider) LookupByID(ctx context.Context, trackID, songName, artist string) Result {
	if strings.TrimSpace(trackID) == "" {
		return c.Lookup(ctx, songName, artist)
	}
	key := IDKey(c.source.Name(), trackID)
	return c.lookup(ctx, key, songName, artist, func() (Result, error) {
		return c.source.ByID(ctx, trackID, songName, artist)
	})
}

func (c *CachedProvider) lookup(ctx context.Context, key, songName, artist string, fetch func() (Result, error)) Result {
	if res, ok := c.fromCache(ctx, key, songName, artist); ok {
		return res
	}

	res, err := fetch()
	if err != nil {
		c.logger.Warn("Enrichment lookup failed", "provider", c.source.Name(), "song", songName, "artist", artist, "error", err)
		return Fallback(songName, artist)
	}
	if !res.Matched {
		res = Fallback(songName, artist)
	}

	c.store(ctx, key, res)
	return res
}

func (c *CachedProvider) fromCache(ctx context.Context, key, songName, artist string) (Result, bool) {
	if c.cache == nil {
		return Result{}, false
	}

	data, err := c.cache.GetCache(ctx, key)
	if err != nil {
		c.logger.Debug("Cache read failed", "key", key, "error", err)
		return Result{}, false
	}
	if data == nil {
		return Result{}, false
	}

	var cached cachedResult
	if err := json.Unmarshal(data, &cached); err != nil {
		return Result{}, false
	}
	if cached.NotFound {
		return Fallback(songName, artist), true
	}
	return cached.Result, true
}

func (c *CachedProvider) store(ctx context.Context, key string, res Result) {
	if c.cache == nil {
		return
	}

	cached := cachedResult{Result: res, NotFound: !res.Matched}
	data, err := json.Marshal(cached)
	if err != nil {
		return
	}
	if err := c.cache.SetCache(ctx, key, data, c.ttl); err != nil {
		c.logger.Debug("Cache write failed", "key", key, "error", err)
	}
}
