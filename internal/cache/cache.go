// Package cache persists raw provider JSON responses on disk so repeated
// requests within the freshness window never reach the network.
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

const (
	// DefaultTTL is the freshness window for a cached response.
	DefaultTTL = time.Hour

	// DefaultMaxAge is the retention horizon for the startup sweep.
	DefaultMaxAge = 7 * 24 * time.Hour

	filePrefix = "cache_"
	fileSuffix = ".json"
)

// SweepStats reports what the startup sweep did.
type SweepStats struct {
	Removed int
	Failed  int
}

// Cache maps request keys to JSON files under a single directory. Entries are
// trusted while younger than the TTL; stale files stay on disk until they are
// overwritten or swept. A nil *Cache is valid and behaves as disabled.
type Cache struct {
	dir    string
	ttl    time.Duration
	clock  clockwork.Clock
	logger zerolog.Logger
}

// Option customizes a Cache.
type Option func(*Cache)

// WithTTL overrides the freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithClock swaps the time source, for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Cache) { c.clock = clock }
}

// New creates the cache directory if needed and returns a Cache over it.
func New(dir string, logger zerolog.Logger, opts ...Option) (*Cache, error) {
	c := &Cache{
		dir:    dir,
		ttl:    DefaultTTL,
		clock:  clockwork.NewRealClock(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return c, nil
}

// Key derives a deterministic cache key from the request URL and its query
// parameters. Parameters are sorted first, so insertion order never changes
// the key. Without parameters the key is derived from the URL alone.
func Key(rawURL string, params url.Values) string {
	escaped := url.QueryEscape(rawURL)
	if len(params) == 0 {
		return filePrefix + escaped + fileSuffix
	}

	pairs := make([]string, 0, len(params))
	for name, values := range params {
		for _, v := range values {
			pairs = append(pairs, name+"="+v)
		}
	}
	sort.Strings(pairs)

	h := sha256.New()
	h.Write([]byte(rawURL))
	for _, p := range pairs {
		h.Write([]byte{0})
		h.Write([]byte(p))
	}
	digest := hex.EncodeToString(h.Sum(nil))[:16]

	return filePrefix + escaped + "_" + digest + fileSuffix
}

// Get returns the cached payload for key, or a miss when the cache is
// disabled, the entry is absent, stale, or unreadable. Read failures are
// logged and degrade to a miss.
func (c *Cache) Get(key string) (json.RawMessage, bool) {
	if c == nil {
		return nil, false
	}

	path := filepath.Join(c.dir, key)
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}

	if c.clock.Now().Sub(info.ModTime()) >= c.ttl {
		return nil, false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to read cache entry")
		return nil, false
	}
	if !json.Valid(data) {
		c.logger.Warn().Str("key", key).Msg("cache entry is not valid JSON")
		return nil, false
	}

	return data, true
}

// Put writes the payload under key, pretty-printed, replacing any previous
// entry. Write failures are logged and never returned.
func (c *Cache) Put(key string, payload json.RawMessage) {
	if c == nil {
		return
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, payload, "", "  "); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to encode cache entry")
		return
	}

	path := filepath.Join(c.dir, key)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("failed to write cache entry")
	}
}

// Sweep deletes cache files older than maxAge. It runs once on startup;
// delete failures are logged and counted, never raised.
func (c *Cache) Sweep(maxAge time.Duration) SweepStats {
	var stats SweepStats
	if c == nil {
		return stats
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		c.logger.Warn().Err(err).Str("dir", c.dir).Msg("failed to read cache directory")
		return stats
	}

	cutoff := c.clock.Now().Add(-maxAge)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}

		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(c.dir, name)); err != nil {
			stats.Failed++
			c.logger.Warn().Err(err).Str("file", name).Msg("failed to remove old cache file")
			continue
		}
		stats.Removed++
	}

	if stats.Removed > 0 {
		c.logger.Debug().Int("removed", stats.Removed).Msg("swept old cache files")
	}
	return stats
}
