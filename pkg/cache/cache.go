package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrCacheMiss is returned by Get when the key holds no value. Callers treat a
// miss as "data not cached yet", never as a failure.
var ErrCacheMiss = errors.New("cache: key not found")

// Service is the read/write surface the freshness store and other consumers
// need. Values round-trip through JSON.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Key joins a prefix and its parts into a colon-separated cache key, e.g.
// Key("freshness", isbn, category) -> "freshness:<isbn>:<category>".
func Key(prefix string, parts ...interface{}) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, p := range parts {
		fmt.Fprintf(&b, ":%v", p)
	}
	return b.String()
}
