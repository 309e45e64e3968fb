package cache

import (
	"context"
	"time"

	"github.com/valkey-io/valkey-go"
)

const defaultKeyPrefix = "severity-calendar:doc"

// Valkey caches documents in a shared Valkey (or Redis-compatible) server
// so several heatmap replicas reuse the same fetches.
type Valkey struct {
	client valkey.Client
	prefix string
	ttl    time.Duration
}

// NewValkey wraps an existing client. Keys are namespaced under prefix.
func NewValkey(client valkey.Client, prefix string, ttl time.Duration) *Valkey {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &Valkey{client: client, prefix: prefix, ttl: ttl}
}

func (v *Valkey) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := v.client.Do(ctx, v.client.B().Get().Key(v.key(key)).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (v *Valkey) Put(ctx context.Context, key string, value []byte) error {
	builder := v.client.B().Set().Key(v.key(key)).Value(valkey.BinaryString(value))
	var cmd valkey.Completed
	if v.ttl > 0 {
		ttl := v.ttl
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return v.client.Do(ctx, cmd).Error()
}

// Ping reports whether the server answers.
func (v *Valkey) Ping(ctx context.Context) error {
	return v.client.Do(ctx, v.client.B().Ping().Build()).Error()
}

func (v *Valkey) key(name string) string {
	return v.prefix + ":" + name
}
