package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aretw0/courier/pkg/domain"
	"github.com/aretw0/courier/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// farFuture is the index score of values stored without a TTL.
const farFuture = 4102444800 // 2100-01-01

// Repository implements ports.Repository using Redis.
// Values are JSON encoded under prefix+id; a sorted set at "idx:"+prefix
// tracks ids scored by their expiry. The index lives outside the value
// namespace, so no id can overwrite it.
type Repository[T any] struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

var _ ports.Repository[struct{}] = (*Repository[struct{}])(nil)

type settings struct {
	prefix string
	ttl    time.Duration
}

// Option configures a Repository.
type Option func(*settings)

// WithTTL sets the expiration for stored values.
func WithTTL(ttl time.Duration) Option {
	return func(s *settings) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *settings) {
		s.prefix = prefix
	}
}

// NewClient connects to a Redis server.
func NewClient(address, password string, db int) *backend.Client {
	return backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
}

// NewRepository creates a repository over an existing client.
// The default prefix is "courier:".
func NewRepository[T any](client *backend.Client, opts ...Option) *Repository[T] {
	s := settings{prefix: "courier:"}
	for _, opt := range opts {
		opt(&s)
	}
	return &Repository[T]{
		client: client,
		prefix: s.prefix,
		ttl:    s.ttl,
	}
}

func (r *Repository[T]) key(id string) string {
	return r.prefix + id
}

func (r *Repository[T]) indexKey() string {
	return "idx:" + r.prefix
}

// Save persists v to Redis.
func (r *Repository[T]) Save(ctx context.Context, id string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", id, err)
	}

	score := float64(time.Now().Add(r.ttl).Unix())
	if r.ttl == 0 {
		score = farFuture
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.key(id), data, r.ttl)
	pipe.ZAdd(ctx, r.indexKey(), backend.Z{Score: score, Member: id})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the value stored under id.
func (r *Repository[T]) Load(ctx context.Context, id string) (T, error) {
	var v T
	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return v, fmt.Errorf("%s: %w", id, domain.ErrNotFound)
		}
		return v, fmt.Errorf("failed to get from redis: %w", err)
	}

	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("failed to unmarshal %s: %w", id, err)
	}
	return v, nil
}

// Delete removes id and its index entry.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.key(id))
	pipe.ZRem(ctx, r.indexKey(), id)

	_, err := pipe.Exec(ctx)
	return err
}

// List prunes expired index entries, then returns the live values ordered by id.
func (r *Repository[T]) List(ctx context.Context) ([]T, error) {
	now := float64(time.Now().Unix())
	if err := r.client.ZRemRangeByScore(ctx, r.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired entries: %w", err)
	}

	ids, err := r.client.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list index: %w", err)
	}
	if len(ids) == 0 {
		return []T{}, nil
	}
	sort.Strings(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key(id)
	}
	raws, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read values: %w", err)
	}

	out := make([]T, 0, len(raws))
	for i, raw := range raws {
		s, ok := raw.(string)
		if !ok {
			// expired between the prune and the read
			continue
		}
		var v T
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", ids[i], err)
		}
		out = append(out, v)
	}
	return out, nil
}
