package cache

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"cadastro/db"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Key is the cache key of the record with the given id under prefix.
func Key(prefix string, id int64) string {
	return fmt.Sprintf("%s::%d", prefix, id)
}

// Repository serves FindById from a Backend and evicts on every write.
// Absent lookups are never cached. Backend failures degrade to the wrapped
// repository and are only logged.
type Repository[T db.Identifiable] struct {
	next       db.Repository[T]
	backend    Backend
	prefix     string
	ttl        time.Duration
	dependents func(ctx context.Context, id int64) ([]string, error)
	logger     *slog.Logger
}

var _ db.Repository[db.Pessoa] = (*Repository[db.Pessoa])(nil)

type Option[T db.Identifiable] func(*Repository[T])

func WithTTL[T db.Identifiable](ttl time.Duration) Option[T] {
	return func(r *Repository[T]) { r.ttl = ttl }
}

func WithLogger[T db.Identifiable](logger *slog.Logger) Option[T] {
	return func(r *Repository[T]) { r.logger = logger }
}

// WithDependents registers a function returning keys of other cached records
// that change when the record with id is deleted. It runs before the delete
// and the returned keys are evicted after it.
func WithDependents[T db.Identifiable](fn func(ctx context.Context, id int64) ([]string, error)) Option[T] {
	return func(r *Repository[T]) { r.dependents = fn }
}

func Wrap[T db.Identifiable](next db.Repository[T], backend Backend, prefix string, opts ...Option[T]) *Repository[T] {
	r := &Repository[T]{
		next:    next,
		backend: backend,
		prefix:  prefix,
		ttl:     5 * time.Minute,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository[T]) Save(ctx context.Context, entity T) (T, error) {
	saved, err := r.next.Save(ctx, entity)
	if err != nil {
		return saved, err
	}
	if id, ok := saved.Identity(); ok {
		r.evict(ctx, Key(r.prefix, id))
	}
	return saved, nil
}

func (r *Repository[T]) FindById(ctx context.Context, id int64) (db.Lookup[T], error) {
	key := Key(r.prefix, id)

	cached, found, err := r.backend.Get(ctx, key)
	if err != nil {
		r.logger.WarnContext(ctx, "cache get failed", "key", key, "error", err)
	}
	if found {
		var entity T
		if err := json.Unmarshal(cached, &entity); err == nil {
			r.logger.DebugContext(ctx, "found in cache", "key", key)
			return db.Found(entity), nil
		}
		r.logger.WarnContext(ctx, "discarding undecodable cache entry", "key", key)
		r.evict(ctx, key)
	}

	lookup, err := r.next.FindById(ctx, id)
	if err != nil {
		return lookup, err
	}

	if entity, ok := lookup.Get(); ok {
		encoded, err := json.Marshal(entity)
		if err == nil {
			err = r.backend.Set(ctx, key, encoded, r.ttl)
		}
		if err != nil {
			r.logger.WarnContext(ctx, "cache set failed", "key", key, "error", err)
		}
	}

	return lookup, nil
}

func (r *Repository[T]) FindAll(ctx context.Context) iter.Seq2[T, error] {
	return r.next.FindAll(ctx)
}

func (r *Repository[T]) DeleteById(ctx context.Context, id int64) error {
	keys := []string{Key(r.prefix, id)}

	if r.dependents != nil {
		extra, err := r.dependents(ctx, id)
		if err != nil {
			return fmt.Errorf("collect dependent cache keys: %w", err)
		}
		keys = append(keys, extra...)
	}

	if err := r.next.DeleteById(ctx, id); err != nil {
		return err
	}

	r.evict(ctx, keys...)
	return nil
}

func (r *Repository[T]) evict(ctx context.Context, keys ...string) {
	if err := r.backend.Del(ctx, keys...); err != nil {
		r.logger.WarnContext(ctx, "cache eviction failed", "keys", keys, "error", err)
	}
}

// OwnedEnderecoKeys lists the cache keys of the addresses owned by a Pessoa,
// which become unowned when that Pessoa is deleted.
func OwnedEnderecoKeys(enderecos db.Repository[db.Endereco], prefix string) func(context.Context, int64) ([]string, error) {
	return func(ctx context.Context, pessoaId int64) ([]string, error) {
		var keys []string
		for endereco, err := range db.Filter(enderecos.FindAll(ctx), db.OwnedBy(pessoaId)) {
			if err != nil {
				return nil, err
			}
			if id, ok := endereco.Identity(); ok {
				keys = append(keys, Key(prefix, id))
			}
		}
		return keys, nil
	}
}
