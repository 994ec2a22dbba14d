package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"cadastro/db"
	"cadastro/db/sqlite"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRepository records how many lookups reach the store.
type countingRepository[T any] struct {
	db.Repository[T]
	lookups int
}

func (c *countingRepository[T]) FindById(ctx context.Context, id int64) (db.Lookup[T], error) {
	c.lookups++
	return c.Repository.FindById(ctx, id)
}

func newMemoryBackend(t *testing.T) *MemoryBackend {
	t.Helper()
	backend, err := NewMemoryBackend(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })
	return backend
}

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(), sqlite.Memory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRepository_FindById_servesSecondLookupFromCache(t *testing.T) {
	ctx := context.Background()
	store := &countingRepository[db.Pessoa]{Repository: newStore(t).Pessoas()}
	repo := Wrap[db.Pessoa](store, newMemoryBackend(t), "pessoa")

	saved, err := repo.Save(ctx, db.Pessoa{Nome: "Ana"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		lookup, err := repo.FindById(ctx, *saved.Id)
		require.NoError(t, err)
		got, found := lookup.Get()
		require.True(t, found)
		assert.Equal(t, "Ana", got.Nome)
	}

	assert.Equal(t, 1, store.lookups)
}

func TestRepository_Save_evicts(t *testing.T) {
	ctx := context.Background()
	repo := Wrap[db.Pessoa](newStore(t).Pessoas(), newMemoryBackend(t), "pessoa")

	saved, err := repo.Save(ctx, db.Pessoa{Nome: "Ana"})
	require.NoError(t, err)
	_, err = repo.FindById(ctx, *saved.Id)
	require.NoError(t, err)

	saved.Nome = "Ana B"
	_, err = repo.Save(ctx, saved)
	require.NoError(t, err)

	lookup, err := repo.FindById(ctx, *saved.Id)
	require.NoError(t, err)
	got, _ := lookup.Get()
	assert.Equal(t, "Ana B", got.Nome)
}

func TestRepository_DeleteById_evictsAndDoesNotCacheAbsence(t *testing.T) {
	ctx := context.Background()
	store := &countingRepository[db.Pessoa]{Repository: newStore(t).Pessoas()}
	repo := Wrap[db.Pessoa](store, newMemoryBackend(t), "pessoa")

	saved, err := repo.Save(ctx, db.Pessoa{Nome: "Ana"})
	require.NoError(t, err)
	_, err = repo.FindById(ctx, *saved.Id)
	require.NoError(t, err)

	require.NoError(t, repo.DeleteById(ctx, *saved.Id))

	for i := 0; i < 2; i++ {
		lookup, err := repo.FindById(ctx, *saved.Id)
		require.NoError(t, err)
		assert.False(t, lookup.IsPresent())
	}
	assert.Equal(t, 3, store.lookups)
}

func TestRepository_DeletingOwnerEvictsOwnedEnderecos(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	backend := newMemoryBackend(t)

	enderecos := Wrap[db.Endereco](store.Enderecos(), backend, "endereco")
	pessoas := Wrap[db.Pessoa](store.Pessoas(), backend, "pessoa",
		WithDependents[db.Pessoa](OwnedEnderecoKeys(store.Enderecos(), "endereco")))

	ana, err := pessoas.Save(ctx, db.Pessoa{Nome: "Ana"})
	require.NoError(t, err)
	endereco, err := enderecos.Save(ctx, db.Endereco{Logradouro: "Rua A", Pessoa: &db.PessoaRef{Id: *ana.Id}})
	require.NoError(t, err)

	// warm the cache with the owned address
	lookup, err := enderecos.FindById(ctx, *endereco.Id)
	require.NoError(t, err)
	got, _ := lookup.Get()
	require.False(t, got.Unowned())

	require.NoError(t, pessoas.DeleteById(ctx, *ana.Id))

	lookup, err = enderecos.FindById(ctx, *endereco.Id)
	require.NoError(t, err)
	got, _ = lookup.Get()
	assert.True(t, got.Unowned())
}

func TestRedisBackend(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	backend := NewRedisBackend(redis.NewClient(&redis.Options{Addr: addr}), WithRedisPrefix("cadastro-test"))
	t.Cleanup(func() { _ = backend.Close() })

	require.NoError(t, backend.Set(ctx, "pessoa::1", []byte(`{"id":1}`), time.Minute))

	value, found, err := backend.Get(ctx, "pessoa::1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, `{"id":1}`, string(value))

	require.NoError(t, backend.Del(ctx, "pessoa::1"))

	_, found, err = backend.Get(ctx, "pessoa::1")
	require.NoError(t, err)
	assert.False(t, found)
}
