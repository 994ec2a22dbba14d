package sqlite

import (
	"context"
	"testing"

	"cadastro/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), Memory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestPessoaRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := openMemory(t).Pessoas()

	first, err := repo.Save(ctx, db.Pessoa{Nome: "Ana"})
	require.NoError(t, err)
	second, err := repo.Save(ctx, db.Pessoa{Nome: "Bia"})
	require.NoError(t, err)

	require.NotNil(t, first.Id)
	require.NotNil(t, second.Id)
	assert.NotEqual(t, *first.Id, *second.Id)

	lookup, err := repo.FindById(ctx, *first.Id)
	require.NoError(t, err)
	got, found := lookup.Get()
	require.True(t, found)
	assert.Equal(t, "Ana", got.Nome)

	first.Nome = "Ana B"
	first.Email = "ana@example.com"
	_, err = repo.Save(ctx, first)
	require.NoError(t, err)

	lookup, err = repo.FindById(ctx, *first.Id)
	require.NoError(t, err)
	got, _ = lookup.Get()
	assert.Equal(t, first, got)

	all, err := db.Collect(repo.FindAll(ctx))
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, repo.DeleteById(ctx, *first.Id))
	require.NoError(t, repo.DeleteById(ctx, *first.Id))

	lookup, err = repo.FindById(ctx, *first.Id)
	require.NoError(t, err)
	assert.False(t, lookup.IsPresent())
}

func TestPessoaRepository_UpdateUnknownId(t *testing.T) {
	id := int64(5)
	_, err := openMemory(t).Pessoas().Save(context.Background(), db.Pessoa{Id: &id, Nome: "Ana B"})
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestUpdateIsFullReplace(t *testing.T) {
	ctx := context.Background()
	repo := openMemory(t).Pessoas()

	saved, err := repo.Save(ctx, db.Pessoa{Nome: "Ana", Cpf: "123", Email: "ana@example.com"})
	require.NoError(t, err)

	_, err = repo.Save(ctx, db.Pessoa{Id: saved.Id, Nome: "Ana B"})
	require.NoError(t, err)

	lookup, err := repo.FindById(ctx, *saved.Id)
	require.NoError(t, err)
	got, _ := lookup.Get()
	assert.Equal(t, "Ana B", got.Nome)
	assert.Empty(t, got.Cpf)
	assert.Empty(t, got.Email)
}

func TestEnderecoRepository_Ownership(t *testing.T) {
	ctx := context.Background()
	store := openMemory(t)
	pessoas, enderecos := store.Pessoas(), store.Enderecos()

	ana, err := pessoas.Save(ctx, db.Pessoa{Nome: "Ana"})
	require.NoError(t, err)

	owned, err := enderecos.Save(ctx, db.Endereco{Logradouro: "Rua A", Pessoa: &db.PessoaRef{Id: *ana.Id}})
	require.NoError(t, err)
	free, err := enderecos.Save(ctx, db.Endereco{Logradouro: "Rua B"})
	require.NoError(t, err)

	unowned, err := db.Collect(db.Filter(enderecos.FindAll(ctx), db.Endereco.Unowned))
	require.NoError(t, err)
	require.Len(t, unowned, 1)
	assert.Equal(t, *free.Id, *unowned[0].Id)

	byAna, err := db.Collect(db.Filter(enderecos.FindAll(ctx), db.OwnedBy(*ana.Id)))
	require.NoError(t, err)
	require.Len(t, byAna, 1)
	assert.Equal(t, *owned.Id, *byAna[0].Id)

	// deleting the owner leaves the address unowned
	require.NoError(t, pessoas.DeleteById(ctx, *ana.Id))

	lookup, err := enderecos.FindById(ctx, *owned.Id)
	require.NoError(t, err)
	got, found := lookup.Get()
	require.True(t, found)
	assert.True(t, got.Unowned())
}

func TestEnderecoRepository_UnknownPessoa(t *testing.T) {
	_, err := openMemory(t).Enderecos().Save(context.Background(),
		db.Endereco{Logradouro: "Rua A", Pessoa: &db.PessoaRef{Id: 404}})
	assert.ErrorIs(t, err, db.ErrUnknownPessoa)
}

func TestFindAll_stopsEarly(t *testing.T) {
	ctx := context.Background()
	store := openMemory(t)
	repo := store.Pessoas()

	for _, nome := range []string{"a", "b", "c"} {
		_, err := repo.Save(ctx, db.Pessoa{Nome: nome})
		require.NoError(t, err)
	}

	var seen []string
	for pessoa, err := range repo.FindAll(ctx) {
		require.NoError(t, err)
		seen = append(seen, pessoa.Nome)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, seen)

	// the connection was released, so the store is still usable
	require.NoError(t, store.Ping(ctx))
}
