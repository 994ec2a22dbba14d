package main

import (
	"bytes"
	"context"
	"testing"

	"cadastro/config"
	"cadastro/db"
	"cadastro/db/sqlite"
	"cadastro/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaCommand(t *testing.T) {
	for driver, want := range map[string]string{
		config.DriverPostgres: "bigserial",
		config.DriverSqlite:   "autoincrement",
	} {
		var out bytes.Buffer
		cmd := newRootCommand()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"schema", "--env-file", "", "--database-driver", driver})

		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "create table if not exists endereco", driver)
		assert.Contains(t, out.String(), want, driver)
	}
}

func TestOpenStores_sqliteWithMemoryCache(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Cfg{
		DatabaseDriver: config.DriverSqlite,
		SqlitePath:     sqlite.Memory,
		CacheBackend:   config.CacheMemory,
		CacheMaxBytes:  1 << 20,
	}

	st, err := openStores(ctx, cfg, logging.Nop())
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.pinger.Ping(ctx))

	ana, err := st.pessoas.Save(ctx, db.Pessoa{Nome: "Ana"})
	require.NoError(t, err)
	endereco, err := st.enderecos.Save(ctx, db.Endereco{Logradouro: "Rua A", Pessoa: &db.PessoaRef{Id: *ana.Id}})
	require.NoError(t, err)

	lookup, err := st.enderecos.FindById(ctx, *endereco.Id)
	require.NoError(t, err)
	cached, _ := lookup.Get()
	require.False(t, cached.Unowned())

	require.NoError(t, st.pessoas.DeleteById(ctx, *ana.Id))

	lookup, err = st.enderecos.FindById(ctx, *endereco.Id)
	require.NoError(t, err)
	got, found := lookup.Get()
	require.True(t, found)
	assert.True(t, got.Unowned())
}

func TestOpenStores_rejectsUnreachableRedis(t *testing.T) {
	cfg := &config.Cfg{
		DatabaseDriver: config.DriverSqlite,
		SqlitePath:     sqlite.Memory,
		CacheBackend:   config.CacheRedis,
		RedisAddr:      "127.0.0.1:1",
	}

	_, err := openStores(context.Background(), cfg, logging.Nop())
	assert.Error(t, err)
}
