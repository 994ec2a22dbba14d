// Package sqlite implements the entity repositories on an embedded SQLite
// database, for local runs without a Postgres server.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cadastro/db"

	sqlitedriver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Memory opens a private in-memory database.
const Memory = ":memory:"

var SchemaStatements = []string{
	`create table if not exists pessoa (
		id integer primary key autoincrement,
		nome text not null default '',
		cpf text not null default '',
		email text not null default '',
		data_nascimento text not null default ''
	)`,
	`create table if not exists endereco (
		id integer primary key autoincrement,
		logradouro text not null default '',
		numero text not null default '',
		complemento text not null default '',
		bairro text not null default '',
		cidade text not null default '',
		uf text not null default '',
		cep text not null default '',
		pessoa_id integer references pessoa (id) on delete set null
	)`,
	`create index if not exists endereco_pessoa_id_index on endereco (pessoa_id)`,
}

func Schema() string {
	return strings.Join(SchemaStatements, ";\n\n") + ";\n"
}

// Store owns the database handle shared by the repositories.
type Store struct {
	DB *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		path = "cadastro.db"
	}
	if path != Memory {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection: sqlite serializes writers anyway and :memory: is per connection
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, "pragma foreign_keys = on"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	for _, stmt := range SchemaStatements {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	return &Store{DB: conn}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) Pessoas() *PessoaRepository {
	return &PessoaRepository{db: s.DB}
}

func (s *Store) Enderecos() *EnderecoRepository {
	return &EnderecoRepository{db: s.DB}
}

func translateError(err error) error {
	var sqliteErr *sqlitedriver.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		return fmt.Errorf("%w: %s", db.ErrUnknownPessoa, sqliteErr.Error())
	}
	return err
}
