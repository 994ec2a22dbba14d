package db

import (
	"context"
	"fmt"
	"strings"
)

// SchemaStatements bootstraps an empty database. Existing tables are left untouched.
var SchemaStatements = []string{
	`create table if not exists pessoa (
		id bigserial primary key,
		nome varchar(255) not null default '',
		cpf varchar(14) not null default '',
		email varchar(255) not null default '',
		data_nascimento varchar(10) not null default ''
	)`,
	`create table if not exists endereco (
		id bigserial primary key,
		logradouro varchar(255) not null default '',
		numero varchar(20) not null default '',
		complemento varchar(255) not null default '',
		bairro varchar(255) not null default '',
		cidade varchar(255) not null default '',
		uf varchar(2) not null default '',
		cep varchar(9) not null default '',
		pessoa_id bigint references pessoa (id) on delete set null
	)`,
	`create index if not exists endereco_pessoa_id_index on endereco (pessoa_id)`,
}

func Schema() string {
	return strings.Join(SchemaStatements, ";\n\n") + ";\n"
}

func CreateSchema(ctx context.Context, conn PgxIface) error {
	for _, stmt := range SchemaStatements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
