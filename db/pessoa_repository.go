package db

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/jackc/pgx/v5"
)

type PessoaRepository struct {
	conn PgxIface
}

var _ Repository[Pessoa] = (*PessoaRepository)(nil)

func NewPessoaRepository(conn PgxIface) *PessoaRepository {
	return &PessoaRepository{conn: conn}
}

func (r *PessoaRepository) Save(ctx context.Context, pessoa Pessoa) (Pessoa, error) {
	if pessoa.Id == nil {
		sql := `insert into pessoa (nome, cpf, email, data_nascimento) values ($1, $2, $3, $4) returning id`

		var id int64
		err := r.conn.QueryRow(ctx, sql, pessoa.Nome, pessoa.Cpf, pessoa.Email, pessoa.DataNascimento).Scan(&id)
		if err != nil {
			return Pessoa{}, fmt.Errorf("insert pessoa: %w", err)
		}

		pessoa.Id = &id
		return pessoa, nil
	}

	sql := `update pessoa set nome = $2, cpf = $3, email = $4, data_nascimento = $5 where id = $1`

	tag, err := r.conn.Exec(ctx, sql, *pessoa.Id, pessoa.Nome, pessoa.Cpf, pessoa.Email, pessoa.DataNascimento)
	if err != nil {
		return Pessoa{}, fmt.Errorf("update pessoa %d: %w", *pessoa.Id, err)
	}
	if tag.RowsAffected() == 0 {
		return Pessoa{}, fmt.Errorf("update pessoa %d: %w", *pessoa.Id, ErrNotFound)
	}

	return pessoa, nil
}

func (r *PessoaRepository) FindById(ctx context.Context, id int64) (Lookup[Pessoa], error) {
	sql := "select id, nome, cpf, email, data_nascimento from pessoa where id = $1"

	pessoa, err := scanPessoa(r.conn.QueryRow(ctx, sql, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Absent[Pessoa](), nil
	}
	if err != nil {
		return Absent[Pessoa](), fmt.Errorf("select pessoa %d: %w", id, err)
	}

	return Found(pessoa), nil
}

func (r *PessoaRepository) FindAll(ctx context.Context) iter.Seq2[Pessoa, error] {
	return func(yield func(Pessoa, error) bool) {
		sql := "select id, nome, cpf, email, data_nascimento from pessoa order by id"

		rows, err := r.conn.Query(ctx, sql)
		if err != nil {
			yield(Pessoa{}, fmt.Errorf("select pessoas: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			pessoa, err := scanPessoa(rows)
			if err != nil {
				yield(Pessoa{}, fmt.Errorf("scan pessoa: %w", err))
				return
			}
			if !yield(pessoa, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(Pessoa{}, fmt.Errorf("select pessoas: %w", err))
		}
	}
}

func (r *PessoaRepository) DeleteById(ctx context.Context, id int64) error {
	if _, err := r.conn.Exec(ctx, "delete from pessoa where id = $1", id); err != nil {
		return fmt.Errorf("delete pessoa %d: %w", id, err)
	}
	return nil
}

func scanPessoa(row pgx.Row) (Pessoa, error) {
	var pessoa Pessoa
	var id int64

	err := row.Scan(
		&id,
		&pessoa.Nome,
		&pessoa.Cpf,
		&pessoa.Email,
		&pessoa.DataNascimento)

	if err != nil {
		return Pessoa{}, err
	}

	pessoa.Id = &id
	return pessoa, nil
}
