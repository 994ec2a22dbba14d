package db

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const foreignKeyViolation = "23503"

type EnderecoRepository struct {
	conn PgxIface
}

var _ Repository[Endereco] = (*EnderecoRepository)(nil)

func NewEnderecoRepository(conn PgxIface) *EnderecoRepository {
	return &EnderecoRepository{conn: conn}
}

func (r *EnderecoRepository) Save(ctx context.Context, endereco Endereco) (Endereco, error) {
	pessoaId := endereco.pessoaId()

	if endereco.Id == nil {
		sql := `insert into endereco (logradouro, numero, complemento, bairro, cidade, uf, cep, pessoa_id)
			values ($1, $2, $3, $4, $5, $6, $7, $8) returning id`

		var id int64
		err := r.conn.QueryRow(ctx, sql,
			endereco.Logradouro, endereco.Numero, endereco.Complemento, endereco.Bairro,
			endereco.Cidade, endereco.Uf, endereco.Cep, pessoaId).Scan(&id)
		if err != nil {
			return Endereco{}, fmt.Errorf("insert endereco: %w", translatePgError(err))
		}

		endereco.Id = &id
		return endereco, nil
	}

	sql := `update endereco set logradouro = $2, numero = $3, complemento = $4, bairro = $5,
		cidade = $6, uf = $7, cep = $8, pessoa_id = $9 where id = $1`

	tag, err := r.conn.Exec(ctx, sql, *endereco.Id,
		endereco.Logradouro, endereco.Numero, endereco.Complemento, endereco.Bairro,
		endereco.Cidade, endereco.Uf, endereco.Cep, pessoaId)
	if err != nil {
		return Endereco{}, fmt.Errorf("update endereco %d: %w", *endereco.Id, translatePgError(err))
	}
	if tag.RowsAffected() == 0 {
		return Endereco{}, fmt.Errorf("update endereco %d: %w", *endereco.Id, ErrNotFound)
	}

	return endereco, nil
}

func (r *EnderecoRepository) FindById(ctx context.Context, id int64) (Lookup[Endereco], error) {
	sql := `select id, logradouro, numero, complemento, bairro, cidade, uf, cep, pessoa_id
		from endereco where id = $1`

	endereco, err := scanEndereco(r.conn.QueryRow(ctx, sql, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Absent[Endereco](), nil
	}
	if err != nil {
		return Absent[Endereco](), fmt.Errorf("select endereco %d: %w", id, err)
	}

	return Found(endereco), nil
}

func (r *EnderecoRepository) FindAll(ctx context.Context) iter.Seq2[Endereco, error] {
	return func(yield func(Endereco, error) bool) {
		sql := `select id, logradouro, numero, complemento, bairro, cidade, uf, cep, pessoa_id
			from endereco order by id`

		rows, err := r.conn.Query(ctx, sql)
		if err != nil {
			yield(Endereco{}, fmt.Errorf("select enderecos: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			endereco, err := scanEndereco(rows)
			if err != nil {
				yield(Endereco{}, fmt.Errorf("scan endereco: %w", err))
				return
			}
			if !yield(endereco, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(Endereco{}, fmt.Errorf("select enderecos: %w", err))
		}
	}
}

func (r *EnderecoRepository) DeleteById(ctx context.Context, id int64) error {
	if _, err := r.conn.Exec(ctx, "delete from endereco where id = $1", id); err != nil {
		return fmt.Errorf("delete endereco %d: %w", id, err)
	}
	return nil
}

func (e Endereco) pessoaId() *int64 {
	if e.Pessoa == nil {
		return nil
	}
	id := e.Pessoa.Id
	return &id
}

func scanEndereco(row pgx.Row) (Endereco, error) {
	var endereco Endereco
	var id int64
	var pessoaId *int64

	err := row.Scan(
		&id,
		&endereco.Logradouro,
		&endereco.Numero,
		&endereco.Complemento,
		&endereco.Bairro,
		&endereco.Cidade,
		&endereco.Uf,
		&endereco.Cep,
		&pessoaId)

	if err != nil {
		return Endereco{}, err
	}

	endereco.Id = &id
	if pessoaId != nil {
		endereco.Pessoa = &PessoaRef{Id: *pessoaId}
	}
	return endereco, nil
}

func translatePgError(err error) error {
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) && pgerr.Code == foreignKeyViolation {
		return fmt.Errorf("%w: %s", ErrUnknownPessoa, pgerr.ConstraintName)
	}
	return err
}
