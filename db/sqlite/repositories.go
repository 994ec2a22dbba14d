package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"

	"cadastro/db"
)

type scanner interface {
	Scan(dest ...any) error
}

type PessoaRepository struct {
	db *sql.DB
}

var _ db.Repository[db.Pessoa] = (*PessoaRepository)(nil)

func (r *PessoaRepository) Save(ctx context.Context, pessoa db.Pessoa) (db.Pessoa, error) {
	if pessoa.Id == nil {
		var id int64
		err := r.db.QueryRowContext(ctx,
			`insert into pessoa (nome, cpf, email, data_nascimento) values (?, ?, ?, ?) returning id`,
			pessoa.Nome, pessoa.Cpf, pessoa.Email, pessoa.DataNascimento).Scan(&id)
		if err != nil {
			return db.Pessoa{}, fmt.Errorf("insert pessoa: %w", err)
		}
		pessoa.Id = &id
		return pessoa, nil
	}

	res, err := r.db.ExecContext(ctx,
		`update pessoa set nome = ?, cpf = ?, email = ?, data_nascimento = ? where id = ?`,
		pessoa.Nome, pessoa.Cpf, pessoa.Email, pessoa.DataNascimento, *pessoa.Id)
	if err != nil {
		return db.Pessoa{}, fmt.Errorf("update pessoa %d: %w", *pessoa.Id, err)
	}
	if err := requireRow(res); err != nil {
		return db.Pessoa{}, fmt.Errorf("update pessoa %d: %w", *pessoa.Id, err)
	}
	return pessoa, nil
}

func (r *PessoaRepository) FindById(ctx context.Context, id int64) (db.Lookup[db.Pessoa], error) {
	row := r.db.QueryRowContext(ctx,
		`select id, nome, cpf, email, data_nascimento from pessoa where id = ?`, id)

	pessoa, err := scanPessoa(row)
	if errors.Is(err, sql.ErrNoRows) {
		return db.Absent[db.Pessoa](), nil
	}
	if err != nil {
		return db.Absent[db.Pessoa](), fmt.Errorf("select pessoa %d: %w", id, err)
	}
	return db.Found(pessoa), nil
}

func (r *PessoaRepository) FindAll(ctx context.Context) iter.Seq2[db.Pessoa, error] {
	return func(yield func(db.Pessoa, error) bool) {
		rows, err := r.db.QueryContext(ctx,
			`select id, nome, cpf, email, data_nascimento from pessoa order by id`)
		if err != nil {
			yield(db.Pessoa{}, fmt.Errorf("select pessoas: %w", err))
			return
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			pessoa, err := scanPessoa(rows)
			if err != nil {
				yield(db.Pessoa{}, fmt.Errorf("scan pessoa: %w", err))
				return
			}
			if !yield(pessoa, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(db.Pessoa{}, fmt.Errorf("select pessoas: %w", err))
		}
	}
}

func (r *PessoaRepository) DeleteById(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `delete from pessoa where id = ?`, id); err != nil {
		return fmt.Errorf("delete pessoa %d: %w", id, err)
	}
	return nil
}

type EnderecoRepository struct {
	db *sql.DB
}

var _ db.Repository[db.Endereco] = (*EnderecoRepository)(nil)

func (r *EnderecoRepository) Save(ctx context.Context, endereco db.Endereco) (db.Endereco, error) {
	var pessoaId sql.NullInt64
	if endereco.Pessoa != nil {
		pessoaId = sql.NullInt64{Int64: endereco.Pessoa.Id, Valid: true}
	}

	if endereco.Id == nil {
		var id int64
		err := r.db.QueryRowContext(ctx,
			`insert into endereco (logradouro, numero, complemento, bairro, cidade, uf, cep, pessoa_id)
			values (?, ?, ?, ?, ?, ?, ?, ?) returning id`,
			endereco.Logradouro, endereco.Numero, endereco.Complemento, endereco.Bairro,
			endereco.Cidade, endereco.Uf, endereco.Cep, pessoaId).Scan(&id)
		if err != nil {
			return db.Endereco{}, fmt.Errorf("insert endereco: %w", translateError(err))
		}
		endereco.Id = &id
		return endereco, nil
	}

	res, err := r.db.ExecContext(ctx,
		`update endereco set logradouro = ?, numero = ?, complemento = ?, bairro = ?,
		cidade = ?, uf = ?, cep = ?, pessoa_id = ? where id = ?`,
		endereco.Logradouro, endereco.Numero, endereco.Complemento, endereco.Bairro,
		endereco.Cidade, endereco.Uf, endereco.Cep, pessoaId, *endereco.Id)
	if err != nil {
		return db.Endereco{}, fmt.Errorf("update endereco %d: %w", *endereco.Id, translateError(err))
	}
	if err := requireRow(res); err != nil {
		return db.Endereco{}, fmt.Errorf("update endereco %d: %w", *endereco.Id, err)
	}
	return endereco, nil
}

func (r *EnderecoRepository) FindById(ctx context.Context, id int64) (db.Lookup[db.Endereco], error) {
	row := r.db.QueryRowContext(ctx,
		`select id, logradouro, numero, complemento, bairro, cidade, uf, cep, pessoa_id
		from endereco where id = ?`, id)

	endereco, err := scanEndereco(row)
	if errors.Is(err, sql.ErrNoRows) {
		return db.Absent[db.Endereco](), nil
	}
	if err != nil {
		return db.Absent[db.Endereco](), fmt.Errorf("select endereco %d: %w", id, err)
	}
	return db.Found(endereco), nil
}

func (r *EnderecoRepository) FindAll(ctx context.Context) iter.Seq2[db.Endereco, error] {
	return func(yield func(db.Endereco, error) bool) {
		rows, err := r.db.QueryContext(ctx,
			`select id, logradouro, numero, complemento, bairro, cidade, uf, cep, pessoa_id
			from endereco order by id`)
		if err != nil {
			yield(db.Endereco{}, fmt.Errorf("select enderecos: %w", err))
			return
		}
		defer func() { _ = rows.Close() }()

		for rows.Next() {
			endereco, err := scanEndereco(rows)
			if err != nil {
				yield(db.Endereco{}, fmt.Errorf("scan endereco: %w", err))
				return
			}
			if !yield(endereco, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(db.Endereco{}, fmt.Errorf("select enderecos: %w", err))
		}
	}
}

func (r *EnderecoRepository) DeleteById(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `delete from endereco where id = ?`, id); err != nil {
		return fmt.Errorf("delete endereco %d: %w", id, err)
	}
	return nil
}

func scanPessoa(row scanner) (db.Pessoa, error) {
	var pessoa db.Pessoa
	var id int64
	if err := row.Scan(&id, &pessoa.Nome, &pessoa.Cpf, &pessoa.Email, &pessoa.DataNascimento); err != nil {
		return db.Pessoa{}, err
	}
	pessoa.Id = &id
	return pessoa, nil
}

func scanEndereco(row scanner) (db.Endereco, error) {
	var endereco db.Endereco
	var id int64
	var pessoaId sql.NullInt64
	err := row.Scan(&id, &endereco.Logradouro, &endereco.Numero, &endereco.Complemento,
		&endereco.Bairro, &endereco.Cidade, &endereco.Uf, &endereco.Cep, &pessoaId)
	if err != nil {
		return db.Endereco{}, err
	}
	endereco.Id = &id
	if pessoaId.Valid {
		endereco.Pessoa = &db.PessoaRef{Id: pessoaId.Int64}
	}
	return endereco, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return db.ErrNotFound
	}
	return nil
}
