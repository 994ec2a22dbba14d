package db

import "log/slog"

type Pessoa struct {
	Id             *int64 `json:"id"`
	Nome           string `json:"nome"`
	Cpf            string `json:"cpf"`
	Email          string `json:"email"`
	DataNascimento string `json:"dataNascimento"`
}

// PessoaRef is the owning side of an Endereco. Only the id is persisted.
type PessoaRef struct {
	Id int64 `json:"id"`
}

type Endereco struct {
	Id          *int64     `json:"id"`
	Logradouro  string     `json:"logradouro"`
	Numero      string     `json:"numero"`
	Complemento string     `json:"complemento"`
	Bairro      string     `json:"bairro"`
	Cidade      string     `json:"cidade"`
	Uf          string     `json:"uf"`
	Cep         string     `json:"cep"`
	Pessoa      *PessoaRef `json:"pessoa"`
}

// Identifiable is implemented by every persisted record.
type Identifiable interface {
	Identity() (int64, bool)
}

func (p Pessoa) Identity() (int64, bool) {
	return identity(p.Id)
}

func (e Endereco) Identity() (int64, bool) {
	return identity(e.Id)
}

// Unowned reports whether the address has no owning Pessoa.
func (e Endereco) Unowned() bool {
	return e.Pessoa == nil
}

// OwnedBy returns a predicate matching addresses owned by the given Pessoa.
func OwnedBy(pessoaId int64) func(Endereco) bool {
	return func(e Endereco) bool {
		return e.Pessoa != nil && e.Pessoa.Id == pessoaId
	}
}

func (p Pessoa) LogValue() slog.Value {
	return slog.GroupValue(
		idAttr(p.Id),
		slog.String("nome", p.Nome),
	)
}

func (e Endereco) LogValue() slog.Value {
	attrs := []slog.Attr{
		idAttr(e.Id),
		slog.String("logradouro", e.Logradouro),
		slog.String("cidade", e.Cidade),
	}
	if e.Pessoa != nil {
		attrs = append(attrs, slog.Int64("pessoa", e.Pessoa.Id))
	}
	return slog.GroupValue(attrs...)
}

func identity(id *int64) (int64, bool) {
	if id == nil {
		return 0, false
	}
	return *id, true
}

func idAttr(id *int64) slog.Attr {
	if id == nil {
		return slog.Any("id", nil)
	}
	return slog.Int64("id", *id)
}
