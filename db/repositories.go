package db

import (
	"context"
	"errors"
	"iter"
)

var (
	// ErrNotFound is returned by Save when an update targets an id the store does not hold.
	ErrNotFound = errors.New("record not found")
	// ErrUnknownPessoa is returned when an Endereco references a Pessoa that does not exist.
	ErrUnknownPessoa = errors.New("referenced pessoa does not exist")
)

// Repository is the capability set every entity store offers.
//
// Save inserts when the record carries no id and the store assigns one;
// otherwise it replaces every column of the stored record. FindAll yields
// records lazily in store order and stops at the first error.
// DeleteById succeeds whether or not the id exists.
type Repository[T any] interface {
	Save(ctx context.Context, entity T) (T, error)
	FindById(ctx context.Context, id int64) (Lookup[T], error)
	FindAll(ctx context.Context) iter.Seq2[T, error]
	DeleteById(ctx context.Context, id int64) error
}

// Lookup is the result of a lookup by id: either found with a record, or absent.
type Lookup[T any] struct {
	value T
	found bool
}

func Found[T any](value T) Lookup[T] {
	return Lookup[T]{value: value, found: true}
}

func Absent[T any]() Lookup[T] {
	return Lookup[T]{}
}

func (l Lookup[T]) Get() (T, bool) {
	return l.value, l.found
}

func (l Lookup[T]) IsPresent() bool {
	return l.found
}

// Filter yields only the records of seq for which keep returns true.
// Errors are always passed through.
func Filter[T any](seq iter.Seq2[T, error], keep func(T) bool) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for entity, err := range seq {
			if err != nil {
				yield(entity, err)
				return
			}
			if !keep(entity) {
				continue
			}
			if !yield(entity, nil) {
				return
			}
		}
	}
}

// Collect materializes seq. The result is never nil on success.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	result := []T{}
	for entity, err := range seq {
		if err != nil {
			return nil, err
		}
		result = append(result, entity)
	}
	return result, nil
}

// Fail returns a sequence that yields err once.
func Fail[T any](err error) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		yield(zero, err)
	}
}
