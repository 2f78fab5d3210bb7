// Package crud implements the request orchestration shared by every entity:
// paged listing, filtered lookup, point lookup, create, full replace and delete.
// Entity specific rules plug in through Config.
package crud

import (
	"context"
	"errors"
	"fmt"

	"github.com/tinoosan/awqaf/internal/errs"
	"github.com/tinoosan/awqaf/internal/ledger"
	"github.com/tinoosan/awqaf/internal/paging"
	"github.com/tinoosan/awqaf/internal/storage"
)

// Entity is a record with an identity and self-contained validation.
type Entity[K comparable] interface {
	ledger.Keyed[K]
	Validate() error
}

// Repo defines read operations needed by the service.
type Repo[K comparable, T Entity[K], F any] interface {
	storage.Reader[K, T, F]
}

// Writer defines write operations needed by the service.
type Writer[K comparable, T Entity[K]] interface {
	Begin() *storage.Tx[K, T]
}

// Config carries the per-entity plug-ins.
type Config[K comparable, T Entity[K]] struct {
	// MaxItemsPerPage bounds page sizes; zero means unbounded.
	MaxItemsPerPage int
	// CheckRefs runs before create and update and reports missing parents
	// with errs.ErrUnprocessable.
	CheckRefs func(ctx context.Context, item T) error
	// CheckRemove runs before delete once the record is known to exist and
	// reports dependents with errs.ErrConflict.
	CheckRemove func(ctx context.Context, key K) error
}

// Service exposes the CRUD operations of one entity.
type Service[K comparable, T Entity[K], F any] interface {
	List(ctx context.Context, req paging.Request) (paging.Page[T], error)
	Lookup(ctx context.Context, f F) (paging.Page[T], error)
	Get(ctx context.Context, key K) (T, error)
	Create(ctx context.Context, item T) (T, error)
	Update(ctx context.Context, item T) (T, error)
	Delete(ctx context.Context, key K) error
}

type service[K comparable, T Entity[K], F any] struct {
	entity string
	repo   Repo[K, T, F]
	writer Writer[K, T]
	cfg    Config[K, T]
}

// New builds the service for entity (used in error messages and metrics).
func New[K comparable, T Entity[K], F any](entity string, repo Repo[K, T, F], writer Writer[K, T], cfg Config[K, T]) Service[K, T, F] {
	return &service[K, T, F]{entity: entity, repo: repo, writer: writer, cfg: cfg}
}

// List validates paging before touching storage.
func (s *service[K, T, F]) List(ctx context.Context, req paging.Request) (paging.Page[T], error) {
	if err := req.Validate(s.cfg.MaxItemsPerPage); err != nil {
		return paging.Page[T]{}, s.observe("list", err)
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return paging.Page[T]{}, s.observe("list", err)
	}
	items, err := s.repo.List(ctx, req.Offset(), req.ItemsPerPage)
	if err != nil {
		return paging.Page[T]{}, s.observe("list", err)
	}
	s.observe("list", nil)
	return paging.New(items, total, req), nil
}

func (s *service[K, T, F]) Lookup(ctx context.Context, f F) (paging.Page[T], error) {
	items, err := s.repo.Lookup(ctx, f)
	if err != nil {
		return paging.Page[T]{}, s.observe("lookup", err)
	}
	s.observe("lookup", nil)
	return paging.Single(items), nil
}

func (s *service[K, T, F]) Get(ctx context.Context, key K) (T, error) {
	item, err := s.repo.Get(ctx, key)
	return item, s.observe("get", s.notFound(key, err))
}

// Create stages an insert. Duplicate identities surface from storage as
// errs.ErrConflict.
func (s *service[K, T, F]) Create(ctx context.Context, item T) (T, error) {
	var zero T
	if err := s.prepare(ctx, item); err != nil {
		return zero, s.observe("create", err)
	}
	tx := s.writer.Begin()
	tx.Add(item)
	if _, err := tx.Commit(ctx); err != nil {
		return zero, s.observe("create", err)
	}
	s.observe("create", nil)
	return item, nil
}

// Update replaces the stored record with the same identity. An absent identity
// is reported as errs.ErrNotFound and nothing is written.
func (s *service[K, T, F]) Update(ctx context.Context, item T) (T, error) {
	var zero T
	if err := s.prepare(ctx, item); err != nil {
		return zero, s.observe("update", err)
	}
	tx := s.writer.Begin()
	tx.Update(item)
	if _, err := tx.Commit(ctx); err != nil {
		return zero, s.observe("update", s.notFound(item.Key(), err))
	}
	s.observe("update", nil)
	return item, nil
}

func (s *service[K, T, F]) Delete(ctx context.Context, key K) error {
	if _, err := s.repo.Get(ctx, key); err != nil {
		return s.observe("delete", s.notFound(key, err))
	}
	if s.cfg.CheckRemove != nil {
		if err := s.cfg.CheckRemove(ctx, key); err != nil {
			return s.observe("delete", err)
		}
	}
	tx := s.writer.Begin()
	tx.Remove(key)
	if _, err := tx.Commit(ctx); err != nil {
		return s.observe("delete", s.notFound(key, err))
	}
	return s.observe("delete", nil)
}

func (s *service[K, T, F]) prepare(ctx context.Context, item T) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if s.cfg.CheckRefs != nil {
		return s.cfg.CheckRefs(ctx, item)
	}
	return nil
}

// notFound rewrites a bare not-found into a message naming the entity.
func (s *service[K, T, F]) notFound(key K, err error) error {
	if errors.Is(err, errs.ErrNotFound) {
		return fmt.Errorf("%s %v: %w", s.entity, key, errs.ErrNotFound)
	}
	return err
}
