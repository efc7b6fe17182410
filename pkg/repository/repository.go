// Package repository provides a small generic gorm store.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// QueryOption mutates a gorm query before execution.
type QueryOption func(*gorm.DB) *gorm.DB

// Repository is a typed persistence facade over gorm.
type Repository[T any] interface {
	Create(ctx context.Context, record *T) error
	Find(ctx context.Context, filter *T, opts ...QueryOption) ([]*T, error)
	FindOne(ctx context.Context, filter *T, opts ...QueryOption) (*T, error)
	Count(ctx context.Context, filter *T) (int64, error)
}

type store[T any] struct {
	db *gorm.DB
}

// ProvideStore builds a Repository backed by the given database handle.
func ProvideStore[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

// WithLimit caps the number of rows returned.
func WithLimit(limit int) QueryOption {
	return func(q *gorm.DB) *gorm.DB {
		if limit > 0 {
			q = q.Limit(limit)
		}
		return q
	}
}

// WithOrder appends an ORDER BY clause.
func WithOrder(order string) QueryOption {
	return func(q *gorm.DB) *gorm.DB {
		if order != "" {
			q = q.Order(order)
		}
		return q
	}
}

func (s *store[T]) Create(ctx context.Context, record *T) error {
	return s.db.WithContext(ctx).Create(record).Error
}

func (s *store[T]) Find(ctx context.Context, filter *T, opts ...QueryOption) ([]*T, error) {
	q := s.db.WithContext(ctx)
	if filter != nil {
		q = q.Where(filter)
	}
	for _, opt := range opts {
		q = opt(q)
	}
	var records []*T
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *store[T]) FindOne(ctx context.Context, filter *T, opts ...QueryOption) (*T, error) {
	q := s.db.WithContext(ctx)
	if filter != nil {
		q = q.Where(filter)
	}
	for _, opt := range opts {
		q = opt(q)
	}
	var record T
	if err := q.First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (s *store[T]) Count(ctx context.Context, filter *T) (int64, error) {
	var model T
	q := s.db.WithContext(ctx).Model(&model)
	if filter != nil {
		q = q.Where(filter)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
