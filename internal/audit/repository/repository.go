// Package repository persists audit log rows.
package repository

import (
	"context"
	"errors"

	auditdomain "github.com/seology-ai/seology/internal/audit/domain"
	"gorm.io/gorm"
)

const defaultListLimit = 50

type gormRepository struct{}

// Provide constructs the audit repository.
func Provide() auditdomain.Repository {
	return gormRepository{}
}

func (gormRepository) Insert(ctx context.Context, db *gorm.DB, entry *auditdomain.AuditLog) error {
	if db == nil || entry == nil {
		return errors.New("audit_insert_unavailable")
	}
	return db.WithContext(ctx).Create(entry).Error
}

func (gormRepository) List(ctx context.Context, db *gorm.DB, filter auditdomain.ListFilter) ([]*auditdomain.AuditLog, error) {
	if db == nil {
		return nil, errors.New("audit_list_unavailable")
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}

	q := db.WithContext(ctx).Model(&auditdomain.AuditLog{})
	if filter.AccountID != 0 {
		q = q.Where("account_id = ?", filter.AccountID)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.ActorType != "" {
		q = q.Where("actor_type = ?", filter.ActorType)
	}
	if filter.StartAt != nil {
		q = q.Where("created_at >= ?", *filter.StartAt)
	}
	if filter.EndAt != nil {
		q = q.Where("created_at < ?", *filter.EndAt)
	}

	var entries []*auditdomain.AuditLog
	if err := q.Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
