package repository

import (
	"context"
	"time"

	"github.com/taichu-system/tenancy-management/internal/model"
	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, auditEvent *model.AuditEvent) error {
	return r.db.WithContext(ctx).Create(auditEvent).Error
}

var auditSortColumns = map[string]bool{
	"timestamp": true,
	"action":    true,
	"resource":  true,
	"result":    true,
}

func (r *AuditRepository) List(ctx context.Context, params AuditListParams) ([]*model.AuditEvent, int64, error) {
	var events []*model.AuditEvent
	var total int64

	query := r.db.WithContext(ctx).Model(&model.AuditEvent{})

	if params.ActorID != "" {
		query = query.Where("actor_id = ?", params.ActorID)
	}

	if params.Action != "" {
		query = query.Where("action = ?", params.Action)
	}

	if params.Resource != "" {
		query = query.Where("resource = ?", params.Resource)
	}

	if params.ResourceID != "" {
		query = query.Where("resource_id = ?", params.ResourceID)
	}

	if !params.StartTime.IsZero() {
		query = query.Where("timestamp >= ?", params.StartTime)
	}

	if !params.EndTime.IsZero() {
		query = query.Where("timestamp <= ?", params.EndTime)
	}

	if params.Result != "" {
		query = query.Where("result = ?", params.Result)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params.Limit > 0 {
		query = query.Limit(params.Limit)
	}

	if params.Offset > 0 {
		query = query.Offset(params.Offset)
	}

	sortBy := "timestamp"
	if auditSortColumns[params.SortBy] {
		sortBy = params.SortBy
	}
	if params.SortOrder == "asc" {
		query = query.Order(sortBy + " ASC")
	} else {
		query = query.Order(sortBy + " DESC")
	}

	if err := query.Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}

// DeleteOlderThan 删除 cutoff 之前的审计记录
func (r *AuditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&model.AuditEvent{})
	return result.RowsAffected, result.Error
}

type AuditListParams struct {
	ActorID    string
	Action     string
	Resource   string
	ResourceID string
	StartTime  time.Time
	EndTime    time.Time
	Result     string
	Limit      int
	Offset     int
	SortBy     string
	SortOrder  string
}
