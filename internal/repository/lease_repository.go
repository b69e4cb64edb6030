package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/taichu-system/tenancy-management/internal/model"
	"gorm.io/gorm"
)

type LeaseRepository struct {
	db *gorm.DB
}

func NewLeaseRepository(db *gorm.DB) *LeaseRepository {
	return &LeaseRepository{db: db}
}

func (r *LeaseRepository) WithTx(tx *gorm.DB) *LeaseRepository {
	return &LeaseRepository{db: tx}
}

func (r *LeaseRepository) Create(ctx context.Context, lease *model.Lease) error {
	return r.db.WithContext(ctx).Omit("Tenant", "Unit").Create(lease).Error
}

func (r *LeaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Lease, error) {
	var lease model.Lease
	if err := r.db.WithContext(ctx).Preload("Unit").Where("id = ?", id).First(&lease).Error; err != nil {
		return nil, err
	}
	return &lease, nil
}

func (r *LeaseRepository) GetActiveByTenantID(ctx context.Context, tenantID uuid.UUID) (*model.Lease, error) {
	var lease model.Lease
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND active = ?", tenantID, true).
		First(&lease).Error
	if err != nil {
		return nil, err
	}
	return &lease, nil
}

// Deactivate 条件结束租约，只有仍有效时才生效，返回受影响行数
func (r *LeaseRepository) Deactivate(ctx context.Context, id uuid.UUID, endedAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Lease{}).
		Where("id = ? AND active = ?", id, true).
		Updates(map[string]interface{}{
			"active":     false,
			"ended_at":   endedAt,
			"updated_at": endedAt,
		})
	return result.RowsAffected, result.Error
}

func (r *LeaseRepository) List(ctx context.Context, filter model.LeaseFilter) ([]*model.Lease, error) {
	var leases []*model.Lease

	query := r.db.WithContext(ctx).Model(&model.Lease{}).Preload("Unit")
	if filter.TenantID != nil {
		query = query.Where("tenant_id = ?", *filter.TenantID)
	}
	if filter.UnitID != nil {
		query = query.Where("unit_id = ?", *filter.UnitID)
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}

	if err := query.Order("start_date DESC, created_at DESC").Find(&leases).Error; err != nil {
		return nil, err
	}
	return leases, nil
}
