package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/taichu-system/tenancy-management/internal/model"
	"gorm.io/gorm"
)

type UnitRepository struct {
	db *gorm.DB
}

func NewUnitRepository(db *gorm.DB) *UnitRepository {
	return &UnitRepository{db: db}
}

func (r *UnitRepository) WithTx(tx *gorm.DB) *UnitRepository {
	return &UnitRepository{db: tx}
}

func (r *UnitRepository) Create(ctx context.Context, unit *model.Unit) error {
	return r.db.WithContext(ctx).Omit("Leases").Create(unit).Error
}

func (r *UnitRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Unit, error) {
	var unit model.Unit
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&unit).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

// GetWithOccupant 查询房源并预加载有效租约及住户
func (r *UnitRepository) GetWithOccupant(ctx context.Context, id uuid.UUID) (*model.Unit, error) {
	var unit model.Unit
	if err := r.withOccupant(r.db.WithContext(ctx)).Where("units.id = ?", id).First(&unit).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *UnitRepository) List(ctx context.Context, filter model.UnitFilter) ([]*model.Unit, error) {
	var units []*model.Unit

	query := r.withOccupant(r.db.WithContext(ctx).Model(&model.Unit{}))
	if filter.Building != "" {
		query = query.Where("building = ?", filter.Building)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Order("building ASC, unit_number ASC").Find(&units).Error; err != nil {
		return nil, err
	}
	return units, nil
}

func (r *UnitRepository) withOccupant(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Leases", "active = ?", true).
		Preload("Leases.Tenant").
		Preload("Leases.Tenant.User")
}

func (r *UnitRepository) ListByStatus(ctx context.Context, status model.UnitStatus) ([]*model.Unit, error) {
	var units []*model.Unit
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("building ASC, unit_number ASC").
		Find(&units).Error
	return units, err
}

// KeyExists 检查 (building, unit_number) 是否已被其他房源占用
func (r *UnitRepository) KeyExists(ctx context.Context, building, unitNumber string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.Unit{}).
		Where("building = ? AND unit_number = ?", building, unitNumber)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateFields 更新非状态字段并递增版本号
func (r *UnitRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	fields["version"] = gorm.Expr("version + 1")
	fields["updated_at"] = time.Now().UTC()
	return r.db.WithContext(ctx).Model(&model.Unit{}).Where("id = ?", id).Updates(fields).Error
}

// TransitionStatus 条件更新状态，只有当前状态为 from 时才生效，返回受影响行数
func (r *UnitRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.UnitStatus) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Unit{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

// DeleteIfStatus 仅当状态匹配时删除，返回受影响行数
func (r *UnitRepository) DeleteIfStatus(ctx context.Context, id uuid.UUID, status model.UnitStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND status = ?", id, status).
		Delete(&model.Unit{})
	return result.RowsAffected, result.Error
}

// OccupancyByBuilding 一条分组查询得到各楼栋的总数、已入住数与租金合计
func (r *UnitRepository) OccupancyByBuilding(ctx context.Context) ([]model.BuildingOccupancy, error) {
	var rows []model.BuildingOccupancy
	err := r.db.WithContext(ctx).Model(&model.Unit{}).
		Select(
			"building, COUNT(*) AS total, "+
				"SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS occupied, "+
				"SUM(CASE WHEN status = ? THEN rent_amount ELSE 0 END) AS rent_roll",
			model.UnitStatusOccupied, model.UnitStatusOccupied,
		).
		Group("building").
		Order("building ASC").
		Scan(&rows).Error
	return rows, err
}
