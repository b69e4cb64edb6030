package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/taichu-system/tenancy-management/internal/model"
	"gorm.io/gorm"
)

type TenantRepository struct {
	db *gorm.DB
}

func NewTenantRepository(db *gorm.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

func (r *TenantRepository) WithTx(tx *gorm.DB) *TenantRepository {
	return &TenantRepository{db: tx}
}

func (r *TenantRepository) Create(ctx context.Context, tenant *model.Tenant) error {
	return r.db.WithContext(ctx).Omit("User", "Leases").Create(tenant).Error
}

// GetByID 查询租户并预加载用户与全部租约（含房源）
func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	var tenant model.Tenant
	err := r.withDetails(r.db.WithContext(ctx)).Where("tenants.id = ?", id).First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *TenantRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Tenant, error) {
	var tenant model.Tenant
	err := r.withDetails(r.db.WithContext(ctx)).Where("tenants.user_id = ?", userID).First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *TenantRepository) withDetails(query *gorm.DB) *gorm.DB {
	return query.
		Preload("User").
		Preload("Leases", func(db *gorm.DB) *gorm.DB {
			return db.Order("leases.start_date DESC, leases.created_at DESC")
		}).
		Preload("Leases.Unit")
}

// likeEscaper 搜索词按字面量匹配
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// List 按姓名或邮箱模糊搜索，只预加载有效租约
func (r *TenantRepository) List(ctx context.Context, filter model.TenantFilter) ([]*model.Tenant, error) {
	var tenants []*model.Tenant

	query := r.db.WithContext(ctx).Model(&model.Tenant{}).
		Joins("JOIN users ON users.id = tenants.user_id").
		Preload("User").
		Preload("Leases", "active = ?", true).
		Preload("Leases.Unit")

	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
		query = query.Where(`LOWER(users.name) LIKE ? ESCAPE '\' OR LOWER(users.email) LIKE ? ESCAPE '\'`, pattern, pattern)
	}

	if err := query.Order("users.name ASC").Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}

func (r *TenantRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Tenant{}).Where("id = ?", id).Updates(fields).Error
}

// Delete 软删除（墓碑），记录保留供历史租约引用
func (r *TenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Tenant{}).Error
}
