package database

import (
	"fmt"
	"time"

	"github.com/taichu-system/tenancy-management/internal/model"
	"gorm.io/gorm"
)

// SchemaMigration 已执行的迁移记录
type SchemaMigration struct {
	Version   string    `gorm:"primaryKey;size:255"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (SchemaMigration) TableName() string {
	return "schema_migrations"
}

type migration struct {
	version    string
	statements []string
}

// 结构体无法表达的约束，按版本号顺序执行且只执行一次
var migrations = []migration{
	{
		version: "0001_active_lease_indexes",
		statements: []string{
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_leases_active_unit ON leases (unit_id) WHERE active",
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_leases_active_tenant ON leases (tenant_id) WHERE active",
		},
	},
	{
		version: "0002_unit_building_status_index",
		statements: []string{
			"CREATE INDEX IF NOT EXISTS idx_units_building_status ON units (building, status)",
		},
	},
}

// Models 返回所有需要建表的模型
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Session{},
		&model.Tenant{},
		&model.Unit{},
		&model.Lease{},
		&model.AuditEvent{},
		&SchemaMigration{},
	}
}

// Migrate 建表并执行未执行过的迁移，返回本次执行的版本
func Migrate(db *gorm.DB) ([]string, error) {
	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}

	var executed []string
	if err := db.Model(&SchemaMigration{}).Pluck("version", &executed).Error; err != nil {
		return nil, fmt.Errorf("failed to get executed migrations: %w", err)
	}
	executedMap := make(map[string]bool, len(executed))
	for _, v := range executed {
		executedMap[v] = true
	}

	var applied []string
	for _, m := range migrations {
		if executedMap[m.version] {
			continue
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			for _, stmt := range m.statements {
				if err := tx.Exec(stmt).Error; err != nil {
					return err
				}
			}
			return tx.Create(&SchemaMigration{Version: m.version}).Error
		})
		if err != nil {
			return applied, fmt.Errorf("failed to execute migration %s: %w", m.version, err)
		}
		applied = append(applied, m.version)
	}

	return applied, nil
}
