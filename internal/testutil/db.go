package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/taichu-system/tenancy-management/internal/config"
	"github.com/taichu-system/tenancy-management/internal/database"
	"gorm.io/gorm"
)

// NewTestDB 打开已迁移的内存 sqlite 数据库，测试结束时关闭
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)

	_, err = database.Migrate(db)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
