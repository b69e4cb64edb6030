package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/taichu-system/tenancy-management/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open 根据配置打开数据库连接并设置连接池
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(sqliteDSN(cfg.Path))
	case "postgres", "":
		dialector = postgres.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormConfig(cfg.LogSQL))
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if cfg.Driver == "sqlite" {
		// sqlite 只允许单个写连接，内存库的每个连接还是独立的库
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
		return db, nil
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

func gormConfig(logSQL bool) *gorm.Config {
	level := gormlogger.Silent
	if logSQL {
		level = gormlogger.Info
	}
	return &gorm.Config{
		TranslateError: true,
		// 历史租约需要在房源删除后保留，关联由服务层维护
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func sqliteDSN(path string) string {
	if path == "" || path == ":memory:" {
		return ":memory:"
	}
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_busy_timeout=5000"
}

// CreateDatabase 在 postgres 上创建目标数据库（如不存在）
func CreateDatabase(cfg config.DatabaseConfig) (bool, error) {
	if cfg.Driver != "postgres" {
		return false, nil
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s port=%d sslmode=%s TimeZone=%s",
		cfg.Host, cfg.Username, cfg.Password, cfg.Port, cfg.SSLMode, cfg.Timezone)

	db, err := gorm.Open(postgres.Open(dsn), gormConfig(false))
	if err != nil {
		return false, fmt.Errorf("failed to connect to postgres for database creation: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return false, err
	}
	defer sqlDB.Close()

	var count int64
	if err := db.Raw("SELECT COUNT(*) FROM pg_database WHERE datname = ?", cfg.DBName).Scan(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check database existence: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	if _, err := sqlDB.Exec(fmt.Sprintf("CREATE DATABASE %q WITH ENCODING 'UTF8'", cfg.DBName)); err != nil {
		return false, fmt.Errorf("failed to create database: %w", err)
	}
	return true, nil
}

// Ping 检查数据库连通性
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
