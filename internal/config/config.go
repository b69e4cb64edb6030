package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "TENANCY"

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Session     SessionConfig     `mapstructure:"session"`
	Redis       RedisConfig       `mapstructure:"redis"`
	NATS        NATSConfig        `mapstructure:"nats"`
	Encryption  EncryptionConfig  `mapstructure:"encryption"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Audit       AuditConfig       `mapstructure:"audit"`
	Transaction TransactionConfig `mapstructure:"transaction"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	Timezone        string        `mapstructure:"timezone"`
	Path            string        `mapstructure:"path"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	AutoCreateDB    bool          `mapstructure:"auto_create_db"`
	LogSQL          bool          `mapstructure:"log_sql"`
}

// DSN postgres 连接串
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		d.Host, d.Port, d.Username, d.Password, d.DBName, d.SSLMode, d.Timezone)
}

type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	Issuer     string        `mapstructure:"issuer"`
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	BcryptCost int           `mapstructure:"bcrypt_cost"`
}

type SessionConfig struct {
	Store         string        `mapstructure:"store"`
	SweepEnabled  bool          `mapstructure:"sweep_enabled"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

type NATSConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	URL           string        `mapstructure:"url"`
	SubjectPrefix string        `mapstructure:"subject_prefix"`
	ConnectWait   time.Duration `mapstructure:"connect_wait"`
}

type EncryptionConfig struct {
	Key string `mapstructure:"key"`
}

// AuditConfig 保留期为 0 时永久保留审计记录
type AuditConfig struct {
	Retention     time.Duration `mapstructure:"retention"`
	PruneInterval time.Duration `mapstructure:"prune_interval"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type TransactionConfig struct {
	MaxRetries int           `mapstructure:"max_retries"`
	Backoff    time.Duration `mapstructure:"backoff"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// Load 读取 configs/config.yaml（可选）、.env 与 TENANCY_* 环境变量
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom 指定配置文件路径，为空时在 ./configs 与当前目录查找
func LoadFrom(path string) (*Config, error) {
	// .env 可选
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "tenancy")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.path", "tenancy.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.auto_create_db", false)
	v.SetDefault("database.log_sql", false)

	// 空值也要注册默认值，否则 TENANCY_* 环境变量无法覆盖
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "tenancy-management")
	v.SetDefault("auth.session_ttl", 24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("session.store", "database")
	v.SetDefault("session.sweep_enabled", true)
	v.SetDefault("session.sweep_interval", 10*time.Minute)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "tenancy")

	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.subject_prefix", "tenancy")
	v.SetDefault("nats.connect_wait", 2*time.Second)

	v.SetDefault("encryption.key", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("audit.retention", 90*24*time.Hour)
	v.SetDefault("audit.prune_interval", 24*time.Hour)

	v.SetDefault("transaction.max_retries", 3)
	v.SetDefault("transaction.backoff", 20*time.Millisecond)
	v.SetDefault("transaction.timeout", 10*time.Second)
}

// Development gin debug 模式视为开发环境
func (c *Config) Development() bool {
	return c.Server.Mode == "debug"
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q (want postgres or sqlite)", c.Database.Driver)
	}

	switch c.Session.Store {
	case "database", "redis":
	default:
		return fmt.Errorf("unsupported session store %q (want database or redis)", c.Session.Store)
	}

	if c.Auth.JWTSecret == "" {
		if !c.Development() {
			return fmt.Errorf("auth.jwt_secret is required outside debug mode")
		}
		c.Auth.JWTSecret = "development-only-secret"
	}

	if c.Encryption.Key == "" {
		if !c.Development() {
			return fmt.Errorf("encryption.key is required outside debug mode")
		}
		c.Encryption.Key = "development-only-encryption-key"
	}

	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth.session_ttl must be positive")
	}

	if c.Audit.Retention < 0 {
		return fmt.Errorf("audit.retention must not be negative")
	}

	if c.Transaction.MaxRetries < 0 {
		return fmt.Errorf("transaction.max_retries must not be negative")
	}

	return nil
}
