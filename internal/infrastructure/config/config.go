package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	Storage     StorageConfig   `mapstructure:"storage"`
	Sheets      SheetsConfig    `mapstructure:"sheets"`
	Redis       RedisConfig     `mapstructure:"redis"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Export      ExportConfig    `mapstructure:"export"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// 市場清單儲存方式
const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageFile     = "file"
)

// StorageConfig 市場清單儲存設定
type StorageConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	FilePath        string        `mapstructure:"file_path"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// 成本表狀態儲存方式
const (
	SheetsMemory = "memory"
	SheetsRedis  = "redis"
)

// SheetsConfig 成本表狀態設定
type SheetsConfig struct {
	Backend         string        `mapstructure:"backend"`
	TTL             time.Duration `mapstructure:"ttl"`
	MaxSize         int           `mapstructure:"max_size"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RedisConfig Redis 連線設定
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// ExportConfig 試算表匯出設定
type ExportConfig struct {
	CurrencySymbol string `mapstructure:"currency_symbol"`
	SheetName      string `mapstructure:"sheet_name"`
	FileName       string `mapstructure:"file_name"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 不存在時只使用環境變數與預設值
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("storage.driver", "STORAGE_DRIVER")
	_ = v.BindEnv("storage.dsn", "DATABASE_URL")
	_ = v.BindEnv("storage.file_path", "MARKET_FILE")
	_ = v.BindEnv("sheets.backend", "SHEETS_BACKEND")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	_ = v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	_ = v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	_ = v.BindEnv("dedup_window", "DEDUP_WINDOW")
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "food-costing")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.max_body_bytes", 1<<20) // 1MB

	v.SetDefault("storage.driver", StorageSQLite)
	v.SetDefault("storage.dsn", "food-costing.db")
	v.SetDefault("storage.file_path", "market-list.json")
	v.SetDefault("storage.max_idle_conns", 2)
	v.SetDefault("storage.max_open_conns", 10)
	v.SetDefault("storage.conn_max_lifetime", "1h")

	v.SetDefault("sheets.backend", SheetsMemory)
	v.SetDefault("sheets.ttl", "72h")
	v.SetDefault("sheets.max_size", 1000)
	v.SetDefault("sheets.cleanup_interval", "10m")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 300)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("export.currency_symbol", "₱")
	v.SetDefault("export.sheet_name", "Food Costing")
	v.SetDefault("export.file_name", "FoodCosting.xlsx")

	v.SetDefault("dedup_window", "300ms")
	v.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port == 0 {
		return fmt.Errorf("server port is required")
	}

	switch config.Storage.Driver {
	case StorageSQLite, StoragePostgres:
		if strings.TrimSpace(config.Storage.DSN) == "" {
			return fmt.Errorf("storage dsn is required for driver %q", config.Storage.Driver)
		}
	case StorageFile:
		if strings.TrimSpace(config.Storage.FilePath) == "" {
			return fmt.Errorf("storage file path is required")
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", config.Storage.Driver)
	}

	switch config.Sheets.Backend {
	case SheetsMemory:
		if config.Sheets.MaxSize <= 0 {
			return fmt.Errorf("invalid sheets max size")
		}
		if config.Sheets.CleanupInterval <= 0 {
			return fmt.Errorf("invalid sheets cleanup interval")
		}
	case SheetsRedis:
		if config.Redis.Addr == "" {
			return fmt.Errorf("redis addr is required for redis sheets backend")
		}
	default:
		return fmt.Errorf("unsupported sheets backend %q", config.Sheets.Backend)
	}
	if config.Sheets.TTL <= 0 {
		return fmt.Errorf("invalid sheets ttl")
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit settings")
	}

	return nil
}
