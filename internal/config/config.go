package config

import (
	"fmt"
	"os"
	"strconv"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Config 员工导入服务配置
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig

	// 员工导入服务特定配置
	Importer struct {
		// 上传文件所在目录（上传事件中的文件名相对于该目录解析）
		UploadDir string

		// Redis Streams 配置（用于接收上传事件）
		UploadStream  string // 上传事件流名称，如 "roster:uploads"
		ConsumerGroup string // 消费者组名称，如 "employee-import-group"
		ConsumerName  string // 消费者名称，如 "employee-import-1"
		BatchSize     int    // 批量处理大小，默认 10

		// 欢迎邮件队列名称（下游邮件服务消费）
		NotifyQueue string

		// 新建账号的默认密码（欢迎邮件中下发，首次登录后必须修改）
		// ⚠️ 不允许硬编码在代码中，只能通过环境变量注入
		DefaultPassword string
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置
// 数据库和 Redis 连接配置缺失属于启动级错误，直接返回 error
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "hrimport")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	cfg.Importer.UploadDir = getEnv("IMPORT_UPLOAD_DIR", "/var/lib/employee-import/uploads")
	cfg.Importer.UploadStream = getEnv("IMPORT_UPLOAD_STREAM", "roster:uploads")
	cfg.Importer.ConsumerGroup = getEnv("IMPORT_CONSUMER_GROUP", "employee-import-group")
	cfg.Importer.ConsumerName = getEnv("IMPORT_CONSUMER_NAME", "employee-import-1")
	cfg.Importer.BatchSize = parseInt(getEnv("IMPORT_BATCH_SIZE", "10"), 10)
	cfg.Importer.NotifyQueue = getEnv("IMPORT_NOTIFY_QUEUE", "certs-queue")
	cfg.Importer.DefaultPassword = getEnv("IMPORT_DEFAULT_PASSWORD", "")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	// 必填项校验
	if cfg.Database.Host == "" || cfg.Database.Database == "" {
		return nil, fmt.Errorf("database connection settings are required")
	}
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	if cfg.Importer.DefaultPassword == "" {
		return nil, fmt.Errorf("IMPORT_DEFAULT_PASSWORD is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(value string, defaultValue int) int {
	if v, err := strconv.Atoi(value); err == nil && v > 0 {
		return v
	}
	return defaultValue
}
