package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Worker   WorkerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Queue    QueueConfig
	S3       S3Config
	Log      LogConfig
}

type ServerConfig struct {
	Host            string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"SERVER_PORT" envDefault:"5000"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"5m"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig локальное хранилище загруженных изображений
type StorageConfig struct {
	UploadDir string `env:"UPLOAD_DIR" envDefault:"uploads"`
	// Базовый адрес, по которому раздаётся /uploads
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:5000"`
	MaxUploadSize int64  `env:"MAX_UPLOAD_SIZE" envDefault:"67108864"`
	// Разрешение рендеринга PDF перед измерением
	PDFDPI float64 `env:"PDF_DPI" envDefault:"300"`
}

// WorkerConfig внешний процесс измерения
type WorkerConfig struct {
	Executable string        `env:"WORKER_EXECUTABLE" envDefault:"python"`
	Args       []string      `env:"WORKER_ARGS" envDefault:"../modeling/main.py" envSeparator:" "`
	Timeout    time.Duration `env:"WORKER_TIMEOUT" envDefault:"2m"`
	// 0 означает без ограничения
	MaxParallel int `env:"WORKER_MAX_PARALLEL" envDefault:"0"`
}

type DatabaseConfig struct {
	Host            string        `env:"DB_HOST" envDefault:"localhost"`
	Port            int           `env:"DB_PORT" envDefault:"5432"`
	User            string        `env:"DB_USER" envDefault:"measurer"`
	Password        string        `env:"DB_PASSWORD" envDefault:"secret"`
	Name            string        `env:"DB_NAME" envDefault:"measurer"`
	SSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConns        int           `env:"DB_MAX_CONNS" envDefault:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" envDefault:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `env:"REDIS_HOST" envDefault:"localhost"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type QueueConfig struct {
	Concurrency int `env:"QUEUE_CONCURRENCY" envDefault:"2"`
}

type S3Config struct {
	// Зеркалирование артефактов в S3 выключено по умолчанию
	Enabled   bool          `env:"S3_ENABLED" envDefault:"false"`
	Endpoint  string        `env:"S3_ENDPOINT" envDefault:"localhost:9000"`
	AccessKey string        `env:"S3_ACCESS_KEY" envDefault:"minioadmin"`
	SecretKey string        `env:"S3_SECRET_KEY" envDefault:"minioadmin"`
	Bucket    string        `env:"S3_BUCKET" envDefault:"artifacts"`
	UseSSL    bool          `env:"S3_USE_SSL" envDefault:"false"`
	URLExpiry time.Duration `env:"S3_URL_EXPIRY" envDefault:"1h"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
	// json или console
	Format string `env:"LOG_FORMAT" envDefault:"json"`
	// stdout, stderr или путь к файлу
	Output string `env:"LOG_OUTPUT" envDefault:"stdout"`
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Worker.Executable == "" {
		return fmt.Errorf("WORKER_EXECUTABLE must not be empty")
	}
	if c.Worker.Timeout <= 0 {
		return fmt.Errorf("WORKER_TIMEOUT must be positive, got %s", c.Worker.Timeout)
	}
	if c.Worker.MaxParallel < 0 {
		return fmt.Errorf("WORKER_MAX_PARALLEL must not be negative, got %d", c.Worker.MaxParallel)
	}
	if c.Storage.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR must not be empty")
	}
	return nil
}
