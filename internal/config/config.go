package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Storage  StorageConfig  `yaml:"storage"`
	Admin    AdminConfig    `yaml:"admin"`
	Imports  ImportsConfig  `yaml:"imports"`
	Cache    CacheConfig    `yaml:"cache"`
	Workers  WorkersConfig  `yaml:"workers"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type AppConfig struct {
	Name     string `yaml:"name"`
	Version  string `yaml:"version"`
	Env      string `yaml:"env"`
	Timezone string `yaml:"timezone"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	Charset            string        `yaml:"charset"`
	Loc                string        `yaml:"loc"`
	MaxConnections     int           `yaml:"max_connections"`
	MaxIdleConnections int           `yaml:"max_idle_connections"`
	ConnectionLifetime time.Duration `yaml:"connection_lifetime"`
	AutoMigrate        bool          `yaml:"auto_migrate"`
}

type RedisConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Password    string `yaml:"password"`
	DB          int    `yaml:"db"`
	PoolSize    int    `yaml:"pool_size"`
	ImportQueue string `yaml:"import_queue"`
	DLQSuffix   string `yaml:"dlq_suffix"`
}

type StorageConfig struct {
	// Driver selects the object store: "s3", "minio" or "memory".
	Driver string   `yaml:"driver"`
	S3     S3Config `yaml:"s3"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type AdminConfig struct {
	SessionSecret string        `yaml:"session_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	Users         []AdminUser   `yaml:"users"`
}

type AdminUser struct {
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	PasswordHash string `yaml:"password_hash"`
	Role         string `yaml:"role"`
}

type ImportsConfig struct {
	MaxUploadBytes       int64 `yaml:"max_upload_bytes"`
	MaxSourceImageBytes  int64 `yaml:"max_source_image_bytes"`
	MaxProcessedImgBytes int64 `yaml:"max_processed_image_bytes"`
	ErrorPreview         int   `yaml:"error_preview"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
	Prefix  string        `yaml:"prefix"`
}

type WorkersConfig struct {
	Import ImportWorkerConfig `yaml:"import"`
}

type ImportWorkerConfig struct {
	Count int `yaml:"count"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML, applies environment overrides and fills defaults.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyEnv()
	config.applyDefaults()

	if _, err := time.LoadLocation(config.App.Timezone); err != nil {
		return nil, fmt.Errorf("invalid app.timezone %q: %w", config.App.Timezone, err)
	}

	return &config, nil
}

func (c *Config) applyEnv() {
	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	setString(&c.Database.Host, "DATABASE_HOST")
	setString(&c.Database.User, "DATABASE_USER")
	setString(&c.Database.Password, "DATABASE_PASSWORD")
	setString(&c.Database.Name, "DATABASE_NAME")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Storage.S3.AccessKey, "S3_ACCESS_KEY")
	setString(&c.Storage.S3.SecretKey, "S3_SECRET_KEY")
	setString(&c.Storage.S3.Bucket, "S3_BUCKET")
	setString(&c.Admin.SessionSecret, "ADMIN_SESSION_SECRET")
	setString(&c.App.Env, "APP_ENV")

	if v, ok := os.LookupEnv("SERVER_PORT"); ok {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "culture-china"
	}
	if c.App.Env == "" {
		c.App.Env = "development"
	}
	if c.App.Timezone == "" {
		c.App.Timezone = "Asia/Shanghai"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}
	if c.Database.Charset == "" {
		c.Database.Charset = "utf8mb4"
	}
	if c.Database.Loc == "" {
		c.Database.Loc = "UTC"
	}
	if c.Redis.ImportQueue == "" {
		c.Redis.ImportQueue = "imports:alumni"
	}
	if c.Redis.DLQSuffix == "" {
		c.Redis.DLQSuffix = ":dlq"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "s3"
	}
	if c.Storage.S3.Bucket == "" {
		c.Storage.S3.Bucket = "media"
	}
	if c.Admin.SessionTTL == 0 {
		c.Admin.SessionTTL = 12 * time.Hour
	}
	if c.Imports.MaxUploadBytes == 0 {
		c.Imports.MaxUploadBytes = 1 << 30
	}
	if c.Imports.MaxSourceImageBytes == 0 {
		c.Imports.MaxSourceImageBytes = 8 << 20
	}
	if c.Imports.MaxProcessedImgBytes == 0 {
		c.Imports.MaxProcessedImgBytes = 1 << 20
	}
	if c.Imports.ErrorPreview == 0 {
		c.Imports.ErrorPreview = 20
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 5 * time.Minute
	}
	if c.Cache.Prefix == "" {
		c.Cache.Prefix = "culture:"
	}
	if c.Workers.Import.Count == 0 {
		c.Workers.Import.Count = 2
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Location returns the zone spreadsheet timestamps are interpreted in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c *Config) DatabaseDSN() string {
	loc, err := time.LoadLocation(c.Database.Loc)
	if err != nil {
		loc = time.UTC
	}

	dsn := mysql.NewConfig()
	dsn.User = c.Database.User
	dsn.Passwd = c.Database.Password
	dsn.Net = "tcp"
	dsn.Addr = fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port)
	dsn.DBName = c.Database.Name
	dsn.ParseTime = true
	dsn.Loc = loc
	dsn.Params = map[string]string{"charset": c.Database.Charset}
	return dsn.FormatDSN()
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
