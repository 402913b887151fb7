package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full server configuration, read from YAML and the environment
type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		Timezone           string   `mapstructure:"timezone"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string `mapstructure:"cors_allowed_headers"`
	} `mapstructure:"server"`

	Database struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
		MaxConns int32  `mapstructure:"max_conns"`
	} `mapstructure:"database"`

	Storage struct {
		// postgres or memory
		Driver string `mapstructure:"driver"`
	} `mapstructure:"storage"`

	JWT struct {
		Secret          string `mapstructure:"secret"`
		ExpirationHours int    `mapstructure:"expiration_hours"`
		Issuer          string `mapstructure:"issuer"`
	} `mapstructure:"jwt"`

	Redis struct {
		Addr       string `mapstructure:"addr"`
		Password   string `mapstructure:"password"`
		DB         int    `mapstructure:"db"`
		TTLSeconds int    `mapstructure:"ttl_seconds"`
	} `mapstructure:"redis"`

	Uploads struct {
		Endpoint      string `mapstructure:"endpoint"`
		Region        string `mapstructure:"region"`
		Bucket        string `mapstructure:"bucket"`
		AccessKey     string `mapstructure:"access_key"`
		SecretKey     string `mapstructure:"secret_key"`
		PublicBaseURL string `mapstructure:"public_base_url"`
		MaxSizeMB     int64  `mapstructure:"max_size_mb"`
	} `mapstructure:"uploads"`

	Workflow struct {
		EnforceArrivalMatch bool `mapstructure:"enforce_arrival_match"`
	} `mapstructure:"workflow"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	// FileMissing is set when no config file was read and defaults are in effect
	FileMissing bool `mapstructure:"-"`
}

// DSN returns the PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Load reads configs/config.yaml (or path when given), then the environment
func Load(path string) (*Config, error) {
	// Load .env file if exists (ignore error in production)
	godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	if path == "" {
		path = "configs/config.yaml"
	}
	v.SetConfigFile(path)

	v.AutomaticEnv()

	// Sensible defaults so the binary works without a config file
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timezone", "Asia/Kolkata")
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("server.cors_allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("server.cors_allowed_headers", []string{"Authorization", "Content-Type"})
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "cane_db")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("storage.driver", "postgres")
	v.SetDefault("jwt.expiration_hours", 24)
	v.SetDefault("jwt.issuer", "cane-backend")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.ttl_seconds", 300)
	v.SetDefault("uploads.region", "auto")
	v.SetDefault("uploads.max_size_mb", 5)
	v.SetDefault("workflow.enforce_arrival_match", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Config file is optional
	configFileMissing := v.ReadInConfig() != nil

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}

	applyEnvOverrides(&cfg)

	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET not found in config or environment")
	}
	if cfg.Storage.Driver != "postgres" && cfg.Storage.Driver != "memory" {
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}

	cfg.FileMissing = configFileMissing
	return &cfg, nil
}

// applyEnvOverrides maps the flat variables used by the deployment manifests
func applyEnvOverrides(cfg *Config) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Database.Port = n
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.Database.User = user
	}
	if pass := os.Getenv("DB_PASSWORD"); pass != "" {
		cfg.Database.Password = pass
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Database.Name = name
	}

	if cfg.JWT.Secret == "" || cfg.JWT.Secret == "${JWT_SECRET}" {
		cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		cfg.Redis.Password = pass
	}

	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		cfg.Uploads.Endpoint = endpoint
	}
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		cfg.Uploads.Bucket = bucket
	}
	if key := os.Getenv("S3_ACCESS_KEY"); key != "" {
		cfg.Uploads.AccessKey = key
	}
	if secret := os.Getenv("S3_SECRET_KEY"); secret != "" {
		cfg.Uploads.SecretKey = secret
	}
	if base := os.Getenv("S3_PUBLIC_BASE_URL"); base != "" {
		cfg.Uploads.PublicBaseURL = base
	}
}
