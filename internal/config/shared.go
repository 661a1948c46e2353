package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Addr        string   `mapstructure:"addr"`
		MetricsPort string   `mapstructure:"metrics_port"`
		LogLevel    string   `mapstructure:"log_level"`
		CORSOrigins []string `mapstructure:"cors_origins"`
		MaxUploadMB int64    `mapstructure:"max_upload_mb"`
	} `mapstructure:"server"`
	Auth struct {
		JWTSecret string        `mapstructure:"jwt_secret"`
		Issuer    string        `mapstructure:"issuer"`
		TokenTTL  time.Duration `mapstructure:"token_ttl"`
	} `mapstructure:"auth"`
	Database struct {
		Driver     string `mapstructure:"driver"`
		Host       string `mapstructure:"host"`
		Port       string `mapstructure:"port"`
		User       string `mapstructure:"user"`
		Password   string `mapstructure:"password"`
		Name       string `mapstructure:"name"`
		SQLitePath string `mapstructure:"sqlite_path"`
	} `mapstructure:"database"`
	Storage struct {
		Provider  string `mapstructure:"provider"`
		LocalPath string `mapstructure:"local_path"`
		Bucket    string `mapstructure:"bucket"`
		Endpoint  string `mapstructure:"endpoint"`
		Region    string `mapstructure:"region"`
		KeyID     string `mapstructure:"key_id"`
		AppKey    string `mapstructure:"app_key"`
	} `mapstructure:"storage"`
	Seed struct {
		AdminName     string `mapstructure:"admin_name"`
		AdminEmail    string `mapstructure:"admin_email"`
		AdminPassword string `mapstructure:"admin_password"`
		UsersFile     string `mapstructure:"users_file"`
	} `mapstructure:"seed"`
}

var keys = []string{
	"server.addr",
	"server.metrics_port",
	"server.log_level",
	"server.cors_origins",
	"server.max_upload_mb",

	"auth.jwt_secret",
	"auth.issuer",
	"auth.token_ttl",

	"database.driver",
	"database.host",
	"database.port",
	"database.user",
	"database.password",
	"database.name",
	"database.sqlite_path",

	"storage.provider",
	"storage.local_path",
	"storage.bucket",
	"storage.endpoint",
	"storage.region",
	"storage.key_id",
	"storage.app_key",

	"seed.admin_name",
	"seed.admin_email",
	"seed.admin_password",
	"seed.users_file",
}

// Load reads config.yaml (optional) and DESK_* environment variables.
// Invalid configuration is fatal.
func Load() *Config {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("../")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Warning: Config error: %s", err)
		} else {
			log.Println("Info: config.yaml not found, using Environment Variables only.")
		}
	}

	cfg, err := LoadFrom(v)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

// LoadFrom binds env vars and defaults onto v, decodes and validates.
func LoadFrom(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("DESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	v.SetDefault("server.addr", ":8081")
	v.SetDefault("server.metrics_port", ":9091")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.max_upload_mb", 10)

	v.SetDefault("auth.issuer", "complaint-desk")
	v.SetDefault("auth.token_ttl", "168h")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sqlite_path", "complaints.db")

	v.SetDefault("storage.provider", "local")
	v.SetDefault("storage.local_path", "./uploads")
	v.SetDefault("storage.bucket", "complaint-uploads")

	v.SetDefault("seed.admin_name", "Administrator")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required (DESK_AUTH_JWT_SECRET)")
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" || c.Database.Name == "" {
			return errors.New("database.host and database.name are required for postgres")
		}
	case "sqlite":
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}

	switch c.Storage.Provider {
	case "local":
		if c.Storage.LocalPath == "" {
			return errors.New("storage.local_path is required for local storage")
		}
	case "s3":
		if c.Storage.KeyID == "" || c.Storage.Bucket == "" {
			return errors.New("storage.key_id and storage.bucket are required for s3 storage (DESK_STORAGE_KEY_ID)")
		}
	default:
		return fmt.Errorf("unknown storage.provider %q", c.Storage.Provider)
	}

	if (c.Seed.AdminEmail == "") != (c.Seed.AdminPassword == "") {
		return errors.New("seed.admin_email and seed.admin_password must be set together")
	}
	return nil
}

// MaxUploadBytes bounds the in-memory part of multipart parsing.
func (c *Config) MaxUploadBytes() int64 {
	if c.Server.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return c.Server.MaxUploadMB << 20
}
