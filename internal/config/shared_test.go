package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadFromDefaults(t *testing.T) {
	t.Setenv("DESK_AUTH_JWT_SECRET", "secret")
	t.Setenv("DESK_DATABASE_DRIVER", "sqlite")

	cfg, err := LoadFrom(viper.New())
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Server.Addr != ":8081" {
		t.Errorf("Server.Addr = %q, want :8081", cfg.Server.Addr)
	}
	if cfg.Auth.TokenTTL != 168*time.Hour {
		t.Errorf("Auth.TokenTTL = %v, want 168h", cfg.Auth.TokenTTL)
	}
	if cfg.Storage.Provider != "local" || cfg.Storage.LocalPath != "./uploads" {
		t.Errorf("Storage = %+v, want local ./uploads", cfg.Storage)
	}
	if cfg.MaxUploadBytes() != 10<<20 {
		t.Errorf("MaxUploadBytes() = %d, want %d", cfg.MaxUploadBytes(), 10<<20)
	}
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("DESK_AUTH_JWT_SECRET", "secret")
	t.Setenv("DESK_AUTH_TOKEN_TTL", "2h")
	t.Setenv("DESK_DATABASE_DRIVER", "postgres")
	t.Setenv("DESK_DATABASE_HOST", "db")
	t.Setenv("DESK_DATABASE_NAME", "complaints")
	t.Setenv("DESK_SERVER_MAX_UPLOAD_MB", "2")
	t.Setenv("DESK_SEED_ADMIN_EMAIL", "admin@campus.edu")
	t.Setenv("DESK_SEED_ADMIN_PASSWORD", "changeme")

	cfg, err := LoadFrom(viper.New())
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.Auth.TokenTTL != 2*time.Hour {
		t.Errorf("Auth.TokenTTL = %v, want 2h", cfg.Auth.TokenTTL)
	}
	if cfg.Database.Host != "db" || cfg.Database.Name != "complaints" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.MaxUploadBytes() != 2<<20 {
		t.Errorf("MaxUploadBytes() = %d, want %d", cfg.MaxUploadBytes(), 2<<20)
	}
	if cfg.Seed.AdminEmail != "admin@campus.edu" {
		t.Errorf("Seed.AdminEmail = %q", cfg.Seed.AdminEmail)
	}
}

func TestLoadFromValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing secret",
			env:     map[string]string{"DESK_DATABASE_DRIVER": "sqlite"},
			wantErr: "jwt_secret",
		},
		{
			name:    "postgres without host",
			env:     map[string]string{"DESK_AUTH_JWT_SECRET": "s"},
			wantErr: "database.host",
		},
		{
			name: "unknown storage provider",
			env: map[string]string{
				"DESK_AUTH_JWT_SECRET":  "s",
				"DESK_DATABASE_DRIVER":  "sqlite",
				"DESK_STORAGE_PROVIDER": "ftp",
			},
			wantErr: "storage.provider",
		},
		{
			name: "s3 without credentials",
			env: map[string]string{
				"DESK_AUTH_JWT_SECRET":  "s",
				"DESK_DATABASE_DRIVER":  "sqlite",
				"DESK_STORAGE_PROVIDER": "s3",
			},
			wantErr: "key_id",
		},
		{
			name: "admin email without password",
			env: map[string]string{
				"DESK_AUTH_JWT_SECRET":  "s",
				"DESK_DATABASE_DRIVER":  "sqlite",
				"DESK_SEED_ADMIN_EMAIL": "admin@campus.edu",
			},
			wantErr: "admin_password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadFrom(viper.New())
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadFrom() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
