package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "buildstock-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, DriverPostgres, cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "buildstock", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, 5*time.Second, cfg.Redis.LockTTL)
		assert.Equal(t, 3, cfg.Numbering.ReceiptPadWidth)
		assert.Equal(t, 0, cfg.Numbering.IssuePadWidth)
		assert.Equal(t, 2, cfg.Issue.MaxCommitRetries)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
		assert.Equal(t, "buildstock-backend", cfg.Telemetry.ServiceName)
		assert.False(t, cfg.Telemetry.LogsEnabled)
	})

	t.Run("loads values from environment variables with BUILDSTOCK prefix", func(t *testing.T) {
		t.Setenv("BUILDSTOCK_APP_NAME", "site-store")
		t.Setenv("BUILDSTOCK_APP_PORT", "9000")
		t.Setenv("BUILDSTOCK_DATABASE_DRIVER", "SQLite")
		t.Setenv("BUILDSTOCK_DATABASE_PATH", "/tmp/site.db")
		t.Setenv("BUILDSTOCK_REDIS_ENABLED", "true")
		t.Setenv("BUILDSTOCK_REDIS_LOCK_TTL", "2s")
		t.Setenv("BUILDSTOCK_NUMBERING_ISSUE_PAD_WIDTH", "4")
		t.Setenv("BUILDSTOCK_ISSUE_MAX_COMMIT_RETRIES", "0")
		t.Setenv("BUILDSTOCK_TELEMETRY_LOGS_ENABLED", "true")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "site-store", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, DriverSQLite, cfg.Database.Driver)
		assert.Equal(t, "/tmp/site.db", cfg.Database.DSN())
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, 2*time.Second, cfg.Redis.LockTTL)
		assert.Equal(t, 4, cfg.Numbering.IssuePadWidth)
		assert.Equal(t, 0, cfg.Issue.MaxCommitRetries)
		assert.Equal(t, "site-store", cfg.Telemetry.ServiceName)
		assert.True(t, cfg.Telemetry.LogsEnabled)
	})
}

func TestFromViper_Validation(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		wantErr string
	}{
		{
			name:    "unknown driver",
			values:  map[string]any{"database.driver": "mysql"},
			wantErr: "database.driver",
		},
		{
			name:    "idle conns exceed open conns",
			values:  map[string]any{"database.max_open_conns": 2, "database.max_idle_conns": 5},
			wantErr: "cannot exceed",
		},
		{
			name:    "pad width out of range",
			values:  map[string]any{"numbering.receipt_pad_width": 12},
			wantErr: "receipt_pad_width",
		},
		{
			name:    "negative retries",
			values:  map[string]any{"issue.max_commit_retries": -1},
			wantErr: "max_commit_retries",
		},
		{
			name:    "sampling ratio above one",
			values:  map[string]any{"telemetry.sampling_ratio": 1.5},
			wantErr: "sampling_ratio",
		},
		{
			name:    "sqlite in production",
			values:  map[string]any{"app.env": "production", "database.driver": "sqlite"},
			wantErr: "must be postgres in production",
		},
		{
			name: "production without password",
			values: map[string]any{
				"app.env": "production", "database.sslmode": "require",
			},
			wantErr: "database.password is required",
		},
		{
			name: "production with sslmode disabled",
			values: map[string]any{
				"app.env": "production", "database.password": "secret",
			},
			wantErr: "sslmode",
		},
		{
			name: "production with wildcard origin",
			values: map[string]any{
				"app.env": "production", "database.password": "secret", "database.sslmode": "require",
				"http.cors_allow_origins": []string{"*"},
			},
			wantErr: "cors_allow_origins",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.values {
				v.Set(k, val)
			}
			cfg, err := fromViper(v)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("valid production config", func(t *testing.T) {
		v := viper.New()
		v.Set("app.env", "production")
		v.Set("database.password", "secret")
		v.Set("database.sslmode", "require")
		v.Set("http.cors_allow_origins", []string{"https://stores.example.com"})

		cfg, err := fromViper(v)
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name   string
		config DatabaseConfig
		want   string
	}{
		{
			name: "postgres with escaped password",
			config: DatabaseConfig{
				Driver: DriverPostgres, Host: "db", Port: 5432, User: "stock",
				Password: "p@ss/word", DBName: "buildstock", SSLMode: "disable",
			},
			want: "postgres://stock:p%40ss%2Fword@db:5432/buildstock?sslmode=disable",
		},
		{
			name:   "sqlite file",
			config: DatabaseConfig{Driver: DriverSQLite, Path: "file::memory:?cache=shared"},
			want:   "file::memory:?cache=shared",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.config.DSN())
		})
	}
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
