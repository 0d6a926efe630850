package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-nft-warehouse/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	if content == "" {
		return filepath.Join(t.TempDir(), "nonexistent.yaml")
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadWarehouseConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		expectError error
		errContains string
		validate    func(*testing.T, *WarehouseConfig)
	}{
		{
			name: "valid config file",
			configFile: `
debug: true
sentry_dsn: "https://sentry.example.com"
log:
  file: /var/log/warehouse.log
  max_size_mb: 50
storage:
  backend: s3
  s3:
    bucket: nft-warehouse
    prefix: prod
    region: eu-west-1
    endpoint: http://localhost:9000
    path_style: true
token_master:
  backend: postgres
database:
  host: localhost
  user: testuser
  password: testpass
  dbname: testdb
build:
  categories: [art, games]
  windows: [5, 10]
  estimated: true
  from: 202401
  to: 202403
  lookback: 1
  steps: [holder, kpi]
metrics:
  pushgateway_url: http://localhost:9091
`,
			validate: func(t *testing.T, cfg *WarehouseConfig) {
				assert.True(t, cfg.Debug)
				assert.Equal(t, "https://sentry.example.com", cfg.SentryDSN)
				assert.Equal(t, "/var/log/warehouse.log", cfg.Log.File)
				assert.Equal(t, 50, cfg.Log.MaxSizeMB)
				assert.Equal(t, 14, cfg.Log.MaxAgeDays)
				assert.Equal(t, StorageS3, cfg.Storage.Backend)
				assert.Equal(t, "nft-warehouse", cfg.Storage.S3.Bucket)
				assert.Equal(t, "prod", cfg.Storage.S3.Prefix)
				assert.Equal(t, "eu-west-1", cfg.Storage.S3.Region)
				assert.True(t, cfg.Storage.S3.PathStyle)
				assert.Equal(t, 2*time.Minute, cfg.Storage.S3.MaxElapsedTime)
				assert.Equal(t, TokenMasterPostgres, cfg.TokenMaster.Backend)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, []domain.Category{"art", "games"}, cfg.BuildCategories())
				assert.Equal(t, []int{5, 10}, cfg.Build.Windows)
				assert.True(t, cfg.Build.Estimated)
				assert.Equal(t, 202401, cfg.Build.From)
				assert.Equal(t, 202403, cfg.Build.To)
				assert.Equal(t, 1, cfg.Build.Lookback)
				assert.Equal(t, []string{"holder", "kpi"}, cfg.Build.Steps)
				assert.Equal(t, "http://localhost:9091", cfg.Metrics.PushgatewayURL)
				assert.Equal(t, "ff-warehouse", cfg.Metrics.Job)
			},
		},
		{
			name: "config with defaults",
			configFile: `
build:
  categories: [art]
`,
			validate: func(t *testing.T, cfg *WarehouseConfig) {
				assert.False(t, cfg.Debug)
				assert.Equal(t, StorageLocal, cfg.Storage.Backend)
				assert.Equal(t, "data", cfg.Storage.Root)
				assert.Equal(t, TokenMasterParquet, cfg.TokenMaster.Backend)
				assert.Equal(t, domain.DefaultWindows(), cfg.Build.Windows)
				assert.Equal(t, domain.BuildSteps(), cfg.Build.Steps)
				assert.Zero(t, cfg.Build.From)
				assert.Zero(t, cfg.Build.To)
				assert.Equal(t, "1h0m0s", cfg.Database.ConnMaxLifetime.String())
			},
		},
		{
			name:        "missing categories",
			configFile:  "",
			errContains: "build.categories is required",
		},
		{
			name: "descending windows",
			configFile: `
build:
  categories: [art]
  windows: [14, 7]
`,
			expectError: domain.ErrInvalidWindows,
		},
		{
			name: "zero window",
			configFile: `
build:
  categories: [art]
  windows: [0, 7]
`,
			expectError: domain.ErrInvalidWindows,
		},
		{
			name: "invalid month",
			configFile: `
build:
  categories: [art]
  from: 202413
  to: 202501
`,
			expectError: domain.ErrInvalidMonat,
		},
		{
			name: "range out of order",
			configFile: `
build:
  categories: [art]
  from: 202405
  to: 202401
`,
			expectError: domain.ErrInvalidMonat,
		},
		{
			name: "half a range",
			configFile: `
build:
  categories: [art]
  from: 202405
`,
			errContains: "must be set together",
		},
		{
			name: "unknown step",
			configFile: `
build:
  categories: [art]
  steps: [holder, report]
`,
			errContains: `unknown build step "report"`,
		},
		{
			name: "unknown storage backend",
			configFile: `
storage:
  backend: gcs
build:
  categories: [art]
`,
			expectError: domain.ErrUnknownBackend,
		},
		{
			name: "s3 without bucket",
			configFile: `
storage:
  backend: s3
build:
  categories: [art]
`,
			errContains: "storage.s3.bucket is required",
		},
		{
			name: "postgres token master without database",
			configFile: `
token_master:
  backend: postgres
build:
  categories: [art]
`,
			errContains: "database.host is required",
		},
		{
			name: "invalid yaml",
			configFile: `
build:
  categories: [art]
  lookback: invalid
`,
			errContains: "failed to unmarshal config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadWarehouseConfig(writeConfig(t, tt.configFile), t.TempDir())

			switch {
			case tt.expectError != nil:
				require.ErrorIs(t, err, tt.expectError)
				assert.Nil(t, cfg)
			case tt.errContains != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.Nil(t, cfg)
			default:
				require.NoError(t, err)
				require.NotNil(t, cfg)
				tt.validate(t, cfg)
			}
		})
	}
}

func TestLoadLoaderConfig(t *testing.T) {
	tests := []struct {
		name        string
		configFile  string
		errContains string
		validate    func(*testing.T, *LoaderConfig)
	}{
		{
			name: "valid config file",
			configFile: `
storage:
  backend: local
  root: /data/warehouse
stage:
  dir: /data/stage
  workers: 8
  categories: [art]
`,
			validate: func(t *testing.T, cfg *LoaderConfig) {
				assert.Equal(t, "/data/warehouse", cfg.Storage.Root)
				assert.Equal(t, "/data/stage", cfg.Stage.Dir)
				assert.Equal(t, 8, cfg.Stage.Workers)
				assert.Equal(t, []domain.Category{"art"}, cfg.StageCategories())
				assert.Equal(t, "ff-nds-loader", cfg.Metrics.Job)
			},
		},
		{
			name:       "defaults",
			configFile: "",
			validate: func(t *testing.T, cfg *LoaderConfig) {
				assert.Equal(t, "stage", cfg.Stage.Dir)
				assert.Equal(t, 4, cfg.Stage.Workers)
				assert.Empty(t, cfg.StageCategories())
			},
		},
		{
			name: "non-positive workers",
			configFile: `
stage:
  workers: 0
`,
			errContains: "stage.workers must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadLoaderConfig(writeConfig(t, tt.configFile), t.TempDir())

			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			tt.validate(t, cfg)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name     string
		config   DatabaseConfig
		expected string
	}{
		{
			name: "complete config",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "testuser",
				Password: "testpass",
				DBName:   "testdb",
				SSLMode:  "require",
			},
			expected: "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=require",
		},
		{
			name: "with special characters in password",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "testuser",
				Password: "p@ssw0rd!",
				DBName:   "testdb",
				SSLMode:  "disable",
			},
			expected: "host=localhost port=5432 user=testuser password=p@ssw0rd! dbname=testdb sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.DSN())
		})
	}
}

func TestConfigWithEnvironmentVariables(t *testing.T) {
	tmpDir := t.TempDir()

	envDir := filepath.Join(tmpDir, "env")
	require.NoError(t, os.MkdirAll(envDir, 0750))

	// Viper uses the FF_WAREHOUSE_ prefix
	envContent := `FF_WAREHOUSE_DEBUG=true
FF_WAREHOUSE_STORAGE_ROOT=/env/warehouse
FF_WAREHOUSE_BUILD_CATEGORIES=art,games
FF_WAREHOUSE_BUILD_WINDOWS=3,9
FF_WAREHOUSE_BUILD_LOOKBACK=2
`
	require.NoError(t, os.WriteFile(filepath.Join(envDir, ".env"), []byte(envContent), 0600))
	t.Cleanup(func() {
		for _, key := range []string{
			"FF_WAREHOUSE_DEBUG",
			"FF_WAREHOUSE_STORAGE_ROOT",
			"FF_WAREHOUSE_BUILD_CATEGORIES",
			"FF_WAREHOUSE_BUILD_WINDOWS",
			"FF_WAREHOUSE_BUILD_LOOKBACK",
		} {
			_ = os.Unsetenv(key)
		}
	})

	configPath := writeConfig(t, `
debug: false
storage:
  root: /file/warehouse
build:
  categories: [collectibles]
`)

	cfg, err := LoadWarehouseConfig(configPath, envDir)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.True(t, cfg.Debug)
	assert.Equal(t, "/env/warehouse", cfg.Storage.Root)
	assert.Equal(t, []string{"art", "games"}, cfg.Build.Categories)
	assert.Equal(t, []int{3, 9}, cfg.Build.Windows)
	assert.Equal(t, 2, cfg.Build.Lookback)
}
