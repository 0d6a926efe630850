package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/feral-file/ff-nft-warehouse/internal/domain"
	"github.com/feral-file/ff-nft-warehouse/internal/store"
)

// Storage backends
const (
	StorageLocal = store.BackendLocal
	StorageS3    = store.BackendS3
)

// Token master backends
const (
	TokenMasterParquet  = store.BackendParquet
	TokenMasterPostgres = store.BackendPostgres
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool      `mapstructure:"debug"`
	SentryDSN string    `mapstructure:"sentry_dsn"`
	Log       LogConfig `mapstructure:"log"`
}

// LogConfig holds the optional rotating log file configuration
type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// S3Config holds the S3 bucket configuration
type S3Config struct {
	Bucket          string        `mapstructure:"bucket"`
	Prefix          string        `mapstructure:"prefix"`
	Region          string        `mapstructure:"region"`
	Endpoint        string        `mapstructure:"endpoint"`
	PathStyle       bool          `mapstructure:"path_style"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"` // Retry budget of a single object operation
}

// StorageConfig selects where the warehouse tables live
type StorageConfig struct {
	Backend string   `mapstructure:"backend"` // local or s3
	Root    string   `mapstructure:"root"`    // Root directory of the local backend
	S3      S3Config `mapstructure:"s3"`
}

// TokenMasterConfig selects where the token master lives
type TokenMasterConfig struct {
	Backend string `mapstructure:"backend"` // parquet (next to the tables) or postgres
}

// MetricsConfig holds the Pushgateway configuration
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// BuildConfig holds the builder parameters
type BuildConfig struct {
	Categories []string `mapstructure:"categories"`
	Windows    []int    `mapstructure:"windows"`
	Estimated  bool     `mapstructure:"estimated"`
	From       int      `mapstructure:"from"`     // First month (yyyymm), 0 = discover from partitions
	To         int      `mapstructure:"to"`       // Last month (yyyymm), 0 = discover from partitions
	Lookback   int      `mapstructure:"lookback"` // Months rebuilt before From
	Steps      []string `mapstructure:"steps"`
}

// StageConfig holds the stage loader parameters
type StageConfig struct {
	Dir        string   `mapstructure:"dir"`
	Workers    int      `mapstructure:"workers"`
	Categories []string `mapstructure:"categories"`
}

// WarehouseConfig holds configuration for the warehouse builder
type WarehouseConfig struct {
	BaseConfig  `mapstructure:",squash"`
	Storage     StorageConfig     `mapstructure:"storage"`
	TokenMaster TokenMasterConfig `mapstructure:"token_master"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Build       BuildConfig       `mapstructure:"build"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

// LoaderConfig holds configuration for the stage loader
type LoaderConfig struct {
	BaseConfig  `mapstructure:",squash"`
	Storage     StorageConfig     `mapstructure:"storage"`
	TokenMaster TokenMasterConfig `mapstructure:"token_master"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Stage       StageConfig       `mapstructure:"stage"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

// LoadWarehouseConfig loads configuration for the warehouse builder
func LoadWarehouseConfig(configFile string, envPath string) (*WarehouseConfig, error) {
	v := configureViper("warehouse", configFile, envPath)

	// Set defaults
	setCommonDefaults(v)
	v.SetDefault("metrics.job", "ff-warehouse")
	v.SetDefault("build.windows", domain.DefaultWindows())
	v.SetDefault("build.estimated", false)
	v.SetDefault("build.lookback", 0)
	v.SetDefault("build.steps", domain.BuildSteps())

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg WarehouseConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Build.Categories = splitList(cfg.Build.Categories)
	cfg.Build.Steps = splitList(cfg.Build.Steps)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadLoaderConfig loads configuration for the stage loader
func LoadLoaderConfig(configFile string, envPath string) (*LoaderConfig, error) {
	v := configureViper("nds-loader", configFile, envPath)

	// Set defaults
	setCommonDefaults(v)
	v.SetDefault("metrics.job", "ff-nds-loader")
	v.SetDefault("stage.dir", "stage")
	v.SetDefault("stage.workers", 4)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg LoaderConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Stage.Categories = splitList(cfg.Stage.Categories)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the warehouse builder configuration
func (c *WarehouseConfig) Validate() error {
	if err := validateStores(c.Storage, c.TokenMaster, c.Database); err != nil {
		return err
	}

	if len(c.Build.Categories) == 0 {
		return errors.New("build.categories is required")
	}
	if err := validateWindows(c.Build.Windows); err != nil {
		return err
	}
	for _, step := range c.Build.Steps {
		if !slices.Contains(domain.BuildSteps(), step) {
			return fmt.Errorf("unknown build step %q", step)
		}
	}

	if c.Build.Lookback < 0 {
		return errors.New("build.lookback must not be negative")
	}
	if (c.Build.From == 0) != (c.Build.To == 0) {
		return errors.New("build.from and build.to must be set together")
	}
	if c.Build.From != 0 {
		from, to := domain.Monat(c.Build.From), domain.Monat(c.Build.To)
		if !from.Valid() {
			return fmt.Errorf("%w: build.from %d", domain.ErrInvalidMonat, c.Build.From)
		}
		if !to.Valid() {
			return fmt.Errorf("%w: build.to %d", domain.ErrInvalidMonat, c.Build.To)
		}
		if from > to {
			return fmt.Errorf("%w: build.from %d is after build.to %d", domain.ErrInvalidMonat, c.Build.From, c.Build.To)
		}
	}
	return nil
}

// Validate checks the stage loader configuration
func (c *LoaderConfig) Validate() error {
	if err := validateStores(c.Storage, c.TokenMaster, c.Database); err != nil {
		return err
	}
	if c.Stage.Dir == "" {
		return errors.New("stage.dir is required")
	}
	if c.Stage.Workers <= 0 {
		return errors.New("stage.workers must be positive")
	}
	return nil
}

// BuildCategories returns the configured categories
func (c *WarehouseConfig) BuildCategories() []domain.Category {
	return toCategories(c.Build.Categories)
}

// StageCategories returns the categories the loader is restricted to
func (c *LoaderConfig) StageCategories() []domain.Category {
	return toCategories(c.Stage.Categories)
}

func toCategories(names []string) []domain.Category {
	categories := make([]domain.Category, 0, len(names))
	for _, n := range names {
		categories = append(categories, domain.Category(n))
	}
	return categories
}

func validateStores(storage StorageConfig, tokenMaster TokenMasterConfig, db DatabaseConfig) error {
	switch storage.Backend {
	case StorageLocal:
		if storage.Root == "" {
			return errors.New("storage.root is required for the local backend")
		}
	case StorageS3:
		if storage.S3.Bucket == "" {
			return errors.New("storage.s3.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("%w: storage.backend %q", domain.ErrUnknownBackend, storage.Backend)
	}

	switch tokenMaster.Backend {
	case TokenMasterParquet:
	case TokenMasterPostgres:
		if db.Host == "" {
			return errors.New("database.host is required for the postgres token master")
		}
		if db.DBName == "" {
			return errors.New("database.dbname is required for the postgres token master")
		}
	default:
		return fmt.Errorf("%w: token_master.backend %q", domain.ErrUnknownBackend, tokenMaster.Backend)
	}
	return nil
}

func validateWindows(windows []int) error {
	if len(windows) == 0 {
		return fmt.Errorf("%w: build.windows is empty", domain.ErrInvalidWindows)
	}
	for i, w := range windows {
		if w <= 0 {
			return fmt.Errorf("%w: window %d is not positive", domain.ErrInvalidWindows, w)
		}
		if i > 0 && w <= windows[i-1] {
			return fmt.Errorf("%w: %v is not ascending", domain.ErrInvalidWindows, windows)
		}
	}
	return nil
}

// splitList accepts both yaml lists and comma separated env values
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func setCommonDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_age_days", 14)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("storage.backend", StorageLocal)
	v.SetDefault("storage.root", "data")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.max_elapsed_time", "2m")
	v.SetDefault("token_master.backend", TokenMasterParquet)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
}

// readConfig reads the config file; a missing file falls back to environment variables
func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/warehouse/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("FF_WAREHOUSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Log file
		"log.file",
		"log.max_size_mb",
		"log.max_age_days",
		"log.max_backups",
		"log.compress",
		// Storage
		"storage.backend",
		"storage.root",
		"storage.s3.bucket",
		"storage.s3.prefix",
		"storage.s3.region",
		"storage.s3.endpoint",
		"storage.s3.path_style",
		"storage.s3.access_key_id",
		"storage.s3.secret_access_key",
		"storage.s3.max_elapsed_time",
		// Token master
		"token_master.backend",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Build
		"build.categories",
		"build.windows",
		"build.estimated",
		"build.from",
		"build.to",
		"build.lookback",
		"build.steps",
		// Stage
		"stage.dir",
		"stage.workers",
		"stage.categories",
		// Metrics
		"metrics.pushgateway_url",
		"metrics.job",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// Backends returns the store backends. The database is opened by the caller.
func (c *StorageConfig) Backends(tokenMaster TokenMasterConfig) store.Backends {
	return store.Backends{
		Storage: c.Backend,
		Root:    c.Root,
		S3: store.S3Options{
			Bucket:          c.S3.Bucket,
			Prefix:          c.S3.Prefix,
			Region:          c.S3.Region,
			Endpoint:        c.S3.Endpoint,
			PathStyle:       c.S3.PathStyle,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
			MaxElapsedTime:  c.S3.MaxElapsedTime,
		},
		TokenMaster: tokenMaster.Backend,
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
