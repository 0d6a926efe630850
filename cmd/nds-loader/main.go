package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/ff-nft-warehouse/internal/adapter"
	"github.com/feral-file/ff-nft-warehouse/internal/config"
	"github.com/feral-file/ff-nft-warehouse/internal/logger"
	"github.com/feral-file/ff-nft-warehouse/internal/metrics"
	"github.com/feral-file/ff-nft-warehouse/internal/staging"
	"github.com/feral-file/ff-nft-warehouse/internal/store"
)

const (
	service       = "nds-loader"
	stageStep     = "stage"
	allCategories = "all"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
	stageDir   = flag.String("stage", "", "Stage directory, overrides stage.dir")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadLoaderConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	if *stageDir != "" {
		cfg.Stage.Dir = *stageDir
	}

	// Cancel the load on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"service": service,
		},
		File: logger.FileConfig{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxAgeDays: cfg.Log.MaxAgeDays,
			MaxBackups: cfg.Log.MaxBackups,
			Compress:   cfg.Log.Compress,
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting stage loader",
		zap.String("stage_dir", cfg.Stage.Dir),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("token_master", cfg.TokenMaster.Backend),
	)

	backends := cfg.Storage.Backends(cfg.TokenMaster)
	if cfg.TokenMaster.Backend == config.TokenMasterPostgres {
		db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
		if err != nil {
			logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
		}
		if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
			logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
		}
		backends.DB = db
	}

	warehouse, tokens, err := store.Open(ctx, backends)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to open stores", zap.Error(err))
	}

	clock := adapter.NewClock()
	recorder := metrics.New()
	ctx = logger.WithRun(ctx, logger.RunInfo{RunID: ulid.MustNewDefault(clock.Now()).String()})
	loader := staging.NewLoader(adapter.NewFileSystem(), warehouse, tokens, staging.Options{
		StageDir:   cfg.Stage.Dir,
		Workers:    cfg.Stage.Workers,
		Categories: cfg.StageCategories(),
	})

	result, err := load(ctx, loader, clock, recorder, cfg.Metrics.Job)

	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if pushErr := recorder.Push(pushCtx, cfg.Metrics.PushgatewayURL, cfg.Metrics.Job); pushErr != nil {
		logger.WarnCtx(ctx, "Failed to push metrics", zap.Error(pushErr))
	}

	if err != nil {
		logger.ErrorCtx(ctx, err)
		logger.Flush(2 * time.Second)
		os.Exit(1)
	}

	logger.InfoCtx(ctx, "Stage loader finished",
		zap.Int("chunks", result.Chunks),
		zap.Int("appended", result.Appended),
		zap.Int("partitions", result.Partitions),
		zap.Int("empty_partitions", result.EmptyPartitions),
		zap.Int("tokens", result.Tokens),
	)
}

// load runs the stage loader and records its outcome
func load(ctx context.Context, loader staging.Loader, clock adapter.Clock, recorder *metrics.Recorder, job string) (staging.Result, error) {
	started := clock.Now()
	result, err := loader.Load(ctx)
	recorder.ObserveStep(stageStep, clock.Since(started))
	recorder.AddRows(stageStep, allCategories, result.Appended)
	recorder.RunFinished(job, clock.Now(), err)
	return result, err
}
