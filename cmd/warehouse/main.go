package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/ff-nft-warehouse/internal/adapter"
	"github.com/feral-file/ff-nft-warehouse/internal/config"
	"github.com/feral-file/ff-nft-warehouse/internal/dedup"
	"github.com/feral-file/ff-nft-warehouse/internal/domain"
	"github.com/feral-file/ff-nft-warehouse/internal/holder"
	"github.com/feral-file/ff-nft-warehouse/internal/kpi"
	"github.com/feral-file/ff-nft-warehouse/internal/logger"
	"github.com/feral-file/ff-nft-warehouse/internal/metrics"
	"github.com/feral-file/ff-nft-warehouse/internal/pipeline"
	"github.com/feral-file/ff-nft-warehouse/internal/store"
	"github.com/feral-file/ff-nft-warehouse/internal/timeseries"
)

const service = "warehouse"

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
	from       = flag.Int("from", 0, "First month to build (yyyymm), overrides build.from")
	to         = flag.Int("to", 0, "Last month to build (yyyymm), overrides build.to")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadWarehouseConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	if *from != 0 || *to != 0 {
		cfg.Build.From, cfg.Build.To = *from, *to
		if err := cfg.Validate(); err != nil {
			panic(fmt.Sprintf("Invalid month range: %v", err))
		}
	}

	// Cancel the run on interrupt
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
	logger.InfoCtx(ctx, "Starting warehouse build",
		zap.String("storage", cfg.Storage.Backend),
		zap.String("token_master", cfg.TokenMaster.Backend),
		zap.Strings("categories", cfg.Build.Categories),
	)

	backends := cfg.Storage.Backends(cfg.TokenMaster)
	if cfg.TokenMaster.Backend == config.TokenMasterPostgres {
		backends.DB = connectDatabase(ctx, cfg.Database)
	}

	warehouse, tokens, err := store.Open(ctx, backends)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to open stores", zap.Error(err))
	}

	series, err := timeseries.NewBuilder(warehouse, timeseries.Options{
		Windows:   cfg.Build.Windows,
		Estimated: cfg.Build.Estimated,
	})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create time series builder", zap.Error(err))
	}

	clock := adapter.NewClock()
	recorder := metrics.New()
	runner := pipeline.NewRunner(warehouse, pipeline.Steps{
		Detector:   dedup.NewDetector(warehouse),
		Holder:     holder.NewBuilder(warehouse),
		KPI:        kpi.NewBuilder(warehouse, tokens),
		TimeSeries: series,
	}, clock, recorder, pipeline.Options{
		Categories: cfg.BuildCategories(),
		From:       domain.Monat(cfg.Build.From),
		To:         domain.Monat(cfg.Build.To),
		Lookback:   cfg.Build.Lookback,
		Steps:      cfg.Build.Steps,
	})

	report, err := runner.Run(ctx)
	runner.Finish(context.WithoutCancel(ctx), cfg.Metrics.Job, cfg.Metrics.PushgatewayURL, err)
	if err != nil {
		logger.ErrorCtx(ctx, err)
		logger.Flush(2 * time.Second)
		os.Exit(1)
	}

	logger.InfoCtx(ctx, "Warehouse build finished",
		zap.String("run_id", report.RunID),
		zap.Int("months", report.Months),
		zap.Int("flagged", report.Flagged),
	)
}

func connectDatabase(ctx context.Context, cfg config.DatabaseConfig) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Host))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime, cfg.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
	)
	return db
}
