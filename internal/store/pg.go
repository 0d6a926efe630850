package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/feral-file/ff-nft-warehouse/internal/domain"
	"github.com/feral-file/ff-nft-warehouse/internal/logger"
	"github.com/feral-file/ff-nft-warehouse/internal/store/schema"
)

// tokenMasterFields is the number of bound parameters of a token_masters insert
const tokenMasterFields = 16

type pgTokenMasterStore struct {
	db *gorm.DB
}

// NewPGTokenMasterStore creates a token master store backed by the token_masters table
func NewPGTokenMasterStore(db *gorm.DB) TokenMasterStore {
	return &pgTokenMasterStore{db: db}
}

// Migrate creates or updates the tables used by the PostgreSQL store
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&schema.TokenMaster{}); err != nil {
		return fmt.Errorf("failed to migrate token_masters: %w", err)
	}
	return nil
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// It accesses the underlying *sql.DB and sets the pool configuration.
// If any of the pool settings are 0 or empty, reasonable defaults are used:
//   - MaxOpenConns: 20 (if 0)
//   - MaxIdleConns: 5 (if 0)
//   - ConnMaxLifetime: 5 minutes (if 0)
//   - ConnMaxIdleTime: 10 minutes (if 0)
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// calculateSafeBatchSize computes the batch size for bulk inserts that stays under
// PostgreSQL's limit of 65535 bound parameters per statement.
func calculateSafeBatchSize(totalRecords int, fieldsPerRecord int) int {
	const maxParams = 65535
	const totalHeadroom = 1000

	availableParams := maxParams - totalHeadroom
	safeBatchSize := max(availableParams/fieldsPerRecord, 1)

	if safeBatchSize > totalRecords {
		return totalRecords
	}

	return safeBatchSize
}

// Load returns every token of the category ordered by collection and token
func (s *pgTokenMasterStore) Load(ctx context.Context, category domain.Category) ([]domain.Token, error) {
	var rows []schema.TokenMaster
	err := s.db.WithContext(ctx).
		Where("category = ?", category.Key()).
		Order("collection_id, token_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load token master: %w", err)
	}

	tokens := make([]domain.Token, 0, len(rows))
	for _, r := range rows {
		t, err := r.Domain(category)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, nil
}

// Save replaces the category's rows in a single transaction
func (s *pgTokenMasterStore) Save(ctx context.Context, category domain.Category, tokens []domain.Token) error {
	ctx = logger.WithStep(ctx, category.Key(), "", "")

	rows := make([]schema.TokenMaster, 0, len(tokens))
	for _, t := range tokens {
		row, err := schema.NewTokenMaster(t)
		if err != nil {
			return err
		}
		row.Category = category.Key()
		rows = append(rows, row)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category = ?", category.Key()).Delete(&schema.TokenMaster{}).Error; err != nil {
			return fmt.Errorf("failed to clear token master: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		batchSize := calculateSafeBatchSize(len(rows), tokenMasterFields)
		if err := tx.CreateInBatches(&rows, batchSize).Error; err != nil {
			return fmt.Errorf("failed to insert token master: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.InfoCtx(ctx, "Saved token master",
		zap.Int("tokens", len(rows)),
	)
	return nil
}
