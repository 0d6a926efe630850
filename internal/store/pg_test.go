package store_test

import (
	"context"
	"fmt"
	"math"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/feral-file/ff-nft-warehouse/internal/domain"
	"github.com/feral-file/ff-nft-warehouse/internal/store"
)

var (
	testDB      *gorm.DB
	pgContainer *postgres.PostgresContainer
)

// TestMain sets up the test database before running tests
func TestMain(m *testing.M) {
	ctx := context.Background()

	// Check if we should use an external database (for CI or local development)
	dbHost := os.Getenv("TEST_DB_HOST")
	dbPort := os.Getenv("TEST_DB_PORT")
	dbUser := os.Getenv("TEST_DB_USER")
	dbPassword := os.Getenv("TEST_DB_PASSWORD")
	dbName := os.Getenv("TEST_DB_NAME")

	var dsn string
	var err error

	if dbHost != "" {
		if dbPort == "" {
			dbPort = "5432"
		}
		if dbUser == "" {
			dbUser = "postgres"
		}
		if dbPassword == "" {
			dbPassword = "postgres"
		}
		if dbName == "" {
			dbName = "test_db"
		}

		dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			dbHost, dbPort, dbUser, dbPassword, dbName)

		fmt.Printf("Using external database: %s:%s/%s\n", dbHost, dbPort, dbName)
	} else {
		// Start a PostgreSQL container for testing
		pgContainer, err = postgres.Run(ctx,
			"postgres:18-alpine",
			postgres.WithDatabase("test_db"),
			postgres.WithUsername("postgres"),
			postgres.WithPassword("postgres"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
		if err != nil {
			fmt.Printf("Failed to start PostgreSQL container, skipping database tests: %v\n", err)
			os.Exit(m.Run())
		}

		dsn, err = pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			fmt.Printf("Failed to get connection string: %v\n", err)
			terminateContainer(ctx)
			os.Exit(1)
		}

		fmt.Printf("Started PostgreSQL container\n")
	}

	testDB, err = gorm.Open(pgdriver.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		terminateContainer(ctx)
		os.Exit(1)
	}

	if err := store.Migrate(testDB); err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		terminateContainer(ctx)
		os.Exit(1)
	}

	code := m.Run()

	terminateContainer(ctx)
	os.Exit(code)
}

func terminateContainer(ctx context.Context) {
	if pgContainer == nil {
		return
	}
	if err := pgContainer.Terminate(ctx); err != nil {
		fmt.Printf("Failed to terminate PostgreSQL container: %v\n", err)
	}
}

// initPGTestDB returns a token master store bound to a transaction that is rolled back after the test
func initPGTestDB(t *testing.T) store.TokenMasterStore {
	if testDB == nil {
		t.Skip("test database not available")
	}

	tx := testDB.Begin()
	require.NotNil(t, tx)
	require.NoError(t, tx.Error)

	t.Cleanup(func() {
		tx.Rollback()
	})

	return store.NewPGTokenMasterStore(tx)
}

func TestPGTokenMasterStore_SaveLoad(t *testing.T) {
	s := initPGTestDB(t)
	ctx := context.Background()

	tokens := []domain.Token{
		{
			Category: "Art", CollectionID: "c1", TokenID: "t2", Name: "Two", Description: "second",
			MintPriceUSD: math.NaN(), MintPriceCrypto: math.NaN(),
			LatestSaleCrypto: "ETH", LatestSaleDate: time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC),
			LatestPriceUSD: 250, LatestPriceCrypto: 0.1,
		},
		{
			Category: "Art", CollectionID: "c1", TokenID: "t1", Name: "One", CollectionName: "Coll",
			MintCrypto: "ETH", MintPriceUSD: 100, MintPriceCrypto: 0.05, MinterAddress: "alice",
			MintDate:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			LatestPriceUSD: math.NaN(), LatestPriceCrypto: math.NaN(),
		},
	}
	require.NoError(t, s.Save(ctx, "Art", tokens))

	got, err := s.Load(ctx, "art")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "t1", got[0].TokenID)
	assert.Equal(t, "One", got[0].Name)
	assert.Equal(t, "Coll", got[0].CollectionName)
	assert.Equal(t, 100.0, got[0].MintPriceUSD)
	assert.True(t, got[0].MintDate.Equal(tokens[1].MintDate))
	assert.True(t, math.IsNaN(got[0].LatestPriceUSD))
	assert.True(t, got[0].LatestSaleDate.IsZero())

	assert.Equal(t, "t2", got[1].TokenID)
	assert.True(t, math.IsNaN(got[1].MintPriceUSD))
	assert.Equal(t, 250.0, got[1].LatestPriceUSD)
}

func TestPGTokenMasterStore_SaveReplacesCategory(t *testing.T) {
	s := initPGTestDB(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "art", []domain.Token{{CollectionID: "c1", TokenID: "t1"}, {CollectionID: "c1", TokenID: "t2"}}))
	require.NoError(t, s.Save(ctx, "games", []domain.Token{{CollectionID: "g1", TokenID: "t1"}}))
	require.NoError(t, s.Save(ctx, "art", []domain.Token{{CollectionID: "c2", TokenID: "t9"}}))

	art, err := s.Load(ctx, "art")
	require.NoError(t, err)
	require.Len(t, art, 1)
	assert.Equal(t, "c2", art[0].CollectionID)
	assert.Equal(t, domain.Category("art"), art[0].Category)

	games, err := s.Load(ctx, "games")
	require.NoError(t, err)
	assert.Len(t, games, 1)
}

func TestNormalizeConnectionPoolSettings(t *testing.T) {
	tests := []struct {
		name                       string
		maxOpen, maxIdle           int
		lifetime, idleTime         time.Duration
		wantOpen, wantIdle         int
		wantLifetime, wantIdleTime time.Duration
	}{
		{"defaults", 0, 0, 0, 0, 20, 5, 5 * time.Minute, 10 * time.Minute},
		{"idle clamped to open", 4, 10, time.Minute, time.Minute, 4, 4, time.Minute, time.Minute},
		{"explicit values kept", 50, 10, time.Hour, time.Hour, 50, 10, time.Hour, time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			open, idle, lifetime, idleTime := store.NormalizeConnectionPoolSettings(tt.maxOpen, tt.maxIdle, tt.lifetime, tt.idleTime)
			assert.Equal(t, tt.wantOpen, open)
			assert.Equal(t, tt.wantIdle, idle)
			assert.Equal(t, tt.wantLifetime, lifetime)
			assert.Equal(t, tt.wantIdleTime, idleTime)
		})
	}
}
