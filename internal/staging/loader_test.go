package staging_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-nft-warehouse/internal/adapter"
	"github.com/feral-file/ff-nft-warehouse/internal/domain"
	"github.com/feral-file/ff-nft-warehouse/internal/logger"
	"github.com/feral-file/ff-nft-warehouse/internal/mocks"
	"github.com/feral-file/ff-nft-warehouse/internal/staging"
	"github.com/feral-file/ff-nft-warehouse/internal/store"
)

const (
	minter  = "0xde0b295669a9fd93d5f28d9ec85e40f4cb697bae"
	checked = "0xde0B295669a9FD93d5F28D9Ec85E40f4cb697BAe"
)

func setupLogger(t *testing.T) {
	t.Helper()
	err := logger.Initialize(logger.Config{Debug: true})
	require.NoError(t, err)
}

func ts(month time.Month, d int) time.Time {
	return time.Date(2024, month, d, 12, 0, 0, 0, time.UTC)
}

func sale(category domain.Category, token, seller, buyer string, at time.Time, usd float64) domain.Transaction {
	return domain.Transaction{
		Category:     category,
		MarketID:     "m1",
		CollectionID: "c1",
		TokenID:      token,
		Seller:       seller,
		Buyer:        buyer,
		Timestamp:    at,
		CryptoSymbol: "ETH",
		ValueCrypto:  usd / 1000,
		ValueUSD:     usd,
	}
}

type fixture struct {
	stage     string
	warehouse store.Warehouse
	tokens    store.TokenMasterStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	stage := filepath.Join(root, "stage")
	require.NoError(t, os.MkdirAll(filepath.Join(stage, "trx"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(stage, "token"), 0o755))

	blobs := store.NewLocalBlobStore(filepath.Join(root, "warehouse"), adapter.NewFileSystem())
	return fixture{
		stage:     stage,
		warehouse: store.NewParquetWarehouse(blobs),
		tokens:    store.NewParquetTokenMasterStore(blobs),
	}
}

func (f fixture) stageTransactions(t *testing.T, name string, txs ...domain.Transaction) {
	t.Helper()
	require.NoError(t, store.WriteTransactionChunk(filepath.Join(f.stage, "trx", name), txs))
}

func (f fixture) stageTokens(t *testing.T, name string, tokens ...domain.Token) {
	t.Helper()
	require.NoError(t, store.WriteTokenChunk(filepath.Join(f.stage, "token", name), tokens))
}

func (f fixture) loader(categories ...domain.Category) staging.Loader {
	return staging.NewLoader(adapter.NewFileSystem(), f.warehouse, f.tokens, staging.Options{
		StageDir:   f.stage,
		Workers:    2,
		Categories: categories,
	})
}

func TestLoader_Load(t *testing.T) {
	setupLogger(t)
	ctx := context.Background()
	f := newFixture(t)

	mint := sale("Art", "t1", minter, "0xBuyer", ts(time.January, 3), 100)
	mint.Duplicate = true
	resale := sale("art", "t1", "0xBuyer", "0xOther", ts(time.February, 9), 250)
	game := sale("games", "g1", "x", "y", ts(time.January, 20), 40)

	f.stageTransactions(t, "part-000.parquet", mint, resale)
	f.stageTransactions(t, "part-001.parquet", mint, game)
	f.stageTokens(t, "part-000.parquet", domain.Token{
		Category:     "art",
		CollectionID: "c1",
		TokenID:      "t1",
		Name:         "Piece",
	})
	require.NoError(t, os.WriteFile(filepath.Join(f.stage, "trx", "README.txt"), []byte("ignored"), 0o600))

	result, err := f.loader().Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Chunks)
	assert.Equal(t, 4, result.Transactions)
	assert.Equal(t, 3, result.Appended)
	assert.Equal(t, 3, result.Partitions)
	assert.Equal(t, 2, result.Tokens)

	jan, err := f.warehouse.ReadTransactions(ctx, "art", 202401)
	require.NoError(t, err)
	require.Len(t, jan, 1)
	assert.Equal(t, domain.Category("art"), jan[0].Category)
	assert.Equal(t, checked, jan[0].Seller)
	assert.False(t, jan[0].Duplicate)

	feb, err := f.warehouse.ReadTransactions(ctx, "art", 202402)
	require.NoError(t, err)
	require.Len(t, feb, 1)
	assert.Equal(t, 250.0, feb[0].ValueUSD)

	games, err := f.warehouse.ReadTransactions(ctx, "games", 202401)
	require.NoError(t, err)
	require.Len(t, games, 1)

	tokens, err := f.tokens.Load(ctx, "art")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "Piece", tokens[0].Name)
	assert.Equal(t, checked, tokens[0].MinterAddress)
	assert.Equal(t, ts(time.January, 3), tokens[0].MintDate)
	assert.Equal(t, ts(time.February, 9), tokens[0].LatestSaleDate)
	assert.Equal(t, 250.0, tokens[0].LatestPriceUSD)

	again, err := f.loader().Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Appended)
	assert.Equal(t, 0, again.Partitions)
	assert.Equal(t, 2, again.Tokens)
}

func TestLoader_Load_AppendsToExistingPartition(t *testing.T) {
	setupLogger(t)
	ctx := context.Background()
	f := newFixture(t)

	first := sale("art", "t1", "a", "b", ts(time.January, 3), 100)
	require.NoError(t, f.warehouse.WriteTransactions(ctx, "art", 202401, []domain.Transaction{first}))

	f.stageTransactions(t, "part-000.parquet", first, sale("art", "t0", "c", "d", ts(time.January, 5), 70))

	result, err := f.loader().Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Appended)

	jan, err := f.warehouse.ReadTransactions(ctx, "art", 202401)
	require.NoError(t, err)
	require.Len(t, jan, 2)
	assert.Equal(t, "t0", jan[0].TokenID)
	assert.Equal(t, "t1", jan[1].TokenID)
}

func TestLoader_Load_WritesEmptyMonthsInsideStagedSpan(t *testing.T) {
	setupLogger(t)
	ctx := context.Background()
	f := newFixture(t)

	kept := sale("art", "t9", "e", "f", ts(time.March, 1), 10)
	require.NoError(t, f.warehouse.WriteTransactions(ctx, "art", 202403, []domain.Transaction{kept}))

	f.stageTransactions(t, "part-000.parquet",
		sale("art", "t1", "a", "b", ts(time.January, 3), 100),
		sale("art", "t1", "b", "c", ts(time.April, 7), 120),
		sale("games", "g1", "x", "y", ts(time.January, 20), 40),
	)

	result, err := f.loader().Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.EmptyPartitions)

	feb, err := f.warehouse.ReadTransactions(ctx, "art", 202402)
	require.NoError(t, err)
	assert.Empty(t, feb)

	mar, err := f.warehouse.ReadTransactions(ctx, "art", 202403)
	require.NoError(t, err)
	require.Len(t, mar, 1)
	assert.Equal(t, "t9", mar[0].TokenID)

	months, err := f.warehouse.ListMonats(ctx, store.FamilyTransactions, "art")
	require.NoError(t, err)
	assert.Equal(t, []domain.Monat{202401, 202402, 202403, 202404}, months)

	months, err = f.warehouse.ListMonats(ctx, store.FamilyTransactions, "games")
	require.NoError(t, err)
	assert.Equal(t, []domain.Monat{202401}, months)
}

func TestLoader_Load_DedupesOnTransactionIdentity(t *testing.T) {
	setupLogger(t)
	ctx := context.Background()
	f := newFixture(t)

	first := sale("art", "t1", "a", "b", ts(time.January, 3), 100)
	relisted := first
	relisted.MarketID = "m2"
	relisted.ValueUSD = 101
	later := sale("art", "t1", "a", "b", ts(time.January, 3).Add(time.Millisecond), 100)

	f.stageTransactions(t, "part-000.parquet", first, relisted, later)

	result, err := f.loader().Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Transactions)
	assert.Equal(t, 2, result.Appended)

	jan, err := f.warehouse.ReadTransactions(ctx, "art", 202401)
	require.NoError(t, err)
	require.Len(t, jan, 2)
	assert.Equal(t, "m1", jan[0].MarketID)
	assert.Equal(t, 100.0, jan[0].ValueUSD)
}

func TestLoader_Load_FiltersCategories(t *testing.T) {
	setupLogger(t)
	ctx := context.Background()
	f := newFixture(t)

	f.stageTransactions(t, "part-000.parquet",
		sale("art", "t1", "a", "b", ts(time.January, 3), 100),
		sale("games", "g1", "x", "y", ts(time.January, 20), 40),
	)

	result, err := f.loader("Games").Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Transactions)

	exists, err := f.warehouse.Exists(ctx, store.FamilyTransactions, "art", 202401)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = f.warehouse.Exists(ctx, store.FamilyTransactions, "games", 202401)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLoader_Load_EmptyStage(t *testing.T) {
	setupLogger(t)

	f := newFixture(t)
	l := staging.NewLoader(adapter.NewFileSystem(), f.warehouse, f.tokens, staging.Options{
		StageDir: filepath.Join(t.TempDir(), "missing"),
	})

	result, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, staging.Result{}, result)
}

func TestLoader_Load_BadChunk(t *testing.T) {
	setupLogger(t)

	f := newFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.stage, "trx", "part-000.parquet"), []byte("not parquet"), 0o600))

	_, err := f.loader().Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMalformedPartition)
}

func TestLoader_Load_StoreErrors(t *testing.T) {
	setupLogger(t)
	boom := errors.New("boom")

	tests := []struct {
		name  string
		setup func(wh *mocks.MockWarehouse, tokens *mocks.MockTokenMasterStore)
		extra []domain.Transaction
	}{
		{
			name: "partition read fails",
			setup: func(wh *mocks.MockWarehouse, tokens *mocks.MockTokenMasterStore) {
				wh.EXPECT().ReadTransactions(gomock.Any(), domain.Category("art"), domain.Monat(202401)).Return(nil, boom)
			},
		},
		{
			name: "partition write fails",
			setup: func(wh *mocks.MockWarehouse, tokens *mocks.MockTokenMasterStore) {
				wh.EXPECT().ReadTransactions(gomock.Any(), domain.Category("art"), domain.Monat(202401)).Return(nil, domain.ErrTableNotFound)
				wh.EXPECT().WriteTransactions(gomock.Any(), domain.Category("art"), domain.Monat(202401), gomock.Len(1)).Return(boom)
			},
		},
		{
			name: "empty month write fails",
			setup: func(wh *mocks.MockWarehouse, tokens *mocks.MockTokenMasterStore) {
				for _, m := range []domain.Monat{202401, 202403} {
					wh.EXPECT().ReadTransactions(gomock.Any(), domain.Category("art"), m).Return(nil, domain.ErrTableNotFound)
					wh.EXPECT().WriteTransactions(gomock.Any(), domain.Category("art"), m, gomock.Len(1)).Return(nil)
				}
				wh.EXPECT().Exists(gomock.Any(), store.FamilyTransactions, domain.Category("art"), domain.Monat(202402)).Return(false, nil)
				wh.EXPECT().WriteTransactions(gomock.Any(), domain.Category("art"), domain.Monat(202402), gomock.Len(0)).Return(boom)
			},
			extra: []domain.Transaction{sale("art", "t1", "b", "c", ts(time.March, 4), 90)},
		},
		{
			name: "token master save fails",
			setup: func(wh *mocks.MockWarehouse, tokens *mocks.MockTokenMasterStore) {
				wh.EXPECT().ReadTransactions(gomock.Any(), domain.Category("art"), domain.Monat(202401)).Return(nil, domain.ErrTableNotFound)
				wh.EXPECT().WriteTransactions(gomock.Any(), domain.Category("art"), domain.Monat(202401), gomock.Len(1)).Return(nil)
				tokens.EXPECT().Load(gomock.Any(), domain.Category("art")).Return(nil, nil)
				tokens.EXPECT().Save(gomock.Any(), domain.Category("art"), gomock.Len(1)).Return(boom)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			f := newFixture(t)
			staged := append([]domain.Transaction{sale("art", "t1", "a", "b", ts(time.January, 3), 100)}, tt.extra...)
			f.stageTransactions(t, "part-000.parquet", staged...)

			wh := mocks.NewMockWarehouse(ctrl)
			tokens := mocks.NewMockTokenMasterStore(ctrl)
			tt.setup(wh, tokens)

			l := staging.NewLoader(adapter.NewFileSystem(), wh, tokens, staging.Options{StageDir: f.stage})
			_, err := l.Load(context.Background())
			require.ErrorIs(t, err, boom)
		})
	}
}
