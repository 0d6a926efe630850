package store

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/feral-file/ff-nft-warehouse/internal/domain"
	"github.com/feral-file/ff-nft-warehouse/internal/store/schema"
)

// Family is a monthly table family
type Family string

const (
	FamilyTransactions Family = "transactions"
	FamilyHolderLedger Family = "holder_ledger"
	FamilyKPI          Family = "nft_kpi"
	FamilyOwnerLedger  Family = "collection_owners"
	FamilyTokenLedger  Family = "collection_tokens"
	FamilyTimeSeries   Family = "collection_timeseries"
)

const tableExtension = ".parquet"

// filePrefix returns the file name prefix of the family's monthly tables
func (f Family) filePrefix() string {
	switch f {
	case FamilyTransactions:
		return "trx"
	case FamilyHolderLedger:
		return "nftuser"
	case FamilyKPI:
		return "nftkpi"
	case FamilyOwnerLedger:
		return "distcolluser"
	case FamilyTokenLedger:
		return "distcolltoken"
	case FamilyTimeSeries:
		return "coll_ts"
	default:
		return string(f)
	}
}

// TableKey returns the blob key of a monthly table
func TableKey(family Family, category domain.Category, monat domain.Monat) string {
	return path.Join(string(family), category.Key(), fmt.Sprintf("%s_%s%s", family.filePrefix(), monat, tableExtension))
}

// ParseMonat extracts the yyyymm suffix of a monthly table file name
func ParseMonat(name string) (domain.Monat, bool) {
	base := strings.TrimSuffix(path.Base(name), tableExtension)
	idx := strings.LastIndex(base, "_")
	if idx < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(base[idx+1:])
	if err != nil {
		return 0, false
	}
	m := domain.Monat(n)
	return m, m.Valid()
}

// Warehouse reads and writes the monthly table families.
// Every write replaces the whole (family, category, month) table.
//
//go:generate mockgen -source=tables.go -destination=../mocks/warehouse.go -package=mocks -mock_names=Warehouse=MockWarehouse
type Warehouse interface {
	// ListMonats returns the ascending months that have a table in the family
	ListMonats(ctx context.Context, family Family, category domain.Category) ([]domain.Monat, error)
	// Exists reports whether the month's table exists
	Exists(ctx context.Context, family Family, category domain.Category, monat domain.Monat) (bool, error)

	ReadTransactions(ctx context.Context, category domain.Category, monat domain.Monat) ([]domain.Transaction, error)
	WriteTransactions(ctx context.Context, category domain.Category, monat domain.Monat, txs []domain.Transaction) error

	ReadHolderLedger(ctx context.Context, category domain.Category, monat domain.Monat) ([]domain.HolderEntry, error)
	WriteHolderLedger(ctx context.Context, category domain.Category, monat domain.Monat, entries []domain.HolderEntry) error

	ReadKPI(ctx context.Context, category domain.Category, monat domain.Monat) ([]domain.KPIRow, error)
	WriteKPI(ctx context.Context, category domain.Category, monat domain.Monat, rows []domain.KPIRow) error

	ReadOwnerLedger(ctx context.Context, category domain.Category, monat domain.Monat) ([]domain.OwnerFirstSeen, error)
	WriteOwnerLedger(ctx context.Context, category domain.Category, monat domain.Monat, owners []domain.OwnerFirstSeen) error

	ReadTokenLedger(ctx context.Context, category domain.Category, monat domain.Monat) ([]domain.TokenFirstSeen, error)
	WriteTokenLedger(ctx context.Context, category domain.Category, monat domain.Monat, tokens []domain.TokenFirstSeen) error

	ReadTimeSeries(ctx context.Context, category domain.Category, monat domain.Monat) ([]domain.CollectionDay, error)
	WriteTimeSeries(ctx context.Context, category domain.Category, monat domain.Monat, days []domain.CollectionDay) error
}

type parquetWarehouse struct {
	blobs BlobStore
}

// NewParquetWarehouse creates a warehouse that keeps every table as a parquet object
func NewParquetWarehouse(blobs BlobStore) Warehouse {
	return &parquetWarehouse{blobs: blobs}
}

// ListMonats returns the ascending months that have a table in the family
func (w *parquetWarehouse) ListMonats(ctx context.Context, family Family, category domain.Category) ([]domain.Monat, error) {
	keys, err := w.blobs.List(ctx, path.Join(string(family), category.Key()))
	if err != nil {
		return nil, err
	}

	var months []domain.Monat
	prefix := family.filePrefix() + "_"
	for _, k := range keys {
		name := path.Base(k)
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, tableExtension) {
			continue
		}
		if m, ok := ParseMonat(name); ok {
			months = append(months, m)
		}
	}
	return months, nil
}

// Exists reports whether the month's table exists
func (w *parquetWarehouse) Exists(ctx context.Context, family Family, category domain.Category, monat domain.Monat) (bool, error) {
	return w.blobs.Exists(ctx, TableKey(family, category, monat))
}

func readTable[R any, T any](ctx context.Context, blobs BlobStore, key string, convert func(R) T) ([]T, error) {
	data, err := blobs.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	records, err := decodeParquet[R](data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	out := make([]T, len(records))
	for i, r := range records {
		out[i] = convert(r)
	}
	return out, nil
}

func writeTable[T any, R any](ctx context.Context, blobs BlobStore, key string, rows []T, convert func(T) R) error {
	records := make([]R, len(rows))
	for i, r := range rows {
		records[i] = convert(r)
	}
	data, err := encodeParquet(records)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return blobs.Put(ctx, key, data)
}

// ReadTransactions reads a transaction partition. Rows of another month make the partition malformed.
func (w *parquetWarehouse) ReadTransactions(ctx context.Context, category domain.Category, monat domain.Monat) ([]domain.Transaction, error) {
	txs, err := readTable(ctx, w.blobs, TableKey(FamilyTransactions, category, monat), schema.TransactionRecord.Domain)
	if err != nil {
		return nil, err
	}
	for _, tx := range txs {
		if tx.Monat() != monat {
			return nil, fmt.Errorf("%w: transaction at %s in partition %s", domain.ErrMalformedPartition, tx.Timestamp, monat)
		}
	}
	return txs, nil
}

// WriteTransactions replaces a transaction partition
func (w *parquetWarehouse) WriteTransactions(ctx context.Context, category domain.Category, monat domain.Monat, txs []domain.Transaction) error {
	for _, tx := range txs {
		if tx.Monat() != monat {
			return fmt.Errorf("%w: transaction at %s written to partition %s", domain.ErrMalformedPartition, tx.Timestamp, monat)
		}
	}
	return writeTable(ctx, w.blobs, TableKey(FamilyTransactions, category, monat), txs, schema.NewTransactionRecord)
}

func (w *parquetWarehouse) ReadHolderLedger(ctx context.Context, category domain.Category, monat domain.Monat) ([]domain.HolderEntry, error) {
	return readTable(ctx, w.blobs, TableKey(FamilyHolderLedger, category, monat), schema.HolderRecord.Domain)
}

func (w *parquetWarehouse) WriteHolderLedger(ctx context.Context, category domain.Category, monat domain.Monat, entries []domain.HolderEntry) error {
	return writeTable(ctx, w.blobs, TableKey(FamilyHolderLedger, category, monat), entries, schema.NewHolderRecord)
}

func (w *parquetWarehouse) ReadKPI(ctx context.Context, category domain.Category, monat domain.Monat) ([]domain.KPIRow, error) {
	return readTable(ctx, w.blobs, TableKey(FamilyKPI, category, monat), schema.KPIRecord.Domain)
}

func (w *parquetWarehouse) WriteKPI(ctx context.Context, category domain.Category, monat domain.Monat, rows []domain.KPIRow) error {
	return writeTable(ctx, w.blobs, TableKey(FamilyKPI, category, monat), rows, schema.NewKPIRecord)
}

func (w *parquetWarehouse) ReadOwnerLedger(ctx context.Context, category domain.Category, monat domain.Monat) ([]domain.OwnerFirstSeen, error) {
	return readTable(ctx, w.blobs, TableKey(FamilyOwnerLedger, category, monat), schema.OwnerRecord.Domain)
}

func (w *parquetWarehouse) WriteOwnerLedger(ctx context.Context, category domain.Category, monat domain.Monat, owners []domain.OwnerFirstSeen) error {
	return writeTable(ctx, w.blobs, TableKey(FamilyOwnerLedger, category, monat), owners, schema.NewOwnerRecord)
}

func (w *parquetWarehouse) ReadTokenLedger(ctx context.Context, category domain.Category, monat domain.Monat) ([]domain.TokenFirstSeen, error) {
	return readTable(ctx, w.blobs, TableKey(FamilyTokenLedger, category, monat), schema.TokenSeenRecord.Domain)
}

func (w *parquetWarehouse) WriteTokenLedger(ctx context.Context, category domain.Category, monat domain.Monat, tokens []domain.TokenFirstSeen) error {
	return writeTable(ctx, w.blobs, TableKey(FamilyTokenLedger, category, monat), tokens, schema.NewTokenSeenRecord)
}

func (w *parquetWarehouse) ReadTimeSeries(ctx context.Context, category domain.Category, monat domain.Monat) ([]domain.CollectionDay, error) {
	return readTable(ctx, w.blobs, TableKey(FamilyTimeSeries, category, monat), schema.CollectionDayRecord.Domain)
}

func (w *parquetWarehouse) WriteTimeSeries(ctx context.Context, category domain.Category, monat domain.Monat, days []domain.CollectionDay) error {
	return writeTable(ctx, w.blobs, TableKey(FamilyTimeSeries, category, monat), days, schema.NewCollectionDayRecord)
}

// IsNotFound reports whether err means the table does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrTableNotFound)
}
