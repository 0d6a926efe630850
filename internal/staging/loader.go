// Package staging loads staged transaction and token chunks into the warehouse.
package staging

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-nft-warehouse/internal/adapter"
	"github.com/feral-file/ff-nft-warehouse/internal/domain"
	"github.com/feral-file/ff-nft-warehouse/internal/logger"
	"github.com/feral-file/ff-nft-warehouse/internal/master"
	"github.com/feral-file/ff-nft-warehouse/internal/period"
	"github.com/feral-file/ff-nft-warehouse/internal/store"
)

const (
	stageStep      = "stage"
	transactionDir = "trx"
	tokenDir       = "token"
	chunkExtension = ".parquet"
)

// Options configures the stage loader
type Options struct {
	// StageDir holds the trx/ and token/ chunk directories
	StageDir string
	// Workers is the number of chunks read in parallel
	Workers int
	// Categories restricts the load to these categories, all when empty
	Categories []domain.Category
}

// Result summarizes a load
type Result struct {
	Chunks       int
	Transactions int
	Appended     int
	Partitions   int
	Tokens       int
	// EmptyPartitions counts months inside a staged span that had no sales
	EmptyPartitions int
}

// Loader moves staged chunks into the monthly transaction partitions and the token master
//
//go:generate mockgen -source=loader.go -destination=../mocks/stage_loader.go -package=mocks -mock_names=Loader=MockLoader
type Loader interface {
	// Load reads every staged chunk and appends the new rows to the warehouse
	Load(ctx context.Context) (Result, error)
}

type loader struct {
	fs        adapter.FileSystem
	warehouse store.Warehouse
	tokens    store.TokenMasterStore
	opts      Options
}

// NewLoader creates a stage loader
func NewLoader(filesystem adapter.FileSystem, warehouse store.Warehouse, tokens store.TokenMasterStore, opts Options) Loader {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &loader{
		fs:        filesystem,
		warehouse: warehouse,
		tokens:    tokens,
		opts:      opts,
	}
}

func (l *loader) Load(ctx context.Context) (Result, error) {
	var result Result

	txFiles, err := l.listChunks(transactionDir)
	if err != nil {
		return result, err
	}
	tokenFiles, err := l.listChunks(tokenDir)
	if err != nil {
		return result, err
	}
	result.Chunks = len(txFiles) + len(tokenFiles)

	logger.InfoCtx(ctx, "Loading stage chunks",
		zap.String("stageDir", l.opts.StageDir),
		zap.Int("transactionChunks", len(txFiles)),
		zap.Int("tokenChunks", len(tokenFiles)),
		zap.Int("workers", l.opts.Workers),
	)

	txChunks, err := readAll(ctx, l.opts.Workers, txFiles, store.ReadTransactionChunk)
	if err != nil {
		return result, err
	}
	tokenChunks, err := readAll(ctx, l.opts.Workers, tokenFiles, store.ReadTokenChunk)
	if err != nil {
		return result, err
	}

	txs := make(map[domain.Category][]domain.Transaction)
	for _, chunk := range txChunks {
		for _, tx := range chunk {
			tx = normalizeTransaction(tx)
			if !l.wanted(tx.Category) {
				continue
			}
			txs[tx.Category] = append(txs[tx.Category], tx)
			result.Transactions++
		}
	}

	tokens := make(map[domain.Category][]domain.Token)
	for _, chunk := range tokenChunks {
		for _, t := range chunk {
			t = normalizeToken(t)
			if !l.wanted(t.Category) {
				continue
			}
			tokens[t.Category] = append(tokens[t.Category], t)
		}
	}

	for _, category := range sortedCategories(txs, tokens) {
		catCtx := logger.WithStep(ctx, category.Key(), stageStep, "")
		months, appended, partitions, err := l.appendTransactions(catCtx, category, txs[category])
		if err != nil {
			return result, err
		}
		result.Appended += appended
		result.Partitions += partitions

		empty, err := l.writeEmptyMonths(catCtx, category, months)
		if err != nil {
			return result, err
		}
		result.EmptyPartitions += empty

		n, err := l.mergeTokens(catCtx, category, txs[category], tokens[category])
		if err != nil {
			return result, err
		}
		result.Tokens += n
	}

	logger.InfoCtx(ctx, "Loaded stage chunks",
		zap.Int("transactions", result.Transactions),
		zap.Int("appended", result.Appended),
		zap.Int("partitions", result.Partitions),
		zap.Int("emptyPartitions", result.EmptyPartitions),
		zap.Int("tokens", result.Tokens),
	)
	return result, nil
}

// listChunks returns the chunk files of a stage directory in name order
func (l *loader) listChunks(dir string) ([]string, error) {
	root := filepath.Join(l.opts.StageDir, dir)
	entries, err := l.fs.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", root, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), chunkExtension) {
			continue
		}
		files = append(files, filepath.Join(root, e.Name()))
	}
	slices.Sort(files)
	return files, nil
}

// readAll reads the chunks on a worker pool and returns them in file order
func readAll[T any](ctx context.Context, workers int, files []string, read func(string) ([]T, error)) ([][]T, error) {
	if len(files) == 0 {
		return nil, nil
	}

	pool := pond.NewResultPool[[]T](workers, pond.WithContext(ctx))
	defer pool.StopAndWait()

	group := pool.NewGroup()
	for _, f := range files {
		group.SubmitErr(func() ([]T, error) {
			rows, err := read(f)
			if err != nil {
				return nil, err
			}
			logger.DebugCtx(ctx, "Read stage chunk", zap.String("file", f), zap.Int("rows", len(rows)))
			return rows, nil
		})
	}

	chunks, err := group.Wait()
	if err != nil {
		return nil, fmt.Errorf("failed to read stage chunks: %w", err)
	}
	return chunks, nil
}

func (l *loader) wanted(category domain.Category) bool {
	if !category.Valid() {
		return false
	}
	if len(l.opts.Categories) == 0 {
		return true
	}
	return slices.ContainsFunc(l.opts.Categories, func(c domain.Category) bool {
		return c.Key() == category.Key()
	})
}

// appendTransactions writes the new rows of each month into its partition and returns
// the staged months in order. Rows already present in the partition are skipped.
func (l *loader) appendTransactions(ctx context.Context, category domain.Category, txs []domain.Transaction) ([]domain.Monat, int, int, error) {
	byMonth := make(map[domain.Monat][]domain.Transaction)
	for _, tx := range txs {
		byMonth[tx.Monat()] = append(byMonth[tx.Monat()], tx)
	}

	months := make([]domain.Monat, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	slices.Sort(months)

	var appended, partitions int
	for _, m := range months {
		existing, err := l.warehouse.ReadTransactions(ctx, category, m)
		if err != nil && !store.IsNotFound(err) {
			return nil, 0, 0, fmt.Errorf("failed to read transactions %s: %w", m, err)
		}

		seen := make(map[domain.TransactionKey]bool, len(existing))
		for _, tx := range existing {
			seen[tx.Key()] = true
		}
		rows := existing
		var added int
		for _, tx := range byMonth[m] {
			if seen[tx.Key()] {
				continue
			}
			seen[tx.Key()] = true
			rows = append(rows, tx)
			added++
		}
		if added == 0 {
			continue
		}

		sortTransactions(rows)
		if err := l.warehouse.WriteTransactions(ctx, category, m, rows); err != nil {
			return nil, 0, 0, fmt.Errorf("failed to write transactions %s: %w", m, err)
		}
		appended += added
		partitions++

		logger.InfoCtx(logger.WithStep(ctx, "", "", m.String()), "Appended staged transactions",
			zap.Int("appended", added),
			zap.Int("rows", len(rows)),
		)
	}
	return months, appended, partitions, nil
}

// writeEmptyMonths writes an empty partition for every month strictly inside the staged
// span that had no staged sales and no partition yet. The stage extract covers its span,
// so those months are known to have no sales.
func (l *loader) writeEmptyMonths(ctx context.Context, category domain.Category, staged []domain.Monat) (int, error) {
	if len(staged) < 2 {
		return 0, nil
	}
	span, err := period.MonthRange(staged[0], staged[len(staged)-1], 0)
	if err != nil {
		return 0, err
	}

	var written int
	for _, m := range span {
		if slices.Contains(staged, m) {
			continue
		}
		exists, err := l.warehouse.Exists(ctx, store.FamilyTransactions, category, m)
		if err != nil {
			return written, fmt.Errorf("failed to check transactions %s: %w", m, err)
		}
		if exists {
			continue
		}
		if err := l.warehouse.WriteTransactions(ctx, category, m, []domain.Transaction{}); err != nil {
			return written, fmt.Errorf("failed to write empty transactions %s: %w", m, err)
		}
		written++
		logger.WarnCtx(logger.WithStep(ctx, "", "", m.String()), "No staged sales in month, wrote an empty partition")
	}
	return written, nil
}

// mergeTokens folds the derived and staged token records into the category's master
func (l *loader) mergeTokens(ctx context.Context, category domain.Category, txs []domain.Transaction, staged []domain.Token) (int, error) {
	existing, err := l.tokens.Load(ctx, category)
	if err != nil {
		return 0, fmt.Errorf("failed to load token master: %w", err)
	}

	incoming := append(master.DeriveFromTransactions(txs), staged...)
	merged := master.Merge(existing, incoming)
	if err := l.tokens.Save(ctx, category, merged); err != nil {
		return 0, fmt.Errorf("failed to save token master: %w", err)
	}

	logger.InfoCtx(ctx, "Merged token master",
		zap.Int("existing", len(existing)),
		zap.Int("incoming", len(incoming)),
		zap.Int("tokens", len(merged)),
	)
	return len(merged), nil
}

func normalizeTransaction(tx domain.Transaction) domain.Transaction {
	tx.Category = domain.Category(tx.Category.Key())
	tx.Seller = domain.NormalizeAddress(tx.Seller)
	tx.Buyer = domain.NormalizeAddress(tx.Buyer)
	tx.Duplicate = false
	return tx
}

func normalizeToken(t domain.Token) domain.Token {
	t.Category = domain.Category(t.Category.Key())
	t.MinterAddress = domain.NormalizeAddress(t.MinterAddress)
	return t
}

func sortedCategories(txs map[domain.Category][]domain.Transaction, tokens map[domain.Category][]domain.Token) []domain.Category {
	var categories []domain.Category
	for c := range txs {
		categories = append(categories, c)
	}
	for c := range tokens {
		if _, ok := txs[c]; !ok {
			categories = append(categories, c)
		}
	}
	slices.Sort(categories)
	return categories
}

func sortTransactions(txs []domain.Transaction) {
	slices.SortStableFunc(txs, func(a, b domain.Transaction) int {
		return cmp.Or(
			cmp.Compare(a.CollectionID, b.CollectionID),
			cmp.Compare(a.TokenID, b.TokenID),
			a.Timestamp.Compare(b.Timestamp),
		)
	})
}
