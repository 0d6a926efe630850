package store

import (
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"

	"github.com/feral-file/ff-nft-warehouse/internal/domain"
	"github.com/feral-file/ff-nft-warehouse/internal/store/schema"
)

// ReadTransactionChunk reads a staged transaction chunk from the local filesystem
func ReadTransactionChunk(path string) ([]domain.Transaction, error) {
	return readChunk(path, schema.TransactionRecord.Domain)
}

// ReadTokenChunk reads a staged token chunk from the local filesystem
func ReadTokenChunk(path string) ([]domain.Token, error) {
	return readChunk(path, schema.TokenRecord.Domain)
}

// WriteTransactionChunk writes a staged transaction chunk to the local filesystem
func WriteTransactionChunk(path string, txs []domain.Transaction) error {
	return writeChunk(path, txs, schema.NewTransactionRecord)
}

// WriteTokenChunk writes a staged token chunk to the local filesystem
func WriteTokenChunk(path string, tokens []domain.Token) error {
	return writeChunk(path, tokens, schema.NewTokenRecord)
}

func readChunk[R any, T any](path string, convert func(R) T) ([]T, error) {
	pf, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open chunk %s: %w", path, err)
	}
	defer closeChunk(pf)

	records, err := readParquet[R](pf)
	if err != nil {
		return nil, fmt.Errorf("failed to read chunk %s: %w", path, err)
	}
	out := make([]T, len(records))
	for i, r := range records {
		out[i] = convert(r)
	}
	return out, nil
}

func writeChunk[T any, R any](path string, rows []T, convert func(T) R) error {
	pf, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("failed to create chunk %s: %w", path, err)
	}
	defer closeChunk(pf)

	records := make([]R, len(rows))
	for i, r := range rows {
		records[i] = convert(r)
	}
	if err := writeParquet(pf, records); err != nil {
		return fmt.Errorf("failed to write chunk %s: %w", path, err)
	}
	return nil
}

func closeChunk(pf source.ParquetFile) {
	_ = pf.Close()
}
