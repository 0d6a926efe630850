package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/feral-file/ff-nft-warehouse/internal/adapter"
	"github.com/feral-file/ff-nft-warehouse/internal/domain"
)

// Backend names
const (
	BackendLocal    = "local"
	BackendS3       = "s3"
	BackendParquet  = "parquet"
	BackendPostgres = "postgres"
)

// Backends selects the blob store and the token master store
type Backends struct {
	// Storage is BackendLocal or BackendS3
	Storage string
	// Root is the directory of the local blob store
	Root string
	S3   S3Options
	// TokenMaster is BackendParquet or BackendPostgres
	TokenMaster string
	// DB is required by the postgres token master
	DB *gorm.DB
}

// Open builds the warehouse and token master stores of the backends
func Open(ctx context.Context, b Backends) (Warehouse, TokenMasterStore, error) {
	var blobs BlobStore
	switch b.Storage {
	case BackendLocal:
		blobs = NewLocalBlobStore(b.Root, adapter.NewFileSystem())
	case BackendS3:
		client, err := NewS3Client(ctx, b.S3)
		if err != nil {
			return nil, nil, err
		}
		blobs = NewS3BlobStore(client, b.S3)
	default:
		return nil, nil, fmt.Errorf("%w: %q", domain.ErrUnknownBackend, b.Storage)
	}

	var tokens TokenMasterStore
	switch b.TokenMaster {
	case BackendParquet:
		tokens = NewParquetTokenMasterStore(blobs)
	case BackendPostgres:
		if b.DB == nil {
			return nil, nil, fmt.Errorf("%w: postgres token master without a database", domain.ErrUnknownBackend)
		}
		if err := Migrate(b.DB); err != nil {
			return nil, nil, err
		}
		tokens = NewPGTokenMasterStore(b.DB)
	default:
		return nil, nil, fmt.Errorf("%w: %q", domain.ErrUnknownBackend, b.TokenMaster)
	}

	return NewParquetWarehouse(blobs), tokens, nil
}
