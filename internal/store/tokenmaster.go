package store

import (
	"context"
	"fmt"
	"path"

	"github.com/feral-file/ff-nft-warehouse/internal/domain"
	"github.com/feral-file/ff-nft-warehouse/internal/store/schema"
)

const tokenMasterDir = "tokens"

// TokenMasterStore persists the token master of each category
//
//go:generate mockgen -source=tokenmaster.go -destination=../mocks/token_master.go -package=mocks -mock_names=TokenMasterStore=MockTokenMasterStore
type TokenMasterStore interface {
	// Load returns every token of the category, or an empty slice if the master does not exist yet
	Load(ctx context.Context, category domain.Category) ([]domain.Token, error)
	// Save replaces the token master of the category
	Save(ctx context.Context, category domain.Category, tokens []domain.Token) error
}

type parquetTokenMasterStore struct {
	blobs BlobStore
}

// NewParquetTokenMasterStore creates a token master store that keeps one parquet object per category
func NewParquetTokenMasterStore(blobs BlobStore) TokenMasterStore {
	return &parquetTokenMasterStore{blobs: blobs}
}

// TokenMasterKey returns the blob key of a category's token master
func TokenMasterKey(category domain.Category) string {
	return path.Join(tokenMasterDir, fmt.Sprintf("token_master_%s%s", category.Key(), tableExtension))
}

func (s *parquetTokenMasterStore) Load(ctx context.Context, category domain.Category) ([]domain.Token, error) {
	tokens, err := readTable(ctx, s.blobs, TokenMasterKey(category), schema.TokenRecord.Domain)
	if err != nil {
		if IsNotFound(err) {
			return []domain.Token{}, nil
		}
		return nil, err
	}
	return tokens, nil
}

func (s *parquetTokenMasterStore) Save(ctx context.Context, category domain.Category, tokens []domain.Token) error {
	return writeTable(ctx, s.blobs, TokenMasterKey(category), tokens, schema.NewTokenRecord)
}
