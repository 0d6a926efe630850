package store_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-nft-warehouse/internal/domain"
	"github.com/feral-file/ff-nft-warehouse/internal/logger"
	"github.com/feral-file/ff-nft-warehouse/internal/mocks"
	"github.com/feral-file/ff-nft-warehouse/internal/store"
)

func setupS3BlobStore(t *testing.T) (*mocks.MockS3API, store.BlobStore) {
	t.Helper()
	err := logger.Initialize(logger.Config{Debug: true})
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	client := mocks.NewMockS3API(ctrl)
	blobs := store.NewS3BlobStore(client, store.S3Options{
		Bucket:         "warehouse",
		Prefix:         "/nft/",
		MaxElapsedTime: 3 * time.Second,
	})
	return client, blobs
}

func TestS3BlobStore_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		client, blobs := setupS3BlobStore(t)
		client.EXPECT().
			GetObject(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
				assert.Equal(t, "warehouse", aws.ToString(in.Bucket))
				assert.Equal(t, "nft/nft_kpi/art/nftkpi_202401.parquet", aws.ToString(in.Key))
				return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte("data")))}, nil
			})

		data, err := blobs.Get(ctx, "nft_kpi/art/nftkpi_202401.parquet")
		require.NoError(t, err)
		assert.Equal(t, []byte("data"), data)
	})

	t.Run("missing key is permanent", func(t *testing.T) {
		client, blobs := setupS3BlobStore(t)
		client.EXPECT().
			GetObject(gomock.Any(), gomock.Any()).
			Return(nil, &types.NoSuchKey{}).
			Times(1)

		_, err := blobs.Get(ctx, "nft_kpi/art/nftkpi_202401.parquet")
		assert.ErrorIs(t, err, domain.ErrTableNotFound)
	})

	t.Run("transient error is retried", func(t *testing.T) {
		client, blobs := setupS3BlobStore(t)
		gomock.InOrder(
			client.EXPECT().GetObject(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset")),
			client.EXPECT().GetObject(gomock.Any(), gomock.Any()).
				Return(&s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader([]byte("ok")))}, nil),
		)

		data, err := blobs.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("ok"), data)
	})
}

func TestS3BlobStore_Exists(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		client, blobs := setupS3BlobStore(t)
		client.EXPECT().HeadObject(gomock.Any(), gomock.Any()).Return(&s3.HeadObjectOutput{}, nil)

		ok, err := blobs.Exists(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("not found", func(t *testing.T) {
		client, blobs := setupS3BlobStore(t)
		client.EXPECT().HeadObject(gomock.Any(), gomock.Any()).Return(nil, &types.NotFound{})

		ok, err := blobs.Exists(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestS3BlobStore_PutAndList(t *testing.T) {
	ctx := context.Background()
	client, blobs := setupS3BlobStore(t)

	client.EXPECT().
		PutObject(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			assert.Equal(t, "nft/tokens/token_master_art.parquet", aws.ToString(in.Key))
			return &s3.PutObjectOutput{}, nil
		})
	require.NoError(t, blobs.Put(ctx, "tokens/token_master_art.parquet", []byte("x")))

	client.EXPECT().
		ListObjectsV2(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
			assert.Equal(t, "nft/nft_kpi/art/", aws.ToString(in.Prefix))
			return &s3.ListObjectsV2Output{
				Contents: []types.Object{
					{Key: aws.String("nft/nft_kpi/art/nftkpi_202402.parquet")},
					{Key: aws.String("nft/nft_kpi/art/.nftkpi_202403.parquet.tmp")},
					{Key: aws.String("nft/nft_kpi/art/nftkpi_202401.parquet")},
				},
				IsTruncated: aws.Bool(false),
			}, nil
		})

	keys, err := blobs.List(ctx, "nft_kpi/art")
	require.NoError(t, err)
	assert.Equal(t, []string{"nft_kpi/art/nftkpi_202401.parquet", "nft_kpi/art/nftkpi_202402.parquet"}, keys)
}
