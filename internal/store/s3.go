package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/feral-file/ff-nft-warehouse/internal/domain"
	"github.com/feral-file/ff-nft-warehouse/internal/logger"
)

// S3API is the subset of the S3 client used by the blob store
//
//go:generate mockgen -source=s3.go -destination=../mocks/s3.go -package=mocks -mock_names=S3API=MockS3API
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Options holds the S3 blob store settings
type S3Options struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
	// MaxElapsedTime bounds the retries of a single operation
	MaxElapsedTime time.Duration
}

type s3BlobStore struct {
	client         S3API
	bucket         string
	prefix         string
	maxElapsedTime time.Duration
}

// NewS3Client creates an S3 client from the options
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
	}), nil
}

// NewS3BlobStore creates a blob store backed by an S3 bucket
func NewS3BlobStore(client S3API, opts S3Options) BlobStore {
	maxElapsed := opts.MaxElapsedTime
	if maxElapsed <= 0 {
		maxElapsed = 2 * time.Minute
	}
	return &s3BlobStore{
		client:         client,
		bucket:         opts.Bucket,
		prefix:         strings.Trim(opts.Prefix, "/"),
		maxElapsedTime: maxElapsed,
	}
}

func (s *s3BlobStore) objectKey(key string) string {
	if s.prefix == "" {
		return key
	}
	return path.Join(s.prefix, key)
}

// retry runs the operation with exponential backoff, logging each failed attempt
func (s *s3BlobStore) retry(ctx context.Context, name string, key string, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 15 * time.Second
	b.MaxElapsedTime = s.maxElapsedTime

	var attemptCount int
	notifyOnError := func(err error, duration time.Duration) {
		attemptCount++
		logger.WarnCtx(ctx, "S3 operation failed, retrying",
			zap.String("operation", name),
			zap.String("key", key),
			zap.Error(err),
			zap.Int("attempt", attemptCount),
			zap.Duration("next_retry_in", duration),
		)
	}

	return backoff.RetryNotify(operation, backoff.WithContext(b, ctx), notifyOnError)
}

// Get returns the object content
func (s *s3BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.retry(ctx, "get", key, func() error {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.objectKey(key)),
		})
		if err != nil {
			var nsk *types.NoSuchKey
			if errors.As(err, &nsk) {
				return backoff.Permanent(fmt.Errorf("%w: %s", domain.ErrTableNotFound, key))
			}
			return err
		}
		defer out.Body.Close()

		data, err = io.ReadAll(out.Body)
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrTableNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get s3 object %s: %w", key, err)
	}
	return data, nil
}

// Put replaces the object content
func (s *s3BlobStore) Put(ctx context.Context, key string, data []byte) error {
	err := s.retry(ctx, "put", key, func() error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.objectKey(key)),
			Body:   bytes.NewReader(data),
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to put s3 object %s: %w", key, err)
	}
	return nil
}

// Exists reports whether the object exists
func (s *s3BlobStore) Exists(ctx context.Context, key string) (bool, error) {
	found := true
	err := s.retry(ctx, "head", key, func() error {
		_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.objectKey(key)),
		})
		if err != nil {
			var nf *types.NotFound
			if errors.As(err, &nf) {
				found = false
				return nil
			}
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to head s3 object %s: %w", key, err)
	}
	return found, nil
}

// List returns the keys of the objects directly under prefix
func (s *s3BlobStore) List(ctx context.Context, prefix string) ([]string, error) {
	listPrefix := s.objectKey(prefix) + "/"
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(listPrefix),
		Delimiter: aws.String("/"),
	})

	var keys []string
	for paginator.HasMorePages() {
		var page *s3.ListObjectsV2Output
		err := s.retry(ctx, "list", prefix, func() error {
			var err error
			page, err = paginator.NextPage(ctx)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list s3 prefix %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), listPrefix)
			if name == "" || strings.HasPrefix(name, ".") {
				continue
			}
			keys = append(keys, path.Join(prefix, name))
		}
	}
	sort.Strings(keys)
	return keys, nil
}
