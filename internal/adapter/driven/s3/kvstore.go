// Package s3 implements the KeyValueStore port on S3-compatible object
// storage, one object per key.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/impossibleiman/couplemap/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.KeyValueStore = (*KVStore)(nil)

const objectPrefix = "places/"

// Options configures the connection to the object store.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// KVStore stores each key as a JSON object under places/ in a bucket.
type KVStore struct {
	client *minio.Client
	bucket string
}

// Open connects to the endpoint and creates the bucket when it is missing.
func Open(ctx context.Context, opts Options) (*KVStore, error) {
	if opts.Endpoint == "" || opts.AccessKey == "" || opts.SecretKey == "" || opts.Bucket == "" {
		return nil, fmt.Errorf("s3 storage needs endpoint, access key, secret key and bucket")
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %q: %w", opts.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", opts.Bucket, err)
		}
	}

	return &KVStore{client: client, bucket: opts.Bucket}, nil
}

// Get returns the object body for key, or ("", nil) when there is no object.
func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectKey(key), minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("get %q: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return "", nil
		}
		return "", fmt.Errorf("read %q: %w", key, err)
	}
	return string(data), nil
}

// Set uploads value as the object for key, replacing any previous version.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		objectKey(key),
		bytes.NewReader([]byte(value)),
		int64(len(value)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

// objectKey maps a store key to an object name.
func objectKey(key string) string {
	return objectPrefix + strings.ReplaceAll(key, "/", "-") + ".json"
}
