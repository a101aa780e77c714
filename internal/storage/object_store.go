package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"policymatcher/internal/config"
)

type ObjectStore struct {
	client *minio.Client
	cfg    config.StorageConfig
}

// NewObjectStore accepts either a bare host:port endpoint or a URL, in which
// case the scheme decides TLS.
func NewObjectStore(cfg config.StorageConfig) (*ObjectStore, error) {
	endpoint := cfg.Endpoint
	useSSL := cfg.UseSSL

	if strings.HasPrefix(endpoint, "http") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return nil, fmt.Errorf("parse endpoint: %w", err)
		}
		endpoint = u.Host
		useSSL = u.Scheme == "https"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}

	return &ObjectStore{
		client: client,
		cfg:    cfg,
	}, nil
}

func (s *ObjectStore) EnsureBuckets(ctx context.Context) error {
	bucket := s.cfg.BucketReports
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("bucket exists %s: %w", bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: s.cfg.Region}); err != nil {
			return fmt.Errorf("create bucket %s: %w", bucket, err)
		}
	}
	return nil
}

// PutReport stores a JSON document in the reports bucket.
func (s *ObjectStore) PutReport(ctx context.Context, key string, body []byte) error {
	_, err := s.client.PutObject(ctx, s.cfg.BucketReports, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("put report %s: %w", key, err)
	}
	return nil
}

// Enabled reports whether an endpoint is configured at all.
func Enabled(cfg config.StorageConfig) bool {
	return strings.TrimSpace(cfg.Endpoint) != ""
}

// OpenReports builds the store and makes sure the reports bucket exists. It
// returns nil without error when storage is not configured.
func OpenReports(ctx context.Context, cfg config.StorageConfig) (*ObjectStore, error) {
	if !Enabled(cfg) {
		return nil, nil
	}
	store, err := NewObjectStore(cfg)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBuckets(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
