package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Uploader stores property photo content and returns the URL guests will see
// in listings.
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (publicURL string, err error)
}

// Client uploads to an S3-compatible store through the MinIO SDK. The photo
// bucket is created lazily on first upload and opened for anonymous reads so
// listing pages can link objects directly.
type Client struct {
	bucket        string
	publicBaseURL string
	api           *minio.Client
	logger        *slog.Logger

	initOnce sync.Once
	initErr  error
}

func NewClient(endpoint string, useSSL bool, accessKey, secretKey, bucket, publicBaseURL string, logger *slog.Logger) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}

	api, err := minio.New(hostOf(endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(accessKey), strings.TrimSpace(secretKey), ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}

	base := strings.TrimSpace(publicBaseURL)
	if base == "" {
		base = endpoint
	}
	return &Client{
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(base, "/"),
		api:           api,
		logger:        logger,
	}, nil
}

func (c *Client) Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error) {
	if reader == nil {
		return "", errors.New("s3: reader is required")
	}
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("s3: object key is required")
	}
	if err := c.ensureBucket(ctx); err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if _, err := c.api.PutObject(ctx, c.bucket, key, reader, -1, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", fmt.Errorf("s3: put object: %w", err)
	}

	publicURL := fmt.Sprintf("%s/%s/%s", c.publicBaseURL, c.bucket, key)
	if c.logger != nil {
		c.logger.Info("photo uploaded", "bucket", c.bucket, "key", key, "url", publicURL)
	}
	return publicURL, nil
}

func (c *Client) ensureBucket(ctx context.Context) error {
	c.initOnce.Do(func() {
		exists, err := c.api.BucketExists(ctx, c.bucket)
		if err != nil {
			c.initErr = fmt.Errorf("s3: check bucket: %w", err)
			return
		}
		if exists {
			return
		}
		if err := c.api.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			c.initErr = fmt.Errorf("s3: create bucket: %w", err)
			return
		}
		readOnly := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, c.bucket)
		if err := c.api.SetBucketPolicy(ctx, c.bucket, readOnly); err != nil {
			c.initErr = fmt.Errorf("s3: set bucket policy: %w", err)
		}
	})
	return c.initErr
}

func hostOf(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

// NoopUploader rejects uploads when no object store is configured, so photo
// endpoints fail with a clear error instead of dropping content.
type NoopUploader struct{}

func (NoopUploader) Upload(context.Context, string, io.Reader, string) (string, error) {
	return "", errors.New("s3: object storage is not configured")
}

var _ Uploader = (*Client)(nil)
var _ Uploader = NoopUploader{}
