package docstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/okian/clubhouse/pkg/logger"
)

const defaultURLExpiry = time.Hour

// ErrNoFileBackend is returned when no file storage is configured.
var ErrNoFileBackend = errors.New("no file backend configured")

// MinIOConfig configures the MinIO file backend.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	URLExpiry time.Duration
	UseSSL    bool
}

// MinIOFiles serves file URLs as presigned GETs against MinIO buckets.
// Bucket IDs map one to one onto MinIO bucket names and file IDs onto object keys.
type MinIOFiles struct {
	client *minio.Client
	logger logger.Logger
	expiry time.Duration
}

// NewMinIOFiles creates the client. No request is made until a URL is signed.
func NewMinIOFiles(cfg MinIOConfig) (*MinIOFiles, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = defaultURLExpiry
	}
	return &MinIOFiles{
		client: client,
		logger: logger.Get().Named("minio"),
		expiry: expiry,
	}, nil
}

// FilePreviewURL signs a GET for the object. MinIO does no resizing; the
// original object is served whatever size is asked for.
func (m *MinIOFiles) FilePreviewURL(ctx context.Context, bucket, fileID string, width, height int) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, bucket, fileID, m.expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign %s/%s: %w", bucket, fileID, err)
	}
	m.logger.Debug(ctx, "presigned file url",
		logger.String("bucket", bucket),
		logger.String("file", fileID),
		logger.Int("width", width),
		logger.Int("height", height),
	)
	return u.String(), nil
}

// HealthCheck verifies a bucket is reachable.
func (m *MinIOFiles) HealthCheck(ctx context.Context, bucket string) error {
	exists, err := m.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("MinIO health check failed: %w", err)
	}
	if !exists {
		return fmt.Errorf("bucket %q does not exist", bucket)
	}
	return nil
}

// NoFiles is the file backend used when none is configured.
type NoFiles struct{}

// FilePreviewURL always fails with ErrNoFileBackend.
func (NoFiles) FilePreviewURL(_ context.Context, bucket, fileID string, _, _ int) (string, error) {
	return "", fmt.Errorf("%w: %s/%s", ErrNoFileBackend, bucket, fileID)
}
