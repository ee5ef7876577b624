// Package minio stores rendered notices and exports in S3-compatible
// object storage.
package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LienPilot/pkg/errors"
)

// MinIOAPI is the subset of the SDK the adapters use. GetObject is folded
// into a reader plus stat so it can be faked without a live server.
type MinIOAPI interface {
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	SetBucketLifecycle(ctx context.Context, bucketName string, config *lifecycle.Configuration) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObjectReader(ctx context.Context, bucketName, objectName string) (io.ReadCloser, minio.ObjectInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
}

type sdkAPI struct {
	*minio.Client
}

func (s sdkAPI) GetObjectReader(ctx context.Context, bucketName, objectName string) (io.ReadCloser, minio.ObjectInfo, error) {
	obj, err := s.Client.GetObject(ctx, bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, minio.ObjectInfo{}, err
	}
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, minio.ObjectInfo{}, err
	}
	return obj, info, nil
}

type BucketConfig struct {
	Notices string `mapstructure:"notices" yaml:"notices"`
	Exports string `mapstructure:"exports" yaml:"exports"`
}

type MinIOConfig struct {
	Enabled          bool          `mapstructure:"enabled" yaml:"enabled"`
	Endpoint         string        `mapstructure:"endpoint" yaml:"endpoint"`
	AccessKeyID      string        `mapstructure:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey  string        `mapstructure:"secret_access_key" yaml:"secret_access_key"`
	UseSSL           bool          `mapstructure:"use_ssl" yaml:"use_ssl"`
	Region           string        `mapstructure:"region" yaml:"region"`
	Buckets          BucketConfig  `mapstructure:"buckets" yaml:"buckets"`
	PresignExpiry    time.Duration `mapstructure:"presign_expiry" yaml:"presign_expiry"`
	// ExportExpiryDays expires CSV exports; notices are kept indefinitely.
	ExportExpiryDays int           `mapstructure:"export_expiry_days" yaml:"export_expiry_days"`
}

// ApplyDefaults fills zero values.
func (cfg *MinIOConfig) ApplyDefaults() {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.PresignExpiry == 0 {
		cfg.PresignExpiry = time.Hour
	}
	if cfg.ExportExpiryDays == 0 {
		cfg.ExportExpiryDays = 30
	}
	if cfg.Buckets.Notices == "" {
		cfg.Buckets.Notices = "lienpilot-notices"
	}
	if cfg.Buckets.Exports == "" {
		cfg.Buckets.Exports = "lienpilot-exports"
	}
}

type MinIOClient struct {
	client MinIOAPI
	config *MinIOConfig
	logger logging.Logger
	mu     sync.RWMutex
	closed bool
}

var ErrMinIOClientClosed = errors.New(errors.ErrCodeServiceUnavailable, "minio client is closed")

// NewMinIOClient connects, verifies access and provisions buckets.
func NewMinIOClient(ctx context.Context, cfg *MinIOConfig, log logging.Logger) (*MinIOClient, error) {
	cfg.ApplyDefaults()
	sdk, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create minio client")
	}
	return NewMinIOClientWithAPI(ctx, sdkAPI{sdk}, cfg, log)
}

// NewMinIOClientWithAPI is NewMinIOClient over an existing API.
func NewMinIOClientWithAPI(ctx context.Context, api MinIOAPI, cfg *MinIOConfig, log logging.Logger) (*MinIOClient, error) {
	cfg.ApplyDefaults()
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &MinIOClient{client: api, config: cfg, logger: logging.ForComponent(log, "minio")}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := api.ListBuckets(ctx); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "failed to connect to minio")
	}
	if err := c.EnsureBuckets(ctx); err != nil {
		return nil, err
	}
	c.SetupLifecycleRules(ctx)

	c.logger.Info("MinIO client connected", logging.String("endpoint", cfg.Endpoint), logging.Bool("ssl", cfg.UseSSL))
	return c, nil
}

func (c *MinIOClient) buckets() []string {
	return []string{c.config.Buckets.Notices, c.config.Buckets.Exports}
}

// EnsureBuckets creates missing buckets.
func (c *MinIOClient) EnsureBuckets(ctx context.Context) error {
	for _, bucket := range c.buckets() {
		exists, err := c.client.BucketExists(ctx, bucket)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeExternalService, "failed to check bucket existence").WithDetail(bucket)
		}
		if exists {
			continue
		}
		if err := c.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: c.config.Region}); err != nil {
			return errors.Wrap(err, errors.ErrCodeExternalService, fmt.Sprintf("failed to create bucket %s", bucket))
		}
		c.logger.Info("Created bucket", logging.String("bucket", bucket))
	}
	return nil
}

// SetupLifecycleRules expires exports. Failures are logged only.
func (c *MinIOClient) SetupLifecycleRules(ctx context.Context) {
	cfg := lifecycle.NewConfiguration()
	cfg.Rules = []lifecycle.Rule{{
		ID:         "exports-cleanup",
		Status:     "Enabled",
		Expiration: lifecycle.Expiration{Days: lifecycle.ExpirationDays(c.config.ExportExpiryDays)},
	}}
	if err := c.client.SetBucketLifecycle(ctx, c.config.Buckets.Exports, cfg); err != nil {
		c.logger.Warn("Failed to set lifecycle for exports bucket", logging.Err(err))
	}
}

func (c *MinIOClient) api() (MinIOAPI, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, ErrMinIOClientClosed
	}
	return c.client, nil
}

func (c *MinIOClient) Config() MinIOConfig { return *c.config }

func (c *MinIOClient) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

type HealthStatus struct {
	Healthy        bool            `json:"healthy"`
	Latency        time.Duration   `json:"latency"`
	BucketStatuses map[string]bool `json:"buckets"`
	Error          string          `json:"error,omitempty"`
}

// HealthCheck lists buckets and confirms each configured bucket exists.
func (c *MinIOClient) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	api, err := c.api()
	if err != nil {
		return &HealthStatus{Error: err.Error()}, err
	}
	start := time.Now()
	_, err = api.ListBuckets(ctx)
	status := &HealthStatus{Healthy: err == nil, Latency: time.Since(start), BucketStatuses: make(map[string]bool)}
	if err != nil {
		status.Error = err.Error()
		return status, err
	}
	for _, b := range c.buckets() {
		exists, _ := api.BucketExists(ctx, b)
		status.BucketStatuses[b] = exists
		if !exists {
			status.Healthy = false
			status.Error = fmt.Sprintf("bucket %s missing", b)
		}
	}
	return status, nil
}

// PresignedGetURL signs a download link. Zero expiry uses the configured default.
func (c *MinIOClient) PresignedGetURL(ctx context.Context, bucket, objectKey string, expiry time.Duration) (string, error) {
	api, err := c.api()
	if err != nil {
		return "", err
	}
	if expiry <= 0 {
		expiry = c.config.PresignExpiry
	}
	u, err := api.PresignedGetObject(ctx, bucket, objectKey, expiry, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeStoragePresignFailed, "presign failed").WithDetail(objectKey)
	}
	return u.String(), nil
}

//Personal.AI order the ending
