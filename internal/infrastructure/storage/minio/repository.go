package minio

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/LienPilot/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LienPilot/pkg/errors"
)

var (
	ErrObjectNotFound = errors.New(errors.ErrCodeStorageObjectNotFound, "object not found")
	ErrInvalidRequest = errors.New(errors.ErrCodeValidation, "bucket and object key are required")
)

type UploadRequest struct {
	Bucket      string
	ObjectKey   string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

type UploadResult struct {
	Bucket     string    `json:"bucket"`
	ObjectKey  string    `json:"object_key"`
	ETag       string    `json:"etag"`
	Size       int64     `json:"size"`
	VersionID  string    `json:"version_id,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type DownloadResult struct {
	Data         []byte
	ContentType  string
	Size         int64
	ETag         string
	Metadata     map[string]string
	LastModified time.Time
}

type ObjectMetadata struct {
	ObjectKey    string    `json:"object_key"`
	Size         int64     `json:"size"`
	ContentType  string    `json:"content_type,omitempty"`
	ETag         string    `json:"etag"`
	LastModified time.Time `json:"last_modified"`
}

// ObjectRepository performs object operations through a MinIOClient.
type ObjectRepository struct {
	client *MinIOClient
	logger logging.Logger
	now    func() time.Time
}

func NewObjectRepository(client *MinIOClient, log logging.Logger) *ObjectRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &ObjectRepository{client: client, logger: log.Named("repository"), now: time.Now}
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchObject"
}

func (r *ObjectRepository) Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error) {
	if req == nil || req.Bucket == "" || req.ObjectKey == "" {
		return nil, ErrInvalidRequest
	}
	api, err := r.client.api()
	if err != nil {
		return nil, err
	}
	if req.ContentType == "" && len(req.Data) > 0 {
		req.ContentType = http.DetectContentType(req.Data[:min(512, len(req.Data))])
	}

	info, err := api.PutObject(ctx, req.Bucket, req.ObjectKey, bytes.NewReader(req.Data), int64(len(req.Data)), minio.PutObjectOptions{
		ContentType:  req.ContentType,
		UserMetadata: req.Metadata,
	})
	if err != nil {
		r.logger.Error("upload failed", logging.String(logging.KeyObject, req.ObjectKey), logging.Err(err))
		return nil, errors.Wrap(err, errors.ErrCodeStorageUploadFailed, "upload failed").WithDetail(req.ObjectKey)
	}
	r.logger.Debug("object uploaded", logging.String(logging.KeyObject, req.ObjectKey), logging.Int64("size", info.Size))

	return &UploadResult{
		Bucket:     req.Bucket,
		ObjectKey:  req.ObjectKey,
		ETag:       info.ETag,
		Size:       int64(len(req.Data)),
		VersionID:  info.VersionID,
		UploadedAt: r.now(),
	}, nil
}

func (r *ObjectRepository) Download(ctx context.Context, bucket, objectKey string) (*DownloadResult, error) {
	api, err := r.client.api()
	if err != nil {
		return nil, err
	}
	rc, info, err := api.GetObjectReader(ctx, bucket, objectKey)
	if err != nil {
		if isNoSuchKey(err) {
			return nil, ErrObjectNotFound
		}
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "download failed").WithDetail(objectKey)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "read object").WithDetail(objectKey)
	}
	return &DownloadResult{
		Data:         data,
		ContentType:  info.ContentType,
		Size:         int64(len(data)),
		ETag:         info.ETag,
		Metadata:     info.UserMetadata,
		LastModified: info.LastModified,
	}, nil
}

func (r *ObjectRepository) Exists(ctx context.Context, bucket, objectKey string) (bool, error) {
	api, err := r.client.api()
	if err != nil {
		return false, err
	}
	if _, err := api.StatObject(ctx, bucket, objectKey, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return false, nil
		}
		return false, errors.Wrap(err, errors.ErrCodeExternalService, "stat failed").WithDetail(objectKey)
	}
	return true, nil
}

func (r *ObjectRepository) Delete(ctx context.Context, bucket, objectKey string) error {
	api, err := r.client.api()
	if err != nil {
		return err
	}
	return api.RemoveObject(ctx, bucket, objectKey, minio.RemoveObjectOptions{})
}

// List returns up to maxKeys objects under prefix. maxKeys <= 0 means 1000.
func (r *ObjectRepository) List(ctx context.Context, bucket, prefix string, maxKeys int) ([]ObjectMetadata, error) {
	api, err := r.client.api()
	if err != nil {
		return nil, err
	}
	if maxKeys <= 0 {
		maxKeys = 1000
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var out []ObjectMetadata
	for obj := range api.ListObjects(ctx, bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.ErrCodeExternalService, "list failed").WithDetail(prefix)
		}
		out = append(out, ObjectMetadata{
			ObjectKey:    obj.Key,
			Size:         obj.Size,
			ContentType:  obj.ContentType,
			ETag:         obj.ETag,
			LastModified: obj.LastModified,
		})
		if len(out) >= maxKeys {
			break
		}
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Bucket-scoped store
// ─────────────────────────────────────────────────────────────────────────────

// BucketStore binds an ObjectRepository to one bucket and exposes the small
// put/get/url surface the notice service depends on.
type BucketStore struct {
	repo   *ObjectRepository
	bucket string
}

func (r *ObjectRepository) Bucket(name string) *BucketStore {
	return &BucketStore{repo: r, bucket: name}
}

// NoticeStore and ExportStore use the configured buckets.
func (r *ObjectRepository) NoticeStore() *BucketStore {
	return r.Bucket(r.client.config.Buckets.Notices)
}

func (r *ObjectRepository) ExportStore() *BucketStore {
	return r.Bucket(r.client.config.Buckets.Exports)
}

func (s *BucketStore) Name() string { return s.bucket }

func (s *BucketStore) Put(ctx context.Context, key, contentType string, data []byte, metadata map[string]string) (string, error) {
	res, err := s.repo.Upload(ctx, &UploadRequest{Bucket: s.bucket, ObjectKey: key, Data: data, ContentType: contentType, Metadata: metadata})
	if err != nil {
		return "", err
	}
	return res.ETag, nil
}

func (s *BucketStore) Get(ctx context.Context, key string) ([]byte, error) {
	res, err := s.repo.Download(ctx, s.bucket, key)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (s *BucketStore) URL(ctx context.Context, key string) (string, error) {
	return s.repo.client.PresignedGetURL(ctx, s.bucket, key, 0)
}

// NoticeKey is the object key of a rendered notice, e.g.
// "notices/CA/NOI_INV-1_Acme_2025-03-18.pdf".
func NoticeKey(state, filename string) string {
	state = strings.ToUpper(strings.TrimSpace(state))
	if state == "" {
		state = "DEFAULT"
	}
	return path.Join("notices", state, path.Base(filename))
}

// ExportKey is the object key of a status export as of a day.
func ExportKey(asOf time.Time) string {
	return path.Join("exports", "lien-status-"+asOf.Format("2006-01-02")+".csv")
}

//Personal.AI order the ending
