package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/clearview-hq/clearview/backend/internal/config"
	"github.com/clearview-hq/clearview/backend/pkg/logger"
	"github.com/clearview-hq/clearview/backend/pkg/response"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// maxSignatureBytes caps decoded signature image uploads at 2 MB
const maxSignatureBytes = 2 << 20

// StorageService uploads signature images to an S3-compatible object store
// and returns public URLs for them
type StorageService struct {
	client *minio.Client
	cfg    *config.StorageConfig
}

// NewStorageService connects to the object store. Returns nil with a log
// line when storage is not configured; callers treat a nil service as
// "signature uploads disabled".
func NewStorageService(cfg *config.StorageConfig) *StorageService {
	if cfg == nil || cfg.Endpoint == "" {
		logger.Info().Msg("[Storage] no endpoint configured, signature uploads disabled")
		return nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		logger.Errorf("[Storage] client init failed: %v", err)
		return nil
	}

	return &StorageService{client: client, cfg: cfg}
}

// EnsureBucket creates the signature bucket if it does not exist yet
func (s *StorageService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.cfg.Bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.cfg.Bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.cfg.Bucket, err)
	}
	logger.Infof("[Storage] created bucket %s", s.cfg.Bucket)
	return nil
}

// UploadSignature stores a decoded signature image and returns its public
// URL. The object key embeds the change order id for traceability.
func (s *StorageService) UploadSignature(ctx context.Context, changeOrderID uint, data []byte, contentType string) (string, error) {
	ext := extensionFor(contentType)
	key := fmt.Sprintf("signatures/co-%d/%s%s", changeOrderID, uuid.New().String(), ext)

	_, err := s.client.PutObject(ctx, s.cfg.Bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("upload signature: %w", err)
	}

	logger.Infof("[Storage] uploaded signature %s (%d bytes)", key, len(data))
	return s.publicURL(key), nil
}

func (s *StorageService) publicURL(key string) string {
	if s.cfg.PublicBaseURL != "" {
		return strings.TrimSuffix(s.cfg.PublicBaseURL, "/") + "/" + s.cfg.Bucket + "/" + key
	}
	scheme := "http"
	if s.cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.cfg.Endpoint, s.cfg.Bucket, key)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	default:
		return ""
	}
}

// DecodeSignatureDataURL parses a base64 data URL submitted from the
// signature pad into raw bytes plus its content type
func DecodeSignatureDataURL(dataURL string) ([]byte, string, error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return nil, "", response.NewBadRequest("signature image must be a data URL")
	}

	comma := strings.IndexByte(dataURL, ',')
	if comma < 0 {
		return nil, "", response.NewBadRequest("malformed signature data URL")
	}

	meta := dataURL[len("data:"):comma]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, "", response.NewBadRequest("signature data URL must be base64 encoded")
	}
	contentType := strings.TrimSuffix(meta, ";base64")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", response.NewBadRequest("signature must be an image")
	}

	data, err := base64.StdEncoding.DecodeString(dataURL[comma+1:])
	if err != nil {
		return nil, "", response.NewBadRequest("signature image is not valid base64")
	}
	if len(data) == 0 {
		return nil, "", response.NewBadRequest("signature image is empty")
	}
	if len(data) > maxSignatureBytes {
		return nil, "", response.NewBadRequest("signature image exceeds 2MB")
	}

	return data, contentType, nil
}

// storageUploadTimeout bounds a single PutObject call
const storageUploadTimeout = 15 * time.Second

// Global storage instance, nil when uploads are disabled
var globalStorage *StorageService

// InitStorage sets up the global storage service from config
func InitStorage(cfg *config.StorageConfig) *StorageService {
	globalStorage = NewStorageService(cfg)
	if globalStorage != nil {
		ctx, cancel := context.WithTimeout(context.Background(), storageUploadTimeout)
		defer cancel()
		if err := globalStorage.EnsureBucket(ctx); err != nil {
			logger.Errorf("[Storage] bucket setup failed, uploads disabled: %v", err)
			globalStorage = nil
		}
	}
	return globalStorage
}

// GetStorage returns the global storage service, possibly nil
func GetStorage() *StorageService {
	return globalStorage
}
