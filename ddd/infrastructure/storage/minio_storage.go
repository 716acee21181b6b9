package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"

	"convert-service/ddd/domain/gateway"
	"convert-service/internal/resource"
	"convert-service/pkg/logger"
)

// MinioStorage implements gateway.StorageGateway on a MinIO bucket.
type MinioStorage struct {
	minioResource *resource.MinioResource
}

func NewMinioStorage(minioResource *resource.MinioResource) gateway.StorageGateway {
	return &MinioStorage{minioResource: minioResource}
}

// DownloadFile fetches a source object to a local path.
func (s *MinioStorage) DownloadFile(ctx context.Context, objectKey, localPath string) error {
	client := s.minioResource.GetClient()
	bucketName := s.minioResource.GetBucketName()

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("create local directory: %w", err)
	}

	object, err := client.GetObject(ctx, bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		logger.Error("Failed to get object from MinIO", map[string]interface{}{
			"object_key": objectKey,
			"error":      err.Error(),
		})
		return fmt.Errorf("get object from minio: %w", err)
	}
	defer object.Close()

	localFile, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create local file: %w", err)
	}
	defer localFile.Close()

	if _, err := localFile.ReadFrom(object); err != nil {
		logger.Error("Failed to download object from MinIO", map[string]interface{}{
			"object_key": objectKey,
			"local_path": localPath,
			"error":      err.Error(),
		})
		return fmt.Errorf("download object from minio: %w", err)
	}

	logger.Info("Source object downloaded", map[string]interface{}{
		"object_key": objectKey,
		"local_path": localPath,
	})
	return nil
}

// UploadArtifact stores a produced file and returns the final object key.
func (s *MinioStorage) UploadArtifact(ctx context.Context, localPath, objectKey, contentType string) (string, error) {
	client := s.minioResource.GetClient()
	bucketName := s.minioResource.GetBucketName()

	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open local file: %w", err)
	}
	defer file.Close()

	fileInfo, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("stat local file: %w", err)
	}

	if contentType == "" {
		contentType = ContentTypeFor(objectKey)
	}

	_, err = client.PutObject(ctx, bucketName, objectKey, file, fileInfo.Size(), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		logger.Error("Failed to upload artifact to MinIO", map[string]interface{}{
			"local_path": localPath,
			"object_key": objectKey,
			"error":      err.Error(),
		})
		return "", fmt.Errorf("upload artifact to minio: %w", err)
	}

	logger.Info("Artifact uploaded", map[string]interface{}{
		"object_key":   objectKey,
		"size":         fileInfo.Size(),
		"content_type": contentType,
	})
	return objectKey, nil
}

// ContentTypeFor maps an artifact extension to its MIME type.
func ContentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".aac":
		return "audio/aac"
	case ".flac":
		return "audio/flac"
	case ".mkv":
		return "video/x-matroska"
	case ".webm":
		return "video/webm"
	case ".avi":
		return "video/x-msvideo"
	default:
		return "application/octet-stream"
	}
}
