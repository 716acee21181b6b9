package resource

import (
	"context"
	"fmt"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"convert-service/pkg/config"
	"convert-service/pkg/logger"
)

var (
	minioResourceOnce sync.Once
	minioSingleton    *MinioResource
)

// MinioResource manages the shared MinIO client and artifact bucket.
type MinioResource struct {
	client     *minio.Client
	bucketName string
}

// DefaultMinioResource returns the global MinIO resource instance.
func DefaultMinioResource() *MinioResource {
	minioResourceOnce.Do(func() {
		minioSingleton = &MinioResource{}
	})
	return minioSingleton
}

func (r *MinioResource) Name() string { return "minio" }

// MustOpen builds the client and ensures the bucket exists.
func (r *MinioResource) MustOpen() {
	cfg := config.GetGlobalConfig()
	if cfg == nil {
		panic("global config not initialized before MinioResource")
	}

	minioCfg := cfg.Minio
	if minioCfg.Endpoint == "" {
		panic("minio endpoint is required")
	}
	if minioCfg.BucketName == "" {
		panic("minio bucket_name is required")
	}

	client, err := minio.New(minioCfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(minioCfg.AccessKeyID, minioCfg.SecretAccessKey, ""),
		Secure: minioCfg.UseSSL,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to create minio client: %v", err))
	}

	r.client = client
	r.bucketName = minioCfg.BucketName
	r.ensureBucket()

	logger.Info("MinIO resource initialized", map[string]interface{}{
		"endpoint":    minioCfg.Endpoint,
		"bucket_name": r.bucketName,
	})
}

func (r *MinioResource) ensureBucket() {
	ctx := context.Background()
	exists, err := r.client.BucketExists(ctx, r.bucketName)
	if err != nil {
		panic(fmt.Sprintf("failed to check minio bucket: %v", err))
	}
	if exists {
		return
	}
	if err := r.client.MakeBucket(ctx, r.bucketName, minio.MakeBucketOptions{}); err != nil {
		panic(fmt.Sprintf("failed to create minio bucket: %v", err))
	}
}

// GetClient returns the MinIO client.
func (r *MinioResource) GetClient() *minio.Client {
	return r.client
}

// GetBucketName returns the artifact bucket.
func (r *MinioResource) GetBucketName() string {
	return r.bucketName
}

func (r *MinioResource) Close() {
	// minio-go keeps no persistent connection to release.
}
