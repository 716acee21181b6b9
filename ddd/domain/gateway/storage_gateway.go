package gateway

import "context"

// StorageGateway moves source and artifact files between object storage and the
// local working directory.
type StorageGateway interface {
	// DownloadFile fetches an object to a local path, creating parent dirs.
	DownloadFile(ctx context.Context, objectKey, localPath string) error

	// UploadArtifact stores a produced file and returns the final object key.
	UploadArtifact(ctx context.Context, localPath, objectKey, contentType string) (string, error)
}
