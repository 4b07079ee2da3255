// Package snapshot persists raw feed payloads for later inspection.
// Implementations of the engine's SnapshotStore interface live here and in
// the local/memory subpackages.
package snapshot

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
)

// GCSStore writes snapshots to a Google Cloud Storage bucket.
// Authentication is handled via Application Default Credentials.
type GCSStore struct {
	client *storage.Client
	bucket string
	logger *zap.Logger
}

// NewGCSStore initializes a GCS client and verifies bucket access, failing
// fast on startup when the configuration is wrong.
func NewGCSStore(ctx context.Context, bucket string, logger *zap.Logger) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		if cerr := client.Close(); cerr != nil {
			logger.Warn("close gcs client after attrs failure", zap.Error(cerr))
		}
		return nil, fmt.Errorf("bucket %q attributes: %w", bucket, err)
	}
	return &GCSStore{client: client, bucket: bucket, logger: logger}, nil
}

// Save uploads the payload under key and returns its gs:// URI.
func (s *GCSStore) Save(ctx context.Context, key string, data []byte) (string, error) {
	wc := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	wc.ContentType = "application/xml"
	if _, err := wc.Write(data); err != nil {
		if cerr := wc.Close(); cerr != nil {
			s.logger.Warn("close gcs writer after write failure", zap.Error(cerr))
		}
		return "", fmt.Errorf("write object %s: %w", key, err)
	}
	// Close finalizes the upload and flushes buffered data.
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("close object %s: %w", key, err)
	}
	return fmt.Sprintf("gs://%s/%s", s.bucket, key), nil
}

// Close releases the GCS client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
