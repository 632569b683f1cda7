package objectstore

import (
	"context"
	"fmt"
	"io"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/user/framecast/pkg/ports"
)

// GCSPublisher uploads objects to a Google Cloud Storage bucket.
type GCSPublisher struct {
	bucket string
	prefix string
	client *storage.Client
	logger ports.Logger
}

// NewGCS creates a GCS publisher.
func NewGCS(ctx context.Context, opts Options, logger ports.Logger) (*GCSPublisher, error) {
	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}
	return &GCSPublisher{
		bucket: opts.Bucket,
		prefix: opts.Prefix,
		client: client,
		logger: logger.WithComponent("publish"),
	}, nil
}

// Publish streams localPath to the bucket and returns its gs:// location.
func (p *GCSPublisher) Publish(ctx context.Context, localPath, key string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	objKey := objectKey(p.prefix, key)
	wc := p.client.Bucket(p.bucket).Object(objKey).NewWriter(ctx)
	wc.ContentType = contentType(objKey)

	if _, err := io.Copy(wc, f); err != nil {
		wc.Close()
		return "", fmt.Errorf("io.Copy: %w", err)
	}
	// The upload completes on Close.
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("Writer.Close: %w", err)
	}

	location := fmt.Sprintf("gs://%s/%s", p.bucket, objKey)
	p.logger.Debug("Uploaded %s to %s", localPath, location)
	return location, nil
}

// Close releases the storage client.
func (p *GCSPublisher) Close() error {
	return p.client.Close()
}
