// Package objectstore publishes finished videos to S3 or Google Cloud Storage.
package objectstore

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/user/framecast/pkg/ports"
)

// Backend names accepted by New.
const (
	BackendS3  = "s3"
	BackendGCS = "gcs"
)

// Options selects and configures a backend.
type Options struct {
	Backend string
	Bucket  string
	Prefix  string // Prepended to every object key

	// S3
	Region    string
	Endpoint  string // Custom endpoint for S3-compatible stores; enables path-style addressing
	AccessKey string
	SecretKey string

	// GCS
	CredentialsFile string // Service account JSON; empty uses application default credentials
}

// Publisher is a ports.Publisher that holds client resources.
type Publisher interface {
	ports.Publisher
	Close() error
}

// New creates a publisher for opts.Backend.
func New(ctx context.Context, opts Options, logger ports.Logger) (Publisher, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("objectstore: bucket is required")
	}
	switch opts.Backend {
	case BackendS3:
		return NewS3(opts, logger)
	case BackendGCS:
		return NewGCS(ctx, opts, logger)
	default:
		return nil, fmt.Errorf("objectstore: unknown backend type: %s", opts.Backend)
	}
}

// objectKey joins prefix and key with a single slash.
func objectKey(prefix, key string) string {
	key = strings.TrimLeft(key, "/")
	if prefix == "" {
		return key
	}
	return path.Join(strings.Trim(prefix, "/"), key)
}

// contentType guesses the MIME type of a video from its extension.
func contentType(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".mp4", ".m4v":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	case ".mkv":
		return "video/x-matroska"
	case ".gif":
		return "image/gif"
	}
	return "application/octet-stream"
}
