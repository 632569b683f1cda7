package objectstore

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/user/framecast/pkg/ports"
)

// S3Publisher uploads with the S3 transfer manager.
type S3Publisher struct {
	bucket   string
	prefix   string
	uploader *manager.Uploader
	logger   ports.Logger
}

// NewS3 creates an S3 publisher. Credentials fall back to the
// AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY environment variables.
func NewS3(opts Options, logger ports.Logger) (*S3Publisher, error) {
	accessKey, secretKey := opts.AccessKey, opts.SecretKey
	if accessKey == "" {
		accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	if accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("objectstore: s3 credentials are required")
	}
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}

	s3Opts := s3.Options{
		Region:      region,
		Credentials: credentials.NewStaticCredentialsProvider(accessKey, secretKey, os.Getenv("AWS_SESSION_TOKEN")),
	}
	if opts.Endpoint != "" {
		s3Opts.BaseEndpoint = aws.String(opts.Endpoint)
		s3Opts.UsePathStyle = true
	}

	return &S3Publisher{
		bucket:   opts.Bucket,
		prefix:   opts.Prefix,
		uploader: manager.NewUploader(s3.New(s3Opts)),
		logger:   logger.WithComponent("publish"),
	}, nil
}

// Publish uploads localPath and returns its s3:// location.
func (p *S3Publisher) Publish(ctx context.Context, localPath, key string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	objKey := objectKey(p.prefix, key)
	_, err = p.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(objKey),
		Body:        f,
		ContentType: aws.String(contentType(objKey)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object %s to bucket %s: %w", objKey, p.bucket, err)
	}

	location := fmt.Sprintf("s3://%s/%s", p.bucket, objKey)
	p.logger.Debug("Uploaded %s to %s", localPath, location)
	return location, nil
}

// Close is a no-op; the S3 client holds no resources.
func (p *S3Publisher) Close() error {
	return nil
}
