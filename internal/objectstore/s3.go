package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cane-backend/internal/config"
	"cane-backend/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrNotConfigured is returned by NewS3Store when no bucket is set
var ErrNotConfigured = errors.New("object storage is not configured")

// S3Store keeps entry photos in an S3 compatible bucket (AWS S3 or Cloudflare R2)
type S3Store struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
}

// NewS3Store builds the uploads bucket client from config. It returns
// ErrNotConfigured when no bucket is set so callers can run without uploads.
func NewS3Store(ctx context.Context, cfg *config.Config) (*S3Store, error) {
	up := cfg.Uploads
	if up.Bucket == "" {
		return nil, ErrNotConfigured
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(up.Region)}
	if up.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(up.AccessKey, up.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if up.Endpoint != "" {
			o.BaseEndpoint = aws.String(up.Endpoint)
			o.UsePathStyle = true
		}
	})

	base := up.PublicBaseURL
	if base == "" && up.Endpoint != "" {
		base = strings.TrimRight(up.Endpoint, "/") + "/" + up.Bucket
	}

	return &S3Store{client: client, bucket: up.Bucket, publicBaseURL: strings.TrimRight(base, "/")}, nil
}

// Put uploads body under key and returns the public URL of the object
func (s *S3Store) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", utils.TransportError(err)
	}
	return s.publicBaseURL + "/" + key, nil
}

// Ping checks the bucket is reachable with the configured credentials
func (s *S3Store) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	return err
}
