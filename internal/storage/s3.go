package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/bookshelf/server/internal/config"
)

// S3Store stores assets in an S3-compatible bucket. Objects are keyed
// folder/<uuid> with no extension; delivery URLs carry the format
// extension, matching the ObjectKeyFromURL contract.
type S3Store struct {
	client   *s3.Client
	bucket   string
	endpoint string
}

// NewS3Store creates an object store backed by the configured bucket
func NewS3Store(ctx context.Context, cfg *config.Config) (*S3Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		o.UsePathStyle = true
	})

	return &S3Store{
		client:   client,
		bucket:   cfg.S3Bucket,
		endpoint: strings.TrimSuffix(cfg.S3Endpoint, "/"),
	}, nil
}

// Put writes one asset as a single atomic remote write and returns its
// delivery URLs.
func (s *S3Store) Put(ctx context.Context, data []byte, in PutInput) (PutResult, error) {
	key := in.Folder + "/" + uuid.New().String()

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(in)),
	})
	if err != nil {
		return PutResult{}, fmt.Errorf("failed to upload object %s: %w", key, err)
	}

	public := fmt.Sprintf("%s/%s/%s.%s", s.endpoint, s.bucket, key, in.Format)
	secure := public
	if strings.HasPrefix(secure, "http://") {
		secure = "https://" + strings.TrimPrefix(secure, "http://")
	}
	return PutResult{SecureURL: secure, URL: public}, nil
}

// Delete removes the object behind a derived key
func (s *S3Store) Delete(ctx context.Context, key string, kind ResourceKind) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

func contentType(in PutInput) string {
	switch in.Kind {
	case KindImage:
		return "image/" + normalizeImageFormat(in.Format)
	default:
		return "application/" + in.Format
	}
}

func normalizeImageFormat(format string) string {
	if format == "jpg" {
		return "jpeg"
	}
	return format
}
