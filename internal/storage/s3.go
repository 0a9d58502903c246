package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DocumentStore keeps tour document files in a single S3-compatible
// bucket (AWS S3 or MinIO). Object keys are chosen by the caller.
type DocumentStore struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// Config holds explicit construction parameters. Production wiring
// reads these from environment via OpenFromEnv.
type Config struct {
	Region    string
	Bucket    string
	Endpoint  string // optional, for MinIO
	PathStyle bool
}

// New builds a DocumentStore from Config using the default AWS
// credentials chain.
func New(ctx context.Context, cfg Config) (*DocumentStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &DocumentStore{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
	}, nil
}

// OpenFromEnv constructs a DocumentStore from process environment:
//
//	DOCS_S3_BUCKET      (required)
//	DOCS_S3_REGION      (default us-east-1)
//	DOCS_S3_ENDPOINT    (optional, for MinIO)
//	DOCS_S3_PATH_STYLE  true|false (default false)
//	AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY (optional, default chain)
func OpenFromEnv(ctx context.Context) (*DocumentStore, error) {
	bucket := os.Getenv("DOCS_S3_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("DOCS_S3_BUCKET required")
	}
	return New(ctx, Config{
		Bucket:    bucket,
		Region:    os.Getenv("DOCS_S3_REGION"),
		Endpoint:  os.Getenv("DOCS_S3_ENDPOINT"),
		PathStyle: strings.EqualFold(os.Getenv("DOCS_S3_PATH_STYLE"), "true"),
	})
}

// Put uploads an object under key with the given content type.
func (s *DocumentStore) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	input := &s3.PutObjectInput{Bucket: &s.bucket, Key: &key, Body: body}
	if contentType != "" {
		input.ContentType = &contentType
	}
	_, err := s.client.PutObject(ctx, input)
	return err
}

// Delete removes the object under key. Deleting a missing key is not
// an error in S3 and is treated the same here.
func (s *DocumentStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &s.bucket, Key: &key})
	return err
}

// PresignGet returns a time-limited GET URL for the object under key.
func (s *DocumentStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	out, err := s.presign.PresignGetObject(ctx,
		&s3.GetObjectInput{Bucket: &s.bucket, Key: &key},
		func(po *s3.PresignOptions) { po.Expires = expiry })
	if err != nil {
		return "", err
	}
	return out.URL, nil
}
