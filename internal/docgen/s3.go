package docgen

import (
	"context"
	"fmt"
	"io"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Source fetches templates from an S3-compatible bucket (AWS S3 or
// MinIO). Minimal surface area: single bucket, template names map to
// object keys directly.
type S3Source struct {
	client *s3.Client
	bucket string
}

// S3Config holds explicit construction parameters. Credentials come from
// the default AWS credentials chain.
type S3Config struct {
	Bucket    string
	Region    string // default us-east-1
	Endpoint  string // optional; enables a custom endpoint (e.g. MinIO)
	PathStyle bool
}

// NewS3Source creates an S3-backed template source.
func NewS3Source(ctx context.Context, cfg S3Config) (*S3Source, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &S3Source{client: client, bucket: cfg.Bucket}, nil
}

// Fetch downloads the named template object.
func (s *S3Source) Fetch(ctx context.Context, name string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get template %s: %w", name, err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}
