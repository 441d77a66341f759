// Package s3store stores package objects in Amazon S3 or an S3-compatible
// service such as MinIO.
package s3store

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// API is the subset of *s3.Client the store uses.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Options configures the S3 client.
type Options struct {
	Region       string // empty = resolved from the environment / shared config
	Endpoint     string // custom endpoint for S3-compatible services
	UsePathStyle bool   // required by MinIO
}

// NewClient builds an S3 client from the default credential chain.
// SDK-level retries are disabled; callers retry through retry.Executor.
func NewClient(ctx context.Context, opts Options) (*s3.Client, error) {
	cfgOpts := []func(*config.LoadOptions) error{
		config.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	}
	if opts.Region != "" {
		cfgOpts = append(cfgOpts, config.WithRegion(opts.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, cfgOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	}), nil
}

// Store writes objects into one bucket.
type Store struct {
	api    API
	bucket string
}

// New returns a store for bucket.
func New(api API, bucket string) *Store {
	return &Store{api: api, bucket: bucket}
}

// Put uploads one object.
func (s *Store) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}

// Location returns the s3:// URL of key.
func (s *Store) Location(key string) string {
	return "s3://" + s.bucket + "/" + key
}
