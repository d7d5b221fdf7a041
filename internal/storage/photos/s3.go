// Package photos signs upload and read URLs for profile photos in S3 (or any
// S3-compatible store when an endpoint is configured).
package photos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/oggyb/vibecheck/internal/config"
)

// ErrDisabled is returned when no bucket is configured.
var ErrDisabled = errors.New("photo storage is not configured")

type Presigner struct {
	bucket  string
	ttl     time.Duration
	presign *s3.PresignClient
}

// PresignedURL is a signed request the client performs itself.
type PresignedURL struct {
	URL       string
	Method    string
	ExpiresAt time.Time
}

// New builds a presigner from config. Without a bucket it returns a disabled
// presigner, so callers can always hold one.
func New(ctx context.Context, cfg config.S3Config) (*Presigner, error) {
	if cfg.Bucket == "" {
		return &Presigner{}, nil
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &Presigner{
		bucket:  cfg.Bucket,
		ttl:     ttl,
		presign: s3.NewPresignClient(client),
	}, nil
}

// Enabled reports whether a bucket is configured.
func (p *Presigner) Enabled() bool {
	return p != nil && p.presign != nil
}

// PresignUpload generates a presigned URL for uploading an object.
func (p *Presigner) PresignUpload(ctx context.Context, key, contentType string) (*PresignedURL, error) {
	if !p.Enabled() {
		return nil, ErrDisabled
	}
	req, err := p.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(p.ttl))
	if err != nil {
		return nil, fmt.Errorf("presign put %s: %w", key, err)
	}
	return &PresignedURL{URL: req.URL, Method: req.Method, ExpiresAt: time.Now().Add(p.ttl)}, nil
}

// PresignRead generates a presigned URL for reading an object.
func (p *Presigner) PresignRead(ctx context.Context, key string) (*PresignedURL, error) {
	if !p.Enabled() {
		return nil, ErrDisabled
	}
	req, err := p.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(p.ttl))
	if err != nil {
		return nil, fmt.Errorf("presign get %s: %w", key, err)
	}
	return &PresignedURL{URL: req.URL, Method: req.Method, ExpiresAt: time.Now().Add(p.ttl)}, nil
}
