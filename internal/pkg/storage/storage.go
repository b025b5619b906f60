// Package storage stores uploaded files in an S3-compatible bucket
// (Cloudflare R2 in production).
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/forexfactory/site/internal/config"
)

// ErrNotFound is returned by Open when the object does not exist.
var ErrNotFound = errors.New("object not found")

// ErrDisabled is returned when no bucket is configured.
var ErrDisabled = errors.New("object storage is not configured")

// Store is the subset of object storage the HTTP handlers depend on.
type Store interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	Open(ctx context.Context, key string) (*Object, error)
	PresignUpload(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	PublicURL(key string) string
	KeyFromURL(raw string) (string, bool)
}

// Object is a readable stored object. Callers must close Body.
type Object struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// Client talks to the bucket through the AWS SDK.
type Client struct {
	s3        *s3.Client
	presign   *s3.PresignClient
	bucket    string
	publicURL string
}

// New builds a client for the configured R2 bucket.
func New(cfg config.R2Config) (*Client, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, ErrDisabled
	}
	client := s3.New(s3.Options{
		Region:       cfg.Region,
		BaseEndpoint: aws.String(cfg.Endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		UsePathStyle: true,
	})
	return &Client{
		s3:        client,
		presign:   s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

// Upload writes body under key and returns its public URL.
func (c *Client) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := c.s3.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put object %q: %w", key, err)
	}
	return c.PublicURL(key), nil
}

// Delete removes key. Deleting a missing object succeeds.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}

// Open streams key from the bucket.
func (c *Client) Open(ctx context.Context, key string) (*Object, error) {
	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get object %q: %w", key, err)
	}
	obj := &Object{Body: out.Body, ContentType: aws.ToString(out.ContentType)}
	if out.ContentLength != nil {
		obj.ContentLength = *out.ContentLength
	}
	return obj, nil
}

// PresignUpload returns a URL a browser can PUT the file to directly.
func (c *Client) PresignUpload(ctx context.Context, key, contentType string, ttl time.Duration) (string, error) {
	req, err := c.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign %q: %w", key, err)
	}
	return req.URL, nil
}

// PublicURL is where key is served from.
func (c *Client) PublicURL(key string) string {
	return PublicURL(c.publicURL, key)
}

// KeyFromURL recovers the object key from a URL produced by PublicURL.
func (c *Client) KeyFromURL(raw string) (string, bool) {
	return KeyFromURL(c.publicURL, raw)
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
