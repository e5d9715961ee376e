package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ImageStore stores ticket images and releases them when a ticket is
// deleted or its image replaced.
type ImageStore interface {
	Put(ctx context.Context, filename, contentType string, body io.Reader) (key, url string, err error)
	Release(ctx context.Context, key string) error
}

// R2Store keeps images in an S3-compatible bucket (Cloudflare R2).
type R2Store struct {
	Client    *s3.Client
	Bucket    string
	PublicURL string
}

// Put uploads the image under a fresh UUID-based key so uploads never
// collide regardless of the original filename.
func (s *R2Store) Put(ctx context.Context, filename, contentType string, body io.Reader) (string, string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	key := fmt.Sprintf("tickets/%s%s", uuid.New().String(), ext)

	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", "", fmt.Errorf("put image %s: %w", key, err)
	}

	return key, fmt.Sprintf("%s/%s", strings.TrimRight(s.PublicURL, "/"), key), nil
}

// Release deletes the stored object. A missing object is not an error;
// S3 deletes are idempotent.
func (s *R2Store) Release(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("release image %s: %w", key, err)
	}
	return nil
}
