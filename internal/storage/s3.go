// Package storage uploads and deletes recipe image objects.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pageza/recipebox/backend/config"
	"go.uber.org/zap"
)

// StoredObject describes an object after a successful upload.
type StoredObject struct {
	Key      string
	Location string
	// Fingerprint is the object ETag, the MD5 of the content for single-part uploads.
	Fingerprint string
	Size        int64
}

// S3API is the subset of the S3 client used by ObjectStore.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// ObjectStore stores image objects in a single S3 bucket.
type ObjectStore struct {
	client  S3API
	bucket  string
	baseURL string
	log     *zap.Logger
}

// NewObjectStore wraps an S3 client. baseURL prefixes keys to build public locations.
func NewObjectStore(client S3API, bucket, baseURL string, logger *zap.Logger) (*ObjectStore, error) {
	if client == nil {
		return nil, errors.New("storage: nil s3 client")
	}
	if bucket == "" {
		return nil, errors.New("storage: bucket is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObjectStore{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		log:     logger.Named("storage"),
	}, nil
}

// NewFromConfig builds an ObjectStore from the S3 settings in cfg.
func NewFromConfig(s3cfg *config.S3Config, logger *zap.Logger) (*ObjectStore, error) {
	return NewObjectStore(s3cfg.Client, s3cfg.BucketName, s3cfg.PublicBaseURL, logger)
}

// Upload puts data under key in one call.
func (s *ObjectStore) Upload(ctx context.Context, key string, data []byte, contentType string) (StoredObject, error) {
	out, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return StoredObject{}, fmt.Errorf("failed to upload %s to S3: %w", key, err)
	}

	obj := StoredObject{
		Key:      key,
		Location: s.Location(key),
		Size:     int64(len(data)),
	}
	if out != nil && out.ETag != nil {
		obj.Fingerprint = strings.Trim(*out.ETag, `"`)
	}
	s.log.Debug("uploaded object", zap.String("key", key), zap.Int64("size", obj.Size))
	return obj, nil
}

// Delete removes key from the bucket. Deleting a missing key succeeds.
func (s *ObjectStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from S3: %w", key, err)
	}
	s.log.Debug("deleted object", zap.String("key", key))
	return nil
}

// Location is the public URL of key.
func (s *ObjectStore) Location(key string) string {
	return s.baseURL + "/" + key
}

// KeyFromURL returns the object key of a stored location: its last path segment.
func KeyFromURL(location string) string {
	p := location
	if u, err := url.Parse(location); err == nil && u.Path != "" {
		p = u.Path
	}
	key := path.Base(p)
	if key == "." || key == "/" {
		return ""
	}
	return key
}
