package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const documentSuffix = ".json"

// s3API is the minimal S3 interface required by S3Backend.
// *s3.Client from aws-sdk-go-v2 satisfies this interface.
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Backend keeps the document as a single JSON object in a bucket.
type S3Backend struct {
	api    s3API
	bucket string
	key    string
}

// NewS3Backend creates a backend for object in bucket.
func NewS3Backend(api s3API, bucket, object string) (*S3Backend, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("repository: bucket name must not be empty")
	}
	if strings.TrimSpace(object) == "" {
		return nil, errors.New("repository: object name must not be empty")
	}
	return &S3Backend{api: api, bucket: strings.TrimSpace(bucket), key: ObjectKey(object)}, nil
}

// ObjectKey returns the key for a configured object name; names are stored
// with a .json suffix.
func ObjectKey(object string) string {
	object = strings.TrimSpace(object)
	if strings.HasSuffix(object, documentSuffix) {
		return object
	}
	return object + documentSuffix
}

func (b *S3Backend) Fetch(ctx context.Context) ([]byte, error) {
	out, err := b.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: GetObject s3://%s/%s: %w", b.bucket, b.key, err)
	}
	if out == nil || out.Body == nil {
		return nil, ErrNotFound
	}
	defer func() { _ = out.Body.Close() }()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("repository: read s3://%s/%s: %w", b.bucket, b.key, err)
	}
	return raw, nil
}

func (b *S3Backend) Store(ctx context.Context, body []byte) error {
	_, err := b.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(b.key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("repository: PutObject s3://%s/%s: %w", b.bucket, b.key, err)
	}
	return nil
}
