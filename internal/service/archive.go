package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Archiver keeps raw model output that could not be parsed.
type Archiver interface {
	Archive(ctx context.Context, raw string) error
}

// NoopArchiver discards everything.
type NoopArchiver struct{}

// Archive implements Archiver.
func (NoopArchiver) Archive(context.Context, string) error { return nil }

// ObjectPutter is the part of the S3 client the archiver needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver uploads raw output under a dated key prefix.
type S3Archiver struct {
	client ObjectPutter
	bucket string
	prefix string
	now    func() time.Time
}

// NewS3Archiver creates an archiver writing to bucket.
func NewS3Archiver(client ObjectPutter, bucket string) *S3Archiver {
	return &S3Archiver{client: client, bucket: bucket, prefix: "unparsed-recipes", now: time.Now}
}

// Archive uploads raw as a text object.
func (a *S3Archiver) Archive(ctx context.Context, raw string) error {
	key := fmt.Sprintf("%s/%s/%s.txt", a.prefix, a.now().UTC().Format("2006/01/02"), uuid.NewString())
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(raw),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("failed to archive raw output to s3://%s/%s: %w", a.bucket, key, err)
	}
	return nil
}
