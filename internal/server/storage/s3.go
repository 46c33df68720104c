package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in, optFns...)
	}
)

// S3Config carries the settings for an S3-compatible backend (MinIO in dev).
type S3Config struct {
	RootUser     string
	RootPassword string
	Bucket       string
	Region       string
	BaseEndpoint string
}

// S3Store implements ObjectStore over an S3-compatible backend. The backend
// serves the bucket publicly, so PublicURL is endpoint/bucket/key
// (path-style addressing).
type S3Store struct {
	cfg S3Config
}

func NewS3Store(cfg S3Config) *S3Store {
	return &S3Store{cfg: cfg}
}

func (s *S3Store) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.cfg.RootUser,     // MINIO_ROOT_USER
			s.cfg.RootPassword, // MINIO_ROOT_PASSWORD
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.cfg.BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, nil
}

// Put stores body under key. IfNoneMatch guards the write-once contract:
// the backend rejects the call if the key already exists.
func (s *S3Store) Put(ctx context.Context, key string, body io.Reader, contentType string) error {

	client, err := s.getClient(ctx)
	if err != nil {
		return err
	}

	bucket := s.cfg.Bucket

	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        body,
		ContentType: &contentType,
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		return fmt.Errorf("storage upload: %w", err)
	}

	return nil
}

// PublicURL resolves the public path-style URL for key.
func (s *S3Store) PublicURL(key string) string {
	base := strings.TrimRight(s.cfg.BaseEndpoint, "/")
	return fmt.Sprintf("%s/%s/%s", base, s.cfg.Bucket, key)
}

func (s *S3Store) Delete(ctx context.Context, key string) error {

	client, err := s.getClient(ctx)
	if err != nil {
		return err
	}

	bucket := s.cfg.Bucket

	_, err = deleteObject(client, ctx, &s3.DeleteObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("storage delete: %w", err)
	}

	return nil
}
