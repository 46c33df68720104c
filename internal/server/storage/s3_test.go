package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() S3Config {
	return S3Config{
		RootUser:     "admin",
		RootPassword: "secret",
		Bucket:       "uploads",
		Region:       "us-east-1",
		BaseEndpoint: "http://127.0.0.1:9000/",
	}
}

func TestPublicURL_PathStyle(t *testing.T) {
	s := NewS3Store(testConfig())

	got := s.PublicURL("abc.jpg")
	assert.Equal(t, "http://127.0.0.1:9000/uploads/abc.jpg", got)
}

func TestPublicURL_NoDoubleSlash(t *testing.T) {
	cfg := testConfig()
	cfg.BaseEndpoint = "http://127.0.0.1:9000"
	s := NewS3Store(cfg)

	got := s.PublicURL("abc.jpg")
	assert.Equal(t, "http://127.0.0.1:9000/uploads/abc.jpg", got)
}

func TestPut_SetsWriteOnceGuard(t *testing.T) {
	origPut := putObject
	defer func() { putObject = origPut }()

	var captured *s3.PutObjectInput
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		captured = in
		return &s3.PutObjectOutput{}, nil
	}

	s := NewS3Store(testConfig())
	err := s.Put(context.Background(), "key.png", strings.NewReader("bytes"), "image/png")
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "uploads", aws.ToString(captured.Bucket))
	assert.Equal(t, "key.png", aws.ToString(captured.Key))
	assert.Equal(t, "image/png", aws.ToString(captured.ContentType))
	assert.Equal(t, "*", aws.ToString(captured.IfNoneMatch), "uploads must never overwrite")
}

func TestPut_PropagatesError(t *testing.T) {
	origPut := putObject
	defer func() { putObject = origPut }()

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, errors.New("bucket unreachable")
	}

	s := NewS3Store(testConfig())
	err := s.Put(context.Background(), "key.png", strings.NewReader("bytes"), "image/png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket unreachable")
}

func TestDelete_CallsBackend(t *testing.T) {
	origDel := deleteObject
	defer func() { deleteObject = origDel }()

	var captured *s3.DeleteObjectInput
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		captured = in
		return &s3.DeleteObjectOutput{}, nil
	}

	s := NewS3Store(testConfig())
	require.NoError(t, s.Delete(context.Background(), "gone.pdf"))

	require.NotNil(t, captured)
	assert.Equal(t, "gone.pdf", aws.ToString(captured.Key))
}

func TestDelete_PropagatesError(t *testing.T) {
	origDel := deleteObject
	defer func() { deleteObject = origDel }()

	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
		return nil, errors.New("delete denied")
	}

	s := NewS3Store(testConfig())
	err := s.Delete(context.Background(), "gone.pdf")
	require.Error(t, err)
}
