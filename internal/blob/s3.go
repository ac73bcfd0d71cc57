package blob

import (
	"context"
	"fmt"
	"io"

	"github.com/akrylov/photosync/internal/common"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
)

// S3Options configure an S3Store. BaseEndpoint allows pointing the client
// at any S3-compatible backend (MinIO in development).
type S3Options struct {
	AccessKey    string
	SecretKey    string
	Bucket       string
	Region       string
	BaseEndpoint string
}

// S3Store implements Store over an S3-compatible backend. S3 PutObject is
// overwrite-on-conflict by definition, which gives the pipeline its retry
// safety.
type S3Store struct {
	opts S3Options
}

func NewS3Store(opts S3Options) *S3Store {
	return &S3Store{opts: opts}
}

func (s *S3Store) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.opts.AccessKey,
			s.opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.opts.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return client, nil
}

// Put uploads body under key, replacing any previous object at that key.
func (s *S3Store) Put(ctx context.Context, key, contentType string, body io.Reader) (StoredObject, error) {
	client, err := s.getClient(ctx)
	if err != nil {
		return StoredObject{}, fmt.Errorf("%w: %v", common.ErrUploadFailed, err)
	}

	out, err := putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.opts.Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return StoredObject{}, fmt.Errorf("%w: %v", common.ErrUploadFailed, err)
	}

	objectID := uuid.NewString()
	if out.VersionId != nil && *out.VersionId != "" {
		objectID = *out.VersionId
	}

	return StoredObject{Path: key, ObjectID: objectID}, nil
}
