package store

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	tileerrors "github.com/belphemur/TileSlicer/pkg/errors"
	"github.com/rs/zerolog/log"
)

type S3Config struct {
	// Endpoint overrides the AWS endpoint, e.g. a MinIO server. Path-style addressing is used then.
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
}

// s3API is the subset of *s3.Client the sink needs.
type s3API interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink uploads tiles to an S3 compatible bucket.
type S3Sink struct {
	client s3API
	bucket string
	prefix string
}

func NewS3Sink(ctx context.Context, cfg S3Config) (*S3Sink, error) {
	if cfg.Bucket == "" {
		return nil, tileerrors.New(tileerrors.IOError, "configure s3", "a bucket is required")
	}

	opts := []func(*config.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, tileerrors.Wrap(tileerrors.IOError, "configure s3", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Sink(ctx, client, cfg.Bucket, cfg.Prefix)
}

// newS3Sink makes sure the bucket exists, creating it when missing.
func newS3Sink(ctx context.Context, client s3API, bucket, prefix string) (*S3Sink, error) {
	_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		_, err = client.CreateBucket(ctx, &s3.CreateBucketInput{
			Bucket: aws.String(bucket),
		})
		if err != nil {
			return nil, tileerrors.Wrap(tileerrors.IOError, "create bucket "+bucket, err)
		}
		log.Info().Str("bucket", bucket).Msg("Created bucket")
	}

	return &S3Sink{client: client, bucket: bucket, prefix: prefix}, nil
}

func (s *S3Sink) key(name string) string {
	return path.Join(s.prefix, name)
}

func (s *S3Sink) Location(name string) string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.key(name))
}

func (s *S3Sink) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(name)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		log.Error().Str("location", s.Location(name)).Err(err).Msg("Failed to upload tile")
		return tileerrors.Wrap(tileerrors.IOError, "upload tile "+name, err)
	}

	log.Debug().Str("location", s.Location(name)).Int("bytes_written", len(data)).Msg("Tile uploaded")
	return nil
}
