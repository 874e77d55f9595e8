package source

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"precond-report/internal/config"
	"precond-report/internal/dataset"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"
)

type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads CSV datasets addressed as s3://bucket/key.
type S3Source struct {
	client objectGetter
	logger *logrus.Logger
}

func NewS3Source(ctx context.Context, cfg config.S3Config, logger *logrus.Logger) (*S3Source, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return &S3Source{client: s3.NewFromConfig(awsCfg, s3Opts...), logger: logger}, nil
}

func newS3SourceWithClient(client objectGetter, logger *logrus.Logger) *S3Source {
	return &S3Source{client: client, logger: logger}
}

func parseS3URI(id string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(id, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 uri: %s", id)
	}
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 uri must name a bucket and key: %s", id)
	}
	return bucket, key, nil
}

func (s *S3Source) Fetch(ctx context.Context, id string) (*dataset.Table, error) {
	bucket, key, err := parseS3URI(id)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"bucket": bucket,
		"key":    key,
	}).Debug("Fetching dataset object")

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		var noSuchBucket *types.NoSuchBucket
		if errors.As(err, &noSuchKey) || errors.As(err, &noSuchBucket) {
			return nil, fmt.Errorf("%s: %w", id, dataset.ErrMissingSource)
		}
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer out.Body.Close()

	return dataset.ReadTable(out.Body)
}
