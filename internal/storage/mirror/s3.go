package mirror

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jgivc/w1r3catcher/internal/config"
	"github.com/jgivc/w1r3catcher/internal/entity"
)

const (
	metaNetwork = "network"
	metaChannel = "channel"
	metaNick    = "nick"
	metaSource  = "source-url"
)

type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Mirror copies stored files to a bucket under Prefix + file name.
type S3Mirror struct {
	client ObjectPutter
	bucket string
	prefix string
	log    *slog.Logger
}

func New(ctx context.Context, cfg *config.MirrorConfig, log *slog.Logger) (*S3Mirror, error) {
	awsCfg, err := buildAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("cannot build aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return NewWithClient(client, cfg.Bucket, cfg.Prefix, log), nil
}

func NewWithClient(client ObjectPutter, bucket, prefix string, log *slog.Logger) *S3Mirror {
	return &S3Mirror{
		client: client,
		bucket: bucket,
		prefix: prefix,
		log:    log.With(slog.String("item", "S3Mirror")),
	}
}

func (m *S3Mirror) Put(ctx context.Context, req *entity.DownloadRequest, file *entity.StoredFile, data []byte) error {
	key := m.prefix + file.Name

	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(http.DetectContentType(data)),
		Metadata: map[string]string{
			metaNetwork: req.Network,
			metaChannel: req.Channel,
			metaNick:    req.Nick,
			metaSource:  req.URL,
		},
	})
	if err != nil {
		return fmt.Errorf("cannot put %s to bucket %s: %w", key, m.bucket, err)
	}

	m.log.Debug("File mirrored", slog.String("bucket", m.bucket), slog.String("key", key), slog.Int("size", len(data)))

	return nil
}

func buildAWSConfig(ctx context.Context, cfg *config.MirrorConfig) (aws.Config, error) {
	var optFns []func(*awsconfig.LoadOptions) error

	if cfg.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(cfg.Region))
	}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		optFns = append(optFns, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	optFns = append(optFns,
		awsconfig.WithRetryMaxAttempts(cfg.MaxRetries),
		awsconfig.WithHTTPClient(awshttp.NewBuildableClient().WithTimeout(cfg.Timeout)),
	)

	return awsconfig.LoadDefaultConfig(ctx, optFns...)
}
