package objectclient

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/docuchat-ai/docuchat/internal/config"
	"github.com/docuchat-ai/docuchat/internal/core"
)

var _ core.ObjectClient = (*S3Client)(nil)

// S3Client fetches uploaded documents from AWS S3. Uploads happen in a
// separate client-facing flow; this service only ever reads.
type S3Client struct {
	downloader *manager.Downloader
	region     string
	bucket     string
	logger     *zap.Logger
}

func NewS3Client(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*S3Client, error) {
	if cfg.AwsAccessKey == "" || cfg.AwsSecretKey == "" {
		return nil, fmt.Errorf("AWS credentials not set")
	}
	if cfg.AwsRegion == "" {
		return nil, fmt.Errorf("AWS_REGION not set")
	}
	if cfg.BucketName == "" {
		return nil, fmt.Errorf("S3 bucket name not set")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(cfg.AwsRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AwsAccessKey, cfg.AwsSecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	logger.Info("connected to AWS S3", zap.String("bucket", cfg.BucketName), zap.String("region", cfg.AwsRegion))

	return &S3Client{
		downloader: manager.NewDownloader(client),
		region:     cfg.AwsRegion,
		bucket:     cfg.BucketName,
		logger:     logger,
	}, nil
}

// Download fetches the whole object for fileKey into memory. The
// manager downloader ranges the GET so large PDFs come down in
// parallel parts.
func (c *S3Client) Download(ctx context.Context, fileKey string) ([]byte, error) {
	ctxGet, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	buf := manager.NewWriteAtBuffer(nil)
	n, err := c.downloader.Download(ctxGet, buf, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(fileKey),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 download failed: %w", err)
	}

	c.logger.Debug("downloaded object", zap.String("key", fileKey), zap.Int64("bytes", n))
	return buf.Bytes(), nil
}

// URL returns the virtual-hosted-style public URL for a stored object.
func (c *S3Client) URL(fileKey string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, c.region, fileKey)
}
