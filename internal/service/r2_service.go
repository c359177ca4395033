package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	gonanoid "github.com/matoous/go-nanoid/v2"
	cfg "github.com/vk-0-7/media-poster/configs"
)

// MediaArchive stages downloaded media on R2 so the Graph API can ingest
// it by public URL. The Graph API does not accept direct uploads for
// containers; it fetches media from a URL we hand it.
type MediaArchive interface {
	ArchiveMedia(ctx context.Context, localPath string) (publicURL string, err error)
}

type R2Service struct {
	config cfg.Config
}

func NewR2Service(cfg cfg.Config) *R2Service {
	return &R2Service{config: cfg}
}

func (r *R2Service) r2Client(ctx context.Context) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r.config.R2.AccessKey, r.config.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r.config.R2.AccountID))
	}), nil
}

// ArchiveMedia uploads the downloaded file under a fresh key and returns
// the public bucket URL the publish step can hand to the platform.
func (r *R2Service) ArchiveMedia(ctx context.Context, localPath string) (string, error) {
	file, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("error reading media file: %w", err)
	}

	contentType := "application/octet-stream"
	if kind, err := filetype.Match(file); err == nil && kind != filetype.Unknown {
		contentType = kind.MIME.Value
	}

	key, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	if err := r.uploadToR2(ctx, key, file, contentType); err != nil {
		return "", fmt.Errorf("error uploading media to R2: %w", err)
	}

	return fmt.Sprintf("%s/%s", r.config.R2.PublicURL, key), nil
}

func (r *R2Service) uploadToR2(ctx context.Context, key string, file []byte, contentType string) error {
	client, err := r.r2Client(ctx)
	if err != nil {
		return err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.config.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(contentType),
	}

	_, err = client.PutObject(ctx, input)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}
