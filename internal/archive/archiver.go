// Package archive uploads finished run reports to S3-compatible object
// storage. Any endpoint speaking the S3 API works (AWS, Cloudflare R2,
// MinIO); the endpoint and credentials come from configuration.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	appconfig "github.com/quantalab/qbenchd/internal/config"
)

// uploadTimeout bounds one report upload.
const uploadTimeout = 30 * time.Second

// Archiver uploads run reports to an S3-compatible bucket.
type Archiver struct {
	uploader *manager.Uploader
	bucket   string
	prefix   string
	log      zerolog.Logger
}

// New creates an archiver from the archive configuration.
func New(cfg *appconfig.ArchiveConfig, log zerolog.Logger) (*Archiver, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load archive credentials: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = &cfg.Endpoint
			// R2 and MinIO want path-style addressing
			o.UsePathStyle = true
		}
	})

	return &Archiver{
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
		prefix:   cfg.Prefix,
		log:      log.With().Str("service", "archive").Logger(),
	}, nil
}

// reportKey builds the object key: <prefix>/<kind>/<yyyy-mm-dd>/<uuid>.json,
// so reports shard by day.
func reportKey(prefix, kind, runUUID string, now time.Time) string {
	return fmt.Sprintf("%s/%s/%s/%s.json", prefix, kind, now.UTC().Format("2006-01-02"), runUUID)
}

// ArchiveReport uploads one run report.
func (a *Archiver) ArchiveReport(ctx context.Context, kind, runUUID string, report []byte) error {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	key := reportKey(a.prefix, kind, runUUID, time.Now())
	contentType := "application/json"

	_, err := a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      &a.bucket,
		Key:         &key,
		Body:        bytes.NewReader(report),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload report %s: %w", runUUID, err)
	}

	a.log.Info().Str("run", runUUID).Str("key", key).Int("bytes", len(report)).Msg("Report archived")
	return nil
}
