package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"github.com/nurpe/dumpster-rentals/internal/config"
)

const invoicePrefix = "invoices/"

// InvoiceStore archives rendered invoices in an S3-compatible bucket.
type InvoiceStore struct {
	client *minio.Client
	bucket string
	log    zerolog.Logger
}

// NewInvoiceStore connects to MinIO and creates the bucket when missing.
func NewInvoiceStore(ctx context.Context, cfg config.MinIOConfig, log zerolog.Logger) (*InvoiceStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		log.Info().Str("bucket", cfg.Bucket).Msg("bucket created")
	}

	return &InvoiceStore{client: client, bucket: cfg.Bucket, log: log}, nil
}

// PutInvoice overwrites any earlier copy with the same name.
func (s *InvoiceStore) PutInvoice(ctx context.Context, name string, content []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, invoicePrefix+name, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: "application/pdf",
	})
	if err != nil {
		return fmt.Errorf("failed to upload invoice: %w", err)
	}
	s.log.Debug().Str("object", invoicePrefix+name).Msg("invoice archived")
	return nil
}

// Ping is the object storage health check.
func (s *InvoiceStore) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s is missing", s.bucket)
	}
	return nil
}
