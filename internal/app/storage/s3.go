/*
Package storage provides the blob storage service behind the file upload endpoint.

This file implements the S3-compatible backend using a custom endpoint resolver,
so it works against AWS S3 as well as MinIO-style services.
*/
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"tinychat/internal/pkg/logx"
)

// s3Store implements BlobStore against S3-compatible object storage.
type s3Store struct {
	cfg      ServiceConfig
	client   *s3.Client
	uploader *manager.Uploader
}

// newS3Store initializes the S3 client with static credentials and a custom
// path-style endpoint.
func newS3Store(cfg ServiceConfig) (*s3Store, error) {
	if cfg.S3BucketName == "" || cfg.S3Endpoint == "" {
		return nil, errors.New("s3 bucket name and endpoint are required for s3 storage")
	}

	sdkCfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		)),
		config.WithRegion("auto"),
	)
	if err != nil {
		logx.Error(err, "Failed to load AWS SDK config")
		return nil, errors.New("failed to initialize s3 client configuration")
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		o.UsePathStyle = true
	})

	return &s3Store{
		cfg:      cfg,
		client:   client,
		uploader: manager.NewUploader(client),
	}, nil
}

// Save streams the blob to the bucket and returns its path-style URL.
func (c *s3Store) Save(ctx context.Context, key, mimeType string, size int64, r io.Reader) (string, error) {
	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:        &c.cfg.S3BucketName,
		Key:           &key,
		Body:          r,
		ContentType:   &mimeType,
		ContentLength: &size,
	})
	if err != nil {
		logx.Error(err, "S3 upload failed", "key", key)
		return "", errors.New("failed to upload file to s3")
	}

	return fmt.Sprintf("%s/%s/%s",
		strings.TrimRight(c.cfg.S3Endpoint, "/"),
		c.cfg.S3BucketName,
		key,
	), nil
}

// Delete removes the blob from the bucket.
func (c *s3Store) Delete(ctx context.Context, key string) error {
	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &c.cfg.S3BucketName,
		Key:    &key,
	})
	if err != nil {
		logx.Error(err, "S3 delete failed", "key", key)
		return errors.New("failed to delete file from s3")
	}

	return nil
}
