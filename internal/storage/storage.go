// Package storage stores doctor images in an S3-compatible bucket (MinIO in
// development, any S3 endpoint in production).
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"prescripto-backend/internal/config"
)

// publicReadPolicy lets browsers fetch images straight from the bucket.
const publicReadPolicy = `{
  "Version": "2012-10-17",
  "Statement": [{
    "Effect": "Allow",
    "Principal": {"AWS": ["*"]},
    "Action": ["s3:GetObject"],
    "Resource": ["arn:aws:s3:::%s/*"]
  }]
}`

// Client uploads and removes objects in a single bucket.
type Client struct {
	mc         *minio.Client
	bucket     string
	publicBase string
}

func normaliseEndpoint(raw string) (endpoint string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("empty endpoint")
	}

	// Accept either "minio:9000" or "http://minio:9000" / "https://minio:9000".
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, err
		}
		if u.Host == "" {
			return "", false, fmt.Errorf("invalid endpoint")
		}
		if u.Path != "" && u.Path != "/" {
			return "", false, fmt.Errorf("endpoint must not contain a path")
		}
		secure = (u.Scheme == "https")
		return u.Host, secure, nil
	}

	// No scheme provided, treat as host:port (insecure by default for local MinIO).
	return raw, false, nil
}

// publicBaseURL returns the URL prefix under which objects are reachable,
// path-style: <base>/<bucket>/<key>.
func publicBaseURL(cfg config.StorageConfig, endpoint string, secure bool) string {
	base := strings.TrimRight(cfg.PublicURL, "/")
	if base == "" {
		scheme := "http"
		if secure {
			scheme = "https"
		}
		base = scheme + "://" + endpoint
	}
	return base + "/" + cfg.Bucket
}

// New connects to the storage endpoint and checks the bucket. When
// cfg.CreateBucket is set a missing bucket is created with public read access;
// otherwise a missing bucket is an error.
func New(ctx context.Context, cfg config.StorageConfig) (*Client, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("storage configuration incomplete")
	}

	endpoint, secure, err := normaliseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	mc, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, err
	}

	exists, err := mc.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if !cfg.CreateBucket {
			return nil, fmt.Errorf("storage bucket does not exist: %s", cfg.Bucket)
		}
		if err := mc.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		if err := mc.SetBucketPolicy(ctx, cfg.Bucket, fmt.Sprintf(publicReadPolicy, cfg.Bucket)); err != nil {
			return nil, fmt.Errorf("set bucket policy: %w", err)
		}
	}

	return &Client{
		mc:         mc,
		bucket:     cfg.Bucket,
		publicBase: publicBaseURL(cfg, endpoint, secure),
	}, nil
}

// Bucket returns the bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

// ObjectURL returns the public URL of key.
func (c *Client) ObjectURL(key string) string {
	return c.publicBase + "/" + strings.TrimLeft(key, "/")
}

// PutImage uploads r under key and returns its public URL. size may be -1
// when unknown.
func (c *Client) PutImage(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := c.mc.PutObject(ctx, c.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return c.ObjectURL(key), nil
}

// Remove deletes key. Removing a missing object is not an error.
func (c *Client) Remove(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	if err := c.mc.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

// Ping reports whether the bucket is reachable.
func (c *Client) Ping(ctx context.Context) error {
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket does not exist: %s", c.bucket)
	}
	return nil
}
