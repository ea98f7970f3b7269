package s3downl

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/zstd"
)

// DownloadFunc fetches the object behind an S3 URL into path.
type DownloadFunc func(ctx context.Context, s3Url string, path string) error

// ParseURL splits a virtual-hosted S3 URL (https://bucket.s3.region.amazonaws.com/key)
// into bucket and key.
func ParseURL(s3Url string) (bucket string, key string, err error) {
	u, err := url.Parse(s3Url)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse s3 url %s: %w", s3Url, err)
	}

	if u.Scheme != "https" {
		return "", "", fmt.Errorf("invalid s3 url scheme: %s", u.Scheme)
	}

	hostParts := strings.Split(u.Host, ".")
	if len(hostParts) < 3 || hostParts[1] != "s3" {
		return "", "", fmt.Errorf("invalid s3 url host format: %s", u.Host)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("s3 url %s has no object key", s3Url)
	}
	return hostParts[0], key, nil
}

// IsURL reports whether src looks like something ParseURL accepts.
func IsURL(src string) bool {
	_, _, err := ParseURL(src)
	return err == nil
}

// NewDownloadFunc builds a downloader from the default AWS credential chain.
// Objects stored as zstd (by content type or .zst suffix) are decompressed
// on the way to disk.
func NewDownloadFunc(ctx context.Context, region string, logger *slog.Logger) (DownloadFunc, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	s3Client := s3.NewFromConfig(cfg)

	return func(ctx context.Context, s3Url string, path string) error {
		bucket, key, err := ParseURL(s3Url)
		if err != nil {
			return err
		}

		logger.Info("downloading from s3", "url", s3Url, "path", path)
		obj, err := s3Client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return fmt.Errorf("failed to download file %s from s3: %w (bucket: %s, key: %s)", s3Url, err, bucket, key)
		}
		defer obj.Body.Close()

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		tmp := path + ".part"
		out, err := os.Create(tmp)
		if err != nil {
			return fmt.Errorf("failed to create file %s: %w", tmp, err)
		}

		var body io.Reader = obj.Body
		if (obj.ContentType != nil && *obj.ContentType == "application/zstd") ||
			filepath.Ext(key) == ".zst" {
			d, err := zstd.NewReader(obj.Body)
			if err != nil {
				out.Close()
				return fmt.Errorf("failed to create zstd reader: %w", err)
			}
			defer d.Close()
			body = d
		}

		if _, err = io.Copy(out, body); err != nil {
			out.Close()
			return fmt.Errorf("failed to write file %s: %w", path, err)
		}
		if err := out.Close(); err != nil {
			return err
		}
		return os.Rename(tmp, path)
	}, nil
}
