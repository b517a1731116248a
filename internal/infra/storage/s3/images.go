// Package s3 resolves accommodation photos stored in an S3-compatible bucket.
package s3

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"bookingengine/internal/app/ports"
	"bookingengine/internal/domain/booking"
)

const photoPrefix = "accommodations"

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

type objectLister interface {
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	BucketExists(ctx context.Context, bucket string) (bool, error)
}

// Images serves an accommodation's main photo. Objects live under
// accommodations/<id>/; one named main.* wins, otherwise the first by key.
type Images struct {
	bucket        string
	publicBaseURL string
	client        objectLister
	logger        *slog.Logger
}

func NewImages(endpoint string, useSSL bool, accessKey, secretKey, bucket, publicBaseURL string, logger *slog.Logger) (*Images, error) {
	cleanEndpoint := strings.TrimSpace(endpoint)
	if cleanEndpoint == "" {
		return nil, errors.New("s3: endpoint is required")
	}
	if bucket = strings.TrimSpace(bucket); bucket == "" {
		return nil, errors.New("s3: bucket is required")
	}
	minioClient, err := minio.New(parseEndpoint(cleanEndpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(strings.TrimSpace(accessKey), strings.TrimSpace(secretKey), ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("s3: create client: %w", err)
	}
	base := strings.TrimSpace(publicBaseURL)
	if base == "" {
		base = cleanEndpoint
	}
	return &Images{bucket: bucket, publicBaseURL: strings.TrimRight(base, "/"), client: minioClient, logger: logger}, nil
}

func (s *Images) MainImage(ctx context.Context, id booking.AccommodationID) (string, error) {
	prefix := fmt.Sprintf("%s/%s/", photoPrefix, strings.Trim(string(id), "/"))
	var keys []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return "", fmt.Errorf("s3: list %s: %w", prefix, obj.Err)
		}
		if imageExtensions[strings.ToLower(path.Ext(obj.Key))] {
			keys = append(keys, obj.Key)
		}
	}
	if len(keys) == 0 {
		return "", fmt.Errorf("%w: no photo for accommodation %s", ports.ErrNotFound, id)
	}
	sort.Strings(keys)
	chosen := keys[0]
	for _, k := range keys {
		if strings.HasPrefix(path.Base(k), "main.") {
			chosen = k
			break
		}
	}
	return s.objectURL(chosen), nil
}

// Check reports whether the bucket is reachable, for readiness probes.
func (s *Images) Check(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("s3: check bucket: %w", err)
	}
	if !ok {
		return fmt.Errorf("s3: bucket %s does not exist", s.bucket)
	}
	return nil
}

func (s *Images) objectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, strings.TrimLeft(key, "/"))
}

func parseEndpoint(endpoint string) string {
	if parsed, err := url.Parse(endpoint); err == nil && parsed.Host != "" {
		return parsed.Host
	}
	return endpoint
}

var _ ports.ImageLookup = (*Images)(nil)
