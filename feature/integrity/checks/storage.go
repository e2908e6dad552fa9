package checks

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"reconciler/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Storage check statuses.
const (
	StatusOK      = "ok"
	StatusMissing = "missing"
	StatusFixed   = "fixed"
)

// StorageReport describes the record set layout of the bucket.
type StorageReport struct {
	Bucket        string `json:"bucket"`
	BucketExists  bool   `json:"bucket_exists"`
	Prefix        string `json:"prefix"`
	PrefixPresent bool   `json:"prefix_present"`
	Status        string `json:"status"`
}

func folder(prefix string) string {
	p := strings.Trim(prefix, "/")
	if p == "" {
		return ""
	}
	return p + "/"
}

// CheckStorage reports whether the bucket exists and holds anything under prefix.
func CheckStorage(ctx context.Context, client storage.Client, bucket, prefix string) (*StorageReport, error) {
	report := &StorageReport{Bucket: bucket, Prefix: folder(prefix), Status: StatusMissing}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	report.BucketExists = exists
	if !exists {
		return report, nil
	}

	// An empty prefix means record sets live at the bucket root.
	if report.Prefix == "" {
		report.PrefixPresent = true
		report.Status = StatusOK
		return report, nil
	}

	opts := minio.ListObjectsOptions{
		Prefix:    report.Prefix,
		Recursive: false,
		MaxKeys:   1,
	}
	for obj := range client.ListObjects(ctx, bucket, opts) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", report.Prefix, obj.Err)
		}
		report.PrefixPresent = true
		break
	}

	if report.PrefixPresent {
		report.Status = StatusOK
	}
	return report, nil
}

// FixStorage creates what report found missing: the bucket and a marker object for the prefix.
func FixStorage(ctx context.Context, client storage.Client, logger *zap.Logger, report *StorageReport) error {
	if !report.BucketExists {
		if err := client.MakeBucket(ctx, report.Bucket, minio.MakeBucketOptions{}); err != nil {
			logger.Error("Failed to create bucket", zap.String("bucket", report.Bucket), zap.Error(err))
			return fmt.Errorf("failed to create bucket %s: %w", report.Bucket, err)
		}
		logger.Info("Created missing bucket", zap.String("bucket", report.Bucket))
		report.BucketExists = true
	}

	if !report.PrefixPresent && report.Prefix != "" {
		_, err := client.PutObject(ctx, report.Bucket, report.Prefix, bytes.NewReader([]byte{}), 0, minio.PutObjectOptions{})
		if err != nil {
			logger.Error("Failed to create prefix", zap.String("prefix", report.Prefix), zap.Error(err))
			return fmt.Errorf("failed to create prefix %s: %w", report.Prefix, err)
		}
		logger.Info("Created missing prefix", zap.String("prefix", report.Prefix))
	}

	report.PrefixPresent = true
	report.Status = StatusFixed
	return nil
}
