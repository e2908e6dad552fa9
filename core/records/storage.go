package records

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"reconciler/core/reconcile"
	"reconciler/core/storage"

	"github.com/minio/minio-go/v7"
)

const recordSetExtension = ".json"

// StorageSource reads and writes record sets as JSON objects in a bucket.
type StorageSource struct {
	client storage.Client
	bucket string
	prefix string
}

// NewStorageSource creates a StorageSource rooted at prefix inside bucket.
func NewStorageSource(client storage.Client, bucket, prefix string) *StorageSource {
	return &StorageSource{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Name implements Source.
func (s *StorageSource) Name() string {
	return "storage"
}

// ObjectName maps a ref to its object key. Refs without an extension get ".json".
func (s *StorageSource) ObjectName(ref string) (string, error) {
	ref = strings.Trim(strings.TrimSpace(ref), "/")
	if ref == "" {
		return "", ErrInvalidRef
	}
	clean := path.Clean(ref)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	if path.Ext(clean) == "" {
		clean += recordSetExtension
	}
	if s.prefix == "" {
		return clean, nil
	}
	return s.prefix + "/" + clean, nil
}

// Load implements Source.
func (s *StorageSource) Load(ctx context.Context, ref string) ([]reconcile.Record, error) {
	objectName, err := s.ObjectName(ref)
	if err != nil {
		return nil, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.wrapErr(objectName, err)
	}
	defer obj.Close()

	recs, err := Decode(obj)
	if err != nil {
		return nil, s.wrapErr(objectName, err)
	}
	return recs, nil
}

// Save implements Store.
func (s *StorageSource) Save(ctx context.Context, ref string, recs []reconcile.Record) error {
	objectName, err := s.ObjectName(ref)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, recs); err != nil {
		return fmt.Errorf("failed to encode record set: %w", err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, objectName, bytes.NewReader(buf.Bytes()), int64(buf.Len()),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	return nil
}

// Delete implements Store.
func (s *StorageSource) Delete(ctx context.Context, ref string) error {
	objectName, err := s.ObjectName(ref)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return s.wrapErr(objectName, err)
	}
	return nil
}

// List implements Store. Refs are returned relative to the prefix.
func (s *StorageSource) List(ctx context.Context) ([]string, error) {
	listPrefix := ""
	if s.prefix != "" {
		listPrefix = s.prefix + "/"
	}

	refs := []string{}
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: listPrefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list record sets: %w", obj.Err)
		}
		ref := strings.TrimPrefix(obj.Key, listPrefix)
		if ref == "" || strings.HasSuffix(ref, "/") {
			continue
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (s *StorageSource) wrapErr(objectName string, err error) error {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) && (resp.Code == "NoSuchKey" || resp.StatusCode == 404) {
		return fmt.Errorf("%w: %s", ErrRecordSetNotFound, objectName)
	}
	return fmt.Errorf("failed to read %s: %w", objectName, err)
}
