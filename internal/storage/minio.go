package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinioStore implements ContentStore on any S3-compatible backend.
// The object ETag plays the role of the sha version token.
type MinioStore struct {
	client *minio.Client
	bucket string
	folder string
}

// MinioOptions configures a MinioStore.
type MinioOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Folder    string
	UseSSL    bool
}

// NewMinioStore creates a MinIO client, ensures the bucket exists with a
// public-read policy so the CDN prefix can serve it, and returns a
// ready-to-use MinioStore.
func NewMinioStore(ctx context.Context, opts MinioOptions, log *zap.Logger) (*MinioStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %q: %w", opts.Bucket, err)
		}
		log.Info("storage: created bucket", zap.String("bucket", opts.Bucket))
	}

	if err := client.SetBucketPolicy(ctx, opts.Bucket, publicReadPolicy(opts.Bucket)); err != nil {
		return nil, fmt.Errorf("set bucket policy: %w", err)
	}

	return &MinioStore{
		client: client,
		bucket: opts.Bucket,
		folder: strings.Trim(opts.Folder, "/"),
	}, nil
}

func (s *MinioStore) key(name string) string {
	return path.Join(s.folder, name)
}

// Metadata stats the object and reports its ETag as sha.
func (s *MinioStore) Metadata(ctx context.Context, name string) (*Object, error) {
	info, err := s.client.StatObject(ctx, s.bucket, s.key(name), minio.StatObjectOptions{})
	if err != nil {
		return nil, minioError("get metadata", err)
	}
	return &Object{
		Name: name,
		Path: info.Key,
		SHA:  info.ETag,
		Size: info.Size,
		Type: "file",
	}, nil
}

// Put uploads content under name. An existing object is reported as a
// conflict to keep the create-only contract of ContentStore.
func (s *MinioStore) Put(ctx context.Context, name string, content []byte, _ string) (*Object, error) {
	if _, err := s.Metadata(ctx, name); err == nil {
		return nil, fmt.Errorf("put object %q: %w", name, ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	info, err := s.client.PutObject(ctx, s.bucket, s.key(name), bytes.NewReader(content), int64(len(content)),
		minio.PutObjectOptions{ContentType: http.DetectContentType(content)})
	if err != nil {
		return nil, minioError("put object", err)
	}
	return &Object{Name: name, Path: info.Key, SHA: info.ETag, Size: info.Size, Type: "file"}, nil
}

// Delete removes the object when sha still equals its ETag.
func (s *MinioStore) Delete(ctx context.Context, name, sha, _ string) error {
	obj, err := s.Metadata(ctx, name)
	if err != nil {
		return err
	}
	if obj.SHA != sha {
		return fmt.Errorf("delete object %q: %w", name, ErrConflict)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, s.key(name), minio.RemoveObjectOptions{}); err != nil {
		return minioError("delete object", err)
	}
	return nil
}

// List returns the objects directly under the folder.
func (s *MinioStore) List(ctx context.Context) ([]Object, error) {
	objs := []Object{}
	prefix := s.folder + "/"
	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix}) {
		if info.Err != nil {
			return nil, minioError("list folder", info.Err)
		}
		name := strings.TrimPrefix(info.Key, prefix)
		entryType := "file"
		if strings.HasSuffix(name, "/") {
			name = strings.TrimSuffix(name, "/")
			entryType = "dir"
		}
		objs = append(objs, Object{Name: name, Path: info.Key, SHA: info.ETag, Size: info.Size, Type: entryType})
	}
	return objs, nil
}

// minioError converts a MinIO error response into an UpstreamError so the
// same sentinels apply to both backends.
func minioError(op string, err error) error {
	resp := minio.ToErrorResponse(err)
	status := resp.StatusCode
	if resp.Code == "NoSuchKey" {
		status = http.StatusNotFound
	}
	if status == 0 {
		return fmt.Errorf("%s: %w", op, err)
	}
	body, _ := json.Marshal(resp)
	return &UpstreamError{Op: op, StatusCode: status, Body: body}
}

// publicReadPolicy returns an S3 bucket policy JSON that allows anonymous GET on all objects.
func publicReadPolicy(bucket string) string {
	policy := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{
			{
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    "s3:GetObject",
				"Resource":  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}
