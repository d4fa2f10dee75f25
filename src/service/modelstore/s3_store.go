package modelstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"smell-bot/src/config"
)

// S3Store keeps models in an S3-compatible bucket
type S3Store struct {
	client     *minio.Client
	bucketName string
	region     string
	prefix     string
	initMu     sync.Mutex
	ready      bool
}

// NewS3Store validates the settings and creates the client. The bucket is
// created lazily on first use.
func NewS3Store(cfg config.S3Config) (*S3Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &S3Store{
		client:     client,
		bucketName: bucket,
		region:     region,
		prefix:     strings.Trim(strings.TrimSpace(cfg.Prefix), "/"),
	}, nil
}

// ensureBucket checks for the bucket, creating it if absent. Only success is
// remembered; a failed check is retried by the next call.
func (s *S3Store) ensureBucket(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()
	if s.ready {
		return nil
	}

	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("checking bucket %s: %w", s.bucketName, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("creating bucket %s: %w", s.bucketName, err)
		}
	}
	s.ready = true
	return nil
}

func (s *S3Store) objectKey(handle string) string {
	if s.prefix == "" {
		return handle + fileExt
	}
	return s.prefix + "/" + handle + fileExt
}

func (s *S3Store) Put(ctx context.Context, handle string, data []byte) error {
	handle, err := normalizeHandle(handle)
	if err != nil {
		return err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	_, err = s.client.PutObject(ctx, s.bucketName, s.objectKey(handle), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("uploading model %s: %w", handle, err)
	}
	return nil
}

func (s *S3Store) Get(ctx context.Context, handle string) ([]byte, error) {
	handle, err := normalizeHandle(handle)
	if err != nil {
		return nil, err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}

	obj, err := s.client.GetObject(ctx, s.bucketName, s.objectKey(handle), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NoSuchBucket" {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *S3Store) List(ctx context.Context) ([]string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("ensure bucket: %w", err)
	}

	prefix := ""
	if s.prefix != "" {
		prefix = s.prefix + "/"
	}
	var handles []string
	for obj := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		name := strings.TrimPrefix(obj.Key, prefix)
		if !strings.HasSuffix(name, fileExt) || strings.Contains(name, "/") {
			continue
		}
		handles = append(handles, strings.TrimSuffix(name, fileExt))
	}
	sort.Strings(handles)
	return handles, nil
}
