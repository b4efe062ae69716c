package blob

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithy "github.com/aws/smithy-go"
)

const defaultRegion = "us-east-1"

const uploadContentType = "application/octet-stream"

type S3Client struct {
	s3Client *s3.Client
	uploader *manager.Uploader
	config   *S3Config
}

// NewS3Client creates a client for AWS or any S3-compatible service. A custom
// endpoint switches addressing to whatever ForcePathStyle says; MinIO, Ceph
// RGW and friends need path-style.
func NewS3Client(ctx context.Context, cfg *S3Config) (*S3Client, error) {
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(region),
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	awsClient := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.ForcePathStyle
		}
	})

	return &S3Client{
		s3Client: awsClient,
		uploader: manager.NewUploader(awsClient),
		config:   cfg,
	}, nil
}

// HeadBucket probes the configured bucket. 401/403 means the bucket exists
// but the credentials lack rights; that is a result, not an error. Everything
// else (not-found, redirects, network) propagates.
func (s *S3Client) HeadBucket(ctx context.Context) (BucketAccess, error) {
	_, err := s.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: &s.config.Bucket,
	})
	if err != nil {
		if isAuthDenied(err) {
			return BucketForbidden, nil
		}
		return BucketAccessUnknown, fmt.Errorf("head bucket %s: %w", s.config.Bucket, err)
	}
	return BucketAccessible, nil
}

// HeadObject probes a single object. A missing object returns (nil, nil).
func (s *S3Client) HeadObject(ctx context.Context, key string) (*ObjectStat, error) {
	resp, err := s.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &s.config.Bucket,
		Key:    &key,
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("head object %s: %w", key, err)
	}

	return &ObjectStat{
		Key:          key,
		Size:         aws.ToInt64(resp.ContentLength),
		ETag:         strings.ReplaceAll(aws.ToString(resp.ETag), "\"", ""),
		LastModified: aws.ToTime(resp.LastModified),
	}, nil
}

// Upload streams the local file to the remote key. The body goes through the
// transfer manager, so the file is never fully resident in memory.
func (s *S3Client) Upload(ctx context.Context, key string, localPath string) (*UploadResult, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLocalRead, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLocalRead, err)
	}

	out, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      &s.config.Bucket,
		Key:         &key,
		Body:        f,
		ContentType: aws.String(uploadContentType),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: put %s: %v", ErrRemotePut, key, err)
	}

	return &UploadResult{
		Key:  key,
		Size: stat.Size(),
		ETag: strings.ReplaceAll(aws.ToString(out.ETag), "\"", ""),
	}, nil
}

func httpStatusCode(err error) (int, bool) {
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode(), true
	}
	return 0, false
}

func isAuthDenied(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "Forbidden", "Unauthorized":
			return true
		}
	}
	if status, ok := httpStatusCode(err); ok {
		return status == http.StatusUnauthorized || status == http.StatusForbidden
	}
	return false
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return true
		}
	}
	if status, ok := httpStatusCode(err); ok {
		return status == http.StatusNotFound
	}
	return false
}

// check if S3Client implements the Client interface
var _ Client = (*S3Client)(nil)

