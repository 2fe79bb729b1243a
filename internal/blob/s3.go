package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	tlerrors "github.com/manav03panchal/tasklog/internal/errors"
)

// DefaultPresignTTL is how long a presigned download link stays valid.
const DefaultPresignTTL = 15 * time.Minute

// S3Options configures NewS3Store.
type S3Options struct {
	Bucket    string
	Region    string
	Endpoint  string // custom endpoint for S3-compatible services
	AccessKey string
	SecretKey string
	// PublicURL, when set, is the base under which objects are publicly
	// readable, e.g. https://xyz.supabase.co/storage/v1/object/public/task-files.
	// Without it URL returns a presigned link.
	PublicURL  string
	PathStyle  bool
	PresignTTL time.Duration
}

// S3Store keeps objects in an S3 bucket.
type S3Store struct {
	client    *s3.Client
	presign   *s3.PresignClient
	bucket    string
	publicURL string
	ttl       time.Duration
}

var _ Store = (*S3Store)(nil)

// NewS3Store builds a client for the bucket. No request is made until first use.
func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, tlerrors.NewValidationError("blob.bucket", "an S3 bucket name is required")
	}

	loadOpts := []func(*config.LoadOptions) error{
		// Calls are never retried; a failure goes straight back to the user.
		config.WithRetryMaxAttempts(1),
	}
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.AccessKey != "" || opts.SecretKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, tlerrors.NewStoreError("load s3 config", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
		// S3-compatible services reject the newer default checksums.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	ttl := opts.PresignTTL
	if ttl <= 0 {
		ttl = DefaultPresignTTL
	}

	return &S3Store{
		client:    client,
		presign:   s3.NewPresignClient(client),
		bucket:    opts.Bucket,
		publicURL: strings.TrimRight(opts.PublicURL, "/"),
		ttl:       ttl,
	}, nil
}

// Upload puts the object. A non-overwriting upload sends If-None-Match: *.
func (s *S3Store) Upload(ctx context.Context, path string, data []byte, contentType string, overwrite bool) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(path),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	}
	if !overwrite {
		input.IfNoneMatch = aws.String("*")
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return s.mapError("upload "+path, err)
	}
	return nil
}

// Download gets the object.
func (s *S3Store) Download(ctx context.Context, path string) (*Object, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return nil, s.mapError("download "+path, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, tlerrors.NewStoreError("download "+path, err)
	}

	contentType := aws.ToString(out.ContentType)
	if contentType == "" {
		contentType = DefaultContentType
	}
	return &Object{Path: path, ContentType: contentType, Data: data}, nil
}

// Remove deletes each object. Every path is attempted; failures are joined.
func (s *S3Store) Remove(ctx context.Context, paths ...string) error {
	var errs []error
	for _, p := range paths {
		_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(p),
		})
		if err != nil {
			mapped := s.mapError("remove "+p, err)
			if errors.Is(mapped, ErrObjectNotFound) {
				continue
			}
			errs = append(errs, mapped)
		}
	}
	return errors.Join(errs...)
}

// URL returns the public link when a public base is configured and a
// presigned GET link otherwise.
func (s *S3Store) URL(ctx context.Context, path string) (string, error) {
	if s.publicURL != "" {
		return s.publicURL + "/" + escapePath(path), nil
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return "", tlerrors.NewStoreError("presign "+path, err)
	}
	return req.URL, nil
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (s *S3Store) Close() error { return nil }

func (s *S3Store) mapError(op string, err error) error {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return ErrObjectNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return ErrObjectNotFound
		case "PreconditionFailed":
			return ErrObjectExists
		}
	}
	return tlerrors.NewStoreError(op, fmt.Errorf("bucket %s: %w", s.bucket, err))
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
