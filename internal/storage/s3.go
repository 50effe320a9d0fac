package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

// object listed in a bucket
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// artifact tier backed by S3; the namespace is the bucket name
type S3 struct {
	client     s3iface.S3API
	uploader   s3manageriface.UploaderAPI
	publicRead bool
}

type S3Option func(*S3)

// objects are written with the public-read canned ACL
func WithPublicRead(enabled bool) S3Option {
	return func(s *S3) {
		s.publicRead = enabled
	}
}

// replaces the multipart uploader used for media files
func WithUploader(u s3manageriface.UploaderAPI) S3Option {
	return func(s *S3) {
		s.uploader = u
	}
}

func NewS3(client s3iface.S3API, opts ...S3Option) *S3 {
	s := &S3{client: client}
	for _, opt := range opts {
		opt(s)
	}
	if s.uploader == nil {
		s.uploader = s3manager.NewUploaderWithClient(client)
	}
	return s
}

// Get downloads bucket/key; a missing object is (nil, false, nil)
func (s *S3) Get(ctx context.Context, bucket, key string) ([]byte, bool, error) {
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read s3://%s/%s: %w", bucket, key, err)
	}
	return data, true, nil
}

// Put stores data at bucket/key with the given content type
func (s *S3) Put(ctx context.Context, bucket, key string, data []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}
	if s.publicRead {
		input.ACL = aws.String(s3.ObjectCannedACLPublicRead)
	}

	if _, err := s.client.PutObjectWithContext(ctx, input); err != nil {
		return fmt.Errorf("failed to put s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// Exists reports whether bucket/key is present
func (s *S3) Exists(ctx context.Context, bucket, key string) (bool, error) {
	_, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if IsNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check s3://%s/%s: %w", bucket, key, err)
}

// Upload streams a media file to bucket/key, switching to multipart for
// large bodies
func (s *S3) Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) error {
	input := &s3manager.UploadInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if s.publicRead {
		input.ACL = aws.String(s3.ObjectCannedACLPublicRead)
	}

	if _, err := s.uploader.UploadWithContext(ctx, input); err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// List returns every object in bucket under prefix
func (s *S3) List(ctx context.Context, bucket, prefix string) ([]Object, error) {
	var objects []Object

	err := s.client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			objects = append(objects, Object{
				Key:          aws.StringValue(obj.Key),
				Size:         aws.Int64Value(obj.Size),
				LastModified: aws.TimeValue(obj.LastModified),
			})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list s3://%s/%s: %w", bucket, prefix, err)
	}
	return objects, nil
}

// IsNotFound reports whether err is an S3 missing object error
func IsNotFound(err error) bool {
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound &&
		reqErr.Code() != s3.ErrCodeNoSuchBucket {
		return true
	}

	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return true
		}
	}
	return false
}
