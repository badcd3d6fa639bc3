package persistent

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/andreyxaxa/listing-admin/pkg/s3client"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const publicReadPolicy = `{
  "Version": "2012-10-17",
  "Statement": [{
    "Effect": "Allow",
    "Principal": "*",
    "Action": ["s3:GetObject"],
    "Resource": ["arn:aws:s3:::%s/*"]
  }]
}`

// ObjectRepo stores listing blobs in one public-read bucket.
type ObjectRepo struct {
	*s3client.S3Client
	bucket    string
	publicURL string
}

// NewObjectRepo serves objects at publicURL/bucket/key. An empty publicURL
// falls back to the client endpoint.
func NewObjectRepo(s3c *s3client.S3Client, bucket, publicURL string) *ObjectRepo {
	if publicURL == "" {
		publicURL = s3c.Endpoint()
	}

	return &ObjectRepo{
		S3Client:  s3c,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

func (r *ObjectRepo) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := r.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("ObjectRepo - Upload - r.Client.PutObject: %w", err)
	}

	return nil
}

func (r *ObjectRepo) Delete(ctx context.Context, key string) error {
	_, err := r.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("ObjectRepo - Delete - r.Client.DeleteObject: %w", err)
	}

	return nil
}

func (r *ObjectRepo) PublicURL(key string) string {
	return r.prefix() + key
}

// KeyFromURL reverses PublicURL. It reports false for URLs outside the bucket.
func (r *ObjectRepo) KeyFromURL(publicURL string) (string, bool) {
	key, ok := strings.CutPrefix(publicURL, r.prefix())
	if !ok || key == "" {
		return "", false
	}

	return key, true
}

func (r *ObjectRepo) prefix() string {
	return r.publicURL + "/" + r.bucket + "/"
}

func (r *ObjectRepo) BucketExists(ctx context.Context) (bool, error) {
	out, err := r.Client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return false, fmt.Errorf("ObjectRepo - BucketExists - r.Client.ListBuckets: %w", err)
	}

	for _, b := range out.Buckets {
		if aws.ToString(b.Name) == r.bucket {
			return true, nil
		}
	}

	return false, nil
}

// CreateBucket creates the bucket and opens its objects for anonymous reads.
func (r *ObjectRepo) CreateBucket(ctx context.Context) error {
	_, err := r.Client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(r.bucket),
	})
	if err != nil {
		return fmt.Errorf("ObjectRepo - CreateBucket - r.Client.CreateBucket: %w", err)
	}

	_, err = r.Client.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
		Bucket: aws.String(r.bucket),
		Policy: aws.String(fmt.Sprintf(publicReadPolicy, r.bucket)),
	})
	if err != nil {
		return fmt.Errorf("ObjectRepo - CreateBucket - r.Client.PutBucketPolicy: %w", err)
	}

	return nil
}
