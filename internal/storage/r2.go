package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/namwkim/dataviz-storytelling/internal/apperrors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// R2Client reads dataset files from, and publishes chart snapshots to, an
// S3 compatible bucket.
type R2Client struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

type R2Options struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
}

func NewR2Client(ctx context.Context, opts R2Options) (*R2Client, error) {
	if opts.Endpoint == "" || opts.Bucket == "" {
		return nil, errors.New("r2 endpoint and bucket are required")
	}

	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion("auto"),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				opts.AccessKey,
				opts.SecretKey,
				"",
			),
		),
		config.WithEndpointResolverWithOptions(
			aws.EndpointResolverWithOptionsFunc(
				func(service, region string, options ...interface{}) (aws.Endpoint, error) {
					if service == s3.ServiceID {
						return aws.Endpoint{
							URL:           opts.Endpoint,
							SigningRegion: "auto",
						}, nil
					}
					return aws.Endpoint{}, &aws.EndpointNotFoundError{}
				},
			),
		),
	)
	if err != nil {
		return nil, err
	}

	return &R2Client{
		client: s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.UsePathStyle = true
		}),
		bucket:  opts.Bucket,
		baseURL: strings.TrimRight(opts.PublicBaseURL, "/"),
	}, nil
}

// Open streams an object so the bucket can stand in for a data directory.
func (r *R2Client) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, apperrors.NotFound("dataset "+name+" not found", err)
		}
		return nil, apperrors.Unavailable("fetch dataset "+name, err)
	}
	return out.Body, nil
}

// Upload stores body under key and returns its public URL.
func (r *R2Client) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", apperrors.Unavailable("upload "+key, err)
	}

	return r.PublicURL(key), nil
}

func (r *R2Client) PublicURL(key string) string {
	if r.baseURL == "" {
		return fmt.Sprintf("https://%s/%s", r.bucket, key)
	}
	return fmt.Sprintf("%s/%s", r.baseURL, key)
}
