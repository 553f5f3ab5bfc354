package records

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/cyclelogin/internal/server/models"
)

// objectClient is the part of *s3.Client the repository needs.
type objectClient interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Settings describe an S3-compatible bucket (AWS, MinIO).
type S3Settings struct {
	User     string
	Password string
	Bucket   string
	Region   string
	Endpoint string
	Prefix   string
}

// S3Repository keeps the same three documents as the file backend as
// objects in a bucket. Counter increments are serialized in-process only.
type S3Repository struct {
	client objectClient
	bucket string
	prefix string
	mu     sync.Mutex
}

// loadAWSConfig is a seam for tests.
var loadAWSConfig = config.LoadDefaultConfig

// NewS3Repository builds an S3 client with static credentials and a
// path-style custom endpoint.
func NewS3Repository(ctx context.Context, s S3Settings) (*S3Repository, error) {
	cfg, err := loadAWSConfig(ctx,
		config.WithRegion(s.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.User, s.Password, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("s3: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.Endpoint)
		}
		o.UsePathStyle = true
	})

	return newS3Repository(client, s.Bucket, s.Prefix), nil
}

func newS3Repository(c objectClient, bucket, prefix string) *S3Repository {
	return &S3Repository{client: c, bucket: bucket, prefix: prefix}
}

func (r *S3Repository) GetUsers(ctx context.Context) ([]models.User, error) {
	b, err := r.get(ctx, usersObject)
	if err != nil {
		return nil, err
	}
	return decodeUsers(b), nil
}

func (r *S3Repository) PutUsers(ctx context.Context, users []models.User) error {
	return r.put(ctx, usersObject, nonNilUsers(users))
}

func (r *S3Repository) GetVisits(ctx context.Context) ([]models.Visit, error) {
	b, err := r.get(ctx, visitsObject)
	if err != nil {
		return nil, err
	}
	return decodeVisits(b), nil
}

func (r *S3Repository) PutVisits(ctx context.Context, visits []models.Visit) error {
	return r.put(ctx, visitsObject, nonNilVisits(visits))
}

func (r *S3Repository) GetCounter(ctx context.Context) (int64, error) {
	b, err := r.get(ctx, stateObject)
	if err != nil {
		return 0, err
	}
	return decodeState(b), nil
}

func (r *S3Repository) PutCounter(ctx context.Context, n int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.put(ctx, stateObject, state{VisitCount: n})
}

func (r *S3Repository) IncrementCounter(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, err := r.get(ctx, stateObject)
	if err != nil {
		return 0, err
	}
	n := decodeState(b) + 1
	if err := r.put(ctx, stateObject, state{VisitCount: n}); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *S3Repository) Close() error { return nil }

// get returns nil bytes when the object does not exist.
func (r *S3Repository) get(ctx context.Context, name string) ([]byte, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.prefix + name),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, nil
		}
		return nil, fmt.Errorf("s3: %w", err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3: %w", err)
	}
	return b, nil
}

func (r *S3Repository) put(ctx context.Context, name string, v any) error {
	b, err := marshalIndent(v)
	if err != nil {
		return fmt.Errorf("s3: %w", err)
	}
	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(r.prefix + name),
		Body:        bytes.NewReader(b),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3: %w", err)
	}
	return nil
}
