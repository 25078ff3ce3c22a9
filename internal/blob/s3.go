package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/holdings/internal/logging"
	"github.com/mesh-intelligence/holdings/pkg/types"
)

// DefaultRegion is used when S3Config.Region is empty.
const DefaultRegion = "us-east-1"

// S3Config holds construction parameters for an S3-compatible store (AWS
// S3 or MinIO). Empty credentials fall back to the default AWS chain.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	PathStyle       bool
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
}

// S3 keeps objects in one bucket under an optional key prefix.
type S3 struct {
	client *s3.Client
	bucket string
	prefix string
	log    *logrus.Entry
}

// NewS3 builds an S3 store from cfg.
func NewS3(ctx context.Context, cfg S3Config, log *logrus.Entry, optFns ...func(*s3.Options)) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, types.ErrBlobBucketRequired
	}
	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		for _, fn := range optFns {
			fn(o)
		}
	})
	return &S3{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		log:    logging.OrDiscard(log).WithField("blob", types.BlobDriverS3),
	}, nil
}

func (s *S3) objectKey(key string) (string, error) {
	clean := path.Clean(strings.TrimPrefix(key, "/"))
	if key == "" || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if s.prefix == "" {
		return clean, nil
	}
	return s.prefix + "/" + clean, nil
}

// Location returns an s3:// URL for key.
func (s *S3) Location(key string) string {
	k, err := s.objectKey(key)
	if err != nil {
		k = key
	}
	return "s3://" + s.bucket + "/" + k
}

// Put uploads data, replacing any existing object.
func (s *S3) Put(ctx context.Context, key string, data []byte) error {
	k, err := s.objectKey(key)
	if err != nil {
		return err
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(k),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return fmt.Errorf("putting %s: %w", s.Location(key), err)
	}
	s.log.WithField(logging.FieldTarget, s.Location(key)).
		WithField(logging.FieldSize, humanize.Bytes(uint64(len(data)))).
		Debug("uploaded object")
	return nil
}

// Get downloads the object at key.
func (s *S3) Get(ctx context.Context, key string) ([]byte, error) {
	k, err := s.objectKey(key)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(k),
	})
	if isNotFound(err) {
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, s.Location(key))
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", s.Location(key), err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Location(key), err)
	}
	return data, nil
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == 404
}
