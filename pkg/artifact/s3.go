package artifact

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config describes the bucket artifacts go to.
type S3Config struct {
	Bucket string
	Prefix string
	Region string

	// Endpoint overrides the S3 endpoint (MinIO, LocalStack).
	Endpoint     string
	UsePathStyle bool

	// URLExpiry is how long presigned download links stay valid.
	URLExpiry time.Duration
}

type s3Putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type s3Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Store uploads artifacts to S3. The artifact Location is a presigned GET
// URL.
type S3Store struct {
	client    s3Putter
	presign   s3Presigner
	bucket    string
	prefix    string
	urlExpiry time.Duration
}

// NewS3Client builds an S3 client from cfg. Credentials are read from
// AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN.
func NewS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		UsePathStyle: cfg.UsePathStyle,
		Credentials:  aws.NewCredentialsCache(envCredentials()),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

func envCredentials() aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		creds := aws.Credentials{
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "pdfdesk environment",
		}
		if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
			return aws.Credentials{}, fmt.Errorf("artifact: AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
		}
		return creds, nil
	})
}

// NewS3Store creates an S3Store writing to cfg.Bucket with client.
func NewS3Store(client *s3.Client, cfg S3Config) *S3Store {
	return newS3Store(client, s3.NewPresignClient(client), cfg)
}

func newS3Store(client s3Putter, presign s3Presigner, cfg S3Config) *S3Store {
	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &S3Store{
		client:    client,
		presign:   presign,
		bucket:    cfg.Bucket,
		prefix:    cfg.Prefix,
		urlExpiry: expiry,
	}
}

// Put uploads r and presigns a download link for it.
func (s *S3Store) Put(ctx context.Context, name, contentType string, r io.Reader) (Artifact, error) {
	id, err := newID()
	if err != nil {
		return Artifact{}, err
	}
	name = CleanName(name)
	key := s.prefix + id + "/" + name

	// PutObject needs a seekable body to sign the payload.
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return Artifact{}, err
	}

	input := &s3.PutObjectInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(buf.Bytes()),
		ContentDisposition: aws.String(mime.FormatMediaType("attachment", map[string]string{"filename": name})),
		Metadata: map[string]string{
			"original-filename": name,
			"upload-time":       time.Now().UTC().Format(time.RFC3339),
		},
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return Artifact{}, fmt.Errorf("s3 upload failed: %w", err)
	}

	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.urlExpiry))
	if err != nil {
		return Artifact{}, fmt.Errorf("s3 presign failed: %w", err)
	}

	return Artifact{
		ID:          id,
		Name:        name,
		ContentType: contentType,
		Size:        int64(buf.Len()),
		Location:    req.URL,
	}, nil
}
