package artifact

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	data, _ := io.ReadAll(in.Body)
	f.body = string(data)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

type fakePresigner struct {
	key     string
	expires time.Duration
}

func (f *fakePresigner) PresignGetObject(_ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.key = *in.Key
	var opts s3.PresignOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	f.expires = opts.Expires
	return &v4.PresignedHTTPRequest{URL: "https://bucket.example/" + *in.Key + "?sig"}, nil
}

func TestS3Store_Put(t *testing.T) {
	put := &fakePutter{}
	pre := &fakePresigner{}
	store := newS3Store(put, pre, S3Config{Bucket: "docs", Prefix: "artifacts/", URLExpiry: time.Hour})

	a, err := store.Put(context.Background(), "../signed.pdf", "application/pdf", strings.NewReader("%PDF"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	wantKey := "artifacts/" + a.ID + "/signed.pdf"
	if *put.input.Bucket != "docs" || *put.input.Key != wantKey {
		t.Errorf("PutObject bucket/key = %q/%q", *put.input.Bucket, *put.input.Key)
	}
	if *put.input.ContentType != "application/pdf" {
		t.Errorf("ContentType = %q", *put.input.ContentType)
	}
	if *put.input.ContentDisposition != "attachment; filename=signed.pdf" {
		t.Errorf("ContentDisposition = %q", *put.input.ContentDisposition)
	}
	if put.body != "%PDF" {
		t.Errorf("body = %q", put.body)
	}
	if pre.key != wantKey || pre.expires != time.Hour {
		t.Errorf("presigned key %q for %v", pre.key, pre.expires)
	}
	if a.Location != "https://bucket.example/"+wantKey+"?sig" || a.Size != 4 || a.Name != "signed.pdf" {
		t.Errorf("artifact = %+v", a)
	}
}

func TestS3Store_PutError(t *testing.T) {
	boom := errors.New("access denied")
	store := newS3Store(&fakePutter{err: boom}, &fakePresigner{}, S3Config{Bucket: "docs"})

	if _, err := store.Put(context.Background(), "a.pdf", "", strings.NewReader("x")); !errors.Is(err, boom) {
		t.Errorf("Put error = %v, want wrapped access denied", err)
	}
	if store.urlExpiry != 24*time.Hour {
		t.Errorf("default expiry = %v", store.urlExpiry)
	}
}

func TestNewS3Client(t *testing.T) {
	client := NewS3Client(S3Config{Region: "us-east-1", Endpoint: "http://localhost:9000", UsePathStyle: true})
	opts := client.Options()
	if opts.Region != "us-east-1" || !opts.UsePathStyle {
		t.Errorf("options = region %q path style %v", opts.Region, opts.UsePathStyle)
	}
	if opts.BaseEndpoint == nil || *opts.BaseEndpoint != "http://localhost:9000" {
		t.Errorf("BaseEndpoint = %v", opts.BaseEndpoint)
	}
}

func TestEnvCredentials(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIDEXAMPLE")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("AWS_SESSION_TOKEN", "")

	creds, err := envCredentials().Retrieve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if creds.AccessKeyID != "AKIDEXAMPLE" || creds.SecretAccessKey != "secret" || creds.SessionToken != "" {
		t.Errorf("creds = %+v", creds)
	}

	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	if _, err := envCredentials().Retrieve(context.Background()); err == nil {
		t.Error("Retrieve() without a secret key succeeded")
	}
}
