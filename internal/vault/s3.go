package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"cleansnap/internal/clean"
)

// S3PayloadStore keeps vault payloads in an S3 bucket, one object per entry
// id under the configured prefix. Payloads put through the encrypting
// wrapper are ciphertext before they ever leave the machine.
type S3PayloadStore struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// S3Options configures an S3PayloadStore.
type S3Options struct {
	Bucket    string
	Prefix    string
	Region    string
	AccessKey string // Optional; default AWS credential chain when empty
	SecretKey string
}

// NewS3PayloadStore creates a payload store backed by the given bucket.
func NewS3PayloadStore(ctx context.Context, opts S3Options) (*S3PayloadStore, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 payload store requires a bucket")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			awscreds.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &S3PayloadStore{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   opts.Bucket,
		prefix:   strings.TrimSuffix(opts.Prefix, "/"),
	}, nil
}

// key returns the object key for an entry id.
func (s *S3PayloadStore) key(id string) string {
	if s.prefix == "" {
		return id
	}
	return path.Join(s.prefix, id)
}

// Put uploads a payload. The upload manager splits large payloads into
// multipart uploads transparently.
func (s *S3PayloadStore) Put(id string, r io.Reader, size int64) error {
	_, err := s.uploader.Upload(context.Background(), &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("uploading payload %s: %w", id, err)
	}
	return nil
}

// Get downloads the payload for id and writes it to w.
func (s *S3PayloadStore) Get(id string, w io.Writer) error {
	out, err := s.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return fmt.Errorf("payload %s: %w", id, clean.ErrNotFound)
		}
		return fmt.Errorf("downloading payload %s: %w", id, err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("reading payload %s: %w", id, err)
	}
	return nil
}

// Delete removes the object for id. S3 deletes are idempotent: deleting a
// missing key succeeds.
func (s *S3PayloadStore) Delete(id string) error {
	_, err := s.client.DeleteObject(context.Background(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return fmt.Errorf("deleting payload %s: %w", id, err)
	}
	return nil
}

// List returns info for every payload under the prefix. Creation metadata
// comes from the object's LastModified, which for immutable vault payloads
// is the upload time.
func (s *S3PayloadStore) List() ([]clean.PayloadInfo, error) {
	keyPrefix := ""
	if s.prefix != "" {
		keyPrefix = s.prefix + "/"
	}

	var infos []clean.PayloadInfo
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(keyPrefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(context.Background())
		if err != nil {
			return nil, fmt.Errorf("listing payloads: %w", err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			id := strings.TrimPrefix(*obj.Key, keyPrefix)
			if id == "" || strings.Contains(id, "/") {
				continue
			}
			info := clean.PayloadInfo{ID: id}
			if obj.Size != nil {
				info.Size = *obj.Size
			}
			if obj.LastModified != nil {
				info.CreatedAt = *obj.LastModified
			}
			infos = append(infos, info)
		}
	}
	return infos, nil
}

// ValidateSetup verifies that the bucket is reachable.
func (s *S3PayloadStore) ValidateSetup() error {
	_, err := s.client.HeadBucket(context.Background(), &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket %s not accessible: %w", s.bucket, err)
	}
	return nil
}

// Compile-time check that S3PayloadStore implements clean.PayloadStore
var _ clean.PayloadStore = (*S3PayloadStore)(nil)
