package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"tubecast/internal/config"
	"tubecast/internal/logging"
	"tubecast/internal/services"
)

// Object describes one uploaded file.
type Object struct {
	Key         string
	URL         string
	Size        int64
	ContentType string
}

// Settings holds the bucket connection parameters.
type Settings struct {
	Endpoint       string
	PublicURL      string
	AccessKey      string
	SecretKey      string
	Bucket         string
	Region         string
	RequestTimeout time.Duration
}

// SettingsFromConfig extracts Settings from the storage section.
func SettingsFromConfig(cfg *config.Config) Settings {
	if cfg == nil {
		return Settings{}
	}
	return Settings{
		Endpoint:       cfg.Storage.Endpoint,
		PublicURL:      cfg.Storage.PublicURL,
		AccessKey:      cfg.Storage.AccessKey,
		SecretKey:      cfg.Storage.SecretKey,
		Bucket:         cfg.Storage.Bucket,
		Region:         cfg.Storage.Region,
		RequestTimeout: time.Duration(cfg.Storage.RequestTimeout) * time.Second,
	}
}

// Option configures a Store.
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     *slog.Logger
	disableSSL bool
}

// WithHTTPClient overrides the HTTP client used by the SDK.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithInsecureEndpoint allows plain-HTTP endpoints (local MinIO, tests).
func WithInsecureEndpoint() Option {
	return func(o *options) {
		o.disableSSL = true
	}
}

// Store uploads objects to one bucket.
type Store struct {
	client    *s3.S3
	uploader  *s3manager.Uploader
	bucket    string
	publicURL string
	timeout   time.Duration
	logger    *slog.Logger
}

// New connects to the configured bucket. No request is made until the first
// operation.
func New(settings Settings, opts ...Option) (*Store, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if strings.TrimSpace(settings.Bucket) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "", "open bucket", "bucket name required", nil)
	}
	if strings.TrimSpace(settings.PublicURL) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "", "open bucket", "public URL required", nil)
	}
	region := strings.TrimSpace(settings.Region)
	if region == "" {
		region = "auto"
	}

	awsConfig := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(settings.AccessKey, settings.SecretKey, ""),
		Endpoint:         aws.String(settings.Endpoint),
		Region:           aws.String(region),
		S3ForcePathStyle: aws.Bool(true),
		DisableSSL:       aws.Bool(o.disableSSL),
	}
	if o.httpClient != nil {
		awsConfig.HTTPClient = o.httpClient
	}
	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "", "open bucket", "create session", err)
	}
	client := s3.New(sess)
	logger := o.logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		client:    client,
		uploader:  s3manager.NewUploaderWithClient(client),
		bucket:    settings.Bucket,
		publicURL: strings.TrimRight(settings.PublicURL, "/"),
		timeout:   settings.RequestTimeout,
		logger:    logging.NewComponentLogger(logger, "objectstore"),
	}, nil
}

// Bucket returns the bucket name.
func (s *Store) Bucket() string {
	return s.bucket
}

// PublicURL returns the listener-facing URL for key. Each key segment is
// path-escaped; slashes are kept.
func (s *Store) PublicURL(key string) string {
	segments := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return s.publicURL + "/" + strings.Join(segments, "/")
}

// Upload streams the local file at localPath to key.
func (s *Store) Upload(ctx context.Context, localPath, key, contentType string) (Object, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return Object{}, services.Wrap(services.ErrUpload, "", "upload "+key, "open local file", err)
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return Object{}, services.Wrap(services.ErrUpload, "", "upload "+key, "stat local file", err)
	}
	if contentType == "" {
		contentType = ContentType(localPath)
	}
	if err := s.put(ctx, key, contentType, file); err != nil {
		return Object{}, err
	}
	s.logger.Debug("object uploaded",
		logging.String("key", key),
		logging.Int64("size", info.Size()),
		logging.String("content_type", contentType))
	return Object{Key: key, URL: s.PublicURL(key), Size: info.Size(), ContentType: contentType}, nil
}

// UploadFeedDocument uploads an in-memory RSS document to key.
func (s *Store) UploadFeedDocument(ctx context.Context, document, key string) (Object, error) {
	contentType := ContentType(key)
	if contentType == "application/octet-stream" {
		contentType = "application/rss+xml"
	}
	if err := s.put(ctx, key, contentType, strings.NewReader(document)); err != nil {
		return Object{}, err
	}
	return Object{Key: key, URL: s.PublicURL(key), Size: int64(len(document)), ContentType: contentType}, nil
}

// Exists reports whether key is present in the bucket.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	_, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, services.Wrap(services.ErrUpload, "", "head "+key, "", err)
}

// CheckBucket verifies the bucket is reachable with the configured credentials.
func (s *Store) CheckBucket(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	_, err := s.client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		if isNotFound(err) {
			return services.Wrap(services.ErrConfiguration, "", "check bucket", fmt.Sprintf("bucket %q does not exist", s.bucket), err)
		}
		return services.Wrap(services.ErrConfiguration, "", "check bucket", "", err)
	}
	return nil
}

func (s *Store) put(ctx context.Context, key, contentType string, body io.Reader) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl(contentType)),
	})
	if err != nil {
		return services.Wrap(services.ErrUpload, "", "upload "+key, "", err)
	}
	return nil
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func isNotFound(err error) bool {
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound {
		return true
	}
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case "NotFound", s3.ErrCodeNoSuchKey, s3.ErrCodeNoSuchBucket:
			return true
		}
	}
	return false
}
