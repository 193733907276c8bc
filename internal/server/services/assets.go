package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/pixo/internal/common"
	sc "github.com/dmitrijs2005/pixo/internal/server/config"
	"github.com/dmitrijs2005/pixo/internal/server/models"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// AssetService hands out presigned upload URLs so clients can put image
// files straight into object storage and then publish the resulting URL.
type AssetService struct {
	config *sc.Config
	now    func() time.Time

	mu        sync.Mutex
	presigner *s3.PresignClient
}

func NewAssetService(config *sc.Config) *AssetService {
	return &AssetService{config: config, now: time.Now}
}

// Enabled reports whether an upload bucket is configured.
func (s *AssetService) Enabled() bool {
	return s.config.UploadsEnabled()
}

// StorageKey lays objects out per author and month.
// Format: images/<username>/<yyyy>/<mm>/<uuid>
func StorageKey(username string, t time.Time) string {
	return fmt.Sprintf("images/%s/%d/%02d/%v", username, t.Year(), int(t.Month()), uuid.New())
}

func (s *AssetService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.presigner != nil {
		return s.presigner, nil
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	s.presigner = newS3PresignClient(client)
	return s.presigner, nil
}

// PublicURL is where an uploaded object can be fetched from.
func (s *AssetService) PublicURL(key string) string {
	if s.config.S3PublicURL != "" {
		return strings.TrimRight(s.config.S3PublicURL, "/") + "/" + key
	}
	return strings.TrimRight(s.config.S3BaseEndpoint, "/") + "/" + s.config.S3Bucket + "/" + key
}

// UploadTicket presigns a PUT for a fresh key under the bearer's prefix.
func (s *AssetService) UploadTicket(ctx context.Context, identity *models.Identity) (*models.UploadTicket, error) {
	if identity == nil || identity.Username == "" {
		return nil, common.ErrMissingToken
	}
	if !s.Enabled() {
		return nil, fmt.Errorf("%w: uploads are not configured", common.ErrNotFound)
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: s3 config: %v", common.ErrStoreUnavailable, err)
	}

	now := s.now().UTC()
	bucket := s.config.S3Bucket
	key := StorageKey(identity.Username, now)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.config.PresignExpiry))
	if err != nil {
		return nil, fmt.Errorf("%w: presign: %v", common.ErrStoreUnavailable, err)
	}

	return &models.UploadTicket{
		Key:       key,
		UploadURL: req.URL,
		URL:       s.PublicURL(key),
		ExpiresAt: now.Add(s.config.PresignExpiry),
	}, nil
}
