package services

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/pixo/internal/common"
	sc "github.com/dmitrijs2005/pixo/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assetConfig() *sc.Config {
	return &sc.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "pixo",
		PresignExpiry:  15 * time.Minute,
	}
}

func stubPresign(t *testing.T, putErr error) *int {
	t.Helper()

	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	origPut := presignPutObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignPutObject = origPut
	})

	loads := 0
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		loads++
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var opts s3.Options
		for _, fn := range optFns {
			fn(&opts)
		}
		require.NotNil(t, opts.BaseEndpoint)
		assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
		assert.True(t, opts.UsePathStyle)
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient { return &s3.PresignClient{} }
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		if putErr != nil {
			return nil, putErr
		}
		return &v4.PresignedHTTPRequest{
			URL:    "http://127.0.0.1:9000/" + *in.Bucket + "/" + url.PathEscape(*in.Key) + "?X-Amz-Signature=abc",
			Method: "PUT",
		}, nil
	}
	return &loads
}

func TestAssetService_UploadTicket(t *testing.T) {
	loads := stubPresign(t, nil)
	svc := NewAssetService(assetConfig())
	now := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	ticket, err := svc.UploadTicket(context.Background(), alice)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ticket.Key, "images/alice/2024/03/"), ticket.Key)
	assert.Contains(t, ticket.UploadURL, "X-Amz-Signature")
	assert.Equal(t, "http://127.0.0.1:9000/pixo/"+ticket.Key, ticket.URL)
	assert.Equal(t, now.Add(15*time.Minute), ticket.ExpiresAt)

	_, err = svc.UploadTicket(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, 1, *loads, "presign client is built once")
}

func TestAssetService_PublicURL(t *testing.T) {
	cfg := assetConfig()
	cfg.S3PublicURL = "https://cdn.example/"
	svc := NewAssetService(cfg)
	assert.Equal(t, "https://cdn.example/images/a/b", svc.PublicURL("images/a/b"))
}

func TestAssetService_Errors(t *testing.T) {
	stubPresign(t, errors.New("boom"))

	svc := NewAssetService(assetConfig())
	_, err := svc.UploadTicket(context.Background(), nil)
	require.ErrorIs(t, err, common.ErrMissingToken)

	_, err = svc.UploadTicket(context.Background(), alice)
	require.ErrorIs(t, err, common.ErrStoreUnavailable)

	disabled := assetConfig()
	disabled.S3Bucket = ""
	_, err = NewAssetService(disabled).UploadTicket(context.Background(), alice)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestAssetService_ConfigLoadError(t *testing.T) {
	orig := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = orig })
	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}

	_, err := NewAssetService(assetConfig()).UploadTicket(context.Background(), alice)
	require.ErrorIs(t, err, common.ErrStoreUnavailable)
}
