package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPictureService(t *testing.T, publicBaseURL string) *PictureService {
	t.Helper()
	svc, err := NewPictureService(context.Background(), PictureConfig{
		Region:        "us-east-1",
		Bucket:        "pictures",
		AccessKey:     "AKIDEXAMPLE",
		SecretKey:     "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
		Endpoint:      "http://localhost:9000",
		PublicBaseURL: publicBaseURL,
	})
	require.NoError(t, err)
	return svc
}

func TestCreateUploadURL(t *testing.T) {
	ctx := context.Background()

	t.Run("presigns a path style url", func(t *testing.T) {
		svc := newTestPictureService(t, "https://cdn.example.com/")
		res, err := svc.CreateUploadURL(ctx, "u1", "image/png")
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(res.UploadURL, "http://localhost:9000/pictures/profiles/u1/"), res.UploadURL)
		assert.Contains(t, res.UploadURL, "X-Amz-Signature=")
		assert.True(t, strings.HasPrefix(res.PictureURL, "https://cdn.example.com/profiles/u1/"), res.PictureURL)
		assert.True(t, strings.HasSuffix(res.PictureURL, ".png"))
		assert.Equal(t, 300, res.ExpiresIn)
	})

	t.Run("defaults to jpeg and the bucket url", func(t *testing.T) {
		svc := newTestPictureService(t, "")
		res, err := svc.CreateUploadURL(ctx, "u1", "")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(res.PictureURL, "https://pictures.s3.us-east-1.amazonaws.com/profiles/u1/"))
		assert.True(t, strings.HasSuffix(res.PictureURL, ".jpg"))
	})

	t.Run("rejects other content types", func(t *testing.T) {
		svc := newTestPictureService(t, "")
		_, err := svc.CreateUploadURL(ctx, "u1", "application/pdf")
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}
