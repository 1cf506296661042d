package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

const uploadURLTTL = 5 * time.Minute

var pictureExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// PictureConfig configures profile picture storage
type PictureConfig struct {
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	Endpoint      string
	PublicBaseURL string
}

// PictureService issues pre-signed upload URLs for profile pictures
type PictureService struct {
	s3Client      *s3.Client
	bucket        string
	publicBaseURL string
}

// NewPictureService creates a new picture service
func NewPictureService(ctx context.Context, cfg PictureConfig) (*PictureService, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicBaseURL := strings.TrimRight(cfg.PublicBaseURL, "/")
	if publicBaseURL == "" {
		publicBaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	return &PictureService{
		s3Client:      s3Client,
		bucket:        cfg.Bucket,
		publicBaseURL: publicBaseURL,
	}, nil
}

// UploadResponse carries the pre-signed URL and the URL the picture will have
type UploadResponse struct {
	UploadURL  string `json:"uploadUrl"`
	PictureURL string `json:"pictureUrl"`
	ExpiresIn  int    `json:"expiresIn"`
}

// CreateUploadURL generates a pre-signed PUT URL for a new profile picture.
// The client uploads to UploadURL and then saves PictureURL as its profilePic.
func (s *PictureService) CreateUploadURL(ctx context.Context, userID, contentType string) (*UploadResponse, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	ext, ok := pictureExtensions[contentType]
	if !ok {
		return nil, invalidArgument("Unsupported content type")
	}

	// profiles/{user_id}/{picture_id}.{ext}
	key := fmt.Sprintf("profiles/%s/%s.%s", userID, uuid.New().String(), ext)

	presignClient := s3.NewPresignClient(s.s3Client)
	request, err := presignClient.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = uploadURLTTL
	})
	if err != nil {
		return nil, unavailable("failed to generate pre-signed URL", err)
	}

	return &UploadResponse{
		UploadURL:  request.URL,
		PictureURL: s.publicBaseURL + "/" + key,
		ExpiresIn:  int(uploadURLTTL.Seconds()),
	}, nil
}
