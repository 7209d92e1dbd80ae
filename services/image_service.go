package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/tailorworks/alterations-api/utils"
)

// ImageService handles garment photo upload, retrieval and deletion
type ImageService interface {
	// UploadGarmentPhoto validates and uploads a photo, returning its storage key
	UploadGarmentPhoto(ctx context.Context, orderID string, garmentIndex int, fileHeader *multipart.FileHeader) (string, error)

	// GetImageURL generates a URL for viewing a stored photo
	GetImageURL(ctx context.Context, key string) (string, error)

	// DeleteImage removes a photo from storage
	DeleteImage(ctx context.Context, key string) error
}

// S3ImageService implements ImageService on top of an S3Interface
type S3ImageService struct {
	s3Service S3Interface
	now       func() time.Time
}

var imageServiceInstance ImageService

// InitImageService initializes the image service with an S3 backend
func InitImageService(s3Service S3Interface) ImageService {
	imageServiceInstance = NewS3ImageService(s3Service)
	return imageServiceInstance
}

// NewS3ImageService creates an image service storing through s3Service
func NewS3ImageService(s3Service S3Interface) *S3ImageService {
	return &S3ImageService{s3Service: s3Service, now: time.Now}
}

// GetImageService returns the initialized image service instance
func GetImageService() ImageService {
	return imageServiceInstance
}

// SetImageService sets the image service instance (primarily for testing)
func SetImageService(service ImageService) {
	imageServiceInstance = service
}

// UploadGarmentPhoto validates the file and uploads it under the garment's prefix
func (s *S3ImageService) UploadGarmentPhoto(ctx context.Context, orderID string, garmentIndex int, fileHeader *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fileHeader); err != nil {
		return "", err
	}

	key := utils.GarmentPhotoKey(orderID, garmentIndex, fileHeader.Filename, s.now())
	if err := s.s3Service.UploadFile(ctx, key, fileHeader); err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return key, nil
}

// GetImageURL generates a presigned URL for a photo
func (s *S3ImageService) GetImageURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	url, err := s.s3Service.GetPresignedURL(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to generate image URL: %w", err)
	}
	return url, nil
}

// DeleteImage deletes a photo from S3
func (s *S3ImageService) DeleteImage(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	if err := s.s3Service.DeleteFile(ctx, key); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
