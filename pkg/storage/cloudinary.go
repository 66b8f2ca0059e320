package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

type cloudinaryStore struct {
	cld *cloudinary.Cloudinary
	log *zap.Logger
}

func NewCloudinaryStore(cloudinaryURL string, log *zap.Logger) (ImageStore, error) {
	if cloudinaryURL == "" {
		return nil, errors.New("CLOUDINARY_URL is required for the cloudinary storage driver")
	}

	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}

	return &cloudinaryStore{cld: cld, log: log.With(zap.String("storage", "cloudinary"))}, nil
}

func (s *cloudinaryStore) Save(ctx context.Context, ext string, content []byte) (string, error) {
	resp, err := s.cld.Upload.Upload(ctx, bytes.NewReader(content), uploader.UploadParams{
		PublicID: fmt.Sprintf("profile_%d", time.Now().UnixNano()),
		Folder:   "profile_images",
	})
	if err != nil {
		s.log.Error("Upload failed", zap.Error(err))
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	if resp == nil {
		return "", errors.New("cloudinary response is nil")
	}

	if resp.SecureURL != "" {
		return resp.SecureURL, nil
	}
	if resp.URL != "" {
		return resp.URL, nil
	}
	return "", errors.New("cloudinary returned no URL")
}
