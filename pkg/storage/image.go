package storage

import (
	"context"
	"errors"
	"fmt"

	"gas-stock/pkg/utils"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

var ErrUnsupportedImage = errors.New("unsupported image format")

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// ImageStore saves profile images and returns the reference kept on the profile.
type ImageStore interface {
	Save(ctx context.Context, ext string, content []byte) (string, error)
}

// DetectImage sniffs content and returns its file extension, or
// ErrUnsupportedImage for anything that is not jpeg, png, gif or webp.
func DetectImage(content []byte) (string, error) {
	mtype := mimetype.Detect(content)
	for _, allowed := range allowedImageTypes {
		if mtype.Is(allowed) {
			return mtype.Extension(), nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, mtype.String())
}

func InitImageStore(config utils.StorageConfig, log *zap.Logger) (ImageStore, error) {
	switch config.Driver {
	case "cloudinary":
		store, err := NewCloudinaryStore(config.CloudinaryURL, log)
		if err != nil {
			return nil, err
		}
		log.Info("Profile images stored on Cloudinary")
		return store, nil
	case "", "local":
		log.Info("Profile images stored on disk", zap.String("dir", config.UploadDir))
		return NewLocalStore(config.UploadDir, config.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", config.Driver)
	}
}
