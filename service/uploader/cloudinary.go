package uploader

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// Uploader stores event imagery (thumbnails, gallery images) and returns a
// publicly servable URL
type Uploader interface {
	UploadImage(ctx context.Context, name string, image any) (string, error)
}

// Cloudinary-backed implementation
type CloudinaryService struct {
	cld *cloudinary.Cloudinary
}

func NewCld(cloudName, cloudKey, cloudSecret string) (*CloudinaryService, error) {
	cld, err := cloudinary.NewFromParams(cloudName, cloudKey, cloudSecret)
	if err != nil {
		return nil, err
	}
	return &CloudinaryService{cld: cld}, nil
}

// UploadImage pushes an image to Cloudinary under the given public ID.
// Image can be a local file path, io.Reader, base64 string or remote URL;
// the SDK handles all of them.
func (cld *CloudinaryService) UploadImage(ctx context.Context, name string, image any) (string, error) {
	resp, err := cld.cld.Upload.Upload(ctx, image, uploader.UploadParams{
		PublicID: name,
	})
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}

	return resp.SecureURL, nil
}
