package imagestore

import (
	"context"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const uploadFolder = "gocamp"

// CloudinaryStore keeps campground images in Cloudinary.
type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinaryStore builds a store from a cloudinary:// credential URL.
func NewCloudinaryStore(url string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, err
	}
	return &CloudinaryStore{cld: cld}, nil
}

func (o *CloudinaryStore) Upload(ctx context.Context, file io.Reader, filename string) (Image, error) {
	resp, err := o.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:           uploadFolder,
		FilenameOverride: filename,
	})
	if err != nil {
		return Image{}, err
	}
	return Image{ID: resp.PublicID, URL: resp.SecureURL}, nil
}

func (o *CloudinaryStore) Delete(ctx context.Context, id string) error {
	_, err := o.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: id})
	return err
}
