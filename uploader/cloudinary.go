package uploader

import (
	"context"
	"strings"

	"chirp/models"

	"github.com/cloudinary/cloudinary-go/v2"
	upapi "github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

type Cloudinary struct {
	cld *cloudinary.Cloudinary
}

// NewCloudinary builds an uploader from a cloudinary:// URL.
func NewCloudinary(url string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromURL(url)
	if err != nil {
		return nil, err
	}
	return &Cloudinary{cld: cld}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, source interface{}, folder string) (string, error) {
	result, err := c.cld.Upload.Upload(ctx, source, upapi.UploadParams{
		Folder:         folder,
		Transformation: "c_limit,w_1080,h_1080,q_auto",
	})
	if err != nil {
		return "", models.NewDependencyError("failed to upload image", err)
	}
	return result.SecureURL, nil
}

func (c *Cloudinary) Destroy(ctx context.Context, url string) error {
	publicID := publicIDFromURL(url)
	if publicID == "" {
		return nil
	}
	_, err := c.cld.Upload.Destroy(ctx, upapi.DestroyParams{PublicID: publicID})
	if err != nil {
		return models.NewDependencyError("failed to delete image", err)
	}
	return nil
}

// publicIDFromURL recovers the public id (folder path included, version
// and extension stripped) from a Cloudinary delivery URL.
func publicIDFromURL(url string) string {
	_, after, found := strings.Cut(url, "/upload/")
	if !found {
		return ""
	}
	parts := strings.Split(after, "/")
	if len(parts) > 1 && strings.HasPrefix(parts[0], "v") {
		parts = parts[1:]
	}
	id := strings.Join(parts, "/")
	if dot := strings.LastIndex(id, "."); dot > 0 {
		id = id[:dot]
	}
	return id
}
