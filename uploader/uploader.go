// Package uploader is the object-storage collaborator for post and
// profile images.
package uploader

import "context"

// Uploader stores an image and returns its stable URL, and destroys a
// previously uploaded image given that URL.
type Uploader interface {
	Upload(ctx context.Context, source interface{}, folder string) (string, error)
	Destroy(ctx context.Context, url string) error
}

// Noop ignores uploads and deletions. Used when CLOUDINARY_URL is not
// configured and in tests.
type Noop struct{}

func (Noop) Upload(ctx context.Context, source interface{}, folder string) (string, error) {
	return "", nil
}

func (Noop) Destroy(ctx context.Context, url string) error {
	return nil
}
