package imagestore

import (
	"context"
	"io"
)

// Image is a stored picture: the backend's public id plus a retrievable URL.
type Image struct {
	ID  string
	URL string
}

type Store interface {
	Upload(ctx context.Context, file io.Reader, filename string) (Image, error)
	Delete(ctx context.Context, id string) error
}
