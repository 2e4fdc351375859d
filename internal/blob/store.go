// Package blob persists variant images and hands back their public URLs.
package blob

import "context"

// File is an image staged by the user but not yet uploaded.
type File struct {
	Dir         string
	Name        string
	ContentType string
	Data        []byte
}

type Object struct {
	Path      string `json:"path"`
	PublicURL string `json:"public_url"`
}

type Store interface {
	Upload(ctx context.Context, file File, bucket string) (Object, error)
}
