package blob

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// GCSStore uploads into a single bucket. Objects are expected to be publicly
// readable through uniform bucket-level IAM, so no per-object ACL is set.
type GCSStore struct {
	Client        *storage.Client
	Bucket        string
	PublicBaseURL string
}

func NewGCSStore(client *storage.Client, bucket, publicBaseURL string) *GCSStore {
	base := strings.TrimRight(strings.TrimSpace(publicBaseURL), "/")
	if base == "" {
		base = "https://storage.googleapis.com"
	}
	return &GCSStore{
		Client:        client,
		Bucket:        strings.TrimSpace(bucket),
		PublicBaseURL: base,
	}
}

func (s *GCSStore) Upload(ctx context.Context, file File, bucket string) (Object, error) {
	if s == nil || s.Client == nil {
		return Object{}, errors.New("blob: storage client is nil")
	}
	if len(file.Data) == 0 {
		return Object{}, errors.New("blob: empty file")
	}
	b := strings.TrimSpace(bucket)
	if b == "" {
		b = s.Bucket
	}
	if b == "" {
		return Object{}, errors.New("blob: bucket is empty")
	}

	objectPath := buildObjectPath(file)

	w := s.Client.Bucket(b).Object(objectPath).NewWriter(ctx)
	if ct := strings.TrimSpace(file.ContentType); ct != "" {
		w.ContentType = ct
	}
	w.Metadata = map[string]string{
		"uploadedAt": time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := w.Write(file.Data); err != nil {
		_ = w.Close()
		return Object{}, fmt.Errorf("blob: write %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return Object{}, fmt.Errorf("blob: close %s: %w", objectPath, err)
	}

	return Object{
		Path:      objectPath,
		PublicURL: fmt.Sprintf("%s/%s/%s", s.PublicBaseURL, b, objectPath),
	}, nil
}

func buildObjectPath(file File) string {
	dir := strings.Trim(strings.TrimSpace(file.Dir), "/")
	segments := []string{}
	for _, seg := range strings.Split(dir, "/") {
		if s := sanitizePathSegment(seg); s != "" {
			segments = append(segments, s)
		}
	}

	name := sanitizePathSegment(file.Name)
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		ext = extensionForMIME(file.ContentType)
	}
	segments = append(segments, newObjectID()+ext)
	return strings.Join(segments, "/")
}

// sanitizePathSegment strips separators and surrounding dots or spaces.
func sanitizePathSegment(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return strings.Trim(s, ". ")
}

func extensionForMIME(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ""
	}
}

func newObjectID() string {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err == nil {
		return hex.EncodeToString(b)
	}
	return fmt.Sprintf("%d", time.Now().UTC().UnixNano())
}
