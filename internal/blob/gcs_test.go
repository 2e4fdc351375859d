package blob

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildObjectPath(t *testing.T) {
	p := buildObjectPath(File{
		Dir:         "products/p1/variants/أحمر",
		Name:        "photo.PNG",
		ContentType: "image/png",
	})

	require.True(t, strings.HasPrefix(p, "products/p1/variants/أحمر/"), p)
	assert.True(t, strings.HasSuffix(p, ".png"), p)
}

func TestBuildObjectPathUsesMIMEWhenNoExtension(t *testing.T) {
	p := buildObjectPath(File{Dir: "products/p1/variants/x", Name: "blob", ContentType: "image/webp"})
	assert.True(t, strings.HasSuffix(p, ".webp"), p)
}

func TestBuildObjectPathSanitizesSegments(t *testing.T) {
	p := buildObjectPath(File{Dir: "products/../p1/variants/a\\b", Name: "x.jpg"})
	assert.NotContains(t, p, "..")
	assert.Contains(t, p, "products/p1/variants/a_b/")
}

func TestUploadRejectsMissingClient(t *testing.T) {
	var s *GCSStore
	_, err := s.Upload(context.Background(), File{Data: []byte{1}}, "bucket")
	assert.Error(t, err)
}
