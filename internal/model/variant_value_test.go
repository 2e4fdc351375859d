package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeVariantValue(t *testing.T) {
	t.Run("bare barcode", func(t *testing.T) {
		v := DecodeVariantValue("6221234567890")
		assert.Equal(t, PlainBarcode{Code: "6221234567890"}, v)
		assert.Empty(t, v.ImageURL())
	})

	t.Run("json with image", func(t *testing.T) {
		v := DecodeVariantValue(`{"barcode":"P-1","image":"https://cdn/x.png"}`)
		assert.Equal(t, BarcodeWithImage{Code: "P-1", Image: "https://cdn/x.png"}, v)
	})

	t.Run("json without image collapses to barcode", func(t *testing.T) {
		v := DecodeVariantValue(`{"barcode":"P-2"}`)
		assert.Equal(t, PlainBarcode{Code: "P-2"}, v)
	})

	t.Run("broken json is a barcode", func(t *testing.T) {
		v := DecodeVariantValue(`{"barcode":`)
		assert.Equal(t, PlainBarcode{Code: `{"barcode":`}, v)
	})
}

func TestEncodeVariantValueRoundTrip(t *testing.T) {
	original := WithImage(PlainBarcode{Code: "B-9"}, "https://storage.googleapis.com/b/o.jpg")
	encoded := EncodeVariantValue(original)

	assert.JSONEq(t, `{"barcode":"B-9","image":"https://storage.googleapis.com/b/o.jpg"}`, encoded)
	assert.Equal(t, original, DecodeVariantValue(encoded))

	assert.Equal(t, "B-9", EncodeVariantValue(PlainBarcode{Code: "B-9"}))
}

func TestWithImageOverwritesExisting(t *testing.T) {
	v := WithImage(BarcodeWithImage{Code: "C", Image: "old"}, "new")
	assert.Equal(t, "new", v.ImageURL())
	assert.Equal(t, "C", v.Barcode())

	unchanged := WithImage(BarcodeWithImage{Code: "C", Image: "old"}, "")
	assert.Equal(t, "old", unchanged.ImageURL())
}
