package model

import (
	"encoding/json"
	"strings"
)

// VariantValue is the payload stored next to a variant record: a barcode,
// optionally with the URL of a representative image.
//
// Stored as either the bare barcode or {"barcode": "...", "image": "..."}.
type VariantValue interface {
	Barcode() string
	ImageURL() string
	isVariantValue()
}

type PlainBarcode struct {
	Code string
}

func (b PlainBarcode) Barcode() string  { return b.Code }
func (b PlainBarcode) ImageURL() string { return "" }
func (PlainBarcode) isVariantValue()    {}

type BarcodeWithImage struct {
	Code  string
	Image string
}

func (b BarcodeWithImage) Barcode() string  { return b.Code }
func (b BarcodeWithImage) ImageURL() string { return b.Image }
func (BarcodeWithImage) isVariantValue()    {}

type variantValueJSON struct {
	Barcode string `json:"barcode"`
	Image   string `json:"image,omitempty"`
}

func EncodeVariantValue(v VariantValue) string {
	switch val := v.(type) {
	case BarcodeWithImage:
		if val.Image == "" {
			return val.Code
		}
		data, err := json.Marshal(variantValueJSON{Barcode: val.Code, Image: val.Image})
		if err != nil {
			return val.Code
		}
		return string(data)
	case PlainBarcode:
		return val.Code
	default:
		return ""
	}
}

// DecodeVariantValue never fails: anything that is not a JSON object is
// treated as a bare barcode.
func DecodeVariantValue(s string) VariantValue {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "{") {
		return PlainBarcode{Code: s}
	}

	var payload variantValueJSON
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return PlainBarcode{Code: s}
	}
	if payload.Image == "" {
		return PlainBarcode{Code: payload.Barcode}
	}
	return BarcodeWithImage{Code: payload.Barcode, Image: payload.Image}
}

// WithImage returns v carrying imageURL. An empty URL keeps v unchanged.
func WithImage(v VariantValue, imageURL string) VariantValue {
	if imageURL == "" {
		return v
	}
	return BarcodeWithImage{Code: v.Barcode(), Image: imageURL}
}
