// Package imagecodec converts images to and from the compact base64 string
// that recipes, profiles and comments carry.
package imagecodec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"
)

// Quality is the JPEG quality used for every encoded image.
const Quality = 40

// MaxEncodedLength bounds the encoded string accepted by Normalize.
const MaxEncodedLength = 4 << 20

var ErrTooLarge = errors.New("image is too large")

// Encode compresses img as JPEG and returns it base64 encoded.
func Encode(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: Quality}); err != nil {
		return "", fmt.Errorf("encode jpeg: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode parses a base64 PNG, JPEG or GIF. A data URL prefix is accepted.
func Decode(encoded string) (image.Image, error) {
	raw, err := base64.StdEncoding.DecodeString(stripDataURL(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Normalize re-encodes any supported image as a compact JPEG string. Blank
// input stays blank.
func Normalize(encoded string) (string, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return "", nil
	}
	if len(encoded) > MaxEncodedLength {
		return "", ErrTooLarge
	}
	img, err := Decode(encoded)
	if err != nil {
		return "", err
	}
	return Encode(img)
}

func stripDataURL(s string) string {
	if !strings.HasPrefix(s, "data:") {
		return s
	}
	if _, data, ok := strings.Cut(s, ","); ok {
		return data
	}
	return s
}
