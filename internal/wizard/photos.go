package wizard

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedMediaType = errors.New("wizard: unsupported media type")
	ErrEmptyPhoto           = errors.New("wizard: empty photo payload")
)

// EncodedImage is a self-contained photo payload: media type plus the raw
// bytes encoded as base64 text. Immutable once created.
type EncodedImage struct {
	MediaType string `json:"mediaType"`
	Data      string `json:"data"`
}

// Bytes decodes the base64 payload back to raw image bytes.
func (img EncodedImage) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(img.Data)
}

// DataURL renders the image as a data: URL, the form the web client displays.
func (img EncodedImage) DataURL() string {
	return "data:" + img.MediaType + ";base64," + img.Data
}

// EncodePhoto converts raw uploaded bytes into an EncodedImage. The media
// type is sniffed from the file magic; anything that is not JPEG, PNG, WebP
// or GIF fails with ErrUnsupportedMediaType.
func EncodePhoto(raw []byte) (EncodedImage, error) {
	if len(raw) == 0 {
		return EncodedImage{}, ErrEmptyPhoto
	}
	mediaType := sniffImageType(raw)
	if mediaType == "" {
		return EncodedImage{}, ErrUnsupportedMediaType
	}
	return EncodedImage{
		MediaType: mediaType,
		Data:      base64.StdEncoding.EncodeToString(raw),
	}, nil
}

// ParseDataURL accepts a "data:image/...;base64,..." payload as produced by a
// browser FileReader and converts it into an EncodedImage. The declared media
// type must agree with the sniffed one at the image/* level.
func ParseDataURL(dataURL string) (EncodedImage, error) {
	dataURL = strings.TrimSpace(dataURL)
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return EncodedImage{}, fmt.Errorf("wizard: not a data url")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return EncodedImage{}, fmt.Errorf("wizard: malformed data url")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return EncodedImage{}, fmt.Errorf("wizard: data url is not base64")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return EncodedImage{}, fmt.Errorf("wizard: decode data url: %w", err)
	}
	return EncodePhoto(raw)
}

// AddPhoto appends an encoded photo to the answer set. Once MaxPhotos is
// reached further adds are a silent no-op rather than an error; the UI is
// expected to have disabled intake already.
func (a *AnswerSet) AddPhoto(img EncodedImage) {
	if len(a.Photos) >= MaxPhotos {
		return
	}
	a.Photos = append(a.Photos, img)
}

// RemovePhoto removes the photo at index i; later photos shift down so the
// list never has gaps. Out-of-range indexes report an error.
func (a *AnswerSet) RemovePhoto(i int) error {
	if i < 0 || i >= len(a.Photos) {
		return fmt.Errorf("wizard: photo index %d out of range", i)
	}
	a.Photos = append(a.Photos[:i], a.Photos[i+1:]...)
	return nil
}

func sniffImageType(raw []byte) string {
	switch {
	case len(raw) >= 3 && bytes.Equal(raw[:3], []byte{0xFF, 0xD8, 0xFF}):
		return "image/jpeg"
	case len(raw) >= 8 && bytes.Equal(raw[:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return "image/png"
	case len(raw) >= 12 && bytes.Equal(raw[:4], []byte("RIFF")) && bytes.Equal(raw[8:12], []byte("WEBP")):
		return "image/webp"
	case len(raw) >= 6 && (bytes.Equal(raw[:6], []byte("GIF87a")) || bytes.Equal(raw[:6], []byte("GIF89a"))):
		return "image/gif"
	}
	return ""
}
