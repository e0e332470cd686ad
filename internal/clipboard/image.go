package clipboard

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"io"
)

const (
	// ImageMagic identifies an encoded image frame
	ImageMagic = "CIMG"

	// ImageVersion is the current frame version
	ImageVersion uint32 = 1

	// MaxImagePixelBytes limits the decoded pixel payload
	MaxImagePixelBytes = 100 * 1024 * 1024 // 100 MB
)

var (
	ErrInvalidImageMagic   = errors.New("invalid image magic bytes")
	ErrInvalidImageVersion = errors.New("unsupported image frame version")
	ErrImageTooLarge       = errors.New("image payload exceeds maximum")
	ErrTruncatedImage      = errors.New("truncated image frame")
)

// ImageData is a decoded clipboard image: dimensions plus raw pixel payload
type ImageData struct {
	Width  uint32
	Height uint32
	Pixels []byte
}

// EncodeImage serializes an image to the base64 frame carried in
// Snapshot.Image. Layout: magic, version, width, height, pixel payload,
// all integers big-endian.
func EncodeImage(img *ImageData) (string, error) {
	if img == nil {
		return "", errors.New("image is nil")
	}
	if len(img.Pixels) > MaxImagePixelBytes {
		return "", ErrImageTooLarge
	}

	buf := bytes.NewBuffer(make([]byte, 0, 16+len(img.Pixels)))
	buf.WriteString(ImageMagic)
	if err := binary.Write(buf, binary.BigEndian, ImageVersion); err != nil {
		return "", err
	}
	if err := binary.Write(buf, binary.BigEndian, img.Width); err != nil {
		return "", err
	}
	if err := binary.Write(buf, binary.BigEndian, img.Height); err != nil {
		return "", err
	}
	buf.Write(img.Pixels)

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeImage parses the base64 frame from Snapshot.Image
func DecodeImage(encoded string) (*ImageData, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	if len(raw) < 16 {
		return nil, ErrTruncatedImage
	}

	reader := bytes.NewReader(raw)

	magic := make([]byte, 4)
	if _, err := io.ReadFull(reader, magic); err != nil {
		return nil, err
	}
	if string(magic) != ImageMagic {
		return nil, ErrInvalidImageMagic
	}

	var version uint32
	if err := binary.Read(reader, binary.BigEndian, &version); err != nil {
		return nil, err
	}
	if version != ImageVersion {
		return nil, ErrInvalidImageVersion
	}

	img := &ImageData{}
	if err := binary.Read(reader, binary.BigEndian, &img.Width); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &img.Height); err != nil {
		return nil, err
	}

	payload := raw[16:]
	if len(payload) > MaxImagePixelBytes {
		return nil, ErrImageTooLarge
	}
	img.Pixels = payload

	return img, nil
}
