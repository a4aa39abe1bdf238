// Package imgx converts raster images of arbitrary formats into JPEG,
// suitable for uploading to image hostings.
package imgx

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // register decoders for common blog image formats
	"image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	maxWidth = 1600
	quality  = 80
)

// ToJPEG decodes an image from rd, downscales it if it's wider than
// maxWidth and encodes the result as JPEG.
func ToJPEG(rd io.Reader) ([]byte, error) {
	img, _, err := image.Decode(rd)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	if w := b.Dx(); w > maxWidth {
		h := b.Dy() * maxWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
		img = dst
	}

	buf := &bytes.Buffer{}
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return buf.Bytes(), nil
}
