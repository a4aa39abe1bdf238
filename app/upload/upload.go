// Package upload pushes local images to medium, transcoding them to JPEG
// beforehand.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Semior001/mediumpub/pkg/imgx"
	"golang.org/x/exp/slog"
)

// API is the part of the medium client needed for uploading images.
type API interface {
	UploadImage(ctx context.Context, name string, rd io.Reader) (string, error)
}

// Uploader reads local image files and uploads their JPEG copies.
type Uploader struct {
	log *slog.Logger
	api API
}

// NewUploader creates new Uploader.
func NewUploader(lg *slog.Logger, api API) *Uploader {
	return &Uploader{log: lg, api: api}
}

// Upload pushes the image at path to medium and returns its hosted URL.
func (u *Uploader) Upload(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			u.log.WarnCtx(ctx, "failed to close image file", slog.Any("err", err))
		}
	}()

	b, err := imgx.ToJPEG(f)
	if err != nil {
		return "", fmt.Errorf("transcode %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".jpg"

	u.log.DebugCtx(ctx, "uploading image",
		slog.String("path", path),
		slog.Int("size", len(b)),
	)

	link, err := u.api.UploadImage(ctx, name, bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}

	return link, nil
}
