// Package export turns a board image into files a teacher can keep or print.
package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

var ErrNoImage = errors.New("no board image")

// FileName names the PNG download of a page.
func FileName(page int, now time.Time) string {
	return fmt.Sprintf("digital-board-page-%d-%d.png", page, now.UnixMilli())
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if img == nil {
		return ErrNoImage
	}
	return errors.Wrap(png.Encode(w, img), "encode png")
}

// DataURI encodes img as a base64 PNG data URI.
func DataURI(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// SavePNG writes img into dir under FileName and returns the full path.
func SavePNG(dir string, page int, img image.Image, now time.Time) (string, error) {
	if img == nil {
		return "", ErrNoImage
	}
	path := filepath.Join(dir, FileName(page, now))
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "create %s", path)
	}
	if err := EncodePNG(f, img); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, "close %s", path)
	}
	return path, nil
}
