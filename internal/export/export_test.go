package export

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 40, 25))
	for x := 0; x < 40; x++ {
		img.Set(x, 12, color.RGBA{R: 220, A: 255})
	}
	return img
}

func TestFileName(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	assert.Equal(t, "digital-board-page-3-1700000000123.png", FileName(3, now))
}

func TestDataURI(t *testing.T) {
	uri, err := DataURI(testImage())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "data:image/png;base64,"))

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, "data:image/png;base64,"))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 25), img.Bounds())

	_, err = DataURI(nil)
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestSavePNG(t *testing.T) {
	dir := t.TempDir()
	now := time.UnixMilli(42)

	path, err := SavePNG(dir, 1, testImage(), now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "digital-board-page-1-42.png"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	r, _, _, _ := img.At(5, 12).RGBA()
	assert.Equal(t, uint32(220*0x101), r)
}

func TestSavePNGMissingDir(t *testing.T) {
	_, err := SavePNG(filepath.Join(t.TempDir(), "nope"), 1, testImage(), time.Now())
	assert.Error(t, err)
}

func TestWritePrintPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePrintPDF(&buf, 2, testImage()))

	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Contains(t, string(out), "%%EOF")
	assert.Equal(t, "Digital Board - Page 2", PageTitle(2))

	assert.ErrorIs(t, WritePrintPDF(&buf, 1, nil), ErrNoImage)
}
