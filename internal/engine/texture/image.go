package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ErrUnsupportedChannels is returned for pixel data that is not 1, 3 or 4
// channels per pixel.
var ErrUnsupportedChannels = errors.New("unsupported channel count")

// Image is tightly packed 8-bit pixel data, bottom row first when flipped.
type Image struct {
	Pix      []byte
	Width    int
	Height   int
	Channels int
}

// HasAlpha reports whether the image carries an alpha channel.
func (img *Image) HasAlpha() bool {
	return img.Channels == 4
}

// Load reads and decodes an image file. Rows are flipped so the first row
// is the bottom of the image, matching GL texture coordinates.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(path, data, true)
}

// Decode decodes PNG, JPEG, BMP, TIFF or TGA data. name selects TGA by
// extension since TGA has no magic number.
func Decode(name string, data []byte, flip bool) (*Image, error) {
	var (
		src image.Image
		err error
	)
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		src, err = DecodeTGA(data)
	} else {
		src, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return FromImage(src, flip), nil
}

// FromImage packs an image into 1 (gray), 3 (opaque) or 4 channels.
func FromImage(src image.Image, flip bool) *Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	if g, ok := src.(*image.Gray); ok {
		out := &Image{Pix: make([]byte, w*h), Width: w, Height: h, Channels: 1}
		for y := 0; y < h; y++ {
			row := g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):][:w]
			copy(out.Pix[dstRow(y, h, flip)*w:], row)
		}
		return out
	}

	nrgba, ok := src.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(nrgba, nrgba.Bounds(), src, b.Min, draw.Src)
	}

	channels := 4
	if o, ok := src.(interface{ Opaque() bool }); ok && o.Opaque() {
		channels = 3
	}

	out := &Image{Pix: make([]byte, w*h*channels), Width: w, Height: h, Channels: channels}
	for y := 0; y < h; y++ {
		srcRow := nrgba.Pix[y*nrgba.Stride:]
		dst := out.Pix[dstRow(y, h, flip)*w*channels:]
		for x := 0; x < w; x++ {
			copy(dst[x*channels:x*channels+channels], srcRow[x*4:x*4+channels])
		}
	}
	return out
}

func dstRow(y, h int, flip bool) int {
	if flip {
		return h - 1 - y
	}
	return y
}
