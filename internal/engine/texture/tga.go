// Package texture decodes images and uploads them as GPU textures.
package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image types.
const (
	TGATypeTrueColor    = 2  // Uncompressed true-color
	TGATypeGray         = 3  // Uncompressed grayscale
	TGATypeTrueColorRLE = 10 // RLE compressed true-color
	TGATypeGrayRLE      = 11 // RLE compressed grayscale
)

var errTGATruncated = errors.New("TGA data truncated")

// DecodeTGA decodes a TGA image.
// Supports true-color (24/32 bit) and grayscale (8 bit) images, raw or RLE.
// True-color images decode to *image.NRGBA, grayscale to *image.Gray.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < 18 {
		return nil, fmt.Errorf("TGA data too short")
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("color-mapped TGA not supported")
	}

	gray := imageType == TGATypeGray || imageType == TGATypeGrayRLE
	switch imageType {
	case TGATypeTrueColor, TGATypeTrueColorRLE:
		if bpp != 24 && bpp != 32 {
			return nil, fmt.Errorf("unsupported TGA bit depth %d for true-color", bpp)
		}
	case TGATypeGray, TGATypeGrayRLE:
		if bpp != 8 {
			return nil, fmt.Errorf("unsupported TGA bit depth %d for grayscale", bpp)
		}
	default:
		return nil, fmt.Errorf("unsupported TGA type %d", imageType)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, errTGATruncated
	}

	var (
		img  image.Image
		set  func(x, y int, px []byte)
		rect = image.Rect(0, 0, width, height)
	)
	if gray {
		g := image.NewGray(rect)
		img = g
		set = func(x, y int, px []byte) { g.SetGray(x, y, color.Gray{Y: px[0]}) }
	} else {
		c := image.NewNRGBA(rect)
		img = c
		set = func(x, y int, px []byte) {
			a := uint8(255)
			if len(px) == 4 {
				a = px[3]
			}
			c.SetNRGBA(x, y, color.NRGBA{R: px[2], G: px[1], B: px[0], A: a})
		}
	}

	// Bit 5 of the descriptor marks top-to-bottom row order.
	topToBottom := descriptor&0x20 != 0
	put := func(i int, px []byte) {
		x, y := i%width, i/width
		if !topToBottom {
			y = height - 1 - y
		}
		set(x, y, px)
	}

	pixels := data[offset:]
	bytesPerPixel := bpp / 8
	var err error
	if imageType == TGATypeTrueColorRLE || imageType == TGATypeGrayRLE {
		err = readRLE(pixels, width*height, bytesPerPixel, put)
	} else {
		err = readRaw(pixels, width*height, bytesPerPixel, put)
	}
	if err != nil {
		return nil, err
	}
	return img, nil
}

func readRaw(data []byte, count, bytesPerPixel int, put func(int, []byte)) error {
	if len(data) < count*bytesPerPixel {
		return errTGATruncated
	}
	for i := 0; i < count; i++ {
		put(i, data[i*bytesPerPixel:(i+1)*bytesPerPixel])
	}
	return nil
}

// readRLE decodes RLE packets. A truncated stream leaves the remaining
// pixels at their zero value.
func readRLE(data []byte, count, bytesPerPixel int, put func(int, []byte)) error {
	pixel, pos := 0, 0

	for pixel < count && pos < len(data) {
		packet := data[pos]
		pos++
		n := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			// Run packet: one pixel repeated n times
			if pos+bytesPerPixel > len(data) {
				break
			}
			px := data[pos : pos+bytesPerPixel]
			pos += bytesPerPixel
			for i := 0; i < n && pixel < count; i++ {
				put(pixel, px)
				pixel++
			}
			continue
		}

		// Raw packet: n literal pixels
		for i := 0; i < n && pixel < count; i++ {
			if pos+bytesPerPixel > len(data) {
				return nil
			}
			put(pixel, data[pos:pos+bytesPerPixel])
			pos += bytesPerPixel
			pixel++
		}
	}

	return nil
}
