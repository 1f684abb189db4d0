package texture

import (
	"errors"
	"fmt"
	"image"
)

// TGA image types understood by DecodeTGA.
const (
	TGATypeUncompressed = 2
	TGATypeRLE          = 10
)

// ErrTGA wraps every TGA decoding failure.
var ErrTGA = errors.New("invalid TGA")

type tgaHeader struct {
	idLength     int
	colorMapType byte
	imageType    byte
	width        int
	height       int
	bytesPerPix  int
	topToBottom  bool
}

func parseTGAHeader(data []byte) (tgaHeader, error) {
	if len(data) < 18 {
		return tgaHeader{}, fmt.Errorf("%w: header too short", ErrTGA)
	}
	h := tgaHeader{
		idLength:     int(data[0]),
		colorMapType: data[1],
		imageType:    data[2],
		width:        int(data[12]) | int(data[13])<<8,
		height:       int(data[14]) | int(data[15])<<8,
		bytesPerPix:  int(data[16]) / 8,
		topToBottom:  data[17]&0x20 != 0,
	}
	switch {
	case h.colorMapType != 0:
		return h, fmt.Errorf("%w: color-mapped images are not supported", ErrTGA)
	case h.imageType != TGATypeUncompressed && h.imageType != TGATypeRLE:
		return h, fmt.Errorf("%w: image type %d is not supported", ErrTGA, h.imageType)
	case h.bytesPerPix != 3 && h.bytesPerPix != 4:
		return h, fmt.Errorf("%w: %d bits per pixel is not supported", ErrTGA, h.bytesPerPix*8)
	case h.width == 0 || h.height == 0:
		return h, fmt.Errorf("%w: empty image", ErrTGA)
	}
	return h, nil
}

// DecodeTGA decodes an uncompressed or run-length encoded true-color TGA.
func DecodeTGA(data []byte) (*image.RGBA, error) {
	h, err := parseTGAHeader(data)
	if err != nil {
		return nil, err
	}
	offset := 18 + h.idLength
	if offset > len(data) {
		return nil, fmt.Errorf("%w: truncated id field", ErrTGA)
	}

	img := image.NewRGBA(image.Rect(0, 0, h.width, h.height))
	w := &tgaWriter{img: img, h: h}
	src := data[offset:]

	if h.imageType == TGATypeUncompressed {
		if len(src) < h.width*h.height*h.bytesPerPix {
			return nil, fmt.Errorf("%w: truncated pixel data", ErrTGA)
		}
		for !w.done() {
			w.put(src[:h.bytesPerPix])
			src = src[h.bytesPerPix:]
		}
		return img, nil
	}

	for !w.done() {
		if len(src) == 0 {
			return nil, fmt.Errorf("%w: truncated run-length data", ErrTGA)
		}
		packet := src[0]
		src = src[1:]
		count := int(packet&0x7f) + 1

		if packet&0x80 != 0 {
			if len(src) < h.bytesPerPix {
				return nil, fmt.Errorf("%w: truncated run-length packet", ErrTGA)
			}
			for i := 0; i < count && !w.done(); i++ {
				w.put(src[:h.bytesPerPix])
			}
			src = src[h.bytesPerPix:]
			continue
		}

		if len(src) < count*h.bytesPerPix {
			return nil, fmt.Errorf("%w: truncated raw packet", ErrTGA)
		}
		for i := 0; i < count && !w.done(); i++ {
			w.put(src[:h.bytesPerPix])
			src = src[h.bytesPerPix:]
		}
	}
	return img, nil
}

// tgaWriter stores BGR(A) pixels in file order, flipping bottom-up images.
type tgaWriter struct {
	img *image.RGBA
	h   tgaHeader
	n   int
}

func (w *tgaWriter) done() bool {
	return w.n >= w.h.width*w.h.height
}

func (w *tgaWriter) put(bgra []byte) {
	x, y := w.n%w.h.width, w.n/w.h.width
	if !w.h.topToBottom {
		y = w.h.height - 1 - y
	}
	i := w.img.PixOffset(x, y)
	w.img.Pix[i+0] = bgra[2]
	w.img.Pix[i+1] = bgra[1]
	w.img.Pix[i+2] = bgra[0]
	w.img.Pix[i+3] = 255
	if len(bgra) == 4 {
		w.img.Pix[i+3] = bgra[3]
	}
	w.n++
}
