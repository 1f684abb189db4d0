package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/midgard-vr/internal/engine/gpu"
	"github.com/Faultbox/midgard-vr/internal/engine/gpu/gputest"
)

// tgaFile builds a 2x2 32-bit TGA. The pixel payload follows the header.
func tgaFile(imageType byte, topToBottom bool, payload ...byte) []byte {
	header := make([]byte, 18)
	header[2] = imageType
	header[12], header[14] = 2, 2
	header[16] = 32
	if topToBottom {
		header[17] = 0x20
	}
	return append(header, payload...)
}

func TestDecodeTGAUncompressed(t *testing.T) {
	// BGRA, bottom row first: blue, green / red, white.
	data := tgaFile(TGATypeUncompressed, false,
		255, 0, 0, 255, 0, 255, 0, 255,
		0, 0, 255, 255, 255, 255, 255, 128,
	)

	img, err := DecodeTGA(data)
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 128}, img.RGBAAt(1, 0))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, img.RGBAAt(0, 1))
	assert.Equal(t, color.RGBA{G: 255, A: 255}, img.RGBAAt(1, 1))
}

func TestDecodeTGARunLength(t *testing.T) {
	// One run of three red pixels, then one raw green pixel, top row first.
	data := tgaFile(TGATypeRLE, true,
		0x82, 0, 0, 255, 255,
		0x00, 0, 255, 0, 255,
	)

	img, err := DecodeTGA(data)
	require.NoError(t, err)

	red := color.RGBA{R: 255, A: 255}
	assert.Equal(t, red, img.RGBAAt(0, 0))
	assert.Equal(t, red, img.RGBAAt(1, 0))
	assert.Equal(t, red, img.RGBAAt(0, 1))
	assert.Equal(t, color.RGBA{G: 255, A: 255}, img.RGBAAt(1, 1))
}

func TestDecodeTGAErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short header", []byte{0, 0, 2}},
		{"color mapped", func() []byte { d := tgaFile(TGATypeUncompressed, false); d[1] = 1; return d }()},
		{"grayscale", tgaFile(3, false)},
		{"truncated raw", tgaFile(TGATypeUncompressed, false, 1, 2, 3)},
		{"truncated rle", tgaFile(TGATypeRLE, false, 0x81, 0, 0, 255, 255)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTGA(tt.data)
			assert.ErrorIs(t, err, ErrTGA)
		})
	}
}

func TestLoadPNGAndFit(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	path := filepath.Join(t.TempDir(), "pano.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	img, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 4), img.Bounds())
	assert.Equal(t, color.RGBA{255, 255, 255, 255}, img.RGBAAt(3, 2))

	scaled := Fit(img, 4, 2)
	assert.Equal(t, image.Rect(0, 0, 4, 2), scaled.Bounds())
	assert.Same(t, img, Fit(img, 8, 4))
	assert.Same(t, img, Fit(img, 0, 0))

	_, err = Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
	_, err = Decode([]byte("not an image"), ".png")
	assert.Error(t, err)
}

func TestToRGBACopiesSubImages(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.SetRGBA(2, 2, color.RGBA{R: 9, A: 255})

	sub := img.SubImage(image.Rect(2, 2, 4, 4)).(*image.RGBA)
	out := ToRGBA(sub)
	assert.Equal(t, image.Rect(0, 0, 2, 2), out.Bounds())
	assert.Equal(t, color.RGBA{R: 9, A: 255}, out.RGBAAt(0, 0))
	assert.Same(t, img, ToRGBA(img))
}

func TestTextureLifecycle(t *testing.T) {
	rec := gputest.New()
	ctx := gpu.NewContext(rec)
	t.Cleanup(ctx.Start())

	tex := New(ctx, image.NewRGBA(image.Rect(0, 0, 4, 2)))
	assert.NotZero(t, tex.ID())
	w, h := tex.Size()
	assert.EqualValues(t, 4, w)
	assert.EqualValues(t, 2, h)
	assert.Equal(t, 1, rec.Live(gputest.KindTexture))

	ctx.Run(func(gpu.GL) { tex.Update(image.NewRGBA(image.Rect(0, 0, 8, 8))) })
	w, _ = tex.Size()
	assert.EqualValues(t, 8, w)
	assert.Equal(t, 2, rec.Count("TexImage2D"))

	tex.Destroy()
	tex.Destroy()
	assert.Zero(t, rec.Live(gputest.KindTexture))
	assert.Empty(t, rec.DoubleFrees())
	assert.EqualValues(t, 1, ctx.Refs())
}
