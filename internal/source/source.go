// Package source produces the textures the VR elements project: a still
// image, a generated calibration pattern or an animated fractal rendered on
// the GPU.
package source

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-vr/internal/engine/gpu"
	"github.com/Faultbox/midgard-vr/internal/engine/texture"
	"github.com/Faultbox/midgard-vr/internal/logger"
)

// Kind names a source type.
type Kind string

const (
	KindImage      Kind = "image"
	KindPattern    Kind = "pattern"
	KindMandelbrot Kind = "mandelbrot"
)

// Config selects and sizes a source.
type Config struct {
	Kind Kind
	// Path is the image file for KindImage.
	Path   string
	Width  int
	Height int
}

// Source yields one texture per frame.
type Source interface {
	// Frame returns the texture to show at time t. Must run on the GL thread.
	Frame(t time.Duration) uint32
	// Size returns the frame dimensions.
	Size() (int, int)
	// Destroy releases the GL resources. It blocks on the GL thread.
	Destroy()
}

// New builds the configured source. It blocks on the GL thread.
func New(ctx *gpu.Context, cfg Config) (Source, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = 2048, 1024
	}
	switch cfg.Kind {
	case KindImage:
		return NewImage(ctx, cfg.Path, cfg.Width, cfg.Height)
	case KindPattern, "":
		return NewStill(ctx, Pattern(cfg.Width, cfg.Height)), nil
	case KindMandelbrot:
		return NewMandelbrot(ctx, cfg.Width, cfg.Height)
	}
	return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
}

// Still is a source showing the same texture every frame.
type Still struct {
	tex *texture.Texture
}

// NewStill uploads img as a still source.
func NewStill(ctx *gpu.Context, img *image.RGBA) *Still {
	return &Still{tex: texture.New(ctx, img)}
}

// NewImage loads path and scales it to width x height.
func NewImage(ctx *gpu.Context, path string, width, height int) (*Still, error) {
	img, err := texture.Load(path)
	if err != nil {
		logger.Named("source").Error("loading source image", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("creating image source: %w", err)
	}
	img = texture.Fit(img, width, height)
	logger.Named("source").Info("image source",
		zap.String("path", path),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()))
	return NewStill(ctx, img), nil
}

func (s *Still) Frame(time.Duration) uint32 { return s.tex.ID() }

func (s *Still) Size() (int, int) {
	w, h := s.tex.Size()
	return int(w), int(h)
}

func (s *Still) Destroy() { s.tex.Destroy() }

// Pattern draws an equirectangular calibration image: a checkerboard of 16
// columns whose rows are tinted by latitude band, with the equator and the
// prime meridian in white.
func Pattern(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	cell := max(width/16, 1)
	equator := height / 2

	for y := 0; y < height; y++ {
		// Latitude from +90 at the top to -90 at the bottom.
		lat := 90 - 180*(float32(y)+0.5)/float32(height)
		band := bandColor(lat)
		for x := 0; x < width; x++ {
			c := band
			if (x/cell+y/cell)%2 == 1 {
				c = color.RGBA{R: band.R / 2, G: band.G / 2, B: band.B / 2, A: 255}
			}
			if y == equator || x == 0 || x == width/2 {
				c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func bandColor(lat float32) color.RGBA {
	switch a := math32.Abs(lat); {
	case a >= 60:
		return color.RGBA{R: 60, G: 120, B: 220, A: 255}
	case a >= 30:
		return color.RGBA{R: 60, G: 200, B: 90, A: 255}
	}
	return color.RGBA{R: 230, G: 180, B: 60, A: 255}
}
