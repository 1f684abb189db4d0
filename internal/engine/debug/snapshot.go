// Package debug provides developer aids for inspecting rendered frames.
package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-vr/internal/engine/framebuffer"
	"github.com/Faultbox/midgard-vr/internal/logger"
)

// Snapshotter writes rendered frames to timestamped PNG files.
type Snapshotter struct {
	outputDir string
	prefix    string
	now       func() time.Time
}

// NewSnapshotter returns a snapshotter writing <prefix>_<time>.png into outputDir.
func NewSnapshotter(outputDir, prefix string) *Snapshotter {
	return &Snapshotter{outputDir: outputDir, prefix: prefix, now: time.Now}
}

// Filename returns the path the next snapshot would be written to.
func (s *Snapshotter) Filename() string {
	name := fmt.Sprintf("%s_%s.png", s.prefix, s.now().Format("2006-01-02_15-04-05.000"))
	return filepath.Join(s.outputDir, name)
}

// SaveFramebuffer reads the color attachment of fb and saves it. Must run on
// the GL thread.
func (s *Snapshotter) SaveFramebuffer(fb *framebuffer.Framebuffer) (string, error) {
	w, h := fb.Size()
	return s.SavePixels(fb.ReadPixels(), int(w), int(h))
}

// SavePixels saves bottom-up RGBA rows, as read back from GL, as an upright
// image.
func (s *Snapshotter) SavePixels(pixels []byte, width, height int) (string, error) {
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		copy(img.Pix[y*img.Stride:y*img.Stride+rowSize], pixels[src:src+rowSize])
	}
	return s.SaveImage(img)
}

// SaveImage encodes img as PNG.
func (s *Snapshotter) SaveImage(img image.Image) (string, error) {
	if s.outputDir != "" {
		if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	path := s.Filename()
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}

	b := img.Bounds()
	logger.Named("debug").Info("snapshot saved",
		zap.String("path", path),
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()))
	return path, nil
}
