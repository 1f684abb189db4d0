package debug

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSavePixelsFlipsRows(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	s := NewSnapshotter(dir, "vr")
	s.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	// Bottom row red, top row blue, as GL reads them back.
	pixels := []byte{
		255, 0, 0, 255, 255, 0, 0, 255,
		0, 0, 255, 255, 0, 0, 255, 255,
	}
	path, err := s.SavePixels(pixels, 2, 2)
	if err != nil {
		t.Fatalf("SavePixels: %v", err)
	}
	if !strings.HasSuffix(path, "vr_2026-01-02_03-04-05.000.png") {
		t.Errorf("unexpected filename %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening snapshot: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding snapshot: %v", err)
	}

	blue := color.RGBA{B: 255, A: 255}
	red := color.RGBA{R: 255, A: 255}
	if got := color.RGBAModel.Convert(img.At(0, 0)); got != blue {
		t.Errorf("top row: expected blue, got %v", got)
	}
	if got := color.RGBAModel.Convert(img.At(1, 1)); got != red {
		t.Errorf("bottom row: expected red, got %v", got)
	}
}

func TestSavePixelsSizeMismatch(t *testing.T) {
	s := NewSnapshotter(t.TempDir(), "vr")
	if _, err := s.SavePixels(make([]byte, 10), 2, 2); err == nil {
		t.Error("expected size mismatch error")
	}
}

func TestSaveImage(t *testing.T) {
	s := NewSnapshotter(t.TempDir(), "frame")
	path, err := s.SaveImage(image.NewRGBA(image.Rect(0, 0, 3, 1)))
	if err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("snapshot missing: %v", err)
	}
}
