package main

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"
)

func TestPixelColorCapturedIsBlack(t *testing.T) {
	for _, r := range []float64{0.5, 1.99, 2.0} {
		c := pixelColor(r, 1.0, 0.0, 1.0, nil)
		if c.R != 0 || c.G != 0 || c.B != 0 || c.A != 255 {
			t.Errorf("r=%g: captured pixel = %+v, want opaque black", r, c)
		}
	}
}

func TestPixelColorEscapedUsesChecker(t *testing.T) {
	c := pixelColor(15.0, 1.0, 0.5, 1.0, nil)
	blue := color.NRGBA{R: floatToByte(0.2), G: floatToByte(0.4), B: 255, A: 255}
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	if c != blue && c != white {
		t.Errorf("escaped checker pixel = %+v, want blue or white", c)
	}
}

func TestPixelColorEscapedUsesSkyTexture(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 10, G: 200, B: 30, A: 255})
		}
	}
	c := pixelColor(15.0, 1.0, 0.5, 1.0, &skyTexture{img: img})
	if c.R != 10 || c.G != 200 || c.B != 30 {
		t.Errorf("textured pixel = %+v", c)
	}
}

func TestFloatToByte(t *testing.T) {
	if floatToByte(-0.5) != 0 {
		t.Error("negative values must clamp to 0")
	}
	if floatToByte(2.0) != 255 {
		t.Error("values above one must clamp to 255")
	}
	if floatToByte(0.5) != 127 {
		t.Errorf("floatToByte(0.5) = %d", floatToByte(0.5))
	}
}

func TestComposeImageDimensionsAndCapture(t *testing.T) {
	cam := newCameraRig(8, 4, 10.0)
	n := cam.numRays()
	res := newTraceResult(n)
	alpha := make([]float32, n)
	for i := range res.R {
		res.R[i] = 1.9 // every ray captured
		res.Status[i] = statusCaptured
	}

	img := composeImage(res, alpha, cam, 1.0, nil)
	if img.Bounds().Dx() != 8 || img.Bounds().Dy() != 4 {
		t.Fatalf("image bounds = %v", img.Bounds())
	}
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			c := img.NRGBAAt(x, y)
			if c.R != 0 || c.G != 0 || c.B != 0 {
				t.Fatalf("pixel (%d,%d) = %+v, want black", x, y, c)
			}
		}
	}
}

func TestComposeImageMixedRays(t *testing.T) {
	cam := newCameraRig(4, 1, 10.0)
	res := newTraceResult(4)
	alpha := make([]float32, 4)
	for i := range res.R {
		if i%2 == 0 {
			res.R[i] = 1.5
			res.Status[i] = statusCaptured
		} else {
			res.R[i] = 15.0
			res.Phi[i] = float32(1.0 + float64(i))
			res.Status[i] = statusEscaped
		}
	}

	img := composeImage(res, alpha, cam, 1.0, nil)
	for x := 0; x < 4; x++ {
		c := img.NRGBAAt(x, 0)
		captured := c.R == 0 && c.G == 0 && c.B == 0
		if x%2 == 0 && !captured {
			t.Errorf("pixel %d should be black, got %+v", x, c)
		}
		if x%2 == 1 && captured {
			t.Errorf("pixel %d should carry background color, got %+v", x, c)
		}
	}
}

func TestSavePNG(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	path := filepath.Join(t.TempDir(), "out.png")
	if err := savePNG(img, path); err != nil {
		t.Fatalf("savePNG: %v", err)
	}
	if err := savePNG(img, filepath.Join(t.TempDir(), "missing", "out.png")); err == nil {
		t.Error("expected error for unwritable path")
	}
}

func TestLogStatusSummaryCounts(t *testing.T) {
	// Sanity check that the summary walks every status without panicking on
	// unknown codes.
	res := &traceResult{
		Status: []rayStatus{statusEscaped, statusCaptured, statusStepLimit, statusRunning},
	}
	logStatusSummary(res)
}
