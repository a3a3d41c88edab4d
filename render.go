package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// composeImage turns the integration results into the final picture. Escaped
// rays are mapped to their lensed sky direction and colored from the
// background; captured rays are black. Pixels are processed row-parallel,
// each worker writing only its own rows.
func composeImage(res *traceResult, alphaVals []float32, cam *cameraRig, M float64, sky *skyTexture) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, cam.width, cam.height))

	workers := runtime.GOMAXPROCS(0)
	if workers > cam.height {
		workers = cam.height
	}
	rowsPer := (cam.height + workers - 1) / workers

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		y0 := w * rowsPer
		if y0 >= cam.height {
			break
		}
		y1 := y0 + rowsPer
		if y1 > cam.height {
			y1 = cam.height
		}
		g.Go(func() error {
			for y := y0; y < y1; y++ {
				for x := 0; x < cam.width; x++ {
					idx := y*cam.width + x
					img.SetNRGBA(x, y, pixelColor(
						float64(res.R[idx]),
						float64(res.Phi[idx]),
						float64(alphaVals[idx]),
						M, sky,
					))
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	return img
}

// pixelColor classifies one ray and looks up its color. A ray that ended
// outside the Schwarzschild radius escaped; its final spherical position is
// rotated by the camera-plane azimuth alpha to get the lensed sky direction.
func pixelColor(finalR, finalPhi, alpha, M float64, sky *skyTexture) color.NRGBA {
	if finalR <= 2.0*M {
		return color.NRGBA{A: 255}
	}

	x := finalR * math.Sin(finalPhi) * math.Cos(alpha)
	y := finalR * math.Sin(finalPhi) * math.Sin(alpha)
	z := finalR * math.Cos(finalPhi)
	lensedPhi := math.Atan2(y, x)
	lensedTheta := math.Acos(z / finalR)

	var r, g, b float64
	if sky != nil {
		r, g, b = sky.sample(lensedPhi, lensedTheta)
	} else {
		r, g, b = checkerColor(lensedPhi, lensedTheta)
	}
	return color.NRGBA{
		R: floatToByte(r),
		G: floatToByte(g),
		B: floatToByte(b),
		A: 255,
	}
}

func floatToByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255)
}

// savePNG writes the rendered image to disk.
func savePNG(img *image.NRGBA, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}
