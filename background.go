package main

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	xdraw "golang.org/x/image/draw"
)

// checkerColor returns the procedural blue/white checker pattern for a sky
// direction. The sphere is divided into backgroundScale bands in each angle;
// squares whose index sum is even are blue, the rest are white.
func checkerColor(phi, theta float64) (float64, float64, float64) {
	u := positiveMod(phi, 2*math.Pi) / (2 * math.Pi)
	v := positiveMod(theta, math.Pi) / math.Pi

	checkU := int(u * backgroundScale)
	checkV := int(v * backgroundScale)

	if (checkU+checkV)%2 == 0 {
		return 0.2, 0.4, 1.0
	}
	return 1.0, 1.0, 1.0
}

// positiveMod wraps x into [0, m).
func positiveMod(x, m float64) float64 {
	r := math.Mod(x, m)
	if r < 0 {
		r += m
	}
	return r
}

// skyTexture is an equirectangular background image sampled by sky
// direction.
type skyTexture struct {
	img *image.NRGBA
}

// loadSkyTexture decodes a JPEG or PNG background and resamples it to the
// fixed lookup resolution with a bilinear filter, so sampling cost does not
// depend on the source image size.
func loadSkyTexture(path string) (*skyTexture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening background image: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding background image: %w", err)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, backgroundTexWidth, backgroundTexHeight))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return &skyTexture{img: dst}, nil
}

// sample returns the normalized RGB color at sky direction (phi, theta).
func (t *skyTexture) sample(phi, theta float64) (float64, float64, float64) {
	u := positiveMod(phi, 2*math.Pi) / (2 * math.Pi)
	v := positiveMod(theta, math.Pi) / math.Pi

	b := t.img.Bounds()
	px := int(u * float64(b.Dx()))
	if px >= b.Dx() {
		px = b.Dx() - 1
	}
	py := int(v * float64(b.Dy()))
	if py >= b.Dy() {
		py = b.Dy() - 1
	}

	off := t.img.PixOffset(b.Min.X+px, b.Min.Y+py)
	return float64(t.img.Pix[off]) / 255.0,
		float64(t.img.Pix[off+1]) / 255.0,
		float64(t.img.Pix[off+2]) / 255.0
}
