package main

import "math"

// vec3 is a minimal 3-component vector for camera geometry.
type vec3 struct {
	x, y, z float64
}

func (v vec3) add(o vec3) vec3      { return vec3{v.x + o.x, v.y + o.y, v.z + o.z} }
func (v vec3) sub(o vec3) vec3      { return vec3{v.x - o.x, v.y - o.y, v.z - o.z} }
func (v vec3) scale(s float64) vec3 { return vec3{v.x * s, v.y * s, v.z * s} }
func (v vec3) dot(o vec3) float64   { return v.x*o.x + v.y*o.y + v.z*o.z }

func (v vec3) cross(o vec3) vec3 {
	return vec3{
		v.y*o.z - v.z*o.y,
		v.z*o.x - v.x*o.z,
		v.x*o.y - v.y*o.x,
	}
}

func (v vec3) length() float64 { return math.Sqrt(v.dot(v)) }

func (v vec3) normalize() vec3 {
	l := v.length()
	if l == 0 {
		return v
	}
	return v.scale(1 / l)
}

// linspace returns n evenly spaced values from lo to hi inclusive.
func linspace(lo, hi float64, n int) []float64 {
	vals := make([]float64, n)
	if n == 1 {
		vals[0] = lo
		return vals
	}
	step := (hi - lo) / float64(n-1)
	for i := range vals {
		vals[i] = lo + step*float64(i)
	}
	return vals
}

// cameraRig holds the screen geometry and the orthonormal camera basis for an
// observer placed on the z-axis at radius r0, looking at the black hole in
// the origin.
type cameraRig struct {
	width, height int
	screenX       []float64
	screenY       []float64
	dir           vec3
	up            vec3
	right         vec3
}

// newCameraRig builds the per-pixel screen coordinates and the camera basis
// vectors. Screen coordinates span [-aspect, aspect] horizontally and are
// flipped vertically so that row zero is the top of the image.
func newCameraRig(width, height int, r0 float64) *cameraRig {
	aspect := float64(width) / float64(height)
	screenX := linspace(-aspect, aspect, width)
	screenY := linspace(aspect, -aspect, height)

	camPos := vec3{0, 0, r0}
	camTarget := vec3{0, 0, 0}
	camUp := vec3{0, 1, 0}

	dir := camPos.sub(camTarget).normalize()
	right := dir.cross(camUp).normalize()
	up := right.cross(dir)

	return &cameraRig{
		width:   width,
		height:  height,
		screenX: screenX,
		screenY: screenY,
		dir:     dir,
		up:      up,
		right:   right,
	}
}

// numRays returns the pixel count, one ray per pixel.
func (c *cameraRig) numRays() int { return c.width * c.height }

// rayDirection returns the unit view direction through pixel (row i, col j).
func (c *cameraRig) rayDirection(i, j int, fov float64) vec3 {
	spread := math.Tan(fov / 2)
	d := c.dir.
		add(c.right.scale(c.screenX[j] * spread)).
		add(c.up.scale(c.screenY[i] * spread))
	return d.normalize()
}
