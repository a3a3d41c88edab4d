package main

import "math"

// angleToImpact converts the angle theta between a camera ray and the radial
// axis into the photon's impact parameter b = L/E. At radius r0 the conserved
// quantities of a photon leaving at angle theta are L = r0*sin(theta) and
// E = sqrt(1 - 2M/r0), assuming locally flat space at the observer.
//
// An observer at or inside the horizon has no outgoing rays; the conversion
// returns zero there.
func angleToImpact(theta, r0, M float64) float64 {
	if r0 <= 2.0*M {
		return 0
	}
	L := r0 * math.Sin(theta)
	E := math.Sqrt(1.0 - 2.0*M/r0)
	return L / E
}

// projectRays computes the impact parameter and the camera-plane azimuth for
// every pixel. The impact parameters feed the geodesic integrator; the
// azimuth values are kept for the image composer, which needs them to place
// each lensed ray on the background sphere.
func projectRays(cam *cameraRig, r0, M, fov float64) (bVals []float32, alphaVals []float32) {
	n := cam.numRays()
	bVals = make([]float32, n)
	alphaVals = make([]float32, n)

	for i := 0; i < cam.height; i++ {
		for j := 0; j < cam.width; j++ {
			idx := i*cam.width + j
			d := cam.rayDirection(i, j, fov)

			// Polar angle off the optical axis and azimuth around it.
			theta := math.Acos(d.z)
			alpha := math.Atan2(d.y, d.x)

			alphaVals[idx] = float32(alpha)
			bVals[idx] = float32(angleToImpact(theta, r0, M))
		}
	}
	return bVals, alphaVals
}
