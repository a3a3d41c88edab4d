package main

import "math"

// geodesicRHS evaluates the radial derivative dr/dphi of an equatorial null
// geodesic in the Schwarzschild metric at radius r for a photon with impact
// parameter b around a mass M. direction is -1 for inward motion and +1 for
// outward motion.
//
// The returned stop flag is true once r leaves the integration domain: below
// the horizon margin the photon is considered captured, beyond the escape
// radius spacetime is treated as flat. When the radical under the square root
// goes negative the photon has reached a turning point and the returned
// direction is flipped.
//
// Callers must keep |b| above impactEpsilon; a ray aimed exactly at the
// center makes the equation singular and is classified by the stepper without
// ever evaluating this function.
func geodesicRHS(r, b float64, direction int, M float64) (float64, bool, int) {
	if r < horizonMarginFactor*M || r > escapeRadius {
		return 0, true, direction
	}

	rSq := r * r
	bSq := b * b

	radical := (rSq - bSq*(1-(2*M)/r)) / (bSq * rSq)
	if radical < 0 {
		radical = -radical
		direction = -direction
	}

	return float64(direction) * rSq * math.Sqrt(radical), false, direction
}

// criticalImpact returns the photon-sphere impact parameter 3*sqrt(3)*M
// separating captured from escaping rays.
func criticalImpact(M float64) float64 {
	return photonSphereFactor * M
}
