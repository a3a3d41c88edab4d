package main

import (
	"math"
	"testing"
)

func TestGeodesicRHSStopsOutsideDomain(t *testing.T) {
	cases := []struct {
		name string
		r    float64
	}{
		{"inside horizon margin", 1.9},
		{"beyond escape radius", 16.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			drdphi, stop, dir := geodesicRHS(tc.r, 5.0, -1, 1.0)
			if !stop {
				t.Errorf("expected stop at r=%g", tc.r)
			}
			if drdphi != 0 {
				t.Errorf("expected zero derivative at stop, got %g", drdphi)
			}
			if dir != -1 {
				t.Errorf("direction must be unchanged at stop, got %d", dir)
			}
		})
	}
}

func TestGeodesicRHSInwardMotion(t *testing.T) {
	drdphi, stop, dir := geodesicRHS(10.0, 10.0, -1, 1.0)
	if stop {
		t.Fatal("unexpected stop inside domain")
	}
	if dir != -1 {
		t.Fatalf("direction changed without turning point: %d", dir)
	}
	if drdphi >= 0 {
		t.Errorf("inward ray must have negative dr/dphi, got %g", drdphi)
	}
	// radical = (r^2 - b^2*(1-2M/r)) / (b^2 r^2) at r=b=10, M=1.
	want := -100.0 * math.Sqrt((100.0-100.0*0.8)/(100.0*100.0))
	if math.Abs(drdphi-want) > 1e-12 {
		t.Errorf("dr/dphi = %g, want %g", drdphi, want)
	}
}

func TestGeodesicRHSTurningPointFlipsDirection(t *testing.T) {
	// At r=8, b=10, M=1 the radical is negative: the photon has passed
	// periapsis, so an inward direction must flip outward.
	radical := (64.0 - 100.0*(1.0-2.0/8.0)) / (100.0 * 64.0)
	if radical >= 0 {
		t.Fatal("test point does not sit past a turning point")
	}
	drdphi, stop, dir := geodesicRHS(8.0, 10.0, -1, 1.0)
	if stop {
		t.Fatal("unexpected stop at turning point")
	}
	if dir != 1 {
		t.Errorf("expected direction flip to +1, got %d", dir)
	}
	if drdphi <= 0 {
		t.Errorf("flipped ray must move outward, got dr/dphi=%g", drdphi)
	}
	if math.IsNaN(drdphi) || math.IsInf(drdphi, 0) {
		t.Errorf("derivative is not finite: %g", drdphi)
	}
}

func TestGeodesicRHSFiniteForValidImpact(t *testing.T) {
	for _, b := range []float64{1e-6, 0.1, 1, 5.196, 10, 100} {
		for r := 2.0; r <= 15.0; r += 0.37 {
			drdphi, _, _ := geodesicRHS(r, b, -1, 1.0)
			if math.IsNaN(drdphi) || math.IsInf(drdphi, 0) {
				t.Fatalf("non-finite derivative at r=%g b=%g: %g", r, b, drdphi)
			}
		}
	}
}

func TestCriticalImpact(t *testing.T) {
	want := 3.0 * math.Sqrt(3.0)
	if got := criticalImpact(1.0); math.Abs(got-want) > 1e-12 {
		t.Errorf("criticalImpact(1) = %g, want %g", got, want)
	}
	if got := criticalImpact(2.0); math.Abs(got-2*want) > 1e-12 {
		t.Errorf("criticalImpact(2) = %g, want %g", got, 2*want)
	}
}
