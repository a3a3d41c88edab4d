package main

import (
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// traceResult holds the per-ray output arrays. The slices are parallel:
// slot i belongs exclusively to ray i and is written exactly once by the
// worker that integrated it.
type traceResult struct {
	Phi    []float32
	R      []float32
	Status []rayStatus
}

func newTraceResult(n int) *traceResult {
	return &traceResult{
		Phi:    make([]float32, n),
		R:      make([]float32, n),
		Status: make([]rayStatus, n),
	}
}

// integrateRaysCPU runs the adaptive stepper for every impact parameter in
// bVals, partitioning the ray indices into contiguous chunks across worker
// goroutines. Rays are fully independent, so the only synchronization is the
// final Wait barrier.
func integrateRaysCPU(bVals []float32, r0, M, phi0, phi1 float64, cfg traceConfig, workers int) *traceResult {
	numRays := len(bVals)
	out := newTraceResult(numRays)
	if numRays == 0 {
		return out
	}
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > numRays {
		workers = numRays
	}

	raysPer := (numRays + workers - 1) / workers
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		start := w * raysPer
		if start >= numRays {
			break
		}
		end := start + raysPer
		if end > numRays {
			end = numRays
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				phi, r, status := traceRay(float64(bVals[i]), r0, M, phi0, phi1, cfg)
				out.Phi[i] = float32(phi)
				out.R[i] = float32(r)
				out.Status[i] = status
			}
			return nil
		})
	}
	// Workers cannot fail; Wait only serves as the completion barrier.
	_ = g.Wait()
	return out
}

// compareBackends reports the first disagreement between two integration
// results. Final angles and radii must match within verifyTolerance relative
// error and the terminal classifications must be identical.
func compareBackends(ref, got *traceResult) error {
	if len(ref.Phi) != len(got.Phi) {
		return fmt.Errorf("result length mismatch: %d vs %d", len(ref.Phi), len(got.Phi))
	}
	for i := range ref.Phi {
		if ref.Status[i] != got.Status[i] {
			return fmt.Errorf("ray %d: status mismatch: %s vs %s", i, ref.Status[i], got.Status[i])
		}
		if d := relDiff(float64(ref.Phi[i]), float64(got.Phi[i])); d > verifyTolerance {
			return fmt.Errorf("ray %d: phi mismatch: %f vs %f (rel %g)", i, ref.Phi[i], got.Phi[i], d)
		}
		if d := relDiff(float64(ref.R[i]), float64(got.R[i])); d > verifyTolerance {
			return fmt.Errorf("ray %d: radius mismatch: %f vs %f (rel %g)", i, ref.R[i], got.R[i], d)
		}
	}
	return nil
}

// relDiff returns |a-b| scaled by the larger magnitude, with an absolute
// floor of one unit so values near zero compare absolutely.
func relDiff(a, b float64) float64 {
	scale := math.Max(math.Max(math.Abs(a), math.Abs(b)), 1.0)
	return math.Abs(a-b) / scale
}
