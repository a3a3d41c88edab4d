package main

import "math"

// rayStatus records how a ray left the integration loop. The values are
// shared with the OpenCL kernel, which writes the same codes into its status
// buffer.
type rayStatus int32

const (
	statusRunning rayStatus = iota
	statusEscaped
	statusCaptured
	statusStepLimit
)

func (s rayStatus) String() string {
	switch s {
	case statusRunning:
		return "running"
	case statusEscaped:
		return "escaped"
	case statusCaptured:
		return "captured"
	case statusStepLimit:
		return "step-limit"
	}
	return "unknown"
}

// traceConfig bundles the numeric parameters of the stepper so that both
// execution backends run with identical limits.
type traceConfig struct {
	Tol       float64
	HMin      float64
	HMax      float64
	HInit     float64
	StepLimit int
	Adaptive  bool
}

// defaultTraceConfig returns the stepper limits from config.go.
func defaultTraceConfig() traceConfig {
	return traceConfig{
		Tol:       defaultTolerance,
		HMin:      defaultHMin,
		HMax:      defaultHMax,
		HInit:     defaultHInit,
		StepLimit: defaultStepLimit,
		Adaptive:  true,
	}
}

// rk4Step advances r by one classic Runge-Kutta step of size h along phi.
// The stop flag and direction of the final stage evaluation are returned;
// intermediate stage flags are discarded, matching the higher-resolution
// authority of the last evaluation in the step-doubling pair.
func rk4Step(r, b float64, direction int, M, h float64) (float64, bool, int) {
	k1, _, _ := geodesicRHS(r, b, direction, M)
	k2, _, _ := geodesicRHS(r+0.5*h*k1, b, direction, M)
	k3, _, _ := geodesicRHS(r+0.5*h*k2, b, direction, M)
	k4, stop, dir := geodesicRHS(r+h*k3, b, direction, M)
	return r + (h/6.0)*(k1+2*k2+2*k3+k4), stop, dir
}

// traceRay integrates a single null geodesic from phi0 to phi1 using
// embedded step-doubling RK4 with adaptive step control. It returns the final
// angle and radius together with the terminal classification.
//
// Each iteration compares one full step of size h against two successive
// half steps. If the absolute difference exceeds cfg.Tol the step is halved
// and the iteration is retried without advancing; if the error is below a
// quarter of the tolerance the next step grows by half. The step size is
// clamped to [HMin, HMax] after every adjustment. At the floor step size an
// oversized error is accepted rather than spinning forever.
//
// With cfg.Adaptive false the loop degenerates to fixed steps of size HInit.
// Every path through the loop is bounded by cfg.StepLimit.
func traceRay(b, r0, M, phi0, phi1 float64, cfg traceConfig) (float64, float64, rayStatus) {
	// A ray down the optical axis has no angular momentum; the geodesic
	// equation is singular there and the photon falls straight in.
	if math.Abs(b) < impactEpsilon {
		return phi0, horizonMarginFactor * M, statusCaptured
	}

	phi := phi0
	r := r0
	h := cfg.HInit
	direction := -1 // camera rays start moving inward

	for steps := 0; steps < cfg.StepLimit; steps++ {
		if phi >= phi1 {
			return phi, r, classifyRadius(r, M)
		}

		var rNext float64
		var stop bool
		var dirNext int
		hUsed := h

		if cfg.Adaptive {
			rBig, _, _ := rk4Step(r, b, direction, M, h)

			h2 := 0.5 * h
			rHalf, _, _ := rk4Step(r, b, direction, M, h2)
			rSmall, stopHalf, dirHalf := rk4Step(rHalf, b, direction, M, h2)

			err := math.Abs(rSmall - rBig)
			if err > cfg.Tol && h > cfg.HMin {
				// Error too large: shrink and redo from the same state.
				h *= 0.5
				if h < cfg.HMin {
					h = cfg.HMin
				}
				continue
			}
			if err < cfg.Tol*0.25 && h < cfg.HMax {
				// Error very small: the next iteration may stride longer.
				h *= 1.5
				if h > cfg.HMax {
					h = cfg.HMax
				}
			}
			rNext, stop, dirNext = rSmall, stopHalf, dirHalf
		} else {
			rNext, stop, dirNext = rk4Step(r, b, direction, M, hUsed)
		}

		r = rNext
		phi += hUsed
		direction = dirNext

		if stop {
			return phi, r, classifyRadius(r, M)
		}
	}

	return phi, r, statusStepLimit
}

// classifyRadius maps a terminal radius to escaped or captured. Everything
// outside the Schwarzschild radius 2M counts as escaped, matching the rule
// the image composer applies.
func classifyRadius(r, M float64) rayStatus {
	if r > 2.0*M {
		return statusEscaped
	}
	return statusCaptured
}
