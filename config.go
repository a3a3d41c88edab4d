package main

import "math"

// Camera, integration, and rendering configuration constants used throughout
// the application. These values consolidate the numeric parameters that the
// CPU and GPU integration paths must share.
const (
	defaultScreenWidth  = 1024
	defaultScreenHeight = 1024
	defaultFOVDegrees   = 90.0
	defaultCameraRadius = 10.0
	defaultMass         = 1.0

	// Adaptive stepper defaults, identical for both backends.
	defaultTolerance = 1e-6
	defaultHMin      = 1e-5
	defaultHMax      = 1e-2
	defaultHInit     = 1e-4
	defaultStepLimit = 100000

	// Radial bounds of the integration domain. The horizon margin is a
	// multiple of the black hole mass; the escape radius is an absolute
	// distance in geometric units.
	horizonMarginFactor = 1.99
	escapeRadius        = 15.0

	// Rays aimed closer to the optical axis than this carry no meaningful
	// impact parameter and plunge straight into the hole.
	impactEpsilon = 1e-9

	phiStart = 0.0
	phiEnd   = 2.0 * math.Pi

	backgroundScale     = 10
	backgroundTexWidth  = 2048
	backgroundTexHeight = 1024

	openCLWorkGroupSize = 256
	verifyTolerance     = 1e-3
)

// photonSphereFactor is the critical impact parameter per unit mass,
// b_crit = 3*sqrt(3)*M. Rays above it escape, rays below it are captured.
const photonSphereFactor = 5.196152422706632
