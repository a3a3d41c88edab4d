package main

import "flag"

// Command-line flags that control the camera geometry, the integrator limits,
// and the execution backend. Each flag overrides one of the defaults defined
// in config.go.
var (
	// screenWidthFlag and screenHeightFlag set the output resolution.
	screenWidthFlag  = flag.Int("width", defaultScreenWidth, "output image width in pixels")
	screenHeightFlag = flag.Int("height", defaultScreenHeight, "output image height in pixels")

	// fovDegreesFlag adjusts the camera field of view.
	fovDegreesFlag = flag.Float64("fov-deg", defaultFOVDegrees, "camera field of view (degrees)")

	// cameraRadiusFlag places the observer at this Schwarzschild radial coordinate.
	cameraRadiusFlag = flag.Float64("camera-radius", defaultCameraRadius, "radial distance of the camera from the black hole")

	// massFlag sets the black hole mass in geometric units.
	massFlag = flag.Float64("mass", defaultMass, "black hole mass (geometric units)")

	// toleranceFlag is the target local truncation error per adaptive step.
	toleranceFlag = flag.Float64("tol", defaultTolerance, "target local error for the adaptive stepper")

	// hInitFlag is the initial integration step size in radians of phi.
	hInitFlag = flag.Float64("h-init", defaultHInit, "initial integration step size")

	// stepLimitFlag caps the iterations spent on any single ray.
	stepLimitFlag = flag.Int("step-limit", defaultStepLimit, "maximum integration steps per ray")

	// fixedStepFlag disables adaptive step control and integrates at h-init.
	fixedStepFlag = flag.Bool("fixed-step", false, "disable adaptive step sizing and use a constant step")

	// useGPUFlag runs the geodesic integration on an OpenCL device.
	useGPUFlag = flag.Bool("gpu", false, "integrate rays on an OpenCL device (requires -tags opencl build)")

	// verifyGPUFlag re-integrates on the CPU and compares against GPU results.
	verifyGPUFlag = flag.Bool("verify-gpu", false, "run the CPU backend alongside the GPU and compare results")

	// workersFlag overrides the CPU worker count; zero means GOMAXPROCS.
	workersFlag = flag.Int("workers", 0, "number of CPU integration workers (0 = all cores)")

	// backgroundFlag points at an equirectangular sky texture; empty selects
	// the procedural checker pattern.
	backgroundFlag = flag.String("background", "", "equirectangular background image (JPEG or PNG); empty for checker pattern")

	// outputFlag names the rendered PNG.
	outputFlag = flag.String("output", "blackhole.png", "output PNG filename")

	// cpuProfileFlag captures a pprof CPU profile for the whole render.
	cpuProfileFlag = flag.String("cpuprofile", "", "write a CPU profile to this file")
)
