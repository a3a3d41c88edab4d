package main

import (
	"flag"
	"log"
	"math"
	"time"
)

func main() {
	flag.Parse()

	if *cpuProfileFlag != "" {
		stop, err := startCPUProfile(*cpuProfileFlag)
		if err != nil {
			log.Fatalf("CPU profile setup failed: %v", err)
		}
		defer stop()
	}

	width := *screenWidthFlag
	height := *screenHeightFlag
	if width < 1 || height < 1 {
		log.Fatalf("invalid resolution %dx%d", width, height)
	}
	r0 := *cameraRadiusFlag
	M := *massFlag
	if r0 <= 2.0*M {
		log.Fatalf("camera radius %g is inside the horizon of a mass-%g hole", r0, M)
	}
	fov := *fovDegreesFlag * math.Pi / 180.0

	cfg := traceConfig{
		Tol:       *toleranceFlag,
		HMin:      defaultHMin,
		HMax:      defaultHMax,
		HInit:     *hInitFlag,
		StepLimit: *stepLimitFlag,
		Adaptive:  !*fixedStepFlag,
	}

	start := time.Now()
	cam := newCameraRig(width, height, r0)

	log.Printf("projecting %d rays...", cam.numRays())
	bVals, alphaVals := projectRays(cam, r0, M, fov)

	log.Printf("integrating geodesics...")
	var res *traceResult
	if *useGPUFlag {
		tracer, err := newOpenCLTracer(len(bVals))
		if err != nil {
			log.Fatalf("OpenCL initialization failed: %v", err)
		}
		defer tracer.Close()
		log.Printf("OpenCL tracer enabled (device: %s)", tracer.DeviceName())

		res, err = tracer.Trace(bVals, r0, M, phiStart, phiEnd, cfg)
		if err != nil {
			log.Fatalf("GPU integration failed: %v", err)
		}
		if *verifyGPUFlag {
			cpuRes := integrateRaysCPU(bVals, r0, M, phiStart, phiEnd, cfg, *workersFlag)
			if err := compareBackends(cpuRes, res); err != nil {
				log.Fatalf("backend verification failed: %v", err)
			}
			log.Printf("GPU results verified against CPU backend")
		}
	} else {
		res = integrateRaysCPU(bVals, r0, M, phiStart, phiEnd, cfg, *workersFlag)
	}
	logStatusSummary(res)

	var sky *skyTexture
	if *backgroundFlag != "" {
		var err error
		sky, err = loadSkyTexture(*backgroundFlag)
		if err != nil {
			log.Fatalf("background load failed: %v", err)
		}
	}

	log.Printf("composing image...")
	img := composeImage(res, alphaVals, cam, M, sky)
	if err := savePNG(img, *outputFlag); err != nil {
		log.Fatalf("saving image failed: %v", err)
	}
	log.Printf("render complete: %s (%dx%d) in %v", *outputFlag, width, height, time.Since(start))
}

// logStatusSummary reports how the rays terminated. A nonzero step-limit
// count usually means the tolerance or step limit is too tight for the scene.
func logStatusSummary(res *traceResult) {
	var escaped, captured, limited int
	for _, s := range res.Status {
		switch s {
		case statusEscaped:
			escaped++
		case statusCaptured:
			captured++
		case statusStepLimit:
			limited++
		}
	}
	log.Printf("rays: %d escaped, %d captured, %d hit the step limit", escaped, captured, limited)
}
