//go:build !opencl

package main

import "errors"

type openCLTracer struct{}

func newOpenCLTracer(numRays int) (*openCLTracer, error) {
	return nil, errors.New("OpenCL support is not enabled; rebuild with -tags opencl")
}

func (t *openCLTracer) Trace(bVals []float32, r0, M, phi0, phi1 float64, cfg traceConfig) (*traceResult, error) {
	return nil, errors.New("OpenCL tracer unavailable")
}

func (t *openCLTracer) Close() {}

func (t *openCLTracer) DeviceName() string { return "" }
