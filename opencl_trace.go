//go:build opencl

package main

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"
)

// openCLTracer owns the OpenCL objects needed to integrate a batch of rays on
// a compute device. One work-item traces one ray; work-items past the ray
// count return immediately.
type openCLTracer struct {
	context    *cl.Context
	queue      *cl.CommandQueue
	program    *cl.Program
	kernel     *cl.Kernel
	bBuf       *cl.MemObject
	phiBuf     *cl.MemObject
	rBuf       *cl.MemObject
	statusBuf  *cl.MemObject
	capacity   int
	deviceName string
}

// The kernel integrates in double precision; with the default tolerance near
// one float32 ulp of the working radii, a single-precision error estimate is
// rounding noise and the controller drifts away from the host stepper. Only
// the ray buffers cross the bus as float32. The radial bounds and status
// codes are injected as -D build options from the Go constants, see
// kernelBuildOptions.
const traceKernelSource = `#pragma OPENCL EXTENSION cl_khr_fp64 : enable

double geodesic_rhs(double r, double b, double M, int *direction, int *stop)
{
    if (r < HORIZON_FACTOR * M || r > ESCAPE_RADIUS) {
        *stop = 1;
        return 0.0;
    }
    double r_sq = r * r;
    double b_sq = b * b;
    double radical = (r_sq - b_sq * (1.0 - (2.0 * M) / r)) / (b_sq * r_sq);
    if (radical < 0.0) {
        radical = -radical;
        *direction = -(*direction);
    }
    return (double)(*direction) * r_sq * sqrt(radical);
}

double rk4_step(double r, double b, double M, double h, int dir_in, int *dir_out, int *stop_out)
{
    int d = dir_in;
    int s = 0;
    double k1 = geodesic_rhs(r, b, M, &d, &s);
    d = dir_in; s = 0;
    double k2 = geodesic_rhs(r + 0.5 * h * k1, b, M, &d, &s);
    d = dir_in; s = 0;
    double k3 = geodesic_rhs(r + 0.5 * h * k2, b, M, &d, &s);
    d = dir_in; s = 0;
    double k4 = geodesic_rhs(r + h * k3, b, M, &d, &s);
    *dir_out = d;
    *stop_out = s;
    return r + (h / 6.0) * (k1 + 2.0 * k2 + 2.0 * k3 + k4);
}

__kernel void trace_rays(
    const float mass,
    const float r0,
    const float phi_start,
    const float phi_end,
    const float h_init,
    const float tol,
    const float h_min,
    const float h_max,
    const int step_limit,
    const int adaptive,
    const int num_rays,
    __global const float* b_vals,
    __global float* phi_out,
    __global float* r_out,
    __global int* status_out)
{
    int i = get_global_id(0);
    if (i >= num_rays) {
        return;
    }

    double M = (double)mass;
    double b = (double)b_vals[i];
    if (fabs(b) < IMPACT_EPSILON) {
        phi_out[i] = phi_start;
        r_out[i] = (float)(HORIZON_FACTOR * M);
        status_out[i] = STATUS_CAPTURED;
        return;
    }

    double phi = (double)phi_start;
    double phi_stop = (double)phi_end;
    double r = (double)r0;
    double h = (double)h_init;
    double tolerance = (double)tol;
    double h_floor = (double)h_min;
    double h_ceil = (double)h_max;
    int direction = -1;
    int status = STATUS_STEP_LIMIT;

    for (int step = 0; step < step_limit; ++step) {
        if (phi >= phi_stop) {
            status = (r > 2.0 * M) ? STATUS_ESCAPED : STATUS_CAPTURED;
            break;
        }

        double h_used = h;
        double r_next;
        int stop = 0;
        int dir_next = direction;

        if (adaptive) {
            int d_tmp;
            int s_tmp;
            double r_big = rk4_step(r, b, M, h, direction, &d_tmp, &s_tmp);

            double h2 = 0.5 * h;
            double r_half = rk4_step(r, b, M, h2, direction, &d_tmp, &s_tmp);
            double r_small = rk4_step(r_half, b, M, h2, direction, &dir_next, &stop);

            double err = fabs(r_small - r_big);
            if (err > tolerance && h > h_floor) {
                h *= 0.5;
                if (h < h_floor) {
                    h = h_floor;
                }
                continue;
            }
            if (err < tolerance * 0.25 && h < h_ceil) {
                h *= 1.5;
                if (h > h_ceil) {
                    h = h_ceil;
                }
            }
            r_next = r_small;
        } else {
            r_next = rk4_step(r, b, M, h_used, direction, &dir_next, &stop);
        }

        r = r_next;
        phi += h_used;
        direction = dir_next;

        if (stop) {
            status = (r > 2.0 * M) ? STATUS_ESCAPED : STATUS_CAPTURED;
            break;
        }
    }

    phi_out[i] = (float)phi;
    r_out[i] = (float)r;
    status_out[i] = status;
}`

// kernelBuildOptions injects the domain bounds and status codes from
// config.go and stepper.go into the kernel as -D defines, so the kernel
// cannot drift from the Go constants.
func kernelBuildOptions() string {
	return fmt.Sprintf(
		"-DHORIZON_FACTOR=%g -DESCAPE_RADIUS=%g -DIMPACT_EPSILON=%g -DSTATUS_ESCAPED=%d -DSTATUS_CAPTURED=%d -DSTATUS_STEP_LIMIT=%d",
		horizonMarginFactor, escapeRadius, impactEpsilon,
		statusEscaped, statusCaptured, statusStepLimit,
	)
}

// findDoubleDevice returns the first device of the requested type that
// advertises the cl_khr_fp64 extension. The trace kernel keeps its state in
// double precision, so devices without it cannot run it.
func findDoubleDevice(platforms []*cl.Platform, devType cl.DeviceType) *cl.Device {
	for _, p := range platforms {
		devices, err := p.GetDevices(devType)
		if err != nil && err != cl.ErrDeviceNotFound {
			continue
		}
		for _, d := range devices {
			if strings.Contains(d.Extensions(), "cl_khr_fp64") {
				return d
			}
		}
	}
	return nil
}

// newOpenCLTracer locates a compute device, builds the trace kernel, and
// allocates device buffers for numRays rays. GPU devices are preferred; CPU
// devices serve as a fallback so the OpenCL path stays testable without
// dedicated hardware.
func newOpenCLTracer(numRays int) (*openCLTracer, error) {
	if numRays <= 0 {
		return nil, fmt.Errorf("invalid ray count %d", numRays)
	}
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms; install OpenCL drivers and verify with `clinfo`"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no OpenCL platforms available; ensure a vendor driver is installed and detected by `clinfo`")
	}
	device := findDoubleDevice(platforms, cl.DeviceTypeGPU)
	if device == nil {
		device = findDoubleDevice(platforms, cl.DeviceTypeCPU)
	}
	if device == nil {
		return nil, errors.New("no OpenCL device with double precision (cl_khr_fp64) support found")
	}

	context, err := cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return nil, fmt.Errorf("creating OpenCL context: %w", err)
	}
	queue, err := context.CreateCommandQueue(device, 0)
	if err != nil {
		context.Release()
		return nil, fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	program, err := context.CreateProgramWithSource([]string{traceKernelSource})
	if err != nil {
		queue.Release()
		context.Release()
		return nil, fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := program.BuildProgram([]*cl.Device{device}, kernelBuildOptions()); err != nil {
		program.Release()
		queue.Release()
		context.Release()
		if buildErr, ok := err.(cl.BuildError); ok {
			return nil, fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return nil, fmt.Errorf("building OpenCL program: %w", err)
	}
	kernel, err := program.CreateKernel("trace_rays")
	if err != nil {
		program.Release()
		queue.Release()
		context.Release()
		return nil, fmt.Errorf("creating trace kernel: %w", err)
	}

	floatBytes := numRays * int(unsafe.Sizeof(float32(0)))
	intBytes := numRays * int(unsafe.Sizeof(int32(0)))
	bBuf, err := context.CreateEmptyBuffer(cl.MemReadOnly, floatBytes)
	if err != nil {
		kernel.Release()
		program.Release()
		queue.Release()
		context.Release()
		return nil, fmt.Errorf("allocating impact parameter buffer: %w", err)
	}
	phiBuf, err := context.CreateEmptyBuffer(cl.MemWriteOnly, floatBytes)
	if err != nil {
		bBuf.Release()
		kernel.Release()
		program.Release()
		queue.Release()
		context.Release()
		return nil, fmt.Errorf("allocating phi output buffer: %w", err)
	}
	rBuf, err := context.CreateEmptyBuffer(cl.MemWriteOnly, floatBytes)
	if err != nil {
		phiBuf.Release()
		bBuf.Release()
		kernel.Release()
		program.Release()
		queue.Release()
		context.Release()
		return nil, fmt.Errorf("allocating radius output buffer: %w", err)
	}
	statusBuf, err := context.CreateEmptyBuffer(cl.MemWriteOnly, intBytes)
	if err != nil {
		rBuf.Release()
		phiBuf.Release()
		bBuf.Release()
		kernel.Release()
		program.Release()
		queue.Release()
		context.Release()
		return nil, fmt.Errorf("allocating status output buffer: %w", err)
	}

	return &openCLTracer{
		context:    context,
		queue:      queue,
		program:    program,
		kernel:     kernel,
		bBuf:       bBuf,
		phiBuf:     phiBuf,
		rBuf:       rBuf,
		statusBuf:  statusBuf,
		capacity:   numRays,
		deviceName: device.Name(),
	}, nil
}

// Trace integrates every ray in bVals on the device and blocks until the
// results have been read back into host memory.
func (t *openCLTracer) Trace(bVals []float32, r0, M, phi0, phi1 float64, cfg traceConfig) (*traceResult, error) {
	numRays := len(bVals)
	if numRays == 0 {
		return newTraceResult(0), nil
	}
	if numRays > t.capacity {
		return nil, fmt.Errorf("ray count %d exceeds tracer capacity %d", numRays, t.capacity)
	}

	adaptive := int32(0)
	if cfg.Adaptive {
		adaptive = 1
	}
	if err := t.kernel.SetArgs(
		float32(M),
		float32(r0),
		float32(phi0),
		float32(phi1),
		float32(cfg.HInit),
		float32(cfg.Tol),
		float32(cfg.HMin),
		float32(cfg.HMax),
		int32(cfg.StepLimit),
		adaptive,
		int32(numRays),
		t.bBuf,
		t.phiBuf,
		t.rBuf,
		t.statusBuf,
	); err != nil {
		return nil, fmt.Errorf("setting kernel arguments: %w", err)
	}

	if _, err := t.queue.EnqueueWriteBufferFloat32(t.bBuf, false, 0, bVals, nil); err != nil {
		return nil, fmt.Errorf("writing impact parameters: %w", err)
	}

	local := []int{openCLWorkGroupSize}
	groups := (numRays + openCLWorkGroupSize - 1) / openCLWorkGroupSize
	global := []int{groups * openCLWorkGroupSize}
	if _, err := t.queue.EnqueueNDRangeKernel(t.kernel, nil, global, local, nil); err != nil {
		return nil, fmt.Errorf("enqueueing trace kernel: %w", err)
	}

	out := newTraceResult(numRays)
	if _, err := t.queue.EnqueueReadBufferFloat32(t.phiBuf, false, 0, out.Phi, nil); err != nil {
		return nil, fmt.Errorf("reading phi results: %w", err)
	}
	if _, err := t.queue.EnqueueReadBufferFloat32(t.rBuf, false, 0, out.R, nil); err != nil {
		return nil, fmt.Errorf("reading radius results: %w", err)
	}
	statusBytes := numRays * int(unsafe.Sizeof(int32(0)))
	// Blocking read doubles as the single host/device barrier.
	if _, err := t.queue.EnqueueReadBuffer(t.statusBuf, true, 0, statusBytes, unsafe.Pointer(&out.Status[0]), nil); err != nil {
		return nil, fmt.Errorf("reading status results: %w", err)
	}
	return out, nil
}

func (t *openCLTracer) Close() {
	if t.statusBuf != nil {
		t.statusBuf.Release()
		t.statusBuf = nil
	}
	if t.rBuf != nil {
		t.rBuf.Release()
		t.rBuf = nil
	}
	if t.phiBuf != nil {
		t.phiBuf.Release()
		t.phiBuf = nil
	}
	if t.bBuf != nil {
		t.bBuf.Release()
		t.bBuf = nil
	}
	if t.kernel != nil {
		t.kernel.Release()
		t.kernel = nil
	}
	if t.program != nil {
		t.program.Release()
		t.program = nil
	}
	if t.queue != nil {
		t.queue.Release()
		t.queue = nil
	}
	if t.context != nil {
		t.context.Release()
		t.context = nil
	}
}

func (t *openCLTracer) DeviceName() string {
	return t.deviceName
}
