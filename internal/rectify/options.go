// Package rectify implements the joint camera-pose/surface optimization and
// top-level RectifyPage entry point (spec §4.6-4.7), following the
// teacher's Options/DefaultX()/WithY() builder pattern
// (internal/via/params.go: DefaultParams/WithDPI/WithHSV/WithSizeRange).
package rectify

import (
	"pagedewarp/internal/camera"
	"pagedewarp/internal/lm"
	"pagedewarp/internal/vanish"
)

// SurfaceDegree is D, the cylindrical surface polynomial's degree (spec
// §3: "a_m: degree-D polynomial, default D=7").
const SurfaceDegree = 7

// Options configures a RectifyPage run.
type Options struct {
	FocalLength    float64
	SurfaceDegree  int
	LM             lm.Options
	DebugDir       string  // when non-empty, the run's log is mirrored to rectify.log here; no debug images are written
	AspectOverride float64 // 0 means "use estimated/default aspect ratio"

	// TwoPass requests a second detection pass: after the first
	// rectification, baselines are re-detected on the corrected image and,
	// if enough lines survive, that image is rectified again around its own
	// center. RectifyPage itself does not read this field; cmd/dewarp's
	// secondPass acts on it.
	TwoPass bool

	// FineDewarp enables the optional post-process in internal/finedewarp.
	// Disabled by default, matching the original's disabled dewarp_fine.
	FineDewarp bool

	// RansacSeed seeds the vanishing-point column-edge RANSAC fit, so a run
	// can be reproduced exactly (spec §5: "RANSAC seeds must be
	// configurable to make tests reproducible").
	RansacSeed int64

	// NumLongitudes is the number of longitude lines sampled per
	// vanishing-point refinement pass (spec §4.4).
	NumLongitudes int

	// RefineIterations is the number of vanishing-point refinement passes
	// (spec §4.4).
	RefineIterations int

	// Ftol overrides the joint optimizer's relative-cost-drop convergence
	// tolerance (spec §4.6 default 1e-2) for this run; 0 leaves LM.Tolerance
	// unchanged.
	Ftol float64
}

// DefaultOptions returns the standard configuration (spec §6 defaults).
func DefaultOptions() Options {
	return Options{
		FocalLength:      camera.DefaultFocalLength,
		SurfaceDegree:    SurfaceDegree,
		LM:               lm.DefaultOptions(),
		RansacSeed:       0,
		NumLongitudes:    vanish.NumLongitudes,
		RefineIterations: vanish.RefineIterations,
		Ftol:             0.01,
	}
}

// WithFocalLength returns a copy of o with FocalLength set.
func (o Options) WithFocalLength(f float64) Options {
	o.FocalLength = f
	return o
}

// WithSurfaceDegree returns a copy of o with SurfaceDegree set.
func (o Options) WithSurfaceDegree(d int) Options {
	o.SurfaceDegree = d
	return o
}

// WithDebugDir returns a copy of o with DebugDir set, enabling the mirrored
// rectify.log there. No debug images are written.
func (o Options) WithDebugDir(dir string) Options {
	o.DebugDir = dir
	return o
}

// WithAspectOverride returns a copy of o that forces a fixed page aspect
// ratio instead of the estimated one (spec §9, Open Question: aspect
// ratio default-to-computed with override).
func (o Options) WithAspectOverride(ratio float64) Options {
	o.AspectOverride = ratio
	return o
}

// WithTwoPass returns a copy of o with TwoPass set.
func (o Options) WithTwoPass(enabled bool) Options {
	o.TwoPass = enabled
	return o
}

// WithFineDewarp returns a copy of o with FineDewarp set.
func (o Options) WithFineDewarp(enabled bool) Options {
	o.FineDewarp = enabled
	return o
}

// WithRansacSeed returns a copy of o with RansacSeed set.
func (o Options) WithRansacSeed(seed int64) Options {
	o.RansacSeed = seed
	return o
}

// WithNumLongitudes returns a copy of o with NumLongitudes set.
func (o Options) WithNumLongitudes(n int) Options {
	o.NumLongitudes = n
	return o
}

// WithRefineIterations returns a copy of o with RefineIterations set.
func (o Options) WithRefineIterations(n int) Options {
	o.RefineIterations = n
	return o
}

// WithFtol returns a copy of o with Ftol set.
func (o Options) WithFtol(tol float64) Options {
	o.Ftol = tol
	return o
}
