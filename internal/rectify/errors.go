package rectify

import "fmt"

// Typed errors returned by RectifyPage and its stages (spec §7: Error
// Handling table). Callers can type-switch on these to distinguish
// recoverable input problems from solver failures.

// InsufficientLinesError reports that too few text baselines survived
// detection and outlier removal to constrain the joint optimization.
type InsufficientLinesError struct {
	Found    int
	Required int
}

func (e *InsufficientLinesError) Error() string {
	return fmt.Sprintf("rectify: only %d usable text lines found, need at least %d", e.Found, e.Required)
}

// DegenerateVanishingPointError reports that the vanishing-point estimate
// did not converge to a usable point (e.g. parallel or near-parallel
// baselines).
type DegenerateVanishingPointError struct {
	Reason string
}

func (e *DegenerateVanishingPointError) Error() string {
	return fmt.Sprintf("rectify: degenerate vanishing point estimate: %s", e.Reason)
}

// EmptyMeshError reports that the computed world-frame bounding box was
// empty or inverted, so no rectification mesh could be built.
type EmptyMeshError struct{}

func (e *EmptyMeshError) Error() string { return "rectify: world-frame bounding box is empty" }

// RemapFailedError wraps a failure from the pluggable Image remapper
// collaborator (spec §6: External Interfaces).
type RemapFailedError struct {
	Cause error
}

func (e *RemapFailedError) Error() string { return fmt.Sprintf("rectify: remap failed: %v", e.Cause) }
func (e *RemapFailedError) Unwrap() error { return e.Cause }
