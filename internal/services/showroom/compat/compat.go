// Package compat implements the one-shot compatibility check that gates
// whether an uploaded product becomes available to end users.
package compat

// CheckInput describes the observed state of a product's model asset.
type CheckInput struct {
	HasModelFile    bool  // a model file reference was supplied at upload
	ModelFileExists bool  // the reference resolves to a stored asset
	ModelFileSize   int64 // size of the resolved asset in bytes
}

// Result is the outcome of a compatibility check.
type Result struct {
	OK     bool
	Reason string // human-readable failure reason, empty on success
}

// Failure reasons, stable across the API surface.
const (
	ReasonNoModelFile    = "no model file provided"
	ReasonModelNotFound  = "model file not found"
	ReasonModelFileEmpty = "model file is empty"
)

// Check evaluates the compatibility rules in order; the first failure wins.
// It is pure: recording the verified/failed product status is the caller's
// responsibility, and the check is never re-run for the same upload.
func Check(input CheckInput) Result {
	if !input.HasModelFile {
		return Result{Reason: ReasonNoModelFile}
	}
	if !input.ModelFileExists {
		return Result{Reason: ReasonModelNotFound}
	}
	if input.ModelFileSize == 0 {
		return Result{Reason: ReasonModelFileEmpty}
	}
	return Result{OK: true}
}
