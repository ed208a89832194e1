// Package aggregates declares the write boundaries whose invariants must hold
// atomically, along with the error codes those writes report.
package aggregates
