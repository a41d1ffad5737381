// Package buildspec defines the normalized internal representation of a
// build specification and the validation that produces it.
//
// Normalize is the single entry point. It is pure and idempotent: it either
// returns a fully validated BuildSpec or a ValidationError, and it never
// mutates stored state on failure. Everything downstream (code generation,
// assembly, target config) trusts a BuildSpec that has passed Normalize and
// performs no further spec validation of its own.
package buildspec
