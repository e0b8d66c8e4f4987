// Package clock provides a tiny time abstraction.
//
// Derivation timings are measured through Clocker so tests can assert recorded
// durations without sleeping.
package clock
