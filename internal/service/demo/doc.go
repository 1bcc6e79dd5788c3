// Package demo runs a coordinator locally against a simulated action and
// logs how its signals evolve over one press.
package demo
