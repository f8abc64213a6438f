// Package domain contains the core health types shared across layers.
// It holds the status severity scale, per-component verdicts, the aggregate
// system report, and sentinel errors. The package has no dependencies beyond
// the standard library so every adapter can import it.
package domain
