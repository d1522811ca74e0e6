// Package safeconv holds checked integer conversions for the binding
// boundary, where signed counts cross into unsigned index parameters.
package safeconv

// MustIntToUint converts int to uint and panics on a negative input.
// Callers use it where a negative value would mean a bug, not bad data.
func MustIntToUint(v int) uint {
	if v < 0 {
		panic("safeconv: negative int to uint conversion")
	}

	return uint(v)
}
