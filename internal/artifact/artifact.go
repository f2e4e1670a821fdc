// Package artifact serializes the passage/id/embedding triple to the flat
// on-disk layout consumed downstream: a newline-delimited UTF-8 text file,
// a raw little-endian uint64 array, and a raw little-endian float32 matrix
// in row-major order. No header, no length prefix, no checksum — consumers
// derive N from the text file and know D out of band.
package artifact

import (
	"fmt"
)

// Artifact is the joined triple of one dataset generation. Keeping the
// three sequences in a single value guards the positional-join invariant:
// row i of every output describes the same passage.
type Artifact struct {
	Passages []string
	IDs      []uint64
	Vectors  [][]float32
}

// Len returns the row count N.
func (a *Artifact) Len() int { return len(a.Passages) }

// Dimension returns the vector dimension D, 0 for an empty artifact.
func (a *Artifact) Dimension() int {
	if len(a.Vectors) == 0 {
		return 0
	}
	return len(a.Vectors[0])
}

// Validate checks equal cardinality and uniform vector dimension.
func (a *Artifact) Validate() error {
	if len(a.IDs) != len(a.Passages) || len(a.Vectors) != len(a.Passages) {
		return fmt.Errorf("artifact: cardinality mismatch: %d passages, %d ids, %d vectors",
			len(a.Passages), len(a.IDs), len(a.Vectors))
	}
	dim := a.Dimension()
	for i, v := range a.Vectors {
		if len(v) != dim {
			return fmt.Errorf("artifact: vector %d has dimension %d, want %d", i, len(v), dim)
		}
	}
	return nil
}
