package ports

import (
	"taxoscreen/domain/abundance"
)

// MatrixReader loads an abundance table and its sample metadata from
// tabular files with consistent sample identifiers.
type MatrixReader interface {
	// ReadMatrix parses a feature-by-sample abundance table
	ReadMatrix(path string) (*abundance.AbundanceMatrix, error)

	// ReadMetadata parses per-sample metadata aligned to the matrix columns
	ReadMetadata(path string, matrix *abundance.AbundanceMatrix) (*abundance.SampleMetadata, error)
}
