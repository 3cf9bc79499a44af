package port

import "errors"

// Sentinel errors used across ports.
var (
	// ErrLengthMismatch reports a catalog snapshot whose record and vector
	// counts differ.
	ErrLengthMismatch = errors.New("record and vector counts differ")

	// ErrDimensionMismatch reports a vector whose dimension does not match
	// the index.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrInvalidVector reports a vector containing NaN or Inf components.
	ErrInvalidVector = errors.New("vector contains non-finite components")

	// ErrTitleNotFound reports a title absent from the catalog.
	ErrTitleNotFound = errors.New("title not found in catalog")

	// ErrClusterNotFound reports an unknown cluster id.
	ErrClusterNotFound = errors.New("cluster not found")

	// ErrTooManyClusters reports a requested cluster count larger than the
	// number of items.
	ErrTooManyClusters = errors.New("cluster count exceeds item count")

	// ErrCatalogNotFound reports a missing catalog file or table.
	ErrCatalogNotFound = errors.New("catalog data not found")
)
