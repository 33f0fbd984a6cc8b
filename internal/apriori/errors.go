package apriori

import "errors"

var (
	// ErrInvalidSupport is returned when MinSupport is outside (0, 1].
	ErrInvalidSupport = errors.New("apriori: min support must be in (0, 1]")

	// ErrInvalidMaxLen is returned for a negative MaxLen.
	ErrInvalidMaxLen = errors.New("apriori: max length must be >= 0")

	// ErrNilMatrix indicates Mine was called without an incidence matrix.
	ErrNilMatrix = errors.New("apriori: nil matrix")
)
