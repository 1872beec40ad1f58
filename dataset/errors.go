package dataset

import "errors"

// Sentinel errors for frame construction and transformation.
var (
	// ErrEmptyInput indicates a delimited source without a header row.
	ErrEmptyInput = errors.New("dataset: no columns to parse from input")

	// ErrColumnNotFound indicates a reference to a column the frame lacks.
	ErrColumnNotFound = errors.New("dataset: column not found")

	// ErrDuplicateColumn indicates two columns with the same name.
	ErrDuplicateColumn = errors.New("dataset: duplicate column")

	// ErrShapeMismatch indicates columns or values of inconsistent length.
	ErrShapeMismatch = errors.New("dataset: shape mismatch")

	// ErrNotNumeric indicates a numeric operation on a non-numeric column.
	ErrNotNumeric = errors.New("dataset: column is not numeric")

	// ErrNilFrame indicates an operation on a nil frame.
	ErrNilFrame = errors.New("dataset: nil frame")

	// ErrUnknownAggregation indicates an unsupported group aggregation.
	ErrUnknownAggregation = errors.New("dataset: unknown aggregation")
)
