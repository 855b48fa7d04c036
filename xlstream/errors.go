package xlstream

import "fmt"

// XLSXError represents an error that occurred while reading a spreadsheet
// document.
type XLSXError struct {
	Message string
}

func (e *XLSXError) Error() string {
	return e.Message
}

// NewXLSXError creates a new XLSXError with the given message.
func NewXLSXError(format string, args ...interface{}) *XLSXError {
	return &XLSXError{Message: fmt.Sprintf(format, args...)}
}

// OutOfRangeError indicates a column index or letter string outside the
// addressable range A..XFD, or input that is not a column at all.
type OutOfRangeError struct {
	XLSXError
}

// NewOutOfRangeError creates a new OutOfRangeError with the given message.
func NewOutOfRangeError(format string, args ...interface{}) *OutOfRangeError {
	return &OutOfRangeError{XLSXError{Message: fmt.Sprintf(format, args...)}}
}

// AmbiguousRefError indicates a cell reference whose numeric suffix does
// not match the row it appears in. The reference cannot be trusted, so the
// traversal is aborted rather than guessing a column.
type AmbiguousRefError struct {
	XLSXError
}

// NewAmbiguousRefError creates a new AmbiguousRefError with the given message.
func NewAmbiguousRefError(format string, args ...interface{}) *AmbiguousRefError {
	return &AmbiguousRefError{XLSXError{Message: fmt.Sprintf(format, args...)}}
}
