package tensor

import "fmt"

// ShapeError reports a mismatch between the shape a caller supplied
// and the shape an operation requires. It names the offending tensor
// so multi-input call sites stay debuggable.
type ShapeError struct {
	// Tensor is the caller-facing name of the tensor, e.g. "input_ids".
	Tensor string
	// Want describes the expected rank or shape.
	Want string
	// Got describes the actual rank or shape.
	Got string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("shape mismatch for %s: want %s, got %s", e.Tensor, e.Want, e.Got)
}

// NewShapeError builds a ShapeError for the named tensor.
func NewShapeError(name, want, got string) *ShapeError {
	return &ShapeError{Tensor: name, Want: want, Got: got}
}
