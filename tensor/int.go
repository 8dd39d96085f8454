package tensor

import "fmt"

// IntTensor is a dense int32 tensor in row-major layout. It carries
// token ids, segment-type ids, and validity masks; it has no backend
// because no arithmetic is defined on it beyond lookups and casts.
type IntTensor struct {
	data  []int32
	shape Shape
}

// NewInt wraps data in an integer tensor of the given shape. The
// slice is used directly, not copied. Panics if the data length does
// not match the shape.
func NewInt(data []int32, shape Shape) *IntTensor {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("tensor.NewInt: %v", err))
	}
	if len(data) != shape.NumElements() {
		panic(fmt.Sprintf("tensor.NewInt: data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements()))
	}
	return &IntTensor{data: data, shape: shape}
}

// IntZeros creates a zero-filled integer tensor.
func IntZeros(shape Shape) *IntTensor {
	return NewInt(make([]int32, shape.NumElements()), shape)
}

// IntFull creates an integer tensor filled with value.
func IntFull(shape Shape, value int32) *IntTensor {
	data := make([]int32, shape.NumElements())
	for i := range data {
		data[i] = value
	}
	return NewInt(data, shape)
}

// Shape returns the tensor's shape. Callers must not modify it.
func (t *IntTensor) Shape() Shape { return t.shape }

// Data returns the underlying buffer.
func (t *IntTensor) Data() []int32 { return t.data }

// Rank returns the number of dimensions.
func (t *IntTensor) Rank() int { return len(t.shape) }

// NumElements returns the total element count.
func (t *IntTensor) NumElements() int { return len(t.data) }

// At returns the element at the given multi-dimensional index.
func (t *IntTensor) At(indices ...int) int32 {
	if len(indices) != len(t.shape) {
		panic(fmt.Sprintf("IntTensor.At: expected %d indices for shape %v, got %d",
			len(t.shape), t.shape, len(indices)))
	}
	offset := 0
	strides := t.shape.ComputeStrides()
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			panic(fmt.Sprintf("IntTensor.At: index %d out of range for dimension %d (size %d)",
				idx, i, t.shape[i]))
		}
		offset += idx * strides[i]
	}
	return t.data[offset]
}

// Float casts the tensor to float32 on the given backend.
func (t *IntTensor) Float(b Backend) *Tensor {
	data := make([]float32, len(t.data))
	for i, v := range t.data {
		data[i] = float32(v)
	}
	return New(data, t.shape.Clone(), b)
}

func (t *IntTensor) String() string {
	return fmt.Sprintf("IntTensor(shape=%v)", t.shape)
}
