package layers

import (
	"fmt"

	"github.com/simon-perriard/fenwicks/tensor"
)

// MaxPool2D takes the maximum over non-overlapping (or strided)
// spatial windows of a [batch, c, h, w] input.
type MaxPool2D struct {
	kernel int
	stride int
}

// NewMaxPool2D creates a max pooling layer. A stride of 0 defaults to
// the kernel size.
func NewMaxPool2D(kernel, stride int) *MaxPool2D {
	if kernel <= 0 {
		panic(fmt.Sprintf("layers: NewMaxPool2D: invalid kernel %d", kernel))
	}
	return &MaxPool2D{kernel: kernel, stride: stride}
}

func (p *MaxPool2D) Forward(x *tensor.Tensor) *tensor.Tensor {
	return x.MaxPool2D(p.kernel, p.stride)
}

func (p *MaxPool2D) Parameters() []*Parameter { return nil }

// GlobalMaxPool2D reduces [batch, c, h, w] to [batch, c] by taking the
// spatial maximum per channel.
type GlobalMaxPool2D struct{}

// NewGlobalMaxPool2D creates a global max pooling layer.
func NewGlobalMaxPool2D() *GlobalMaxPool2D { return &GlobalMaxPool2D{} }

func (p *GlobalMaxPool2D) Forward(x *tensor.Tensor) *tensor.Tensor {
	if x.Rank() != 4 {
		panic(fmt.Sprintf("GlobalMaxPool2D.Forward: expected rank 4 input, got shape %v", x.Shape()))
	}
	return x.MaxDim(3, false).MaxDim(2, false)
}

func (p *GlobalMaxPool2D) Parameters() []*Parameter { return nil }

// GlobalAvgPool2D reduces [batch, c, h, w] to [batch, c] by averaging
// per channel.
type GlobalAvgPool2D struct{}

// NewGlobalAvgPool2D creates a global average pooling layer.
func NewGlobalAvgPool2D() *GlobalAvgPool2D { return &GlobalAvgPool2D{} }

func (p *GlobalAvgPool2D) Forward(x *tensor.Tensor) *tensor.Tensor {
	if x.Rank() != 4 {
		panic(fmt.Sprintf("GlobalAvgPool2D.Forward: expected rank 4 input, got shape %v", x.Shape()))
	}
	return x.MeanDim(3, false).MeanDim(2, false)
}

func (p *GlobalAvgPool2D) Parameters() []*Parameter { return nil }

// NewGlobalPools2D concatenates global max and global average pooling,
// reducing [batch, c, h, w] to [batch, 2c].
func NewGlobalPools2D() *Parallel {
	return NewParallel(NewGlobalMaxPool2D(), NewGlobalAvgPool2D())
}
