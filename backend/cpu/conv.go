package cpu

import (
	"fmt"
	"math"

	"github.com/simon-perriard/fenwicks/internal/parallel"
	"github.com/simon-perriard/fenwicks/tensor"
)

// Conv2D applies a 2D convolution in NCHW layout via im2col + GEMM.
// input [n, inC, h, w], weight [outC, inC, kh, kw], bias [outC] or nil.
func (bk *Backend) Conv2D(input, weight, bias *tensor.Tensor, stride, padding int) *tensor.Tensor {
	if input.Rank() != 4 || weight.Rank() != 4 {
		panic(fmt.Sprintf("cpu.Conv2D: expected rank-4 input and weight, got %v and %v",
			input.Shape(), weight.Shape()))
	}
	if stride < 1 {
		panic(fmt.Sprintf("cpu.Conv2D: stride must be >= 1, got %d", stride))
	}
	if padding < 0 {
		panic(fmt.Sprintf("cpu.Conv2D: padding must be >= 0, got %d", padding))
	}

	n, inC, h, w := input.Shape()[0], input.Shape()[1], input.Shape()[2], input.Shape()[3]
	outC, kh, kw := weight.Shape()[0], weight.Shape()[2], weight.Shape()[3]
	if weight.Shape()[1] != inC {
		panic(fmt.Sprintf("cpu.Conv2D: weight expects %d input channels, input has %d",
			weight.Shape()[1], inC))
	}
	if bias != nil && !bias.Shape().Equal(tensor.Shape{outC}) {
		panic(fmt.Sprintf("cpu.Conv2D: bias shape %v does not match %d output channels",
			bias.Shape(), outC))
	}

	outH := (h+2*padding-kh)/stride + 1
	outW := (w+2*padding-kw)/stride + 1
	if outH < 1 || outW < 1 {
		panic(fmt.Sprintf("cpu.Conv2D: kernel %dx%d with stride %d and padding %d does not fit input %dx%d",
			kh, kw, stride, padding, h, w))
	}

	colRows := inC * kh * kw
	colCols := outH * outW
	id := input.Data()
	// The weight buffer doubles as the [outC, inC*kh*kw] GEMM operand;
	// NCHW keeps it contiguous in exactly that order.
	wd := weight.Data()
	out := make([]float32, n*outC*colCols)

	parallel.For(n, func(b int) {
		col := make([]float32, colRows*colCols)
		img := id[b*inC*h*w : (b+1)*inC*h*w]
		for c := 0; c < inC; c++ {
			for ky := 0; ky < kh; ky++ {
				for kx := 0; kx < kw; kx++ {
					row := (c*kh+ky)*kw + kx
					for oy := 0; oy < outH; oy++ {
						iy := oy*stride - padding + ky
						if iy < 0 || iy >= h {
							continue
						}
						for ox := 0; ox < outW; ox++ {
							ix := ox*stride - padding + kx
							if ix < 0 || ix >= w {
								continue
							}
							col[row*colCols+oy*outW+ox] = img[(c*h+iy)*w+ix]
						}
					}
				}
			}
		}

		res := out[b*outC*colCols : (b+1)*outC*colCols]
		gemm(outC, colRows, colCols, wd, col, res)

		if bias != nil {
			bd := bias.Data()
			for c := 0; c < outC; c++ {
				for i := 0; i < colCols; i++ {
					res[c*colCols+i] += bd[c]
				}
			}
		}
	}, bk.batchConfig())

	return tensor.New(out, tensor.Shape{n, outC, outH, outW}, bk)
}

// MaxPool2D applies max pooling in NCHW layout with no padding.
// A stride of 0 defaults to the kernel size.
func (bk *Backend) MaxPool2D(input *tensor.Tensor, kernel, stride int) *tensor.Tensor {
	if input.Rank() != 4 {
		panic(fmt.Sprintf("cpu.MaxPool2D: expected rank-4 input, got %v", input.Shape()))
	}
	if kernel < 1 {
		panic(fmt.Sprintf("cpu.MaxPool2D: kernel must be >= 1, got %d", kernel))
	}
	if stride == 0 {
		stride = kernel
	}
	if stride < 1 {
		panic(fmt.Sprintf("cpu.MaxPool2D: stride must be >= 1, got %d", stride))
	}

	n, c, h, w := input.Shape()[0], input.Shape()[1], input.Shape()[2], input.Shape()[3]
	outH := (h-kernel)/stride + 1
	outW := (w-kernel)/stride + 1
	if outH < 1 || outW < 1 {
		panic(fmt.Sprintf("cpu.MaxPool2D: kernel %d with stride %d does not fit input %dx%d",
			kernel, stride, h, w))
	}

	id := input.Data()
	out := make([]float32, n*c*outH*outW)
	parallel.ForBatch(n, c, func(b, ch int) {
		img := id[(b*c+ch)*h*w : (b*c+ch+1)*h*w]
		res := out[(b*c+ch)*outH*outW : (b*c+ch+1)*outH*outW]
		for oy := 0; oy < outH; oy++ {
			for ox := 0; ox < outW; ox++ {
				maxVal := float32(math.Inf(-1))
				for ky := 0; ky < kernel; ky++ {
					iy := oy*stride + ky
					for kx := 0; kx < kernel; kx++ {
						if v := img[iy*w+ox*stride+kx]; v > maxVal {
							maxVal = v
						}
					}
				}
				res[oy*outW+ox] = maxVal
			}
		}
	}, bk.batchConfig())

	return tensor.New(out, tensor.Shape{n, c, outH, outW}, bk)
}
