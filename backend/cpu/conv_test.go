package cpu

import (
	"testing"

	"github.com/simon-perriard/fenwicks/tensor"
)

func TestConv2DIdentityKernel(t *testing.T) {
	b := New()
	input := tensor.New([]float32{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}, tensor.Shape{1, 1, 3, 3}, b)
	// 1x1 kernel that doubles its input.
	weight := tensor.New([]float32{2}, tensor.Shape{1, 1, 1, 1}, b)

	out := b.Conv2D(input, weight, nil, 1, 0)
	if !out.Shape().Equal(tensor.Shape{1, 1, 3, 3}) {
		t.Fatalf("shape: %v", out.Shape())
	}
	floatsNear(t, out.Data(), []float32{2, 4, 6, 8, 10, 12, 14, 16, 18}, 1e-6)
}

func TestConv2DSumKernel(t *testing.T) {
	b := New()
	input := tensor.New([]float32{
		1, 2,
		3, 4,
	}, tensor.Shape{1, 1, 2, 2}, b)
	// 2x2 all-ones kernel, valid padding → single sum.
	weight := tensor.New([]float32{1, 1, 1, 1}, tensor.Shape{1, 1, 2, 2}, b)

	out := b.Conv2D(input, weight, nil, 1, 0)
	if !out.Shape().Equal(tensor.Shape{1, 1, 1, 1}) {
		t.Fatalf("shape: %v", out.Shape())
	}
	floatsNear(t, out.Data(), []float32{10}, 1e-6)
}

func TestConv2DSamePaddingAndBias(t *testing.T) {
	b := New()
	input := tensor.New([]float32{
		1, 2,
		3, 4,
	}, tensor.Shape{1, 1, 2, 2}, b)
	weight := tensor.New([]float32{
		0, 0, 0,
		0, 1, 0,
		0, 0, 0,
	}, tensor.Shape{1, 1, 3, 3}, b)
	bias := tensor.New([]float32{100}, tensor.Shape{1}, b)

	// 3x3 identity kernel with padding 1 preserves spatial dims.
	out := b.Conv2D(input, weight, bias, 1, 1)
	if !out.Shape().Equal(tensor.Shape{1, 1, 2, 2}) {
		t.Fatalf("shape: %v", out.Shape())
	}
	floatsNear(t, out.Data(), []float32{101, 102, 103, 104}, 1e-6)
}

func TestConv2DMultiChannel(t *testing.T) {
	b := New()
	// Two input channels, one output channel summing both.
	input := tensor.New([]float32{
		1, 2, 3, 4, // channel 0
		10, 20, 30, 40, // channel 1
	}, tensor.Shape{1, 2, 2, 2}, b)
	weight := tensor.New([]float32{1, 1}, tensor.Shape{1, 2, 1, 1}, b)

	out := b.Conv2D(input, weight, nil, 1, 0)
	floatsNear(t, out.Data(), []float32{11, 22, 33, 44}, 1e-6)
}

func TestConv2DStride(t *testing.T) {
	b := New()
	input := tensor.New([]float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}, tensor.Shape{1, 1, 4, 4}, b)
	weight := tensor.New([]float32{1}, tensor.Shape{1, 1, 1, 1}, b)

	out := b.Conv2D(input, weight, nil, 2, 0)
	if !out.Shape().Equal(tensor.Shape{1, 1, 2, 2}) {
		t.Fatalf("shape: %v", out.Shape())
	}
	floatsNear(t, out.Data(), []float32{1, 3, 9, 11}, 1e-6)
}

func TestMaxPool2D(t *testing.T) {
	b := New()
	input := tensor.New([]float32{
		1, 2, 5, 6,
		3, 4, 7, 8,
		13, 14, 9, 10,
		15, 16, 11, 12,
	}, tensor.Shape{1, 1, 4, 4}, b)

	out := b.MaxPool2D(input, 2, 0) // stride defaults to kernel
	if !out.Shape().Equal(tensor.Shape{1, 1, 2, 2}) {
		t.Fatalf("shape: %v", out.Shape())
	}
	floatsNear(t, out.Data(), []float32{4, 8, 16, 12}, 0)
}

func TestMaxPool2DStrideOne(t *testing.T) {
	b := New()
	input := tensor.New([]float32{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}, tensor.Shape{1, 1, 3, 3}, b)

	out := b.MaxPool2D(input, 2, 1)
	if !out.Shape().Equal(tensor.Shape{1, 1, 2, 2}) {
		t.Fatalf("shape: %v", out.Shape())
	}
	floatsNear(t, out.Data(), []float32{5, 6, 8, 9}, 0)
}
