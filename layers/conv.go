package layers

import (
	"fmt"

	"github.com/simon-perriard/fenwicks/tensor"
)

// Conv2DConfig configures a 2D convolution layer.
type Conv2DConfig struct {
	InChannels  int
	OutChannels int
	Kernel      int
	// Stride defaults to 1.
	Stride int
	// Padding is the number of zero rows and columns added on each
	// side. Kernel/2 keeps the spatial size for odd kernels at
	// stride 1.
	Padding int
	NoBias  bool
	// Init initializes the kernel. Defaults to GlorotUniform.
	Init Initializer
}

// Conv2D is a 2D convolution over [batch, channels, height, width]
// inputs. The kernel is stored [out, in, kh, kw].
type Conv2D struct {
	weight  *Parameter
	bias    *Parameter
	inC     int
	outC    int
	kernel  int
	stride  int
	padding int
}

// NewConv2D creates an unpadded stride-1 convolution with a bias and
// Glorot-uniform kernel initialization.
func NewConv2D(inChannels, outChannels, kernel int, b tensor.Backend) *Conv2D {
	return NewConv2DWith(Conv2DConfig{
		InChannels:  inChannels,
		OutChannels: outChannels,
		Kernel:      kernel,
	}, b)
}

// NewConv2DWith creates a convolution layer from a config.
func NewConv2DWith(cfg Conv2DConfig, b tensor.Backend) *Conv2D {
	if cfg.InChannels <= 0 || cfg.OutChannels <= 0 || cfg.Kernel <= 0 {
		panic(fmt.Sprintf("layers: NewConv2D: invalid config in=%d out=%d kernel=%d",
			cfg.InChannels, cfg.OutChannels, cfg.Kernel))
	}
	stride := cfg.Stride
	if stride == 0 {
		stride = 1
	}
	init := cfg.Init
	if init == nil {
		init = GlorotUniform()
	}
	shape := tensor.Shape{cfg.OutChannels, cfg.InChannels, cfg.Kernel, cfg.Kernel}
	c := &Conv2D{
		weight:  NewParameter("weight", init(shape, b)),
		inC:     cfg.InChannels,
		outC:    cfg.OutChannels,
		kernel:  cfg.Kernel,
		stride:  stride,
		padding: cfg.Padding,
	}
	if !cfg.NoBias {
		c.bias = NewParameter("bias", tensor.Zeros(tensor.Shape{cfg.OutChannels}, b))
	}
	return c
}

func (c *Conv2D) Forward(x *tensor.Tensor) *tensor.Tensor {
	if x.Rank() != 4 || x.Shape()[1] != c.inC {
		panic(fmt.Sprintf("Conv2D.Forward: expected input shape [batch, %d, h, w], got %v", c.inC, x.Shape()))
	}
	var bias *tensor.Tensor
	if c.bias != nil {
		bias = c.bias.Tensor()
	}
	return x.Conv2D(c.weight.Tensor(), bias, c.stride, c.padding)
}

// Parameters returns the kernel and, when present, the bias.
func (c *Conv2D) Parameters() []*Parameter {
	if c.bias == nil {
		return []*Parameter{c.weight}
	}
	return []*Parameter{c.weight, c.bias}
}

// StateDict exports the layer parameters keyed by name.
func (c *Conv2D) StateDict() map[string]*tensor.Tensor {
	sd := map[string]*tensor.Tensor{"weight": c.weight.Tensor()}
	if c.bias != nil {
		sd["bias"] = c.bias.Tensor()
	}
	return sd
}

// LoadStateDict restores the layer parameters from a state dict.
func (c *Conv2D) LoadStateDict(sd map[string]*tensor.Tensor) error {
	for _, p := range c.Parameters() {
		t, ok := sd[p.Name()]
		if !ok {
			return fmt.Errorf("conv2d: missing key %q", p.Name())
		}
		if err := p.Set(t); err != nil {
			return fmt.Errorf("conv2d: %w", err)
		}
	}
	return nil
}
