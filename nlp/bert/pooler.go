package bert

import (
	"github.com/simon-perriard/fenwicks/layers"
	"github.com/simon-perriard/fenwicks/tensor"
)

// pooler condenses a sequence to a fixed-size vector by projecting the
// first token, by convention [CLS], through a tanh-activated dense
// layer.
type pooler struct {
	dense *layers.Dense
	act   *layers.Tanh
}

func newPooler(cfg Config, b tensor.Backend) *pooler {
	return &pooler{
		dense: layers.NewDenseWith(layers.DenseConfig{
			In:   cfg.HiddenSize,
			Out:  cfg.HiddenSize,
			Init: layers.TruncatedNormal(cfg.InitializerRange),
		}, b),
		act: layers.NewTanh(),
	}
}

// forward maps [batch, seq, hidden] to [batch, hidden].
func (p *pooler) forward(seq *tensor.Tensor) *tensor.Tensor {
	batch, hidden := seq.Shape()[0], seq.Shape()[2]
	first := seq.Slice(1, 0, 1).Reshape(batch, hidden)
	return p.act.Forward(p.dense.Forward(first))
}

func (p *pooler) parameters() []*layers.Parameter {
	return p.dense.Parameters()
}

func (p *pooler) stateDict() map[string]*tensor.Tensor {
	sd := make(map[string]*tensor.Tensor)
	for name, t := range p.dense.StateDict() {
		sd["dense."+name] = t
	}
	return sd
}

func (p *pooler) loadStateDict(sd map[string]*tensor.Tensor) error {
	return p.dense.LoadStateDict(subDict(sd, "dense."))
}
