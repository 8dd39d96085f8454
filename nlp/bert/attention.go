package bert

import (
	"math"

	"github.com/simon-perriard/fenwicks/layers"
	"github.com/simon-perriard/fenwicks/tensor"
)

// selfAttention is multi-head scaled dot-product attention over a
// flattened [batch*seq, hidden] input.
type selfAttention struct {
	query    *layers.Dense
	key      *layers.Dense
	value    *layers.Dense
	dropout  *layers.Dropout
	numHeads int
	headSize int
}

func newSelfAttention(cfg Config, b tensor.Backend) *selfAttention {
	proj := func() *layers.Dense {
		return layers.NewDenseWith(layers.DenseConfig{
			In:   cfg.HiddenSize,
			Out:  cfg.HiddenSize,
			Init: layers.TruncatedNormal(cfg.InitializerRange),
		}, b)
	}
	return &selfAttention{
		query:    proj(),
		key:      proj(),
		value:    proj(),
		dropout:  layers.NewDropout(cfg.AttentionProbsDropoutProb),
		numHeads: cfg.NumAttentionHeads,
		headSize: cfg.HeadSize(),
	}
}

// forward attends over the sequence. bias is the [batch, 1, seq, seq]
// additive score bias. It returns the [batch*seq, hidden] context and
// the [batch, heads, seq, seq] attention probabilities.
func (a *selfAttention) forward(x, bias *tensor.Tensor, batch, seq int) (*tensor.Tensor, *tensor.Tensor) {
	q := a.splitHeads(a.query.Forward(x), batch, seq)
	k := a.splitHeads(a.key.Forward(x), batch, seq)
	v := a.splitHeads(a.value.Forward(x), batch, seq)

	scores := q.BatchMatMul(k.Transpose(0, 1, 3, 2))
	scores = scores.MulScalar(float32(1 / math.Sqrt(float64(a.headSize))))
	scores = scores.Add(bias)

	probs := a.dropout.Forward(scores.Softmax(-1))

	ctx := probs.BatchMatMul(v).Transpose(0, 2, 1, 3)
	return ctx.Reshape(batch*seq, a.numHeads*a.headSize), probs
}

// splitHeads reshapes a [batch*seq, hidden] projection to
// [batch, heads, seq, headSize].
func (a *selfAttention) splitHeads(x *tensor.Tensor, batch, seq int) *tensor.Tensor {
	return x.Reshape(batch, seq, a.numHeads, a.headSize).Transpose(0, 2, 1, 3)
}

func (a *selfAttention) parameters() []*layers.Parameter {
	params := a.query.Parameters()
	params = append(params, a.key.Parameters()...)
	return append(params, a.value.Parameters()...)
}

func (a *selfAttention) stateDict() map[string]*tensor.Tensor {
	sd := make(map[string]*tensor.Tensor)
	for prefix, d := range map[string]*layers.Dense{"query": a.query, "key": a.key, "value": a.value} {
		for name, t := range d.StateDict() {
			sd[prefix+"."+name] = t
		}
	}
	return sd
}

func (a *selfAttention) loadStateDict(sd map[string]*tensor.Tensor) error {
	for prefix, d := range map[string]*layers.Dense{"query": a.query, "key": a.key, "value": a.value} {
		if err := d.LoadStateDict(subDict(sd, prefix+".")); err != nil {
			return err
		}
	}
	return nil
}
