package bert

import (
	"github.com/simon-perriard/fenwicks/layers"
	"github.com/simon-perriard/fenwicks/tensor"
)

// activation resolves a config activation name to a layer.
func activation(name string) (layers.Module, error) {
	switch name {
	case "gelu":
		return layers.NewGELU(), nil
	case "relu":
		return layers.NewReLU(), nil
	case "tanh":
		return layers.NewTanh(), nil
	}
	return nil, &ConfigError{Field: "hidden_act", Reason: "unknown activation " + name}
}

// encoderLayer is one post-norm transformer block: self-attention with
// a residual connection and layer norm, then a position-wise
// feed-forward network with its own residual and norm. Both sublayers
// operate on the flattened [batch*seq, hidden] form.
type encoderLayer struct {
	att     *selfAttention
	attOut  *layers.Dense
	attNorm *layers.LayerNorm
	inter   *layers.Dense
	act     layers.Module
	out     *layers.Dense
	outNorm *layers.LayerNorm
	dropout *layers.Dropout
}

func newEncoderLayer(cfg Config, b tensor.Backend) (*encoderLayer, error) {
	act, err := activation(cfg.HiddenAct)
	if err != nil {
		return nil, err
	}
	init := layers.TruncatedNormal(cfg.InitializerRange)
	dense := func(in, out int) *layers.Dense {
		return layers.NewDenseWith(layers.DenseConfig{In: in, Out: out, Init: init}, b)
	}
	return &encoderLayer{
		att:     newSelfAttention(cfg, b),
		attOut:  dense(cfg.HiddenSize, cfg.HiddenSize),
		attNorm: layers.NewLayerNormEps(cfg.HiddenSize, layerNormEps, b),
		inter:   dense(cfg.HiddenSize, cfg.IntermediateSize),
		act:     act,
		out:     dense(cfg.IntermediateSize, cfg.HiddenSize),
		outNorm: layers.NewLayerNormEps(cfg.HiddenSize, layerNormEps, b),
		dropout: layers.NewDropout(cfg.HiddenDropoutProb),
	}, nil
}

// forward runs the block, returning the [batch*seq, hidden] output and
// the attention probabilities.
func (l *encoderLayer) forward(x, bias *tensor.Tensor, batch, seq int) (*tensor.Tensor, *tensor.Tensor) {
	ctx, probs := l.att.forward(x, bias, batch, seq)
	att := l.dropout.Forward(l.attOut.Forward(ctx))
	att = l.attNorm.Forward(att.Add(x))

	inter := l.act.Forward(l.inter.Forward(att))
	out := l.dropout.Forward(l.out.Forward(inter))
	out = l.outNorm.Forward(out.Add(att))
	return out, probs
}

func (l *encoderLayer) parameters() []*layers.Parameter {
	params := l.att.parameters()
	params = append(params, l.attOut.Parameters()...)
	params = append(params, l.attNorm.Parameters()...)
	params = append(params, l.inter.Parameters()...)
	params = append(params, l.out.Parameters()...)
	return append(params, l.outNorm.Parameters()...)
}

func (l *encoderLayer) setTraining(training bool) {
	l.att.dropout.SetTraining(training)
	l.dropout.SetTraining(training)
}

func (l *encoderLayer) stateDict() map[string]*tensor.Tensor {
	sd := make(map[string]*tensor.Tensor)
	add := func(prefix string, src map[string]*tensor.Tensor) {
		for name, t := range src {
			sd[prefix+name] = t
		}
	}
	add("attention.self.", l.att.stateDict())
	add("attention.output.dense.", l.attOut.StateDict())
	add("attention.output.norm.", l.attNorm.StateDict())
	add("intermediate.dense.", l.inter.StateDict())
	add("output.dense.", l.out.StateDict())
	add("output.norm.", l.outNorm.StateDict())
	return sd
}

func (l *encoderLayer) loadStateDict(sd map[string]*tensor.Tensor) error {
	if err := l.att.loadStateDict(subDict(sd, "attention.self.")); err != nil {
		return err
	}
	if err := l.attOut.LoadStateDict(subDict(sd, "attention.output.dense.")); err != nil {
		return err
	}
	if err := l.attNorm.LoadStateDict(subDict(sd, "attention.output.norm.")); err != nil {
		return err
	}
	if err := l.inter.LoadStateDict(subDict(sd, "intermediate.dense.")); err != nil {
		return err
	}
	if err := l.out.LoadStateDict(subDict(sd, "output.dense.")); err != nil {
		return err
	}
	return l.outNorm.LoadStateDict(subDict(sd, "output.norm."))
}
