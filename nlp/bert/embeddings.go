package bert

import (
	"fmt"

	"github.com/simon-perriard/fenwicks/layers"
	"github.com/simon-perriard/fenwicks/tensor"
)

// layerNormEps is the epsilon BERT checkpoints were trained with.
const layerNormEps = 1e-12

// embeddings sums word, segment, and position embeddings, then
// normalizes the result.
type embeddings struct {
	word      *layers.Parameter
	tokenType *layers.Parameter
	position  *layers.Parameter
	norm      *layers.LayerNorm
	dropout   *layers.Dropout
	hidden    int
}

func newEmbeddings(cfg Config, b tensor.Backend) *embeddings {
	init := layers.TruncatedNormal(cfg.InitializerRange)
	return &embeddings{
		word:      layers.NewParameter("word_embeddings", init(tensor.Shape{cfg.VocabSize, cfg.HiddenSize}, b)),
		tokenType: layers.NewParameter("token_type_embeddings", init(tensor.Shape{cfg.TypeVocabSize, cfg.HiddenSize}, b)),
		position:  layers.NewParameter("position_embeddings", init(tensor.Shape{cfg.MaxPositionEmbeddings, cfg.HiddenSize}, b)),
		norm:      layers.NewLayerNormEps(cfg.HiddenSize, layerNormEps, b),
		dropout:   layers.NewDropout(cfg.HiddenDropoutProb),
		hidden:    cfg.HiddenSize,
	}
}

// forward maps [batch, seq] token and segment ids to [batch, seq,
// hidden] embeddings. Position embeddings are the first seq rows of
// the position table, shared across the batch.
func (e *embeddings) forward(inputIDs, tokenTypeIDs *tensor.IntTensor) *tensor.Tensor {
	batch, seq := inputIDs.Shape()[0], inputIDs.Shape()[1]

	x := e.word.Tensor().Gather(inputIDs)
	x = x.Add(e.tokenType.Tensor().Gather(tokenTypeIDs))
	x3 := x.Reshape(batch, seq, e.hidden)

	pos := e.position.Tensor().Slice(0, 0, seq).Reshape(1, seq, e.hidden)
	x3 = x3.Add(pos)

	return e.dropout.Forward(e.norm.Forward(x3))
}

func (e *embeddings) parameters() []*layers.Parameter {
	params := []*layers.Parameter{e.word, e.tokenType, e.position}
	return append(params, e.norm.Parameters()...)
}

func (e *embeddings) stateDict() map[string]*tensor.Tensor {
	sd := map[string]*tensor.Tensor{
		"word_embeddings":       e.word.Tensor(),
		"token_type_embeddings": e.tokenType.Tensor(),
		"position_embeddings":   e.position.Tensor(),
	}
	for name, t := range e.norm.StateDict() {
		sd["norm."+name] = t
	}
	return sd
}

func (e *embeddings) loadStateDict(sd map[string]*tensor.Tensor) error {
	for _, p := range []*layers.Parameter{e.word, e.tokenType, e.position} {
		t, ok := sd[p.Name()]
		if !ok {
			return fmt.Errorf("embeddings: missing key %q", p.Name())
		}
		if err := p.Set(t); err != nil {
			return fmt.Errorf("embeddings: %w", err)
		}
	}
	if err := e.norm.LoadStateDict(subDict(sd, "norm.")); err != nil {
		return fmt.Errorf("embeddings: %w", err)
	}
	return nil
}
