package layers

import "github.com/simon-perriard/fenwicks/tensor"

// CheckModel builds a model and runs a single [1, c, h, w] random
// input through it, returning the output. Shape mistakes in the model
// definition surface as panics here instead of deep inside a longer
// run.
func CheckModel(build func() Module, c, h, w int, b tensor.Backend) *tensor.Tensor {
	model := build()
	return model.Forward(tensor.Rand(tensor.Shape{1, c, h, w}, b))
}
