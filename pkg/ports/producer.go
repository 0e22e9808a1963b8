package ports

import "github.com/aretw0/stepviz/pkg/domain"

// SequenceProducer materializes the full step sequence for a request.
// Implementations are pure: equal params yield equal sequences, which is what
// makes caching by Params.Key sound.
type SequenceProducer interface {
	Produce(params domain.Params) (*domain.Sequence, error)
}

// ProducerFunc adapts a function to SequenceProducer.
type ProducerFunc func(params domain.Params) (*domain.Sequence, error)

// Produce calls f.
func (f ProducerFunc) Produce(params domain.Params) (*domain.Sequence, error) {
	return f(params)
}
