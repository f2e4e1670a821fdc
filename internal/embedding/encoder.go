// Package embedding wraps a sentence-embedding model behind a batched,
// order-preserving encoder producing unit-normalized float32 vectors.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
)

// ErrZeroVector reports a model output that cannot be normalized.
var ErrZeroVector = errors.New("embedding: model returned a zero vector")

// Encoder partitions input into batches of at most batchSize, never
// reordering across or within batches. Every returned vector has unit
// Euclidean norm; a batch that cannot produce one vector per input fails
// as a whole.
type Encoder struct {
	client    embeddings.EmbedderClient
	batchSize int
	dim       int
}

func NewEncoder(client embeddings.EmbedderClient, batchSize, dim int) *Encoder {
	if batchSize <= 0 {
		batchSize = 128
	}
	return &Encoder{client: client, batchSize: batchSize, dim: dim}
}

// Dimension returns the vector dimension, 0 until the first batch fixes it.
func (e *Encoder) Dimension() int { return e.dim }

// EncodeBatch embeds texts in order. Row i of the result corresponds to
// texts[i].
func (e *Encoder) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		vecs, err := e.client.CreateEmbedding(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("embedding: batch %d-%d: %w", start, end, err)
		}
		if len(vecs) != len(batch) {
			return nil, fmt.Errorf("embedding: batch %d-%d: model returned %d vectors for %d inputs", start, end, len(vecs), len(batch))
		}
		for i, v := range vecs {
			if e.dim == 0 {
				e.dim = len(v)
			}
			if len(v) != e.dim {
				return nil, fmt.Errorf("embedding: batch %d-%d: vector %d has dimension %d, want %d", start, end, i, len(v), e.dim)
			}
			if err := Normalize(v); err != nil {
				return nil, fmt.Errorf("embedding: batch %d-%d: vector %d: %w", start, end, i, err)
			}
		}
		out = append(out, vecs...)

		log.Info().Int("encoded", end).Int("total", len(texts)).Msg("Embedded batch")
	}
	return out, nil
}

// EncodeQuery embeds a single string into the same vector space.
func (e *Encoder) EncodeQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EncodeBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// Normalize scales v to unit Euclidean norm in place.
func Normalize(v []float32) error {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return ErrZeroVector
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
	return nil
}
