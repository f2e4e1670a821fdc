// Package pipeline runs one corpus-embedding generation: stream records,
// extract passages, stamp identifiers, embed in batches, and write the
// artifact. Single-threaded and single-pass; the stream is never exhausted
// beyond what the limit requires.
package pipeline

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"

	"corpus-embed/internal/artifact"
	"corpus-embed/internal/corpus"
	"corpus-embed/internal/embedding"
	"corpus-embed/internal/passage"
)

// Allocator hands out dense uint64 identifiers starting at 0, in
// acceptance order. One call per accepted passage, no reuse, no gaps.
type Allocator struct {
	next uint64
}

// Next returns the current identifier and advances the counter.
func (a *Allocator) Next() uint64 {
	id := a.next
	a.next++
	return id
}

// Limiter caps the total number of accepted passages.
type Limiter struct {
	max int
}

func NewLimiter(max int) *Limiter { return &Limiter{max: max} }

// Reached reports whether count has hit the bound. A bound of 0 or less
// means unlimited.
func (l *Limiter) Reached(count int) bool {
	return l.max > 0 && count >= l.max
}

// Stats summarizes one pipeline run.
type Stats struct {
	Records        int
	Passages       int
	Dimension      int
	EmbeddingBytes int64
}

// Pipeline wires the components of one run. It owns all buffers for the
// run's duration; nothing survives across runs.
type Pipeline struct {
	stream    corpus.Stream
	extractor *passage.Extractor
	encoder   *embedding.Encoder
	writer    *artifact.Writer
	limiter   *Limiter
	log       zerolog.Logger

	progressEvery int
}

func New(stream corpus.Stream, extractor *passage.Extractor, encoder *embedding.Encoder, writer *artifact.Writer, limit int, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		stream:        stream,
		extractor:     extractor,
		encoder:       encoder,
		writer:        writer,
		limiter:       NewLimiter(limit),
		log:           logger,
		progressEvery: 10000,
	}
}

// Run executes the full generation and returns its stats. Any error is
// fatal for the run; partially written outputs are left on disk.
func (p *Pipeline) Run(ctx context.Context) (*Stats, error) {
	passages, ids, records, err := p.Collect(ctx)
	if err != nil {
		return nil, err
	}
	p.log.Info().Int("records", records).Int("passages", len(passages)).Msg("Collected passages")

	vectors, err := p.encoder.EncodeBatch(ctx, passages)
	if err != nil {
		return nil, err
	}

	a := &artifact.Artifact{Passages: passages, IDs: ids, Vectors: vectors}
	size, err := p.writer.Write(a)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Records:        records,
		Passages:       a.Len(),
		Dimension:      a.Dimension(),
		EmbeddingBytes: size,
	}, nil
}

// Collect pulls records until the source ends or the limit is reached.
// The limit is checked after every accepted passage, so a record whose
// sentences cross the bound contributes only up to it.
func (p *Pipeline) Collect(ctx context.Context) ([]string, []uint64, int, error) {
	var (
		alloc    Allocator
		passages []string
		ids      []uint64
		records  int
	)

	for !p.limiter.Reached(len(passages)) {
		rec, err := p.stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, 0, err
		}
		records++

		for _, ps := range p.extractor.Extract(rec.Text) {
			passages = append(passages, ps)
			ids = append(ids, alloc.Next())
			if p.limiter.Reached(len(passages)) {
				break
			}
		}

		if p.progressEvery > 0 && records%p.progressEvery == 0 {
			p.log.Info().Int("records", records).Int("passages", len(passages)).Msg("Collecting")
		}
	}

	// Guard against any future extractor yielding past the bound.
	if p.limiter.max > 0 && len(passages) > p.limiter.max {
		passages = passages[:p.limiter.max]
		ids = ids[:p.limiter.max]
	}
	return passages, ids, records, nil
}
