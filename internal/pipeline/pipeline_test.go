package pipeline

import (
	"context"
	"io"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"corpus-embed/internal/artifact"
	"corpus-embed/internal/corpus"
	"corpus-embed/internal/embedding"
	"corpus-embed/internal/passage"
)

type sliceStream struct {
	records []corpus.Record
	pos     int
	closed  bool
}

func (s *sliceStream) Next(context.Context) (corpus.Record, error) {
	if s.pos >= len(s.records) {
		return corpus.Record{}, io.EOF
	}
	rec := s.records[s.pos]
	s.pos++
	return rec, nil
}

func (s *sliceStream) Close() error {
	s.closed = true
	return nil
}

type pipeSegmenter struct{}

func (pipeSegmenter) Segment(text string) []string {
	return strings.Split(text, "|")
}

type hashClient struct{}

func (hashClient) CreateEmbedding(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		var h uint32 = 2166136261
		for i := 0; i < len(t); i++ {
			h ^= uint32(t[i])
			h *= 16777619
		}
		out = append(out, []float32{float32(h%97) + 1, float32(h%193) + 1, float32(h%389) + 1})
	}
	return out, nil
}

func testRecords() []corpus.Record {
	// 3 records, 3 accepted passages each
	return []corpus.Record{
		{Text: "the first passage of record one|the second passage of record one|the third passage of record one"},
		{Text: "the first passage of record two|the second passage of record two|the third passage of record two"},
		{Text: "the first passage of record three|the second passage of record three|the third passage of record three"},
	}
}

func newTestPipeline(stream corpus.Stream, dir string, limit int) *Pipeline {
	extractor := passage.NewExtractor(pipeSegmenter{}, 10, 0, false)
	encoder := embedding.NewEncoder(hashClient{}, 2, 0)
	writer := artifact.NewWriter(dir, "passages.txt", "ids.bin", "embeddings.bin")
	return New(stream, extractor, encoder, writer, limit, zerolog.Nop())
}

func TestAllocatorContiguous(t *testing.T) {
	var a Allocator
	for i := 0; i < 5; i++ {
		assert.Equal(t, uint64(i), a.Next())
	}
}

func TestLimiter(t *testing.T) {
	l := NewLimiter(5)
	assert.False(t, l.Reached(4))
	assert.True(t, l.Reached(5))
	assert.True(t, l.Reached(6))

	unlimited := NewLimiter(0)
	assert.False(t, unlimited.Reached(1<<20))
}

func TestLimiterStopsMidRecord(t *testing.T) {
	stream := &sliceStream{records: testRecords()}
	p := newTestPipeline(stream, t.TempDir(), 5)

	passages, ids, records, err := p.Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, passages, 5)
	assert.Len(t, ids, 5)
	assert.Equal(t, 2, records)
	// third record was never pulled
	assert.Equal(t, 2, stream.pos)
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	stream := &sliceStream{records: testRecords()}
	p := newTestPipeline(stream, dir, 5)

	stats, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Passages)
	assert.Equal(t, 3, stats.Dimension)
	assert.Equal(t, int64(5*3*4), stats.EmbeddingBytes)

	passages, err := artifact.ReadPassages(filepath.Join(dir, "passages.txt"))
	require.NoError(t, err)
	require.Len(t, passages, 5)
	assert.Equal(t, "the first passage of record one", passages[0])
	assert.Equal(t, "the second passage of record two", passages[4])

	ids, err := artifact.ReadIDs(filepath.Join(dir, "ids.bin"))
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 1, 2, 3, 4}, ids)

	vectors, err := artifact.ReadVectors(filepath.Join(dir, "embeddings.bin"), 3)
	require.NoError(t, err)
	require.Len(t, vectors, 5)

	// positional join: row i embeds passage i
	raw, err := hashClient{}.CreateEmbedding(context.Background(), passages)
	require.NoError(t, err)
	for i, want := range raw {
		require.NoError(t, embedding.Normalize(want))
		assert.Equal(t, want, vectors[i], "row %d", i)
	}

	// every stored vector is unit length
	for i, v := range vectors {
		var sum float64
		for _, x := range v {
			sum += float64(x) * float64(x)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5, "row %d", i)
	}
}

func TestRunWithoutLimitDrainsSource(t *testing.T) {
	dir := t.TempDir()
	stream := &sliceStream{records: testRecords()}
	p := newTestPipeline(stream, dir, 0)

	stats, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, stats.Passages)
	assert.Equal(t, 3, stats.Records)

	ids, err := artifact.ReadIDs(filepath.Join(dir, "ids.bin"))
	require.NoError(t, err)
	require.Len(t, ids, 9)
	for i, id := range ids {
		assert.Equal(t, uint64(i), id)
	}
}

func TestRunSentenceScenario(t *testing.T) {
	dir := t.TempDir()
	seg, err := passage.NewPunktSegmenter()
	require.NoError(t, err)

	stream := &sliceStream{records: []corpus.Record{
		{Text: "Hello world. This is a test sentence exceeding forty characters easily."},
	}}
	extractor := passage.NewExtractor(seg, 40, 0, false)
	encoder := embedding.NewEncoder(hashClient{}, 64, 0)
	writer := artifact.NewWriter(dir, "passages.txt", "ids.bin", "embeddings.bin")
	p := New(stream, extractor, encoder, writer, 0, zerolog.Nop())

	stats, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Passages)

	passages, err := artifact.ReadPassages(filepath.Join(dir, "passages.txt"))
	require.NoError(t, err)
	assert.Equal(t, []string{"This is a test sentence exceeding forty characters easily."}, passages)

	ids, err := artifact.ReadIDs(filepath.Join(dir, "ids.bin"))
	require.NoError(t, err)
	assert.Equal(t, []uint64{0}, ids)
}
