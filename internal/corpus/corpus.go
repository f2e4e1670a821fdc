// Package corpus provides lazy, single-pass streams of text records from
// external corpus sources. A stream never materializes the source: records
// are pulled one at a time and the consumer may stop pulling at any point.
package corpus

import (
	"context"
	"errors"
	"fmt"

	"corpus-embed/internal/config"
)

// Record is one unit of raw text pulled from a corpus source.
type Record struct {
	Text string
}

// Stream is a forward-only iterator over a corpus source. Next returns
// io.EOF once the source is exhausted. Re-iterating is not supported;
// a fresh stream starts a fresh read.
type Stream interface {
	Next(ctx context.Context) (Record, error)
	Close() error
}

// ErrMissingText reports a record without the expected text field.
// It is fatal: there is no per-record recovery.
var ErrMissingText = errors.New("corpus: record has no text field")

// Open builds a stream for the configured source.
func Open(cfg *config.CorpusConfig) (Stream, error) {
	switch cfg.Source {
	case "huggingface":
		return NewHubStream(cfg), nil
	case "file":
		return NewFileStream(cfg.Paths)
	case "postgres":
		return NewPostgresStream(cfg)
	default:
		return nil, fmt.Errorf("corpus: unsupported source %q", cfg.Source)
	}
}
