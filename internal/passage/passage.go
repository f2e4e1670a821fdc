// Package passage extracts embedding candidates from raw record text:
// sentence segmentation through a language-aware boundary detector, then
// length-based acceptance.
package passage

import (
	"strings"
	"unicode/utf8"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// Segmenter maps one text to its ordered sentence-like units.
type Segmenter interface {
	Segment(text string) []string
}

// PunktSegmenter wraps the trained English punkt tokenizer.
type PunktSegmenter struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

func NewPunktSegmenter() (*PunktSegmenter, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, err
	}
	return &PunktSegmenter{tokenizer: tokenizer}, nil
}

func (s *PunktSegmenter) Segment(text string) []string {
	sents := s.tokenizer.Tokenize(text)
	out := make([]string, 0, len(sents))
	for _, sent := range sents {
		out = append(out, sent.Text)
	}
	return out
}

// Extractor applies the acceptance policy to segmented sentences.
// Lengths are counted in runes. MaxChars of 0 disables the upper bound.
// When dedup is on, a passage textually identical to one already accepted
// in this run is dropped; off by default, duplicates keep distinct rows.
type Extractor struct {
	seg      Segmenter
	minChars int
	maxChars int
	dedup    bool
	seen     map[string]struct{}
}

func NewExtractor(seg Segmenter, minChars, maxChars int, dedup bool) *Extractor {
	e := &Extractor{seg: seg, minChars: minChars, maxChars: maxChars, dedup: dedup}
	if dedup {
		e.seen = make(map[string]struct{})
	}
	return e
}

// Extract returns the accepted passages of one record, in order.
// Newlines are collapsed to single spaces before acceptance so every
// passage fits on exactly one output line.
func (e *Extractor) Extract(text string) []string {
	var accepted []string
	for _, sent := range e.seg.Segment(text) {
		p := normalize(sent)
		n := utf8.RuneCountInString(p)
		if n < e.minChars {
			continue
		}
		if e.maxChars > 0 && n > e.maxChars {
			continue
		}
		if e.dedup {
			if _, ok := e.seen[p]; ok {
				continue
			}
			e.seen[p] = struct{}{}
		}
		accepted = append(accepted, p)
	}
	return accepted
}

func normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}
