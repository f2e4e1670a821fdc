package artifact

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Writer writes one artifact generation into a directory. The three writes
// are not transactional: this is a single-operator batch tool and a failure
// mid-write leaves a partial artifact, which the operator regenerates by
// re-running the pipeline.
type Writer struct {
	dir            string
	passagesFile   string
	idsFile        string
	embeddingsFile string
}

func NewWriter(dir, passagesFile, idsFile, embeddingsFile string) *Writer {
	return &Writer{
		dir:            dir,
		passagesFile:   passagesFile,
		idsFile:        idsFile,
		embeddingsFile: embeddingsFile,
	}
}

// Write serializes the artifact. Returns the byte size of the embedding
// matrix for operator sanity-checking.
func (w *Writer) Write(a *Artifact) (int64, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return 0, err
	}

	if err := w.writePassages(a.Passages); err != nil {
		return 0, fmt.Errorf("artifact: writing passages: %w", err)
	}
	if err := w.writeIDs(a.IDs); err != nil {
		return 0, fmt.Errorf("artifact: writing ids: %w", err)
	}
	size, err := w.writeVectors(a.Vectors)
	if err != nil {
		return 0, fmt.Errorf("artifact: writing embeddings: %w", err)
	}

	log.Info().
		Int("rows", a.Len()).
		Int("dimension", a.Dimension()).
		Int64("embedding_bytes", size).
		Msg("Wrote artifact")
	return size, nil
}

func (w *Writer) writePassages(passages []string) error {
	f, err := os.Create(filepath.Join(w.dir, w.passagesFile))
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	for _, p := range passages {
		if _, err := bw.WriteString(p); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}

func (w *Writer) writeIDs(ids []uint64) error {
	f, err := os.Create(filepath.Join(w.dir, w.idsFile))
	if err != nil {
		return err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	if err := binary.Write(bw, binary.LittleEndian, ids); err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return f.Close()
}

func (w *Writer) writeVectors(vectors [][]float32) (int64, error) {
	f, err := os.Create(filepath.Join(w.dir, w.embeddingsFile))
	if err != nil {
		return 0, err
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	var size int64
	for _, v := range vectors {
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			return 0, err
		}
		size += int64(len(v)) * 4
	}
	if err := bw.Flush(); err != nil {
		return 0, err
	}
	return size, f.Close()
}

// WriteQueryVector writes a single vector in the same flat float32 layout.
func WriteQueryVector(path string, vec []float32) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := binary.Write(f, binary.LittleEndian, vec); err != nil {
		return err
	}
	return f.Close()
}
