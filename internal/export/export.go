// Package export fetches the embedding model's portable ONNX computation
// graph. The model itself runs behind an inference server, so the graph
// comes from the model hub's ONNX export for the configured repository.
package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"corpus-embed/internal/config"
)

// graphNames are the tensor names downstream inference depends on:
// inputs input_ids and attention_mask, output sentence_embedding. ONNX
// stores names as plain strings inside the protobuf, so presence is
// checked on the raw bytes.
var graphNames = [][]byte{
	[]byte("input_ids"),
	[]byte("attention_mask"),
	[]byte("sentence_embedding"),
}

type Exporter struct {
	client  *http.Client
	baseURL string
	repo    string
}

func NewExporter(cfg *config.ExportConfig) *Exporter {
	return &Exporter{
		client:  &http.Client{Timeout: 10 * time.Minute},
		baseURL: cfg.HubBaseURL,
		repo:    cfg.ModelRepo,
	}
}

// Export downloads the graph to outPath, writing through a temp file and
// renaming on success so exactly one complete output file ever exists.
func (e *Exporter) Export(ctx context.Context, outPath string) error {
	url := fmt.Sprintf("%s/%s/resolve/main/onnx/model.onnx", e.baseURL, e.repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("export: fetching model graph: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("export: graph request failed: %d, %s", resp.StatusCode, string(body))
	}

	tmp, err := os.CreateTemp(filepath.Dir(outPath), ".export-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	size, err := io.Copy(tmp, resp.Body)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("export: writing graph: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := verifyGraph(tmp.Name()); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), outPath); err != nil {
		return err
	}

	log.Info().Str("model", e.repo).Str("path", outPath).Int64("bytes", size).Msg("Exported model graph")
	return nil
}

// verifyGraph checks the downloaded graph carries the expected named
// inputs and output.
func verifyGraph(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	for _, name := range graphNames {
		if !bytes.Contains(data, name) {
			return fmt.Errorf("export: graph is missing expected tensor name %q", name)
		}
	}
	return nil
}
