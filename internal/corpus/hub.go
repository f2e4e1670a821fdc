package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"corpus-embed/internal/config"
)

// HubStream pages through the Hugging Face datasets-server rows API,
// buffering one page at a time. A fetch failure is fatal for the run;
// transient and permanent failures are not distinguished.
type HubStream struct {
	client   *http.Client
	baseURL  string
	dataset  string
	config   string
	split    string
	pageSize int

	offset  int
	buf     []Record
	drained bool
}

type rowsResponse struct {
	Rows []struct {
		Row map[string]json.RawMessage `json:"row"`
	} `json:"rows"`
}

func NewHubStream(cfg *config.CorpusConfig) *HubStream {
	return &HubStream{
		client:   &http.Client{Timeout: 60 * time.Second},
		baseURL:  cfg.BaseURL,
		dataset:  cfg.Dataset,
		config:   cfg.Config,
		split:    cfg.Split,
		pageSize: cfg.PageSize,
	}
}

func (s *HubStream) Next(ctx context.Context) (Record, error) {
	if len(s.buf) == 0 {
		if s.drained {
			return Record{}, io.EOF
		}
		if err := s.fetchPage(ctx); err != nil {
			return Record{}, err
		}
		if len(s.buf) == 0 {
			return Record{}, io.EOF
		}
	}
	rec := s.buf[0]
	s.buf = s.buf[1:]
	return rec, nil
}

func (s *HubStream) fetchPage(ctx context.Context) error {
	q := url.Values{}
	q.Set("dataset", s.dataset)
	if s.config != "" {
		q.Set("config", s.config)
	}
	q.Set("split", s.split)
	q.Set("offset", fmt.Sprint(s.offset))
	q.Set("length", fmt.Sprint(s.pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/rows?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("corpus: fetching rows for %s: %w", s.dataset, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("corpus: rows request failed: %d, %s", resp.StatusCode, string(body))
	}

	var page rowsResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return fmt.Errorf("corpus: decoding rows response: %w", err)
	}

	log.Debug().Int("offset", s.offset).Int("rows", len(page.Rows)).Msg("Fetched corpus page")

	for _, r := range page.Rows {
		raw, ok := r.Row["text"]
		if !ok {
			return ErrMissingText
		}
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return fmt.Errorf("%w: %v", ErrMissingText, err)
		}
		s.buf = append(s.buf, Record{Text: text})
	}

	s.offset += len(page.Rows)
	if len(page.Rows) < s.pageSize {
		s.drained = true
	}
	return nil
}

func (s *HubStream) Close() error {
	s.buf = nil
	s.drained = true
	return nil
}
