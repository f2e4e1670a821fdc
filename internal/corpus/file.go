package corpus

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// FileStream yields records from local documents. Files are loaded one at a
// time as the consumer reaches them; what a record is depends on the format
// (pdf page, docx paragraph, xlsx sheet, jsonl line, whole text file).
type FileStream struct {
	files []string
	buf   []Record
}

func NewFileStream(paths []string) (*FileStream, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("corpus: file source needs at least one path")
	}
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("corpus: %w", err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("corpus: %w", err)
		}
	}
	return &FileStream{files: files}, nil
}

func (s *FileStream) Next(ctx context.Context) (Record, error) {
	for len(s.buf) == 0 {
		if err := ctx.Err(); err != nil {
			return Record{}, err
		}
		if len(s.files) == 0 {
			return Record{}, io.EOF
		}
		path := s.files[0]
		s.files = s.files[1:]
		texts, err := extractFile(path)
		if err != nil {
			return Record{}, err
		}
		log.Debug().Str("file", path).Int("records", len(texts)).Msg("Loaded corpus file")
		for _, t := range texts {
			if strings.TrimSpace(t) == "" {
				continue
			}
			s.buf = append(s.buf, Record{Text: t})
		}
	}
	rec := s.buf[0]
	s.buf = s.buf[1:]
	return rec, nil
}

func (s *FileStream) Close() error {
	s.files = nil
	s.buf = nil
	return nil
}

func extractFile(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDF(path)
	case ".docx":
		return extractDOCX(path)
	case ".xlsx":
		return extractXLSX(path)
	case ".md":
		return extractMarkdown(path)
	case ".jsonl":
		return extractJSONL(path)
	case ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return []string{string(data)}, nil
	default:
		return nil, fmt.Errorf("corpus: unsupported file format: %s", filepath.Ext(path))
	}
}

// extractPDF yields one record per page.
func extractPDF(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, err
	}

	var texts []string
	for i := 1; i <= reader.NumPage(); i++ {
		pageText, err := reader.Page(i).GetPlainText(nil)
		if err != nil {
			return nil, err
		}
		texts = append(texts, pageText)
	}
	return texts, nil
}

// extractDOCX yields one record per non-empty paragraph.
func extractDOCX(path string) ([]string, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	content := r.Editable().GetContent()
	var texts []string
	for _, p := range strings.Split(content, "\n") {
		if strings.TrimSpace(p) != "" {
			texts = append(texts, p)
		}
	}
	return texts, nil
}

// extractXLSX yields one record per sheet, cells tab-joined.
func extractXLSX(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var texts []string
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		var sb strings.Builder
		for _, row := range rows {
			sb.WriteString(strings.Join(row, "\t"))
			sb.WriteString("\n")
		}
		texts = append(texts, sb.String())
	}
	return texts, nil
}

// extractMarkdown yields one record of the document's plain text, walking
// the parsed AST so markup never leaks into passages.
func extractMarkdown(path string) ([]string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	var sb strings.Builder
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
			if t.HardLineBreak() || t.SoftLineBreak() {
				sb.WriteString(" ")
			}
		case *ast.Paragraph, *ast.Heading:
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	return []string{sb.String()}, nil
}

// extractJSONL yields one record per line; each line must be an object
// carrying a text key.
func extractJSONL(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var texts []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var row struct {
			Text *string `json:"text"`
		}
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			return nil, fmt.Errorf("corpus: decoding jsonl line: %w", err)
		}
		if row.Text == nil {
			return nil, ErrMissingText
		}
		texts = append(texts, *row.Text)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return texts, nil
}
