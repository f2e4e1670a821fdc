package corpus

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, s Stream) []string {
	t.Helper()
	var got []string
	for {
		rec, err := s.Next(context.Background())
		if err == io.EOF {
			return got
		}
		require.NoError(t, err)
		got = append(got, rec.Text)
	}
}

func TestFileStreamTxt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("the whole file is one record"), 0o644))

	s, err := NewFileStream([]string{path})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, []string{"the whole file is one record"}, drain(t, s))
}

func TestFileStreamJSONL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rows.jsonl")
	content := `{"text":"first row"}
{"text":"second row"}

{"text":"third row"}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := NewFileStream([]string{path})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, []string{"first row", "second row", "third row"}, drain(t, s))
}

func TestFileStreamJSONLMissingText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rows.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"title":"no text"}`), 0o644))

	s, err := NewFileStream([]string{path})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Next(context.Background())
	require.ErrorIs(t, err, ErrMissingText)
}

func TestFileStreamMarkdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	content := "# Heading\n\nSome *emphasized* body text.\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := NewFileStream([]string{path})
	require.NoError(t, err)
	defer s.Close()

	got := drain(t, s)
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "Heading")
	assert.Contains(t, got[0], "emphasized body text")
	assert.NotContains(t, got[0], "*")
	assert.NotContains(t, got[0], "#")
}

func TestFileStreamWalksDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("record from file a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("record from file b"), 0o644))

	s, err := NewFileStream([]string{dir})
	require.NoError(t, err)
	defer s.Close()

	got := drain(t, s)
	assert.ElementsMatch(t, []string{"record from file a", "record from file b"}, got)
}

func TestFileStreamUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b"), 0o644))

	s, err := NewFileStream([]string{path})
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Next(context.Background())
	assert.Error(t, err)
}

func TestFileStreamMissingPath(t *testing.T) {
	_, err := NewFileStream([]string{"/does/not/exist"})
	assert.Error(t, err)
}

func TestFileStreamNoPaths(t *testing.T) {
	_, err := NewFileStream(nil)
	assert.Error(t, err)
}
