package artifact

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

// Read helpers for verification and tests. The binary files carry no
// schema, so the caller supplies D; N falls out of the file sizes.

// ReadPassages loads the newline-delimited passages file.
func ReadPassages(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var passages []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		passages = append(passages, scanner.Text())
	}
	return passages, scanner.Err()
}

// ReadIDs loads the raw little-endian uint64 identifier array.
func ReadIDs(path string) ([]uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data)%8 != 0 {
		return nil, fmt.Errorf("artifact: ids file size %d is not a multiple of 8", len(data))
	}
	ids := make([]uint64, len(data)/8)
	for i := range ids {
		ids[i] = binary.LittleEndian.Uint64(data[i*8:])
	}
	return ids, nil
}

// ReadVectors loads the raw little-endian float32 matrix for dimension dim.
func ReadVectors(path string, dim int) ([][]float32, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("artifact: dimension must be positive, got %d", dim)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rowBytes := dim * 4
	if len(data)%rowBytes != 0 {
		return nil, fmt.Errorf("artifact: embeddings file size %d is not a multiple of row size %d", len(data), rowBytes)
	}
	flat := make([]float32, len(data)/4)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, flat); err != nil {
		return nil, err
	}
	vectors := make([][]float32, len(data)/rowBytes)
	for i := range vectors {
		vectors[i] = flat[i*dim : (i+1)*dim]
	}
	return vectors, nil
}
