package graph

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/matzehuels/forcelayout/pkg/errors"
)

// Decode reads one JSON document from r.
func Decode(r io.Reader) (*Graph, error) {
	var g Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		if errors.GetCode(err) != "" {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "decode graph")
	}
	return &g, nil
}

// Unmarshal decodes a document from bytes.
func Unmarshal(data []byte) (*Graph, error) {
	return Decode(bytes.NewReader(data))
}

// ReadFile reads and decodes the document at path. A missing file is
// FILE_NOT_FOUND; a file that does not parse is MALFORMED_INPUT naming path.
func ReadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "unable to load the input file %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	g, err := Decode(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedInput, err, "unable to parse file %s", path)
	}
	return g, nil
}

// Marshal encodes g compactly with sorted object keys.
func Marshal(g *Graph) ([]byte, error) {
	return json.Marshal(g)
}

// Write encodes g to w. An empty indent writes compact JSON.
func Write(w io.Writer, g *Graph, indent string) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteFile writes g to path, replacing any existing file.
// The file is created with 0644 permissions.
func WriteFile(path string, g *Graph, indent string) error {
	var buf bytes.Buffer
	if err := Write(&buf, g, indent); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
