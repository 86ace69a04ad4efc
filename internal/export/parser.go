package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fakeyudi/cliptag/internal/store"
)

// Parser reads an exported label file back into a document.
type Parser interface {
	Parse(data []byte) (*store.Document, error)
}

// JSONParser parses a labels.json document.
type JSONParser struct{}

func (p *JSONParser) Parse(data []byte) (*store.Document, error) {
	var doc store.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("not a valid labels file: %w", err)
	}
	if doc.Annotations == nil {
		return nil, fmt.Errorf("not a valid labels file: missing annotations")
	}
	if err := doc.CheckSchema(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ZIPParser extracts labels.json from an export archive.
type ZIPParser struct{}

func (p *ZIPParser) Parse(data []byte) (*store.Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("not a valid export archive: %w", err)
	}
	f, err := zr.Open(LabelsFile)
	if err != nil {
		return nil, fmt.Errorf("not a valid export archive: missing %s", LabelsFile)
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", LabelsFile, err)
	}
	return (&JSONParser{}).Parse(raw)
}

// ParserFor picks a parser by content: ZIP archives start with "PK".
func ParserFor(data []byte) Parser {
	if bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		return &ZIPParser{}
	}
	return &JSONParser{}
}
