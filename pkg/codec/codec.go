// Package codec reads and writes raw pathway documents. The format is
// chosen by file extension.
package codec

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/ritzau/pathlink/pkg/model"
)

// Codec encodes and decodes one document format.
type Codec interface {
	Name() string
	Encode(w io.Writer, doc *model.RawDocument) error
	Decode(r io.Reader) (*model.RawDocument, error)
}

// JSON is the indented JSON format.
type JSON struct{}

func (JSON) Name() string { return "json" }

func (JSON) Encode(w io.Writer, doc *model.RawDocument) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func (JSON) Decode(r io.Reader) (*model.RawDocument, error) {
	var doc model.RawDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return &doc, nil
}

// YAML is the block-style YAML format.
type YAML struct{}

func (YAML) Name() string { return "yaml" }

func (YAML) Encode(w io.Writer, doc *model.RawDocument) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

func (YAML) Decode(r io.Reader) (*model.RawDocument, error) {
	var doc model.RawDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &doc, nil
}

// Msgpack is the binary format, also used for stored documents.
type Msgpack struct{}

func (Msgpack) Name() string { return "msgpack" }

func (Msgpack) Encode(w io.Writer, doc *model.RawDocument) error {
	return msgpack.NewEncoder(w).Encode(doc)
}

func (Msgpack) Decode(r io.Reader) (*model.RawDocument, error) {
	var doc model.RawDocument
	if err := msgpack.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode msgpack: %w", err)
	}
	return &doc, nil
}

var byName = map[string]Codec{
	"json":    JSON{},
	"yaml":    YAML{},
	"yml":     YAML{},
	"msgpack": Msgpack{},
	"mpk":     Msgpack{},
}

// ByName returns the codec for a format name such as "json" or "yaml".
func ByName(name string) (Codec, error) {
	c, ok := byName[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown document format %q", name)
	}
	return c, nil
}

// ForPath returns the codec matching a file's extension.
func ForPath(path string) (Codec, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil, fmt.Errorf("no extension on %s to pick a format from", path)
	}
	return ByName(ext)
}
