// Package loader reads pathway documents from disk into resolved
// documents and writes them back.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ritzau/pathlink/pkg/codec"
	"github.com/ritzau/pathlink/pkg/diag"
	"github.com/ritzau/pathlink/pkg/logging"
	"github.com/ritzau/pathlink/pkg/model"
	"github.com/ritzau/pathlink/pkg/pathway"
	"github.com/ritzau/pathlink/pkg/resolve"
)

// Read decodes a document file without resolving it. The format is taken
// from the extension.
func Read(path string) (*model.RawDocument, error) {
	return ReadFormat(path, "auto")
}

// ReadFormat decodes a document file in the named format; "auto" or ""
// picks the format by extension.
func ReadFormat(path, format string) (*model.RawDocument, error) {
	c, err := codecFor(path, format)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raw, err := c.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if raw.Name == "" {
		base := filepath.Base(path)
		raw.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return raw, nil
}

func codecFor(path, format string) (codec.Codec, error) {
	if format == "" || format == "auto" {
		return codec.ForPath(path)
	}
	return codec.ByName(format)
}

// Load reads and resolves a document file.
func Load(path string, opts pathway.Options) (*pathway.Document, diag.List, error) {
	return LoadFormat(path, "auto", opts)
}

// LoadFormat is Load with an explicit format.
func LoadFormat(path, format string, opts pathway.Options) (*pathway.Document, diag.List, error) {
	raw, err := ReadFormat(path, format)
	if err != nil {
		return nil, nil, err
	}
	logging.Debug("Read document", "path", path, "elements", len(raw.Elements))
	return resolve.Build(raw, opts)
}

// Save writes a document in the format matching the path's extension.
// The file is replaced atomically.
func Save(path string, doc *pathway.Document) error {
	c, err := codec.ForPath(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := c.Encode(tmp, doc.Export()); err != nil {
		tmp.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	logging.Debug("Saved document", "path", path, "format", c.Name())
	return nil
}
