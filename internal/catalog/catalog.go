package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"quiz-progress-service/internal/domain"
)

//go:embed default.yaml
var defaultBank []byte

// Decode parses a YAML (or JSON, which is valid YAML) question bank and validates it.
func Decode(r io.Reader) (domain.Catalog, error) {
	var c domain.Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return domain.Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return domain.Catalog{}, err
	}
	return c, nil
}

// Default returns the bank compiled into the binary.
func Default() (domain.Catalog, error) {
	return Decode(bytes.NewReader(defaultBank))
}

// EmbeddedLoader serves the compiled-in bank.
type EmbeddedLoader struct{}

func NewEmbeddedLoader() EmbeddedLoader { return EmbeddedLoader{} }

func (EmbeddedLoader) LoadCatalog(_ context.Context) (domain.Catalog, error) {
	return Default()
}

// FileLoader reads the bank from disk on every load; wrap it in a caching repository.
type FileLoader struct {
	path string
}

func NewFileLoader(path string) *FileLoader {
	return &FileLoader{path: path}
}

func (l *FileLoader) LoadCatalog(_ context.Context) (domain.Catalog, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Decode(f)
}
