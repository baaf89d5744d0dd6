package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
)

//go:embed products.json
var defaultProducts []byte

// FileSource reads the catalog from a JSON array on disk on every call, so
// edits to the file are picked up without a restart.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource { return &FileSource{Path: path} }

func (s *FileSource) ListProducts(ctx context.Context) ([]Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data := defaultProducts
	if s.Path != "" {
		b, err := os.ReadFile(s.Path)
		if err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
		data = b
	}
	var ps []Product
	if err := json.Unmarshal(data, &ps); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return ps, nil
}
