package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Extensions lists the document formats the Store understands, in lookup order.
var Extensions = []string{".json", ".yaml", ".yml"}

// Store implements ports.ParamStore using plain files.
// Each parameter set lives in <BasePath>/<name>.json (or .yaml/.yml).
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to "run_params".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = "run_params"
	}
	return &Store{BasePath: basePath}
}

// Load reads and decodes the document for name.
func (s *Store) Load(ctx context.Context, name string) (map[string]any, error) {
	if err := domain.CheckSetName(name); err != nil {
		return nil, err
	}

	for _, ext := range Extensions {
		filePath := filepath.Join(s.BasePath, filepath.FromSlash(name)+ext)
		data, err := os.ReadFile(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read parameter file: %w", err)
		}
		raw, err := Decode(ext, data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", filePath, err)
		}
		return raw, nil
	}

	return nil, domain.ErrParamSetNotFound
}

// List returns all parameter set names found in the base path.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list parameter sets: %w", err)
	}

	seen := make(map[string]bool)
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if !isKnownExtension(ext) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ext)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func isKnownExtension(ext string) bool {
	for _, known := range Extensions {
		if strings.EqualFold(ext, known) {
			return true
		}
	}
	return false
}

// Decode parses a JSON or YAML document into a raw tree.
// JSON numbers are kept as json.Number so integers survive untouched.
func Decode(ext string, data []byte) (map[string]any, error) {
	var raw map[string]any
	switch strings.ToLower(ext) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
	default:
		// Default to YAML
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}
