package devices

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/KevinKickass/OpenIOLink/internal/types"
	"gopkg.in/yaml.v3"
)

var specExtensions = []string{".json", ".yaml", ".yml"}

type SpecLoader struct {
	cache       sync.Map
	validator   *Validator
	searchPaths []string
}

func NewSpecLoader(searchPaths []string) (*SpecLoader, error) {
	validator, err := NewValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create validator: %w", err)
	}

	return &SpecLoader{
		validator:   validator,
		searchPaths: searchPaths,
	}, nil
}

func (l *SpecLoader) Validator() *Validator {
	return l.validator
}

// Load resolves a spec by its relative name ("ifm/ldh100") against the search
// paths, trying every known extension.
func (l *SpecLoader) Load(name string) (*types.DeviceSpecification, error) {
	if !filepath.IsLocal(name) {
		return nil, fmt.Errorf("%w: invalid spec name %q", ErrSpecNotFound, name)
	}
	if cached, ok := l.cache.Load(name); ok {
		return cached.(*types.DeviceSpecification), nil
	}

	for _, searchPath := range l.searchPaths {
		for _, ext := range specExtensions {
			fullPath := filepath.Join(searchPath, name+ext)
			if _, err := os.Stat(fullPath); err != nil {
				continue
			}

			spec, err := l.LoadFile(fullPath)
			if err != nil {
				return nil, err
			}
			l.cache.Store(name, spec)
			return spec, nil
		}
	}

	return nil, fmt.Errorf("%w: %s (searched in: %v)", ErrSpecNotFound, name, l.searchPaths)
}

// LoadFile reads and validates one spec file. YAML is converted to JSON first
// so both formats go through the same schema.
func (l *SpecLoader) LoadFile(path string) (*types.DeviceSpecification, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yamlToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	spec, err := l.validator.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("validation failed for %s: %w", path, err)
	}
	return spec, nil
}

// LoadAll walks every search path and loads each spec file found. Files that
// fail validation are reported in the error map and skipped.
func (l *SpecLoader) LoadAll() ([]*types.DeviceSpecification, map[string]error) {
	var specs []*types.DeviceSpecification
	failed := make(map[string]error)

	for _, searchPath := range l.searchPaths {
		err := filepath.WalkDir(searchPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !isSpecFile(path) {
				return nil
			}

			spec, err := l.LoadFile(path)
			if err != nil {
				failed[path] = err
				return nil
			}

			rel, _ := filepath.Rel(searchPath, path)
			l.cache.Store(strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel)), spec)
			specs = append(specs, spec)
			return nil
		})
		if err != nil && !os.IsNotExist(err) {
			failed[searchPath] = err
		}
	}

	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs, failed
}

func (l *SpecLoader) ClearCache() {
	l.cache.Range(func(key, value interface{}) bool {
		l.cache.Delete(key)
		return true
	})
}

func isSpecFile(path string) bool {
	if filepath.Base(path) == vendorIndexFile {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range specExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}
