package devices

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const vendorIndexFile = "index.yaml"

// VendorIndex is the index.yaml of a vendor directory below a search path.
type VendorIndex struct {
	Vendor      string    `yaml:"vendor" json:"vendor"`
	Description string    `yaml:"description" json:"description,omitempty"`
	Website     string    `yaml:"website" json:"website,omitempty"`
	VendorID    int       `yaml:"vendorId" json:"vendor_id,omitempty"`
	Specs       []SpecRef `yaml:"specs" json:"specs"`

	Dir string `yaml:"-" json:"-"`
}

type SpecRef struct {
	Name        string `yaml:"name" json:"name"`
	File        string `yaml:"file" json:"file"`
	DeviceID    int    `yaml:"deviceId" json:"device_id,omitempty"`
	Description string `yaml:"description" json:"description,omitempty"`
	Tested      bool   `yaml:"tested" json:"tested"`
	Datasheet   string `yaml:"datasheet" json:"datasheet,omitempty"`
}

// ReadVendorIndexes collects the index of every vendor directory. Broken
// indexes are returned in the error map keyed by path.
func ReadVendorIndexes(searchPaths []string) ([]VendorIndex, map[string]error) {
	indexes := make([]VendorIndex, 0)
	failed := make(map[string]error)

	for _, searchPath := range searchPaths {
		entries, err := os.ReadDir(searchPath)
		if err != nil {
			if !os.IsNotExist(err) {
				failed[searchPath] = err
			}
			continue
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			dir := filepath.Join(searchPath, entry.Name())
			index, err := readVendorIndex(dir)
			if err != nil {
				if !os.IsNotExist(err) {
					failed[dir] = err
				}
				continue
			}
			indexes = append(indexes, *index)
		}
	}

	sort.Slice(indexes, func(i, j int) bool { return indexes[i].Vendor < indexes[j].Vendor })
	return indexes, failed
}

// FindVendor returns the index of the vendor directory named vendor.
func FindVendor(searchPaths []string, vendor string) (*VendorIndex, error) {
	if vendor == "" || strings.ContainsAny(vendor, `/\`) || vendor == ".." {
		return nil, fmt.Errorf("invalid vendor name: %q", vendor)
	}

	for _, searchPath := range searchPaths {
		index, err := readVendorIndex(filepath.Join(searchPath, vendor))
		if err == nil {
			return index, nil
		}
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: vendor %s", ErrSpecNotFound, vendor)
}

// SpecPath resolves a spec file listed in the index.
func (v *VendorIndex) SpecPath(ref SpecRef) string {
	return filepath.Join(v.Dir, filepath.Clean("/"+ref.File))
}

func readVendorIndex(dir string) (*VendorIndex, error) {
	data, err := os.ReadFile(filepath.Join(dir, vendorIndexFile))
	if err != nil {
		return nil, err
	}

	var index VendorIndex
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to parse vendor index %s: %w", dir, err)
	}
	if index.Vendor == "" {
		index.Vendor = filepath.Base(dir)
	}
	index.Dir = dir
	return &index, nil
}
