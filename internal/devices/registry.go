package devices

import (
	"errors"
	"sort"
	"sync"

	"github.com/KevinKickass/OpenIOLink/internal/types"
)

var ErrSpecNotFound = errors.New("device spec not found")

type deviceKey struct {
	vendorID int
	deviceID int
}

// Registry holds validated specifications by name and by IO-Link identity.
type Registry struct {
	byName   map[string]*types.DeviceSpecification
	byDevice map[deviceKey]*types.DeviceSpecification
	mu       sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		byName:   make(map[string]*types.DeviceSpecification),
		byDevice: make(map[deviceKey]*types.DeviceSpecification),
	}
}

// Register adds spec, replacing any spec of the same name.
func (r *Registry) Register(spec *types.DeviceSpecification) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byName[spec.Name]; ok {
		r.unindex(old)
	}
	r.byName[spec.Name] = spec
	if spec.VendorID != nil && spec.DeviceID != nil {
		r.byDevice[deviceKey{*spec.VendorID, *spec.DeviceID}] = spec
	}
}

// replace takes over the contents of other.
func (r *Registry) replace(other *Registry) {
	other.mu.RLock()
	byName, byDevice := other.byName, other.byDevice
	other.mu.RUnlock()

	r.mu.Lock()
	r.byName, r.byDevice = byName, byDevice
	r.mu.Unlock()
}

func (r *Registry) Get(name string) (*types.DeviceSpecification, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	spec, ok := r.byName[name]
	return spec, ok
}

// Lookup finds the spec for an attached device.
func (r *Registry) Lookup(vendorID, deviceID int) (*types.DeviceSpecification, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if spec, ok := r.byDevice[deviceKey{vendorID, deviceID}]; ok {
		return spec, true
	}
	// specs without a vendor id match any vendor; the first by name wins
	var match *types.DeviceSpecification
	for name, spec := range r.byName {
		if spec.VendorID != nil || !spec.Matches(vendorID, deviceID) {
			continue
		}
		if match == nil || name < match.Name {
			match = spec
		}
	}
	return match, match != nil
}

// List returns all specs sorted by name.
func (r *Registry) List() []*types.DeviceSpecification {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]*types.DeviceSpecification, 0, len(r.byName))
	for _, spec := range r.byName {
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}

func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	spec, ok := r.byName[name]
	if !ok {
		return false
	}
	r.unindex(spec)
	delete(r.byName, name)
	return true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

// caller holds r.mu
func (r *Registry) unindex(spec *types.DeviceSpecification) {
	if spec.VendorID == nil || spec.DeviceID == nil {
		return
	}
	key := deviceKey{*spec.VendorID, *spec.DeviceID}
	if r.byDevice[key] == spec {
		delete(r.byDevice, key)
	}
}
