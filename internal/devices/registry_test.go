package devices

import (
	"sync"
	"testing"

	"github.com/KevinKickass/OpenIOLink/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func specWithID(name string, vendorID *int, deviceID int) *types.DeviceSpecification {
	return &types.DeviceSpecification{Name: name, VendorID: vendorID, DeviceID: &deviceID}
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	ifm := 310
	r := NewRegistry()
	r.Register(specWithID("humidity", &ifm, 135))
	r.Register(specWithID("generic-flow", nil, 48))
	r.Register(&types.DeviceSpecification{Name: "anonymous"})

	assert.Equal(t, 3, r.Len())

	spec, ok := r.Lookup(310, 135)
	require.True(t, ok)
	assert.Equal(t, "humidity", spec.Name)

	_, ok = r.Lookup(42, 135)
	assert.False(t, ok)

	spec, ok = r.Lookup(42, 48)
	require.True(t, ok)
	assert.Equal(t, "generic-flow", spec.Name)

	names := make([]string, 0)
	for _, s := range r.List() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"anonymous", "generic-flow", "humidity"}, names)
}

func TestRegistryLookupPrefersFirstNameWithoutVendor(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"flow-c", "flow-a", "flow-b"} {
		r.Register(specWithID(name, nil, 48))
	}

	for i := 0; i < 20; i++ {
		spec, ok := r.Lookup(310, 48)
		require.True(t, ok)
		assert.Equal(t, "flow-a", spec.Name)
	}
}

func TestRegistryReplaceAndRemove(t *testing.T) {
	ifm := 310
	r := NewRegistry()
	r.Register(specWithID("temp", &ifm, 6))
	r.Register(specWithID("temp", &ifm, 7))

	assert.Equal(t, 1, r.Len())
	_, ok := r.Lookup(310, 6)
	assert.False(t, ok, "replaced spec drops its old device index")
	_, ok = r.Lookup(310, 7)
	assert.True(t, ok)

	assert.True(t, r.Remove("temp"))
	assert.False(t, r.Remove("temp"))
	_, ok = r.Lookup(310, 7)
	assert.False(t, ok)
	_, ok = r.Get("temp")
	assert.False(t, ok)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			vendor := 1
			r.Register(specWithID(string(rune('a'+i)), &vendor, i))
			r.Lookup(1, i)
			r.List()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 16, r.Len())
}
