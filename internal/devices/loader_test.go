package devices

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlSpec = `
deviceSpecName: yaml-sensor
processDataIn:
  - name: pressure
    bitOffset: 0
    bitWidth: 14
    encoding: unsigned-integer
    stateConfiguration:
      name: Pressure
      unit: bar
      type: number
      scalingFactor: 0.01
      generateValue: true
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoaderLoadsJSONAndYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "vendor/json-sensor.json", validSpecJSON)
	writeFile(t, dir, "vendor/yaml-sensor.yml", yamlSpec)

	l, err := NewSpecLoader([]string{t.TempDir(), dir})
	require.NoError(t, err)

	spec, err := l.Load("vendor/json-sensor")
	require.NoError(t, err)
	assert.Equal(t, "test-sensor", spec.Name)

	again, err := l.Load("vendor/json-sensor")
	require.NoError(t, err)
	assert.Same(t, spec, again, "second load comes from the cache")

	y, err := l.Load("vendor/yaml-sensor")
	require.NoError(t, err)
	assert.Equal(t, "yaml-sensor", y.Name)
	assert.Equal(t, uint(14), y.Fields[0].BitWidth)
	assert.Equal(t, 0.01, y.Fields[0].Output.ScalingFactor)

	_, err = l.Load("vendor/missing")
	assert.ErrorIs(t, err, ErrSpecNotFound)
}

func TestLoaderRejectsNamesOutsideSearchPath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "outside.json", validSpecJSON)
	specs := filepath.Join(root, "specs")
	require.NoError(t, os.MkdirAll(specs, 0o755))

	l, err := NewSpecLoader([]string{specs})
	require.NoError(t, err)

	for _, name := range []string{"../outside", filepath.Join(root, "outside"), ""} {
		_, err := l.Load(name)
		assert.ErrorIs(t, err, ErrSpecNotFound, name)
		assert.NotContains(t, err.Error(), "test-sensor")
	}
}

func TestLoaderNeverReturnsPartialSpec(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.json", `{
	  "deviceSpecName": "bad",
	  "processDataIn": [
	    {"name": "a", "bitOffset": 0, "bitWidth": 8, "encoding": "enumerated",
	     "stateConfiguration": {"name": "A", "type": "string", "generateValue": true}}
	  ]
	}`)

	l, err := NewSpecLoader([]string{dir})
	require.NoError(t, err)

	spec, err := l.LoadFile(path)
	assert.Nil(t, spec)
	var verr *SpecValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.HasCode("FIELD_015"))

	_, err = l.Load("bad")
	assert.Error(t, err)
}

func TestLoaderLoadAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a/json-sensor.json", validSpecJSON)
	writeFile(t, dir, "b/yaml-sensor.yaml", yamlSpec)
	writeFile(t, dir, "b/broken.json", `{"deviceSpecName": "broken"}`)
	writeFile(t, dir, "README.md", "not a spec")

	l, err := NewSpecLoader([]string{dir, filepath.Join(dir, "does-not-exist")})
	require.NoError(t, err)

	specs, failed := l.LoadAll()
	require.Len(t, specs, 2)
	assert.Equal(t, "test-sensor", specs[0].Name)
	assert.Equal(t, "yaml-sensor", specs[1].Name)

	require.Len(t, failed, 1)
	assert.Contains(t, failed, filepath.Join(dir, "b/broken.json"))

	cached, err := l.Load("b/yaml-sensor")
	require.NoError(t, err)
	assert.Same(t, specs[1], cached)

	l.ClearCache()
	reloaded, err := l.Load("b/yaml-sensor")
	require.NoError(t, err)
	assert.NotSame(t, specs[1], reloaded)
}
