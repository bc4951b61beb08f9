package keymap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keybridge/internal/keycode"
)

func TestDefaultTables(t *testing.T) {
	m := Default()

	// Spot checks against the HID usage table.
	assert.Equal(t, uint64(0x00070004), m.Physical[0x001e], "KeyA")
	assert.Equal(t, uint64(0x00070052), m.Physical[0xe048], "ArrowUp")
	assert.Equal(t, keycode.PhysicalCapsLock, m.Physical[0x003a])
	assert.Equal(t, keycode.LogicalCapsLock, m.Logical[keycode.VKCapital])
	assert.Equal(t, uint64(0x200000230), m.ScanLogical[0x0052], "Numpad0")

	// Every critical key the engine registers must be resolvable.
	for _, vk := range []int{
		keycode.VKLShift, keycode.VKRShift,
		keycode.VKLControl, keycode.VKRControl,
		keycode.VKCapital, keycode.VKScroll, keycode.VKNumLock,
	} {
		_, ok := m.Logical[vk]
		assert.True(t, ok, "virtual key %#x missing from logical table", vk)
	}
}

func TestMerge(t *testing.T) {
	m := Default()
	before := m.Physical[0x001e]

	m.Merge(&Keymap{
		Physical: map[uint16]uint64{0x001e: 0xdead},
		Logical:  map[int]uint64{0xff: 0xbeef},
	})

	assert.NotEqual(t, before, m.Physical[0x001e])
	assert.Equal(t, uint64(0xdead), m.Physical[0x001e])
	assert.Equal(t, uint64(0xbeef), m.Logical[0xff])
	// Untouched entries survive.
	assert.Equal(t, uint64(0x00070005), m.Physical[0x0030], "KeyB")
}

func TestCloneIsDeep(t *testing.T) {
	m := Default()
	c := m.Clone()

	c.Physical[0x001e] = 0xdead
	c.Logical[keycode.VKCapital] = 0xbeef

	assert.Equal(t, uint64(0x00070004), m.Physical[0x001e], "clone writes must not reach the original")
	assert.Equal(t, keycode.LogicalCapsLock, m.Logical[keycode.VKCapital])
}

func TestLoadFileTOML(t *testing.T) {
	path := writeFile(t, "map.toml", `
[physical]
"0x1e" = "0x00070004"
"31" = "0x00070016"

[scan_logical]
"0x4f" = "0x200000231"
`)

	m, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x00070004), m.Physical[0x001e])
	assert.Equal(t, uint64(0x00070016), m.Physical[0x001f], "decimal spelling")
	assert.Equal(t, uint64(0x200000231), m.ScanLogical[0x004f])
}

func TestLoadFileRejectsCollidingSpellings(t *testing.T) {
	// "0x1e" and "30" name the same scan code; neither may silently win.
	path := writeFile(t, "dup.toml", `
[physical]
"0x1e" = "0x00070004"
"30" = "0x00070005"
`)
	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoadFileJSONValidated(t *testing.T) {
	good := writeFile(t, "map.json", `{
  "logical": {"0x14": "0x100000104"}
}`)
	m, err := LoadFile(good)
	require.NoError(t, err)
	assert.Equal(t, keycode.LogicalCapsLock, m.Logical[keycode.VKCapital])

	// Non-numeric keys are rejected by the schema before decoding.
	bad := writeFile(t, "bad.json", `{
  "logical": {"caps": "0x100000104"}
}`)
	_, err = LoadFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema")

	// Unknown top-level sections are rejected too.
	extra := writeFile(t, "extra.json", `{
  "virtual": {"0x14": "0x100000104"}
}`)
	_, err = LoadFile(extra)
	require.Error(t, err)
}

func TestLoadFileYAML(t *testing.T) {
	path := writeFile(t, "map.yaml", `
logical:
  "0x90": "0x10000010a"
`)
	m, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, keycode.LogicalNumLock, m.Logical[keycode.VKNumLock])
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(writeFile(t, "map.ini", "physical=1"))
	assert.Error(t, err, "unsupported extension")

	_, err = LoadFile(writeFile(t, "range.toml", `
[physical]
"0x10000" = "0x1"
`))
	assert.Error(t, err, "scan code out of range")

	_, err = LoadFile(writeFile(t, "vk.toml", `
[logical]
"0x100" = "0x1"
`))
	assert.Error(t, err, "virtual key out of range")

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeFile(t, "overlay.toml", `
[physical]
"0x1e" = "0xcafe"
`)

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xcafe), m.Physical[0x001e], "overlay wins")
	assert.Equal(t, uint64(0x00070005), m.Physical[0x0030], "defaults survive")

	defaults, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, uint64(0x00070004), defaults.Physical[0x001e])
}

func TestResolverFromKeymap(t *testing.T) {
	r := Default().Resolver()
	assert.Equal(t, uint64(0x00070004), r.Physical(0x1e, false))
	assert.Equal(t, keycode.LogicalCapsLock, r.Logical(keycode.VKCapital, false, 0x3a))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
