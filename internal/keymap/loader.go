package keymap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// fileTables is the on-disk shape of a keymap file. Codes and identifiers
// are written as strings so table files can use hex, matching how scan
// codes appear in platform documentation.
type fileTables struct {
	Physical    map[string]string `toml:"physical" json:"physical" yaml:"physical"`
	Logical     map[string]string `toml:"logical" json:"logical" yaml:"logical"`
	ScanLogical map[string]string `toml:"scan_logical" json:"scan_logical" yaml:"scan_logical"`
}

// schemaJSON constrains external JSON keymap files: three optional string
// maps whose keys and values are decimal or 0x-prefixed hex integers.
const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": false,
  "$defs": {
    "codeTable": {
      "type": "object",
      "propertyNames": { "pattern": "^(0[xX][0-9a-fA-F]+|[0-9]+)$" },
      "additionalProperties": { "type": "string", "pattern": "^(0[xX][0-9a-fA-F]+|[0-9]+)$" }
    }
  },
  "properties": {
    "physical": { "$ref": "#/$defs/codeTable" },
    "logical": { "$ref": "#/$defs/codeTable" },
    "scan_logical": { "$ref": "#/$defs/codeTable" }
  }
}`

// LoadFile reads an external keymap table file. The format follows the file
// extension: .toml, .json, .yaml/.yml. JSON files are validated against the
// embedded schema before decoding.
func LoadFile(path string) (*Keymap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keymap: %w", err)
	}

	var ft fileTables
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &ft); err != nil {
			return nil, fmt.Errorf("parse keymap %s: %w", path, err)
		}
	case ".json":
		if err := validateJSON(data); err != nil {
			return nil, fmt.Errorf("keymap %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &ft); err != nil {
			return nil, fmt.Errorf("parse keymap %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &ft); err != nil {
			return nil, fmt.Errorf("parse keymap %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("keymap %s: unsupported format %q", path, filepath.Ext(path))
	}

	return ft.toKeymap()
}

// Load returns the built-in default tables overlaid with the file at path,
// or the defaults alone when path is empty.
func Load(path string) (*Keymap, error) {
	m := Default()
	if path == "" {
		return m, nil
	}
	overlay, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	m.Merge(overlay)
	return m, nil
}

func validateJSON(data []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("keymap.schema.json", strings.NewReader(schemaJSON)); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	schema, err := compiler.Compile("keymap.schema.json")
	if err != nil {
		return fmt.Errorf("schema: %w", err)
	}

	var instance any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&instance); err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if err := schema.Validate(instance); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}

func (ft *fileTables) toKeymap() (*Keymap, error) {
	m := &Keymap{
		Physical:    make(map[uint16]uint64, len(ft.Physical)),
		Logical:     make(map[int]uint64, len(ft.Logical)),
		ScanLogical: make(map[uint16]uint64, len(ft.ScanLogical)),
	}

	for k, v := range ft.Physical {
		code, id, err := parseEntry(k, v)
		if err != nil {
			return nil, fmt.Errorf("physical[%s]: %w", k, err)
		}
		if code > 0xffff {
			return nil, fmt.Errorf("physical[%s]: scan code out of range", k)
		}
		// Hex and decimal spellings of one code are distinct keys to the
		// decoder; catching the collision here beats last-write-wins.
		if _, dup := m.Physical[uint16(code)]; dup {
			return nil, fmt.Errorf("physical[%s]: duplicate scan code %#x", k, code)
		}
		m.Physical[uint16(code)] = id
	}

	for k, v := range ft.Logical {
		code, id, err := parseEntry(k, v)
		if err != nil {
			return nil, fmt.Errorf("logical[%s]: %w", k, err)
		}
		if code > 0xff {
			return nil, fmt.Errorf("logical[%s]: virtual key out of range", k)
		}
		if _, dup := m.Logical[int(code)]; dup {
			return nil, fmt.Errorf("logical[%s]: duplicate virtual key %#x", k, code)
		}
		m.Logical[int(code)] = id
	}

	for k, v := range ft.ScanLogical {
		code, id, err := parseEntry(k, v)
		if err != nil {
			return nil, fmt.Errorf("scan_logical[%s]: %w", k, err)
		}
		if code > 0xffff {
			return nil, fmt.Errorf("scan_logical[%s]: scan code out of range", k)
		}
		if _, dup := m.ScanLogical[uint16(code)]; dup {
			return nil, fmt.Errorf("scan_logical[%s]: duplicate scan code %#x", k, code)
		}
		m.ScanLogical[uint16(code)] = id
	}

	return m, nil
}

func parseEntry(key, value string) (code uint64, id uint64, err error) {
	code, err = strconv.ParseUint(key, 0, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad code: %w", err)
	}
	id, err = strconv.ParseUint(value, 0, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad identifier: %w", err)
	}
	return code, id, nil
}
