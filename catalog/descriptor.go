package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sghaida/compbridge/compose"
)

// Descriptor is the document form of a catalog.
type Descriptor struct {
	Parts []PartDescriptor `json:"parts" yaml:"parts"`
}

// PartDescriptor declares one part.
type PartDescriptor struct {
	Name           string                 `json:"name" yaml:"name"`
	Factory        string                 `json:"factory,omitempty" yaml:"factory,omitempty"`
	CreationPolicy compose.CreationPolicy `json:"creationPolicy,omitempty" yaml:"creationPolicy,omitempty"`
	Metadata       map[string]any         `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Exports        []ExportDescriptor     `json:"exports,omitempty" yaml:"exports,omitempty"`
	Imports        []ImportDescriptor     `json:"imports,omitempty" yaml:"imports,omitempty"`
}

// ExportDescriptor declares one export. The contract comes from, in order:
// Contract, the Type alias, the Member field's type, the factory's type.
type ExportDescriptor struct {
	Type         string         `json:"type,omitempty" yaml:"type,omitempty"`
	Contract     string         `json:"contract,omitempty" yaml:"contract,omitempty"`
	TypeIdentity string         `json:"typeIdentity,omitempty" yaml:"typeIdentity,omitempty"`
	Member       string         `json:"member,omitempty" yaml:"member,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// ImportDescriptor declares one import. The contract comes from, in order:
// Contract, the Type alias, the Field's type.
type ImportDescriptor struct {
	Type         string               `json:"type,omitempty" yaml:"type,omitempty"`
	Contract     string               `json:"contract,omitempty" yaml:"contract,omitempty"`
	TypeIdentity string               `json:"typeIdentity,omitempty" yaml:"typeIdentity,omitempty"`
	Field        string               `json:"field,omitempty" yaml:"field,omitempty"`
	Cardinality  *compose.Cardinality `json:"cardinality,omitempty" yaml:"cardinality,omitempty"`
	Prerequisite bool                 `json:"prerequisite,omitempty" yaml:"prerequisite,omitempty"`

	// RequiredMetadata maps keys to a type name: string, int, bool, float64,
	// any, or a registered alias.
	RequiredMetadata map[string]string `json:"requiredMetadata,omitempty" yaml:"requiredMetadata,omitempty"`
}

// LoadFile reads and parses a descriptor file.
func LoadFile(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes data as JSON or YAML depending on filename's extension.
// Other names try JSON first, then YAML.
func Parse(data []byte, filename string) (*Descriptor, error) {
	var d Descriptor

	switch {
	case strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml"):
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
	case strings.HasSuffix(filename, ".json"):
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &d); err != nil {
			d = Descriptor{}
			if err := yaml.Unmarshal(data, &d); err != nil {
				return nil, fmt.Errorf("parse catalog: %w", err)
			}
		}
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks what can be checked without a Registry: every part has a
// unique name, and every export and import names something to derive its
// contract from.
func (d *Descriptor) Validate() error {
	seen := make(map[string]bool, len(d.Parts))
	for i, p := range d.Parts {
		if p.Name == "" {
			return DescriptorError{Part: "#" + strconv.Itoa(i), Path: "name", Reason: "must not be empty"}
		}
		if seen[p.Name] {
			return DescriptorError{Part: p.Name, Path: "name", Reason: "duplicate part name"}
		}
		seen[p.Name] = true

		for j, e := range p.Exports {
			if e.Contract == "" && e.Type == "" && e.Member == "" && p.Factory == "" {
				return DescriptorError{
					Part:   p.Name,
					Path:   "exports[" + strconv.Itoa(j) + "]",
					Reason: "needs a contract, type or member, or a part factory",
				}
			}
		}
		for j, imp := range p.Imports {
			if imp.Contract == "" && imp.Type == "" && imp.Field == "" {
				return DescriptorError{
					Part:   p.Name,
					Path:   "imports[" + strconv.Itoa(j) + "]",
					Reason: "needs a contract, type or field",
				}
			}
		}
	}
	return nil
}
