/*
Package factory converts files and presets into engine inputs.

PURPOSE:
  Loads factor maps from JSON or YAML files and provides the ready-made
  organisation templates. HR can keep a company's evaluation scheme in a
  file next to the service and load it without code changes.

FILE SCHEMA (YAML shown, JSON uses the same keys):
  version: 3
  factors:
    - id: education
      label: Education
      options:
        - {value: 1, label: High school, score: 50}
        - {value: 2, label: Diploma, score: 100}
    - id: experience
      ...

  Factors are listed in display order. A missing version defaults to 1.

USAGE:
  f := factory.NewFactorFactory()
  m, err := f.LoadFile("factors.yaml")

  // Back to a file
  data, err := f.Marshal(m, factory.FormatYAML)

SEE ALSO:
  - point/factors.go: FactorMap definition and validation
  - templates.go: Organisation templates
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/warp/pay-structure/point"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// FILE SCHEMA TYPES
// =============================================================================

// FactorFile is the on-disk representation of a factor map.
type FactorFile struct {
	Version int          `json:"version,omitempty" yaml:"version,omitempty"`
	Factors []FactorJSON `json:"factors" yaml:"factors"`
}

// FactorJSON is one factor in a FactorFile.
type FactorJSON struct {
	ID      string               `json:"id" yaml:"id"`
	Label   string               `json:"label" yaml:"label"`
	Options []point.FactorOption `json:"options" yaml:"options"`
}

// Format selects the serialization of a factor file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension. Anything that is
// not .json is read as YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// =============================================================================
// FACTOR FACTORY
// =============================================================================

// FactorFactory converts factor files to point.FactorMap values.
type FactorFactory struct{}

// NewFactorFactory creates a new factor factory.
func NewFactorFactory() *FactorFactory {
	return &FactorFactory{}
}

// LoadFile reads and parses a factor file.
func (f *FactorFactory) LoadFile(path string) (point.FactorMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return point.FactorMap{}, fmt.Errorf("failed to read factor file: %w", err)
	}
	return f.Parse(data, FormatFromPath(path))
}

// Parse decodes data and validates the resulting map.
func (f *FactorFactory) Parse(data []byte, format Format) (point.FactorMap, error) {
	var ff FactorFile
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &ff)
	default:
		err = yaml.Unmarshal(data, &ff)
	}
	if err != nil {
		return point.FactorMap{}, fmt.Errorf("failed to parse factor file: %w", err)
	}
	return f.FromFile(ff)
}

// FromFile converts a FactorFile to a validated FactorMap.
func (f *FactorFactory) FromFile(ff FactorFile) (point.FactorMap, error) {
	m := point.FactorMap{
		Version: ff.Version,
		Factors: make(map[string]point.FactorDefinition, len(ff.Factors)),
	}
	if m.Version <= 0 {
		m.Version = 1
	}

	for _, fj := range ff.Factors {
		if fj.ID == "" {
			return point.FactorMap{}, fmt.Errorf("%w: factor without id", point.ErrInvalidFactor)
		}
		if _, dup := m.Factors[fj.ID]; dup {
			return point.FactorMap{}, fmt.Errorf("%w: factor %q listed twice", point.ErrInvalidFactor, fj.ID)
		}
		label := fj.Label
		if label == "" {
			label = fj.ID
		}
		m.AddFactor(point.FactorDefinition{
			ID:      fj.ID,
			Label:   label,
			Options: append([]point.FactorOption(nil), fj.Options...),
		})
	}

	if err := m.Validate(); err != nil {
		return point.FactorMap{}, err
	}
	return m, nil
}

// ToFile converts a FactorMap to its file representation.
func (f *FactorFactory) ToFile(m point.FactorMap) FactorFile {
	ff := FactorFile{Version: m.Version}
	for _, key := range m.Keys() {
		def := m.Factors[key]
		ff.Factors = append(ff.Factors, FactorJSON{
			ID:      def.ID,
			Label:   def.Label,
			Options: append([]point.FactorOption(nil), def.Options...),
		})
	}
	return ff
}

// Marshal encodes m in the given format.
func (f *FactorFactory) Marshal(m point.FactorMap, format Format) ([]byte, error) {
	ff := f.ToFile(m)
	if format == FormatJSON {
		return json.MarshalIndent(ff, "", "  ")
	}
	return yaml.Marshal(ff)
}
