// Package profile provides the FIT profile database: message and field
// metadata keyed by number, and the named enum tables used to turn raw
// values into strings.
//
// The database is described in YAML. Default returns the profile embedded
// in this package; Load and LoadFile read alternative or extended profiles.
package profile

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed profile.yaml
var defaultProfileYAML []byte

// Profile is an immutable lookup table built from a YAML document.
type Profile struct {
	Version  string              `yaml:"version"`
	Types    map[string]EnumDef  `yaml:"types"`
	Messages []*Message          `yaml:"messages"`
	byNum    map[uint16]*Message `yaml:"-"`
	byName   map[string]*Message `yaml:"-"`
	enums    *EnumRegistry       `yaml:"-"`
}

// EnumDef maps raw values of a named type to their string names.
type EnumDef map[int64]string

// Message describes one global message.
type Message struct {
	Num         uint16           `yaml:"num"`
	Name        string           `yaml:"name"`
	MessagesKey string           `yaml:"messagesKey"`
	FieldList   []*Field         `yaml:"fields"`
	Fields      map[uint8]*Field `yaml:"-"`
}

// Field describes one field of a message.
type Field struct {
	Num         uint8       `yaml:"num"`
	Name        string      `yaml:"name"`
	Type        string      `yaml:"type"`
	BaseType    string      `yaml:"baseType"`
	Array       bool        `yaml:"array,omitempty"`
	Scale       Float64s    `yaml:"scale,omitempty"`
	Offset      Float64s    `yaml:"offset,omitempty"`
	Units       string      `yaml:"units,omitempty"`
	Bits        []int       `yaml:"bits,omitempty"`
	Components  []uint8     `yaml:"components,omitempty"`
	Accumulate  []bool      `yaml:"accumulate,omitempty"`
	Accumulated bool        `yaml:"accumulated,omitempty"`
	SubFields   []*SubField `yaml:"subFields,omitempty"`
}

// SubField is an alternate interpretation of a field, selected by the raw
// value of a sibling field.
type SubField struct {
	Name       string      `yaml:"name"`
	Type       string      `yaml:"type"`
	BaseType   string      `yaml:"baseType"`
	Array      bool        `yaml:"array,omitempty"`
	Scale      Float64s    `yaml:"scale,omitempty"`
	Offset     Float64s    `yaml:"offset,omitempty"`
	Units      string      `yaml:"units,omitempty"`
	Bits       []int       `yaml:"bits,omitempty"`
	Components []uint8     `yaml:"components,omitempty"`
	Accumulate []bool      `yaml:"accumulate,omitempty"`
	Map        []Reference `yaml:"map"`
}

// Reference selects a sub-field when the named field holds Value.
type Reference struct {
	Name  string `yaml:"name"`
	Value int64  `yaml:"value"`
}

// Float64s accepts either a scalar or a list in YAML.
type Float64s []float64

// UnmarshalYAML handles both "scale: 5" and "scale: [5, 1]".
func (f *Float64s) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var v float64
		if err := value.Decode(&v); err != nil {
			return err
		}
		*f = Float64s{v}
		return nil
	}
	var list []float64
	if err := value.Decode(&list); err != nil {
		return err
	}
	*f = list
	return nil
}

// Spec is the interpretation shared by fields and sub-fields.
type Spec struct {
	Name       string
	Type       string
	Array      bool
	Scale      []float64
	Offset     []float64
	Units      string
	Bits       []int
	Components []uint8
	Accumulate []bool
}

// HasComponents reports whether the interpretation expands into other fields.
func (s Spec) HasComponents() bool {
	return len(s.Components) > 0
}

// ScaleAt returns the j-th scale, defaulting to 1.
func (s Spec) ScaleAt(j int) float64 {
	if j < len(s.Scale) {
		return s.Scale[j]
	}
	return 1
}

// OffsetAt returns the j-th offset, defaulting to 0.
func (s Spec) OffsetAt(j int) float64 {
	if j < len(s.Offset) {
		return s.Offset[j]
	}
	return 0
}

// Spec returns the field's own interpretation.
func (f *Field) Spec() Spec {
	return Spec{
		Name:       f.Name,
		Type:       f.Type,
		Array:      f.Array,
		Scale:      f.Scale,
		Offset:     f.Offset,
		Units:      f.Units,
		Bits:       f.Bits,
		Components: f.Components,
		Accumulate: f.Accumulate,
	}
}

// HasComponents reports whether the field expands into other fields.
func (f *Field) HasComponents() bool {
	return len(f.Components) > 0
}

// SubField returns the sub-field with the given name.
func (f *Field) SubField(name string) (*SubField, bool) {
	for _, sf := range f.SubFields {
		if sf.Name == name {
			return sf, true
		}
	}
	return nil, false
}

// Spec returns the sub-field interpretation.
func (s *SubField) Spec() Spec {
	return Spec{
		Name:       s.Name,
		Type:       s.Type,
		Array:      s.Array,
		Scale:      s.Scale,
		Offset:     s.Offset,
		Units:      s.Units,
		Bits:       s.Bits,
		Components: s.Components,
		Accumulate: s.Accumulate,
	}
}

// HasComponents reports whether the sub-field expands into other fields.
func (s *SubField) HasComponents() bool {
	return len(s.Components) > 0
}

// Field returns the field with the given number.
func (m *Message) Field(num uint8) (*Field, bool) {
	f, ok := m.Fields[num]
	return f, ok
}

// FieldByName returns the field with the given name.
func (m *Message) FieldByName(name string) (*Field, bool) {
	for _, f := range m.FieldList {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// NewUnknownMessage describes a message absent from the profile. Its name
// and collection key are the decimal message number.
func NewUnknownMessage(num uint16) *Message {
	name := strconv.Itoa(int(num))
	return &Message{
		Num:         num,
		Name:        name,
		MessagesKey: name,
		Fields:      map[uint8]*Field{},
	}
}

// Load parses a YAML profile.
func Load(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}
	if err := p.index(); err != nil {
		return nil, err
	}
	return &p, nil
}

// LoadFile reads and parses a YAML profile from disk.
func LoadFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile file: %w", err)
	}
	return Load(data)
}

var (
	defaultOnce    sync.Once
	defaultProfile *Profile
	defaultErr     error
)

// Default returns the embedded profile. It panics if the embedded YAML is malformed.
func Default() *Profile {
	defaultOnce.Do(func() {
		defaultProfile, defaultErr = Load(defaultProfileYAML)
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("embedded FIT profile: %v", defaultErr))
	}
	return defaultProfile
}

func (p *Profile) index() error {
	p.byNum = make(map[uint16]*Message, len(p.Messages))
	p.byName = make(map[string]*Message, len(p.Messages))
	p.enums = NewEnumRegistry()

	for _, m := range p.Messages {
		if m.Name == "" {
			return fmt.Errorf("message %d has no name", m.Num)
		}
		if _, dup := p.byNum[m.Num]; dup {
			return fmt.Errorf("duplicate message number %d", m.Num)
		}
		if m.MessagesKey == "" {
			m.MessagesKey = m.Name + "Mesgs"
		}
		m.Fields = make(map[uint8]*Field, len(m.FieldList))
		for _, f := range m.FieldList {
			if _, dup := m.Fields[f.Num]; dup {
				return fmt.Errorf("message %s: duplicate field number %d", m.Name, f.Num)
			}
			if len(f.Bits) != len(f.Components) {
				return fmt.Errorf("message %s field %s: %d bits for %d components", m.Name, f.Name, len(f.Bits), len(f.Components))
			}
			for _, sf := range f.SubFields {
				if len(sf.Bits) != len(sf.Components) {
					return fmt.Errorf("message %s sub-field %s: %d bits for %d components", m.Name, sf.Name, len(sf.Bits), len(sf.Components))
				}
			}
			m.Fields[f.Num] = f
		}
		p.byNum[m.Num] = m
		p.byName[m.Name] = m
	}

	for name, def := range p.Types {
		p.enums.Register(name, def)
	}
	return nil
}

// MessageByNumber resolves a global message number.
func (p *Profile) MessageByNumber(num uint16) (*Message, bool) {
	m, ok := p.byNum[num]
	return m, ok
}

// MessageByName resolves a message by its camelCase name.
func (p *Profile) MessageByName(name string) (*Message, bool) {
	m, ok := p.byName[name]
	return m, ok
}

// TypeEnumByName returns the value to name table of a named type.
func (p *Profile) TypeEnumByName(name string) (map[int64]string, bool) {
	return p.enums.Get(name)
}

// Enums exposes the registry of named types.
func (p *Profile) Enums() *EnumRegistry {
	return p.enums
}

// VersionNumber packs a "major.minor" version as major*1000+minor, the form
// carried in FIT file headers. It returns 0 when the version is missing or
// malformed.
func (p *Profile) VersionNumber() uint16 {
	major, minor, ok := strings.Cut(p.Version, ".")
	if !ok {
		return 0
	}
	ma, err := strconv.Atoi(major)
	if err != nil {
		return 0
	}
	mi, err := strconv.Atoi(minor)
	if err != nil || mi < 0 || mi > 999 {
		return 0
	}
	v := ma*1000 + mi
	if v < 0 || v > 0xFFFF {
		return 0
	}
	return uint16(v)
}

// MessageNumbers lists the known message numbers in ascending order.
func (p *Profile) MessageNumbers() []uint16 {
	nums := make([]uint16, 0, len(p.byNum))
	for n := range p.byNum {
		nums = append(nums, n)
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
	return nums
}
