package fit

import (
	"github.com/elliotchance/orderedmap/v3"
	"github.com/twinfer/fit-plugin/pkg/profile"
)

type fieldDefinition struct {
	num      uint8
	size     int
	baseType BaseType
}

type developerFieldDefinition struct {
	num                uint8
	size               int
	developerDataIndex uint8
}

// messageDefinition is the content of one local message slot.
type messageDefinition struct {
	localMesgNum      uint8
	architecture      uint8
	endianness        Endianness
	globalMesgNum     uint16
	fields            []fieldDefinition
	developerFields   []developerFieldDefinition
	messageSize       int
	developerDataSize int

	// nil when the message is unknown and unknown data is excluded
	profile *profile.Message
}

// fieldValue carries a field through expansion and transformation.
type fieldValue struct {
	raw        any
	value      any
	fieldNum   uint8
	isSubField bool
	isExpanded bool

	// component targets collect values here until the queue drains
	invalid   uint64
	rawList   []any
	valueList []any
}

func (f *fieldValue) clone() *fieldValue {
	c := *f
	if arr, ok := f.raw.([]any); ok {
		c.raw = append([]any(nil), arr...)
	}
	return &c
}

// source is the raw value fed to a bit stream when the field is expanded.
func (f *fieldValue) source() any {
	if f.isExpanded && f.rawList != nil {
		return f.rawList
	}
	return f.raw
}

// fieldSet is the ordered working set of one data record.
type fieldSet struct {
	m *orderedmap.OrderedMap[string, *fieldValue]
}

func newFieldSet() *fieldSet {
	return &fieldSet{m: orderedmap.NewOrderedMap[string, *fieldValue]()}
}

func (s *fieldSet) Get(name string) (*fieldValue, bool) {
	return s.m.Get(name)
}

func (s *fieldSet) Set(name string, fv *fieldValue) {
	s.m.Set(name, fv)
}

func (s *fieldSet) Len() int {
	return s.m.Len()
}

// raw returns the raw value of name, or nil.
func (s *fieldSet) raw(name string) any {
	fv, ok := s.m.Get(name)
	if !ok {
		return nil
	}
	return fv.raw
}

func (s *fieldSet) each(fn func(name string, fv *fieldValue)) {
	for el := s.m.Front(); el != nil; el = el.Next() {
		fn(el.Key, el.Value)
	}
}
