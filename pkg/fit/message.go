package fit

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/elliotchance/orderedmap/v3"
)

// Message is one decoded data record: an ordered mapping from field name
// (or the decimal field number when the field is unknown) to its value.
type Message struct {
	Num             uint16
	Name            string
	DeveloperFields map[int]any

	fields *orderedmap.OrderedMap[string, any]
}

// NewMessage returns an empty message.
func NewMessage(num uint16, name string) *Message {
	return &Message{
		Num:    num,
		Name:   name,
		fields: orderedmap.NewOrderedMap[string, any](),
	}
}

// Get returns the value stored under key.
func (m *Message) Get(key string) (any, bool) {
	return m.fields.Get(key)
}

// Has reports whether key is present.
func (m *Message) Has(key string) bool {
	_, ok := m.fields.Get(key)
	return ok
}

// Set stores a value, keeping the original position of an existing key.
func (m *Message) Set(key string, value any) {
	m.fields.Set(key, value)
}

// Delete removes key.
func (m *Message) Delete(key string) {
	m.fields.Delete(key)
}

// Len returns the number of fields.
func (m *Message) Len() int {
	return m.fields.Len()
}

// Keys returns the field names in insertion order.
func (m *Message) Keys() []string {
	keys := make([]string, 0, m.fields.Len())
	for el := m.fields.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Key)
	}
	return keys
}

// Range calls fn for each field in order until fn returns false.
func (m *Message) Range(fn func(key string, value any) bool) {
	for el := m.fields.Front(); el != nil; el = el.Next() {
		if !fn(el.Key, el.Value) {
			return
		}
	}
}

// Map returns the fields as a plain map. Developer fields appear under
// "developerFields" when present.
func (m *Message) Map() map[string]any {
	out := make(map[string]any, m.fields.Len()+1)
	m.Range(func(k string, v any) bool {
		out[k] = v
		return true
	})
	if len(m.DeveloperFields) > 0 {
		dev := make(map[string]any, len(m.DeveloperFields))
		for k, v := range m.DeveloperFields {
			dev[strconv.Itoa(k)] = v
		}
		out["developerFields"] = dev
	}
	return out
}

// MarshalJSON writes the fields in decode order.
func (m *Message) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	writeKV := func(k string, v any) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, err := json.Marshal(k)
		if err != nil {
			return err
		}
		vb, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		return nil
	}

	var err error
	m.Range(func(k string, v any) bool {
		err = writeKV(k, v)
		return err == nil
	})
	if err != nil {
		return nil, err
	}

	if len(m.DeveloperFields) > 0 {
		if err := writeKV("developerFields", m.DeveloperFields); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
