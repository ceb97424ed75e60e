package entity

import (
	"bytes"
	"encoding/json"
	"strings"
	"sync"

	"github.com/joseph-ayodele/inquiry-intake/constants"
)

// Record is the schema-complete mapping from field name to value.
// Every schema field is always present; a field with no determined content
// holds constants.Unknown. Safe for concurrent use.
type Record struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewRecord returns a record with every schema field set to constants.Unknown.
func NewRecord() *Record {
	fields := constants.Fields()
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		values[f] = constants.Unknown
	}
	return &Record{values: values}
}

// RecordFromMap builds a record from m, ignoring non-schema keys.
func RecordFromMap(m map[string]string) *Record {
	r := NewRecord()
	for k, v := range m {
		r.Set(k, v)
	}
	return r
}

// Get returns the value stored for field.
func (r *Record) Get(field string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[field]
	return v, ok
}

// Set stores value under field and reports whether field is part of the schema.
// Blank values are stored as constants.Unknown.
func (r *Record) Set(field, value string) bool {
	if !constants.IsField(field) {
		return false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		value = constants.Unknown
	}
	r.mu.Lock()
	r.values[field] = value
	r.mu.Unlock()
	return true
}

// UnknownFields returns the fields currently holding the sentinel, in schema order.
func (r *Record) UnknownFields() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, f := range constants.Fields() {
		if r.values[f] == constants.Unknown {
			out = append(out, f)
		}
	}
	return out
}

// Map returns a copy of the record's values.
func (r *Record) Map() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Clone returns an independent copy.
func (r *Record) Clone() *Record {
	return &Record{values: r.Map()}
}

// MarshalJSON renders a flat object with keys in schema order.
func (r *Record) MarshalJSON() ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range constants.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[f])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts a flat object of strings; missing fields become the sentinel.
func (r *Record) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	fresh := RecordFromMap(m)
	r.mu.Lock()
	r.values = fresh.values
	r.mu.Unlock()
	return nil
}
