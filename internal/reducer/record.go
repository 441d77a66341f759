package reducer

import (
	"bytes"
	"encoding/json"
)

// Record is the reduced metadata of one file: an ordered mapping from
// metadata key to a JSON primitive or a list of JSON primitives.
type Record struct {
	keys   []string
	values map[string]interface{}
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]interface{})}
}

// Set stores value under key, keeping the position of an existing key.
func (r *Record) Set(key string, value interface{}) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (interface{}, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the record keys in insertion order.
func (r *Record) Keys() []string { return append([]string(nil), r.keys...) }

// Len returns the number of keys.
func (r *Record) Len() int { return len(r.keys) }

// Map returns a plain map copy of the record.
func (r *Record) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the record as an object with keys in insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Files maps absolute file paths to records, in first-seen order.
type Files struct {
	paths   []string
	records map[string]*Record
}

// NewFiles returns an empty file map.
func NewFiles() *Files {
	return &Files{records: make(map[string]*Record)}
}

// Add registers path with an empty record unless it is already present, and
// returns the record stored for path.
func (f *Files) Add(path string) *Record {
	if rec, ok := f.records[path]; ok {
		return rec
	}
	rec := NewRecord()
	f.paths = append(f.paths, path)
	f.records[path] = rec
	return rec
}

// Record returns the record of path, or nil.
func (f *Files) Record(path string) *Record { return f.records[path] }

// Paths returns the file paths in first-seen order.
func (f *Files) Paths() []string { return append([]string(nil), f.paths...) }

// Len returns the number of files.
func (f *Files) Len() int { return len(f.paths) }

// MarshalJSON encodes the files as an object with paths in first-seen order.
func (f *Files) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range f.paths {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		val, err := f.records[p].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
