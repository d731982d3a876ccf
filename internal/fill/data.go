package fill

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Data is the caller's logical-field-name -> value map with a remembered key
// order. Mapper tie-breaks depend on caller key order, so plain Go maps are
// not enough.
type Data struct {
	keys   []string
	values map[string]string
}

func NewData() *Data {
	return &Data{values: map[string]string{}}
}

func (d *Data) Set(key, value string) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

func (d *Data) Get(key string) (string, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Keys returns the caller-supplied key order.
func (d *Data) Keys() []string {
	return append([]string(nil), d.keys...)
}

func (d *Data) Len() int {
	return len(d.keys)
}

// DataFromMap builds a Data with sorted keys. Use DataFromJSON when the
// original document order matters.
func DataFromMap(m map[string]string) *Data {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	d := NewData()
	for _, k := range keys {
		d.Set(k, m[k])
	}
	return d
}

// DataFromJSON decodes a flat JSON object preserving its document key order.
func DataFromJSON(raw []byte) (*Data, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("data must be a flat JSON object")
	}
	d := NewData()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode data key: %w", err)
		}
		key := keyTok.(string)
		var val any
		if err := dec.Decode(&val); err != nil {
			return nil, fmt.Errorf("decode value for %q: %w", key, err)
		}
		switch v := val.(type) {
		case string:
			d.Set(key, v)
		case json.Number:
			d.Set(key, v.String())
		case bool:
			d.Set(key, fmt.Sprintf("%t", v))
		default:
			return nil, fmt.Errorf("value for %q must be scalar", key)
		}
	}
	return d, nil
}
