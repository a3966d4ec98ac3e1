// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// MarshalJSON encodes the record as a JSON object in field order. Scalar
// values encode as strings, list values as arrays of strings.
func (r *Record) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, code := range r.codes {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(code)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')

		v := r.fields[code]
		var val []byte
		if v.list {
			val, err = json.Marshal(v.parts)
		} else {
			val, err = json.Marshal(v.String())
		}
		if err != nil {
			return nil, err
		}
		b.Write(val)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the record, preserving key
// order. Values must be strings or arrays of strings; anything else is a
// parse error.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("parsing record: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("parsing record: expected object, got %v", tok)
	}

	r.codes = nil
	r.fields = make(map[string]Value)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("parsing record: %w", err)
		}
		code := keyTok.(string)

		valTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("parsing record field %s: %w", code, err)
		}
		switch v := valTok.(type) {
		case string:
			r.SetString(code, v)
		case json.Delim:
			if v != '[' {
				return fmt.Errorf("parsing record field %s: expected string or array", code)
			}
			var parts []string
			for dec.More() {
				partTok, err := dec.Token()
				if err != nil {
					return fmt.Errorf("parsing record field %s: %w", code, err)
				}
				part, ok := partTok.(string)
				if !ok {
					return fmt.Errorf("parsing record field %s: array element is not a string", code)
				}
				parts = append(parts, part)
			}
			if _, err := dec.Token(); err != nil { // closing ']'
				return fmt.Errorf("parsing record field %s: %w", code, err)
			}
			r.SetList(code, parts)
		default:
			return fmt.Errorf("parsing record field %s: expected string or array, got %v", code, valTok)
		}
	}

	if _, err := dec.Token(); err != nil { // closing '}'
		return fmt.Errorf("parsing record: %w", err)
	}
	return nil
}

// Save writes the collection to path as a JSON array of field-mapping
// objects. Records marked for exclusion are omitted; the in-memory
// collection is unchanged. The write is a whole-file rewrite.
func (c *Collection) Save(path string) error {
	kept := make([]*Record, 0, len(c.recs))
	for i, r := range c.recs {
		if !c.IsMarked(i) {
			kept = append(kept, r)
		}
	}

	data, err := json.MarshalIndent(kept, "", "    ")
	if err != nil {
		return fmt.Errorf("marshaling records: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing records to %s: %w", path, err)
	}
	return nil
}

// Load reads a collection from a JSON file written by Save. A file that is
// not an array of field mappings fails with a parse error; there is no
// partial recovery.
func Load(path string) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading records from %s: %w", path, err)
	}

	var recs []*Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("parsing records from %s: %w", path, err)
	}
	return NewCollection(recs...)
}
