package locale

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sudokufaceoff/faceoff/internal/fileutils"
	"github.com/ubuntu/decorate"
)

// ErrNotObject is returned when a locale file does not hold a single JSON object.
var ErrNotObject = errors.New("locale file is not a JSON object")

// Document is a locale file kept as its original bytes.
//
// Top-level string fields can be rewritten in place. Every other byte of the file, key order
// and formatting included, is written back unchanged.
type Document struct {
	data   []byte
	fields []docField
}

// docField is the span of a top-level value in the original bytes.
type docField struct {
	key        string
	start, end int
	// value replaces data[start:end] when not nil.
	value []byte
}

// ParseDocument indexes the top-level fields of the JSON object in data.
func ParseDocument(data []byte) (d *Document, err error) {
	defer decorate.OnError(&err, "couldn't parse JSON")

	dec := json.NewDecoder(bytes.NewReader(data))
	t, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := t.(json.Delim); !ok || delim != '{' {
		return nil, ErrNotObject
	}

	d = &Document{data: data}
	for dec.More() {
		t, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := t.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", t)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		end := int(dec.InputOffset())
		d.fields = append(d.fields, docField{key: key, start: end - len(raw), end: end})
	}

	// Closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected data after the object", ErrNotObject)
	}
	return d, nil
}

// LoadDocument reads the locale file at path as a Document.
func LoadDocument(path string) (d *Document, err error) {
	defer decorate.OnError(&err, "could not load locale file %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDocument(data)
}

// RewriteString passes every string value of key to fn and keeps its result when fn reports
// at least one change. It returns the sum of the changes fn reported.
// Values of key that are not strings are left untouched.
func (d *Document) RewriteString(key string, fn func(string) (string, int)) (int, error) {
	var total int
	for i := range d.fields {
		f := &d.fields[i]
		if f.key != key {
			continue
		}

		cur := f.value
		if cur == nil {
			cur = d.data[f.start:f.end]
		}
		if len(cur) == 0 || cur[0] != '"' {
			continue
		}
		var s string
		if err := json.Unmarshal(cur, &s); err != nil {
			return total, fmt.Errorf("could not decode %s: %v", key, err)
		}

		out, n := fn(s)
		if n == 0 {
			continue
		}
		v, err := marshalNoEscape(out)
		if err != nil {
			return total, fmt.Errorf("could not encode %s: %v", key, err)
		}
		f.value = v
		total += n
	}
	return total, nil
}

// Bytes returns the document with its rewritten values.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	prev := 0
	for _, f := range d.fields {
		if f.value == nil {
			continue
		}
		buf.Write(d.data[prev:f.start])
		buf.Write(f.value)
		prev = f.end
	}
	buf.Write(d.data[prev:])
	return buf.Bytes()
}

// Save atomically writes the document to path.
func (d *Document) Save(path string) (err error) {
	defer decorate.OnError(&err, "could not save locale file %s", path)

	return fileutils.AtomicWrite(path, d.Bytes())
}
