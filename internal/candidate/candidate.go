// Package candidate loads variant-graph candidates from JSON files.
//
// Candidates are opaque to the orchestrator: the raw object is passed through
// to the realignment tool unchanged. Only the identifier and an event-length
// estimate are read, for logging and for min-length filtering.
package candidate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// Record is one candidate as loaded from disk.
type Record struct {
	// Index is the position across all input files, before filtering.
	Index int

	// ID is the candidate identifier, or a synthetic one derived from Index.
	ID string

	// Length is the event-length estimate. 0 when nothing usable was found.
	Length int

	// Source is the file the candidate was read from.
	Source string

	// Data is the raw candidate object. Numbers are kept as json.Number so
	// they round-trip exactly.
	Data map[string]any
}

// LoadError reports a candidate file that could not be read or decoded.
type LoadError struct {
	Path  string
	Index int // element index within the file, -1 for file-level errors
	Err   error
}

func (e *LoadError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("candidate: %s: element %d: %v", e.Path, e.Index, e.Err)
	}
	return fmt.Sprintf("candidate: %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads every path in order and returns the flattened candidate
// sequence. Each file must hold a JSON array of objects; a single top-level
// object is accepted as a one-element array.
func Load(paths []string) ([]Record, error) {
	var records []Record
	for _, path := range paths {
		objs, err := readFile(path)
		if err != nil {
			return nil, err
		}
		for _, obj := range objs {
			idx := len(records)
			records = append(records, Record{
				Index:  idx,
				ID:     identifier(obj, idx),
				Length: EventLength(obj),
				Source: path,
				Data:   obj,
			})
		}
	}
	return records, nil
}

func readFile(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Index: -1, Err: err}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, &LoadError{Path: path, Index: -1, Err: fmt.Errorf("parse: %w", err)}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &LoadError{Path: path, Index: -1, Err: errors.New("parse: trailing data after JSON value")}
	}

	switch v := raw.(type) {
	case map[string]any:
		return []map[string]any{v}, nil
	case []any:
		objs := make([]map[string]any, 0, len(v))
		for i, el := range v {
			obj, ok := el.(map[string]any)
			if !ok {
				return nil, &LoadError{Path: path, Index: i, Err: fmt.Errorf("expected object, got %s", jsonKind(el))}
			}
			objs = append(objs, obj)
		}
		return objs, nil
	default:
		return nil, &LoadError{Path: path, Index: -1, Err: fmt.Errorf("expected array of candidates, got %s", jsonKind(raw))}
	}
}

func identifier(obj map[string]any, idx int) string {
	for _, key := range []string{"ID", "id"} {
		switch v := obj[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case json.Number:
			return v.String()
		}
	}
	return fmt.Sprintf("candidate-%d", idx)
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case json.Number, float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
