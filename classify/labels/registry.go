/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package labels

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Registry is an immutable bijection between label names and label ids.
type Registry struct {
	names []string
	ids   map[string]int
	byID  map[int]string
	pos   map[string]int
}

// LoadRegistry reads a labels.json side-file from path.
func LoadRegistry(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening label file: %w", err)
	}
	defer f.Close()

	reg, err := ParseRegistry(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return reg, nil
}

// registryFile is the on-disk shape of labels.json.
type registryFile struct {
	ID2Label map[string]string `json:"id2label"`
	Label2ID orderedIDs        `json:"label2id"`
}

// orderedIDs keeps every label2id entry, so repeated keys are reported
// instead of silently collapsing into one map entry.
type orderedIDs struct {
	names []string
	ids   []int
}

// UnmarshalJSON implements json.Unmarshaler
func (o *orderedIDs) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("label2id must be a JSON object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected label2id key %v", tok)
		}

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decoding id of %q: %w", name, err)
		}
		id, err := coerceID(raw)
		if err != nil {
			return fmt.Errorf("label2id[%q]: %w", name, err)
		}

		o.names = append(o.names, name)
		o.ids = append(o.ids, id)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// coerceID accepts both "3" and 3 as an id.
func coerceID(raw any) (int, error) {
	switch v := raw.(type) {
	case string:
		id, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("id %q is not an integer", v)
		}
		return id, nil
	case json.Number:
		id, err := strconv.Atoi(v.String())
		if err != nil {
			return 0, fmt.Errorf("id %s is not an integer", v)
		}
		return id, nil
	default:
		return 0, fmt.Errorf("id has unsupported type %T", raw)
	}
}

// ParseRegistry decodes a labels.json document and validates that
// id2label and label2id describe the same bijection.
func ParseRegistry(r io.Reader) (*Registry, error) {
	var file registryFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decoding labels: %w", err)
	}

	n := len(file.Label2ID.names)
	if n == 0 {
		return nil, errors.New("label2id is empty")
	}
	if len(file.ID2Label) != n {
		return nil, fmt.Errorf("id2label has %d entries, label2id has %d", len(file.ID2Label), n)
	}

	reg := &Registry{
		names: make([]string, 0, n),
		ids:   make(map[string]int, n),
		byID:  make(map[int]string, n),
		pos:   make(map[string]int, n),
	}
	for k, name := range file.ID2Label {
		id, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			return nil, fmt.Errorf("id2label key %q is not an integer", k)
		}
		reg.byID[id] = name
	}

	for i, name := range file.Label2ID.names {
		id := file.Label2ID.ids[i]
		if _, dup := reg.ids[name]; dup {
			return nil, fmt.Errorf("label %q listed twice in label2id", name)
		}
		if id < 0 || id >= n {
			return nil, fmt.Errorf("label %q has id %d outside [0, %d)", name, id, n)
		}
		if got := reg.byID[id]; got != name {
			return nil, fmt.Errorf("id2label[%d] = %q, want %q", id, got, name)
		}
		reg.ids[name] = id
		reg.pos[name] = id
	}
	// ids are a permutation of [0, n), so position and id coincide.
	reg.names = reg.names[:n]
	for name, id := range reg.ids {
		reg.names[id] = name
	}
	return reg, nil
}

// NewRegistry builds a registry from names, assigning ids in order.
func NewRegistry(names ...string) (*Registry, error) {
	if len(names) == 0 {
		return nil, errors.New("no labels")
	}
	reg := &Registry{
		names: make([]string, 0, len(names)),
		ids:   make(map[string]int, len(names)),
		byID:  make(map[int]string, len(names)),
		pos:   make(map[string]int, len(names)),
	}
	for i, name := range names {
		if _, dup := reg.ids[name]; dup {
			return nil, fmt.Errorf("label %q listed twice", name)
		}
		reg.ids[name] = i
		reg.byID[i] = name
		reg.pos[name] = i
		reg.names = append(reg.names, name)
	}
	return reg, nil
}

// Len returns the number of labels.
func (r *Registry) Len() int {
	return len(r.names)
}

// Names returns the label names in registry order, which is id order:
// Names()[id] is the name of id.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// ID returns the id of name.
func (r *Registry) ID(name string) (int, bool) {
	id, ok := r.ids[name]
	return id, ok
}

// Name returns the name with the given id.
func (r *Registry) Name(id int) (string, bool) {
	name, ok := r.byID[id]
	return name, ok
}

// Position returns the index of name in registry order.
func (r *Registry) Position(name string) (int, bool) {
	p, ok := r.pos[name]
	return p, ok
}

// ID2Label returns a copy of the id to name mapping.
func (r *Registry) ID2Label() map[int]string {
	out := make(map[int]string, len(r.byID))
	for k, v := range r.byID {
		out[k] = v
	}
	return out
}

// Label2ID returns a copy of the name to id mapping.
func (r *Registry) Label2ID() map[string]int {
	out := make(map[string]int, len(r.ids))
	for k, v := range r.ids {
		out[k] = v
	}
	return out
}
