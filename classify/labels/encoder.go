/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package labels

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownLabel is wrapped by every UnknownLabelError.
var ErrUnknownLabel = errors.New("unknown label")

// UnknownLabelError reports a label name or id missing from the registry.
type UnknownLabelError struct {
	Name string
	ID   int
}

func (e *UnknownLabelError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("unknown label %q", e.Name)
	}
	return fmt.Sprintf("unknown label id %d", e.ID)
}

func (e *UnknownLabelError) Unwrap() error {
	return ErrUnknownLabel
}

// Target is an encoded training target. Which field is meaningful depends
// on the problem type of the Encoder that produced it.
type Target struct {
	// ID is the single-label class id.
	ID int
	// Hot is the multi-label multi-hot vector in registry order.
	Hot []int
	// Value is the regression target.
	Value float64
}

// Encoder converts label cells to targets and back.
type Encoder interface {
	// Problem returns the problem type handled by the encoder.
	Problem() ProblemType
	// Encode converts a raw label cell into a target.
	Encode(raw string) (Target, error)
	// Decode renders a target the way it appears in prediction files.
	Decode(t Target) (string, error)
	// Floats returns the numeric form of t handed to the trainer.
	Floats(t Target) []float64
}

// NewEncoder returns the encoder for problem.
func NewEncoder(problem ProblemType, reg *Registry) (Encoder, error) {
	switch problem {
	case SingleLabel:
		if reg == nil {
			return nil, errors.New("single-label encoding needs a label registry")
		}
		return &singleLabel{reg: reg}, nil
	case MultiLabel:
		if reg == nil {
			return nil, errors.New("multi-label encoding needs a label registry")
		}
		return &multiLabel{bin: NewBinarizer(reg)}, nil
	case Regression:
		return regression{}, nil
	default:
		return nil, fmt.Errorf("unsupported problem type %v", problem)
	}
}

type singleLabel struct {
	reg *Registry
}

func (*singleLabel) Problem() ProblemType { return SingleLabel }

func (s *singleLabel) Encode(raw string) (Target, error) {
	id, ok := s.reg.ID(raw)
	if !ok {
		return Target{}, &UnknownLabelError{Name: raw}
	}
	return Target{ID: id}, nil
}

func (s *singleLabel) Decode(t Target) (string, error) {
	name, ok := s.reg.Name(t.ID)
	if !ok {
		return "", &UnknownLabelError{ID: t.ID}
	}
	return name, nil
}

func (*singleLabel) Floats(t Target) []float64 {
	return []float64{float64(t.ID)}
}

type multiLabel struct {
	bin *Binarizer
}

func (*multiLabel) Problem() ProblemType { return MultiLabel }

func (m *multiLabel) Encode(raw string) (Target, error) {
	names, err := ParseLabelList(raw)
	if err != nil {
		return Target{}, err
	}
	hot, err := m.bin.Transform(names)
	if err != nil {
		return Target{}, err
	}
	return Target{Hot: hot}, nil
}

func (m *multiLabel) Decode(t Target) (string, error) {
	if len(t.Hot) != m.bin.reg.Len() {
		return "", fmt.Errorf("multi-hot vector has %d entries, want %d", len(t.Hot), m.bin.reg.Len())
	}
	present := make([]bool, len(t.Hot))
	for i, v := range t.Hot {
		present[i] = v == 1
	}
	return FormatLabelList(m.bin.InverseTransform(present)), nil
}

func (*multiLabel) Floats(t Target) []float64 {
	out := make([]float64, len(t.Hot))
	for i, v := range t.Hot {
		out[i] = float64(v)
	}
	return out
}

type regression struct{}

func (regression) Problem() ProblemType { return Regression }

func (regression) Encode(raw string) (Target, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return Target{}, fmt.Errorf("parsing regression target %q: %w", raw, err)
	}
	return Target{Value: v}, nil
}

func (regression) Decode(t Target) (string, error) {
	return strconv.FormatFloat(t.Value, 'g', -1, 64), nil
}

func (regression) Floats(t Target) []float64 {
	return []float64{t.Value}
}

// Binarizer converts label-name sets to multi-hot vectors in registry order.
type Binarizer struct {
	reg *Registry
}

// NewBinarizer returns a binarizer over the labels of reg.
func NewBinarizer(reg *Registry) *Binarizer {
	return &Binarizer{reg: reg}
}

// Classes returns the label names in vector order.
func (b *Binarizer) Classes() []string {
	return b.reg.Names()
}

// Transform returns the multi-hot vector for names. An empty set yields the
// all-zero vector.
func (b *Binarizer) Transform(names []string) ([]int, error) {
	hot := make([]int, b.reg.Len())
	for _, name := range names {
		p, ok := b.reg.Position(name)
		if !ok {
			return nil, &UnknownLabelError{Name: name}
		}
		hot[p] = 1
	}
	return hot, nil
}

// InverseTransform returns the names whose positions are set, in registry order.
func (b *Binarizer) InverseTransform(present []bool) []string {
	names := b.reg.Names()
	out := []string{}
	for i, set := range present {
		if set && i < len(names) {
			out = append(out, names[i])
		}
	}
	return out
}
