/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package labels

import "fmt"

// ProblemType selects how labels are encoded and predictions reduced.
type ProblemType int

const (
	// SingleLabel: each example has exactly one class.
	SingleLabel ProblemType = iota
	// MultiLabel: each example has zero or more classes.
	MultiLabel
	// Regression: each example has a real-valued target.
	Regression
)

var problemNames = map[ProblemType]string{
	SingleLabel: "single_label_classification",
	MultiLabel:  "multi_label_classification",
	Regression:  "regression",
}

// ParseProblemType parses the framework spelling of a problem type.
func ParseProblemType(s string) (ProblemType, error) {
	for p, name := range problemNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown problem type %q (want single_label_classification, multi_label_classification or regression)", s)
}

func (p ProblemType) String() string {
	if name, ok := problemNames[p]; ok {
		return name
	}
	return fmt.Sprintf("ProblemType(%d)", int(p))
}

// Set implements pflag.Value
func (p *ProblemType) Set(s string) error {
	v, err := ParseProblemType(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Type implements pflag.Value
func (p *ProblemType) Type() string {
	return "problem-type"
}

// MarshalText implements encoding.TextMarshaler
func (p ProblemType) MarshalText() ([]byte, error) {
	if _, ok := problemNames[p]; !ok {
		return nil, fmt.Errorf("invalid problem type %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *ProblemType) UnmarshalText(b []byte) error {
	return p.Set(string(b))
}

// IsClassification reports whether the problem has discrete labels.
func (p ProblemType) IsClassification() bool {
	return p == SingleLabel || p == MultiLabel
}
