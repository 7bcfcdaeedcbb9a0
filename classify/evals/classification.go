/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import "fmt"

// Average row names of a ClassificationReport.
const (
	AvgMicro    = "micro avg"
	AvgMacro    = "macro avg"
	AvgWeighted = "weighted avg"
	AvgSamples  = "samples avg"
)

// ClassScores are the scores of one class.
type ClassScores struct {
	Name string
	Scores
}

// Average is one summary row of a ClassificationReport.
type Average struct {
	Name string
	Scores
}

// ClassificationReport holds per-class scores and summary rows.
type ClassificationReport struct {
	Classes []ClassScores
	// Accuracy is set for single-label reports where every class occurs in
	// gold or predictions. Otherwise a micro average row is reported.
	Accuracy *float64
	// Total is the number of examples.
	Total    int
	Averages []Average
}

// ClassifySingleLabel builds the report for single-label ids over the
// classes named by names, indexed by id.
func ClassifySingleLabel(gold, pred []int, names []string) (*ClassificationReport, error) {
	if err := sameLength(len(gold), len(pred)); err != nil {
		return nil, err
	}
	ids := make([]int, len(names))
	for i := range ids {
		ids[i] = i
	}
	cs := singleLabelCounts(gold, pred, ids)
	per := scoresOf(cs)

	r := &ClassificationReport{Total: len(gold)}
	for i, s := range per {
		r.Classes = append(r.Classes, ClassScores{Name: names[i], Scores: s})
	}

	if len(presentClasses(gold, pred)) == len(names) {
		acc, err := Accuracy(gold, pred)
		if err != nil {
			return nil, err
		}
		r.Accuracy = &acc
	} else {
		r.Averages = append(r.Averages, Average{Name: AvgMicro, Scores: micro(cs)})
	}
	r.Averages = append(r.Averages,
		Average{Name: AvgMacro, Scores: macro(per)},
		Average{Name: AvgWeighted, Scores: weighted(per)},
	)
	return r, nil
}

// ClassifyMultiLabel builds the report for multi-label decisions with one
// column per name.
func ClassifyMultiLabel(gold, pred [][]bool, names []string) (*ClassificationReport, error) {
	if err := sameShape(gold, pred); err != nil {
		return nil, err
	}
	if len(gold[0]) != len(names) {
		return nil, fmt.Errorf("got %d label columns for %d names", len(gold[0]), len(names))
	}
	cs := multiLabelCounts(gold, pred)
	per := scoresOf(cs)

	r := &ClassificationReport{Total: len(gold)}
	for i, s := range per {
		r.Classes = append(r.Classes, ClassScores{Name: names[i], Scores: s})
	}
	r.Averages = []Average{
		{Name: AvgMicro, Scores: micro(cs)},
		{Name: AvgMacro, Scores: macro(per)},
		{Name: AvgWeighted, Scores: weighted(per)},
		{Name: AvgSamples, Scores: samples(gold, pred)},
	}
	return r, nil
}

// micro pools the counts of every class.
func micro(cs []counts) Scores {
	var total counts
	for _, c := range cs {
		total.tp += c.tp
		total.fp += c.fp
		total.fn += c.fn
	}
	return total.scores()
}

// samples averages the scores of each example's label set.
func samples(gold, pred [][]bool) Scores {
	var out Scores
	for i := range gold {
		var c counts
		for j := range gold[i] {
			switch g, p := gold[i][j], pred[i][j]; {
			case g && p:
				c.tp++
			case p:
				c.fp++
			case g:
				c.fn++
			}
		}
		s := c.scores()
		out.Precision += s.Precision
		out.Recall += s.Recall
		out.F1 += s.F1
		out.Support += s.Support
	}
	n := float64(len(gold))
	out.Precision /= n
	out.Recall /= n
	out.F1 /= n
	return out
}
