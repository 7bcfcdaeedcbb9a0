/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package evals

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"chainguard.dev/textclassify/classify/labels"
	"chainguard.dev/textclassify/classify/trainer"
)

// Metric names reported for classification problems.
const (
	MetricAccuracy  = "accuracy"
	MetricPrecision = "precision"
	MetricRecall    = "recall"
	MetricF1        = "f1_score"
	MetricMSE       = "mse"
	MetricMAE       = "mae"
)

// ErrNoExamples is returned when there is nothing to score.
var ErrNoExamples = errors.New("no examples to score")

// Scores are precision, recall and F1 for one label or one average.
type Scores struct {
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// counts are the binary decision counts of one label.
type counts struct {
	tp, fp, fn int
}

func (c counts) scores() Scores {
	s := Scores{Support: c.tp + c.fn}
	if d := c.tp + c.fp; d > 0 {
		s.Precision = float64(c.tp) / float64(d)
	}
	if d := c.tp + c.fn; d > 0 {
		s.Recall = float64(c.tp) / float64(d)
	}
	if d := 2*c.tp + c.fp + c.fn; d > 0 {
		s.F1 = float64(2*c.tp) / float64(d)
	}
	return s
}

// weighted averages per-label scores by support.
func weighted(per []Scores) Scores {
	var out Scores
	for _, s := range per {
		w := float64(s.Support)
		out.Precision += w * s.Precision
		out.Recall += w * s.Recall
		out.F1 += w * s.F1
		out.Support += s.Support
	}
	if out.Support == 0 {
		return Scores{}
	}
	total := float64(out.Support)
	out.Precision /= total
	out.Recall /= total
	out.F1 /= total
	return out
}

// macro is the unweighted mean of per-label scores.
func macro(per []Scores) Scores {
	var out Scores
	if len(per) == 0 {
		return out
	}
	for _, s := range per {
		out.Precision += s.Precision
		out.Recall += s.Recall
		out.F1 += s.F1
		out.Support += s.Support
	}
	n := float64(len(per))
	out.Precision /= n
	out.Recall /= n
	out.F1 /= n
	return out
}

// Accuracy is the fraction of equal entries.
func Accuracy(gold, pred []int) (float64, error) {
	if err := sameLength(len(gold), len(pred)); err != nil {
		return 0, err
	}
	hits := 0
	for i := range gold {
		if gold[i] == pred[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(gold)), nil
}

// SubsetAccuracy is the fraction of rows whose label sets match exactly.
func SubsetAccuracy(gold, pred [][]bool) (float64, error) {
	if err := sameShape(gold, pred); err != nil {
		return 0, err
	}
	hits := 0
	for i := range gold {
		match := true
		for j := range gold[i] {
			if gold[i][j] != pred[i][j] {
				match = false
				break
			}
		}
		if match {
			hits++
		}
	}
	return float64(hits) / float64(len(gold)), nil
}

// singleLabelCounts returns per-class counts for each class id in classes.
func singleLabelCounts(gold, pred []int, classes []int) []counts {
	idx := make(map[int]int, len(classes))
	for i, c := range classes {
		idx[c] = i
	}
	out := make([]counts, len(classes))
	for i := range gold {
		g, p := gold[i], pred[i]
		if g == p {
			if k, ok := idx[g]; ok {
				out[k].tp++
			}
			continue
		}
		if k, ok := idx[p]; ok {
			out[k].fp++
		}
		if k, ok := idx[g]; ok {
			out[k].fn++
		}
	}
	return out
}

// multiLabelCounts returns per-label counts over (example, label) decisions.
func multiLabelCounts(gold, pred [][]bool) []counts {
	if len(gold) == 0 {
		return nil
	}
	out := make([]counts, len(gold[0]))
	for i := range gold {
		for j := range gold[i] {
			switch g, p := gold[i][j], pred[i][j]; {
			case g && p:
				out[j].tp++
			case p:
				out[j].fp++
			case g:
				out[j].fn++
			}
		}
	}
	return out
}

// presentClasses returns the sorted ids occurring in gold or pred.
func presentClasses(gold, pred []int) []int {
	seen := map[int]struct{}{}
	for _, v := range gold {
		seen[v] = struct{}{}
	}
	for _, v := range pred {
		seen[v] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// WeightedSingleLabel averages per-class scores over the classes present
// in gold or pred, weighted by gold support.
func WeightedSingleLabel(gold, pred []int) (Scores, error) {
	if err := sameLength(len(gold), len(pred)); err != nil {
		return Scores{}, err
	}
	per := scoresOf(singleLabelCounts(gold, pred, presentClasses(gold, pred)))
	return weighted(per), nil
}

// WeightedMultiLabel averages per-label scores weighted by gold support.
func WeightedMultiLabel(gold, pred [][]bool) (Scores, error) {
	if err := sameShape(gold, pred); err != nil {
		return Scores{}, err
	}
	return weighted(scoresOf(multiLabelCounts(gold, pred))), nil
}

func scoresOf(cs []counts) []Scores {
	out := make([]Scores, len(cs))
	for i, c := range cs {
		out[i] = c.scores()
	}
	return out
}

// ComputeMetrics returns the metrics callback for problem. threshold only
// applies to multi-label problems.
func ComputeMetrics(problem labels.ProblemType, threshold float64) trainer.MetricsFunc {
	return func(p trainer.EvalPrediction) (trainer.Metrics, error) {
		switch problem {
		case labels.SingleLabel:
			return singleLabelMetrics(p)
		case labels.MultiLabel:
			return multiLabelMetrics(p, threshold)
		case labels.Regression:
			return regressionMetrics(p)
		default:
			return nil, fmt.Errorf("unsupported problem type %v", problem)
		}
	}
}

func singleLabelMetrics(p trainer.EvalPrediction) (trainer.Metrics, error) {
	gold, err := GoldIDs(p.LabelIDs)
	if err != nil {
		return nil, err
	}
	pred := Argmax(p.Predictions)

	acc, err := Accuracy(gold, pred)
	if err != nil {
		return nil, err
	}
	w, err := WeightedSingleLabel(gold, pred)
	if err != nil {
		return nil, err
	}
	return classificationMetrics(acc, w), nil
}

// multiLabelMetrics reports exact-match accuracy: an example counts only
// when every label decision is right. P/R/F1 score each (example, label) pair.
func multiLabelMetrics(p trainer.EvalPrediction, threshold float64) (trainer.Metrics, error) {
	gold := GoldBools(p.LabelIDs)
	pred := Threshold(p.Predictions, threshold)

	acc, err := SubsetAccuracy(gold, pred)
	if err != nil {
		return nil, err
	}
	w, err := WeightedMultiLabel(gold, pred)
	if err != nil {
		return nil, err
	}
	return classificationMetrics(acc, w), nil
}

func classificationMetrics(acc float64, w Scores) trainer.Metrics {
	return trainer.Metrics{
		MetricAccuracy:  acc,
		MetricPrecision: w.Precision,
		MetricRecall:    w.Recall,
		MetricF1:        w.F1,
	}
}

func regressionMetrics(p trainer.EvalPrediction) (trainer.Metrics, error) {
	if err := sameLength(len(p.LabelIDs), len(p.Predictions)); err != nil {
		return nil, err
	}
	var se, ae float64
	for i := range p.LabelIDs {
		if len(p.LabelIDs[i]) != 1 || len(p.Predictions[i]) != 1 {
			return nil, fmt.Errorf("row %d: regression expects one value per example", i)
		}
		d := p.Predictions[i][0] - p.LabelIDs[i][0]
		se += d * d
		ae += math.Abs(d)
	}
	n := float64(len(p.LabelIDs))
	return trainer.Metrics{MetricMSE: se / n, MetricMAE: ae / n}, nil
}

func sameLength(gold, pred int) error {
	if gold != pred {
		return fmt.Errorf("%d gold rows but %d predictions", gold, pred)
	}
	if gold == 0 {
		return ErrNoExamples
	}
	return nil
}

func sameShape(gold, pred [][]bool) error {
	if err := sameLength(len(gold), len(pred)); err != nil {
		return err
	}
	width := len(gold[0])
	for i := range gold {
		if len(gold[i]) != width || len(pred[i]) != width {
			return fmt.Errorf("row %d: got %d gold and %d predicted labels, want %d", i, len(gold[i]), len(pred[i]), width)
		}
	}
	return nil
}
