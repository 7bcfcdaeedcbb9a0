/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"chainguard.dev/textclassify/classify/evals"
	"chainguard.dev/textclassify/classify/labels"
)

// File names written under the output directory.
const (
	PredictionsFile = "predictions.txt"
	ReportFile      = "prediction_report.txt"
)

const readingHelp = "reading help:\nTN FP\nFN TP\n\n"

var rule = strings.Repeat("=", 75)

// WritePredictions writes the index/prediction table for targets.
func WritePredictions(w io.Writer, enc labels.Encoder, targets []labels.Target) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString("index\tprediction\n"); err != nil {
		return err
	}
	for i, t := range targets {
		s, err := enc.Decode(t)
		if err != nil {
			return fmt.Errorf("decoding prediction %d: %w", i, err)
		}
		if _, err := fmt.Fprintf(bw, "%d\t%s\n", i, s); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteReport writes confusion matrices and the classification report for
// a labeled classification split. names are the class names in registry
// order; scores and gold hold one row per example.
func WriteReport(w io.Writer, problem labels.ProblemType, names []string, gold, scores [][]float64, threshold float64) error {
	switch problem {
	case labels.SingleLabel:
		goldIDs, err := evals.GoldIDs(gold)
		if err != nil {
			return err
		}
		return writeSingleLabel(w, names, goldIDs, evals.Argmax(scores))
	case labels.MultiLabel:
		return writeMultiLabel(w, names, evals.GoldBools(gold), evals.Threshold(scores, threshold))
	default:
		return fmt.Errorf("no report for problem type %v", problem)
	}
}

func writeSingleLabel(w io.Writer, names []string, gold, pred []int) error {
	m, err := evals.ConfusionMatrix(gold, pred, len(names))
	if err != nil {
		return fmt.Errorf("building confusion matrix: %w", err)
	}
	cr, err := evals.ClassifySingleLabel(gold, pred, names)
	if err != nil {
		return fmt.Errorf("building classification report: %w", err)
	}

	if err := writeHeading(w, "Singlelabel Confusion Matrix"); err != nil {
		return err
	}
	if _, err := io.WriteString(w, readingHelp); err != nil {
		return err
	}

	headers := append([]string{"gold \\ predicted"}, names...)
	rows := make([][]string, len(m))
	for i, counts := range m {
		rows[i] = append([]string{names[i]}, itoas(counts)...)
	}
	if err := renderTable(w, headers, rows); err != nil {
		return fmt.Errorf("rendering confusion matrix: %w", err)
	}
	return writeClassification(w, cr)
}

func writeMultiLabel(w io.Writer, names []string, gold, pred [][]bool) error {
	ms, err := evals.MultilabelConfusionMatrix(gold, pred)
	if err != nil {
		return fmt.Errorf("building confusion matrices: %w", err)
	}
	cr, err := evals.ClassifyMultiLabel(gold, pred, names)
	if err != nil {
		return fmt.Errorf("building classification report: %w", err)
	}

	if err := writeHeading(w, "Multilabel Confusion Matrix"); err != nil {
		return err
	}
	if _, err := io.WriteString(w, readingHelp); err != nil {
		return err
	}
	for i, m := range ms {
		if _, err := fmt.Fprintf(w, "%s\n", names[i]); err != nil {
			return err
		}
		rows := [][]string{
			{"gold 0", strconv.Itoa(m.TN()), strconv.Itoa(m.FP())},
			{"gold 1", strconv.Itoa(m.FN()), strconv.Itoa(m.TP())},
		}
		if err := renderTable(w, []string{"", "predicted 0", "predicted 1"}, rows); err != nil {
			return fmt.Errorf("rendering confusion matrix of %q: %w", names[i], err)
		}
	}
	return writeClassification(w, cr)
}

func writeHeading(w io.Writer, title string) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n\n", title, rule)
	return err
}

func writeClassification(w io.Writer, cr *evals.ClassificationReport) error {
	if _, err := io.WriteString(w, strings.Repeat("\n", 3)); err != nil {
		return err
	}
	if err := writeHeading(w, "Classification Report"); err != nil {
		return err
	}

	rows := make([][]string, 0, len(cr.Classes)+len(cr.Averages)+1)
	for _, c := range cr.Classes {
		rows = append(rows, scoreRow(c.Name, c.Scores))
	}
	if cr.Accuracy != nil {
		rows = append(rows, []string{"accuracy", "", "", fmtScore(*cr.Accuracy), strconv.Itoa(cr.Total)})
	}
	for _, a := range cr.Averages {
		rows = append(rows, scoreRow(a.Name, a.Scores))
	}
	if err := renderTable(w, []string{"", "precision", "recall", "f1-score", "support"}, rows); err != nil {
		return fmt.Errorf("rendering classification report: %w", err)
	}
	return nil
}

func scoreRow(name string, s evals.Scores) []string {
	return []string{name, fmtScore(s.Precision), fmtScore(s.Recall), fmtScore(s.F1), strconv.Itoa(s.Support)}
}

func fmtScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func itoas(v []int) []string {
	out := make([]string, len(v))
	for i, n := range v {
		out[i] = strconv.Itoa(n)
	}
	return out
}
