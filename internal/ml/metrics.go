package ml

import (
	"sort"

	"github.com/pkg/errors"
)

// Accuracy is the fraction of predictions equal to the truth.
func Accuracy(yTrue, yPred []int) (float64, error) {
	if err := sameLength(yTrue, yPred); err != nil {
		return 0, err
	}
	if len(yTrue) == 0 {
		return 0, nil
	}
	hit := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hit++
		}
	}
	return float64(hit) / float64(len(yTrue)), nil
}

// ConfusionMatrix counts outcomes with rows the actual class and columns the
// predicted class, both ordered [0, 1].
func ConfusionMatrix(yTrue, yPred []int) ([2][2]int, error) {
	var cm [2][2]int
	if err := sameLength(yTrue, yPred); err != nil {
		return cm, err
	}
	for i := range yTrue {
		a, p := yTrue[i], yPred[i]
		if a < 0 || a > 1 || p < 0 || p > 1 {
			return cm, errors.Errorf("label out of range at %d: actual %d, predicted %d", i, a, p)
		}
		cm[a][p]++
	}
	return cm, nil
}

// ReportRow is one line of a classification report.
type ReportRow struct {
	Label     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report is a classification report: one row per class, then the averages.
// Accuracy is kept apart because it has no precision or recall.
type Report struct {
	Classes  []ReportRow
	Accuracy float64
	Total    int
	Macro    ReportRow
	Weighted ReportRow
}

// ClassificationReport computes per-class precision, recall and F1 for the
// classes 0 and 1. A zero denominator yields 0.
func ClassificationReport(yTrue, yPred []int) (Report, error) {
	cm, err := ConfusionMatrix(yTrue, yPred)
	if err != nil {
		return Report{}, err
	}
	acc, _ := Accuracy(yTrue, yPred)
	r := Report{Accuracy: acc, Total: len(yTrue)}
	r.Macro.Label = "macro avg"
	r.Weighted.Label = "weighted avg"

	for c := 0; c < 2; c++ {
		tp := cm[c][c]
		support := cm[c][0] + cm[c][1]
		predicted := cm[0][c] + cm[1][c]
		row := ReportRow{
			Label:     []string{"0", "1"}[c],
			Precision: ratio(tp, predicted),
			Recall:    ratio(tp, support),
			Support:   support,
		}
		if s := row.Precision + row.Recall; s > 0 {
			row.F1 = 2 * row.Precision * row.Recall / s
		}
		r.Classes = append(r.Classes, row)

		r.Macro.Precision += row.Precision / 2
		r.Macro.Recall += row.Recall / 2
		r.Macro.F1 += row.F1 / 2
		if r.Total > 0 {
			w := float64(support) / float64(r.Total)
			r.Weighted.Precision += w * row.Precision
			r.Weighted.Recall += w * row.Recall
			r.Weighted.F1 += w * row.F1
		}
	}
	r.Macro.Support = r.Total
	r.Weighted.Support = r.Total
	return r, nil
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

// Importance pairs a feature with its importance.
type Importance struct {
	Feature string
	Value   float64
}

// RankImportances sorts features by importance, largest first; equal values
// keep their column order. top <= 0 keeps all of them.
func RankImportances(names []string, values []float64, top int) ([]Importance, error) {
	if len(names) != len(values) {
		return nil, errors.Wrapf(ErrShape, "%d names for %d importances", len(names), len(values))
	}
	out := make([]Importance, len(names))
	for i := range names {
		out[i] = Importance{Feature: names[i], Value: values[i]}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Value > out[b].Value })
	if top > 0 && len(out) > top {
		out = out[:top]
	}
	return out, nil
}

func sameLength(a, b []int) error {
	if len(a) != len(b) {
		return errors.Wrapf(ErrShape, "%d labels, %d predictions", len(a), len(b))
	}
	return nil
}
