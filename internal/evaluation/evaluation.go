// Package evaluation scores predicted labels against ground truth.
package evaluation

import (
	"fmt"
	"slices"
)

// LabelScore holds per-label precision, recall and F1. Undefined ratios
// (zero denominators) are reported as 0.
type LabelScore struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Report is the outcome of scoring one prediction run.
type Report struct {
	N        int          `json:"n"`
	Accuracy float64      `json:"accuracy"`
	MacroF1  float64      `json:"macro_f1"`
	Labels   []string     `json:"labels"`
	PerLabel []LabelScore `json:"per_label"`
	// Confusion[i][j] counts examples with true label Labels[i] predicted as Labels[j].
	Confusion [][]int `json:"confusion"`
}

// Evaluate compares pred against truth. labels fixes the row/column order;
// labels seen in truth or pred but missing from it are appended in sorted
// order. Macro-F1 averages over labels that occur in truth or pred.
func Evaluate(truth, pred, labels []string) (*Report, error) {
	if len(truth) != len(pred) {
		return nil, fmt.Errorf("evaluation: %d truths but %d predictions", len(truth), len(pred))
	}
	if len(truth) == 0 {
		return nil, fmt.Errorf("evaluation: nothing to evaluate")
	}

	order := slices.Clone(labels)
	index := make(map[string]int, len(order))
	for i, l := range order {
		index[l] = i
	}
	var extra []string
	for _, set := range [][]string{truth, pred} {
		for _, l := range set {
			if _, ok := index[l]; !ok {
				index[l] = -1
				extra = append(extra, l)
			}
		}
	}
	slices.Sort(extra)
	for _, l := range extra {
		index[l] = len(order)
		order = append(order, l)
	}

	k := len(order)
	confusion := make([][]int, k)
	for i := range confusion {
		confusion[i] = make([]int, k)
	}
	present := make([]bool, k)
	correct := 0
	for i := range truth {
		ti, pi := index[truth[i]], index[pred[i]]
		confusion[ti][pi]++
		present[ti], present[pi] = true, true
		if ti == pi {
			correct++
		}
	}

	rep := &Report{
		N:         len(truth),
		Accuracy:  float64(correct) / float64(len(truth)),
		Labels:    order,
		PerLabel:  make([]LabelScore, k),
		Confusion: confusion,
	}
	var f1Sum float64
	var f1N int
	for c := 0; c < k; c++ {
		tp := confusion[c][c]
		var predicted, support int
		for r := 0; r < k; r++ {
			predicted += confusion[r][c]
			support += confusion[c][r]
		}
		s := LabelScore{
			Label:     order[c],
			Precision: ratio(tp, predicted),
			Recall:    ratio(tp, support),
			Support:   support,
		}
		if s.Precision+s.Recall > 0 {
			s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
		}
		rep.PerLabel[c] = s
		if present[c] {
			f1Sum += s.F1
			f1N++
		}
	}
	if f1N > 0 {
		rep.MacroF1 = f1Sum / float64(f1N)
	}
	return rep, nil
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}
