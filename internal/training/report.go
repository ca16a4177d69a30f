package training

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
	"time"
)

// Metric names used in Winner.
const (
	MetricAccuracy = "accuracy"
	MetricMacroF1  = "macro-F1"
	MetricFitTime  = "fit time"
)

// Winner is the best result for one metric. More than one name means a tie.
// Margin is the lead over the best non-winning result, empty when every
// scored result shares the best value.
type Winner struct {
	Metric string
	Names  []string
	Value  string
	Margin string
}

// Tie reports whether several results share the best value.
func (w Winner) Tie() bool { return len(w.Names) > 1 }

const scoreEpsilon = 1e-9

// Winners picks the best successful result per metric: highest accuracy,
// highest macro-F1, shortest fit. Metrics with no candidates are omitted.
func (r *Report) Winners() []Winner {
	score := func(f func(FamilyResult) float64) func(FamilyResult) (float64, bool) {
		return func(fr FamilyResult) (float64, bool) {
			if fr.Evaluation == nil {
				return 0, false
			}
			return f(fr), true
		}
	}
	fixed := func(v float64) string { return fmt.Sprintf("%.4f", v) }
	gain := func(d float64) string { return fmt.Sprintf("%+.4f", d) }
	faster := func(d float64) string { return duration(time.Duration(d)) + " faster" }

	var out []Winner
	for _, c := range []struct {
		metric string
		value  func(FamilyResult) (float64, bool)
		higher bool
		format func(float64) string
		margin func(float64) string
	}{
		{MetricAccuracy, score(func(fr FamilyResult) float64 { return fr.Evaluation.Accuracy }), true, fixed, gain},
		{MetricMacroF1, score(func(fr FamilyResult) float64 { return fr.Evaluation.MacroF1 }), true, fixed, gain},
		{MetricFitTime, func(fr FamilyResult) (float64, bool) {
			return float64(fr.FitDuration), fr.FitDuration > 0
		}, false, func(v float64) string { return duration(time.Duration(v)) }, faster},
	} {
		if w, ok := r.best(c.metric, c.value, c.higher, c.format, c.margin); ok {
			out = append(out, w)
		}
	}
	return out
}

func (r *Report) best(metric string, value func(FamilyResult) (float64, bool), higher bool, format, margin func(float64) string) (Winner, bool) {
	var (
		best   float64
		names  []string
		scored []float64
	)
	for _, fr := range r.Results {
		if fr.Err != nil {
			continue
		}
		v, ok := value(fr)
		if !ok {
			continue
		}
		scored = append(scored, v)
		switch {
		case names == nil, higher && v > best+scoreEpsilon, !higher && v < best-scoreEpsilon:
			best, names = v, []string{label(fr)}
		case math.Abs(v-best) <= scoreEpsilon:
			names = append(names, label(fr))
		}
	}
	if names == nil {
		return Winner{}, false
	}
	w := Winner{Metric: metric, Names: names, Value: format(best)}

	// Runner-up: the best value outside the winning band.
	var next float64
	found := false
	for _, v := range scored {
		if math.Abs(v-best) <= scoreEpsilon {
			continue
		}
		if !found || higher && v > next || !higher && v < next {
			next, found = v, true
		}
	}
	if found {
		w.Margin = margin(math.Abs(best - next))
	}
	return w, true
}

// label names a result in tables, e.g. "tfidf+logreg".
func label(fr FamilyResult) string {
	if fr.ModelName != "" && fr.ModelName != "unknown" {
		return fr.ModelName
	}
	return fr.Family
}

// WriteReport renders r as human-readable text: a comparison table, the
// winners per metric, and for each scored result its per-label scores and
// confusion matrix.
func WriteReport(w io.Writer, r *Report) error {
	var b strings.Builder
	if r.RunID != "" {
		fmt.Fprintf(&b, "run %s\n", r.RunID)
	}
	fmt.Fprintf(&b, "train=%d eval=%d\n\n", r.TrainSize, r.EvalSize)

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tVERSION\tACCURACY\tMACRO-F1\tFIT\tPREDICT\tSTATUS")
	for _, fr := range r.Results {
		acc, f1 := "-", "-"
		if fr.Evaluation != nil {
			acc = fmt.Sprintf("%.4f", fr.Evaluation.Accuracy)
			f1 = fmt.Sprintf("%.4f", fr.Evaluation.MacroF1)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			label(fr), orDash(fr.ModelVersion), acc, f1,
			duration(fr.FitDuration), duration(fr.PredictDuration), status(fr.Err))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if winners := r.Winners(); len(winners) > 0 {
		b.WriteString("\nwinners:\n")
		for _, win := range winners {
			value := win.Value
			if win.Margin != "" {
				value += ", " + win.Margin
			}
			if win.Tie() {
				fmt.Fprintf(&b, "  %-9s tie between %s (%s)\n", win.Metric+":", strings.Join(win.Names, ", "), value)
			} else {
				fmt.Fprintf(&b, "  %-9s %s (%s)\n", win.Metric+":", win.Names[0], value)
			}
		}
	}

	for _, fr := range r.Results {
		if fr.Evaluation == nil || fr.Err != nil {
			continue
		}
		fmt.Fprintf(&b, "\n== %s ==\n", label(fr))
		if err := writeClassification(&b, fr); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeClassification(b *strings.Builder, fr FamilyResult) error {
	ev := fr.Evaluation
	tw := tabwriter.NewWriter(b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "label\tprecision\trecall\tf1\tsupport\t")
	for _, s := range ev.PerLabel {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%d\t\n", s.Label, s.Precision, s.Recall, s.F1, s.Support)
	}
	fmt.Fprintf(tw, "accuracy\t\t\t%.2f\t%d\t\n", ev.Accuracy, ev.N)
	fmt.Fprintf(tw, "macro avg\t\t\t%.2f\t%d\t\n", ev.MacroF1, ev.N)
	if err := tw.Flush(); err != nil {
		return err
	}

	b.WriteString("\nconfusion (rows=true, cols=predicted):\n")
	tw = tabwriter.NewWriter(b, 0, 0, 2, ' ', tabwriter.AlignRight)
	header := []string{""}
	for i := range ev.Labels {
		header = append(header, fmt.Sprintf("[%d]", i))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t")+"\t")
	for i, row := range ev.Confusion {
		cells := []string{fmt.Sprintf("[%d] %s", i, ev.Labels[i])}
		for _, n := range row {
			cells = append(cells, fmt.Sprint(n))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	return tw.Flush()
}

func duration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Microsecond).String()
}

func status(err error) string {
	if err == nil {
		return "ok"
	}
	return "failed: " + err.Error()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
