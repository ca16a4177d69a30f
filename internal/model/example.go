package model

// LabeledExample is one row of a labeled corpus.
type LabeledExample struct {
	Text  string
	Label Category
}

// Texts returns the text column of examples.
func Texts(examples []LabeledExample) []string {
	out := make([]string, len(examples))
	for i, e := range examples {
		out[i] = e.Text
	}
	return out
}

// Categories returns the label column of examples.
func Categories(examples []LabeledExample) []Category {
	out := make([]Category, len(examples))
	for i, e := range examples {
		out[i] = e.Label
	}
	return out
}
