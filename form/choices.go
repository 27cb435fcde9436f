package form

// ChoiceMapping maps, per categorical field, each presented label to the code
// the model expects.
type ChoiceMapping map[string]map[string]int

var choiceMapping = func() ChoiceMapping {
	m := make(ChoiceMapping)
	for _, f := range fields {
		if f.Kind != KindChoice {
			continue
		}
		labels := make(map[string]int, len(f.Choices))
		for _, c := range f.Choices {
			labels[c.Label] = c.Code
		}
		m[f.Name] = labels
	}
	return m
}()

// Mapping returns a copy of the static label-to-code table.
func Mapping() ChoiceMapping {
	out := make(ChoiceMapping, len(choiceMapping))
	for field, labels := range choiceMapping {
		inner := make(map[string]int, len(labels))
		for label, code := range labels {
			inner[label] = code
		}
		out[field] = inner
	}
	return out
}

// Code returns the model code for a label of a categorical field.
func (m ChoiceMapping) Code(field, label string) (int, bool) {
	labels, ok := m[field]
	if !ok {
		return 0, false
	}
	code, ok := labels[label]
	return code, ok
}
