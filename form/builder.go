package form

import (
	"fmt"

	"heartrisk/ml"
)

// Build assembles the feature record from collected values.
func Build(values Values) (ml.FeatureRecord, error) {
	for _, name := range ml.FeatureNames() {
		if _, ok := values[name]; !ok {
			return ml.FeatureRecord{}, fmt.Errorf("missing value for %s", name)
		}
	}
	return ml.FeatureRecord{
		Age:      int(values["age"]),
		Sex:      int(values["sex"]),
		CP:       int(values["cp"]),
		Trestbps: int(values["trestbps"]),
		Chol:     int(values["chol"]),
		FBS:      int(values["fbs"]),
		RestECG:  int(values["restecg"]),
		Thalach:  int(values["thalach"]),
		Exang:    int(values["exang"]),
		Oldpeak:  values["oldpeak"],
		Slope:    int(values["slope"]),
		CA:       int(values["ca"]),
		Thal:     int(values["thal"]),
	}, nil
}

// Display returns the value to prefill a control with: the label for choice
// fields, the number otherwise.
func (v Values) Display(name string) string {
	field, ok := Lookup(name)
	if !ok {
		return ""
	}
	value, ok := v[name]
	if !ok {
		value = field.Default
	}
	if field.Kind == KindChoice {
		for _, c := range field.Choices {
			if float64(c.Code) == value {
				return c.Label
			}
		}
		return ""
	}
	if field.Kind == KindFloat {
		return fmt.Sprintf("%g", value)
	}
	return fmt.Sprintf("%d", int(value))
}
