package form_test

import (
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heartrisk/form"
	"heartrisk/ml"
)

func TestFieldsMatchFeatureSchema(t *testing.T) {
	fields := form.Fields()
	names := ml.FeatureNames()
	require.Len(t, fields, len(names))
	for i, f := range fields {
		assert.Equal(t, names[i], f.Name, "field %d out of order", i)
	}
}

func TestChoiceMappingCoversEveryPresentedLabel(t *testing.T) {
	mapping := form.Mapping()
	for _, f := range form.Fields() {
		if f.Kind != form.KindChoice {
			continue
		}
		for _, c := range f.Choices {
			code, ok := mapping.Code(f.Name, c.Label)
			require.True(t, ok, "%s: label %q missing from mapping", f.Name, c.Label)
			assert.Equal(t, c.Code, code)
		}
	}
	assert.Len(t, mapping, 8)
}

func TestChoiceCodes(t *testing.T) {
	tests := []struct {
		field string
		label string
		want  float64
	}{
		{"sex", "Female", 0},
		{"sex", "Male", 1},
		{"cp", "Typical angina (0)", 0},
		{"cp", "Atypical angina (1)", 1},
		{"cp", "Non-anginal pain (2)", 2},
		{"cp", "Asymptomatic (3)", 3},
		{"fbs", "<= 120 mg/dl (No)", 0},
		{"fbs", "> 120 mg/dl (Yes)", 1},
		{"restecg", "Normal (0)", 0},
		{"restecg", "ST-T wave abnormality (1)", 1},
		{"restecg", "Left ventricular hypertrophy (2)", 2},
		{"exang", "No", 0},
		{"exang", "Yes", 1},
		{"slope", "Upsloping (0)", 0},
		{"slope", "Flat (1)", 1},
		{"slope", "Downsloping (2)", 2},
		{"ca", "0 (no major vessels)", 0},
		{"ca", "1", 1},
		{"ca", "2", 2},
		{"ca", "3", 3},
		{"thal", "Normal (1)", 1},
		{"thal", "Fixed defect (2)", 2},
		{"thal", "Reversible defect (3)", 3},
	}
	for _, tt := range tests {
		t.Run(tt.field+"/"+tt.label, func(t *testing.T) {
			values, err := form.Collect(map[string]string{tt.field: tt.label})
			require.NoError(t, err)
			assert.Equal(t, tt.want, values[tt.field])
		})
	}
}

func TestChoiceAcceptsNumericCode(t *testing.T) {
	values, err := form.Collect(map[string]string{"thal": "2", "sex": "1"})
	require.NoError(t, err)
	assert.Equal(t, 2.0, values["thal"])
	assert.Equal(t, 1.0, values["sex"])

	_, err = form.Collect(map[string]string{"thal": "0"})
	require.Error(t, err)
}

func TestNumericDomains(t *testing.T) {
	tests := []struct {
		field   string
		input   string
		wantErr bool
	}{
		{"age", "1", false},
		{"age", "120", false},
		{"age", "0", true},
		{"age", "121", true},
		{"age", "50.5", true},
		{"age", "fifty", true},
		{"trestbps", "50", false},
		{"trestbps", "250", false},
		{"trestbps", "49", true},
		{"trestbps", "251", true},
		{"chol", "100", false},
		{"chol", "600", false},
		{"chol", "99", true},
		{"chol", "601", true},
		{"thalach", "60", false},
		{"thalach", "220", false},
		{"thalach", "59", true},
		{"thalach", "221", true},
		{"oldpeak", "0", false},
		{"oldpeak", "10.0", false},
		{"oldpeak", "2.5", false},
		{"oldpeak", "-0.1", true},
		{"oldpeak", "10.01", true},
		{"oldpeak", "NaN", true},
	}
	for _, tt := range tests {
		t.Run(tt.field+"="+tt.input, func(t *testing.T) {
			values, err := form.Collect(map[string]string{tt.field: tt.input})
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, form.IsValidationError(err))
				return
			}
			require.NoError(t, err)
			want, _ := strconv.ParseFloat(tt.input, 64)
			assert.Equal(t, want, values[tt.field])
		})
	}
}

func TestCollectDefaults(t *testing.T) {
	values, err := form.Collect(nil)
	require.NoError(t, err)
	record, err := form.Build(values)
	require.NoError(t, err)
	assert.Equal(t, ml.FeatureRecord{
		Age: 50, Sex: 0, CP: 0, Trestbps: 120, Chol: 200, FBS: 0, RestECG: 0,
		Thalach: 150, Exang: 0, Oldpeak: 1.0, Slope: 0, CA: 0, Thal: 1,
	}, record)
}

func TestCollectReportsEveryError(t *testing.T) {
	_, err := form.Collect(map[string]string{"age": "200", "sex": "Other", "bogus": "1"})
	require.Error(t, err)
	var ve *form.ValidationError
	require.ErrorAs(t, err, &ve)
	byField := ve.ByField()
	assert.Len(t, byField, 3)
	assert.Contains(t, byField["age"], "between 1 and 120")
	assert.Contains(t, byField["sex"], `"Male"`)
	assert.Equal(t, "unknown field", byField["bogus"])
}

func TestEndToEndRecord(t *testing.T) {
	submission := url.Values{
		"age":      {"50"},
		"sex":      {"Male"},
		"cp":       {"Asymptomatic (3)"},
		"trestbps": {"140"},
		"chol":     {"250"},
		"fbs":      {"> 120 mg/dl (Yes)"},
		"restecg":  {"Normal (0)"},
		"thalach":  {"120"},
		"exang":    {"Yes"},
		"oldpeak":  {"2.5"},
		"slope":    {"Flat (1)"},
		"ca":       {"2"},
		"thal":     {"Reversible defect (3)"},
	}
	values, err := form.CollectForm(submission)
	require.NoError(t, err)
	record, err := form.Build(values)
	require.NoError(t, err)
	assert.Equal(t, ml.FeatureRecord{
		Age: 50, Sex: 1, CP: 3, Trestbps: 140, Chol: 250, FBS: 1, RestECG: 0,
		Thalach: 120, Exang: 1, Oldpeak: 2.5, Slope: 1, CA: 2, Thal: 3,
	}, record)

	again, err := form.Build(values)
	require.NoError(t, err)
	assert.Equal(t, record, again)
}

func TestCollectJSON(t *testing.T) {
	values, err := form.CollectJSON(map[string]interface{}{
		"age":     float64(61),
		"sex":     "Male",
		"oldpeak": 3.4,
		"thal":    float64(3),
	})
	require.NoError(t, err)
	assert.Equal(t, 61.0, values["age"])
	assert.Equal(t, 1.0, values["sex"])
	assert.Equal(t, 3.4, values["oldpeak"])
	assert.Equal(t, 3.0, values["thal"])

	_, err = form.CollectJSON(map[string]interface{}{"age": true})
	require.Error(t, err)
}

func TestBuildRequiresEveryField(t *testing.T) {
	values := form.Defaults()
	delete(values, "chol")
	_, err := form.Build(values)
	require.Error(t, err)
}

func TestDisplay(t *testing.T) {
	values := form.Defaults()
	values["thal"] = 2
	values["oldpeak"] = 2.5
	assert.Equal(t, "Fixed defect (2)", values.Display("thal"))
	assert.Equal(t, "2.5", values.Display("oldpeak"))
	assert.Equal(t, "50", values.Display("age"))
	assert.Equal(t, "", values.Display("nope"))
}

func TestHelpTextCoversEveryField(t *testing.T) {
	assert.Len(t, form.HelpText(), len(form.Fields()))
}
