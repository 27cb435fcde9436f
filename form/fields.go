// Package form defines the input fields of the risk form, maps choice labels to
// model codes and builds the feature record.
package form

// Kind is the input control type of a field.
type Kind string

const (
	KindInteger Kind = "integer"
	KindFloat   Kind = "float"
	KindChoice  Kind = "choice"
)

// Choice is one option of a choice field.
type Choice struct {
	Label string `json:"label"`
	Code  int    `json:"code"`
}

// Field describes one input control.
type Field struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Help    string   `json:"help"`
	Kind    Kind     `json:"kind"`
	Min     float64  `json:"min"`
	Max     float64  `json:"max"`
	Step    float64  `json:"step"`
	Default float64  `json:"default"`
	Choices []Choice `json:"choices,omitempty"`
}

// DefaultLabel returns the label a choice field shows before user input.
func (f Field) DefaultLabel() string {
	for _, c := range f.Choices {
		if float64(c.Code) == f.Default {
			return c.Label
		}
	}
	return ""
}

func choiceField(name, label, help string, choices ...Choice) Field {
	return Field{
		Name:    name,
		Label:   label,
		Help:    help,
		Kind:    KindChoice,
		Default: float64(choices[0].Code),
		Choices: choices,
	}
}

var fields = []Field{
	{
		Name: "age", Label: "Age", Help: "Patient age in years (integer)",
		Kind: KindInteger, Min: 1, Max: 120, Step: 1, Default: 50,
	},
	choiceField("sex", "Sex", "Biological sex: Male or Female",
		Choice{"Female", 0},
		Choice{"Male", 1},
	),
	choiceField("cp", "Chest pain type", "Type of chest pain experienced; affects risk profile",
		Choice{"Typical angina (0)", 0},
		Choice{"Atypical angina (1)", 1},
		Choice{"Non-anginal pain (2)", 2},
		Choice{"Asymptomatic (3)", 3},
	),
	{
		Name: "trestbps", Label: "Resting blood pressure (mm Hg)", Help: "Resting arterial blood pressure in mm Hg",
		Kind: KindInteger, Min: 50, Max: 250, Step: 1, Default: 120,
	},
	{
		Name: "chol", Label: "Serum cholesterol (mg/dl)", Help: "Total serum cholesterol in mg/dl",
		Kind: KindInteger, Min: 100, Max: 600, Step: 1, Default: 200,
	},
	choiceField("fbs", "Fasting blood sugar (fasting > 120 mg/dl)?", "Indicates if fasting blood sugar is greater than 120 mg/dl",
		Choice{"<= 120 mg/dl (No)", 0},
		Choice{"> 120 mg/dl (Yes)", 1},
	),
	choiceField("restecg", "Resting ECG", "Resting electrocardiographic results (0,1,2)",
		Choice{"Normal (0)", 0},
		Choice{"ST-T wave abnormality (1)", 1},
		Choice{"Left ventricular hypertrophy (2)", 2},
	),
	{
		Name: "thalach", Label: "Max heart rate achieved", Help: "Maximum heart rate achieved during exercise",
		Kind: KindInteger, Min: 60, Max: 220, Step: 1, Default: 150,
	},
	choiceField("exang", "Exercise induced angina", "Whether exercise induced chest pain (angina)",
		Choice{"No", 0},
		Choice{"Yes", 1},
	),
	{
		Name: "oldpeak", Label: "ST depression induced by exercise relative to rest",
		Help: "ST depression value (numeric), higher values may indicate ischemia",
		Kind: KindFloat, Min: 0, Max: 10, Step: 0.1, Default: 1,
	},
	choiceField("slope", "ST segment slope", "Slope of the ST segment during peak exercise",
		Choice{"Upsloping (0)", 0},
		Choice{"Flat (1)", 1},
		Choice{"Downsloping (2)", 2},
	),
	choiceField("ca", "Number of major vessels (0-3)", "Number of major vessels colored by fluoroscopy (0-3)",
		Choice{"0 (no major vessels)", 0},
		Choice{"1", 1},
		Choice{"2", 2},
		Choice{"3", 3},
	),
	choiceField("thal", "Thalassemia status", "Thalassemia: 1=normal, 2=fixed defect, 3=reversible defect",
		Choice{"Normal (1)", 1},
		Choice{"Fixed defect (2)", 2},
		Choice{"Reversible defect (3)", 3},
	),
}

var fieldIndex = func() map[string]int {
	idx := make(map[string]int, len(fields))
	for i, f := range fields {
		idx[f.Name] = i
	}
	return idx
}()

// Fields returns the form fields in display order, which is also the
// feature record order.
func Fields() []Field {
	out := make([]Field, len(fields))
	copy(out, fields)
	return out
}

// Lookup returns the field with the given name.
func Lookup(name string) (Field, bool) {
	i, ok := fieldIndex[name]
	if !ok {
		return Field{}, false
	}
	return fields[i], true
}

// HelpEntry is one line of the help panel.
type HelpEntry struct {
	Title       string
	Description string
}

// HelpText describes every field and its valid values.
func HelpText() []HelpEntry {
	return []HelpEntry{
		{"Age", "Patient age in years."},
		{"Sex", "Male or Female."},
		{"Chest pain type", "Typical/atypical/non-anginal/asymptomatic chest pain."},
		{"Resting blood pressure (trestbps)", "in mm Hg."},
		{"Cholesterol (chol)", "serum cholesterol in mg/dl."},
		{"Fasting blood sugar (fbs)", "whether > 120 mg/dl."},
		{"Resting ECG (restecg)", "0 = normal, 1 = ST-T abnormality, 2 = LVH."},
		{"Max heart rate achieved (thalach)", "peak heart rate during exercise."},
		{"Exercise induced angina (exang)", "whether exercise causes angina."},
		{"ST depression (oldpeak)", "depression induced by exercise relative to rest."},
		{"ST slope", "slope of the peak exercise ST segment."},
		{"Number of major vessels (ca)", "0-3 colored by fluoroscopy."},
		{"Thalassemia (thal)", "1 = normal, 2 = fixed defect, 3 = reversible defect."},
	}
}
