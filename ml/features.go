package ml

// FeatureRecord is the single-row input the classifier was trained on.
// Field order matches FeatureNames and must not change.
type FeatureRecord struct {
	Age      int     `json:"age"`
	Sex      int     `json:"sex"`
	CP       int     `json:"cp"`
	Trestbps int     `json:"trestbps"`
	Chol     int     `json:"chol"`
	FBS      int     `json:"fbs"`
	RestECG  int     `json:"restecg"`
	Thalach  int     `json:"thalach"`
	Exang    int     `json:"exang"`
	Oldpeak  float64 `json:"oldpeak"`
	Slope    int     `json:"slope"`
	CA       int     `json:"ca"`
	Thal     int     `json:"thal"`
}

var featureNames = []string{
	"age",
	"sex",
	"cp",
	"trestbps",
	"chol",
	"fbs",
	"restecg",
	"thalach",
	"exang",
	"oldpeak",
	"slope",
	"ca",
	"thal",
}

// FeatureNames returns the ordered column names of a FeatureRecord.
func FeatureNames() []string {
	return append([]string(nil), featureNames...)
}

// Vector returns the record values in FeatureNames order.
func (r FeatureRecord) Vector() []float64 {
	return []float64{
		float64(r.Age),
		float64(r.Sex),
		float64(r.CP),
		float64(r.Trestbps),
		float64(r.Chol),
		float64(r.FBS),
		float64(r.RestECG),
		float64(r.Thalach),
		float64(r.Exang),
		r.Oldpeak,
		float64(r.Slope),
		float64(r.CA),
		float64(r.Thal),
	}
}

// Map returns the record keyed by column name.
func (r FeatureRecord) Map() map[string]float64 {
	values := r.Vector()
	out := make(map[string]float64, len(values))
	for i, name := range featureNames {
		out[name] = values[i]
	}
	return out
}
