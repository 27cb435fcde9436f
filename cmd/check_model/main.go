// Command check_model loads a risk model artifact and, given a labelled CSV,
// reports how it scores at the risk threshold.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"heartrisk/ml"
)

func main() {
	path := flag.String("path", "", "artifact path; searches the app candidates when empty")
	appDir := flag.String("app_dir", ".", "app directory used for the candidate search")
	dataPath := flag.String("data", "", "labelled CSV with the 13 feature columns and a target column")
	flag.Parse()

	model, source, err := loadModel(*path, *appDir)
	if err != nil {
		log.Fatalf("failed to load model: %v", err)
	}
	fmt.Printf("model loaded from %s\n", source)

	if *dataPath == "" {
		return
	}

	file, err := os.Open(*dataPath)
	if err != nil {
		log.Fatalf("failed to open data: %v", err)
	}
	defer file.Close()

	records, targets, err := readDataset(file)
	if err != nil {
		log.Fatalf("failed to read data: %v", err)
	}

	report, err := evaluateModel(context.Background(), model, records, targets)
	if err != nil {
		log.Fatalf("failed to evaluate model: %v", err)
	}
	fmt.Println(report.String())
}

func loadModel(path, appDir string) (ml.Classifier, string, error) {
	if path != "" {
		model, err := ml.LoadModel(path)
		return model, path, err
	}
	result, err := ml.NewModelLocator(ml.CandidatePaths(appDir), nil).Locate()
	if err != nil {
		return nil, "", err
	}
	for _, w := range result.Warnings {
		log.Print(w.String())
	}
	return result.Model, result.Path, nil
}

// readDataset expects a header row naming every feature plus "target".
// Column order is free.
func readDataset(r io.Reader) ([]ml.FeatureRecord, []int, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	wanted := append(ml.FeatureNames(), "target")
	for _, name := range wanted {
		if _, ok := columns[name]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", name)
		}
	}

	var records []ml.FeatureRecord
	var targets []int
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}

		values := make([]float64, len(wanted))
		for i, name := range wanted {
			v, err := strconv.ParseFloat(row[columns[name]], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d column %s: %w", line, name, err)
			}
			values[i] = v
		}
		records = append(records, recordFromVector(values))
		targets = append(targets, int(values[len(values)-1]))
	}
	return records, targets, nil
}

func recordFromVector(v []float64) ml.FeatureRecord {
	return ml.FeatureRecord{
		Age: int(v[0]), Sex: int(v[1]), CP: int(v[2]), Trestbps: int(v[3]), Chol: int(v[4]),
		FBS: int(v[5]), RestECG: int(v[6]), Thalach: int(v[7]), Exang: int(v[8]),
		Oldpeak: v[9], Slope: int(v[10]), CA: int(v[11]), Thal: int(v[12]),
	}
}

type evaluation struct {
	Rows              int
	PredictedPositive int
	ActualPositive    int
	Accuracy          float64
	Precision         float64
	Recall            float64
}

var printer = message.NewPrinter(language.English)

// String renders the report with grouped row and count figures.
func (e evaluation) String() string {
	return printer.Sprintf("rows=%d high_risk=%d actual_positive=%d accuracy=%.3f precision=%.3f recall=%.3f",
		e.Rows, e.PredictedPositive, e.ActualPositive, e.Accuracy, e.Precision, e.Recall)
}

func evaluateModel(ctx context.Context, model ml.Classifier, records []ml.FeatureRecord, targets []int) (evaluation, error) {
	predictor, err := ml.NewPredictor(model, 0)
	if err != nil {
		return evaluation{}, err
	}

	var correct, truePositive, predictedPositive, actualPositive int
	for i, record := range records {
		prediction, err := predictor.Predict(ctx, record)
		if err != nil {
			return evaluation{}, fmt.Errorf("row %d: %w", i+1, err)
		}
		positive := prediction.Label == ml.HighRisk
		actual := targets[i] == 1
		if positive == actual {
			correct++
		}
		if positive {
			predictedPositive++
		}
		if actual {
			actualPositive++
			if positive {
				truePositive++
			}
		}
	}

	report := evaluation{Rows: len(records), PredictedPositive: predictedPositive, ActualPositive: actualPositive}
	if len(records) == 0 {
		return report, nil
	}
	report.Accuracy = float64(correct) / float64(len(records))
	if predictedPositive > 0 {
		report.Precision = float64(truePositive) / float64(predictedPositive)
	}
	if actualPositive > 0 {
		report.Recall = float64(truePositive) / float64(actualPositive)
	}
	return report, nil
}
