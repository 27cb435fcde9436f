package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
)

// Decoder turns a raw artifact payload into a Classifier.
type Decoder func(payload []byte) (Classifier, error)

var (
	decodersMu sync.RWMutex
	decoders   = map[string]Decoder{
		"gbtree":        decodeGBTree,
		"decision_tree": decodeDecisionTree,
	}
)

// RegisterDecoder makes an artifact format loadable. Call it before LoadModel.
func RegisterDecoder(format string, decoder Decoder) {
	decodersMu.Lock()
	defer decodersMu.Unlock()
	decoders[format] = decoder
}

// Formats lists the artifact formats this build can decode.
func Formats() []string {
	decodersMu.RLock()
	defer decodersMu.RUnlock()
	formats := make([]string, 0, len(decoders))
	for format := range decoders {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

type artifactHeader struct {
	Format       string   `json:"format"`
	FeatureNames []string `json:"feature_names"`
}

// LoadModel reads and decodes the artifact at path. Read failures are returned
// as-is; decode failures wrap ErrModelLoadCorrupt, ErrSchemaMismatch or
// ErrMissingDependency.
func LoadModel(path string) (Classifier, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeModel(payload)
}

// DecodeModel decodes an artifact already in memory.
func DecodeModel(payload []byte) (Classifier, error) {
	var header artifactHeader
	if err := json.Unmarshal(payload, &header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelLoadCorrupt, err)
	}
	if header.Format == "" {
		return nil, fmt.Errorf("%w: artifact declares no format", ErrModelLoadCorrupt)
	}
	if err := checkSchema(header.FeatureNames); err != nil {
		return nil, err
	}

	decodersMu.RLock()
	decode, ok := decoders[header.Format]
	decodersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no decoder for artifact format %q (this build supports %v); register one with ml.RegisterDecoder and rebuild",
			ErrMissingDependency, header.Format, Formats())
	}

	model, err := decode(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelLoadCorrupt, err)
	}
	return model, nil
}

// checkSchema compares declared column names against FeatureRecord. An
// artifact without names is trusted to follow FeatureNames order.
func checkSchema(names []string) error {
	if len(names) == 0 {
		return nil
	}
	if len(names) != len(featureNames) {
		return fmt.Errorf("%w: artifact has %d features, record has %d", ErrSchemaMismatch, len(names), len(featureNames))
	}
	for i, name := range names {
		if name != featureNames[i] {
			return fmt.Errorf("%w: column %d is %q, record expects %q", ErrSchemaMismatch, i, name, featureNames[i])
		}
	}
	return nil
}

type gbtreeArtifact struct {
	Objective string  `json:"objective"`
	BaseScore float64 `json:"base_score"`
	Trees     []Tree  `json:"trees"`
}

func decodeGBTree(payload []byte) (Classifier, error) {
	var artifact gbtreeArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return nil, err
	}
	return NewGradientBoostedTrees(artifact.Objective, artifact.BaseScore, artifact.Trees)
}

type decisionTreeArtifact struct {
	Nodes Tree `json:"nodes"`
}

func decodeDecisionTree(payload []byte) (Classifier, error) {
	var artifact decisionTreeArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return nil, err
	}
	return NewDecisionTree(artifact.Nodes)
}
