package ml

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"
)

func TestCandidatePaths(t *testing.T) {
	root := t.TempDir()
	appDir := filepath.Join(root, "app")

	paths := CandidatePaths(appDir)
	if len(paths) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(paths))
	}
	if paths[0] != filepath.Join(appDir, "models", ArtifactName) {
		t.Fatalf("unexpected first candidate: %s", paths[0])
	}
	notebooks := filepath.Join(root, "notebooks", "models", ArtifactName)
	if paths[1] != notebooks {
		t.Fatalf("unexpected second candidate: %s", paths[1])
	}
	if resolve(paths[2]) != notebooks {
		t.Fatalf("third candidate should resolve to %s, got %s", notebooks, resolve(paths[2]))
	}
}

func TestLocatePrefersFirstCandidate(t *testing.T) {
	appDir := filepath.Join(t.TempDir(), "app")
	paths := CandidatePaths(appDir)
	writeFile(t, paths[0], constantArtifact(t, 0.2))
	writeFile(t, paths[1], constantArtifact(t, 0.9))

	result, err := NewModelLocator(paths, nil).Locate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Path != paths[0] {
		t.Fatalf("expected %s, got %s", paths[0], result.Path)
	}
	proba, _ := result.Model.PredictProba(context.Background(), FeatureRecord{})
	if math.Abs(proba-0.2) > 1e-9 {
		t.Fatalf("expected model from first candidate, got probability %v", proba)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", result.Warnings)
	}
}

func TestLocateModelNotFound(t *testing.T) {
	appDir := filepath.Join(t.TempDir(), "app")
	paths := CandidatePaths(appDir)

	result, err := NewModelLocator(paths, nil).Locate()
	var notFound *ModelNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ModelNotFoundError, got %v", err)
	}
	if result.Model != nil {
		t.Fatal("expected no model")
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("absent files must not warn, got %v", result.Warnings)
	}
	if len(notFound.Tried) != 3 {
		t.Fatalf("expected 3 tried paths, got %v", notFound.Tried)
	}
	msg := notFound.Error()
	for _, p := range notFound.Tried {
		if !strings.Contains(msg, p) {
			t.Fatalf("message %q does not name %s", msg, p)
		}
	}
	if !strings.Contains(msg, ArtifactName) {
		t.Fatalf("message %q does not name the artifact", msg)
	}
}

func TestLocateCorruptThenValid(t *testing.T) {
	appDir := filepath.Join(t.TempDir(), "app")
	paths := CandidatePaths(appDir)
	writeFile(t, paths[0], []byte("not a model"))
	writeFile(t, paths[1], constantArtifact(t, 0.7))

	result, err := NewModelLocator(paths, nil).Locate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Path != paths[1] {
		t.Fatalf("expected %s, got %s", paths[1], result.Path)
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Path != paths[0] {
		t.Fatalf("expected one warning for %s, got %v", paths[0], result.Warnings)
	}
	if !errors.Is(result.Warnings[0].Err, ErrModelLoadCorrupt) {
		t.Fatalf("expected corrupt warning, got %v", result.Warnings[0].Err)
	}
	if !strings.Contains(result.Warnings[0].String(), "failed to load") {
		t.Fatalf("unexpected warning text: %s", result.Warnings[0])
	}
}

func TestLocateUnknownFormatWarnsAndContinues(t *testing.T) {
	appDir := filepath.Join(t.TempDir(), "app")
	paths := CandidatePaths(appDir)
	writeFile(t, paths[0], []byte(`{"format":"xgboost_json"}`))
	writeFile(t, paths[1], constantArtifact(t, 0.7))

	result, err := NewModelLocator(paths, nil).Locate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Path != paths[1] || result.Model == nil {
		t.Fatalf("expected model from second candidate, got path=%q", result.Path)
	}
	if len(result.Warnings) != 1 || !errors.Is(result.Warnings[0].Err, ErrMissingDependency) {
		t.Fatalf("expected one missing decoder warning, got %v", result.Warnings)
	}
}

func TestLocateMissingDependencyHalts(t *testing.T) {
	appDir := filepath.Join(t.TempDir(), "app")
	paths := CandidatePaths(appDir)
	writeFile(t, paths[0], []byte(`{"format":"onnx"}`))
	writeFile(t, paths[1], []byte(`{"format":"onnx"}`))

	result, err := NewModelLocator(paths, nil).Locate()
	if !errors.Is(err, ErrMissingDependency) {
		t.Fatalf("expected ErrMissingDependency, got %v", err)
	}
	if len(result.Warnings) != 3 {
		t.Fatalf("expected a warning per existing candidate, got %v", result.Warnings)
	}
}

func TestLocateMixedFailuresIsNotFound(t *testing.T) {
	appDir := filepath.Join(t.TempDir(), "app")
	paths := CandidatePaths(appDir)
	writeFile(t, paths[0], []byte(`{"format":"onnx"}`))
	writeFile(t, paths[1], []byte("garbage"))

	_, err := NewModelLocator(paths, nil).Locate()
	var notFound *ModelNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ModelNotFoundError, got %v", err)
	}
}

func TestLocateSkipsDirectories(t *testing.T) {
	appDir := filepath.Join(t.TempDir(), "app")
	paths := CandidatePaths(appDir)
	writeFile(t, filepath.Join(paths[0], "placeholder"), []byte("x"))
	writeFile(t, paths[1], constantArtifact(t, 0.7))

	result, err := NewModelLocator(paths, nil).Locate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Path != paths[1] || len(result.Warnings) != 1 {
		t.Fatalf("expected directory candidate to warn, got path=%s warnings=%v", result.Path, result.Warnings)
	}
}
