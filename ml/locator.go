package ml

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ArtifactName is the file the locator searches for.
const ArtifactName = "best_xgb_heart_model.joblib"

// CandidatePaths returns the artifact search order for an application directory.
// The last two entries name the same location built two ways.
func CandidatePaths(appDir string) []string {
	return []string{
		filepath.Join(appDir, "models", ArtifactName),
		filepath.Join(filepath.Dir(appDir), "notebooks", "models", ArtifactName),
		appDir + string(filepath.Separator) + filepath.Join("..", "notebooks", "models", ArtifactName),
	}
}

// LoadWarning reports an artifact that exists but could not be loaded.
type LoadWarning struct {
	Path string
	Err  error
}

func (w LoadWarning) String() string {
	return fmt.Sprintf("Found model file at %s but failed to load: %v", w.Path, w.Err)
}

// ModelNotFoundError is returned when no candidate yields a loadable artifact.
type ModelNotFoundError struct {
	Name  string
	Tried []string
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("Model file not found. Expected one of: %s. Please copy the model file '%s' into the app 'models/' folder or update the path.",
		strings.Join(e.Tried, ", "), e.Name)
}

// LocateResult is the outcome of a search. Model and Path are set only on
// success; Warnings is filled either way.
type LocateResult struct {
	Model    Classifier
	Path     string
	Warnings []LoadWarning
}

// ModelLocator searches candidate paths in order and loads the first artifact
// that decodes.
type ModelLocator struct {
	paths  []string
	load   func(path string) (Classifier, error)
	logger *zap.Logger
}

// NewModelLocator builds a locator over paths. A nil logger is replaced by a no-op.
func NewModelLocator(paths []string, logger *zap.Logger) *ModelLocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelLocator{
		paths:  append([]string(nil), paths...),
		load:   LoadModel,
		logger: logger,
	}
}

// Locate returns the first loadable model. Missing files are skipped silently,
// undecodable ones become warnings and the search continues. When every
// existing candidate failed for lack of a decoder the ErrMissingDependency
// error is returned; otherwise exhausting the list returns *ModelNotFoundError.
func (l *ModelLocator) Locate() (LocateResult, error) {
	var result LocateResult
	tried := make([]string, 0, len(l.paths))
	var missingDep error
	otherFailures := 0

	for _, candidate := range l.paths {
		path := resolve(candidate)
		tried = append(tried, path)

		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Debug("model candidate absent", zap.String("path", path))
			continue
		}
		if err == nil && info.IsDir() {
			err = fmt.Errorf("%s is a directory", path)
		}
		if err == nil {
			var model Classifier
			model, err = l.load(path)
			if err == nil {
				l.logger.Info("model loaded", zap.String("path", path))
				result.Model = model
				result.Path = path
				return result, nil
			}
		}

		if errors.Is(err, ErrMissingDependency) {
			missingDep = err
		} else {
			otherFailures++
		}
		result.Warnings = append(result.Warnings, LoadWarning{Path: path, Err: err})
		l.logger.Warn("model candidate failed to load", zap.String("path", path), zap.Error(err))
	}

	if missingDep != nil && otherFailures == 0 {
		l.logger.Error("model decoder unavailable", zap.Error(missingDep))
		return result, missingDep
	}
	return result, &ModelNotFoundError{Name: ArtifactName, Tried: tried}
}

func resolve(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
