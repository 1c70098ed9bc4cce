// Package artifact loads the frozen scaler and regressor exported from the
// training notebook. Both are plain JSON or YAML documents:
//
//	scaler: {"kind": "standard_scaler", "n_features_in": 12, "mean": [...], "scale": [...]}
//	model:  {"kind": "linear_regression", "n_features_in": 12, "coef": [...], "intercept": 1.5}
//
// The format is picked from the file extension.
package artifact

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Artifact kinds.
const (
	KindStandardScaler   = "standard_scaler"
	KindLinearRegression = "linear_regression"
)

type scalerDoc struct {
	Kind        string    `koanf:"kind"`
	NFeaturesIn int       `koanf:"n_features_in"`
	Mean        []float64 `koanf:"mean"`
	Scale       []float64 `koanf:"scale"`
}

type modelDoc struct {
	Kind        string    `koanf:"kind"`
	NFeaturesIn int       `koanf:"n_features_in"`
	Coef        []float64 `koanf:"coef"`
	Intercept   float64   `koanf:"intercept"`
}

// LoadScaler reads a standard scaler artifact.
func LoadScaler(path string) (*StandardScaler, error) {
	var doc scalerDoc
	if err := load(path, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != KindStandardScaler {
		return nil, fmt.Errorf("%w: %s: %w: kind %q, want %q", ErrLoadArtifact, path, ErrInvalidArtifact, doc.Kind, KindStandardScaler)
	}
	s, err := NewStandardScaler(doc.Mean, doc.Scale)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadArtifact, path, err)
	}
	if doc.NFeaturesIn != 0 && doc.NFeaturesIn != s.Features() {
		return nil, fmt.Errorf("%w: %s: %w: n_features_in=%d but %d means",
			ErrLoadArtifact, path, ErrInvalidArtifact, doc.NFeaturesIn, s.Features())
	}
	return s, nil
}

// LoadRegressor reads a linear regression artifact.
func LoadRegressor(path string) (*LinearRegression, error) {
	var doc modelDoc
	if err := load(path, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != KindLinearRegression {
		return nil, fmt.Errorf("%w: %s: %w: kind %q, want %q", ErrLoadArtifact, path, ErrInvalidArtifact, doc.Kind, KindLinearRegression)
	}
	r, err := NewLinearRegression(doc.Coef, doc.Intercept)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoadArtifact, path, err)
	}
	if doc.NFeaturesIn != 0 && doc.NFeaturesIn != r.Features() {
		return nil, fmt.Errorf("%w: %s: %w: n_features_in=%d but %d coefficients",
			ErrLoadArtifact, path, ErrInvalidArtifact, doc.NFeaturesIn, r.Features())
	}
	return r, nil
}

// LoadPair loads both artifacts and checks they agree on the feature width.
func LoadPair(scalerPath, modelPath string) (*StandardScaler, *LinearRegression, error) {
	s, err := LoadScaler(scalerPath)
	if err != nil {
		return nil, nil, err
	}
	r, err := LoadRegressor(modelPath)
	if err != nil {
		return nil, nil, err
	}
	if s.Features() != r.Features() {
		return nil, nil, fmt.Errorf("%w: %w: scaler has %d features, model has %d",
			ErrLoadArtifact, ErrInvalidArtifact, s.Features(), r.Features())
	}
	return s, r, nil
}

func load(path string, out interface{}) error {
	var parser koanf.Parser
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return fmt.Errorf("%w: %s: unsupported format %q", ErrLoadArtifact, path, ext)
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLoadArtifact, path, err)
	}
	if err := k.UnmarshalWithConf("", out, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrLoadArtifact, path, err)
	}
	return nil
}
