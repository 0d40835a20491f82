package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/miradorstack/churn-api/internal/utils"
)

// Column kinds understood by the pipeline.
const (
	KindNumeric     = "numeric"
	KindCategorical = "categorical"
)

// ErrInvalidArtifact is wrapped by every load failure caused by artifact content.
var ErrInvalidArtifact = errors.New("invalid model artifact")

// Artifact is the exported, already-fitted logistic pipeline.
type Artifact struct {
	Name      string       `yaml:"name"`
	Version   string       `yaml:"version"`
	Intercept float64      `yaml:"intercept"`
	Columns   []ColumnSpec `yaml:"columns"`
}

// ColumnSpec describes how one input column contributes to the score. Numeric columns
// are standard-scaled then weighted; categorical columns map each level to its one-hot
// coefficient.
type ColumnSpec struct {
	Name   string             `yaml:"name"`
	Kind   string             `yaml:"kind"`
	Mean   float64            `yaml:"mean"`
	Scale  float64            `yaml:"scale"`
	Weight float64            `yaml:"weight"`
	Levels map[string]float64 `yaml:"levels"`
}

// LoadPipeline reads and checks the artifact at path. Any failure is a startup error.
func LoadPipeline(path string, logger *slog.Logger) (*Pipeline, error) {
	const op = "engine.LoadPipeline"
	if path == "" {
		return nil, utils.NewStartupError(op, "model path is empty", ErrInvalidArtifact)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.NewStartupError(op, fmt.Sprintf("read artifact %s", path), err)
	}

	var artifact Artifact
	if err := yaml.Unmarshal(data, &artifact); err != nil {
		return nil, utils.NewStartupError(op, fmt.Sprintf("parse artifact %s", path), fmt.Errorf("%w: %v", ErrInvalidArtifact, err))
	}
	if err := artifact.Validate(); err != nil {
		return nil, utils.NewStartupError(op, fmt.Sprintf("check artifact %s", path), err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("model artifact loaded",
		slog.String("path", path),
		slog.String("name", artifact.Name),
		slog.String("version", artifact.Version),
		slog.Int("columns", len(artifact.Columns)),
	)
	return NewPipeline(artifact), nil
}

// Validate reports the first structural problem in the artifact.
func (a Artifact) Validate() error {
	if len(a.Columns) == 0 {
		return fmt.Errorf("%w: no columns", ErrInvalidArtifact)
	}
	if !finite(a.Intercept) {
		return fmt.Errorf("%w: intercept is not finite", ErrInvalidArtifact)
	}
	seen := make(map[string]struct{}, len(a.Columns))
	for i, col := range a.Columns {
		if col.Name == "" {
			return fmt.Errorf("%w: column %d has no name", ErrInvalidArtifact, i)
		}
		if _, dup := seen[col.Name]; dup {
			return fmt.Errorf("%w: duplicate column %q", ErrInvalidArtifact, col.Name)
		}
		seen[col.Name] = struct{}{}

		switch col.Kind {
		case KindNumeric:
			if col.Scale == 0 || !finite(col.Scale) || !finite(col.Mean) || !finite(col.Weight) {
				return fmt.Errorf("%w: numeric column %q needs a finite, non-zero scale and finite mean/weight", ErrInvalidArtifact, col.Name)
			}
		case KindCategorical:
			if len(col.Levels) == 0 {
				return fmt.Errorf("%w: categorical column %q has no levels", ErrInvalidArtifact, col.Name)
			}
			for level, coef := range col.Levels {
				if !finite(coef) {
					return fmt.Errorf("%w: column %q level %q has a non-finite coefficient", ErrInvalidArtifact, col.Name, level)
				}
			}
		default:
			return fmt.Errorf("%w: column %q has unknown kind %q", ErrInvalidArtifact, col.Name, col.Kind)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
