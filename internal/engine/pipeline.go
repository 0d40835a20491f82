package engine

import (
	"fmt"
	"math"

	"github.com/miradorstack/churn-api/internal/models"
)

// DecisionThreshold converts a churn probability into a label. Inclusive.
const DecisionThreshold = 0.5

// Pipeline executes a fitted logistic artifact. It is immutable after construction and
// safe for concurrent use.
type Pipeline struct {
	artifact Artifact
	columns  []string
}

// NewPipeline wraps an artifact that has already passed Validate.
func NewPipeline(artifact Artifact) *Pipeline {
	columns := make([]string, len(artifact.Columns))
	for i, col := range artifact.Columns {
		columns[i] = col.Name
	}
	return &Pipeline{artifact: artifact, columns: columns}
}

// Name returns the artifact name.
func (p *Pipeline) Name() string { return p.artifact.Name }

// Version returns the artifact version.
func (p *Pipeline) Version() string { return p.artifact.Version }

// Columns returns the input columns in fitted order.
func (p *Pipeline) Columns() []string {
	return append([]string(nil), p.columns...)
}

// PredictProbability returns the probability of churn for one feature row. The row must
// be laid out in Columns order.
func (p *Pipeline) PredictProbability(row models.FeatureRow) (float64, error) {
	if len(row) != len(p.artifact.Columns) {
		return 0, fmt.Errorf("feature row has %d columns, model expects %d", len(row), len(p.artifact.Columns))
	}

	score := p.artifact.Intercept
	for i, col := range p.artifact.Columns {
		cell := row[i]
		if cell.Name != col.Name {
			return 0, fmt.Errorf("column %d is %q, model expects %q", i, cell.Name, col.Name)
		}
		switch col.Kind {
		case KindNumeric:
			x, ok := cell.Value.(float64)
			if !ok {
				return 0, fmt.Errorf("column %q: expected numeric value, got %T", col.Name, cell.Value)
			}
			score += col.Weight * (x - col.Mean) / col.Scale
		case KindCategorical:
			level, ok := cell.Value.(string)
			if !ok {
				return 0, fmt.Errorf("column %q: expected categorical value, got %T", col.Name, cell.Value)
			}
			coef, known := col.Levels[level]
			if !known {
				return 0, fmt.Errorf("column %q: unknown category %q", col.Name, level)
			}
			score += coef
		}
	}
	return sigmoid(score), nil
}

// PredictLabel returns "Yes" when the churn probability reaches DecisionThreshold.
func (p *Pipeline) PredictLabel(row models.FeatureRow) (string, error) {
	prob, err := p.PredictProbability(row)
	if err != nil {
		return "", err
	}
	return LabelFor(prob), nil
}

// LabelFor applies DecisionThreshold.
func LabelFor(probability float64) string {
	if probability >= DecisionThreshold {
		return models.LabelYes
	}
	return models.LabelNo
}

func sigmoid(z float64) float64 {
	// Split on sign so exp never overflows.
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
