package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/miradorstack/churn-api/internal/models"
	"github.com/miradorstack/churn-api/internal/utils"
)

// Model is the fitted predictor the dispatcher delegates to.
type Model interface {
	Columns() []string
	PredictProbability(row models.FeatureRow) (float64, error)
}

// Dispatcher turns a validated request into a churn decision.
type Dispatcher struct {
	logger  *slog.Logger
	model   Model
	columns []string
}

// NewDispatcher binds a dispatcher to model. Every model column must be a request field.
func NewDispatcher(logger *slog.Logger, model Model) (*Dispatcher, error) {
	const op = "engine.NewDispatcher"
	if model == nil {
		return nil, utils.NewStartupError(op, "model not loaded", ErrInvalidArtifact)
	}
	if logger == nil {
		logger = slog.Default()
	}

	columns := model.Columns()
	probe := models.ChurnRequest{}
	for _, col := range columns {
		if _, ok := probe.Value(col); !ok {
			return nil, utils.NewStartupError(op, fmt.Sprintf("model column %q is not a request field", col), ErrInvalidArtifact)
		}
	}

	return &Dispatcher{logger: logger, model: model, columns: columns}, nil
}

// Dispatch scores req. Failures are inference errors and are not retried.
func (d *Dispatcher) Dispatch(ctx context.Context, req models.ChurnRequest) (models.ChurnResponse, error) {
	const op = "engine.Dispatch"
	if err := ctx.Err(); err != nil {
		return models.ChurnResponse{}, err
	}

	row, err := BuildFeatureRow(d.columns, req)
	if err != nil {
		return models.ChurnResponse{}, utils.NewInferenceError(op, "build feature row", err)
	}

	prob, err := d.model.PredictProbability(row)
	if err != nil {
		return models.ChurnResponse{}, utils.NewInferenceError(op, "model call failed", err)
	}
	if math.IsNaN(prob) || prob < 0 || prob > 1 {
		return models.ChurnResponse{}, utils.NewInferenceError(op, "malformed model output", fmt.Errorf("probability %v outside [0,1]", prob))
	}

	prob = Round4(prob)
	d.logger.Debug("churn scored", slog.Float64("probability", prob))
	return models.ChurnResponse{Churn: LabelFor(prob), Probability: prob}, nil
}

// BuildFeatureRow lays req out in columns order.
func BuildFeatureRow(columns []string, req models.ChurnRequest) (models.FeatureRow, error) {
	row := make(models.FeatureRow, 0, len(columns))
	for _, col := range columns {
		v, ok := req.Value(col)
		if !ok {
			return nil, fmt.Errorf("unknown column %q", col)
		}
		row = append(row, models.Feature{Name: col, Value: v})
	}
	return row, nil
}

// Round4 rounds to four decimal places.
func Round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
