package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/miradorstack/churn-api/internal/api"
	"github.com/miradorstack/churn-api/internal/grpc/churnv1"
	"github.com/miradorstack/churn-api/internal/metrics"
	"github.com/miradorstack/churn-api/internal/models"
	"github.com/miradorstack/churn-api/internal/schema"
	"github.com/miradorstack/churn-api/internal/utils"
)

// Dispatcher scores a validated request.
type Dispatcher interface {
	Dispatch(ctx context.Context, req models.ChurnRequest) (models.ChurnResponse, error)
}

// ChurnService composes validation and dispatch, and implements the gRPC ChurnService.
type ChurnService struct {
	churnv1.UnimplementedChurnServiceServer

	logger     *slog.Logger
	validator  *schema.Validator
	dispatcher Dispatcher
	latencies  *utils.LatencyTracker
}

// NewChurnService constructs the churn service facade.
func NewChurnService(logger *slog.Logger, validator *schema.Validator, dispatcher Dispatcher) *ChurnService {
	if logger == nil {
		logger = slog.Default()
	}
	if validator == nil {
		validator = schema.New()
	}
	return &ChurnService{
		logger:     logger,
		validator:  validator,
		dispatcher: dispatcher,
		latencies:  utils.NewLatencyTracker(1024),
	}
}

// Score validates body and, when valid, asks the dispatcher for a decision.
func (s *ChurnService) Score(ctx context.Context, body []byte) (models.ChurnResponse, error) {
	start := time.Now()

	req, err := s.validator.Decode(body)
	if err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			metrics.ObservePrediction(0, metrics.OutcomeInvalid)
			s.logger.Debug("request rejected", slog.Int("violations", len(verr.Fields)))
		}
		return models.ChurnResponse{}, err
	}

	if s.dispatcher == nil {
		return models.ChurnResponse{}, utils.NewInferenceError("services.Score", "dispatcher not configured", nil)
	}
	resp, err := s.dispatcher.Dispatch(ctx, req)
	duration := time.Since(start)
	if err != nil {
		metrics.ObservePrediction(duration, metrics.OutcomeError)
		s.logger.Error("inference failed", slog.Any("error", err))
		return models.ChurnResponse{}, err
	}

	outcome := metrics.OutcomeRetain
	if resp.Churn == models.LabelYes {
		outcome = metrics.OutcomeChurn
	}
	metrics.ObservePrediction(duration, outcome)
	s.latencies.Observe(duration)
	if count := s.latencies.Total(); count >= 100 && count%100 == 0 {
		s.logger.Info("inference latency", slog.Duration("p95", s.latencies.Percentile(95)), slog.Uint64("samples", count))
	}
	return resp, nil
}

// Catalog returns the categorical enumerations clients may submit.
func (s *ChurnService) Catalog() models.LabelCatalog {
	return models.Labels()
}

// Predict implements churn.v1.ChurnService/Predict.
func (s *ChurnService) Predict(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request cannot be nil")
	}

	body, err := api.FromProtoStruct(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	resp, err := s.Score(ctx, body)
	if err != nil {
		var verr *schema.ValidationError
		switch {
		case errors.As(err, &verr):
			return nil, api.ValidationStatus(verr)
		case errors.Is(err, context.Canceled):
			return nil, status.Error(codes.Canceled, err.Error())
		case errors.Is(err, context.DeadlineExceeded):
			return nil, status.Error(codes.DeadlineExceeded, err.Error())
		default:
			return nil, status.Error(codes.Internal, "inference failed")
		}
	}

	out, err := api.ToProtoPrediction(resp)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// Labels implements churn.v1.ChurnService/Labels.
func (s *ChurnService) Labels(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	out, err := api.ToProtoLabels(s.Catalog())
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// LatencyP95 returns the current p95 inference latency.
func (s *ChurnService) LatencyP95() time.Duration {
	if s.latencies == nil {
		return 0
	}
	return s.latencies.Percentile(95)
}
