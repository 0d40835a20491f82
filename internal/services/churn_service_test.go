package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/miradorstack/churn-api/internal/engine"
	"github.com/miradorstack/churn-api/internal/models"
	"github.com/miradorstack/churn-api/internal/schema"
	"github.com/miradorstack/churn-api/internal/utils"
)

type dispatcherStub struct {
	resp  models.ChurnResponse
	err   error
	calls int
	last  models.ChurnRequest
}

func (d *dispatcherStub) Dispatch(ctx context.Context, req models.ChurnRequest) (models.ChurnResponse, error) {
	d.calls++
	d.last = req
	return d.resp, d.err
}

func requestFields() map[string]any {
	return map[string]any{
		"TotalCharges":     500.0,
		"MonthlyCharges":   70.5,
		"tenure":           12,
		"SeniorCitizen":    0,
		"Partner":          "Yes",
		"Dependents":       "No",
		"PhoneService":     "Yes",
		"MultipleLines":    "No",
		"OnlineSecurity":   "No",
		"OnlineBackup":     "No",
		"DeviceProtection": "No",
		"TechSupport":      "No",
		"StreamingTV":      "No",
		"StreamingMovies":  "No",
		"PaperlessBilling": "Yes",
		"PaymentMethod":    "Electronic check",
		"Contract":         "Month-to-month",
		"InternetService":  "Fiber optic",
		"gender":           "Female",
	}
}

func requestBody(t *testing.T, mutate func(map[string]any)) []byte {
	t.Helper()
	fields := requestFields()
	if mutate != nil {
		mutate(fields)
	}
	body, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return body
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestScoreDispatchesValidRequest(t *testing.T) {
	stub := &dispatcherStub{resp: models.ChurnResponse{Churn: models.LabelYes, Probability: 0.61}}
	service := NewChurnService(quietLogger(), nil, stub)

	resp, err := service.Score(context.Background(), requestBody(t, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp != stub.resp {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if stub.calls != 1 || stub.last.Tenure != 12 || stub.last.Gender != "Female" {
		t.Fatalf("dispatcher not called with decoded request: %+v", stub.last)
	}
	if service.LatencyP95() < 0 {
		t.Fatalf("expected non-negative latency")
	}
}

func TestScoreInvalidRequestSkipsDispatch(t *testing.T) {
	stub := &dispatcherStub{}
	service := NewChurnService(quietLogger(), schema.New(), stub)

	_, err := service.Score(context.Background(), requestBody(t, func(m map[string]any) {
		m["tenure"] = -1
		delete(m, "Contract")
	}))
	var verr *schema.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Fields) != 2 {
		t.Fatalf("expected two violations, got %+v", verr.Fields)
	}
	if stub.calls != 0 {
		t.Fatalf("dispatcher must not be called for invalid input")
	}
}

func TestScorePropagatesInferenceError(t *testing.T) {
	stub := &dispatcherStub{err: utils.NewInferenceError("engine.Dispatch", "boom", nil)}
	service := NewChurnService(quietLogger(), nil, stub)

	_, err := service.Score(context.Background(), requestBody(t, nil))
	if !utils.IsInference(err) {
		t.Fatalf("expected inference error, got %v", err)
	}
}

func TestScoreWithoutDispatcher(t *testing.T) {
	service := NewChurnService(quietLogger(), nil, nil)
	_, err := service.Score(context.Background(), requestBody(t, nil))
	if !utils.IsInference(err) {
		t.Fatalf("expected inference error, got %v", err)
	}
}

func TestScoreWithLoadedPipeline(t *testing.T) {
	pipeline, err := engine.LoadPipeline(filepath.Join("..", "engine", "testdata", "churn_model_pipeline.yaml"), quietLogger())
	if err != nil {
		t.Fatalf("load pipeline: %v", err)
	}
	dispatcher, err := engine.NewDispatcher(quietLogger(), pipeline)
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	service := NewChurnService(quietLogger(), schema.New(), dispatcher)

	resp, err := service.Score(context.Background(), requestBody(t, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Churn != models.LabelYes || resp.Probability != 0.5908 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestPredictReturnsStruct(t *testing.T) {
	stub := &dispatcherStub{resp: models.ChurnResponse{Churn: models.LabelNo, Probability: 0.12}}
	service := NewChurnService(quietLogger(), nil, stub)

	req, err := structpb.NewStruct(requestFields())
	if err != nil {
		t.Fatalf("new struct: %v", err)
	}
	out, err := service.Predict(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.GetFields()["churn"].GetStringValue() != models.LabelNo {
		t.Fatalf("unexpected churn: %v", out.GetFields()["churn"])
	}
	if out.GetFields()["probability"].GetNumberValue() != 0.12 {
		t.Fatalf("unexpected probability: %v", out.GetFields()["probability"])
	}
}

func TestPredictNilRequest(t *testing.T) {
	service := NewChurnService(quietLogger(), nil, &dispatcherStub{})
	_, err := service.Predict(context.Background(), nil)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestPredictValidationDetails(t *testing.T) {
	service := NewChurnService(quietLogger(), nil, &dispatcherStub{})
	fields := requestFields()
	fields["InternetService"] = "Satellite"
	req, err := structpb.NewStruct(fields)
	if err != nil {
		t.Fatalf("new struct: %v", err)
	}

	_, err = service.Predict(context.Background(), req)
	st := status.Convert(err)
	if st.Code() != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %s", st.Code())
	}
	found := false
	for _, d := range st.Details() {
		br, ok := d.(*errdetails.BadRequest)
		if !ok {
			continue
		}
		for _, v := range br.GetFieldViolations() {
			if v.GetField() == "InternetService" {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("expected InternetService violation in details: %v", st.Details())
	}
}

func TestPredictInferenceFailureIsInternal(t *testing.T) {
	stub := &dispatcherStub{err: utils.NewInferenceError("engine.Dispatch", "boom", nil)}
	service := NewChurnService(quietLogger(), nil, stub)
	req, _ := structpb.NewStruct(requestFields())

	_, err := service.Predict(context.Background(), req)
	st := status.Convert(err)
	if st.Code() != codes.Internal || st.Message() != "inference failed" {
		t.Fatalf("unexpected status: %v", st)
	}
}

func TestPredictCancelled(t *testing.T) {
	stub := &dispatcherStub{err: context.Canceled}
	service := NewChurnService(quietLogger(), nil, stub)
	req, _ := structpb.NewStruct(requestFields())

	_, err := service.Predict(context.Background(), req)
	if status.Code(err) != codes.Canceled {
		t.Fatalf("expected Canceled, got %v", err)
	}
}

func TestLabels(t *testing.T) {
	service := NewChurnService(quietLogger(), nil, nil)

	out, err := service.Labels(context.Background(), &emptypb.Empty{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.GetFields()) != 4 {
		t.Fatalf("expected four enumerations, got %d", len(out.GetFields()))
	}
	if got := service.Catalog(); len(got.Gender) != 2 {
		t.Fatalf("unexpected gender values: %v", got.Gender)
	}
}
