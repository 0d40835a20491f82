package engine

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/miradorstack/churn-api/internal/models"
	"github.com/miradorstack/churn-api/internal/utils"
)

type stubModel struct {
	columns []string
	prob    float64
	err     error
	calls   int
	lastRow models.FeatureRow
}

func (s *stubModel) Columns() []string { return s.columns }

func (s *stubModel) PredictProbability(row models.FeatureRow) (float64, error) {
	s.calls++
	s.lastRow = row
	return s.prob, s.err
}

func newStub(prob float64) *stubModel {
	return &stubModel{columns: []string{"tenure", "Contract", "SeniorCitizen"}, prob: prob}
}

func TestDispatchThresholdAndRounding(t *testing.T) {
	cases := []struct {
		prob      float64
		wantProb  float64
		wantChurn string
	}{
		{0.5, 0.5, "Yes"},
		{0.49994, 0.4999, "No"},
		{0.49996, 0.5, "Yes"},
		{0.123456, 0.1235, "No"},
		{1, 1, "Yes"},
		{0, 0, "No"},
	}
	for _, tc := range cases {
		d, err := NewDispatcher(quietLogger(), newStub(tc.prob))
		if err != nil {
			t.Fatalf("new dispatcher: %v", err)
		}
		resp, err := d.Dispatch(context.Background(), exampleRequest())
		if err != nil {
			t.Fatalf("dispatch %v: %v", tc.prob, err)
		}
		if resp.Probability != tc.wantProb || resp.Churn != tc.wantChurn {
			t.Fatalf("prob %v: got %+v, want {%s %v}", tc.prob, resp, tc.wantChurn, tc.wantProb)
		}
	}
}

func TestDispatchBuildsRowInModelOrder(t *testing.T) {
	stub := newStub(0.2)
	d, err := NewDispatcher(quietLogger(), stub)
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	if _, err := d.Dispatch(context.Background(), exampleRequest()); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	want := models.FeatureRow{
		{Name: "tenure", Value: 12.0},
		{Name: "Contract", Value: "Month-to-month"},
		{Name: "SeniorCitizen", Value: 0.0},
	}
	if len(stub.lastRow) != len(want) {
		t.Fatalf("unexpected row %+v", stub.lastRow)
	}
	for i := range want {
		if stub.lastRow[i] != want[i] {
			t.Fatalf("cell %d: got %+v, want %+v", i, stub.lastRow[i], want[i])
		}
	}
}

func TestDispatchInferenceErrors(t *testing.T) {
	cases := map[string]*stubModel{
		"model error": {columns: []string{"tenure"}, err: errors.New("shape mismatch")},
		"nan":         {columns: []string{"tenure"}, prob: math.NaN()},
		"above one":   {columns: []string{"tenure"}, prob: 1.2},
		"below zero":  {columns: []string{"tenure"}, prob: -0.1},
	}
	for name, stub := range cases {
		t.Run(name, func(t *testing.T) {
			d, err := NewDispatcher(quietLogger(), stub)
			if err != nil {
				t.Fatalf("new dispatcher: %v", err)
			}
			_, err = d.Dispatch(context.Background(), exampleRequest())
			if !utils.IsInference(err) {
				t.Fatalf("expected inference error, got %v", err)
			}
			if stub.calls != 1 {
				t.Fatalf("expected exactly one model call, got %d", stub.calls)
			}
		})
	}
}

func TestDispatchCancelledContextSkipsModel(t *testing.T) {
	stub := newStub(0.9)
	d, _ := NewDispatcher(quietLogger(), stub)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.Dispatch(ctx, exampleRequest()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if stub.calls != 0 {
		t.Fatalf("model must not be called for a cancelled request")
	}
}

func TestNewDispatcherStartupErrors(t *testing.T) {
	if _, err := NewDispatcher(nil, nil); !utils.IsStartup(err) {
		t.Fatalf("expected startup error for nil model, got %v", err)
	}
	stub := &stubModel{columns: []string{"tenure", "customerID"}}
	if _, err := NewDispatcher(nil, stub); !utils.IsStartup(err) {
		t.Fatalf("expected startup error for unknown column, got %v", err)
	}
}

func TestDispatchWithLoadedPipeline(t *testing.T) {
	d, err := NewDispatcher(quietLogger(), loadTestPipeline(t))
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	resp, err := d.Dispatch(context.Background(), exampleRequest())
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if resp.Probability != 0.5908 || resp.Churn != models.LabelYes {
		t.Fatalf("unexpected response %+v", resp)
	}
}
