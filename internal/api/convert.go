package api

import (
	"fmt"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/miradorstack/churn-api/internal/models"
	"github.com/miradorstack/churn-api/internal/schema"
)

// FromProtoStruct renders a gRPC Struct payload as the JSON body the validator reads.
func FromProtoStruct(req *structpb.Struct) ([]byte, error) {
	if req == nil {
		return nil, fmt.Errorf("request is nil")
	}
	return protojson.Marshal(req)
}

// ToProtoPrediction converts a churn decision into the gRPC representation.
func ToProtoPrediction(resp models.ChurnResponse) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"churn":       resp.Churn,
		"probability": resp.Probability,
	})
}

// ToProtoLabels converts the label catalog into the gRPC representation.
func ToProtoLabels(catalog models.LabelCatalog) (*structpb.Struct, error) {
	fields := make(map[string]any, 4)
	for name, values := range catalog.Map() {
		list := make([]any, len(values))
		for i, v := range values {
			list[i] = v
		}
		fields[name] = list
	}
	return structpb.NewStruct(fields)
}

// ValidationStatus maps a validation failure onto InvalidArgument with one
// BadRequest field violation per offending field.
func ValidationStatus(verr *schema.ValidationError) error {
	st := status.New(codes.InvalidArgument, verr.Error())
	br := &errdetails.BadRequest{}
	for _, f := range verr.Fields {
		br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       f.Field,
			Description: f.Message,
		})
	}
	detailed, err := st.WithDetails(br)
	if err != nil {
		return st.Err()
	}
	return detailed.Err()
}
