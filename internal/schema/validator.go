// Package schema validates raw churn requests before they reach the model.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/miradorstack/churn-api/internal/models"
)

// payload mirrors models.ChurnRequest with pointer fields so absent and null keys are
// distinguishable from zero values.
type payload struct {
	TotalCharges   *float64 `json:"TotalCharges" validate:"required,gte=0"`
	MonthlyCharges *float64 `json:"MonthlyCharges" validate:"required,gte=0"`
	Tenure         *float64 `json:"tenure" validate:"required,gte=0"`

	SeniorCitizen    *int    `json:"SeniorCitizen" validate:"required,oneof=0 1"`
	Partner          *string `json:"Partner" validate:"required,enum=YesNo"`
	Dependents       *string `json:"Dependents" validate:"required,enum=YesNo"`
	PhoneService     *string `json:"PhoneService" validate:"required,enum=YesNo"`
	MultipleLines    *string `json:"MultipleLines" validate:"required,enum=YesNo"`
	OnlineSecurity   *string `json:"OnlineSecurity" validate:"required,enum=YesNo"`
	OnlineBackup     *string `json:"OnlineBackup" validate:"required,enum=YesNo"`
	DeviceProtection *string `json:"DeviceProtection" validate:"required,enum=YesNo"`
	TechSupport      *string `json:"TechSupport" validate:"required,enum=YesNo"`
	StreamingTV      *string `json:"StreamingTV" validate:"required,enum=YesNo"`
	StreamingMovies  *string `json:"StreamingMovies" validate:"required,enum=YesNo"`
	PaperlessBilling *string `json:"PaperlessBilling" validate:"required,enum=YesNo"`

	PaymentMethod   *string `json:"PaymentMethod" validate:"required,enum=PaymentMethod"`
	Contract        *string `json:"Contract" validate:"required,enum=Contract"`
	InternetService *string `json:"InternetService" validate:"required,enum=InternetService"`
	Gender          *string `json:"gender" validate:"required,enum=gender"`
}

// Validator turns untyped JSON into a models.ChurnRequest. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New constructs a Validator with the enumeration rules registered.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	if err := v.RegisterValidation("enum", validateEnum); err != nil {
		// Only fails for an empty or reserved tag name.
		panic(err)
	}
	return &Validator{validate: v}
}

// Decode validates body and returns the typed record. Every violation is collected into
// a single *ValidationError.
func (v *Validator) Decode(body []byte) (models.ChurnRequest, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return models.ChurnRequest{}, &ValidationError{Fields: []FieldError{{
			Field:   "body",
			Rule:    "json",
			Message: "request body must be a JSON object",
		}}}
	}

	var p payload
	var violations []FieldError
	badType := make(map[string]bool)

	pv := reflect.ValueOf(&p).Elem()
	pt := pv.Type()
	for i := 0; i < pt.NumField(); i++ {
		name := jsonName(pt.Field(i))
		msg, ok := raw[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(msg, pv.Field(i).Addr().Interface()); err != nil {
			badType[name] = true
			violations = append(violations, FieldError{
				Field:   name,
				Rule:    "type",
				Message: "expected " + describeType(pt.Field(i).Type),
			})
		}
	}

	if err := v.validate.Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return models.ChurnRequest{}, fmt.Errorf("validate request: %w", err)
		}
		for _, fe := range fieldErrs {
			if badType[fe.Field()] {
				continue
			}
			violations = append(violations, toFieldError(fe))
		}
	}

	if len(violations) > 0 {
		sortByColumn(violations)
		return models.ChurnRequest{}, &ValidationError{Fields: violations}
	}
	return p.record(), nil
}

func (p payload) record() models.ChurnRequest {
	return models.ChurnRequest{
		TotalCharges:     *p.TotalCharges,
		MonthlyCharges:   *p.MonthlyCharges,
		Tenure:           *p.Tenure,
		SeniorCitizen:    *p.SeniorCitizen,
		Partner:          *p.Partner,
		Dependents:       *p.Dependents,
		PhoneService:     *p.PhoneService,
		MultipleLines:    *p.MultipleLines,
		OnlineSecurity:   *p.OnlineSecurity,
		OnlineBackup:     *p.OnlineBackup,
		DeviceProtection: *p.DeviceProtection,
		TechSupport:      *p.TechSupport,
		StreamingTV:      *p.StreamingTV,
		StreamingMovies:  *p.StreamingMovies,
		PaperlessBilling: *p.PaperlessBilling,
		PaymentMethod:    *p.PaymentMethod,
		Contract:         *p.Contract,
		InternetService:  *p.InternetService,
		Gender:           *p.Gender,
	}
}

func validateEnum(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	return models.InEnumeration(fl.Param(), fl.Field().String())
}

func toFieldError(fe validator.FieldError) FieldError {
	out := FieldError{Field: fe.Field(), Rule: fe.Tag()}
	switch fe.Tag() {
	case "required":
		out.Message = "field required"
	case "gte":
		out.Message = "must be greater than or equal to " + fe.Param()
	case "oneof":
		out.Message = "must be one of " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "enum":
		values, _ := models.Enumeration(fe.Param())
		quoted := make([]string, len(values))
		for i, v := range values {
			quoted[i] = fmt.Sprintf("%q", v)
		}
		out.Message = "must be one of " + strings.Join(quoted, ", ")
	default:
		out.Message = fmt.Sprintf("failed %s constraint", fe.Tag())
	}
	return out
}

func describeType(t reflect.Type) string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Float64:
		return "a number"
	case reflect.Int:
		return "an integer"
	default:
		return "a string"
	}
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

var columnIndex = func() map[string]int {
	idx := make(map[string]int, len(models.Columns))
	for i, c := range models.Columns {
		idx[c] = i
	}
	return idx
}()

func sortByColumn(fields []FieldError) {
	sort.SliceStable(fields, func(i, j int) bool {
		return columnIndex[fields[i].Field] < columnIndex[fields[j].Field]
	})
}
