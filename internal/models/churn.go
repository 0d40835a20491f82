package models

// Churn labels returned to callers.
const (
	LabelYes = "Yes"
	LabelNo  = "No"
)

// ChurnRequest is a validated telecom customer record. Field names on the wire are
// the training-time column names.
type ChurnRequest struct {
	TotalCharges   float64 `json:"TotalCharges"`
	MonthlyCharges float64 `json:"MonthlyCharges"`
	Tenure         float64 `json:"tenure"`

	SeniorCitizen    int    `json:"SeniorCitizen"`
	Partner          string `json:"Partner"`
	Dependents       string `json:"Dependents"`
	PhoneService     string `json:"PhoneService"`
	MultipleLines    string `json:"MultipleLines"`
	OnlineSecurity   string `json:"OnlineSecurity"`
	OnlineBackup     string `json:"OnlineBackup"`
	DeviceProtection string `json:"DeviceProtection"`
	TechSupport      string `json:"TechSupport"`
	StreamingTV      string `json:"StreamingTV"`
	StreamingMovies  string `json:"StreamingMovies"`
	PaperlessBilling string `json:"PaperlessBilling"`

	PaymentMethod   string `json:"PaymentMethod"`
	Contract        string `json:"Contract"`
	InternetService string `json:"InternetService"`
	Gender          string `json:"gender"`
}

// ChurnResponse is the shaped inference result.
type ChurnResponse struct {
	Churn       string  `json:"churn"`
	Probability float64 `json:"probability"`
}

// HealthStatus is the liveness payload.
type HealthStatus struct {
	Status string `json:"status"`
}

// Columns lists request fields in training-time order.
var Columns = []string{
	"TotalCharges", "MonthlyCharges", "tenure",
	"SeniorCitizen", "Partner", "Dependents", "PhoneService", "MultipleLines",
	"OnlineSecurity", "OnlineBackup", "DeviceProtection", "TechSupport",
	"StreamingTV", "StreamingMovies", "PaperlessBilling",
	"PaymentMethod", "Contract", "InternetService", "gender",
}

// Value returns the value held for a column name. Numeric columns yield float64,
// everything else yields the literal string.
func (r ChurnRequest) Value(column string) (any, bool) {
	switch column {
	case "TotalCharges":
		return r.TotalCharges, true
	case "MonthlyCharges":
		return r.MonthlyCharges, true
	case "tenure":
		return r.Tenure, true
	case "SeniorCitizen":
		return float64(r.SeniorCitizen), true
	case "Partner":
		return r.Partner, true
	case "Dependents":
		return r.Dependents, true
	case "PhoneService":
		return r.PhoneService, true
	case "MultipleLines":
		return r.MultipleLines, true
	case "OnlineSecurity":
		return r.OnlineSecurity, true
	case "OnlineBackup":
		return r.OnlineBackup, true
	case "DeviceProtection":
		return r.DeviceProtection, true
	case "TechSupport":
		return r.TechSupport, true
	case "StreamingTV":
		return r.StreamingTV, true
	case "StreamingMovies":
		return r.StreamingMovies, true
	case "PaperlessBilling":
		return r.PaperlessBilling, true
	case "PaymentMethod":
		return r.PaymentMethod, true
	case "Contract":
		return r.Contract, true
	case "InternetService":
		return r.InternetService, true
	case "gender":
		return r.Gender, true
	default:
		return nil, false
	}
}

// Feature is one named cell of a FeatureRow.
type Feature struct {
	Name  string
	Value any
}

// FeatureRow is a single-row input laid out in the column order a model expects.
type FeatureRow []Feature

// Get returns the value for name.
func (row FeatureRow) Get(name string) (any, bool) {
	for _, f := range row {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}
