package models

// Enumeration names used by the schema validator.
const (
	EnumYesNo           = "YesNo"
	EnumPaymentMethod   = "PaymentMethod"
	EnumContract        = "Contract"
	EnumInternetService = "InternetService"
	EnumGender          = "gender"
)

var enumerations = map[string][]string{
	EnumYesNo:           {LabelYes, LabelNo},
	EnumPaymentMethod:   {"Electronic check", "Mailed check", "Bank transfer (automatic)", "Credit card (automatic)"},
	EnumContract:        {"Month-to-month", "One year", "Two year"},
	EnumInternetService: {"DSL", "Fiber optic", "No"},
	EnumGender:          {"Male", "Female"},
}

// Enumeration returns a copy of the literal values accepted for name.
func Enumeration(name string) ([]string, bool) {
	values, ok := enumerations[name]
	if !ok {
		return nil, false
	}
	return append([]string(nil), values...), true
}

// InEnumeration reports whether value is one of the literals of enumeration name.
func InEnumeration(name, value string) bool {
	for _, v := range enumerations[name] {
		if v == value {
			return true
		}
	}
	return false
}

// LabelCatalog lists the categorical enumerations clients may self-describe from.
// Field order is the wire order.
type LabelCatalog struct {
	PaymentMethod   []string `json:"PaymentMethod"`
	Contract        []string `json:"Contract"`
	InternetService []string `json:"InternetService"`
	Gender          []string `json:"gender"`
}

// Labels returns a fresh catalog.
func Labels() LabelCatalog {
	payment, _ := Enumeration(EnumPaymentMethod)
	contract, _ := Enumeration(EnumContract)
	internet, _ := Enumeration(EnumInternetService)
	gender, _ := Enumeration(EnumGender)
	return LabelCatalog{
		PaymentMethod:   payment,
		Contract:        contract,
		InternetService: internet,
		Gender:          gender,
	}
}

// Map renders the catalog keyed by enumeration name.
func (c LabelCatalog) Map() map[string][]string {
	return map[string][]string{
		EnumPaymentMethod:   c.PaymentMethod,
		EnumContract:        c.Contract,
		EnumInternetService: c.InternetService,
		EnumGender:          c.Gender,
	}
}
