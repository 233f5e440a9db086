package normalize

import "churnflow/internal/domain"

var (
	yesNo            = []string{"Yes", "No"}
	yesNoNoInternet  = []string{"Yes", "No", "No internet service"}
	yesNoNoPhoneLine = []string{"Yes", "No", "No phone service"}
)

type fieldDef struct {
	spec       domain.FieldSpec
	setText    func(*domain.CustomerRecord, string)
	setInt     func(*domain.CustomerRecord, int)
	setDecimal func(*domain.CustomerRecord, float64)
}

func text(name string, kind domain.FieldKind, options []string, set func(*domain.CustomerRecord, string)) fieldDef {
	return fieldDef{
		spec:    domain.FieldSpec{Name: name, Kind: kind, Required: true, Options: options},
		setText: set,
	}
}

func integer(name string, options []string, set func(*domain.CustomerRecord, int)) fieldDef {
	return fieldDef{
		spec:   domain.FieldSpec{Name: name, Kind: domain.FieldKindInteger, Required: true, Options: options},
		setInt: set,
	}
}

func decimal(name string, set func(*domain.CustomerRecord, float64)) fieldDef {
	return fieldDef{
		spec:       domain.FieldSpec{Name: name, Kind: domain.FieldKindDecimal, Required: true},
		setDecimal: set,
	}
}

// fields is the CustomerRecord schema in the prediction service's feature order.
var fields = []fieldDef{
	text("gender", domain.FieldKindCategorical, []string{"Male", "Female"}, func(r *domain.CustomerRecord, v string) { r.Gender = &v }),
	integer("SeniorCitizen", []string{"0", "1"}, func(r *domain.CustomerRecord, v int) { r.SeniorCitizen = &v }),
	text("Partner", domain.FieldKindYesNo, yesNo, func(r *domain.CustomerRecord, v string) { r.Partner = &v }),
	text("Dependents", domain.FieldKindYesNo, yesNo, func(r *domain.CustomerRecord, v string) { r.Dependents = &v }),
	integer("tenure", nil, func(r *domain.CustomerRecord, v int) { r.Tenure = &v }),
	text("PhoneService", domain.FieldKindYesNo, yesNo, func(r *domain.CustomerRecord, v string) { r.PhoneService = &v }),
	text("MultipleLines", domain.FieldKindCategorical, yesNoNoPhoneLine, func(r *domain.CustomerRecord, v string) { r.MultipleLines = &v }),
	text("InternetService", domain.FieldKindCategorical, []string{"DSL", "Fiber optic", "No"}, func(r *domain.CustomerRecord, v string) { r.InternetService = &v }),
	text("OnlineSecurity", domain.FieldKindCategorical, yesNoNoInternet, func(r *domain.CustomerRecord, v string) { r.OnlineSecurity = &v }),
	text("OnlineBackup", domain.FieldKindCategorical, yesNoNoInternet, func(r *domain.CustomerRecord, v string) { r.OnlineBackup = &v }),
	text("DeviceProtection", domain.FieldKindCategorical, yesNoNoInternet, func(r *domain.CustomerRecord, v string) { r.DeviceProtection = &v }),
	text("TechSupport", domain.FieldKindCategorical, yesNoNoInternet, func(r *domain.CustomerRecord, v string) { r.TechSupport = &v }),
	text("StreamingTV", domain.FieldKindCategorical, yesNoNoInternet, func(r *domain.CustomerRecord, v string) { r.StreamingTV = &v }),
	text("StreamingMovies", domain.FieldKindCategorical, yesNoNoInternet, func(r *domain.CustomerRecord, v string) { r.StreamingMovies = &v }),
	text("Contract", domain.FieldKindCategorical, []string{"Month-to-month", "One year", "Two year"}, func(r *domain.CustomerRecord, v string) { r.Contract = &v }),
	text("PaperlessBilling", domain.FieldKindYesNo, yesNo, func(r *domain.CustomerRecord, v string) { r.PaperlessBilling = &v }),
	text("PaymentMethod", domain.FieldKindCategorical, []string{
		"Electronic check", "Mailed check", "Bank transfer (automatic)", "Credit card (automatic)",
	}, func(r *domain.CustomerRecord, v string) { r.PaymentMethod = &v }),
	decimal("MonthlyCharges", func(r *domain.CustomerRecord, v float64) { r.MonthlyCharges = &v }),
	decimal("TotalCharges", func(r *domain.CustomerRecord, v float64) { r.TotalCharges = &v }),
}

// Schema returns the CustomerRecord field table.
func Schema() []domain.FieldSpec {
	out := make([]domain.FieldSpec, len(fields))
	for i, f := range fields {
		out[i] = f.spec
	}
	return out
}
