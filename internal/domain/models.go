package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RawRecord is one uploaded row before type coercion. CSV values are strings;
// JSON values are string, json.Number, bool or nil.
type RawRecord map[string]any

// CustomerRecord is the typed feature set sent to the prediction service.
// A nil field was absent from the upload and is omitted on the wire.
type CustomerRecord struct {
	Gender           *string  `json:"gender,omitempty"`
	SeniorCitizen    *int     `json:"SeniorCitizen,omitempty"`
	Partner          *string  `json:"Partner,omitempty"`
	Dependents       *string  `json:"Dependents,omitempty"`
	Tenure           *int     `json:"tenure,omitempty"`
	PhoneService     *string  `json:"PhoneService,omitempty"`
	MultipleLines    *string  `json:"MultipleLines,omitempty"`
	InternetService  *string  `json:"InternetService,omitempty"`
	OnlineSecurity   *string  `json:"OnlineSecurity,omitempty"`
	OnlineBackup     *string  `json:"OnlineBackup,omitempty"`
	DeviceProtection *string  `json:"DeviceProtection,omitempty"`
	TechSupport      *string  `json:"TechSupport,omitempty"`
	StreamingTV      *string  `json:"StreamingTV,omitempty"`
	StreamingMovies  *string  `json:"StreamingMovies,omitempty"`
	Contract         *string  `json:"Contract,omitempty"`
	PaperlessBilling *string  `json:"PaperlessBilling,omitempty"`
	PaymentMethod    *string  `json:"PaymentMethod,omitempty"`
	MonthlyCharges   *float64 `json:"MonthlyCharges,omitempty"`
	TotalCharges     *float64 `json:"TotalCharges,omitempty"`
}

// InvalidRecord marks a record that failed local type coercion.
type InvalidRecord struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// NormalizedRecord holds exactly one of Customer or Invalid for the upload
// row at Index.
type NormalizedRecord struct {
	Index    int
	Customer *CustomerRecord
	Invalid  *InvalidRecord
}

// IsValid reports whether the record can be sent to the prediction service.
func (r NormalizedRecord) IsValid() bool {
	return r.Invalid == nil && r.Customer != nil
}

// Prediction is the successful per-record payload from the prediction service.
type Prediction struct {
	Churn            bool      `json:"churn"`
	ChurnProbability float64   `json:"churn_probability"`
	Confidence       float64   `json:"confidence"`
	RiskLevel        RiskLevel `json:"risk_level"`
}

// Failure carries the reason a record produced no prediction.
type Failure struct {
	Message string `json:"message"`
}

// Outcome is the result for the upload row at Index: either Success or Failure.
type Outcome struct {
	Index   int         `json:"index"`
	Success *Prediction `json:"prediction,omitempty"`
	Failure *Failure    `json:"failure,omitempty"`
}

// SuccessOutcome builds a successful outcome.
func SuccessOutcome(index int, p Prediction) Outcome {
	return Outcome{Index: index, Success: &p}
}

// FailureOutcome builds a failed outcome. An empty message is replaced so a
// failure is never silent.
func FailureOutcome(index int, msg string) Outcome {
	if msg == "" {
		msg = "unknown error"
	}
	return Outcome{Index: index, Failure: &Failure{Message: msg}}
}

// IsFailure reports whether the outcome carries no prediction.
func (o Outcome) IsFailure() bool {
	return o.Failure != nil || o.Success == nil
}

// ErrorMessage returns the failure message, or "" for a success.
func (o Outcome) ErrorMessage() string {
	if o.Failure != nil {
		return o.Failure.Message
	}
	if o.Success == nil {
		return "unknown error"
	}
	return ""
}

// BatchResult holds one outcome per input record, in upload order.
type BatchResult []Outcome

// Validate checks that every position holds the outcome for that index.
func (r BatchResult) Validate() error {
	for i, o := range r {
		if o.Index != i {
			return fmt.Errorf("outcome at position %d has index %d", i, o.Index)
		}
	}
	return nil
}

// BatchStatistics summarizes a BatchResult. Percentages keep full precision;
// ChurnRate and AvgProbability are nil when no record succeeded.
type BatchStatistics struct {
	Total          int               `json:"total"`
	Errors         int               `json:"errors"`
	ChurnCount     int               `json:"churn_count"`
	StayCount      int               `json:"stay_count"`
	ChurnRate      *float64          `json:"churn_rate"`
	AvgProbability *float64          `json:"avg_probability"`
	RiskBreakdown  map[RiskLevel]int `json:"risk_breakdown"`
}

// BatchRun is one completed upload, owned by the session that submitted it.
type BatchRun struct {
	ID          uuid.UUID   `json:"batch_id"`
	Filename    string      `json:"filename"`
	Format      FileFormat  `json:"format"`
	Result      BatchResult `json:"results"`
	Warnings    []string    `json:"warnings,omitempty"`
	SubmittedAt time.Time   `json:"submitted_at"`
}

// Recommendation is one retention action suggested for a customer.
type Recommendation struct {
	Category string    `json:"category"`
	Priority RiskLevel `json:"priority"`
	Message  string    `json:"message"`
	Impact   string    `json:"impact"`
}

// RecommendationSet is the recommendation service's answer for one customer.
type RecommendationSet struct {
	ChurnProbability float64          `json:"churn_probability"`
	RiskLevel        RiskLevel        `json:"risk_level"`
	Recommendations  []Recommendation `json:"recommendations"`
}

// ModelMetrics are the evaluation scores the prediction model was published with.
type ModelMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1_score"`
	ROCAUC    float64 `json:"roc_auc"`
}

// ModelFeatureCounts counts the features the model was trained on.
type ModelFeatureCounts struct {
	Total       int `json:"total"`
	Categorical int `json:"categorical"`
	Numerical   int `json:"numerical"`
}

// ModelInfo describes the model behind the prediction service.
type ModelInfo struct {
	ModelName       string             `json:"model_name"`
	Metrics         ModelMetrics       `json:"metrics"`
	Features        ModelFeatureCounts `json:"features"`
	Hyperparameters map[string]any     `json:"hyperparameters"`
}

// FieldSpec describes one CustomerRecord field.
type FieldSpec struct {
	Name     string    `json:"name"`
	Kind     FieldKind `json:"kind"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty"`
}
