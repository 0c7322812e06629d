package temporal

import (
	"fmt"

	"github.com/google/uuid"
)

// RiskLevel is the caller-declared risk classification of a request.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// AccessRequest is the contextual-integrity 6-tuple: what data, about whom,
// from whom, to whom, under what transmission principle, and under what
// temporal facts. Requests are immutable once constructed and are discarded
// after evaluation.
type AccessRequest struct {
	// RequestID correlates the request across audit records.
	RequestID string

	// DataType is the type of data being accessed.
	DataType string

	// DataSubject is who the data is about.
	DataSubject string

	// DataSender is the party requesting access.
	DataSender string

	// DataRecipient is the party receiving the data.
	DataRecipient string

	// TransmissionPrinciple is the norm governing the transfer.
	TransmissionPrinciple string

	// Context holds the temporal facts the request is evaluated under.
	Context TemporalContext

	// RiskLevel is the caller-declared risk classification. Advisory:
	// inheritance validation compares it against a computed score and
	// surfaces a mismatch as a warning only.
	RiskLevel RiskLevel
}

// NewAccessRequest constructs an immutable access request with a generated
// request ID. All five string fields are mandatory.
func NewAccessRequest(dataType, dataSubject, dataSender, dataRecipient, transmissionPrinciple string, ctx TemporalContext) (*AccessRequest, error) {
	for name, v := range map[string]string{
		"data_type":              dataType,
		"data_subject":           dataSubject,
		"data_sender":            dataSender,
		"data_recipient":         dataRecipient,
		"transmission_principle": transmissionPrinciple,
	} {
		if v == "" {
			return nil, fmt.Errorf("access request field %s cannot be empty", name)
		}
	}

	if ctx.Situation == "" {
		ctx.Situation = SituationNormal
	}
	if !ctx.Situation.Valid() {
		return nil, fmt.Errorf("invalid situation %q", ctx.Situation)
	}

	return &AccessRequest{
		RequestID:             uuid.New().String(),
		DataType:              dataType,
		DataSubject:           dataSubject,
		DataSender:            dataSender,
		DataRecipient:         dataRecipient,
		TransmissionPrinciple: transmissionPrinciple,
		Context:               ctx,
		RiskLevel:             RiskMedium,
	}, nil
}
