package models

// AssumptionStatus tracks whether an assumption has been checked against reality.
type AssumptionStatus string

const (
	AssumptionUnverified    AssumptionStatus = "unverified"
	AssumptionVerifiedTrue  AssumptionStatus = "verified_true"
	AssumptionVerifiedFalse AssumptionStatus = "verified_false"
)

// Assumption is an explicit, trackable premise declared by a thought. It is
// owned by the session that declared it; only its status changes after
// declaration (invalidation or verification), never its core fields.
type Assumption struct {
	ID         string           `json:"id" yaml:"id"`
	Text       string           `json:"text" yaml:"text"`
	Confidence float64          `json:"confidence" yaml:"confidence"`
	Critical   bool             `json:"critical" yaml:"critical"`
	Verifiable bool             `json:"verifiable" yaml:"verifiable"`
	Evidence   string           `json:"evidence,omitempty" yaml:"evidence,omitempty"`
	Status     AssumptionStatus `json:"status" yaml:"status"`
}

// IsVerified reports whether the assumption has been checked, either way.
func (a Assumption) IsVerified() bool {
	return a.Status == AssumptionVerifiedTrue || a.Status == AssumptionVerifiedFalse
}

// IsFalsified reports whether the assumption has been proven false.
func (a Assumption) IsFalsified() bool {
	return a.Status == AssumptionVerifiedFalse
}

// AssumptionInput is the wire form of a newly declared assumption. Confidence
// and Critical are pointers so that omitted values can fall back to their
// defaults (1.0 and true) during validation.
type AssumptionInput struct {
	ID         string   `json:"id" yaml:"id"`
	Text       string   `json:"text" yaml:"text"`
	Confidence *float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
	Critical   *bool    `json:"critical,omitempty" yaml:"critical,omitempty"`
	Verifiable bool     `json:"verifiable,omitempty" yaml:"verifiable,omitempty"`
	Evidence   string   `json:"evidence,omitempty" yaml:"evidence,omitempty"`
}
