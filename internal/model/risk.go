package model

// Tier is the qualitative risk level derived from the numeric score.
type Tier string

const (
	TierLow      Tier = "LOW"
	TierMedium   Tier = "MEDIUM"
	TierHigh     Tier = "HIGH"
	TierCritical Tier = "CRITICAL"
)

// Tier thresholds, evaluated highest first: score > 70 is CRITICAL,
// > 40 HIGH, > 20 MEDIUM, else LOW.
const (
	CriticalThreshold = 70
	HighThreshold     = 40
	MediumThreshold   = 20
)

// TierForScore maps a score to its tier. Total over [0,100]: every
// score resolves to exactly one tier.
func TierForScore(score float64) Tier {
	switch {
	case score > CriticalThreshold:
		return TierCritical
	case score > HighThreshold:
		return TierHigh
	case score > MediumThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

// RiskAssessment is the bounded risk score with its tier and the
// transparent per-component breakdown. Derived, never persisted on its
// own - recomputed on demand from the four record collections.
type RiskAssessment struct {
	Score   float64  `json:"score"` // clamped to [0,100]
	Tier    Tier     `json:"tier"`
	Signals []Signal `json:"signals,omitempty"`
}

// Signal carries the transparent data behind one scoring component:
// the inputs, the points awarded, and the formula applied.
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies a scoring component.
type SignalType string

const (
	SignalForestLoss     SignalType = "forest_loss"     // GLAD alert volume
	SignalCorporateRisk  SignalType = "corporate_risk"  // sanctioned entities
	SignalSocialUnrest   SignalType = "social_unrest"   // negative sentiment fraction
	SignalIndustrialSite SignalType = "industrial_site" // mapped industrial activity
)

// SignalSeverity indicates the importance of the signal.
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)
