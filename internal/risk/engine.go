// Package risk computes the bounded environmental risk score for a
// region from the four fetched record collections. The engine is pure:
// it never fails, never mutates its inputs, and degrades every missing
// or empty input to a zero component.
package risk

import (
	"fmt"
	"math"

	"github.com/osintlab/ecoprofiler/internal/model"
)

// Component caps. The four capped components sum to at most 100.
const (
	ForestCap     = 40.0
	CorporateCap  = 30.0
	SocialCap     = 20.0
	IndustrialCap = 10.0

	pointsPerAlert      = 2.0
	pointsPerSanctioned = 15.0
	pointsPerSite       = 2.0
)

// Engine calculates the risk assessment and its diagnostic signals.
type Engine struct{}

// NewEngine creates a new scoring engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Score maps the four record collections to a clamped [0,100] score
// and tier. Any or all collections may be empty.
func (e *Engine) Score(alerts []model.ForestAlert, companies []model.Company, posts []model.SocialPost, businesses []model.Business) model.RiskAssessment {
	var signals []model.Signal

	forest, forestSignal := e.forestComponent(alerts)
	signals = append(signals, forestSignal)

	corporate, corpSignal := e.corporateComponent(companies)
	signals = append(signals, corpSignal)

	social, socialSignal := e.socialComponent(posts)
	signals = append(signals, socialSignal)

	industrial, indSignal := e.industrialComponent(businesses)
	signals = append(signals, indSignal)

	total := forest + corporate + social + industrial
	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}

	return model.RiskAssessment{
		Score:   total,
		Tier:    model.TierForScore(total),
		Signals: signals,
	}
}

// forestComponent awards up to ForestCap points for GLAD alert volume.
func (e *Engine) forestComponent(alerts []model.ForestAlert) (float64, model.Signal) {
	count := len(alerts)
	score := math.Min(ForestCap, pointsPerAlert*float64(count))

	severity := model.SeverityInfo
	if score >= ForestCap {
		severity = model.SeverityCritical
	} else if count > 0 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalForestLoss,
		Severity:    severity,
		Description: fmt.Sprintf("%d forest loss alerts", count),
		Data: map[string]interface{}{
			"alerts":  count,
			"score":   score,
			"formula": "min(alert_count * 2, 40)",
		},
	}
}

// corporateComponent awards up to CorporateCap points per sanctioned
// entity. The shell-company flag is reported, not scored.
func (e *Engine) corporateComponent(companies []model.Company) (float64, model.Signal) {
	sanctioned := 0
	for _, c := range companies {
		if c.Sanctioned {
			sanctioned++
		}
	}
	score := math.Min(CorporateCap, pointsPerSanctioned*float64(sanctioned))

	severity := model.SeverityInfo
	if sanctioned > 1 {
		severity = model.SeverityCritical
	} else if sanctioned == 1 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalCorporateRisk,
		Severity:    severity,
		Description: fmt.Sprintf("%d sanctioned entities of %d companies", sanctioned, len(companies)),
		Data: map[string]interface{}{
			"companies":  len(companies),
			"sanctioned": sanctioned,
			"score":      score,
			"formula":    "min(sanctioned_count * 15, 30)",
		},
	}
}

// socialComponent awards up to SocialCap points for the fraction of
// posts with negative sentiment. Zero posts yield zero, not a division
// error.
func (e *Engine) socialComponent(posts []model.SocialPost) (float64, model.Signal) {
	total := len(posts)
	if total == 0 {
		return 0, model.Signal{
			Type:        model.SignalSocialUnrest,
			Severity:    model.SeverityInfo,
			Description: "No social media posts available",
			Data:        map[string]interface{}{"posts": 0, "score": 0.0},
		}
	}

	negative := 0
	for _, p := range posts {
		if p.Negative() {
			negative++
		}
	}
	fraction := float64(negative) / float64(total)
	score := math.Min(SocialCap, fraction*SocialCap)

	severity := model.SeverityInfo
	if fraction > 0.5 {
		severity = model.SeverityCritical
	} else if fraction > 0.25 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalSocialUnrest,
		Severity:    severity,
		Description: fmt.Sprintf("%d of %d posts negative (%.0f%%)", negative, total, fraction*100),
		Data: map[string]interface{}{
			"posts":    total,
			"negative": negative,
			"fraction": fraction,
			"score":    score,
			"formula":  "min(negative_count / post_count * 20, 20)",
		},
	}
}

// industrialComponent awards up to IndustrialCap points for mapped
// businesses whose tags match the industrial keyword set.
func (e *Engine) industrialComponent(businesses []model.Business) (float64, model.Signal) {
	industrial := model.CountIndustrial(businesses)
	score := math.Min(IndustrialCap, pointsPerSite*float64(industrial))

	severity := model.SeverityInfo
	if industrial > 2 {
		severity = model.SeverityWarning
	}

	return score, model.Signal{
		Type:        model.SignalIndustrialSite,
		Severity:    severity,
		Description: fmt.Sprintf("%d industrial sites of %d mapped businesses", industrial, len(businesses)),
		Data: map[string]interface{}{
			"businesses": len(businesses),
			"industrial": industrial,
			"score":      score,
			"formula":    "min(industrial_count * 2, 10)",
		},
	}
}
