package model

// ForestAlert represents a single GLAD forest-loss detection event
type ForestAlert struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Date       string  `json:"date"`                 // YYYY-MM-DD, normalized by the fetcher
	Confidence float64 `json:"confidence,omitempty"` // [0,1]; 0 means not reported
	AreaHa     float64 `json:"area,omitempty"`       // affected area in hectares
	AlertType  string  `json:"alert_type,omitempty"` // e.g. "GLAD-L"
}

// DefaultConfidence substitutes for alerts whose source omitted a
// confidence value when computing aggregates.
const DefaultConfidence = 0.5

// ConfidenceOrDefault returns the reported confidence, or
// DefaultConfidence when the source omitted it.
func (a ForestAlert) ConfidenceOrDefault() float64 {
	if a.Confidence == 0 {
		return DefaultConfidence
	}
	return a.Confidence
}
