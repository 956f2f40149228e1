package model

import "time"

// Profile is the complete per-run analysis artifact: the raw record
// snapshot, the derived risk assessment, and the assembled report
// sections. Both the terminal/Markdown rendering and any downstream
// document renderer consume the same Sections so their figures always
// match.
type Profile struct {
	Region      string    `json:"region"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	RadiusKM    int       `json:"radius_km"`
	DaysBack    int       `json:"days_back"`
	GeneratedAt time.Time `json:"generated_at"`

	Alerts     []ForestAlert `json:"alerts"`
	Companies  []Company     `json:"companies"`
	Posts      []SocialPost  `json:"posts"`
	Businesses []Business    `json:"businesses"`

	SatelliteImages []string `json:"satellite_images,omitempty"` // file paths

	Risk     RiskAssessment `json:"risk"`
	Sections []Section      `json:"sections"`

	LLM *LLMSummary `json:"llm,omitempty"` // optional narrative, never affects Risk
}

// Section is one ordered report section: a heading, body paragraphs,
// and an optional table. Renderer-agnostic plain data.
type Section struct {
	Heading string   `json:"heading"`
	Body    []string `json:"body"`
	Table   *Table   `json:"table,omitempty"`
}

// Table is a simple header-plus-rows summary embedded in a section.
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// LLMSummary contains the optional LLM-generated narrative.
// It never affects scoring and is rendered separately.
type LLMSummary struct {
	Enabled      bool     `json:"enabled"`
	Provider     string   `json:"provider,omitempty"`
	Model        string   `json:"model,omitempty"`
	StrictSource bool     `json:"strict_source"` // whether the source allowlist was enforced
	SummaryMD    string   `json:"summary_md,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}
