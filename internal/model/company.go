package model

import "strings"

// Company represents a corporate entity assembled from the registry
// sources (Wikidata, GLEIF, OpenSanctions). Boolean risk flags default
// to false when a source omits them.
type Company struct {
	Name         string   `json:"name"`
	WikidataID   string   `json:"wikidata_id,omitempty"`
	LEI          string   `json:"lei,omitempty"` // GLEIF Legal Entity Identifier
	Industry     string   `json:"industry,omitempty"`
	Founded      string   `json:"founded,omitempty"`
	Location     string   `json:"location,omitempty"`
	Status       string   `json:"status,omitempty"`
	Source       string   `json:"source,omitempty"` // which registry produced the record
	Sanctioned   bool     `json:"sanctioned"`
	ShellCompany bool     `json:"shell_company"`
	Parent       string   `json:"parent,omitempty"`
	Subsidiaries []string `json:"subsidiaries,omitempty"`
}

// HighRiskIndustries are industries that add a risk factor on their own.
var HighRiskIndustries = []string{"mining", "logging", "oil"}

// RiskFactors returns the triggered risk factor labels for the company.
func (c Company) RiskFactors() []string {
	var factors []string
	if c.Sanctioned {
		factors = append(factors, "Sanctions")
	}
	if c.ShellCompany {
		factors = append(factors, "Shell Company")
	}
	industry := strings.ToLower(c.Industry)
	for _, hr := range HighRiskIndustries {
		if industry == hr {
			factors = append(factors, "High-Risk Industry")
			break
		}
	}
	return factors
}

// Flagged reports whether the company appears in the corporate risk
// section (sanctioned or shell, per the assembler contract).
func (c Company) Flagged() bool {
	return c.Sanctioned || c.ShellCompany
}

// Business represents a mapped business or facility from the
// OpenStreetMap Overpass source.
type Business struct {
	ID   int64             `json:"id"`
	Type string            `json:"type,omitempty"` // node or way
	Lat  float64           `json:"lat,omitempty"`
	Lon  float64           `json:"lon,omitempty"`
	Tags map[string]string `json:"tags"`
}

// IndustrialKeywords is the fixed tag-substring set used to classify a
// business as industrial activity. The same set feeds both the scorer
// and the corporate analysis section so their counts always agree.
var IndustrialKeywords = []string{"industrial", "mining", "logging", "quarry"}

// Industrial reports whether any tag key or value contains one of the
// industrial keywords.
func (b Business) Industrial() bool {
	for k, v := range b.Tags {
		lk, lv := strings.ToLower(k), strings.ToLower(v)
		for _, kw := range IndustrialKeywords {
			if strings.Contains(lk, kw) || strings.Contains(lv, kw) {
				return true
			}
		}
	}
	return false
}

// Name returns the display name from the business tags.
func (b Business) Name() string {
	if n, ok := b.Tags["name"]; ok && n != "" {
		return n
	}
	return "Unknown"
}

// CountIndustrial counts the businesses classified as industrial.
func CountIndustrial(businesses []Business) int {
	n := 0
	for _, b := range businesses {
		if b.Industrial() {
			n++
		}
	}
	return n
}
