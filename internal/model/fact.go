// Package model defines the core data types shared across the statement
// engine: facts, periods, concept metadata, statements, and line items.
package model

import (
	"strings"
	"time"
)

// BalanceType is the taxonomy-declared balance attribute of a concept.
type BalanceType string

const (
	BalanceDebit  BalanceType = "debit"
	BalanceCredit BalanceType = "credit"
	BalanceNone   BalanceType = ""
)

// Dimension is one axis/member qualifier narrowing a fact to a sub-population.
type Dimension struct {
	Axis   string `json:"axis"`
	Member string `json:"member"`
}

// Fact is a single XBRL fact with its context. Facts are created once at
// ingestion and never mutated; all transformations produce derived values.
type Fact struct {
	Concept    string        `json:"concept"`
	Label      string        `json:"label,omitempty"`
	Value      string        `json:"value"`
	Numeric    *float64      `json:"numeric,omitempty"`
	Unit       string        `json:"unit,omitempty"`
	Decimals   *int          `json:"decimals,omitempty"`
	Period     Period        `json:"period"`
	Dimensions []Dimension   `json:"dimensions,omitempty"`
	Role       StatementRole `json:"role,omitempty"`
}

// HasDimensions reports whether the fact carries any axis/member qualifiers.
func (f Fact) HasDimensions() bool {
	return len(f.Dimensions) > 0
}

// Empty reports whether the fact carries no usable value. A nil numeric with
// a blank or whitespace-only raw value counts as empty; "" and absent are
// treated identically.
func (f Fact) Empty() bool {
	return f.Numeric == nil && strings.TrimSpace(f.Value) == ""
}

// LocalName returns the concept name without its taxonomy prefix.
// Both "us-gaap:Revenues" and "us-gaap_Revenues" forms are handled.
func LocalName(concept string) string {
	if i := strings.LastIndexAny(concept, ":_"); i >= 0 {
		return concept[i+1:]
	}
	return concept
}

// ConceptMeta holds per-concept attributes sourced from the taxonomy schema.
type ConceptMeta struct {
	Concept           string      `json:"concept"`
	Label             string      `json:"label,omitempty"`
	BalanceType       BalanceType `json:"balance_type,omitempty"`
	PeriodType        string      `json:"period_type,omitempty"` // "instant" or "duration"
	IsAbstract        bool        `json:"is_abstract,omitempty"`
	CalculationParent string      `json:"calculation_parent,omitempty"`
	Weight            float64     `json:"weight,omitempty"`
}

// PresentationEdge is one taxonomy-declared display ordering relationship.
type PresentationEdge struct {
	Parent         string `json:"parent"`
	Child          string `json:"child"`
	Order          int    `json:"order"`
	PreferredLabel string `json:"preferred_label,omitempty"`
}

// CalculationEdge is one taxonomy-declared arithmetic roll-up relationship.
type CalculationEdge struct {
	Parent string  `json:"parent"`
	Child  string  `json:"child"`
	Weight float64 `json:"weight"`
}

// FilingMeta identifies the filing a set of facts came from. It is passed
// through unchanged for display and audit, never interpreted by the engine.
type FilingMeta struct {
	FilerName   string    `json:"filer_name,omitempty"`
	CIK         string    `json:"cik,omitempty"`
	AccessionNo string    `json:"accession_no,omitempty"`
	FormType    string    `json:"form_type,omitempty"`
	FilingDate  time.Time `json:"filing_date,omitempty"`
	ReportDate  time.Time `json:"report_date,omitempty"`
}
