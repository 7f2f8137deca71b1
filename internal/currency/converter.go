// Package currency detects a filer's home reporting currency, extracts
// exchange-rate facts, and converts amounts for foreign private issuers.
package currency

import (
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/statement-engine/internal/model"
)

// RateType selects which extracted rate a conversion uses: average rates
// (duration facts) for income-statement and cash-flow amounts, closing rates
// (instant facts) for balance-sheet amounts.
type RateType string

const (
	Average RateType = "average"
	Closing RateType = "closing"
)

// fxConceptHints mark concepts that carry exchange-rate values.
var fxConceptHints = []string{
	"ForeignCurrencyExchangeRate",
	"ExchangeRate",
	"ForeignExchangeRate",
}

// Converter holds the per-filing FX state: home currency, extracted rates by
// fiscal year, and the rate scale. The scale is detected once per instance
// from a representative sample, never per conversion call, so repeated calls
// cannot drift between direct and per-100 interpretations.
type Converter struct {
	home    string
	scale   float64
	average map[int]float64
	closing map[int]float64
}

// New builds a converter from a filing's facts.
//
// Home currency is the most frequent ISO-4217 unit across numeric facts,
// defaulting to USD when no currency-tagged facts exist. A sampled rate
// below 10 is treated as a direct rate (home units per 1 USD); 10 or above
// as a per-100 rate.
func New(facts []model.Fact) *Converter {
	c := &Converter{
		home:    detectHomeCurrency(facts),
		scale:   1,
		average: make(map[int]float64),
		closing: make(map[int]float64),
	}

	var sample []float64
	for _, f := range facts {
		if f.Numeric == nil || !isFXConcept(f.Concept) {
			continue
		}
		year := f.Period.EndDate().Year()
		if year == 0 {
			continue
		}
		switch {
		case f.Period.IsDuration():
			c.average[year] = *f.Numeric
		case f.Period.IsInstant():
			c.closing[year] = *f.Numeric
		}
		sample = append(sample, *f.Numeric)
	}

	if len(sample) > 0 {
		var sum float64
		for _, v := range sample {
			sum += v
		}
		if sum/float64(len(sample)) >= 10 {
			c.scale = 100
		}
	}

	zap.L().Debug("currency converter ready",
		zap.String("home", c.home),
		zap.Float64("scale", c.scale),
		zap.Int("average_rates", len(c.average)),
		zap.Int("closing_rates", len(c.closing)),
	)
	return c
}

// Home returns the detected home reporting currency.
func (c *Converter) Home() string { return c.home }

// ToUSD converts a home-currency amount to USD using the requested year's
// rate. A missing rate is an expected outcome and yields ok=false, never an
// error; only an invalid rate type fails loudly.
func (c *Converter) ToUSD(value float64, year int, rt RateType) (float64, bool, error) {
	rate, ok, err := c.rate(year, rt)
	if err != nil || !ok {
		return 0, false, err
	}
	return value / rate, true, nil
}

// FromUSD converts a USD amount into the home currency.
func (c *Converter) FromUSD(value float64, year int, rt RateType) (float64, bool, error) {
	rate, ok, err := c.rate(year, rt)
	if err != nil || !ok {
		return 0, false, err
	}
	return value * rate, true, nil
}

func (c *Converter) rate(year int, rt RateType) (float64, bool, error) {
	var table map[int]float64
	switch rt {
	case Average:
		table = c.average
	case Closing:
		table = c.closing
	default:
		return 0, false, eris.Errorf("currency: invalid rate type %q (want average or closing)", rt)
	}
	raw, ok := table[year]
	if !ok || raw == 0 {
		return 0, false, nil
	}
	return raw / c.scale, true, nil
}

func detectHomeCurrency(facts []model.Fact) string {
	counts := make(map[string]int)
	for _, f := range facts {
		if f.Numeric == nil {
			continue
		}
		u := strings.ToUpper(f.Unit)
		if len(u) == 3 && isAlpha(u) {
			counts[u]++
		}
	}
	best, bestN := "USD", 0
	for u, n := range counts {
		if n > bestN || (n == bestN && u < best) {
			best, bestN = u, n
		}
	}
	if bestN == 0 {
		return "USD"
	}
	return best
}

func isFXConcept(concept string) bool {
	local := model.LocalName(concept)
	for _, hint := range fxConceptHints {
		if strings.Contains(local, hint) {
			return true
		}
	}
	return false
}

func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
