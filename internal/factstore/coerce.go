package factstore

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// ValueKind is the closed set of value-coercion strategies. Raw fact values
// are dispatched through the coercers table keyed by kind, never through
// string-tagged branches.
type ValueKind int

const (
	KindMonetary ValueKind = iota
	KindShares
	KindPerShare
	KindDecimal
	KindPercent
	KindText
	KindDate
	KindBool
)

// Coerced is the outcome of coercing one raw value.
type Coerced struct {
	Raw string
	Num *float64
}

type coerceFunc func(raw string) (Coerced, error)

// coercers maps each value kind to its coercion strategy.
var coercers = map[ValueKind]coerceFunc{
	KindMonetary: coerceNumeric,
	KindShares:   coerceNumeric,
	KindPerShare: coerceNumeric,
	KindDecimal:  coerceNumeric,
	KindPercent:  coerceNumeric,
	KindText:     coerceText,
	KindDate:     coerceText,
	KindBool:     coerceBool,
}

// Coerce applies the strategy for the given kind. Unknown kinds are a
// programming error.
func Coerce(kind ValueKind, raw string) (Coerced, error) {
	fn, ok := coercers[kind]
	if !ok {
		return Coerced{}, eris.Errorf("factstore: unknown value kind %d", kind)
	}
	return fn(raw)
}

// KindForUnit infers the value kind from an XBRL unit string.
func KindForUnit(unit string) ValueKind {
	u := strings.ToLower(unit)
	switch {
	case u == "":
		return KindText
	case strings.Contains(u, "/shares") || strings.Contains(u, "pershare"):
		return KindPerShare
	case u == "shares":
		return KindShares
	case u == "pure":
		return KindDecimal
	default:
		// ISO-4217 currency units and anything unit-tagged are numeric.
		return KindMonetary
	}
}

func coerceNumeric(raw string) (Coerced, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Coerced{Raw: raw}, nil
	}
	s = strings.ReplaceAll(s, ",", "")
	// Parenthesized values are the accountants' negative.
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Coerced{}, eris.Wrapf(err, "factstore: parse numeric %q", raw)
	}
	if neg {
		v = -v
	}
	return Coerced{Raw: raw, Num: &v}, nil
}

func coerceText(raw string) (Coerced, error) {
	return Coerced{Raw: strings.TrimSpace(raw)}, nil
}

func coerceBool(raw string) (Coerced, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "", "false", "0", "no":
		return Coerced{Raw: s}, nil
	case "true", "1", "yes":
		one := 1.0
		return Coerced{Raw: s, Num: &one}, nil
	}
	return Coerced{}, eris.Errorf("factstore: parse bool %q", raw)
}
