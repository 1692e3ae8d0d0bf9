// Package units converts quantities between the fixed set of kitchen units
// used by recipes and inventory. Only single-hop conversions are supported;
// there is no transitive traversal through a third unit.
package units

import "github.com/shopspring/decimal"

var conversions = map[[2]string]decimal.Decimal{
	{"kg", "g"}:    decimal.NewFromInt(1000),
	{"g", "kg"}:    decimal.NewFromFloat(0.001),
	{"L", "ml"}:    decimal.NewFromInt(1000),
	{"ml", "L"}:    decimal.NewFromFloat(0.001),
	{"kg", "mg"}:   decimal.NewFromInt(1000000),
	{"mg", "kg"}:   decimal.NewFromFloat(0.000001),
	{"L", "cups"}:  decimal.NewFromFloat(4.22675),
	{"cups", "L"}:  decimal.NewFromFloat(0.236588),
	{"oz", "g"}:    decimal.NewFromFloat(28.3495),
	{"g", "oz"}:    decimal.NewFromFloat(0.035274),
	{"oz", "ml"}:   decimal.NewFromFloat(29.5735),
	{"ml", "oz"}:   decimal.NewFromFloat(0.033814),
	{"lb", "g"}:    decimal.NewFromFloat(453.592),
	{"g", "lb"}:    decimal.NewFromFloat(0.00220462),
	{"lb", "kg"}:   decimal.NewFromFloat(0.453592),
	{"kg", "lb"}:   decimal.NewFromFloat(2.20462),
}

// Convert converts value from one unit symbol to another. The second return
// reports whether the pair was recognized: on an unknown pair the value is
// returned unchanged and callers are expected to log the mismatch, since a
// silent identity on e.g. kg->pcs usually means bad recipe data.
func Convert(value decimal.Decimal, fromUnit, toUnit string) (decimal.Decimal, bool) {
	if fromUnit == toUnit {
		return value, true
	}
	if factor, ok := conversions[[2]string{fromUnit, toUnit}]; ok {
		return value.Mul(factor), true
	}
	if factor, ok := conversions[[2]string{toUnit, fromUnit}]; ok {
		return value.Div(factor), true
	}
	return value, false
}

// Known reports whether a conversion between the two units exists in either
// direction.
func Known(fromUnit, toUnit string) bool {
	if fromUnit == toUnit {
		return true
	}
	if _, ok := conversions[[2]string{fromUnit, toUnit}]; ok {
		return true
	}
	_, ok := conversions[[2]string{toUnit, fromUnit}]
	return ok
}
