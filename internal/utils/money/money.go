package money

import "github.com/shopspring/decimal"

// DefaultScale is the minor-unit scale used for supported currencies.
const DefaultScale int32 = 2

// BalanceTolerance is the maximum absolute difference between total debits
// and total credits for a journal to be considered balanced. It absorbs
// legitimate residue from independent per-line rounding; it is a deliberate
// constant, one minor unit, not an accidental epsilon.
var BalanceTolerance = decimal.New(1, -DefaultScale) // 0.01

// Round rounds an amount to the given minor-unit scale using
// round-half-away-from-zero, which is what decimal.Round implements.
// Rounding happens only here; sums of already-rounded amounts are exact.
func Round(d decimal.Decimal, scale int32) decimal.Decimal {
	return d.Round(scale)
}

// RoundToMinorUnit rounds to the default currency scale.
func RoundToMinorUnit(d decimal.Decimal) decimal.Decimal {
	return Round(d, DefaultScale)
}

// Delta returns debits minus credits. Positive means the debit side is
// larger, negative means the credit side is larger.
func Delta(totalDebit, totalCredit decimal.Decimal) decimal.Decimal {
	return totalDebit.Sub(totalCredit)
}

// WithinTolerance reports whether two totals balance within BalanceTolerance.
func WithinTolerance(totalDebit, totalCredit decimal.Decimal) bool {
	return Delta(totalDebit, totalCredit).Abs().LessThanOrEqual(BalanceTolerance)
}
